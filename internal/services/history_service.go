// Package services – HistoryService
//
// Transcript access for one account: full ordered replay and the explicit,
// irreversible clear-history action. There is no pagination; the transcript
// is replayed whole, in creation order.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yesai/go-assistant-backend/internal/domain"
	"github.com/yesai/go-assistant-backend/internal/repo"
)

// HistoryService exposes transcript reads and the scoped clear operation.
type HistoryService struct {
	DB *gorm.DB
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// List returns the account's transcript in the exact order it was appended.
func (s *HistoryService) List(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	return repo.ListMessages(ctx, s.DB, userID)
}

// Clear deletes the account's entire transcript. Other accounts' histories
// are untouched.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	return repo.ClearHistory(ctx, s.DB, userID)
}
