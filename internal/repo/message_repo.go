// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage
// model: append-only writes, ordered replay, and scoped deletion.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

// AppendMessage inserts one transcript turn for the account. Rows are
// append-only; there is no update path.
func AppendMessage(ctx context.Context, db *gorm.DB, userID, role, content string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// ListMessages returns the account's full transcript in creation order
// (CreatedAt ASC, ID ASC). The tiebreak on ID keeps replay deterministic
// when two turns land on the same timestamp.
func ListMessages(ctx context.Context, db *gorm.DB, userID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM chat_history WHERE user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// ClearHistory deletes every transcript row owned by userID. Irreversible.
// Other accounts' rows are untouched.
func ClearHistory(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.ChatMessage{}).Error
}
