// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Account model.
//
// Error semantics:
//   - When an account is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-index violations on username or email are translated to
//     ErrDuplicate so the service layer can surface a duplicate-identity
//     rejection without inspecting driver errors.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate is returned when an insert collides with the unique
// username or email index.
var ErrDuplicate = errors.New("duplicate identity")

// CreateAccount inserts a new account row. The caller supplies the password
// already hashed; this layer never sees plaintext. The account ID is a
// randomly generated UUID and CreatedAt is set to UTC.
//
// A unique-index collision on username or email returns ErrDuplicate.
func CreateAccount(ctx context.Context, db *gorm.DB, username, email, passwordHash string) (*domain.Account, error) {
	a := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// GetAccountByEmail fetches a single account by email. If the record does
// not exist, it returns ErrNotFound.
func GetAccountByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// EmailExists reports whether an account with the given email is registered.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("email = ?", email).
		Count(&n).Error
	return n > 0, err
}

// UsernameExists reports whether the username is already taken.
func UsernameExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

// UpdatePassword replaces the stored password hash for the account identified
// by email. If no rows are affected, it returns ErrNotFound.
func UpdatePassword(ctx context.Context, db *gorm.DB, email, passwordHash string) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-index violation. GORM
// translates these to ErrDuplicatedKey when TranslateError is enabled; the
// sqlite message check covers handles opened without it (tests).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
