package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

// test DB helper
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateAccount_Inserts(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	a, err := CreateAccount(context.Background(), db, "alice", "alice@example.com", "$2a$hash")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if a.ID == "" || a.Username != "alice" || a.Email != "alice@example.com" || a.PasswordHash != "$2a$hash" {
		t.Fatalf("unexpected account: %+v", a)
	}
	if a.CreatedAt.IsZero() || time.Since(a.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set reasonably: %v", a.CreatedAt)
	}

	got, err := GetAccountByEmail(context.Background(), db, "alice@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, a)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if _, err := CreateAccount(context.Background(), db, "alice", "a@example.com", "h"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateAccount(context.Background(), db, "bob", "a@example.com", "h"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestCreateAccount_DuplicateUsername(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if _, err := CreateAccount(context.Background(), db, "alice", "a@example.com", "h"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateAccount(context.Background(), db, "alice", "b@example.com", "h"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if _, err := GetAccountByEmail(context.Background(), db, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEmailAndUsernameExists(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if _, err := CreateAccount(context.Background(), db, "alice", "a@example.com", "h"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if ok, err := EmailExists(context.Background(), db, "a@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists = %v, %v", ok, err)
	}
	if ok, err := EmailExists(context.Background(), db, "b@example.com"); err != nil || ok {
		t.Fatalf("EmailExists(absent) = %v, %v", ok, err)
	}
	if ok, err := UsernameExists(context.Background(), db, "alice"); err != nil || !ok {
		t.Fatalf("UsernameExists = %v, %v", ok, err)
	}
	if ok, err := UsernameExists(context.Background(), db, "bob"); err != nil || ok {
		t.Fatalf("UsernameExists(absent) = %v, %v", ok, err)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if _, err := CreateAccount(context.Background(), db, "alice", "a@example.com", "old"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdatePassword(context.Background(), db, "a@example.com", "new"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	got, err := GetAccountByEmail(context.Background(), db, "a@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got.PasswordHash != "new" {
		t.Fatalf("hash = %q, want new", got.PasswordHash)
	}
}

func TestUpdatePassword_UnknownEmail(t *testing.T) {
	db := newTestDB(t, &domain.Account{})

	if err := UpdatePassword(context.Background(), db, "nobody@example.com", "h"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatalf("ErrDuplicatedKey not recognized")
	}
	if !isUniqueViolation(errors.New("UNIQUE constraint failed: accounts.email")) {
		t.Fatalf("sqlite message not recognized")
	}
	if isUniqueViolation(errors.New("disk I/O error")) {
		t.Fatalf("unrelated error misclassified")
	}
	if isUniqueViolation(nil) {
		t.Fatalf("nil misclassified")
	}
}
