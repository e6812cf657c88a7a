// Package services – AuthService
//
// This file implements the account flows: signup with email passcode
// verification, login, and password reset with email passcode verification.
// Passwords are bcrypt-hashed before anything is persisted or held beyond
// the request; plaintext is never logged and never stored.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yesai/go-assistant-backend/internal/domain"
	"github.com/yesai/go-assistant-backend/internal/otp"
	"github.com/yesai/go-assistant-backend/internal/repo"
)

// PasscodeSender delivers a one-time passcode to an email address.
type PasscodeSender interface {
	SendPasscode(to, code string) error
}

// pendingSignup is the registration payload held by the passcode manager
// between BeginSignup and CompleteSignup. The password is already hashed.
type pendingSignup struct {
	Username     string
	Email        string
	PasswordHash string
}

// dummyHash is compared against when a login names an unknown email, so both
// rejection paths cost one bcrypt verification.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("yesai-invalid-credential-placeholder"), bcrypt.DefaultCost)

// AuthService implements signup, login, and password reset over the account
// repository, the passcode manager, and the mail collaborator.
type AuthService struct {
	DB        *gorm.DB
	Passcodes *otp.Manager
	Mailer    PasscodeSender

	// BcryptCost overrides bcrypt.DefaultCost when > 0 (tests lower it).
	BcryptCost int
}

// NewAuthService constructs an AuthService with the default bcrypt cost.
func NewAuthService(db *gorm.DB, passcodes *otp.Manager, mailer PasscodeSender) *AuthService {
	return &AuthService{DB: db, Passcodes: passcodes, Mailer: mailer}
}

// BeginSignup validates the registration, issues a signup passcode, and
// emails it. The pending registration (with the password already hashed) is
// held in session memory until CompleteSignup verifies the code. If delivery
// fails the challenge is cancelled and the flow stays idle.
func (s *AuthService) BeginSignup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidInput
	}

	if taken, err := repo.EmailExists(ctx, s.DB, email); err != nil {
		return err
	} else if taken {
		return ErrDuplicateIdentity
	}
	if taken, err := repo.UsernameExists(ctx, s.DB, username); err != nil {
		return err
	} else if taken {
		return ErrDuplicateIdentity
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	code, err := s.Passcodes.Issue(email, otp.PurposeSignup, pendingSignup{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	if err := s.Mailer.SendPasscode(email, code); err != nil {
		s.Passcodes.Cancel(email, otp.PurposeSignup)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// CompleteSignup verifies the passcode and creates the account. Passcode
// errors pass through unchanged (otp.ErrMismatch keeps the flow at CodeSent;
// the rest reset it). A losing race on the unique indexes surfaces as
// ErrDuplicateIdentity.
func (s *AuthService) CompleteSignup(ctx context.Context, email, code string) (*domain.Account, error) {
	payload, err := s.Passcodes.Verify(normalizeEmail(email), otp.PurposeSignup, code)
	if err != nil {
		return nil, err
	}
	reg, ok := payload.(pendingSignup)
	if !ok {
		return nil, otp.ErrNoChallenge
	}

	acct, err := repo.CreateAccount(ctx, s.DB, reg.Username, reg.Email, reg.PasswordHash)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateIdentity
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Login verifies credentials and returns the account. The contract never
// distinguishes "no such email" from "wrong password": both return
// ErrInvalidCredentials, and the unknown-email path still performs one
// bcrypt comparison so the two cost the same.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	acct, err := repo.GetAccountByEmail(ctx, s.DB, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// BeginPasswordReset issues and emails a reset passcode. Unlike login, this
// flow does tell the caller when the email is unregistered, since there is
// nothing to reset.
func (s *AuthService) BeginPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidInput
	}
	exists, err := repo.EmailExists(ctx, s.DB, email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownEmail
	}

	code, err := s.Passcodes.Issue(email, otp.PurposeReset, nil)
	if err != nil {
		return err
	}
	if err := s.Mailer.SendPasscode(email, code); err != nil {
		s.Passcodes.Cancel(email, otp.PurposeReset)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// CompletePasswordReset verifies the reset passcode and replaces the stored
// password hash.
func (s *AuthService) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}
	email = normalizeEmail(email)
	if _, err := s.Passcodes.Verify(email, otp.PurposeReset, code); err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(ctx, s.DB, email, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownEmail
		}
		return err
	}
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	cost := s.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
