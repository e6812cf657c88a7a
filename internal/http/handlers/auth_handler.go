// Auth HTTP handlers.
//
// This file exposes the account flows that used to be the Login, Signup,
// Verify OTP, Forgot Password, and Reset Password pages of the original UI:
//
//   - POST /auth/signup           (begin signup; emails a passcode)
//   - POST /auth/signup/verify    (verify passcode; creates the account)
//   - POST /auth/login            (credentials -> session token)
//   - POST /auth/logout           (tear down the session)
//   - POST /auth/password/forgot  (begin reset; emails a passcode)
//   - POST /auth/password/reset   (verify passcode; set new password)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate service errors into HTTP envelopes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yesai/go-assistant-backend/internal/chat"
	"github.com/yesai/go-assistant-backend/internal/domain"
	"github.com/yesai/go-assistant-backend/internal/http/middleware"
	"github.com/yesai/go-assistant-backend/internal/otp"
	"github.com/yesai/go-assistant-backend/internal/services"
	"github.com/yesai/go-assistant-backend/internal/session"
)

//
// Service contracts (context-aware)
//

// AuthService defines the account flows consumed by the HTTP layer.
// Implementations must be safe for concurrent use.
type AuthService interface {
	BeginSignup(ctx context.Context, username, email, password string) error
	CompleteSignup(ctx context.Context, email, code string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	BeginPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, email, code, newPassword string) error
}

// HistoryService defines transcript operations consumed by the HTTP layer.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	Clear(ctx context.Context, userID string) error
}

// Orchestrator runs one conversation turn.
type Orchestrator interface {
	SendTurn(ctx context.Context, conv *chat.Conversation, userID, text string) (string, error)
}

// Handlers groups the HTTP endpoints for auth and chat. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	auth     AuthService
	history  HistoryService
	orch     Orchestrator
	sessions *session.Manager
}

// New constructs a Handlers instance bound to the given services.
func New(auth AuthService, history HistoryService, orch Orchestrator, sessions *session.Manager) *Handlers {
	return &Handlers{auth: auth, history: history, orch: orch, sessions: sessions}
}

//
// DTOs
//

// SignupRequest is the JSON payload beginning a signup flow.
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// VerifySignupRequest carries the emailed passcode back.
type VerifySignupRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6"`
}

// LoginRequest is the JSON payload for credential login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the opaque session token and account identity.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ForgotPasswordRequest begins a password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset flow.
type ResetPasswordRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	Code        string `json:"code"         binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

//
// Endpoints
//

// BeginSignup validates the registration and emails a passcode. 202 on
// success: the account does not exist until the passcode is verified.
func (h *Handlers) BeginSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid signup payload")
		return
	}
	if err := h.auth.BeginSignup(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		h.failAuthFlow(c, err)
		return
	}
	ok(c, http.StatusAccepted, gin.H{"status": "code_sent"})
}

// CompleteSignup verifies the passcode and creates the account.
func (h *Handlers) CompleteSignup(c *gin.Context) {
	var req VerifySignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid verification payload")
		return
	}
	acct, err := h.auth.CompleteSignup(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.failAuthFlow(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"id": acct.ID, "username": acct.Username, "email": acct.Email})
}

// Login verifies credentials, restores the persisted transcript into a fresh
// conversation, and opens a session.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid login payload")
		return
	}
	acct, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredential, services.ErrInvalidCredentials.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		return
	}

	msgs, err := h.history.List(c.Request.Context(), acct.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load history")
		return
	}
	sess := h.sessions.Create(acct, chat.NewConversationFromTranscript(msgs))

	middleware.LoggerFrom(c).Info().
		Str("user_id", acct.ID).
		Msg("session opened")
	ok(c, http.StatusOK, LoginResponse{Token: sess.Token, Username: acct.Username, Email: acct.Email})
}

// Logout tears down the current session. Requires authentication.
func (h *Handlers) Logout(c *gin.Context) {
	if s := middleware.SessionFrom(c); s != nil {
		h.sessions.Delete(s.Token)
	}
	noContent(c)
}

// BeginPasswordReset emails a reset passcode to a registered address.
func (h *Handlers) BeginPasswordReset(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}
	if err := h.auth.BeginPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.failAuthFlow(c, err)
		return
	}
	ok(c, http.StatusAccepted, gin.H{"status": "code_sent"})
}

// CompletePasswordReset verifies the passcode and updates the password.
func (h *Handlers) CompletePasswordReset(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}
	if err := h.auth.CompletePasswordReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.failAuthFlow(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "password_updated"})
}

// failAuthFlow maps service and passcode errors onto the HTTP envelope.
func (h *Handlers) failAuthFlow(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrInvalidInput.Error())
	case errors.Is(err, services.ErrDuplicateIdentity):
		fail(c, http.StatusConflict, ErrCodeDuplicateIdentity, services.ErrDuplicateIdentity.Error())
	case errors.Is(err, services.ErrUnknownEmail):
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrUnknownEmail.Error())
	case errors.Is(err, services.ErrDeliveryFailed):
		fail(c, http.StatusBadGateway, ErrCodeDeliveryFailed, services.ErrDeliveryFailed.Error())
	case errors.Is(err, otp.ErrMismatch):
		fail(c, http.StatusUnauthorized, ErrCodePasscodeMismatch, otp.ErrMismatch.Error())
	case errors.Is(err, otp.ErrExpired):
		fail(c, http.StatusUnauthorized, ErrCodePasscodeExpired, otp.ErrExpired.Error())
	case errors.Is(err, otp.ErrNoChallenge):
		fail(c, http.StatusUnauthorized, ErrCodePasscodeExpired, otp.ErrNoChallenge.Error())
	case errors.Is(err, otp.ErrTooManyAttempts):
		fail(c, http.StatusTooManyRequests, ErrCodeRateLimited, otp.ErrTooManyAttempts.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "request failed")
	}
}
