// Chat HTTP handlers.
//
// This file exposes the conversation surface, gated by SessionAuth:
//
//   - GET    /chat/history        (persisted transcript, oldest first)
//   - POST   /chat/messages       (one user turn -> assistant reply)
//   - DELETE /chat/history        (wipe transcript and reset the conversation)
//   - POST   /chat/new            (reset the in-memory conversation only)
//   - PUT    /chat/research-mode  (toggle deep-research routing)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yesai/go-assistant-backend/internal/chat"
	"github.com/yesai/go-assistant-backend/internal/http/middleware"
)

// MessageResponse is a single transcript entry returned by GetHistory.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// SendMessageRequest carries one user turn.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=8192"`
}

// SendMessageResponse is the assistant's reply to one turn.
type SendMessageResponse struct {
	Reply string `json:"reply"`
}

// ResearchModeRequest toggles deep-research routing for the session.
type ResearchModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetHistory returns the caller's persisted transcript, oldest first.
func (h *Handlers) GetHistory(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	msgs, err := h.history.List(c.Request.Context(), sess.AccountID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load history")
		return
	}

	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ok(c, http.StatusOK, gin.H{"messages": out})
}

// SendMessage runs one conversation turn. The user's text is persisted and
// sent to the model; tool calls are resolved server-side before the final
// reply comes back. Model failures surface as a spoken apology with HTTP 200
// so clients render them like any other reply.
func (h *Handlers) SendMessage(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message content is required")
		return
	}

	reply, err := h.orch.SendTurn(c.Request.Context(), sess.Conversation(), sess.AccountID, req.Content)
	if err != nil {
		middleware.ObserveTurn("error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record message")
		return
	}

	if reply == chat.Apology {
		middleware.ObserveTurn("apology")
	} else {
		middleware.ObserveTurn("ok")
	}
	ok(c, http.StatusOK, SendMessageResponse{Reply: reply})
}

// ClearHistory deletes the caller's persisted transcript and resets the
// in-memory conversation so the model forgets prior context too.
func (h *Handlers) ClearHistory(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	if err := h.history.Clear(c.Request.Context(), sess.AccountID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not clear history")
		return
	}
	sess.ResetConversation(chat.NewConversation())

	middleware.LoggerFrom(c).Info().
		Str("user_id", sess.AccountID).
		Msg("history cleared")
	noContent(c)
}

// NewConversation resets the in-memory conversation without touching the
// persisted transcript. The next login still restores full history.
func (h *Handlers) NewConversation(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	sess.ResetConversation(chat.NewConversation())
	ok(c, http.StatusOK, gin.H{"status": "conversation_reset"})
}

// SetResearchMode toggles deep-research routing for subsequent turns of the
// current conversation. Resetting the conversation clears the mode.
func (h *Handlers) SetResearchMode(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req ResearchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled flag is required")
		return
	}

	sess.Conversation().SetResearchMode(*req.Enabled)
	ok(c, http.StatusOK, gin.H{"research_mode": *req.Enabled})
}
