package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yesai/go-assistant-backend/internal/chat"
	"github.com/yesai/go-assistant-backend/internal/domain"
	"github.com/yesai/go-assistant-backend/internal/http/middleware"
	"github.com/yesai/go-assistant-backend/internal/session"
)

// newChatTestRouter mounts the chat endpoints behind SessionAuth and returns
// a live session for the test account.
func newChatTestRouter(history HistoryService, orch Orchestrator) (*gin.Engine, *session.Session) {
	sessions := session.NewManager(time.Hour)
	sess := sessions.Create(&domain.Account{ID: "u1", Username: "alice", Email: "a@example.com"}, chat.NewConversation())

	h := New(stubAuth{}, history, orch, sessions)
	r := gin.New()

	grp := r.Group("/chat", middleware.SessionAuth(sessions))
	grp.GET("/history", h.GetHistory)
	grp.POST("/messages", h.SendMessage)
	grp.DELETE("/history", h.ClearHistory)
	grp.POST("/new", h.NewConversation)
	grp.PUT("/research-mode", h.SetResearchMode)
	return r, sess
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetHistory(t *testing.T) {
	created := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	history := stubHistory{
		list: func(_ context.Context, userID string) ([]domain.ChatMessage, error) {
			if userID != "u1" {
				t.Errorf("userID = %q", userID)
			}
			return []domain.ChatMessage{
				{ID: "m1", Role: domain.RoleUser, Content: "hi", CreatedAt: created},
				{ID: "m2", Role: domain.RoleAssistant, Content: "hello", CreatedAt: created.Add(time.Second)},
			}, nil
		},
	}
	r, sess := newChatTestRouter(history, stubOrch{})

	w := doJSON(t, r, http.MethodGet, "/chat/history", sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Messages []MessageResponse `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %+v", resp.Messages)
	}
	if resp.Messages[0].Role != domain.RoleUser || resp.Messages[0].Content != "hi" {
		t.Fatalf("first = %+v", resp.Messages[0])
	}
	if resp.Messages[0].CreatedAt != "2025-08-01T10:00:00Z" {
		t.Fatalf("created_at = %q", resp.Messages[0].CreatedAt)
	}
}

func TestGetHistory_RequiresSession(t *testing.T) {
	r, _ := newChatTestRouter(stubHistory{}, stubOrch{})
	w := doJSON(t, r, http.MethodGet, "/chat/history", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGetHistory_StoreFailure(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{
		list: func(context.Context, string) ([]domain.ChatMessage, error) {
			return nil, errors.New("db down")
		},
	}, stubOrch{})

	w := doJSON(t, r, http.MethodGet, "/chat/history", sess.Token, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestSendMessage(t *testing.T) {
	orch := stubOrch{
		sendTurn: func(_ context.Context, conv *chat.Conversation, userID, text string) (string, error) {
			if userID != "u1" || text != "what is 2+2" {
				t.Errorf("SendTurn(%q, %q)", userID, text)
			}
			if conv == nil {
				t.Errorf("nil conversation")
			}
			return "The answer is 4.0", nil
		},
	}
	r, sess := newChatTestRouter(stubHistory{}, orch)

	w := doJSON(t, r, http.MethodPost, "/chat/messages", sess.Token, gin.H{"content": "what is 2+2"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp SendMessageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reply != "The answer is 4.0" {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestSendMessage_EmptyContent(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{})

	for _, body := range []gin.H{{}, {"content": ""}} {
		w := doJSON(t, r, http.MethodPost, "/chat/messages", sess.Token, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSendMessage_ApologyStillHTTP200(t *testing.T) {
	// A model failure is a spoken apology, not an HTTP error.
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{
		sendTurn: func(context.Context, *chat.Conversation, string, string) (string, error) {
			return chat.Apology, nil
		},
	})

	w := doJSON(t, r, http.MethodPost, "/chat/messages", sess.Token, gin.H{"content": "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp SendMessageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reply != chat.Apology {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestSendMessage_PersistFailureIs500(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{
		sendTurn: func(context.Context, *chat.Conversation, string, string) (string, error) {
			return "", errors.New("persist user turn: db down")
		},
	})

	w := doJSON(t, r, http.MethodPost, "/chat/messages", sess.Token, gin.H{"content": "hi"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestClearHistory_ResetsConversation(t *testing.T) {
	cleared := false
	r, sess := newChatTestRouter(stubHistory{
		clear: func(_ context.Context, userID string) error {
			if userID != "u1" {
				t.Errorf("userID = %q", userID)
			}
			cleared = true
			return nil
		},
	}, stubOrch{})

	old := sess.Conversation()
	old.SetResearchMode(true)

	w := doJSON(t, r, http.MethodDelete, "/chat/history", sess.Token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !cleared {
		t.Fatalf("store not cleared")
	}
	if sess.Conversation() == old {
		t.Fatalf("conversation not replaced")
	}
	if sess.Conversation().ResearchMode() {
		t.Fatalf("research mode survived the reset")
	}
}

func TestClearHistory_StoreFailure(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{
		clear: func(context.Context, string) error { return errors.New("db down") },
	}, stubOrch{})

	old := sess.Conversation()
	w := doJSON(t, r, http.MethodDelete, "/chat/history", sess.Token, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	// On failure the conversation is left alone.
	if sess.Conversation() != old {
		t.Fatalf("conversation replaced despite failure")
	}
}

func TestNewConversation(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{})
	old := sess.Conversation()

	w := doJSON(t, r, http.MethodPost, "/chat/new", sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sess.Conversation() == old {
		t.Fatalf("conversation not replaced")
	}
}

func TestSetResearchMode(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{})

	w := doJSON(t, r, http.MethodPut, "/chat/research-mode", sess.Token, gin.H{"enabled": true})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !sess.Conversation().ResearchMode() {
		t.Fatalf("research mode not enabled")
	}

	w = doJSON(t, r, http.MethodPut, "/chat/research-mode", sess.Token, gin.H{"enabled": false})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sess.Conversation().ResearchMode() {
		t.Fatalf("research mode not disabled")
	}
}

func TestSetResearchMode_MissingFlag(t *testing.T) {
	r, sess := newChatTestRouter(stubHistory{}, stubOrch{})

	w := doJSON(t, r, http.MethodPut, "/chat/research-mode", sess.Token, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
