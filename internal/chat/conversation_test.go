package chat

import (
	"testing"

	"google.golang.org/genai"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

func TestNewConversation(t *testing.T) {
	c := NewConversation()
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
	if c.ResearchMode() {
		t.Fatalf("research mode on by default")
	}
}

func TestNewConversationFromTranscript(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "bye"},
	}
	c := NewConversationFromTranscript(msgs)
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if c.history[0].Role != genai.RoleUser {
		t.Fatalf("history[0].Role = %q", c.history[0].Role)
	}
	if c.history[1].Role != genai.RoleModel {
		t.Fatalf("history[1].Role = %q", c.history[1].Role)
	}
	if got := c.history[1].Parts[0].Text; got != "hello" {
		t.Fatalf("history[1] text = %q", got)
	}
}

func TestSetResearchMode(t *testing.T) {
	c := NewConversation()
	c.SetResearchMode(true)
	if !c.ResearchMode() {
		t.Fatalf("research mode not set")
	}
	c.SetResearchMode(false)
	if c.ResearchMode() {
		t.Fatalf("research mode not cleared")
	}
}
