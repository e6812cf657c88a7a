package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

// Apology is the fixed reply returned when the model round-trip fails for
// any reason (network, quota, malformed response, deadline). The underlying
// cause is logged, never surfaced.
const Apology = "Sorry, an internal error occurred. Please try again."

// researchPrefix rewrites the outgoing prompt when deep-research mode is on.
// The persisted user turn keeps the original wording; only the text submitted
// to the model is rewritten.
const researchPrefix = "Please perform deep research on: "

// ModelClient is the model collaborator contract. Generate returns the final
// reply text and the full updated history; on error the returned history is
// nil and the caller's copy must stand.
type ModelClient interface {
	Generate(ctx context.Context, history []*genai.Content, userText string) (string, []*genai.Content, error)
}

// MessageStore persists transcript turns.
type MessageStore interface {
	AppendMessage(ctx context.Context, userID, role, content string) (*domain.ChatMessage, error)
}

// Orchestrator runs one user turn end to end. It never retries and it never
// lets a model failure corrupt the persisted transcript: the user turn stands
// once written, and a failed assistant turn is simply not persisted.
type Orchestrator struct {
	Model ModelClient
	Store MessageStore
	// Timeout bounds one model round-trip, tool dispatches included.
	// Zero means 60s.
	Timeout time.Duration
	Log     zerolog.Logger
}

// SendTurn processes one user turn for the conversation:
//
//  1. persist the user turn (it stands even if the model fails);
//  2. apply the deep-research rewrite when the mode is active;
//  3. run the model round-trip under the configured deadline;
//  4. on failure, log the cause and return the fixed apology without
//     persisting an assistant turn or touching the model-visible history;
//  5. on success, persist the assistant turn and retain the new history.
//
// The conversation's lock is held for the whole turn, so a session processes
// strictly one turn at a time.
func (o *Orchestrator) SendTurn(ctx context.Context, conv *Conversation, userID, text string) (string, error) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if _, err := o.Store.AppendMessage(ctx, userID, domain.RoleUser, text); err != nil {
		return "", fmt.Errorf("persist user turn: %w", err)
	}

	outgoing := text
	if conv.researchMode {
		outgoing = researchPrefix + text
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	mctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, updated, err := o.Model.Generate(mctx, conv.history, outgoing)
	if err != nil {
		o.Log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("model round-trip failed")
		return Apology, nil
	}

	if _, err := o.Store.AppendMessage(ctx, userID, domain.RoleAssistant, reply); err != nil {
		// The reply was produced; losing the row is logged, not fatal to
		// the turn.
		o.Log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("persist assistant turn failed")
	}
	conv.history = updated
	return reply, nil
}
