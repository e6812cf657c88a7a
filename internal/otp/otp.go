// Package otp implements the one-time-passcode challenge lifecycle used by
// the signup and password-reset flows.
//
// A challenge moves through Idle -> CodeSent -> Verified. Issuing a code for
// an (email, purpose) pair replaces any outstanding challenge for that pair,
// so at most one passcode per purpose is ever live for a flow. Verification
// is exact string match; a mismatch leaves the challenge valid (retries are
// tolerated) but counts toward an attempt cap, after which the challenge is
// discarded. Successful verification consumes the challenge.
//
// Challenges live only in process memory and vanish on restart; nothing here
// touches durable storage.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// Purpose names the flow a passcode belongs to.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "password_reset"
)

// CodeLength is the number of digits in a generated passcode.
const CodeLength = 6

var (
	// ErrNoChallenge is returned when no passcode is outstanding for the
	// (email, purpose) pair, or it has already been consumed.
	ErrNoChallenge = errors.New("no passcode requested")

	// ErrExpired is returned when the passcode's validity window has passed.
	// The challenge is discarded; the flow must restart.
	ErrExpired = errors.New("passcode expired")

	// ErrMismatch is returned on a wrong code. The same code stays valid
	// until the attempt cap is reached.
	ErrMismatch = errors.New("incorrect passcode")

	// ErrTooManyAttempts is returned once the attempt cap is exhausted.
	// The challenge is discarded.
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

type challenge struct {
	code      string
	payload   any
	expiresAt time.Time
	attempts  int
}

type key struct {
	email   string
	purpose Purpose
}

// Manager holds outstanding passcode challenges in memory.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	pending map[key]*challenge

	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewManager returns a Manager with the given passcode validity window and
// per-challenge attempt cap. Non-positive arguments fall back to 10 minutes
// and 5 attempts.
func NewManager(ttl time.Duration, maxAttempts int) *Manager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Manager{
		pending:     make(map[key]*challenge),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Issue generates a fresh passcode for (email, purpose), holding payload
// until verification. Any outstanding challenge for the pair is replaced,
// which invalidates its code.
func (m *Manager) Issue(email string, purpose Purpose, payload any) (string, error) {
	code, err := generateCode(CodeLength)
	if err != nil {
		return "", fmt.Errorf("generate passcode: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.pending[key{normalize(email), purpose}] = &challenge{
		code:      code,
		payload:   payload,
		expiresAt: m.now().Add(m.ttl),
	}
	return code, nil
}

// Verify checks code against the outstanding challenge for (email, purpose).
// On success the challenge is consumed and its payload returned. On mismatch
// the challenge stays valid until the attempt cap or expiry discards it.
func (m *Manager) Verify(email string, purpose Purpose, code string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{normalize(email), purpose}
	ch, ok := m.pending[k]
	if !ok {
		return nil, ErrNoChallenge
	}
	if m.now().After(ch.expiresAt) {
		delete(m.pending, k)
		return nil, ErrExpired
	}
	if ch.code != strings.TrimSpace(code) {
		ch.attempts++
		if ch.attempts >= m.maxAttempts {
			delete(m.pending, k)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrMismatch
	}
	delete(m.pending, k)
	return ch.payload, nil
}

// Cancel discards any outstanding challenge for (email, purpose). Used when
// passcode delivery fails so the flow returns to its idle state.
func (m *Manager) Cancel(email string, purpose Purpose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, key{normalize(email), purpose})
}

// sweepLocked drops expired challenges. Caller holds m.mu.
func (m *Manager) sweepLocked() {
	now := m.now()
	for k, ch := range m.pending {
		if now.After(ch.expiresAt) {
			delete(m.pending, k)
		}
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode returns n uniformly random decimal digits.
func generateCode(n int) (string, error) {
	const digits = "0123456789"
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b.WriteByte(digits[idx.Int64()])
	}
	return b.String(), nil
}
