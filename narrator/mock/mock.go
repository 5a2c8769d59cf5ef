// Package mock provides a deterministic narrator for local runs and tests.
package mock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ecovalley"
)

// ErrScripted is returned by a Narrator told to fail.
var ErrScripted = errors.New("mock narrator failure")

// Narrator echoes a short summary of each prompt. It records every request so
// tests can assert on order and content.
type Narrator struct {
	mu     sync.Mutex
	calls  []ecovalley.NarrativeRequest
	failAt int
}

func NewNarrator() *Narrator {
	return &Narrator{}
}

// NewFailingNarrator fails the nth call (1-based) with ErrScripted. Calls
// before it succeed.
func NewFailingNarrator(n int) *Narrator {
	return &Narrator{failAt: n}
}

// Generate is deterministic: the same request always yields the same text.
func (m *Narrator) Generate(ctx context.Context, req ecovalley.NarrativeRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	n := len(m.calls)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.failAt > 0 && n == m.failAt {
		slog.Info("NARRATOR: Mock failing", "call", n)
		return "", ErrScripted
	}

	slog.Info("NARRATOR: Mock invoked", "call", n, "prompt_len", len(req.Prompt))
	return fmt.Sprintf("[%s] %s", req.SystemRole, firstLine(req.Prompt)), nil
}

// Calls returns a copy of every request received so far.
func (m *Narrator) Calls() []ecovalley.NarrativeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ecovalley.NarrativeRequest(nil), m.calls...)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
