package coordinator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gowebpki/jcs"

	"ecovalley"
)

// History is the append-only conversation log of one coordinator. With a
// positive limit the oldest entries are evicted once it is full.
type History struct {
	mu      sync.Mutex
	entries []ecovalley.ConversationEntry
	limit   int
}

func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Append records e and returns the log as it stands right after, so the
// caller sees its own entry last.
func (h *History) Append(e ecovalley.ConversationEntry) []ecovalley.ConversationEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.limit > 0 && len(h.entries) >= h.limit {
		n := copy(h.entries, h.entries[len(h.entries)-h.limit+1:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
	}
	h.entries = append(h.entries, e)
	return h.snapshot()
}

// Entries returns a copy of the log in arrival order.
func (h *History) Entries() []ecovalley.ConversationEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) snapshot() []ecovalley.ConversationEntry {
	return append(make([]ecovalley.ConversationEntry, 0, len(h.entries)), h.entries...)
}

// RequestDigest fingerprints a request as the SHA-256 of its RFC 8785
// canonical JSON, so equal requests share a digest regardless of field order.
func RequestDigest(req ecovalley.MaterialRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize request: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
