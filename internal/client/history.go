package client

import (
	"sync"
	"time"
)

// Entry is one completed therapy session.
type Entry struct {
	Code      string
	Response  string
	Timestamp time.Time
}

// History keeps the sessions of one interactive run in memory.
type History struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Add records a session.
func (h *History) Add(code, response string) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := Entry{Code: code, Response: response, Timestamp: h.now()}
	h.entries = append(h.entries, e)
	return e
}

// List returns a copy of the recorded sessions, oldest first.
func (h *History) List() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear forgets every session and reports how many were dropped.
func (h *History) Clear() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.entries)
	h.entries = nil
	return n
}
