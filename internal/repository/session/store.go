package session

import (
	"sync"

	domses "github.com/kailas-cloud/ragdex/internal/domain/session"
)

// Store is the in-memory per-session conversation memory. Sessions are
// created implicitly on first append and never deleted; unused sessions
// occupy memory for the process lifetime.
//
// The map lock only guards session lookup and creation; each session carries
// its own mutex so the read-modify-write of one session's history never
// blocks another, and no lock is ever held across network calls.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record
}

type record struct {
	mu       sync.Mutex
	messages []domses.Message
}

// New creates an empty session store.
func New() *Store {
	return &Store{sessions: make(map[string]*record)}
}

// History returns a copy of the session's messages oldest-first, or an empty
// list for an unseen id. Lookups do not create sessions.
func (s *Store) History(sessionID string) []domses.Message {
	s.mu.RLock()
	rec, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]domses.Message, len(rec.messages))
	copy(out, rec.messages)
	return out
}

// Append creates the session if absent, appends the messages in order, and
// trims the history to the MaxHistory most recent, discarding oldest first.
func (s *Store) Append(sessionID string, messages ...domses.Message) {
	if len(messages) == 0 {
		return
	}

	rec := s.getOrCreate(sessionID)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.messages = append(rec.messages, messages...)
	if extra := len(rec.messages) - domses.MaxHistory; extra > 0 {
		rec.messages = append(rec.messages[:0], rec.messages[extra:]...)
	}
}

func (s *Store) getOrCreate(sessionID string) *record {
	s.mu.RLock()
	rec, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok = s.sessions[sessionID]; ok {
		return rec
	}
	rec = &record{}
	s.sessions[sessionID] = rec
	return rec
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
