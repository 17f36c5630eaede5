// Package session keeps per-conversation dialogue state in process memory.
package session

import (
	"sync"
	"time"

	"github.com/looplab/fsm"

	"roofbot/internal/models"
)

// Session is one conversation. Callers must hold the session lock (Lock/Unlock)
// while reading or changing Filter or driving FSM.
type Session struct {
	ChatID int64
	Filter models.Filter
	FSM    *fsm.FSM

	mu       sync.Mutex
	lastSeen time.Time
	evicted  bool
}

func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock marks the session as active and releases it.
func (s *Session) Unlock() {
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Evicted reports whether the store dropped this session. Only meaningful under lock.
func (s *Session) Evicted() bool {
	return s.evicted
}

// State decodes the FSM's current state name.
func (s *Session) State() models.State {
	st, _ := models.ParseState(s.FSM.Current())
	return st
}

// Store maps chat ids to sessions. The store lock is never held while a
// session lock is awaited, so a slow conversation only blocks itself.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	newFSM   func() *fsm.FSM
}

// NewStore builds an empty store; newFSM creates the state machine of each new session.
func NewStore(newFSM func() *fsm.FSM) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		newFSM:   newFSM,
	}
}

// Open returns the session of chatID, creating it when missing.
func (s *Store) Open(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[chatID]; ok {
		return sess
	}
	sess := &Session{
		ChatID:   chatID,
		FSM:      s.newFSM(),
		lastSeen: time.Now(),
	}
	s.sessions[chatID] = sess
	return sess
}

func (s *Store) Get(chatID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions untouched for longer than ttl and returns how many
// were dropped. Sessions locked by an in-flight message are skipped.
func (s *Store) EvictIdle(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.lastSeen) > ttl {
			sess.evicted = true
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	return evicted
}
