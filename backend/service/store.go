package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// SessionStore is an in-memory store for sessions. Nothing outlives the
// process.
type SessionStore struct {
	sessions    map[string]*Session
	mu          sync.RWMutex
	maxSessions int // Maximum sessions to keep, 0 = unlimited
}

func NewSessionStore(cfg *config.SessionConfig) *SessionStore {
	maxSessions := cfg.MaxSessions
	if maxSessions < 0 {
		maxSessions = 0
	}
	slog.Info("session store initialized", "max_sessions", maxSessions)
	return &SessionStore{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

func (s *SessionStore) Save(session *Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	evicted := s.evictIfNeeded()
	s.mu.Unlock()

	for _, old := range evicted {
		closeSession(context.Background(), old)
	}
}

func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes and closes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	closeSession(ctx, session)
	return nil
}

// CloseAll closes every session, used on shutdown
func (s *SessionStore) CloseAll(ctx context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		closeSession(ctx, session)
	}
}

// evictIfNeeded removes the oldest sessions once the store exceeds
// maxSessions. Must be called with lock held; the caller closes them.
func (s *SessionStore) evictIfNeeded() []*Session {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return nil
	}

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	removeCount := len(sessions) - s.maxSessions
	evicted := sessions[:removeCount]
	for _, session := range evicted {
		slog.Info("evicting old session",
			"session_id", session.ID,
			"created_at", session.CreatedAt,
		)
		delete(s.sessions, session.ID)
	}
	return evicted
}

// Count returns the number of sessions in the store
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// closeSession logs cleanup failures; the session is gone from the store
// either way
func closeSession(ctx context.Context, session *Session) {
	if err := session.Close(ctx); err != nil {
		logger.Warn(logger.WithSession(ctx, session.ID), "failed to discard session reports", "error", err)
	}
}
