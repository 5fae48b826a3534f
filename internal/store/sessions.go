package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

// SessionStore serializes the full ordered session list to a Blob. Every
// mutation anywhere in the app ends in a whole-list Save; there is no delta
// persistence.
type SessionStore struct {
	blob   Blob
	logger *zap.SugaredLogger
}

// NewSessionStore wraps a Blob. logger may be nil.
func NewSessionStore(blob Blob, logger *zap.SugaredLogger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SessionStore{blob: blob, logger: logger}
}

// Load restores the session list. It fails soft: an absent or corrupt blob
// yields an empty list, never an error, so startup cannot be wedged by bad
// state on disk.
func (s *SessionStore) Load(ctx context.Context) []domain.Session {
	data, found, err := s.blob.Load(ctx, SessionsKey)
	if err != nil {
		s.logger.Warnw("session store load failed, starting empty", "error", err)
		return []domain.Session{}
	}
	if !found {
		return []domain.Session{}
	}
	var sessions []domain.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.logger.Warnw("session store blob corrupt, starting empty", "error", err)
		return []domain.Session{}
	}
	return sessions
}

// Save rewrites the whole session list.
func (s *SessionStore) Save(ctx context.Context, sessions []domain.Session) error {
	if sessions == nil {
		sessions = []domain.Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return s.blob.Save(ctx, SessionsKey, data)
}

// Close releases the underlying blob store.
func (s *SessionStore) Close() error { return s.blob.Close() }
