// Package coordinator owns the in-memory session list and the "current
// session" pointer, and keeps the backend-visible notion of a session
// consistent with the local one. Local state is authoritative for the UI;
// the backend is reconciled around it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
	"github.com/nullchimp/ai-agent-sub000/internal/store"
)

var (
	// ErrCreationInProgress gates re-entrant session creation; a rapid
	// double-invocation must not create two sessions.
	ErrCreationInProgress = errors.New("session creation already in progress")

	// ErrNoCurrentSession is returned when an operation needs a current
	// session and none is selected (explicit empty state).
	ErrNoCurrentSession = errors.New("no current session")

	// ErrUnknownSession is returned for a local id the coordinator does not
	// hold.
	ErrUnknownSession = errors.New("unknown session")
)

// Backend is the slice of the gateway the coordinator needs.
type Backend interface {
	CreateSession(ctx context.Context) (string, error)
	VerifySession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Coordinator reconciles the locally persisted session list with backend
// reality. All exported methods are safe for concurrent use.
type Coordinator struct {
	mu       sync.Mutex
	store    *store.SessionStore
	backend  Backend
	clock    clock.Clock
	logger   *zap.SugaredLogger
	sessions []domain.Session
	current  string
	creating bool
}

// New creates a coordinator. clk and logger may be nil.
func New(st *store.SessionStore, backend Backend, clk clock.Clock, logger *zap.SugaredLogger) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Coordinator{store: st, backend: backend, clock: clk, logger: logger}
}

// Start loads persisted sessions and establishes the current session. With no
// stored sessions it creates a fresh one; otherwise it selects the most recent
// and verifies its backend linkage.
func (c *Coordinator) Start(ctx context.Context) error {
	empty, err := c.attach(ctx)
	if err != nil {
		return err
	}
	if empty {
		_, err = c.NewSession(ctx)
	}
	return err
}

// Attach loads persisted sessions and selects the most recent without ever
// creating one. Non-interactive commands use it so listing or deleting never
// provisions backend state as a side effect.
func (c *Coordinator) Attach(ctx context.Context) error {
	_, err := c.attach(ctx)
	return err
}

func (c *Coordinator) attach(ctx context.Context) (empty bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions = c.store.Load(ctx)
	if len(c.sessions) == 0 {
		c.current = ""
		return true, nil
	}

	c.current = c.sessions[0].LocalID
	c.verifyLocked(ctx, 0)
	return false, c.persistLocked(ctx)
}

// verifyLocked reconciles one session's backend linkage. Not-found clears the
// backend id (the session re-links lazily before its next send); transport or
// server failures leave the linkage unverified rather than destroying it.
func (c *Coordinator) verifyLocked(ctx context.Context, idx int) {
	s := &c.sessions[idx]
	if !s.Linked() {
		return
	}
	err := c.backend.VerifySession(ctx, s.BackendID)
	switch {
	case err == nil:
		c.logger.Debugw("session verified", "local_id", s.LocalID, "backend_id", s.BackendID)
	case gateway.IsNotFound(err):
		c.logger.Infow("backend session gone, unlinking", "local_id", s.LocalID, "backend_id", s.BackendID)
		s.BackendID = ""
	default:
		c.logger.Warnw("session verify failed, keeping linkage", "local_id", s.LocalID, "error", err)
	}
}

// NewSession creates a local session, eagerly provisions a backend session
// for it, prepends it to the list and makes it current. A second invocation
// while one is in flight is rejected, not queued. A failed backend create is
// not fatal: the session stays unlinked and links lazily on first send.
func (c *Coordinator) NewSession(ctx context.Context) (domain.Session, error) {
	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return domain.Session{}, ErrCreationInProgress
	}
	c.creating = true
	c.mu.Unlock()

	// backend call happens outside the lock so the gate is observable
	backendID, err := c.backend.CreateSession(ctx)

	c.mu.Lock()
	defer func() {
		c.creating = false
		c.mu.Unlock()
	}()

	s := domain.NewSession(c.clock.Now())
	if err != nil {
		c.logger.Warnw("backend session create failed, staying unlinked", "local_id", s.LocalID, "error", err)
	} else {
		s.BackendID = backendID
	}

	// newest first, always prepended
	c.sessions = append([]domain.Session{s}, c.sessions...)
	c.current = s.LocalID

	if err := c.persistLocked(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// EnsureLinked provisions a backend session for an unlinked local session and
// returns the backend id to address. Callers must abort their operation when
// provisioning fails.
func (c *Coordinator) EnsureLinked(ctx context.Context, localID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownSession, localID)
	}
	if c.sessions[idx].Linked() {
		return c.sessions[idx].BackendID, nil
	}

	backendID, err := c.backend.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("provisioning backend session failed: %w", err)
	}
	c.sessions[idx].BackendID = backendID
	if err := c.persistLocked(ctx); err != nil {
		return backendID, err
	}
	return backendID, nil
}

// Delete removes a session. A backend delete failure is logged, never fatal:
// the local list is authoritative. When the deleted session was current, the
// most recent survivor becomes current (re-verified like at startup); with no
// survivors the coordinator enters an explicit empty state.
func (c *Coordinator) Delete(ctx context.Context, localID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, localID)
	}

	if s := c.sessions[idx]; s.Linked() {
		if err := c.backend.DeleteSession(ctx, s.BackendID); err != nil {
			c.logger.Warnw("backend delete failed, removing locally anyway",
				"local_id", s.LocalID, "backend_id", s.BackendID, "error", err)
		}
	}

	c.sessions = append(c.sessions[:idx], c.sessions[idx+1:]...)

	if c.current == localID {
		if len(c.sessions) > 0 {
			c.current = c.sessions[0].LocalID
			c.verifyLocked(ctx, 0)
		} else {
			c.current = ""
		}
	}
	return c.persistLocked(ctx)
}

// Select makes localID the current session and verifies its linkage.
func (c *Coordinator) Select(ctx context.Context, localID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, localID)
	}
	c.current = localID
	c.verifyLocked(ctx, idx)
	return c.persistLocked(ctx)
}

// AppendMessage appends to a session's transcript and persists. The first
// user message also derives the session title.
func (c *Coordinator) AppendMessage(ctx context.Context, localID string, m domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, localID)
	}
	s := &c.sessions[idx]
	if m.Role == domain.RoleUser && len(s.Messages) == 0 {
		s.DeriveTitle(m.Content)
	}
	s.AppendMessage(m)
	return c.persistLocked(ctx)
}

// SetDebugEnabled persists the per-session debug capture flag.
func (c *Coordinator) SetDebugEnabled(ctx context.Context, localID string, enabled bool) error {
	return c.mutate(ctx, localID, func(s *domain.Session) { s.DebugEnabled = enabled })
}

// SetDebugPanelOpen persists the per-session debug panel flag.
func (c *Coordinator) SetDebugPanelOpen(ctx context.Context, localID string, open bool) error {
	return c.mutate(ctx, localID, func(s *domain.Session) { s.DebugPanelOpen = open })
}

func (c *Coordinator) mutate(ctx context.Context, localID string, fn func(*domain.Session)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, localID)
	}
	fn(&c.sessions[idx])
	return c.persistLocked(ctx)
}

// Current returns a copy of the current session.
func (c *Coordinator) Current() (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(c.current)
	if idx < 0 {
		return domain.Session{}, false
	}
	return cloneSession(c.sessions[idx]), true
}

// CurrentID returns the current session's local id, or "" in the empty state.
// UIs use it to check whether an in-flight response is still relevant.
func (c *Coordinator) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Get returns a copy of one session by local id.
func (c *Coordinator) Get(localID string) (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(localID)
	if idx < 0 {
		return domain.Session{}, false
	}
	return cloneSession(c.sessions[idx]), true
}

// Sessions returns a copy of the full list, most recent first.
func (c *Coordinator) Sessions() []domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Session, len(c.sessions))
	for i, s := range c.sessions {
		out[i] = cloneSession(s)
	}
	return out
}

func (c *Coordinator) indexLocked(localID string) int {
	if localID == "" {
		return -1
	}
	for i := range c.sessions {
		if c.sessions[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// persistLocked rewrites the whole list. Mutations always persist immediately
// so nothing is lost when the process exits.
func (c *Coordinator) persistLocked(ctx context.Context) error {
	if err := c.store.Save(ctx, c.sessions); err != nil {
		return fmt.Errorf("persisting sessions failed: %w", err)
	}
	return nil
}

func cloneSession(s domain.Session) domain.Session {
	out := s
	out.Messages = make([]domain.Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
