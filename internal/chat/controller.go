// Package chat orchestrates the send/receive lifecycle of the transcript:
// validation before any network call, strictly serialized sends, and
// relevance checks so a reply never lands in the wrong session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/coordinator"
	"github.com/nullchimp/ai-agent-sub000/internal/domain"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
)

// DefaultMaxMessageChars bounds outgoing messages before any network call.
const DefaultMaxMessageChars = 8000

var (
	// ErrSendInProgress rejects a send issued while another is pending.
	// Sends are never queued.
	ErrSendInProgress = errors.New("a message is already being sent")

	// ErrEmptyMessage rejects blank outgoing messages.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong rejects oversized outgoing messages.
	ErrMessageTooLong = errors.New("message is too long")

	// ErrSuperseded means the reply arrived after the user switched away
	// from the session it was addressed to; it was dropped, not applied.
	ErrSuperseded = errors.New("reply superseded by session switch")
)

// Backend is the slice of the gateway the controller needs.
type Backend interface {
	Ask(ctx context.Context, sessionID, query string) (*gateway.AskResult, error)
}

// Controller drives one send at a time against the current session.
type Controller struct {
	mu       sync.Mutex
	sending  bool
	coord    *coordinator.Coordinator
	backend  Backend
	clock    clock.Clock
	logger   *zap.SugaredLogger
	maxChars int
}

// New creates a controller. clk and logger may be nil; maxChars <= 0 selects
// the default bound.
func New(coord *coordinator.Coordinator, backend Backend, clk clock.Clock, logger *zap.SugaredLogger, maxChars int) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxMessageChars
	}
	return &Controller{coord: coord, backend: backend, clock: clk, logger: logger, maxChars: maxChars}
}

// Sending reports whether a send is in flight, for UI affordances.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Send validates text, provisions backend linkage if needed, appends the user
// message, and returns the assistant reply after appending it. On any failure
// before the ask the user message is not recorded; on ask failure no
// assistant message is recorded. A reply addressed to a session that is no
// longer current is dropped with ErrSuperseded.
func (c *Controller) Send(ctx context.Context, text string) (domain.Message, error) {
	if err := c.validate(text); err != nil {
		return domain.Message{}, err
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return domain.Message{}, ErrSendInProgress
	}
	c.sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	localID := c.coord.CurrentID()
	if localID == "" {
		return domain.Message{}, coordinator.ErrNoCurrentSession
	}

	backendID, err := c.coord.EnsureLinked(ctx, localID)
	if err != nil {
		// the user message must not be displayed as sent
		return domain.Message{}, fmt.Errorf("cannot link session: %w", err)
	}

	userMsg := domain.NewUserMessage(text, c.clock.Now())
	if err := c.coord.AppendMessage(ctx, localID, userMsg); err != nil {
		return domain.Message{}, err
	}

	res, err := c.backend.Ask(ctx, backendID, text)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send failed: %w", err)
	}

	// is this response still relevant?
	if c.coord.CurrentID() != localID {
		c.logger.Debugw("dropping stale reply", "local_id", localID)
		return domain.Message{}, ErrSuperseded
	}

	reply := domain.NewAssistantMessage(res.Response, res.UsedTools, c.clock.Now())
	if err := c.coord.AppendMessage(ctx, localID, reply); err != nil {
		return domain.Message{}, err
	}
	return reply, nil
}

func (c *Controller) validate(text string) error {
	switch {
	case strings.TrimSpace(text) == "":
		return ErrEmptyMessage
	case len([]rune(text)) > c.maxChars:
		return ErrMessageTooLong
	}
	return nil
}
