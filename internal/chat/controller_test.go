package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullchimp/ai-agent-sub000/internal/coordinator"
	"github.com/nullchimp/ai-agent-sub000/internal/domain"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
	"github.com/nullchimp/ai-agent-sub000/internal/store"
)

// fakeSessionBackend implements coordinator.Backend.
type fakeSessionBackend struct {
	mu        sync.Mutex
	nextID    int
	createErr error
}

func (f *fakeSessionBackend) CreateSession(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	return "be-" + strings.Repeat("x", f.nextID), nil
}

func (f *fakeSessionBackend) VerifySession(context.Context, string) error { return nil }
func (f *fakeSessionBackend) DeleteSession(context.Context, string) error { return nil }

// fakeAsker implements Backend with scriptable behavior.
type fakeAsker struct {
	mu       sync.Mutex
	calls    int
	askHook  func()
	askErr   error
	response string
	tools    []string
}

func (f *fakeAsker) Ask(context.Context, string, string) (*gateway.AskResult, error) {
	f.mu.Lock()
	f.calls++
	hook := f.askHook
	err := f.askErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &gateway.AskResult{Response: f.response, UsedTools: f.tools}, nil
}

func (f *fakeAsker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newCoordinator(t *testing.T, be coordinator.Backend) *coordinator.Coordinator {
	t.Helper()
	blob, err := store.NewFileBlob(t.TempDir())
	require.NoError(t, err)
	c := coordinator.New(store.NewSessionStore(blob, nil), be, nil, nil)
	require.NoError(t, c.Start(context.Background()))
	return c
}

func TestSendAppendsUserAndAssistantMessages(t *testing.T) {
	coord := newCoordinator(t, &fakeSessionBackend{})
	asker := &fakeAsker{response: "42", tools: []string{"calc"}}
	ctrl := New(coord, asker, nil, nil, 0)

	reply, err := ctrl.Send(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", reply.Content)
	assert.Equal(t, []string{"calc"}, reply.UsedTools)

	cur, _ := coord.Current()
	require.Len(t, cur.Messages, 2)
	assert.Equal(t, domain.RoleUser, cur.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, cur.Messages[1].Role)
	assert.Equal(t, "what is the answer?", cur.Title)
}

func TestSendValidationBeforeNetwork(t *testing.T) {
	coord := newCoordinator(t, &fakeSessionBackend{})
	asker := &fakeAsker{}
	ctrl := New(coord, asker, nil, nil, 10)

	_, err := ctrl.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = ctrl.Send(context.Background(), strings.Repeat("y", 11))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	assert.Zero(t, asker.callCount(), "validation failures must not reach the network")
}

func TestSendProvisioningFailureDoesNotRecordUserMessage(t *testing.T) {
	// the current session is unlinked and the lazy backend create fails
	coord := newCoordinatorUnlinked(t)
	asker := &fakeAsker{response: "never"}
	ctrl := New(coord, asker, nil, nil, 0)

	_, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)

	got, _ := coord.Current()
	assert.Empty(t, got.Messages, "user message must not display as sent")
	assert.Zero(t, asker.callCount())
}

func newCoordinatorUnlinked(t *testing.T) *coordinator.Coordinator {
	t.Helper()
	be := &fakeSessionBackend{createErr: errors.New("backend down")}
	blob, err := store.NewFileBlob(t.TempDir())
	require.NoError(t, err)
	c := coordinator.New(store.NewSessionStore(blob, nil), be, nil, nil)
	require.NoError(t, c.Start(context.Background()))
	cur, ok := c.Current()
	require.True(t, ok)
	require.False(t, cur.Linked())
	return c
}

func TestSendAskFailureAppendsNoAssistantMessage(t *testing.T) {
	coord := newCoordinator(t, &fakeSessionBackend{})
	asker := &fakeAsker{askErr: errors.New("http 500")}
	ctrl := New(coord, asker, nil, nil, 0)

	_, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)

	cur, _ := coord.Current()
	require.Len(t, cur.Messages, 1, "user message sent, no assistant reply")
	assert.Equal(t, domain.RoleUser, cur.Messages[0].Role)
}

func TestConcurrentSendRejected(t *testing.T) {
	coord := newCoordinator(t, &fakeSessionBackend{})
	asker := &fakeAsker{response: "slow"}
	ctrl := New(coord, asker, nil, nil, 0)

	entered := make(chan struct{})
	release := make(chan struct{})
	asker.mu.Lock()
	asker.askHook = func() {
		close(entered)
		<-release
	}
	asker.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Send(context.Background(), "first")
		done <- err
	}()

	<-entered
	assert.True(t, ctrl.Sending())
	_, err := ctrl.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSendInProgress)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, asker.callCount(), "exactly one ask while the first was pending")
}

func TestStaleReplyDroppedAfterSessionSwitch(t *testing.T) {
	coord := newCoordinator(t, &fakeSessionBackend{})
	asker := &fakeAsker{response: "late"}
	ctrl := New(coord, asker, nil, nil, 0)

	firstID := coord.CurrentID()

	asker.mu.Lock()
	asker.askHook = func() {
		// user switches to a new session while the ask is in flight
		_, err := coord.NewSession(context.Background())
		if err != nil {
			panic(err)
		}
	}
	asker.mu.Unlock()

	_, err := ctrl.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSuperseded)

	// the reply landed nowhere
	first, ok := coord.Get(firstID)
	require.True(t, ok)
	require.Len(t, first.Messages, 1)
	assert.Equal(t, domain.RoleUser, first.Messages[0].Role)

	cur, _ := coord.Current()
	assert.Empty(t, cur.Messages)
}
