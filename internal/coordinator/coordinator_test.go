package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
	"github.com/nullchimp/ai-agent-sub000/internal/store"
)

// fakeBackend is a scriptable Backend.
type fakeBackend struct {
	mu          sync.Mutex
	createCalls int
	createErr   error
	createHook  func()
	verifyErr   error
	deleteErr   error
	deleted     []string
}

func (f *fakeBackend) CreateSession(context.Context) (string, error) {
	f.mu.Lock()
	f.createCalls++
	n := f.createCalls
	hook := f.createHook
	err := f.createErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("be-%d", n), nil
}

func (f *fakeBackend) VerifySession(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyErr
}

func (f *fakeBackend) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func newStore(t *testing.T) *store.SessionStore {
	t.Helper()
	blob, err := store.NewFileBlob(t.TempDir())
	require.NoError(t, err)
	return store.NewSessionStore(blob, nil)
}

func TestStartWithEmptyStoreCreatesSession(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	c := New(newStore(t), be, nil, nil)

	require.NoError(t, c.Start(ctx))

	cur, ok := c.Current()
	require.True(t, ok)
	assert.True(t, cur.Linked())
	assert.Equal(t, "be-1", cur.BackendID)
	assert.Len(t, c.Sessions(), 1)
}

func TestStartVerifyNotFoundUnlinksAndPersists(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	stored := domain.NewSession(time.Now())
	stored.BackendID = "be-stale"
	require.NoError(t, st.Save(ctx, []domain.Session{stored}))

	be := &fakeBackend{verifyErr: fmt.Errorf("verify: %w", gateway.ErrSessionNotFound)}
	c := New(st, be, nil, nil)
	require.NoError(t, c.Start(ctx))

	cur, ok := c.Current()
	require.True(t, ok)
	assert.False(t, cur.Linked(), "stale backend id must be cleared")

	// persisted too
	reloaded := st.Load(ctx)
	require.Len(t, reloaded, 1)
	assert.Empty(t, reloaded[0].BackendID)

	// first send re-provisions via create
	id, err := c.EnsureLinked(ctx, cur.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "be-1", id)
	assert.Equal(t, 1, be.calls())
}

func TestStartVerifyTransportFailureKeepsLinkage(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	stored := domain.NewSession(time.Now())
	stored.BackendID = "be-live"
	require.NoError(t, st.Save(ctx, []domain.Session{stored}))

	be := &fakeBackend{verifyErr: errors.New("connection refused")}
	c := New(st, be, nil, nil)
	require.NoError(t, c.Start(ctx))

	cur, _ := c.Current()
	assert.Equal(t, "be-live", cur.BackendID, "transport failure must not destroy linkage")
}

func TestOrderingInvariant(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	c := New(newStore(t), be, nil, nil)
	require.NoError(t, c.Start(ctx)) // session A

	a := c.Sessions()[0]
	b, err := c.NewSession(ctx)
	require.NoError(t, err)
	cs, err := c.NewSession(ctx)
	require.NoError(t, err)

	ids := func() []string {
		var out []string
		for _, s := range c.Sessions() {
			out = append(out, s.LocalID)
		}
		return out
	}

	assert.Equal(t, []string{cs.LocalID, b.LocalID, a.LocalID}, ids())

	require.NoError(t, c.Delete(ctx, b.LocalID))
	assert.Equal(t, []string{cs.LocalID, a.LocalID}, ids())
}

func TestDeleteCurrentCascades(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	c := New(newStore(t), be, nil, nil)
	require.NoError(t, c.Start(ctx))
	second, err := c.NewSession(ctx)
	require.NoError(t, err)

	require.Equal(t, second.LocalID, c.CurrentID())
	require.NoError(t, c.Delete(ctx, second.LocalID))

	// most recent survivor becomes current
	cur, ok := c.Current()
	require.True(t, ok)
	assert.NotEqual(t, second.LocalID, cur.LocalID)
	assert.Contains(t, be.deleted, second.BackendID)
}

func TestDeleteLastEntersEmptyState(t *testing.T) {
	ctx := context.Background()
	c := New(newStore(t), &fakeBackend{}, nil, nil)
	require.NoError(t, c.Start(ctx))

	only := c.Sessions()[0]
	require.NoError(t, c.Delete(ctx, only.LocalID))

	_, ok := c.Current()
	assert.False(t, ok, "no implicit session creation after deleting the last one")
	assert.Empty(t, c.Sessions())
	assert.Empty(t, c.CurrentID())
}

func TestDeleteBackendFailureStillRemovesLocally(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{deleteErr: errors.New("backend down")}
	c := New(newStore(t), be, nil, nil)
	require.NoError(t, c.Start(ctx))

	only := c.Sessions()[0]
	require.NoError(t, c.Delete(ctx, only.LocalID))
	assert.Empty(t, c.Sessions())
}

func TestNewSessionGatesReEntry(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	c := New(newStore(t), be, nil, nil)
	require.NoError(t, c.Start(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	be.mu.Lock()
	be.createHook = func() {
		close(entered)
		<-release
	}
	be.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := c.NewSession(ctx)
		done <- err
	}()

	<-entered
	_, err := c.NewSession(ctx)
	assert.ErrorIs(t, err, ErrCreationInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, c.Sessions(), 2, "exactly one new session")
}

func TestAppendMessageDerivesTitleOnceAndPersists(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	c := New(st, &fakeBackend{}, nil, nil)
	require.NoError(t, c.Start(ctx))

	id := c.CurrentID()
	require.NoError(t, c.AppendMessage(ctx, id, domain.NewUserMessage("first question", time.Now())))
	require.NoError(t, c.AppendMessage(ctx, id, domain.NewAssistantMessage("answer", nil, time.Now())))
	require.NoError(t, c.AppendMessage(ctx, id, domain.NewUserMessage("second question", time.Now())))

	cur, _ := c.Current()
	assert.Equal(t, "first question", cur.Title)
	require.Len(t, cur.Messages, 3)

	reloaded := st.Load(ctx)
	require.Len(t, reloaded, 1)
	assert.Equal(t, "first question", reloaded[0].Title)
	assert.Len(t, reloaded[0].Messages, 3)
}

func TestEnsureLinkedIsIdempotentWhenLinked(t *testing.T) {
	ctx := context.Background()
	be := &fakeBackend{}
	c := New(newStore(t), be, nil, nil)
	require.NoError(t, c.Start(ctx))

	id := c.CurrentID()
	before := be.calls()
	backendID, err := c.EnsureLinked(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "be-1", backendID)
	assert.Equal(t, before, be.calls(), "no extra create for a linked session")
}

func TestEnsureLinkedFailurePropagates(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	stored := domain.NewSession(time.Now())
	require.NoError(t, st.Save(ctx, []domain.Session{stored}))

	be := &fakeBackend{createErr: errors.New("backend down")}
	c := New(st, be, nil, nil)
	require.NoError(t, c.Start(ctx))

	_, err := c.EnsureLinked(ctx, stored.LocalID)
	assert.Error(t, err)
}
