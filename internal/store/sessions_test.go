package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

func sampleSessions(t *testing.T) []domain.Session {
	t.Helper()
	now := time.Date(2025, 11, 3, 9, 30, 0, 123000000, time.UTC)

	a := domain.NewSession(now)
	a.BackendID = "backend-a"
	a.DeriveTitle("talk to me about goroutines")
	a.AppendMessage(domain.NewUserMessage("talk to me about goroutines", now))
	a.AppendMessage(domain.NewAssistantMessage("sure", []string{"search", "docs"}, now.Add(2*time.Second)))
	a.DebugEnabled = true
	a.DebugPanelOpen = true

	b := domain.NewSession(now.Add(time.Minute))

	return []domain.Session{b, a}
}

func openBackends(t *testing.T) map[string]Blob {
	t.Helper()
	dir := t.TempDir()

	fileBlob, err := NewFileBlob(filepath.Join(dir, "file"))
	require.NoError(t, err)

	sqliteBlob, err := NewSQLiteBlob(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteBlob.Close() })

	return map[string]Blob{"file": fileBlob, "sqlite": sqliteBlob}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, blob := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			st := NewSessionStore(blob, nil)
			want := sampleSessions(t)

			require.NoError(t, st.Save(ctx, want))
			got := st.Load(ctx)

			require.Len(t, got, 2)
			assert.Equal(t, want[0].LocalID, got[0].LocalID)
			assert.Equal(t, want[1].LocalID, got[1].LocalID)
			assert.Equal(t, want[1].BackendID, got[1].BackendID)
			assert.Equal(t, want[1].Title, got[1].Title)
			assert.True(t, got[1].DebugEnabled)
			assert.True(t, got[1].DebugPanelOpen)

			require.Len(t, got[1].Messages, 2)
			assert.Equal(t, domain.RoleUser, got[1].Messages[0].Role)
			assert.Equal(t, domain.RoleAssistant, got[1].Messages[1].Role)
			assert.Equal(t, []string{"search", "docs"}, got[1].Messages[1].UsedTools)

			// timestamps survive to the millisecond
			assert.True(t, want[1].Messages[0].Timestamp.Equal(got[1].Messages[0].Timestamp))
			assert.True(t, want[1].CreatedAt.Equal(got[1].CreatedAt))
		})
	}
}

func TestLoadAbsentIsEmpty(t *testing.T) {
	for name, blob := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			st := NewSessionStore(blob, nil)
			got := st.Load(context.Background())
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestLoadCorruptBlobFailsSoft(t *testing.T) {
	dir := t.TempDir()
	blob, err := NewFileBlob(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, SessionsKey+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st := NewSessionStore(blob, nil)
	got := st.Load(context.Background())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveOverwritesWholeList(t *testing.T) {
	ctx := context.Background()
	blob, err := NewFileBlob(t.TempDir())
	require.NoError(t, err)
	st := NewSessionStore(blob, nil)

	require.NoError(t, st.Save(ctx, sampleSessions(t)))
	require.NoError(t, st.Save(ctx, []domain.Session{}))

	assert.Empty(t, st.Load(ctx))
}
