package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(buf)
	var m map[string]interface{}
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestWriteError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	err := w.WriteError("API_UNREACHABLE", "connection refused", "check api.base_url")
	require.NoError(t, err)

	m := decodeLine(t, buf)
	require.Equal(t, "error", m["type"])
	require.EqualValues(t, 1, m["schemaVersion"])
	require.Equal(t, "API_UNREACHABLE", m["code"])
	require.Equal(t, "connection refused", m["message"])
	require.Equal(t, "check api.base_url", m["hint"])
}

func TestWriteSession(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	s := domain.NewSession(time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC))
	s.BackendID = "be-1"
	s.AppendMessage(domain.NewUserMessage("hi", time.Now()))

	require.NoError(t, w.WriteSession(s, true))

	m := decodeLine(t, buf)
	require.Equal(t, "session", m["type"])
	require.Equal(t, s.LocalID, m["local_id"])
	require.Equal(t, "be-1", m["backend_id"])
	require.EqualValues(t, 1, m["messages"])
	require.Equal(t, true, m["current"])
	require.Equal(t, true, m["linked"])
}

func TestWriteDebugEventPassesDataThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	ev := domain.DebugEvent{
		EventType: domain.EventToolResult,
		Data:      map[string]any{"nested": map[string]any{"k": "v"}},
	}
	require.NoError(t, w.WriteDebugEvent(ev))

	m := decodeLine(t, buf)
	require.Equal(t, "debug_event", m["type"])
	data, ok := m["data"].(map[string]interface{})
	require.True(t, ok)
	nested, ok := data["nested"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "v", nested["k"])
}
