// Package output emits machine-readable ndjson records so AI agents and
// scripts driving the CLI always get structured results, including failures.
package output

import (
	"encoding/json"
	"io"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

const schemaVersion = 1

// NDJSONWriter writes one JSON record per line.
type NDJSONWriter struct {
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer targeting w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

// WriteError emits a machine-readable failure with an optional hint.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	rec := map[string]any{
		"type":          "error",
		"schemaVersion": schemaVersion,
		"code":          code,
		"message":       message,
	}
	if len(hint) > 0 && hint[0] != "" {
		rec["hint"] = hint[0]
	}
	return w.enc.Encode(rec)
}

// sessionRecord is the wire shape of one session row.
type sessionRecord struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	LocalID       string `json:"local_id"`
	BackendID     string `json:"backend_id,omitempty"`
	Title         string `json:"title"`
	Messages      int    `json:"messages"`
	CreatedAt     string `json:"created_at"`
	Current       bool   `json:"current,omitempty"`
	Linked        bool   `json:"linked"`
	DebugEnabled  bool   `json:"debug_enabled,omitempty"`
}

// WriteSession emits one session summary row.
func (w *NDJSONWriter) WriteSession(s domain.Session, current bool) error {
	return w.enc.Encode(sessionRecord{
		Type:          "session",
		SchemaVersion: schemaVersion,
		LocalID:       s.LocalID,
		BackendID:     s.BackendID,
		Title:         s.Title,
		Messages:      len(s.Messages),
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		Current:       current,
		Linked:        s.Linked(),
		DebugEnabled:  s.DebugEnabled,
	})
}

// WriteTool emits one tool row with its grouping source.
func (w *NDJSONWriter) WriteTool(t domain.Tool) error {
	return w.enc.Encode(map[string]any{
		"type":          "tool",
		"schemaVersion": schemaVersion,
		"name":          t.Name,
		"description":   t.Description,
		"enabled":       t.Enabled,
		"source":        t.SourceOrDefault(),
	})
}

// WriteDebugEvent emits one debug event verbatim; payloads pass through
// untouched so nothing is lost to rendering.
func (w *NDJSONWriter) WriteDebugEvent(ev domain.DebugEvent) error {
	return w.enc.Encode(map[string]any{
		"type":          "debug_event",
		"schemaVersion": schemaVersion,
		"event_type":    ev.EventType,
		"message":       ev.Message,
		"data":          ev.Data,
		"timestamp":     ev.Timestamp,
		"session_id":    ev.SessionID,
	})
}

// WriteMessage emits one transcript message.
func (w *NDJSONWriter) WriteMessage(m domain.Message) error {
	return w.enc.Encode(map[string]any{
		"type":          "message",
		"schemaVersion": schemaVersion,
		"id":            m.ID,
		"role":          m.Role,
		"content":       m.Content,
		"timestamp":     m.Timestamp,
		"used_tools":    m.UsedTools,
	})
}

// WriteAck emits a success acknowledgment for a mutating command.
func (w *NDJSONWriter) WriteAck(action string, fields map[string]any) error {
	rec := map[string]any{
		"type":          "ack",
		"schemaVersion": schemaVersion,
		"action":        action,
	}
	for k, v := range fields {
		rec[k] = v
	}
	return w.enc.Encode(rec)
}
