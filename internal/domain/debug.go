package domain

import "time"

// TruncationSentinel is the fixed suffix the backend appends to string values
// it shortened before transmission. Renderers must strip it and show a marker
// instead; the sentinel itself never reaches the user verbatim.
const TruncationSentinel = "...[truncated]"

// Debug event types as emitted by the backend.
const (
	EventModelCall     = "model_call"
	EventModelResponse = "model_response"
	EventToolCall      = "tool_call"
	EventToolResult    = "tool_result"
	EventToolError     = "tool_error"
	EventMCPCall       = "mcp_call"
	EventMCPResult     = "mcp_result"
)

// DebugEvent is a structured record of one step of agent/tool/model
// communication. Data is an arbitrary nested payload; its root may carry
// reserved color-annotation keys consumed by the renderer.
type DebugEvent struct {
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"`
}

var eventLabels = map[string]string{
	EventModelCall:     "MODEL CALL",
	EventModelResponse: "MODEL RESPONSE",
	EventToolCall:      "TOOL CALL",
	EventToolResult:    "TOOL RESULT",
	EventToolError:     "TOOL ERROR",
	EventMCPCall:       "MCP CALL",
	EventMCPResult:     "MCP RESULT",
}

// Label returns a display label for the event type. Unknown types fall back
// to the raw tag so nothing is dropped.
func (e DebugEvent) Label() string {
	if label, ok := eventLabels[e.EventType]; ok {
		return label
	}
	return e.EventType
}
