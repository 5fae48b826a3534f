package render

import (
	"strings"
	"time"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

// RenderEvent renders one debug event: a header line (type label, timestamp,
// free-text message) followed by the payload tree.
func RenderEvent(ev domain.DebugEvent, st *Styles) string {
	var b strings.Builder

	b.WriteString(st.Header.Render("[" + ev.Label() + "]"))
	if !ev.Timestamp.IsZero() {
		b.WriteString(" ")
		b.WriteString(st.Timestamp.Render(ev.Timestamp.UTC().Format(time.RFC3339)))
	}
	if ev.Message != "" {
		b.WriteString(" ")
		b.WriteString(st.Message.Render(ev.Message))
	}
	if len(ev.Data) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderData(ev.Data, st))
	}
	return b.String()
}

// RenderEvents renders a list of events in order, blank-line separated.
func RenderEvents(events []domain.DebugEvent, st *Styles) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, RenderEvent(ev, st))
	}
	return strings.Join(parts, "\n\n")
}
