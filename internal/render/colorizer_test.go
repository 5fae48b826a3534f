package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

func TestRenderNull(t *testing.T) {
	st := PlainStyles()
	out := renderValue(nil, 0, "", nil, st)
	assert.Equal(t, "null", out)
}

func TestRenderScalars(t *testing.T) {
	st := PlainStyles()

	assert.Equal(t, `"hi"`, renderValue("hi", 0, "", nil, st))
	assert.Equal(t, "true", renderValue(true, 0, "", nil, st))
	assert.Equal(t, "false", renderValue(false, 0, "", nil, st))
	assert.Equal(t, "42", renderValue(float64(42), 0, "", nil, st))
	assert.Equal(t, "3.5", renderValue(3.5, 0, "", nil, st))
}

func TestRenderEmptyContainersInline(t *testing.T) {
	st := PlainStyles()
	assert.Equal(t, "{}", renderValue(map[string]any{}, 0, "", nil, st))
	assert.Equal(t, "[]", renderValue([]any{}, 0, "", nil, st))
}

func TestRenderNestedIndentationAndCommas(t *testing.T) {
	st := PlainStyles()
	payload := map[string]any{
		"b": []any{float64(1), float64(2)},
		"a": "x",
	}

	out := RenderData(payload, st)
	want := strings.Join([]string{
		"{",
		`  "a": "x",`,
		`  "b": [`,
		"    1,",
		"    2",
		"  ]",
		"}",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTruncationSentinelNeverLeaks(t *testing.T) {
	st := PlainStyles()
	out := renderValue("hello"+domain.TruncationSentinel, 0, "", nil, st)

	assert.Contains(t, out, `"hello"`)
	assert.Contains(t, out, "[truncated]")
	assert.NotContains(t, out, domain.TruncationSentinel,
		"the raw sentinel must never appear outside its marker")
}

func TestTruncationPreservesEscapedText(t *testing.T) {
	st := PlainStyles()
	raw := "line1\nline2\"quoted\"" + domain.TruncationSentinel
	out := renderString(raw, st)

	assert.Contains(t, out, `\n`)
	assert.Contains(t, out, `\"quoted\"`)
	assert.Contains(t, out, "[truncated]")
}

func TestColorMapExtractionExcludesMetadata(t *testing.T) {
	payload, colors := ExtractColorMap(map[string]any{
		"a":          map[string]any{"b": float64(1)},
		"_a_b_color": "red",
	})

	assert.NotContains(t, payload, "_a_b_color")
	assert.Equal(t, map[string]string{"_a_b_color": "red"}, colors)
}

func TestKeyPathColorApplication(t *testing.T) {
	st := DefaultStyles()
	out := RenderData(map[string]any{
		"a":          map[string]any{"b": float64(1)},
		"_a_b_color": "red",
	}, st)

	redB := st.Colors["red"].Render(`"b"`)
	plainA := st.Key.Render(`"a"`)

	assert.Contains(t, out, redB, "key b at path a.b carries the red style")
	assert.Contains(t, out, plainA, "unrelated key a stays in the default key style")
	assert.NotContains(t, out, "_a_b_color", "annotation keys are not rendered")
}

func TestKeyPathConstructionIsPositional(t *testing.T) {
	// only the key at the annotated path matches; an identically named key
	// elsewhere in the tree does not
	colors := map[string]string{"_a_b_color": "green"}

	name, ok := colorFor("a.b", colors)
	require.True(t, ok)
	assert.Equal(t, "green", name)

	_, ok = colorFor("other.0.b", colors)
	assert.False(t, ok)
	_, ok = colorFor("b", colors)
	assert.False(t, ok)
}

func TestRenderEventHeaderAndPayload(t *testing.T) {
	st := PlainStyles()
	ev := domain.DebugEvent{
		EventType: domain.EventToolCall,
		Message:   "calling search",
		Timestamp: time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
		Data:      map[string]any{"query": "weather"},
	}

	out := RenderEvent(ev, st)
	assert.Contains(t, out, "[TOOL CALL]")
	assert.Contains(t, out, "2025-11-03T10:00:00Z")
	assert.Contains(t, out, "calling search")
	assert.Contains(t, out, `"query": "weather"`)
}

func TestRenderEventsPreservesOrder(t *testing.T) {
	st := PlainStyles()
	events := []domain.DebugEvent{
		{EventType: domain.EventModelCall, Message: "first"},
		{EventType: domain.EventModelResponse, Message: "second"},
	}

	out := RenderEvents(events, st)
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

func TestUnknownEventTypeFallsBackToRawTag(t *testing.T) {
	st := PlainStyles()
	out := RenderEvent(domain.DebugEvent{EventType: "weird_thing"}, st)
	assert.Contains(t, out, "weird_thing")
}
