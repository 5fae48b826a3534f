// Package render turns debug events and their arbitrary nested JSON payloads
// into colorized textual trees with zero data loss. The recursive walk lives
// in exactly one function; every consumer (inline panel, fullscreen view, CLI
// output) goes through it.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

const (
	indentStep = "  "
	// pathJoin concatenates parent path segments with child keys, so the same
	// payload always yields the same path strings.
	pathJoin = "."

	colorKeyPrefix = "_"
	colorKeySuffix = "_color"

	truncatedMarker = " [truncated]"
)

// ExtractColorMap pulls the reserved color-annotation keys out of a root
// payload. Keys of the form `_<path with dots as underscores>_color` map a
// nested key path to a color name; they are metadata, not data, and are
// excluded from rendering. The returned payload is a shallow copy with the
// annotation keys removed.
func ExtractColorMap(data map[string]any) (map[string]any, map[string]string) {
	colors := map[string]string{}
	payload := make(map[string]any, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, colorKeyPrefix) && strings.HasSuffix(k, colorKeySuffix) {
			if name, ok := v.(string); ok {
				colors[k] = name
				continue
			}
		}
		payload[k] = v
	}
	return payload, colors
}

// colorFor looks up the annotation for a dotted key path.
func colorFor(path string, colors map[string]string) (string, bool) {
	if len(colors) == 0 {
		return "", false
	}
	key := colorKeyPrefix + strings.ReplaceAll(path, pathJoin, "_") + colorKeySuffix
	name, ok := colors[key]
	return name, ok
}

// RenderData renders a root payload, honoring its color annotations.
func RenderData(data map[string]any, st *Styles) string {
	payload, colors := ExtractColorMap(data)
	return renderValue(payload, 0, "", colors, st)
}

// renderValue is the one recursive, depth-first, order-preserving walk over a
// JSON value. It is pure: output depends only on (value, depth, path, colors,
// styles).
func renderValue(v any, depth int, path string, colors map[string]string, st *Styles) string {
	switch val := v.(type) {
	case nil:
		return st.Null.Render("null")
	case string:
		return renderString(val, st)
	case bool:
		return st.Bool.Render(strconv.FormatBool(val))
	case float64:
		return st.Number.Render(strconv.FormatFloat(val, 'f', -1, 64))
	case int:
		return st.Number.Render(strconv.Itoa(val))
	case int64:
		return st.Number.Render(strconv.FormatInt(val, 10))
	case json.Number:
		return st.Number.Render(val.String())
	case []any:
		return renderArray(val, depth, path, colors, st)
	case map[string]any:
		return renderObject(val, depth, path, colors, st)
	default:
		// anything exotic degrades to a quoted literal rather than being lost
		return st.String.Render(strconv.Quote(fmt.Sprintf("%v", val)))
	}
}

// renderString quotes and escapes the value. A trailing truncation sentinel
// is stripped from the visible text and replaced by a styled marker after the
// closing quote; the text before the sentinel is preserved character for
// character.
func renderString(s string, st *Styles) string {
	if strings.HasSuffix(s, domain.TruncationSentinel) {
		visible := strings.TrimSuffix(s, domain.TruncationSentinel)
		return st.String.Render(strconv.Quote(visible)) + st.Truncated.Render(truncatedMarker)
	}
	return st.String.Render(strconv.Quote(s))
}

func renderArray(items []any, depth int, path string, colors map[string]string, st *Styles) string {
	if len(items) == 0 {
		return "[]"
	}
	indent := strings.Repeat(indentStep, depth)
	childIndent := indent + indentStep

	var b strings.Builder
	b.WriteString("[\n")
	for i, item := range items {
		b.WriteString(childIndent)
		b.WriteString(renderValue(item, depth+1, childPath(path, strconv.Itoa(i)), colors, st))
		if i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("]")
	return b.String()
}

func renderObject(obj map[string]any, depth int, path string, colors map[string]string, st *Styles) string {
	if len(obj) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat(indentStep, depth)
	childIndent := indent + indentStep

	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range keys {
		kp := childPath(path, k)
		keyStyle := st.Key
		if name, ok := colorFor(kp, colors); ok {
			keyStyle = st.colorStyle(name)
		}
		b.WriteString(childIndent)
		b.WriteString(keyStyle.Render(strconv.Quote(k)))
		b.WriteString(": ")
		b.WriteString(renderValue(obj[k], depth+1, kp, colors, st))
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + pathJoin + key
}
