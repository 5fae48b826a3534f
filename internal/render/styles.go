package render

import "github.com/charmbracelet/lipgloss"

// Styles carries every lipgloss style the debug renderer uses. Colors maps the
// color names the backend annotates key paths with onto terminal styles.
type Styles struct {
	Key       lipgloss.Style
	String    lipgloss.Style
	Number    lipgloss.Style
	Bool      lipgloss.Style
	Null      lipgloss.Style
	Truncated lipgloss.Style
	Header    lipgloss.Style
	Timestamp lipgloss.Style
	Message   lipgloss.Style

	Colors map[string]lipgloss.Style
}

// DefaultStyles returns the colorized style set.
func DefaultStyles() *Styles {
	return &Styles{
		Key:       lipgloss.NewStyle().Foreground(lipgloss.Color("#01cdfe")),
		String:    lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1")),
		Number:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166")),
		Bool:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ff71ce")),
		Null:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3d8")).Italic(true),
		Truncated: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3d8")).Italic(true),
		Header:    lipgloss.NewStyle().Bold(true),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3d8")),
		Message:   lipgloss.NewStyle(),
		Colors: map[string]lipgloss.Style{
			"red":     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			"green":   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
			"yellow":  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			"blue":    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
			"magenta": lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
			"purple":  lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
			"cyan":    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
			"orange":  lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
			"gray":    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

// PlainStyles returns a style set with no terminal attributes, for piped
// output and ndjson-adjacent text rendering.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Key: plain, String: plain, Number: plain, Bool: plain, Null: plain,
		Truncated: plain, Header: plain, Timestamp: plain, Message: plain,
		Colors: map[string]lipgloss.Style{},
	}
}

// colorStyle resolves a backend color name, falling back to the key style so
// unknown names still render readably.
func (s *Styles) colorStyle(name string) lipgloss.Style {
	if st, ok := s.Colors[name]; ok {
		return st
	}
	return s.Key
}
