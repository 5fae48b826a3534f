package domain

import "encoding/json"

// DefaultToolSource groups tools whose provenance the backend left blank.
const DefaultToolSource = "default"

// Tool is a named backend capability that can be enabled or disabled per
// session. Parameters is the tool's schema, passed through untouched.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	Source      string          `json:"source,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// SourceOrDefault returns the grouping key for the tool.
func (t Tool) SourceOrDefault() string {
	if t.Source == "" {
		return DefaultToolSource
	}
	return t.Source
}
