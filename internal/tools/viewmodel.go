// Package tools is the view-model for per-session tool configuration:
// grouping by source, collapse state, and enable toggles that round-trip
// through the backend before any local flag changes.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/domain"
)

// Backend is the slice of the gateway the view-model needs.
type Backend interface {
	ListTools(ctx context.Context, sessionID string) ([]domain.Tool, error)
	SetToolEnabled(ctx context.Context, sessionID, toolName string, enabled bool) error
	SetAllTools(ctx context.Context, sessionID string, enabled bool) error
	SetSourceTools(ctx context.Context, sessionID, source string, enabled bool) error
}

// Group is one source's tools plus its aggregate state.
type Group struct {
	Source     string
	Tools      []domain.Tool
	Enabled    int
	Total      int
	AllEnabled bool
	Collapsed  bool
}

// ViewModel holds the tool list for one backend session. Collapse state
// survives reloads within the same binding; rebinding to another session
// resets it.
type ViewModel struct {
	mu        sync.Mutex
	backend   Backend
	logger    *zap.SugaredLogger
	sessionID string
	tools     []domain.Tool
	collapsed map[string]bool
}

// New creates an unbound view-model. logger may be nil.
func New(backend Backend, logger *zap.SugaredLogger) *ViewModel {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ViewModel{
		backend:   backend,
		logger:    logger,
		collapsed: map[string]bool{},
	}
}

// Bind points the view-model at a backend session and fetches its tools.
// Collapse state is reset: a fresh tool list gets the documented default
// (everything expanded).
func (vm *ViewModel) Bind(ctx context.Context, sessionID string) error {
	vm.mu.Lock()
	vm.sessionID = sessionID
	vm.collapsed = map[string]bool{}
	vm.mu.Unlock()
	return vm.Reload(ctx)
}

// Reload fetches a fresh tool list for the bound session, keeping collapse
// state.
func (vm *ViewModel) Reload(ctx context.Context) error {
	vm.mu.Lock()
	sessionID := vm.sessionID
	vm.mu.Unlock()
	if sessionID == "" {
		return fmt.Errorf("no session bound")
	}

	tools, err := vm.backend.ListTools(ctx, sessionID)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	vm.tools = tools
	vm.mu.Unlock()
	return nil
}

// Tools returns a copy of the flat tool list.
func (vm *ViewModel) Tools() []domain.Tool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]domain.Tool, len(vm.tools))
	copy(out, vm.tools)
	return out
}

// Groups returns tools grouped by source. The "default" group sorts first,
// the rest alphabetically.
func (vm *ViewModel) Groups() []Group {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	bySource := lo.GroupBy(vm.tools, func(t domain.Tool) string { return t.SourceOrDefault() })

	sources := lo.Keys(bySource)
	sort.Slice(sources, func(i, j int) bool {
		if sources[i] == domain.DefaultToolSource {
			return true
		}
		if sources[j] == domain.DefaultToolSource {
			return false
		}
		return sources[i] < sources[j]
	})

	groups := make([]Group, 0, len(sources))
	for _, src := range sources {
		members := bySource[src]
		enabled := lo.CountBy(members, func(t domain.Tool) bool { return t.Enabled })
		groups = append(groups, Group{
			Source:     src,
			Tools:      members,
			Enabled:    enabled,
			Total:      len(members),
			AllEnabled: len(members) > 0 && lo.EveryBy(members, func(t domain.Tool) bool { return t.Enabled }),
			Collapsed:  vm.collapsed[src],
		})
	}
	return groups
}

// Counts returns the session-level enabled/total counters.
func (vm *ViewModel) Counts() (enabled, total int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return lo.CountBy(vm.tools, func(t domain.Tool) bool { return t.Enabled }), len(vm.tools)
}

// SetCollapsed records a group's collapse state. Unseen groups default to
// expanded.
func (vm *ViewModel) SetCollapsed(source string, collapsed bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.collapsed[source] = collapsed
}

// ToggleCollapsed flips a group's collapse state.
func (vm *ViewModel) ToggleCollapsed(source string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.collapsed[source] = !vm.collapsed[source]
}

// Toggle flips one tool. The backend is asked first; the local flag changes
// only after it acknowledges, so the UI never shows a state the backend did
// not accept.
func (vm *ViewModel) Toggle(ctx context.Context, name string) error {
	vm.mu.Lock()
	sessionID := vm.sessionID
	idx := -1
	for i := range vm.tools {
		if vm.tools[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		vm.mu.Unlock()
		return fmt.Errorf("unknown tool %q", name)
	}
	target := !vm.tools[idx].Enabled
	vm.mu.Unlock()

	if err := vm.backend.SetToolEnabled(ctx, sessionID, name, target); err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.tools {
		if vm.tools[i].Name == name {
			vm.tools[i].Enabled = target
		}
	}
	return nil
}

// ToggleGroup applies the aggregate toggle: all-enabled flips to all-disabled,
// anything else flips to all-enabled.
func (vm *ViewModel) ToggleGroup(ctx context.Context, source string) error {
	vm.mu.Lock()
	sessionID := vm.sessionID
	members := lo.Filter(vm.tools, func(t domain.Tool, _ int) bool { return t.SourceOrDefault() == source })
	vm.mu.Unlock()

	if len(members) == 0 {
		return fmt.Errorf("unknown tool source %q", source)
	}
	target := !lo.EveryBy(members, func(t domain.Tool) bool { return t.Enabled })

	if err := vm.backend.SetSourceTools(ctx, sessionID, source, target); err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.tools {
		if vm.tools[i].SourceOrDefault() == source {
			vm.tools[i].Enabled = target
		}
	}
	return nil
}

// ToggleAll applies the aggregate toggle across the whole session.
func (vm *ViewModel) ToggleAll(ctx context.Context) error {
	vm.mu.Lock()
	sessionID := vm.sessionID
	all := make([]domain.Tool, len(vm.tools))
	copy(all, vm.tools)
	vm.mu.Unlock()

	if len(all) == 0 {
		return nil
	}
	target := !lo.EveryBy(all, func(t domain.Tool) bool { return t.Enabled })

	if err := vm.backend.SetAllTools(ctx, sessionID, target); err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.tools {
		vm.tools[i].Enabled = target
	}
	return nil
}
