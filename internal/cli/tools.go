package cli

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/nullchimp/ai-agent-sub000/internal/output"
	"github.com/nullchimp/ai-agent-sub000/internal/tools"
)

// ToolsCmd groups tool configuration subcommands. All of them operate on the
// current session and require backend linkage.
type ToolsCmd struct {
	List         ToolsListCmd         `cmd:"" default:"withargs" help:"List tools grouped by source"`
	Toggle       ToolsToggleCmd       `cmd:"" help:"Flip one tool's enabled state"`
	ToggleAll    ToolsToggleAllCmd    `cmd:"" name:"toggle-all" help:"Flip every tool in the session"`
	ToggleSource ToolsToggleSourceCmd `cmd:"" name:"toggle-source" help:"Flip every tool from one source"`
}

// bindCurrentTools attaches the coordinator, links the current session, and
// binds the tool view-model to it.
func bindCurrentTools(ctx context.Context, globals *Globals, a *app) error {
	if err := a.coord.Attach(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	currentID := a.coord.CurrentID()
	if currentID == "" {
		return outputErrorCommon(globals, "NO_SESSION", "no sessions exist", "run 'agentchat sessions new' first")
	}
	backendID, err := a.coord.EnsureLinked(ctx, currentID)
	if err != nil {
		return outputErrorCommon(globals, "API_UNREACHABLE", err.Error(), "check --api-url")
	}
	if err := a.toolsVM.Bind(ctx, backendID); err != nil {
		return outputErrorCommon(globals, "API_UNREACHABLE", err.Error())
	}
	return nil
}

// ToolsListCmd prints the grouped tool inventory.
type ToolsListCmd struct {
	Collapse []string `short:"c" placeholder:"SOURCE" help:"Collapse a source group to its summary row (repeatable)"`
}

// Run executes the list command
func (c *ToolsListCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := bindCurrentTools(ctx, globals, a); err != nil {
		return err
	}

	if globals.Format == "ndjson" {
		w := output.NewNDJSONWriter(globals.Stdout)
		for _, t := range a.toolsVM.Tools() {
			if err := w.WriteTool(t); err != nil {
				return err
			}
		}
		return nil
	}

	for _, source := range c.Collapse {
		a.toolsVM.SetCollapsed(source, true)
	}
	groups := a.toolsVM.Groups()
	enabled, total := a.toolsVM.Counts()

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("SOURCE", "TOOL", "ENABLED", "DESCRIPTION")
	for _, group := range groups {
		if group.Collapsed {
			table.Append(group.Source, fmt.Sprintf("(%d tools)", group.Total), fmt.Sprintf("%d on", group.Enabled), "collapsed")
			continue
		}
		for _, t := range group.Tools {
			state := "off"
			if t.Enabled {
				state = "on"
			}
			table.Append(group.Source, t.Name, state, t.Description)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(globals.Stdout, "%d/%d tools enabled\n", enabled, total)
	return nil
}

func ackToggle(globals *Globals, vm *tools.ViewModel, action string, fields map[string]any) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAck(action, fields)
	}
	enabled, total := vm.Counts()
	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "%d/%d tools enabled\n", enabled, total)
	}
	return nil
}

// ToolsToggleCmd flips one tool.
type ToolsToggleCmd struct {
	Name string `arg:"" help:"Tool name"`
}

// Run executes the toggle command
func (c *ToolsToggleCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := bindCurrentTools(ctx, globals, a); err != nil {
		return err
	}
	if err := a.toolsVM.Toggle(ctx, c.Name); err != nil {
		return outputErrorCommon(globals, "TOGGLE_FAILED", err.Error())
	}
	return ackToggle(globals, a.toolsVM, "tool_toggled", map[string]any{"name": c.Name})
}

// ToolsToggleAllCmd flips the whole session.
type ToolsToggleAllCmd struct{}

// Run executes the toggle-all command
func (c *ToolsToggleAllCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := bindCurrentTools(ctx, globals, a); err != nil {
		return err
	}
	if err := a.toolsVM.ToggleAll(ctx); err != nil {
		return outputErrorCommon(globals, "TOGGLE_FAILED", err.Error())
	}
	return ackToggle(globals, a.toolsVM, "tools_toggled_all", nil)
}

// ToolsToggleSourceCmd flips one source group.
type ToolsToggleSourceCmd struct {
	Source string `arg:"" help:"Source group to flip"`
}

// Run executes the toggle-source command
func (c *ToolsToggleSourceCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := bindCurrentTools(ctx, globals, a); err != nil {
		return err
	}
	if err := a.toolsVM.ToggleGroup(ctx, c.Source); err != nil {
		return outputErrorCommon(globals, "TOGGLE_FAILED", err.Error())
	}
	return ackToggle(globals, a.toolsVM, "tools_toggled_source", map[string]any{"source": c.Source})
}
