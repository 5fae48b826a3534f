package cli

import (
	"context"
	"fmt"

	"github.com/nullchimp/ai-agent-sub000/internal/output"
	"github.com/nullchimp/ai-agent-sub000/internal/render"
)

// DebugCmd groups debug event subcommands for the current session.
type DebugCmd struct {
	Show   DebugShowCmd   `cmd:"" default:"withargs" help:"Render captured debug events"`
	Toggle DebugToggleCmd `cmd:"" help:"Enable or disable debug event capture"`
	Clear  DebugClearCmd  `cmd:"" help:"Discard captured debug events"`
}

// linkCurrent attaches and returns (localID, backendID).
func linkCurrent(ctx context.Context, globals *Globals, a *app) (string, string, error) {
	if err := a.coord.Attach(ctx); err != nil {
		return "", "", outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	localID := a.coord.CurrentID()
	if localID == "" {
		return "", "", outputErrorCommon(globals, "NO_SESSION", "no sessions exist", "run 'agentchat sessions new' first")
	}
	backendID, err := a.coord.EnsureLinked(ctx, localID)
	if err != nil {
		return "", "", outputErrorCommon(globals, "API_UNREACHABLE", err.Error(), "check --api-url")
	}
	return localID, backendID, nil
}

// DebugShowCmd renders the captured events.
type DebugShowCmd struct{}

// Run executes the show command
func (c *DebugShowCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	_, backendID, err := linkCurrent(ctx, globals, a)
	if err != nil {
		return err
	}

	events, err := a.client.ListDebugEvents(ctx, backendID)
	if err != nil {
		return outputErrorCommon(globals, "API_UNREACHABLE", err.Error())
	}

	if globals.Format == "ndjson" {
		w := output.NewNDJSONWriter(globals.Stdout)
		for _, ev := range events.Events {
			if err := w.WriteDebugEvent(ev); err != nil {
				return err
			}
		}
		return nil
	}

	if len(events.Events) == 0 {
		state := "disabled"
		if events.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(globals.Stdout, "No debug events (capture %s)\n", state)
		return nil
	}
	fmt.Fprintln(globals.Stdout, render.RenderEvents(events.Events, globals.styles()))
	return nil
}

// DebugToggleCmd flips capture on the backend and persists the flag locally.
type DebugToggleCmd struct {
	Enabled bool `arg:"" help:"true to enable capture, false to disable"`
}

// Run executes the toggle command
func (c *DebugToggleCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	localID, backendID, err := linkCurrent(ctx, globals, a)
	if err != nil {
		return err
	}

	acked, err := a.client.SetDebugMode(ctx, backendID, c.Enabled)
	if err != nil {
		return outputErrorCommon(globals, "TOGGLE_FAILED", err.Error())
	}
	if err := a.coord.SetDebugEnabled(ctx, localID, acked); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAck("debug_toggled", map[string]any{"enabled": acked})
	}
	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "Debug capture enabled=%v\n", acked)
	}
	return nil
}

// DebugClearCmd discards the backend's captured events.
type DebugClearCmd struct{}

// Run executes the clear command
func (c *DebugClearCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	_, backendID, err := linkCurrent(ctx, globals, a)
	if err != nil {
		return err
	}

	if err := a.client.ClearDebugEvents(ctx, backendID); err != nil {
		return outputErrorCommon(globals, "CLEAR_FAILED", err.Error())
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAck("debug_cleared", nil)
	}
	if !globals.Quiet {
		fmt.Fprintln(globals.Stdout, "Debug events cleared")
	}
	return nil
}
