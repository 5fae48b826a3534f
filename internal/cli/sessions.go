package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nullchimp/ai-agent-sub000/internal/output"
)

// SessionsCmd groups session management subcommands.
type SessionsCmd struct {
	List   SessionsListCmd   `cmd:"" default:"withargs" help:"List sessions, most recent first"`
	New    SessionsNewCmd    `cmd:"" help:"Create a session and make it current"`
	Delete SessionsDeleteCmd `cmd:"" help:"Delete a session by local id"`
}

// SessionsListCmd lists stored sessions without creating anything.
type SessionsListCmd struct{}

// Run executes the list command
func (c *SessionsListCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := a.coord.Attach(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	sessions := a.coord.Sessions()
	currentID := a.coord.CurrentID()

	if globals.Format == "ndjson" {
		w := output.NewNDJSONWriter(globals.Stdout)
		for _, s := range sessions {
			if err := w.WriteSession(s, s.LocalID == currentID); err != nil {
				return err
			}
		}
		return nil
	}

	if len(sessions) == 0 {
		fmt.Fprintln(globals.Stdout, "No sessions. Run 'agentchat' to start chatting.")
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("", "LOCAL ID", "TITLE", "MESSAGES", "LINKED", "CREATED")
	for _, s := range sessions {
		marker := ""
		if s.LocalID == currentID {
			marker = "*"
		}
		linked := "no"
		if s.Linked() {
			linked = "yes"
		}
		table.Append(marker, s.LocalID, s.Title, strconv.Itoa(len(s.Messages)), linked,
			s.CreatedAt.Local().Format(time.RFC3339))
	}
	return table.Render()
}

// SessionsNewCmd creates a session eagerly.
type SessionsNewCmd struct{}

// Run executes the new command
func (c *SessionsNewCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := a.coord.Attach(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	s, err := a.coord.NewSession(ctx)
	if err != nil {
		return outputErrorCommon(globals, "CREATE_FAILED", err.Error())
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteSession(s, true)
	}
	fmt.Fprintf(globals.Stdout, "Created session %s\n", s.LocalID)
	if !s.Linked() {
		fmt.Fprintln(globals.Stderr, "Warning: backend unreachable, session will link on first message")
	}
	return nil
}

// SessionsDeleteCmd deletes one session.
type SessionsDeleteCmd struct {
	ID string `arg:"" help:"Local id of the session to delete"`
}

// Run executes the delete command
func (c *SessionsDeleteCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := a.coord.Attach(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	if err := a.coord.Delete(ctx, c.ID); err != nil {
		return outputErrorCommon(globals, "SESSION_NOT_FOUND", err.Error())
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAck("session_deleted", map[string]any{"local_id": c.ID})
	}
	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "Deleted session %s\n", c.ID)
	}
	return nil
}
