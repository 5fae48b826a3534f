package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nullchimp/ai-agent-sub000/internal/chat"
	"github.com/nullchimp/ai-agent-sub000/internal/output"
)

// AskCmd sends a single message to the current session and prints the reply.
// It creates a session when the store is empty, matching interactive chat.
type AskCmd struct {
	Message []string `arg:"" help:"Message text (joined with spaces)"`
}

// Run executes the ask command
func (c *AskCmd) Run(globals *Globals) error {
	ctx := context.Background()
	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	if err := a.coord.Start(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	text := strings.Join(c.Message, " ")
	reply, err := a.chat.Send(ctx, text)
	if err != nil {
		return outputErrorCommon(globals, sendErrorCode(err), err.Error(), sendErrorHint(err)...)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteMessage(reply)
	}
	fmt.Fprintln(globals.Stdout, reply.Content)
	if !globals.Quiet && len(reply.UsedTools) > 0 {
		fmt.Fprintf(globals.Stdout, "(tools: %s)\n", strings.Join(reply.UsedTools, ", "))
	}
	return nil
}

// sendErrorCode maps send failures to their error codes. Validation and
// gating failures get specific codes; everything else is SEND_FAILED.
func sendErrorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return "EMPTY_MESSAGE"
	case errors.Is(err, chat.ErrMessageTooLong):
		return "MESSAGE_TOO_LONG"
	case errors.Is(err, chat.ErrSendInProgress):
		return "SEND_IN_PROGRESS"
	default:
		return "SEND_FAILED"
	}
}

func sendErrorHint(err error) []string {
	if sendErrorCode(err) == "SEND_FAILED" {
		return []string{"check --api-url"}
	}
	return nil
}
