package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nullchimp/ai-agent-sub000/internal/tui"
)

// ChatCmd runs the interactive chat interface.
type ChatCmd struct{}

// Run executes the chat command
func (c *ChatCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	a, err := globals.buildApp()
	if err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}
	defer a.Close()

	globals.Debug("Starting coordinator (store=%s)", globals.StoreBackend)
	if err := a.coord.Start(ctx); err != nil {
		return outputErrorCommon(globals, "STORE_FAILED", err.Error())
	}

	model := tui.New(ctx, a.coord, a.chat, a.client, globals.logger.Sugared())

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Handle context cancellation
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat UI: %w", err)
	}
	return nil
}
