// Package cli wires the kong command tree to the session coordinator, the
// backend gateway, and the renderers.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nullchimp/ai-agent-sub000/internal/config"
	"github.com/nullchimp/ai-agent-sub000/internal/render"
)

// CLI is the full command tree.
type CLI struct {
	Format       string `help:"Output format: text or ndjson" enum:"text,ndjson" default:"${config_format}"`
	Verbose      bool   `short:"v" help:"Enable verbose debug logging"`
	Quiet        bool   `short:"q" help:"Suppress informational output"`
	APIURL       string `name:"api-url" help:"Agent API base URL" default:"${config_api_url}"`
	APIKey       string `name:"api-key" help:"API key sent on every request" default:"${config_api_key}"`
	StoreBackend string `help:"Session store backend: file or sqlite" enum:"file,sqlite" default:"${config_store_backend}"`
	StorePath    string `help:"Session store location (defaults to ~/.agentchat)" default:"${config_store_path}"`

	Chat     ChatCmd     `cmd:"" default:"withargs" help:"Interactive chat (TUI)"`
	Ask      AskCmd      `cmd:"" help:"Send one message to the current session and print the reply"`
	Sessions SessionsCmd `cmd:"" help:"List, create and delete sessions"`
	Tools    ToolsCmd    `cmd:"" help:"Inspect and toggle the current session's tools"`
	Debug    DebugCmd    `cmd:"" help:"Inspect, toggle and clear debug events"`
}

// Globals carries resolved global settings into every command's Run.
type Globals struct {
	Format          string
	Verbose         bool
	Quiet           bool
	APIURL          string
	APIKey          string
	StoreBackend    string
	StorePath       string
	MaxMessageChars int

	Stdout io.Writer
	Stderr io.Writer

	logger *appLogger
}

// NewGlobalsWithConfig merges parsed flags with config-file fallbacks.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:          c.Format,
		Verbose:         c.Verbose || cfg.Verbose,
		Quiet:           c.Quiet || cfg.Quiet,
		APIURL:          c.APIURL,
		APIKey:          c.APIKey,
		StoreBackend:    c.StoreBackend,
		StorePath:       c.StorePath,
		MaxMessageChars: cfg.Defaults.MaxMessageChars,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	}
	g.logger = newAppLogger(g.Verbose)
	return g
}

// Debug logs through the verbose logger; a no-op unless --verbose is set.
func (g *Globals) Debug(format string, args ...interface{}) {
	g.logger.Debug(format, args...)
}

// styles picks colorized rendering only for interactive text output.
func (g *Globals) styles() *render.Styles {
	if g.Format != "text" {
		return render.PlainStyles()
	}
	if f, ok := g.Stdout.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return render.DefaultStyles()
		}
	}
	return render.PlainStyles()
}
