package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/nullchimp/ai-agent-sub000/internal/cli"
	"github.com/nullchimp/ai-agent-sub000/internal/config"
)

func main() {
	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":        cfg.Format,
		"config_api_url":       cfg.API.BaseURL,
		"config_api_key":       cfg.API.Key,
		"config_store_backend": cfg.Store.Backend,
		"config_store_path":    cfg.Store.Path,
	}

	ctx := kong.Parse(&c,
		kong.Name("agentchat"),
		kong.Description("agentchat: chat with an agent backend, with persistent local sessions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
