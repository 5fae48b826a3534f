package cli

import (
	"path/filepath"

	"github.com/nullchimp/ai-agent-sub000/internal/chat"
	"github.com/nullchimp/ai-agent-sub000/internal/coordinator"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
	"github.com/nullchimp/ai-agent-sub000/internal/store"
	"github.com/nullchimp/ai-agent-sub000/internal/tools"
)

// app bundles the wired components every command works against.
type app struct {
	store   *store.SessionStore
	client  *gateway.Client
	coord   *coordinator.Coordinator
	chat    *chat.Controller
	toolsVM *tools.ViewModel
}

// buildApp constructs the store, gateway and coordinators from globals.
// The caller owns the returned app and must Close it.
func (g *Globals) buildApp() (*app, error) {
	dir := g.StorePath
	if dir == "" {
		var err error
		dir, err = store.DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	var blob store.Blob
	var err error
	switch g.StoreBackend {
	case "sqlite":
		blob, err = store.NewSQLiteBlob(filepath.Join(dir, "agentchat.db"))
	default:
		blob, err = store.NewFileBlob(dir)
	}
	if err != nil {
		return nil, err
	}

	logger := g.logger.Sugared()
	st := store.NewSessionStore(blob, logger)
	client := gateway.NewClient(g.APIURL, g.APIKey, gateway.WithLogger(logger))
	coord := coordinator.New(st, client, nil, logger)

	return &app{
		store:   st,
		client:  client,
		coord:   coord,
		chat:    chat.New(coord, client, nil, logger, g.MaxMessageChars),
		toolsVM: tools.New(client, logger),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}
