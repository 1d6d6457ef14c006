package cli

import (
	"context"

	"github.com/lite-lake/technisync/internal/application/syncer"
	"github.com/lite-lake/technisync/internal/infrastructure/config"
	"github.com/lite-lake/technisync/internal/infrastructure/logger"
	"github.com/lite-lake/technisync/internal/infrastructure/store"
	"github.com/lite-lake/technisync/internal/infrastructure/technitium"
)

// App bundles the configuration, state store and per-server API
// clients a command needs.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Clients map[string]syncer.Client
}

func openApp(ctx context.Context) (*App, error) {
	var (
		cfg *config.Config
		err error
	)
	if ConfigPath != "" {
		cfg, err = config.LoadFile(ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clients := make(map[string]syncer.Client, len(cfg.Servers))
	for i := range cfg.Servers {
		server := &cfg.Servers[i]
		clients[server.Name] = technitium.NewClient(server.URL, server.APIKey)
	}

	return &App{Config: cfg, Store: st, Clients: clients}, nil
}

func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		logger.Warn("failed to close state store", "error", err)
	}
}

func (a *App) Manager() *syncer.Manager {
	return syncer.New(a.Config, a.Store, a.Clients)
}
