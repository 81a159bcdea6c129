package wire

import (
	"context"
	"log"
	"os"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/internal/db"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg   config.Config
	Log   *log.Logger
	Store db.Store
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := log.New(os.Stdout, "stackshelf ", log.LstdFlags)
	store, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &App{
		Cfg:   cfg,
		Log:   logger,
		Store: store,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
