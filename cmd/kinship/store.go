package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dusk-indust/kinship/internal/config"
	"github.com/dusk-indust/kinship/internal/graph"
)

// openKuzu is provided by store_kuzu.go when built with cgo.
var openKuzu func(path string) (graph.Store, error)

// openStore opens the configured backend and ensures its schema exists.
// Relative database paths are resolved against the project root.
func (a *app) openStore(ctx context.Context) (graph.Store, error) {
	path := a.cfg.DBPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.root, path)
	}

	var (
		store graph.Store
		err   error
	)
	switch a.cfg.Store {
	case config.StoreMemory:
		store = graph.NewMemStore()
	case config.StoreSQLite:
		store, err = graph.OpenSQLiteStore(path)
	case config.StoreKuzu:
		if openKuzu == nil {
			return nil, fmt.Errorf("the kuzu store requires a cgo build")
		}
		store, err = openKuzu(path)
	default:
		return nil, fmt.Errorf("unknown store %q", a.cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	a.log.Debug("store opened", zap.String("store", a.cfg.Store), zap.String("path", path))
	return store, nil
}
