package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dusk-indust/kinship/internal/autosave"
	"github.com/dusk-indust/kinship/internal/mcptools"
)

// runServeMCP serves the archive tools until interrupted, then flushes
// pending edits.
func (a *app) runServeMCP(ctx context.Context, args []string) (err error) {
	fset := flag.NewFlagSet("serve-mcp", flag.ContinueOnError)
	fset.SetOutput(a.out)
	addr := fset.String("addr", a.cfg.MCPAddr, "HTTP listen address")
	stdio := fset.Bool("stdio", false, "serve on stdin/stdout instead of HTTP")
	if err := fset.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := autosave.New(store, autosave.Options{
		Debounce: a.cfg.AutosaveDebounce,
		Logger:   a.log.Named("autosave"),
	})
	defer func() {
		if cerr := cache.Close(context.Background()); cerr != nil {
			a.log.Error("final flush failed", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
	}()

	svc := mcptools.NewArchiveService(cache, a.labels, a.log.Named("mcp"))
	if *stdio {
		return mcptools.RunMCPServerStdio(ctx, svc)
	}
	return mcptools.RunMCPServer(ctx, svc, *addr)
}
