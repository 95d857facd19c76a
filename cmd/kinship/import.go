package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dusk-indust/kinship/internal/archive"
)

// runImport validates an archive file and saves it to the configured store.
// Files without an id get a slug derived from their name; members and
// relations without an id get a fresh one.
func (a *app) runImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: kinship import <file.json>")
	}
	arch, err := readArchiveFile(args[0])
	if err != nil {
		return err
	}
	if n := arch.AssignMissingIDs(); n > 0 {
		a.log.Debug("assigned missing ids", zap.Int("count", n))
	}
	if err := arch.Validate(); err != nil {
		return fmt.Errorf("invalid archive %s: %w", args[0], err)
	}
	if arch.ID == "" {
		arch.ID = archive.Slug(arch.Name, time.Now())
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveArchive(ctx, arch); err != nil {
		return fmt.Errorf("save %s: %w", arch.ID, err)
	}
	a.log.Info("archive imported", zap.String("archive", arch.ID), zap.String("store", a.cfg.Store))
	fmt.Fprintf(a.out, "imported %s: %d members, %d relations\n", arch.ID, len(arch.Members), len(arch.Relations))
	return nil
}
