package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dusk-indust/kinship/internal/archive"
)

// readArchiveFile decodes an archive JSON file.
func readArchiveFile(path string) (*archive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a archive.Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &a, nil
}

// loadArchive reads ref as a file when one exists at that path, and
// otherwise loads the archive with that slug from the store.
func (a *app) loadArchive(ctx context.Context, ref string) (*archive.Archive, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return readArchiveFile(ref)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	arch, err := store.GetArchive(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	if arch == nil {
		return nil, fmt.Errorf("no archive file or stored archive named %q", ref)
	}
	return arch, nil
}

// archiveArg loads the single <archive> argument of a command.
func (a *app) archiveArg(ctx context.Context, cmd string, args []string) (*archive.Archive, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("usage: kinship %s <archive>", cmd)
	}
	return a.loadArchive(ctx, args[0])
}
