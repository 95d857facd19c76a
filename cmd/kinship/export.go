package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dusk-indust/kinship/internal/export"
)

func (a *app) runExport(ctx context.Context, args []string) error {
	arch, err := a.archiveArg(ctx, "export", args)
	if err != nil {
		return err
	}

	data := export.ExportArchive(arch, a.labels, time.Now())
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	_, err = a.out.Write(append(out, '\n'))
	return err
}
