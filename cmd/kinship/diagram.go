package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/kinship/internal/export"
)

func (a *app) runDiagram(ctx context.Context, args []string) error {
	arch, err := a.archiveArg(ctx, "diagram", args)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, export.GenerateMermaid(arch, a.labels))
	return nil
}
