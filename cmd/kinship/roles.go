package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dusk-indust/kinship/internal/kinship"
)

func (a *app) runRoles(ctx context.Context, args []string) error {
	arch, err := a.archiveArg(ctx, "roles", args)
	if err != nil {
		return err
	}

	if root, ok := arch.Member(arch.RootMemberID); ok {
		fmt.Fprintf(a.out, "%s (%s)\n\n", arch.Name, root.Name)
	} else {
		fmt.Fprintf(a.out, "%s (no root member)\n\n", arch.Name)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROLE\tID")
	for _, r := range (kinship.Resolver{Labels: a.labels}).Roles(arch) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Label, r.MemberID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if lost := kinship.Unreachable(arch); len(lost) > 0 {
		fmt.Fprintf(a.out, "\n%d member(s) not connected to the root\n", len(lost))
	}
	return nil
}
