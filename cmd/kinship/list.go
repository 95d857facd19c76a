package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"
)

func (a *app) runList(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.ListArchives(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(a.out, "No archives found.")
		fmt.Fprintln(a.out, "Run 'kinship import <file.json>' to add one.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tRELATIONS\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, s.Name, s.MemberCount, s.RelationCount, s.UpdatedAt.Format(time.DateOnly))
	}
	return tw.Flush()
}
