package export

import (
	"time"

	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/kinship"
)

// ArchiveExport is the top-level JSON export structure.
type ArchiveExport struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Locale       string             `json:"locale"`
	ExportedAt   string             `json:"exportedAt"`
	RootMemberID string             `json:"rootMemberId,omitempty"`
	Members      []MemberExport     `json:"members"`
	Relations    []archive.Relation `json:"relations"`
	Branches     []kinship.Branch   `json:"branches"`
	// Unreachable lists members with no path to the root.
	Unreachable []string `json:"unreachable,omitempty"`
}

// MemberExport is a member with its resolved role.
type MemberExport struct {
	archive.Member
	Role string `json:"role"`
}

// ExportArchive builds an ArchiveExport, resolving every member's role with
// labels. now stamps ExportedAt.
func ExportArchive(a *archive.Archive, labels kinship.Labels, now time.Time) *ArchiveExport {
	out := &ArchiveExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Locale:     labels.Locale,
		Members:    []MemberExport{},
		Relations:  []archive.Relation{},
		Branches:   []kinship.Branch{},
	}
	if a == nil {
		return out
	}
	out.ID = a.ID
	out.Name = a.Name
	out.RootMemberID = a.RootMemberID

	roles := (kinship.Resolver{Labels: labels}).Roles(a)
	for i, m := range a.Members {
		out.Members = append(out.Members, MemberExport{Member: m, Role: roles[i].Label})
	}
	out.Relations = append(out.Relations, a.Relations...)
	out.Branches = append(out.Branches, kinship.Branches(a.Members, a.Relations, a.RootMemberID)...)
	out.Unreachable = kinship.Unreachable(a)
	return out
}
