package mcptools

import (
	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/graph"
	"github.com/dusk-indust/kinship/internal/kinship"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates JSON schemas from these struct tags.

// ListArchivesInput is the input for the list_archives MCP tool.
type ListArchivesInput struct{}

// ListArchivesOutput is the result of the list_archives MCP tool.
type ListArchivesOutput struct {
	Archives []graph.ArchiveSummary `json:"archives"`
	// Unsaved lists archives with edits still waiting for autosave.
	Unsaved []string `json:"unsaved,omitempty"`
}

// CreateArchiveInput is the input for the create_archive MCP tool.
type CreateArchiveInput struct {
	Name     string `json:"name" jsonschema:"display name of the family archive"`
	RootName string `json:"rootName,omitempty" jsonschema:"name of the first member, who becomes the root (default: none)"`
	Gender   string `json:"gender,omitempty" jsonschema:"gender of the first member: male, female or unknown"`
}

// CreateArchiveOutput is the result of the create_archive MCP tool.
type CreateArchiveOutput struct {
	ArchiveID string          `json:"archiveId"`
	Root      *archive.Member `json:"root,omitempty"`
}

// ResolveRoleInput is the input for the resolve_role MCP tool.
type ResolveRoleInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	MemberID  string `json:"memberId" jsonschema:"member whose role is resolved"`
	RootID    string `json:"rootId,omitempty" jsonschema:"perspective member (default: the archive root)"`
	Locale    string `json:"locale,omitempty" jsonschema:"label language, e.g. ru or en (default: server locale)"`
}

// ResolveRoleOutput is the result of the resolve_role MCP tool.
type ResolveRoleOutput struct {
	MemberID  string         `json:"memberId"`
	RootID    string         `json:"rootId"`
	Label     string         `json:"label"`
	Reachable bool           `json:"reachable"`
	Path      []kinship.Step `json:"path,omitempty"`
	NetGen    int            `json:"netGenerations"`
}

// ListRolesInput is the input for the list_roles MCP tool.
type ListRolesInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	Locale    string `json:"locale,omitempty" jsonschema:"label language, e.g. ru or en (default: server locale)"`
}

// ListRolesOutput is the result of the list_roles MCP tool.
type ListRolesOutput struct {
	RootID      string         `json:"rootId"`
	Roles       []kinship.Role `json:"roles"`
	Unreachable []string       `json:"unreachable,omitempty"`
}

// GetRelatedInput is the input for the get_related MCP tool.
type GetRelatedInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	MemberID  string `json:"memberId" jsonschema:"member whose direct relatives are listed"`
}

// RelatedEntry is one direct relative of a member.
type RelatedEntry struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Type     string `json:"type"` // parent, child, spouse or sibling
}

// GetRelatedOutput is the result of the get_related MCP tool.
type GetRelatedOutput struct {
	Related []RelatedEntry `json:"related"`
}

// AddMemberInput is the input for the add_member MCP tool.
type AddMemberInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	Name      string `json:"name,omitempty" jsonschema:"member name"`
	Gender    string `json:"gender,omitempty" jsonschema:"male, female or unknown"`
	RelatedID string `json:"relatedId,omitempty" jsonschema:"existing member to link the new member to"`
	As        string `json:"as,omitempty" jsonschema:"what the new member is to relatedId: parent, child, spouse or sibling"`
}

// AddMemberOutput is the result of the add_member MCP tool.
type AddMemberOutput struct {
	Member archive.Member `json:"member"`
	Role   string         `json:"role"`
}

// AddRelationInput is the input for the add_relation MCP tool.
type AddRelationInput struct {
	ArchiveID    string `json:"archiveId" jsonschema:"archive slug"`
	FromMemberID string `json:"fromMemberId" jsonschema:"for parent relations, the parent"`
	ToMemberID   string `json:"toMemberId" jsonschema:"for parent relations, the child"`
	Type         string `json:"type" jsonschema:"parent, spouse or sibling"`
}

// AddRelationOutput is the result of the add_relation MCP tool.
type AddRelationOutput struct {
	Relation archive.Relation `json:"relation"`
	Added    bool             `json:"added"` // false when an identical relation existed
}

// RemoveMemberInput is the input for the remove_member MCP tool.
type RemoveMemberInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	MemberID  string `json:"memberId" jsonschema:"member to delete together with its relations"`
}

// RemoveMemberOutput is the result of the remove_member MCP tool.
type RemoveMemberOutput struct {
	RemovedRelations int  `json:"removedRelations"`
	RootCleared      bool `json:"rootCleared"`
}

// SetRootInput is the input for the set_root MCP tool.
type SetRootInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	MemberID  string `json:"memberId" jsonschema:"new perspective member; empty clears the root"`
}

// SetRootOutput is the result of the set_root MCP tool.
type SetRootOutput struct {
	RootID string         `json:"rootId"`
	Roles  []kinship.Role `json:"roles"`
}

// RenderDiagramInput is the input for the render_diagram MCP tool.
type RenderDiagramInput struct {
	ArchiveID string `json:"archiveId" jsonschema:"archive slug"`
	Locale    string `json:"locale,omitempty" jsonschema:"label language (default: server locale)"`
}

// RenderDiagramOutput is the result of the render_diagram MCP tool.
type RenderDiagramOutput struct {
	Mermaid string `json:"mermaid"`
}
