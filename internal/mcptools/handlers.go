package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/autosave"
	"github.com/dusk-indust/kinship/internal/export"
	"github.com/dusk-indust/kinship/internal/graph"
	"github.com/dusk-indust/kinship/internal/kinship"
	"github.com/dusk-indust/kinship/internal/logging"
)

// ArchiveService holds the archive cache and label table used by MCP tool
// handlers. Edits go through the cache and are saved by autosave.
type ArchiveService struct {
	cache  *autosave.Cache
	labels kinship.Labels
	log    *zap.Logger
}

// NewArchiveService creates an ArchiveService. labels is the default label
// table; tools may request another locale per call.
func NewArchiveService(cache *autosave.Cache, labels kinship.Labels, log *zap.Logger) *ArchiveService {
	return &ArchiveService{cache: cache, labels: labels, log: logging.OrNop(log)}
}

func (s *ArchiveService) resolver(locale string) kinship.Resolver {
	if locale == "" {
		return kinship.Resolver{Labels: s.labels}
	}
	return kinship.NewResolver(locale)
}

// ListArchives returns summaries of stored archives.
func (s *ArchiveService) ListArchives(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListArchivesInput,
) (*mcp.CallToolResult, ListArchivesOutput, error) {
	summaries, err := s.cache.Store().ListArchives(ctx)
	if err != nil {
		return nil, ListArchivesOutput{}, fmt.Errorf("list archives: %w", err)
	}
	if summaries == nil {
		summaries = []graph.ArchiveSummary{}
	}
	return nil, ListArchivesOutput{Archives: summaries, Unsaved: s.cache.DirtyIDs()}, nil
}

// CreateArchive starts a new archive, optionally with a first member that
// becomes the root.
func (s *ArchiveService) CreateArchive(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateArchiveInput,
) (*mcp.CallToolResult, CreateArchiveOutput, error) {
	if input.Name == "" {
		return nil, CreateArchiveOutput{}, fmt.Errorf("name is required")
	}
	gender, err := archive.ParseGender(input.Gender)
	if err != nil {
		return nil, CreateArchiveOutput{}, err
	}

	a := archive.New(input.Name)
	out := CreateArchiveOutput{ArchiveID: a.ID}
	if input.RootName != "" {
		m := a.AddMember(input.RootName)
		if err := a.UpdateMember(m.ID, func(m *archive.Member) { m.Gender = gender }); err != nil {
			return nil, CreateArchiveOutput{}, err
		}
		if err := a.SetRoot(m.ID); err != nil {
			return nil, CreateArchiveOutput{}, err
		}
		root, _ := a.Member(m.ID)
		out.Root = root
	}
	if err := s.cache.Put(ctx, a); err != nil {
		return nil, CreateArchiveOutput{}, fmt.Errorf("create archive: %w", err)
	}
	s.log.Info("archive created", zap.String("archive", a.ID))
	return nil, out, nil
}

// ResolveRole labels one member relative to the archive root or to an
// explicit perspective member.
func (s *ArchiveService) ResolveRole(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveRoleInput,
) (*mcp.CallToolResult, ResolveRoleOutput, error) {
	if input.MemberID == "" {
		return nil, ResolveRoleOutput{}, fmt.Errorf("memberId is required")
	}
	a, err := s.cache.Get(ctx, input.ArchiveID)
	if err != nil {
		return nil, ResolveRoleOutput{}, err
	}
	root := input.RootID
	if root == "" {
		root = a.RootMemberID
	}

	exp := s.resolver(input.Locale).Explain(input.MemberID, root, a.Members, a.Relations)
	return nil, ResolveRoleOutput{
		MemberID:  input.MemberID,
		RootID:    root,
		Label:     exp.Label,
		Reachable: exp.Reachable,
		Path:      exp.Path,
		NetGen:    exp.Classification.Net(),
	}, nil
}

// ListRoles labels every member of the archive.
func (s *ArchiveService) ListRoles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRolesInput,
) (*mcp.CallToolResult, ListRolesOutput, error) {
	a, err := s.cache.Get(ctx, input.ArchiveID)
	if err != nil {
		return nil, ListRolesOutput{}, err
	}
	return nil, ListRolesOutput{
		RootID:      a.RootMemberID,
		Roles:       s.resolver(input.Locale).Roles(a),
		Unreachable: kinship.Unreachable(a),
	}, nil
}

// GetRelated lists the direct relatives of a member.
func (s *ArchiveService) GetRelated(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRelatedInput,
) (*mcp.CallToolResult, GetRelatedOutput, error) {
	a, err := s.cache.Get(ctx, input.ArchiveID)
	if err != nil {
		return nil, GetRelatedOutput{}, err
	}
	if _, ok := a.Member(input.MemberID); !ok {
		return nil, GetRelatedOutput{}, fmt.Errorf("member %s: %w", input.MemberID, archive.ErrMemberNotFound)
	}

	out := GetRelatedOutput{Related: []RelatedEntry{}}
	for _, r := range a.Related(input.MemberID) {
		out.Related = append(out.Related, RelatedEntry{
			MemberID: r.Member.ID,
			Name:     r.Member.Name,
			Type:     string(r.Type),
		})
	}
	return nil, out, nil
}

// AddMember appends a member, linked to an existing one when relatedId is
// given.
func (s *ArchiveService) AddMember(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddMemberInput,
) (*mcp.CallToolResult, AddMemberOutput, error) {
	gender, err := archive.ParseGender(input.Gender)
	if err != nil {
		return nil, AddMemberOutput{}, err
	}
	if (input.RelatedID == "") != (input.As == "") {
		return nil, AddMemberOutput{}, fmt.Errorf("relatedId and as must be given together")
	}

	var added archive.Member
	a, err := s.cache.Update(ctx, input.ArchiveID, func(a *archive.Archive) error {
		if input.RelatedID == "" {
			added = a.AddMember(input.Name)
			return a.UpdateMember(added.ID, func(m *archive.Member) {
				m.Gender = gender
				added = *m
			})
		}
		m := archive.NewMember()
		m.Name = input.Name
		m.Gender = gender
		var err error
		added, err = a.AddMemberWithRelation(input.RelatedID, archive.RelationType(input.As), m)
		return err
	})
	if err != nil {
		return nil, AddMemberOutput{}, fmt.Errorf("add member: %w", err)
	}

	role := s.resolver("").Resolve(added.ID, a.RootMemberID, a.Members, a.Relations)
	s.log.Debug("member added", zap.String("archive", a.ID), zap.String("member", added.ID))
	return nil, AddMemberOutput{Member: added, Role: role}, nil
}

// AddRelation links two existing members.
func (s *ArchiveService) AddRelation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddRelationInput,
) (*mcp.CallToolResult, AddRelationOutput, error) {
	var out AddRelationOutput
	_, err := s.cache.Update(ctx, input.ArchiveID, func(a *archive.Archive) error {
		for _, id := range []string{input.FromMemberID, input.ToMemberID} {
			if _, ok := a.Member(id); !ok {
				return fmt.Errorf("member %s: %w", id, archive.ErrMemberNotFound)
			}
		}
		var err error
		out.Relation, out.Added, err = a.AddRelation(input.FromMemberID, input.ToMemberID, archive.RelationType(input.Type))
		return err
	})
	if err != nil {
		return nil, AddRelationOutput{}, fmt.Errorf("add relation: %w", err)
	}
	return nil, out, nil
}

// RemoveMember deletes a member and every relation touching it.
func (s *ArchiveService) RemoveMember(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveMemberInput,
) (*mcp.CallToolResult, RemoveMemberOutput, error) {
	var out RemoveMemberOutput
	_, err := s.cache.Update(ctx, input.ArchiveID, func(a *archive.Archive) error {
		before := len(a.Relations)
		wasRoot := a.RootMemberID != "" && a.RootMemberID == input.MemberID
		if err := a.RemoveMember(input.MemberID); err != nil {
			return err
		}
		out.RemovedRelations = before - len(a.Relations)
		out.RootCleared = wasRoot
		return nil
	})
	if err != nil {
		return nil, RemoveMemberOutput{}, fmt.Errorf("remove member: %w", err)
	}
	return nil, out, nil
}

// SetRoot changes the perspective member and returns the relabeled roster.
func (s *ArchiveService) SetRoot(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetRootInput,
) (*mcp.CallToolResult, SetRootOutput, error) {
	a, err := s.cache.Update(ctx, input.ArchiveID, func(a *archive.Archive) error {
		return a.SetRoot(input.MemberID)
	})
	if err != nil {
		return nil, SetRootOutput{}, fmt.Errorf("set root: %w", err)
	}
	return nil, SetRootOutput{RootID: a.RootMemberID, Roles: s.resolver("").Roles(a)}, nil
}

// RenderDiagram draws the archive as a Mermaid flowchart.
func (s *ArchiveService) RenderDiagram(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderDiagramInput,
) (*mcp.CallToolResult, RenderDiagramOutput, error) {
	a, err := s.cache.Get(ctx, input.ArchiveID)
	if err != nil {
		return nil, RenderDiagramOutput{}, err
	}
	return nil, RenderDiagramOutput{Mermaid: export.GenerateMermaid(a, s.resolver(input.Locale).Labels)}, nil
}
