package archive

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrDuplicateMember   = errors.New("duplicate member id")
	ErrDuplicateRelation = errors.New("duplicate relation id")
	ErrMissingID         = errors.New("missing id")
	ErrDanglingRelation  = errors.New("relation references unknown member")
	ErrParentCycle       = errors.New("parent relations form a cycle")
)

// Validate checks the structural invariants the editor is expected to keep:
// non-empty unique member and relation IDs, relation endpoints that exist, valid relation types, no
// self relations and an acyclic parent graph. Label resolution does not
// depend on it; it tolerates archives that fail validation.
func (a *Archive) Validate() error {
	ids := make(map[string]bool, len(a.Members))
	for _, m := range a.Members {
		if m.ID == "" {
			return fmt.Errorf("validate %s: member %q: %w", a.ID, m.Name, ErrMissingID)
		}
		if ids[m.ID] {
			return fmt.Errorf("validate %s: %w: %s", a.ID, ErrDuplicateMember, m.ID)
		}
		ids[m.ID] = true
	}

	relIDs := make(map[string]bool, len(a.Relations))
	children := make(map[string][]string)
	for i, r := range a.Relations {
		if r.ID == "" {
			return fmt.Errorf("validate %s: relation #%d: %w", a.ID, i, ErrMissingID)
		}
		if relIDs[r.ID] {
			return fmt.Errorf("validate %s: %w: %s", a.ID, ErrDuplicateRelation, r.ID)
		}
		relIDs[r.ID] = true
		if !r.Type.Valid() {
			return fmt.Errorf("validate relation %s: %w: %q", r.ID, ErrInvalidRelationType, r.Type)
		}
		if !ids[r.FromMemberID] || !ids[r.ToMemberID] {
			return fmt.Errorf("validate relation %s: %w", r.ID, ErrDanglingRelation)
		}
		if r.FromMemberID == r.ToMemberID {
			return fmt.Errorf("validate relation %s: %w", r.ID, ErrSelfRelation)
		}
		if r.Type == RelationParent {
			children[r.FromMemberID] = append(children[r.FromMemberID], r.ToMemberID)
		}
	}

	if a.RootMemberID != "" && !ids[a.RootMemberID] {
		return fmt.Errorf("validate root %s: %w", a.RootMemberID, ErrMemberNotFound)
	}

	// Three-colour DFS over parent->child edges.
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(a.Members))
	var visit func(id string) error
	visit = func(id string) error {
		color[id] = grey
		for _, c := range children[id] {
			switch color[c] {
			case grey:
				return fmt.Errorf("validate %s: %w through %s", a.ID, ErrParentCycle, c)
			case white:
				if err := visit(c); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for _, m := range a.Members {
		if color[m.ID] == white {
			if err := visit(m.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssignMissingIDs gives a fresh ID to every member and relation that has
// none and reports how many were assigned. Relations keep pointing at member
// IDs, so members referenced by relations must already have one.
func (a *Archive) AssignMissingIDs() int {
	n := 0
	for i := range a.Members {
		if a.Members[i].ID == "" {
			a.Members[i].ID = uuid.NewString()
			n++
		}
	}
	for i := range a.Relations {
		if a.Relations[i].ID == "" {
			a.Relations[i].ID = uuid.NewString()
			n++
		}
	}
	return n
}
