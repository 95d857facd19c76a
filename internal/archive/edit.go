package archive

import (
	"errors"
	"fmt"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrRelationNotFound    = errors.New("relation not found")
	ErrInvalidRelationType = errors.New("invalid relation type")
	ErrSelfRelation        = errors.New("member cannot be related to itself")
)

// Rename changes the archive display name.
func (a *Archive) Rename(name string) {
	a.Name = name
	a.touch()
}

// SetRoot designates the member whose perspective labels are computed from.
// An empty id clears the root.
func (a *Archive) SetRoot(id string) error {
	if id != "" {
		if _, ok := a.Member(id); !ok {
			return fmt.Errorf("set root %s: %w", id, ErrMemberNotFound)
		}
	}
	a.RootMemberID = id
	a.touch()
	return nil
}

// AddMember appends an empty member and returns a copy of it.
func (a *Archive) AddMember(name string) Member {
	m := NewMember()
	m.Name = name
	if m.Name == "" {
		m.Name = DefaultMemberName
	}
	a.Members = append(a.Members, m)
	a.touch()
	return m
}

// AddMemberWithRelation appends m as a new member linked to relatedID.
// kind describes the new member from the related member's point of view:
// RelationParent makes the new member a parent of relatedID, RelationChild
// makes it a child (stored as a parent relation from relatedID), spouse and
// sibling are stored from relatedID to the new member.
func (a *Archive) AddMemberWithRelation(relatedID string, kind RelationType, m Member) (Member, error) {
	if _, ok := a.Member(relatedID); !ok {
		return Member{}, fmt.Errorf("add member related to %s: %w", relatedID, ErrMemberNotFound)
	}
	if !kind.Valid() && kind != RelationChild {
		return Member{}, fmt.Errorf("add member as %q: %w", kind, ErrInvalidRelationType)
	}

	fresh := NewMember()
	if m.ID == "" {
		m.ID = fresh.ID
	}
	if m.Name == "" {
		m.Name = DefaultMemberName
	}
	if m.Gender == "" {
		m.Gender = GenderUnknown
	}
	a.Members = append(a.Members, m)

	from, to, stored := relatedID, m.ID, kind
	switch kind {
	case RelationParent:
		from, to = m.ID, relatedID
	case RelationChild:
		stored = RelationParent
	}
	if _, _, err := a.AddRelation(from, to, stored); err != nil {
		a.Members = a.Members[:len(a.Members)-1]
		return Member{}, err
	}
	a.touch()
	return m, nil
}

// AddRelation links two members. An identical (from, to, type) relation is
// not duplicated; the existing one is returned with added=false.
func (a *Archive) AddRelation(from, to string, t RelationType) (rel Relation, added bool, err error) {
	if !t.Valid() {
		return Relation{}, false, fmt.Errorf("add relation %q: %w", t, ErrInvalidRelationType)
	}
	if from == to {
		return Relation{}, false, fmt.Errorf("add relation %s: %w", from, ErrSelfRelation)
	}
	for _, r := range a.Relations {
		if r.FromMemberID == from && r.ToMemberID == to && r.Type == t {
			return r, false, nil
		}
	}
	rel = NewRelation(from, to, t)
	a.Relations = append(a.Relations, rel)
	a.touch()
	return rel, true, nil
}

// RemoveRelation deletes a single relation by ID.
func (a *Archive) RemoveRelation(id string) error {
	for i, r := range a.Relations {
		if r.ID == id {
			a.Relations = append(a.Relations[:i], a.Relations[i+1:]...)
			a.touch()
			return nil
		}
	}
	return fmt.Errorf("remove relation %s: %w", id, ErrRelationNotFound)
}

// RemoveAllMemberRelations drops every relation touching memberID and
// returns how many were removed.
func (a *Archive) RemoveAllMemberRelations(memberID string) int {
	kept := a.Relations[:0]
	for _, r := range a.Relations {
		if r.FromMemberID != memberID && r.ToMemberID != memberID {
			kept = append(kept, r)
		}
	}
	removed := len(a.Relations) - len(kept)
	a.Relations = kept
	if removed > 0 {
		a.touch()
	}
	return removed
}

// RemoveMember deletes a member together with its relations. If the member
// was the root, the root is cleared.
func (a *Archive) RemoveMember(id string) error {
	idx := -1
	for i := range a.Members {
		if a.Members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("remove member %s: %w", id, ErrMemberNotFound)
	}
	a.RemoveAllMemberRelations(id)
	a.Members = append(a.Members[:idx], a.Members[idx+1:]...)
	if a.RootMemberID == id {
		a.RootMemberID = ""
	}
	a.touch()
	return nil
}

// UpdateMember applies fn to the member in place. fn must not change the ID.
func (a *Archive) UpdateMember(id string, fn func(*Member)) error {
	m, ok := a.Member(id)
	if !ok {
		return fmt.Errorf("update member %s: %w", id, ErrMemberNotFound)
	}
	fn(m)
	m.ID = id
	a.touch()
	return nil
}

// RelatedMember is a direct neighbor of a member. Type is the queried
// member's role toward the neighbor.
type RelatedMember struct {
	Member Member       `json:"member"`
	Type   RelationType `json:"relationType"`
}

// Related lists direct neighbors of memberID in relation order. When
// memberID is the child side of a parent relation the type is reported as
// RelationChild. Relations pointing at members that do not exist are skipped.
func (a *Archive) Related(memberID string) []RelatedMember {
	var out []RelatedMember
	for _, r := range a.Relations {
		switch memberID {
		case r.FromMemberID:
			if m, ok := a.Member(r.ToMemberID); ok {
				out = append(out, RelatedMember{Member: *m, Type: r.Type})
			}
		case r.ToMemberID:
			if m, ok := a.Member(r.FromMemberID); ok {
				t := r.Type
				if t == RelationParent {
					t = RelationChild
				}
				out = append(out, RelatedMember{Member: *m, Type: t})
			}
		}
	}
	return out
}
