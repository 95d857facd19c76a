// Package kinship computes kinship labels ("grandmother", "brother") for
// members of a family archive relative to a chosen root member.
package kinship

import "github.com/dusk-indust/kinship/internal/archive"

// Resolver turns member/relation snapshots into display labels. It holds no
// state besides the label table and is safe for concurrent use.
type Resolver struct {
	Labels Labels
}

// NewResolver returns a Resolver for the best matching locale.
func NewResolver(locales ...string) Resolver {
	return Resolver{Labels: LoadLabels(locales...)}
}

// Resolve returns what target is to root using the Russian label table.
func Resolve(targetID, rootID string, members []archive.Member, relations []archive.Relation) string {
	return Resolver{Labels: Russian}.Resolve(targetID, rootID, members, relations)
}

// Resolve returns what target is to root. It never fails:
//   - target == root yields the self label;
//   - without a root the member's own DisplayRole or legacy Relationship
//     is used, else a generic relative;
//   - an unknown target yields a generic relative;
//   - an unreachable target yields the parent label for its gender.
func (r Resolver) Resolve(targetID, rootID string, members []archive.Member, relations []archive.Relation) string {
	if rootID != "" && rootID == targetID {
		return r.Labels.Self
	}

	target, found := findMember(members, targetID)

	if rootID == "" {
		if !found {
			return r.Labels.Relative.Male
		}
		if target.DisplayRole != "" {
			return target.DisplayRole
		}
		if target.Relationship != "" {
			return target.Relationship
		}
		return r.Labels.Relative.For(target.Gender)
	}

	if !found {
		return r.Labels.Relative.Male
	}

	path, ok := BuildAdjacency(relations).ShortestPath(rootID, targetID)
	if !ok {
		return r.Labels.Parent.For(target.Gender)
	}
	return r.Labels.ForClassification(Classify(path), target.Gender)
}

// Explanation is a resolved label together with the path that produced it.
type Explanation struct {
	Label          string         `json:"label"`
	Path           []Step         `json:"path,omitempty"`
	Classification Classification `json:"classification"`
	Reachable      bool           `json:"reachable"`
}

// Explain resolves target like Resolve and also reports the shortest path
// and its classification. Path is empty for fallbacks.
func (r Resolver) Explain(targetID, rootID string, members []archive.Member, relations []archive.Relation) Explanation {
	exp := Explanation{Label: r.Resolve(targetID, rootID, members, relations)}
	if rootID == "" {
		return exp
	}
	if rootID == targetID {
		exp.Reachable = true
		return exp
	}
	if _, found := findMember(members, targetID); !found {
		return exp
	}
	path, ok := BuildAdjacency(relations).ShortestPath(rootID, targetID)
	exp.Reachable = ok
	if ok {
		exp.Path = path
		exp.Classification = Classify(path)
	}
	return exp
}

// Role is a member's label relative to the archive root.
type Role struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Label    string `json:"label"`
}

// Roles labels every member of a in member order relative to its root.
// The adjacency is built once and reused for all members.
func (r Resolver) Roles(a *archive.Archive) []Role {
	if a == nil {
		return nil
	}
	out := make([]Role, 0, len(a.Members))
	if a.RootMemberID == "" {
		for _, m := range a.Members {
			out = append(out, Role{MemberID: m.ID, Name: m.Name, Label: r.Resolve(m.ID, "", a.Members, a.Relations)})
		}
		return out
	}

	adj := BuildAdjacency(a.Relations)
	for _, m := range a.Members {
		label := r.Labels.Self
		if m.ID != a.RootMemberID {
			if path, ok := adj.ShortestPath(a.RootMemberID, m.ID); ok {
				label = r.Labels.ForClassification(Classify(path), m.Gender)
			} else {
				label = r.Labels.Parent.For(m.Gender)
			}
		}
		out = append(out, Role{MemberID: m.ID, Name: m.Name, Label: label})
	}
	return out
}

func findMember(members []archive.Member, id string) (archive.Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return archive.Member{}, false
}
