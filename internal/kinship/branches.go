package kinship

import "github.com/dusk-indust/kinship/internal/archive"

// Branch is a connected group of members. Members in different branches
// have no relation path between them, so labels across branches fall back.
type Branch struct {
	Members      []string `json:"members"` // BFS order from the first member
	ContainsRoot bool     `json:"containsRoot"`
}

// Branches finds connected components of the relation graph among members.
// Components are ordered by their first member in member order; relations to
// IDs outside the member list are ignored. Singletons are included.
func Branches(members []archive.Member, relations []archive.Relation, rootID string) []Branch {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	adj := BuildAdjacency(relations)

	visited := make(map[string]bool, len(members))
	var out []Branch
	for _, m := range members {
		if visited[m.ID] {
			continue
		}
		b := Branch{}
		queue := []string{m.ID}
		visited[m.ID] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			b.Members = append(b.Members, id)
			if id == rootID {
				b.ContainsRoot = true
			}
			for _, e := range adj[id] {
				if known[e.To] && !visited[e.To] {
					visited[e.To] = true
					queue = append(queue, e.To)
				}
			}
		}
		out = append(out, b)
	}
	return out
}

// Unreachable lists members with no relation path to the archive root, in
// member order. These are the members whose label is a fallback. It returns
// nil when the archive has no root.
func Unreachable(a *archive.Archive) []string {
	if a == nil || a.RootMemberID == "" {
		return nil
	}
	reachable := make(map[string]bool)
	for _, b := range Branches(a.Members, a.Relations, a.RootMemberID) {
		if b.ContainsRoot {
			for _, id := range b.Members {
				reachable[id] = true
			}
		}
	}
	var out []string
	for _, m := range a.Members {
		if !reachable[m.ID] {
			out = append(out, m.ID)
		}
	}
	return out
}
