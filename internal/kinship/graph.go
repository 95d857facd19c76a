package kinship

import "github.com/dusk-indust/kinship/internal/archive"

// Direction records which way a stored relation was walked.
type Direction string

const (
	// DirectionForward walks a relation from FromMemberID to ToMemberID.
	// For a parent relation that is parent -> child.
	DirectionForward Direction = "forward"
	// DirectionBackward walks a relation from ToMemberID to FromMemberID.
	DirectionBackward Direction = "backward"
)

// Edge is one half of a stored relation seen from a single member.
type Edge struct {
	To        string               `json:"to"`
	Type      archive.RelationType `json:"relationType"`
	Direction Direction            `json:"direction"`
}

// Adjacency is an undirected multigraph over member IDs. Every stored
// relation appears twice: once forward from its source and once backward
// from its target, both keeping the stored relation type.
type Adjacency map[string][]Edge

// BuildAdjacency builds the undirected view of relations. Edge order per
// member follows relation order. IDs absent from the member list still get
// entries; the input is not modified.
func BuildAdjacency(relations []archive.Relation) Adjacency {
	adj := make(Adjacency, len(relations)*2)
	for _, r := range relations {
		adj[r.FromMemberID] = append(adj[r.FromMemberID], Edge{
			To:        r.ToMemberID,
			Type:      r.Type,
			Direction: DirectionForward,
		})
		adj[r.ToMemberID] = append(adj[r.ToMemberID], Edge{
			To:        r.FromMemberID,
			Type:      r.Type,
			Direction: DirectionBackward,
		})
	}
	return adj
}

// Step is one traversed edge on a path from the root.
type Step struct {
	MemberID  string               `json:"memberId"` // member reached by this step
	Type      archive.RelationType `json:"relationType"`
	Direction Direction            `json:"direction"`
}

// ShortestPath runs a breadth-first search from root and returns the steps
// leading to target. Neighbors are explored in adjacency order and a member
// is marked visited when it is dequeued, so the first path found is the
// shortest by edge count with ties broken by relation order. ok is false
// when target is unreachable.
func (adj Adjacency) ShortestPath(root, target string) (path []Step, ok bool) {
	if root == target {
		return nil, true
	}

	visited := make(map[string]bool)
	queue := []bfsEntry{{id: root, parent: -1}}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		if cur.id == target {
			return tracePath(queue, head), true
		}

		for _, e := range adj[cur.id] {
			if visited[e.To] {
				continue
			}
			queue = append(queue, bfsEntry{
				id:     e.To,
				parent: head,
				step:   Step{MemberID: e.To, Type: e.Type, Direction: e.Direction},
			})
		}
	}
	return nil, false
}

// bfsEntry is a queued member. It points back at the entry it was reached
// from, so a path is materialized only once, for the target.
type bfsEntry struct {
	id     string
	parent int // queue index, -1 for the root
	step   Step
}

// tracePath follows parent links from queue[i] back to the root and returns
// the steps in root-to-target order.
func tracePath(queue []bfsEntry, i int) []Step {
	depth := 0
	for j := i; queue[j].parent >= 0; j = queue[j].parent {
		depth++
	}
	path := make([]Step, depth)
	for j := i; queue[j].parent >= 0; j = queue[j].parent {
		depth--
		path[depth] = queue[j].step
	}
	return path
}
