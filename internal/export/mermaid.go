package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/kinship"
)

// GenerateMermaid produces a Mermaid graph TD diagram of a family tree.
// Each member becomes a node labeled with its name and role relative to the
// root. Branches not connected to the root are grouped into subgraphs.
// Parent relations are arrows from parent to child, spouses a solid line,
// siblings a dotted line. Relations with unknown endpoints are skipped.
func GenerateMermaid(a *archive.Archive, labels kinship.Labels) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if a == nil || len(a.Members) == 0 {
		return sb.String()
	}

	// Mermaid node IDs must be alphanumeric; member IDs are UUIDs.
	nodeIDs := make(map[string]string, len(a.Members))
	for i, m := range a.Members {
		nodeIDs[m.ID] = fmt.Sprintf("N%d", i)
	}
	roles := make(map[string]string, len(a.Members))
	names := make(map[string]string, len(a.Members))
	for _, r := range (kinship.Resolver{Labels: labels}).Roles(a) {
		roles[r.MemberID] = r.Label
		names[r.MemberID] = r.Name
	}

	node := func(indent, id string) {
		fmt.Fprintf(&sb, "%s%s[\"%s<br/>%s\"]\n", indent, nodeIDs[id], escape(names[id]), escape(roles[id]))
	}

	branches := kinship.Branches(a.Members, a.Relations, a.RootMemberID)
	n := 0
	for _, b := range branches {
		if a.RootMemberID == "" || b.ContainsRoot {
			for _, id := range b.Members {
				node("  ", id)
			}
			continue
		}
		n++
		fmt.Fprintf(&sb, "  subgraph B%d[\"%s\"]\n", n, escape(names[b.Members[0]]))
		for _, id := range b.Members {
			node("    ", id)
		}
		sb.WriteString("  end\n")
	}

	for _, r := range a.Relations {
		from, ok1 := nodeIDs[r.FromMemberID]
		to, ok2 := nodeIDs[r.ToMemberID]
		if !ok1 || !ok2 {
			continue
		}
		switch r.Type {
		case archive.RelationParent:
			fmt.Fprintf(&sb, "  %s --> %s\n", from, to)
		case archive.RelationSpouse:
			fmt.Fprintf(&sb, "  %s --- %s\n", from, to)
		case archive.RelationSibling:
			fmt.Fprintf(&sb, "  %s -.- %s\n", from, to)
		}
	}

	if root, ok := nodeIDs[a.RootMemberID]; ok {
		sb.WriteString("  classDef root stroke-width:3px\n")
		fmt.Fprintf(&sb, "  class %s root\n", root)
	}
	return sb.String()
}

var mermaidEscaper = strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;")

func escape(s string) string {
	return mermaidEscaper.Replace(s)
}
