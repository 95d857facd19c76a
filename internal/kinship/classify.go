package kinship

import "github.com/dusk-indust/kinship/internal/archive"

// Classification summarizes a path from the root to a member.
type Classification struct {
	GenerationsUp   int  `json:"generationsUp"`   // child -> parent steps
	GenerationsDown int  `json:"generationsDown"` // parent -> child steps
	Spouse          bool `json:"spouse"`
	Sibling         bool `json:"sibling"`
}

// Net is the signed generation distance: positive for ancestors, negative
// for descendants.
func (c Classification) Net() int {
	return c.GenerationsUp - c.GenerationsDown
}

// Classify folds a path into generation counts and spouse/sibling flags.
func Classify(path []Step) Classification {
	var c Classification
	for _, s := range path {
		switch s.Type {
		case archive.RelationParent:
			if s.Direction == DirectionBackward {
				c.GenerationsUp++
			} else {
				c.GenerationsDown++
			}
		case archive.RelationSpouse:
			c.Spouse = true
		case archive.RelationSibling:
			c.Sibling = true
		}
	}
	return c
}
