package kinship

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kinship/internal/archive"
)

func TestBuildAdjacency(t *testing.T) {
	relations := []archive.Relation{
		rel("p", "c", parent),
		rel("c", "ghost", spouse),
	}
	before := append([]archive.Relation(nil), relations...)

	adj := BuildAdjacency(relations)

	assert.Equal(t, []Edge{{To: "c", Type: parent, Direction: DirectionForward}}, adj["p"])
	assert.Equal(t, []Edge{
		{To: "p", Type: parent, Direction: DirectionBackward},
		{To: "ghost", Type: spouse, Direction: DirectionForward},
	}, adj["c"])
	assert.Equal(t, []Edge{{To: "c", Type: spouse, Direction: DirectionBackward}}, adj["ghost"],
		"ids missing from the member list still get entries")
	assert.Equal(t, before, relations, "input must not be mutated")
}

func TestShortestPath_Steps(t *testing.T) {
	adj := BuildAdjacency([]archive.Relation{
		rel("gp", "p", parent),
		rel("p", "me", parent),
	})

	path, ok := adj.ShortestPath("me", "gp")
	require.True(t, ok)
	assert.Equal(t, []Step{
		{MemberID: "p", Type: parent, Direction: DirectionBackward},
		{MemberID: "gp", Type: parent, Direction: DirectionBackward},
	}, path)

	path, ok = adj.ShortestPath("me", "me")
	assert.True(t, ok)
	assert.Empty(t, path)

	_, ok = adj.ShortestPath("me", "nobody")
	assert.False(t, ok)
}

func TestShortestPath_PrefersFewerEdges(t *testing.T) {
	// Long way round first in relation order, direct spouse edge last.
	adj := BuildAdjacency([]archive.Relation{
		rel("a", "b", sibling),
		rel("b", "c", sibling),
		rel("c", "d", sibling),
		rel("a", "d", spouse),
	})
	path, ok := adj.ShortestPath("a", "d")
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.Equal(t, spouse, path[0].Type)
}

func TestShortestPath_LongChain(t *testing.T) {
	const n = 2000
	var relations []archive.Relation
	for i := 0; i < n; i++ {
		relations = append(relations, rel(fmt.Sprint("m", i), fmt.Sprint("m", i+1), parent))
	}
	adj := BuildAdjacency(relations)

	path, ok := adj.ShortestPath("m0", fmt.Sprint("m", n))
	require.True(t, ok)
	require.Len(t, path, n)
	for i, s := range path {
		assert.Equal(t, fmt.Sprint("m", i+1), s.MemberID)
		assert.Equal(t, DirectionForward, s.Direction)
	}
	assert.Equal(t, Classification{GenerationsDown: n}, Classify(path))
}

func TestShortestPath_TieBreakFollowsRelationOrder(t *testing.T) {
	// Two equally short routes from a to d; the one through the earlier
	// relation wins, and the first edge into a member is the one kept.
	adj := BuildAdjacency([]archive.Relation{
		rel("a", "b", sibling),
		rel("a", "c", spouse),
		rel("c", "d", parent),
		rel("b", "d", parent),
		rel("c", "b", spouse),
	})

	path, ok := adj.ShortestPath("a", "d")
	require.True(t, ok)
	assert.Equal(t, []Step{
		{MemberID: "b", Type: sibling, Direction: DirectionForward},
		{MemberID: "d", Type: parent, Direction: DirectionForward},
	}, path)

	path, ok = adj.ShortestPath("d", "a")
	require.True(t, ok)
	assert.Equal(t, []Step{
		{MemberID: "c", Type: parent, Direction: DirectionBackward},
		{MemberID: "a", Type: spouse, Direction: DirectionBackward},
	}, path)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		path []Step
		want Classification
	}{
		{"empty", nil, Classification{}},
		{"up", []Step{{Type: parent, Direction: DirectionBackward}}, Classification{GenerationsUp: 1}},
		{"down", []Step{{Type: parent, Direction: DirectionForward}}, Classification{GenerationsDown: 1}},
		{"spouse and sibling", []Step{
			{Type: spouse, Direction: DirectionBackward},
			{Type: sibling, Direction: DirectionForward},
		}, Classification{Spouse: true, Sibling: true}},
		{"up and down", []Step{
			{Type: parent, Direction: DirectionBackward},
			{Type: parent, Direction: DirectionBackward},
			{Type: parent, Direction: DirectionForward},
		}, Classification{GenerationsUp: 2, GenerationsDown: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.GenerationsUp-tt.want.GenerationsDown, got.Net())
		})
	}
}
