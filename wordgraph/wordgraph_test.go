package wordgraph_test

import (
	"testing"

	"github.com/katalvlaran/semigroups/wordgraph"
	"github.com/stretchr/testify/require"
)

func TestGraphBasic(t *testing.T) {
	g := wordgraph.New(3, 2)
	require.Equal(t, 3, g.NumNodes())
	require.Equal(t, 2, g.OutDegree())
	require.Equal(t, wordgraph.UNDEFINED, g.Target(0, 0))

	require.NoError(t, g.SetTarget(0, 0, 1))
	require.NoError(t, g.SetTarget(1, 0, 2))
	require.NoError(t, g.SetTarget(2, 0, 0))
	require.Equal(t, uint32(1), g.Target(0, 0))

	got := g.FollowPath(0, []uint32{0, 0, 0})
	require.Equal(t, uint32(0), got)
}

func TestGraphAddNodes(t *testing.T) {
	g := wordgraph.New(1, 2)
	n := g.AddNodes(5)
	require.Equal(t, 6, n)
	require.Equal(t, wordgraph.UNDEFINED, g.Target(5, 1))
}

func TestGraphOutOfRange(t *testing.T) {
	g := wordgraph.New(2, 2)
	require.Error(t, g.SetTarget(5, 0, 0))
	require.Error(t, g.SetTarget(0, 5, 0))
}

func TestSCCCycle(t *testing.T) {
	g := wordgraph.New(3, 1)
	require.NoError(t, g.SetTarget(0, 0, 1))
	require.NoError(t, g.SetTarget(1, 0, 2))
	require.NoError(t, g.SetTarget(2, 0, 0))
	require.Equal(t, 1, g.NumSCC())
}

func TestSCCDisjoint(t *testing.T) {
	g := wordgraph.New(4, 1)
	require.NoError(t, g.SetTarget(0, 0, 1))
	require.NoError(t, g.SetTarget(1, 0, 0))
	require.NoError(t, g.SetTarget(2, 0, 3))
	require.NoError(t, g.SetTarget(3, 0, 2))
	require.Equal(t, 2, g.NumSCC())
	require.NotEqual(t, g.SCCID(0), g.SCCID(2))
}

func TestSpanningForestWordTo(t *testing.T) {
	g := wordgraph.NewWithSources(3, 2)
	require.NoError(t, g.DefineEdge(0, 0, 1))
	require.NoError(t, g.DefineEdge(1, 1, 2))
	f := g.SpanningForest(false)
	require.Equal(t, []uint32{0, 1}, f.WordTo(2))
	require.Equal(t, []uint32{}, f.WordTo(0))
}

func TestSpanningForestReverseUsesPreimages(t *testing.T) {
	// a single 3-cycle: one SCC rooted at 0, so the reverse forest can walk
	// preimages all the way around.
	g := wordgraph.NewWithSources(3, 1)
	require.NoError(t, g.DefineEdge(0, 0, 1))
	require.NoError(t, g.DefineEdge(1, 0, 2))
	require.NoError(t, g.DefineEdge(2, 0, 0))

	f := g.SpanningForest(true)
	// node 0's only incoming edge is from 2 in the forward graph, so walking
	// preimages from the root visits 2 first, then 1 (1's only successor is
	// 2), giving this parent chain.
	require.Equal(t, wordgraph.UNDEFINED, f.Parent[0])
	require.Equal(t, uint32(0), f.Parent[2])
	require.Equal(t, uint32(2), f.Parent[1])
}

func TestNodeManagerAllocateFree(t *testing.T) {
	g := wordgraph.New(0, 1)
	nm := wordgraph.NewNodeManager(g)
	a := nm.Allocate()
	b := nm.Allocate()
	require.True(t, nm.IsActive(a))
	require.True(t, nm.IsActive(b))
	require.NoError(t, nm.Free(a))
	require.False(t, nm.IsActive(a))
	require.Error(t, nm.Free(a))

	c := nm.Allocate()
	require.Equal(t, a, c, "freed id should be reused before growing")
}

func TestNodeManagerActiveIteration(t *testing.T) {
	g := wordgraph.New(0, 1)
	nm := wordgraph.NewNodeManager(g)
	ids := make([]uint32, 5)
	for i := range ids {
		ids[i] = nm.Allocate()
	}
	require.NoError(t, nm.Free(ids[2]))

	var seen []uint32
	for id := nm.FirstActive(); id != wordgraph.UNDEFINED; id = nm.NextActive(id) {
		seen = append(seen, id)
	}
	require.Len(t, seen, 4)
	for _, id := range seen {
		require.NotEqual(t, ids[2], id)
	}
}

func TestUnionFindMergesLowerSurvives(t *testing.T) {
	uf := wordgraph.NewUnionFind(5)
	lo, hi := uf.Union(3, 1)
	require.Equal(t, uint32(1), lo)
	require.Equal(t, uint32(3), hi)
	require.Equal(t, uint32(1), uf.Find(3))
	require.Equal(t, uint32(1), uf.Find(1))

	lo2, hi2 := uf.Union(1, 3)
	require.Equal(t, lo2, hi2, "already-merged nodes report equal roots")
}

func TestGraphWithSourcesRedirect(t *testing.T) {
	g := wordgraph.NewWithSources(3, 1)
	require.NoError(t, g.DefineEdge(0, 0, 2))
	require.NoError(t, g.DefineEdge(1, 0, 2))
	srcs := g.Sources(2, 0)
	require.ElementsMatch(t, []uint32{0, 1}, srcs)

	// Redirect every source of (2,0) to target 0 instead.
	g.RedirectSources(2, 0, 0)
	require.Equal(t, uint32(0), g.Target(0, 0))
	require.Equal(t, uint32(0), g.Target(1, 0))
	require.ElementsMatch(t, []uint32{0, 1}, g.Sources(0, 0))
	require.Empty(t, g.Sources(2, 0))
}

func TestGraphWithSourcesRemoveEdge(t *testing.T) {
	g := wordgraph.NewWithSources(2, 1)
	require.NoError(t, g.DefineEdge(0, 0, 1))
	g.RemoveEdge(0, 0)
	require.Equal(t, wordgraph.UNDEFINED, g.Target(0, 0))
	require.Empty(t, g.Sources(1, 0))
}
