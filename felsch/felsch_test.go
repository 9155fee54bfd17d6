package felsch_test

import (
	"testing"

	"github.com/katalvlaran/semigroups/felsch"
	"github.com/katalvlaran/semigroups/word"
	"github.com/katalvlaran/semigroups/wordgraph"
	"github.com/stretchr/testify/require"
)

func TestTreeMatchesSingleLetter(t *testing.T) {
	// Rule: [0,0] -> [0] ("000 = 0" style idempotency on letter 0, here
	// length-2 for a minimal non-trivial case).
	tr := felsch.NewTree(2, []felsch.Rule{{LHS: word.Word{0, 0}, RHS: word.Word{0}}})
	tr.PushBack(0)
	require.Empty(t, tr.Matches(), "suffix [0] alone should not match a length-2 LHS")
	require.True(t, tr.PushFront(0))
	require.Equal(t, []int{0}, tr.Matches())
	tr.PopFront()
	require.Empty(t, tr.Matches())
}

func TestTreeNonMatchingSuffixReachesRoot(t *testing.T) {
	tr := felsch.NewTree(2, []felsch.Rule{{LHS: word.Word{0, 1}, RHS: word.Word{1}}})
	tr.PushBack(0)
	require.False(t, tr.PushFront(0), "suffix [0,0] is not a suffix of [0,1]")
}

func TestFelschGraphPropagatesForcedCoincidence(t *testing.T) {
	// Relation 00 = 0 (over a 1-letter alphabet {0}), two-sided so both
	// directions are indexed.
	rules := []felsch.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{0}},
		{LHS: word.Word{0}, RHS: word.Word{0, 0}},
	}
	fg := felsch.New(1, rules)
	fg.AddNodes(3) // 0: root, 1, 2

	// Define 0 --0--> 1 (so node 1 represents the class of "0").
	cs := fg.DefineEdgeAndPropagate(0, 0, 1)
	require.Empty(t, cs)

	// Define 1 --0--> 2. Now node0--0-->1--0-->2 spells "00", which by the
	// rule must equal "0", i.e. node 2 must coincide with node 1.
	cs = fg.DefineEdgeAndPropagate(1, 0, 2)
	require.Len(t, cs, 1)
	require.Equal(t, uint32(1), cs[0].X)
	require.Equal(t, uint32(2), cs[0].Y)
}

func TestFelschGraphNoSpuriousCoincidence(t *testing.T) {
	rules := []felsch.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{1}},
		{LHS: word.Word{1}, RHS: word.Word{0, 0}},
	}
	fg := felsch.New(2, rules)
	fg.AddNodes(3)
	require.Empty(t, fg.DefineEdgeAndPropagate(0, 0, 1))
	cs := fg.DefineEdgeAndPropagate(1, 0, 2)
	// node0--0-->1--0-->2 spells "00" which must equal node0--1-->?; that
	// edge is undefined, so it should be *defined* (to node 2), not flagged
	// as a coincidence.
	require.Empty(t, cs)
	require.Equal(t, uint32(2), fg.Target(0, 1))
}

func TestFelschGraphUndefinedEdgeYieldsUndefined(t *testing.T) {
	fg := felsch.New(1, nil)
	fg.AddNodes(2)
	require.Equal(t, wordgraph.UNDEFINED, fg.Target(0, 0))
}
