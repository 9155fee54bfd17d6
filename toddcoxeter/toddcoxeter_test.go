package toddcoxeter_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/semigroups/toddcoxeter"
	"github.com/katalvlaran/semigroups/word"
	"github.com/stretchr/testify/require"
)

func TestTrivialPresentationHasOneClass(t *testing.T) {
	tc := toddcoxeter.New(1, nil)
	require.NoError(t, tc.Run(context.Background()))
	require.True(t, tc.Finished())
	require.Equal(t, 1, tc.NumClasses())
}

// TestIdempotentRelationMergesClasses checks "00 = 0" over a 1-letter
// alphabet: the only classes are the identity and the class of "0" itself,
// since tracing "00" from the root must coincide with tracing "0".
func TestIdempotentRelationMergesClasses(t *testing.T) {
	rules := []toddcoxeter.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{0}},
		{LHS: word.Word{0}, RHS: word.Word{0, 0}},
	}
	tc := toddcoxeter.New(1, rules)
	require.NoError(t, tc.Run(context.Background()))
	require.True(t, tc.Finished())
	require.Equal(t, 2, tc.NumClasses())

	require.Equal(t, toddcoxeter.True, tc.Contains(word.Word{0, 0}, word.Word{0}))
	require.Equal(t, toddcoxeter.False, tc.Contains(word.Word{}, word.Word{0}))
}

// TestStandardizeProducesShortLexNormalForms standardizes the same
// presentation and checks the recovered representative words.
func TestStandardizeProducesShortLexNormalForms(t *testing.T) {
	rules := []toddcoxeter.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{0}},
		{LHS: word.Word{0}, RHS: word.Word{0, 0}},
	}
	tc := toddcoxeter.New(1, rules)
	require.NoError(t, tc.Run(context.Background()))
	require.True(t, tc.Finished())

	tc.Standardize(toddcoxeter.ShortLex)
	require.Equal(t, []word.Word{{}, {0}}, tc.NormalForms())
}

// TestCancellationStopsPromptly checks that a pre-cancelled Core returns
// without claiming it finished.
func TestCancellationStopsPromptly(t *testing.T) {
	rules := []toddcoxeter.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{0}},
		{LHS: word.Word{0}, RHS: word.Word{0, 0}},
	}
	tc := toddcoxeter.New(1, rules)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, tc.Run(ctx))
	require.False(t, tc.Finished())
}

// TestTwoGeneratorMonoidWithCommutingIdempotents checks a presentation with
// two independent idempotent generators that commute: aa=a, bb=b, ab=ba.
// The quotient has exactly four classes: e, a, b, ab.
func TestTwoGeneratorMonoidWithCommutingIdempotents(t *testing.T) {
	a, b := word.Letter(0), word.Letter(1)
	rules := []toddcoxeter.Rule{
		{LHS: word.Word{a, a}, RHS: word.Word{a}},
		{LHS: word.Word{a}, RHS: word.Word{a, a}},
		{LHS: word.Word{b, b}, RHS: word.Word{b}},
		{LHS: word.Word{b}, RHS: word.Word{b, b}},
		{LHS: word.Word{a, b}, RHS: word.Word{b, a}},
		{LHS: word.Word{b, a}, RHS: word.Word{a, b}},
	}
	tc := toddcoxeter.New(2, rules)
	require.NoError(t, tc.Run(context.Background()))
	require.True(t, tc.Finished())
	require.Equal(t, 4, tc.NumClasses())
	require.Equal(t, toddcoxeter.True, tc.Contains(word.Word{a, b, a, b}, word.Word{a, b}))
}

// TestLookaheadAfterFinishedEnumerationKillsNothing checks that an explicit
// full Lookahead pass, run after HLT enumeration has finished, finds no
// coincidence left and kills no node.
func TestLookaheadAfterFinishedEnumerationKillsNothing(t *testing.T) {
	rules := []toddcoxeter.Rule{
		{LHS: word.Word{0, 0}, RHS: word.Word{0}},
		{LHS: word.Word{0}, RHS: word.Word{0, 0}},
	}
	tc := toddcoxeter.New(1, rules, toddcoxeter.WithStrategy(toddcoxeter.HLT))
	require.NoError(t, tc.Run(context.Background()))
	require.Equal(t, 0, tc.Lookahead(true), "a finished enumeration has nothing left for lookahead to kill")
}
