package knuthbendix_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/semigroups/knuthbendix"
	"github.com/katalvlaran/semigroups/word"
	"github.com/stretchr/testify/require"
)

// TestFreeMonoidIsTriviallyConfluent exercises a presentation with no rules
// at all: the system should immediately be confluent over the free monoid.
func TestFreeMonoidIsTriviallyConfluent(t *testing.T) {
	kb := knuthbendix.New(2, knuthbendix.ShortLexOrder)
	require.NoError(t, kb.Run(context.Background()))
	require.True(t, kb.Finished())
	require.Empty(t, kb.ActiveRules())
}

// TestIdempotentGeneratorCompletes checks aa=a over a 1-letter alphabet: this
// is already confluent as a single rule with no overlaps beyond itself.
func TestIdempotentGeneratorCompletes(t *testing.T) {
	kb := knuthbendix.New(1, knuthbendix.ShortLexOrder)
	require.NoError(t, kb.AddRule(word.Word{0, 0}, word.Word{0}))
	require.NoError(t, kb.Run(context.Background()))
	require.True(t, kb.Finished())

	require.Equal(t, word.Word{0}, kb.Reduce(word.Word{0, 0, 0, 0, 0}))
	require.Equal(t, knuthbendix.True, kb.Contains(word.Word{0, 0, 0}, word.Word{0}))
}

// TestBicyclicLikeOverlapCompletes uses the classic example aaa=a, bbb=b,
// abab=aaa (a presentation with a genuine, non-self overlap to resolve).
func TestBicyclicLikeOverlapCompletes(t *testing.T) {
	kb := knuthbendix.New(2, knuthbendix.ShortLexOrder, knuthbendix.WithMaxRules(200))
	require.NoError(t, kb.AddRule(word.Word{0, 0, 0}, word.Word{0}))
	require.NoError(t, kb.AddRule(word.Word{1, 1, 1}, word.Word{1}))
	require.NoError(t, kb.AddRule(word.Word{0, 1, 0, 1}, word.Word{0, 0, 0}))

	require.NoError(t, kb.Run(context.Background()))
	require.True(t, kb.Finished())
	require.NotEmpty(t, kb.ActiveRules())

	// Every active rule's lhs must reduce to its own rhs in a confluent
	// system (idempotent under Reduce).
	for _, r := range kb.ActiveRules() {
		require.Equal(t, r[1], kb.Reduce(r[0]))
	}
}

// TestCancellationLeavesResumableState checks that an already-cancelled Run
// returns promptly without claiming confluence, leaving the queued rules
// pending for a later Run.
func TestCancellationLeavesResumableState(t *testing.T) {
	kb := knuthbendix.New(2, knuthbendix.ShortLexOrder)
	require.NoError(t, kb.AddRule(word.Word{0, 0, 0}, word.Word{0}))
	require.NoError(t, kb.AddRule(word.Word{1, 1, 1}, word.Word{1}))
	require.NoError(t, kb.AddRule(word.Word{0, 1, 0, 1}, word.Word{0, 0, 0}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, kb.Run(ctx))
	require.False(t, kb.Finished())
}

func TestGilmanGraphAcceptsIrreducibleWords(t *testing.T) {
	kb := knuthbendix.New(1, knuthbendix.ShortLexOrder)
	require.NoError(t, kb.AddRule(word.Word{0, 0}, word.Word{0}))
	require.NoError(t, kb.Run(context.Background()))
	require.True(t, kb.Finished())

	nf := kb.NormalForms(0, 3)
	require.Equal(t, []word.Word{{}, {0}}, nf, "only ε and \"0\" are irreducible once aa=a is active")
}
