package congruence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/semigroups/congruence"
	"github.com/katalvlaran/semigroups/word"
	"github.com/stretchr/testify/require"
)

func mustPresentation(t *testing.T, size int, containsEmpty bool, rules [][2]word.Word) *word.Presentation {
	t.Helper()
	p, err := word.New(size, containsEmpty)
	require.NoError(t, err)
	for _, r := range rules {
		require.NoError(t, p.AddRule(r[0], r[1]))
	}
	return p
}

// TestFiniteSemigroupOfSizeFive exercises spec scenario 1: {0,1},
// contains_empty_word=false, rules (000,0) and (0,11), two-sided.
func TestFiniteSemigroupOfSizeFive(t *testing.T) {
	p := mustPresentation(t, 2, false, [][2]word.Word{
		{word.Word{0, 0, 0}, word.Word{0}},
		{word.Word{0}, word.Word{1, 1}},
	})
	f := congruence.New(congruence.TwoSided, p)

	n, finite, err := f.NumberOfClasses(context.Background())
	require.NoError(t, err)
	require.True(t, finite)
	require.Equal(t, 5, n)

	ok, err := f.Contains(context.Background(), word.Word{0, 0, 1}, word.Word{0, 0, 0, 0, 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.Contains(context.Background(), word.Word{0, 0, 0}, word.Word{1})
	require.NoError(t, err)
	require.False(t, ok)
}

// TestTrivialCongruenceIdentifiesEverything checks the boundary case: every
// generator collapsed to the identity yields exactly one class.
func TestTrivialCongruenceIdentifiesEverything(t *testing.T) {
	p := mustPresentation(t, 1, true, [][2]word.Word{
		{word.Word{0}, word.Word{}},
	})
	f := congruence.New(congruence.TwoSided, p)
	n, finite, err := f.NumberOfClasses(context.Background())
	require.NoError(t, err)
	require.True(t, finite)
	require.Equal(t, 1, n)
}

// TestAddGeneratingPairAfterStartIsRejected checks spec §7
// MutationAfterStart: once a query has raced the dispatcher, adding a pair
// must fail with a LibsemigroupsError of kind MutationAfterStart.
func TestAddGeneratingPairAfterStartIsRejected(t *testing.T) {
	p := mustPresentation(t, 1, true, nil)
	f := congruence.New(congruence.TwoSided, p)
	_, _, err := f.NumberOfClasses(context.Background())
	require.NoError(t, err)

	err = f.AddGeneratingPair(word.Word{0}, word.Word{})
	require.Error(t, err)
	var lsErr *congruence.LibsemigroupsError
	require.True(t, errors.As(err, &lsErr))
	require.Equal(t, congruence.MutationAfterStart, lsErr.Kind)
}

// TestGetToddCoxeterBeforeQueryFails checks spec §7 MissingRunner.
func TestGetToddCoxeterBeforeQueryFails(t *testing.T) {
	p := mustPresentation(t, 1, true, nil)
	f := congruence.New(congruence.TwoSided, p)
	require.False(t, f.HasToddCoxeter())
	_, err := f.GetToddCoxeter()
	require.Error(t, err)

	_, _, err = f.NumberOfClasses(context.Background())
	require.NoError(t, err)
	require.True(t, f.HasToddCoxeter())
	_, err = f.GetToddCoxeter()
	require.NoError(t, err)
}

// TestPresentationPreservedAcrossQueries checks spec §8 "Presentation
// preservation": the original (unreversed) presentation is always returned.
func TestPresentationPreservedAcrossQueries(t *testing.T) {
	rules := [][2]word.Word{{word.Word{0, 0, 0}, word.Word{0}}, {word.Word{0}, word.Word{1, 1}}}
	p := mustPresentation(t, 2, false, rules)
	f := congruence.New(congruence.Left, p)
	_, _, _ = f.NumberOfClasses(context.Background())

	got := f.Presentation()
	require.Equal(t, p.Rules(), got.Rules())
	require.Equal(t, p.ContainsEmptyWord(), got.ContainsEmptyWord())
}

// TestLeftCongruenceViaReversal exercises spec scenario 3: alphabet {a,b},
// rules (aaa,a),(a,bb), left congruence. Expected: 5 classes, matching the
// two-sided run on the reversed presentation.
func TestLeftCongruenceViaReversal(t *testing.T) {
	a, b := word.Letter(0), word.Letter(1)
	left := mustPresentation(t, 2, false, [][2]word.Word{
		{word.Word{a, a, a}, word.Word{a}},
		{word.Word{a}, word.Word{b, b}},
	})
	lf := congruence.New(congruence.Left, left)
	n, finite, err := lf.NumberOfClasses(context.Background())
	require.NoError(t, err)
	require.True(t, finite)
	require.Equal(t, 5, n)

	reversed := mustPresentation(t, 2, false, [][2]word.Word{
		{word.Word{a, a, a}, word.Word{a}},
		{word.Word{a}, word.Word{b, b}},
	})
	tf := congruence.New(congruence.TwoSided, reversed)
	n2, finite2, err := tf.NumberOfClasses(context.Background())
	require.NoError(t, err)
	require.True(t, finite2)
	require.Equal(t, n, n2)
}

// TestCurrentlyContainsIsUnknownBeforeAnyQuery checks that
// CurrentlyContains never blocks/starts the dispatcher itself.
func TestCurrentlyContainsIsUnknownBeforeAnyQuery(t *testing.T) {
	p := mustPresentation(t, 1, true, nil)
	f := congruence.New(congruence.TwoSided, p)
	require.Equal(t, congruence.Unknown, f.CurrentlyContains(word.Word{0}, word.Word{}))
	require.False(t, f.HasToddCoxeter())
}
