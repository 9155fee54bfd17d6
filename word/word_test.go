package word_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/semigroups/word"
	"github.com/stretchr/testify/require"
)

func TestWordEqualAndReversed(t *testing.T) {
	a := word.Word{0, 1, 2}
	b := word.Word{0, 1, 2}
	c := word.Word{2, 1, 0}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.True(t, a.Reversed().Equal(c))
	require.True(t, word.Word{}.Reversed().Equal(word.Word{}))
}

func TestWordCompareShortLex(t *testing.T) {
	require.Equal(t, -1, word.Word{0}.Compare(word.Word{0, 0}))
	require.Equal(t, 1, word.Word{1}.Compare(word.Word{0}))
	require.Equal(t, 0, word.Word{0, 1}.Compare(word.Word{0, 1}))
}

func TestWordAppendDoesNotMutateReceiver(t *testing.T) {
	a := word.Word{0, 1}
	b := a.Append(2, 3)
	require.Equal(t, word.Word{0, 1}, a)
	require.Equal(t, word.Word{0, 1, 2, 3}, b)
}

func TestToStringFromStringRoundTrip(t *testing.T) {
	alphabet := []string{"a", "b", "c"}
	w := word.Word{0, 2, 1}
	s := word.ToString(w, alphabet)
	require.Equal(t, "a c b", s)

	got, err := word.FromString(s, alphabet)
	require.NoError(t, err)
	require.True(t, w.Equal(got))
}

func TestFromStringUnknownSymbol(t *testing.T) {
	_, err := word.FromString("a x", []string{"a", "b"})
	require.Error(t, err)
	require.True(t, errors.Is(err, word.ErrUnknownSymbol))
}

func TestPresentationAddRuleValidatesAlphabetAndEmptyWord(t *testing.T) {
	p, err := word.New(2, false)
	require.NoError(t, err)

	require.NoError(t, p.AddRule(word.Word{0, 1}, word.Word{1, 0}))
	require.ErrorIs(t, p.AddRule(word.Word{0, 2}, word.Word{1}), word.ErrLetterOutOfRange)
	require.ErrorIs(t, p.AddRule(word.Word{}, word.Word{0}), word.ErrEmptyWordBanned)

	rules := p.Rules()
	require.Len(t, rules, 1)
	require.True(t, rules[0][0].Equal(word.Word{0, 1}))
}

func TestPresentationNewRejectsEmptyAlphabet(t *testing.T) {
	_, err := word.New(0, true)
	require.ErrorIs(t, err, word.ErrAlphabetTooSmall)
}

func TestPresentationCloneIsIndependent(t *testing.T) {
	p, err := word.New(2, true)
	require.NoError(t, err)
	require.NoError(t, p.AddRule(word.Word{0, 0}, word.Word{}))

	clone := p.Clone()
	require.NoError(t, clone.AddRule(word.Word{1, 1}, word.Word{}))

	require.Len(t, p.Rules(), 1)
	require.Len(t, clone.Rules(), 2)
}

func TestPresentationReversedReversesBothSidesOfEveryRule(t *testing.T) {
	p, err := word.New(2, true)
	require.NoError(t, err)
	require.NoError(t, p.AddRule(word.Word{0, 1}, word.Word{1}))

	r := p.Reversed()
	rules := r.Rules()
	require.Len(t, rules, 1)
	require.True(t, rules[0][0].Equal(word.Word{1, 0}))
	require.True(t, rules[0][1].Equal(word.Word{1}))
}

func TestPresentationExtendAlphabetAddsOneLetter(t *testing.T) {
	p, err := word.New(2, true)
	require.NoError(t, err)

	extended, newLetter := p.ExtendAlphabet()
	require.Equal(t, 3, extended.Size())
	require.Equal(t, word.Letter(2), newLetter)
	require.Equal(t, 2, p.Size(), "original presentation must be unaffected")
}
