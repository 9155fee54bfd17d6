package rewrite_test

import (
	"testing"

	"github.com/katalvlaran/semigroups/rewrite"
	"github.com/katalvlaran/semigroups/word"
	"github.com/stretchr/testify/require"
)

func TestRewriteSingleRule(t *testing.T) {
	tr := rewrite.NewTrie(2)
	tr.AddRule(word.Word{0, 0}, word.Word{0})

	got := tr.Rewrite(word.Word{0, 0, 0, 0})
	require.Equal(t, word.Word{0}, got)
}

func TestRewriteNoMatch(t *testing.T) {
	tr := rewrite.NewTrie(2)
	tr.AddRule(word.Word{0, 0}, word.Word{1})

	got := tr.Rewrite(word.Word{0, 1, 0, 1})
	require.Equal(t, word.Word{0, 1, 0, 1}, got)
}

func TestRewriteCascades(t *testing.T) {
	// aa -> b, bb -> a: "aaaa" -> "bb" -> "a".
	tr := rewrite.NewTrie(2)
	tr.AddRule(word.Word{0, 0}, word.Word{1})
	tr.AddRule(word.Word{1, 1}, word.Word{0})

	got := tr.Rewrite(word.Word{0, 0, 0, 0})
	require.Equal(t, word.Word{0}, got)
}

func TestRewriteOverlappingSuffixMatch(t *testing.T) {
	// Rule "ab" -> "c" must still be found when the match starts after an
	// unrelated leading letter, e.g. scanning "xab".
	tr := rewrite.NewTrie(4) // letters 0=x,1=a,2=b,3=c
	tr.AddRule(word.Word{1, 2}, word.Word{3})

	got := tr.Rewrite(word.Word{0, 1, 2})
	require.Equal(t, word.Word{0, 3}, got)
}

func TestRemoveRuleIsLazy(t *testing.T) {
	tr := rewrite.NewTrie(2)
	idx := tr.AddRule(word.Word{0, 0}, word.Word{1})
	require.Equal(t, 1, tr.NumRules())

	tr.RemoveRule(idx)
	require.Equal(t, 0, tr.NumRules())

	got := tr.Rewrite(word.Word{0, 0})
	require.Equal(t, word.Word{0, 0}, got, "removed rule must no longer apply")

	tr.Compact()
	require.Equal(t, 0, tr.NumRules())
}

func TestActiveRulesOrderPreserved(t *testing.T) {
	tr := rewrite.NewTrie(2)
	tr.AddRule(word.Word{0}, word.Word{1})
	tr.AddRule(word.Word{1, 1}, word.Word{0})

	rules := tr.ActiveRules()
	require.Len(t, rules, 2)
	require.Equal(t, word.Word{0}, rules[0].LHS)
	require.Equal(t, word.Word{1, 1}, rules[1].LHS)
}
