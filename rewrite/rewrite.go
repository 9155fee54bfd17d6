// Package rewrite implements RewriteTrie (spec §3, §4.8): an automaton over
// the left-hand sides of a set of active rewrite rules that reduces a word to
// its normal form, left to right, in amortized O(|w|).
//
// Grounded on felsch.Tree's Aho-Corasick construction (same BFS goTo/fail
// completion), adapted two ways: LHSs are indexed forward rather than
// reversed (rewriting consumes a word front-to-back, unlike Felsch's
// backward consequence search), and the automaton must support incremental
// insertion and lazy deletion of rules as Knuth-Bendix discovers and retires
// them (spec §4.6's completion loop adds a rule nearly every iteration).
// The trie shape itself - map-keyed children, a terminal flag, an explicit
// Remove that patches dead ends - follows the teacher's pack file
// other_examples/5bbcdb77_Zubayear-ryushin (trie.Trie).
package rewrite

import "github.com/katalvlaran/semigroups/word"

const rootState = 0

type node struct {
	children map[word.Letter]int
	fail     int
	// rule is the index into Trie.rules of the relation whose LHS ends here
	// (or, after rebuild, one inherited along the failure link), or -1 if
	// this state is not an accepting state. RemoveRule leaves the index in
	// place and only clears the rule's live flag.
	rule int
}

// Rule is an active rewriting rule lhs -> rhs.
type Rule struct {
	LHS word.Word
	RHS word.Word
}

// Trie is an automaton over a dynamic set of rewrite rules, used to reduce
// words to normal form during Knuth-Bendix completion (spec §4.6);
// knuthbendix.System also answers its own Reduce and Contains queries
// through it.
type Trie struct {
	degree int
	nodes  []node
	rules  []Rule
	// live[i] is false once rules[i] has been lazily removed; the slot is
	// kept (so existing rule indices stay valid) until the next Compact.
	live []bool

	goTo  []int
	dirty bool
}

// NewTrie builds an empty automaton over the given alphabet size.
func NewTrie(degree int) *Trie {
	t := &Trie{degree: degree}
	t.nodes = []node{{children: make(map[word.Letter]int), rule: -1}}
	t.goTo = make([]int, degree)
	return t
}

// AddRule inserts lhs -> rhs as a new active rule and marks the automaton
// dirty; the goTo/fail tables are rebuilt lazily, on the next Rewrite or
// Rebuild call, rather than after every single insertion, since Knuth-Bendix
// adds rules in bursts while reducing one overlap at a time.
func (t *Trie) AddRule(lhs, rhs word.Word) int {
	state := rootState
	for _, a := range lhs {
		next, ok := t.nodes[state].children[a]
		if !ok {
			next = len(t.nodes)
			t.nodes = append(t.nodes, node{children: make(map[word.Letter]int), rule: -1})
			t.nodes[state].children[a] = next
		}
		state = next
	}
	idx := len(t.rules)
	t.rules = append(t.rules, Rule{LHS: lhs.Clone(), RHS: rhs.Clone()})
	t.live = append(t.live, true)
	t.nodes[state].rule = idx
	t.dirty = true
	return idx
}

// RemoveRule lazily retires the rule at idx: Rewrite will no longer apply it,
// but the trie node it occupies is not reclaimed until Compact runs (spec
// §4.8 "lazy: mark and compact on next maintenance pass").
func (t *Trie) RemoveRule(idx int) {
	t.live[idx] = false
	t.dirty = true
}

// NumRules returns the number of live (non-removed) rules.
func (t *Trie) NumRules() int {
	n := 0
	for _, l := range t.live {
		if l {
			n++
		}
	}
	return n
}

// ActiveRules returns every currently-live rule, in insertion order.
func (t *Trie) ActiveRules() []Rule {
	out := make([]Rule, 0, t.NumRules())
	for i, l := range t.live {
		if l {
			out = append(out, t.rules[i])
		}
	}
	return out
}

// Rule returns the rule stored at idx (live or not); used by Knuth-Bendix
// when comparing a newly discovered overlap reduction against an existing
// rule's RHS.
func (t *Trie) Rule(idx int) Rule { return t.rules[idx] }

// rebuild recomputes the complete goTo transition table and fail links via
// the standard Aho-Corasick BFS completion, and propagates each node's
// accepting rule from its failure link when the node itself is not
// accepting - so that, e.g., a rule "ab" is still found as a match while
// scanning a state reached only via "xab"'s trie path. A node whose rule
// has been lazily removed inherits from its failure link exactly like a
// non-accepting node.
func (t *Trie) rebuild() {
	n := len(t.nodes)
	t.goTo = make([]int, n*t.degree)

	queue := make([]int, 0, n)
	for a := 0; a < t.degree; a++ {
		if child, ok := t.nodes[rootState].children[word.Letter(a)]; ok {
			t.goTo[rootState*t.degree+a] = child
			t.nodes[child].fail = rootState
			queue = append(queue, child)
		} else {
			t.goTo[rootState*t.degree+a] = rootState
		}
	}

	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		fu := t.nodes[u].fail
		for a := 0; a < t.degree; a++ {
			if child, ok := t.nodes[u].children[word.Letter(a)]; ok {
				t.goTo[u*t.degree+a] = child
				t.nodes[child].fail = t.goTo[fu*t.degree+a]
				if r := t.nodes[child].rule; r == -1 || !t.live[r] {
					t.nodes[child].rule = t.nodes[t.goTo[fu*t.degree+a]].rule
				}
				queue = append(queue, child)
			} else {
				t.goTo[u*t.degree+a] = t.goTo[fu*t.degree+a]
			}
		}
	}
	t.dirty = false
}

// Rebuild forces the transition table to be recomputed now, rather than
// lazily on the next Rewrite call.
func (t *Trie) Rebuild() {
	t.rebuild()
}

// Rewrite reduces w to its normal form under the active rule set, applying
// the leftmost-innermost match at each step: the output is built letter by
// letter, and whenever appending a letter completes the LHS of some live
// rule, the matched suffix of the output is popped and the rule's RHS
// appended in its place, with the automaton state rewound to whatever it
// would have been had the output always looked like this.
//
// Grounded on the push/pop suffix-state discipline of felsch.Tree, turned
// forward: instead of a caller-driven PushFront/PopFront stack, Rewrite
// drives its own stack of (state-after-this-output-letter) internally, since
// a substitution can retract the output arbitrarily far before replaying the
// RHS back in.
func (t *Trie) Rewrite(w word.Word) word.Word {
	if t.dirty {
		t.rebuild()
	}
	out := make(word.Word, 0, len(w))
	states := make([]int, 0, len(w))
	current := rootState

	push := func(a word.Letter) {
		out = append(out, a)
		current = t.goTo[current*t.degree+int(a)]
		states = append(states, current)
	}

	apply := func() bool {
		idx := t.nodes[current].rule
		if idx == -1 || !t.live[idx] {
			// A lazily-removed rule is never applied; rebuild lets its
			// node inherit a live rule from the failure link instead.
			return false
		}
		lhsLen := len(t.rules[idx].LHS)
		out = out[:len(out)-lhsLen]
		states = states[:len(states)-lhsLen]
		if len(states) == 0 {
			current = rootState
		} else {
			current = states[len(states)-1]
		}
		for _, b := range t.rules[idx].RHS {
			push(b)
		}
		return true
	}

	for _, a := range w {
		push(a)
		for apply() {
		}
	}
	return out
}

// Compact physically drops every lazily-removed rule and rebuilds the trie
// from scratch over the surviving rules, renumbering rule indices to match
// their new position in ActiveRules' order. Callers holding old indices
// (e.g. a knuthbendix.System's pending-pair queue) must not call Compact
// while such indices are still outstanding.
func (t *Trie) Compact() {
	live := t.ActiveRules()
	t.nodes = []node{{children: make(map[word.Letter]int), rule: -1}}
	t.rules = nil
	t.live = nil
	for _, r := range live {
		t.AddRule(r.LHS, r.RHS)
	}
	t.rebuild()
}
