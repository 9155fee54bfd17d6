// Package felsch implements the Aho-Corasick-style automaton over relation
// left-hand sides (FelschTree, spec §3/§4.4) and the FelschGraph that
// combines it with a WordGraphWithSources and a presentation to provide
// atomic "define edge and propagate consequences" operations with
// contradiction detection (spec §4.6).
//
// Grounded on original_source/include/libsemigroups/felsch-tree.hpp (the
// trie-with-failure-links structure) and the teacher's pack file
// other_examples/8bebb1c4_itgcl-ahocorasick (idiomatic Go Aho-Corasick: a
// flat node array, rune/letter-keyed children, explicit fail links) for how
// to express the same automaton in Go rather than C++ template machinery.
package felsch

import "github.com/katalvlaran/semigroups/word"

const rootState = 0

type treeNode struct {
	children map[word.Letter]int
	fail     int
	matches  []int
}

// Rule is a single defining relation. Tree only ever indexes left-hand
// sides; the right-hand side plays no part in the automaton and is carried
// for Graph, which walks it when the LHS is matched.
type Rule struct {
	LHS word.Word
	RHS word.Word
}

// Tree is the Aho-Corasick-style automaton over the left-hand sides of a
// set of rules, built over each LHS *reversed*: the trie is indexed so
// that walking it letter-by-letter from the root spells out an LHS read
// from its last letter backwards, matching how Felsch propagation tracks
// "the current suffix" of a word under construction (spec's push_front
// prepends a letter to that suffix, i.e. extends it towards the word's
// front).
//
// PushFront/PopFront are always used in a strict LIFO (stack) discipline by
// callers (every push is undone by exactly one matching pop, in reverse
// order), so rather than reconstruct a "previous state" from a parent
// pointer over a completed (failure-augmented) transition table - which
// would not invert cleanly, since several states can share a completed
// target for the same letter - Tree simply remembers the state it was in
// before each push on an explicit stack.
type Tree struct {
	nodes  []treeNode
	goTo   []int // flattened numNodes*degree complete transition table
	degree int

	current int
	stack   []int
}

// NewTree builds a Tree over out-degree d for the given rules' left-hand
// sides.
func NewTree(d int, rules []Rule) *Tree {
	t := &Tree{degree: d}
	t.nodes = []treeNode{{children: make(map[word.Letter]int)}}
	for idx, r := range rules {
		t.insert(r.LHS, idx)
	}
	t.complete()
	t.Reset()
	return t
}

func (t *Tree) insert(lhs word.Word, idx int) {
	state := rootState
	for i := len(lhs) - 1; i >= 0; i-- {
		a := lhs[i]
		next, ok := t.nodes[state].children[a]
		if !ok {
			next = len(t.nodes)
			t.nodes = append(t.nodes, treeNode{children: make(map[word.Letter]int)})
			t.nodes[state].children[a] = next
		}
		state = next
	}
	t.nodes[state].matches = append(t.nodes[state].matches, idx)
}

// complete builds the total goTo[state][letter] transition table and the
// failure links, by the standard Aho-Corasick BFS completion: a direct trie
// edge is used where present; otherwise the transition is inherited from
// the failure-linked state, recursively resolved because the BFS visits
// states in order of increasing depth.
func (t *Tree) complete() {
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
				t.nodes[child].matches = append(t.nodes[child].matches, t.nodes[t.goTo[fu*t.degree+a]].matches...)
				queue = append(queue, child)
			} else {
				t.goTo[u*t.degree+a] = t.goTo[fu*t.degree+a]
			}
		}
	}
}

// Reset returns the automaton to its initial (root) state with an empty
// suffix stack.
func (t *Tree) Reset() {
	t.current = rootState
	t.stack = t.stack[:0]
}

// PushBack resets the current suffix to the single letter a ("push_back(a):
// reset to the state reached by the single letter a from the root").
func (t *Tree) PushBack(a word.Letter) {
	t.stack = t.stack[:0]
	t.current = t.goTo[rootState*t.degree+int(a)]
}

// PushFront prepends a to the current suffix, returning true iff a proper
// non-root state is reached.
func (t *Tree) PushFront(a word.Letter) bool {
	t.stack = append(t.stack, t.current)
	t.current = t.goTo[t.current*t.degree+int(a)]
	return t.current != rootState
}

// PopFront undoes the most recent PushFront.
func (t *Tree) PopFront() {
	last := len(t.stack) - 1
	t.current = t.stack[last]
	t.stack = t.stack[:last]
}

// Matches returns the relation indices whose LHS ends exactly at the
// current state, i.e. the current suffix has that LHS (read backwards) as
// a prefix.
func (t *Tree) Matches() []int {
	return t.nodes[t.current].matches
}

// Length returns the number of letters pushed onto the current suffix.
func (t *Tree) Length() int { return len(t.stack) }

// NumNodes returns the number of trie states (including the root).
func (t *Tree) NumNodes() int { return len(t.nodes) }
