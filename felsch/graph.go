package felsch

import (
	"github.com/katalvlaran/semigroups/word"
	"github.com/katalvlaran/semigroups/wordgraph"
)

// Coincidence is a pair of node ids discovered, during consequence
// propagation, to necessarily represent the same congruence class.
type Coincidence struct {
	X, Y uint32
}

// Graph combines a WordGraphWithSources, a Tree built from a presentation's
// rules, and the NodeManager that owns the graph's nodes, exposing "define
// edge and propagate consequences" (spec §4.6) as a single atomic
// operation with contradiction detection expressed as discovered
// Coincidences rather than an error: every inconsistency Felsch propagation
// can discover is resolvable by merging two nodes, never an unrecoverable
// state, so there is no separate "contradiction" signal.
//
// Grounded on original_source/include/libsemigroups/felsch-digraph.hpp's
// FelschDigraph (process_definitions/process_definitions_dfs_v1), adapted
// from its node+stack template machinery to an explicit worklist and an
// explicit backward-frontier slice, matching the DFS-over-reverse-adjacency
// technique spec §4.5 describes for HLT/Felsch deduction.
type Graph struct {
	*wordgraph.GraphWithSources
	Nodes *wordgraph.NodeManager

	tree     *Tree
	ruleLens []int
	rules    []Rule

	defStack []definition
	frontier []uint32
}

type definition struct {
	node  uint32
	label int
}

// New builds a Felsch graph of out-degree d whose deduction tree indexes
// the given rules' left-hand sides. rules should include both directions of
// every two-sided relation (i.e. (u,v) and (v,u)) so that propagation is
// triggered regardless of which side of a relation a newly defined edge
// completes; a one-sided congruence passes only (u,v) for each relation plus
// generating pair.
func New(d int, rules []Rule) *Graph {
	g := wordgraph.NewWithSources(0, d)
	fg := &Graph{
		GraphWithSources: g,
		tree:             NewTree(d, rules),
		rules:            rules,
	}
	fg.Nodes = wordgraph.NewNodeManager(g)
	fg.ruleLens = make([]int, len(rules))
	maxLen := 0
	for i, r := range rules {
		fg.ruleLens[i] = len(r.LHS)
		if len(r.LHS) > maxLen {
			maxLen = len(r.LHS)
		}
	}
	fg.frontier = make([]uint32, maxLen+1)
	return fg
}

// DefineEdgeAndPropagate sets the edge (c,a) to d and propagates every
// consequence reachable through the relation tree, returning any
// coincidences forced as a result. Also used as the sole entry point for
// HLT tracing when it discovers a new edge, so that both strategies share
// one consequence engine (spec §4.5 "Both strategies share the
// coincidence-processing loop").
//
// If (c,a) is already defined to some node other than d, the edge is left
// untouched and (existing,d) is reported as a forced coincidence instead of
// being silently overwritten: both claims about where (c,a) leads can only
// be reconciled by merging the two target nodes, never by one replacing the
// other outright.
func (fg *Graph) DefineEdgeAndPropagate(c uint32, a int, d uint32) []Coincidence {
	if existing := fg.TargetNoCheck(int(c), a); existing != wordgraph.UNDEFINED {
		if existing == d {
			return nil
		}
		return []Coincidence{{X: min32(existing, d), Y: max32(existing, d)}}
	}
	if err := fg.GraphWithSources.DefineEdge(int(c), a, d); err != nil {
		return nil
	}
	fg.defStack = append(fg.defStack, definition{node: c, label: a})
	return fg.ProcessDefinitions()
}

// ProcessDefinitions drains the pending definition stack, returning every
// coincidence discovered along the way. New definitions made while
// processing a consequence are themselves pushed onto the stack and
// processed before ProcessDefinitions returns, so the result reflects the
// full transitive closure of forced consequences.
func (fg *Graph) ProcessDefinitions() []Coincidence {
	var out []Coincidence
	for len(fg.defStack) > 0 {
		last := len(fg.defStack) - 1
		d := fg.defStack[last]
		fg.defStack = fg.defStack[:last]
		out = append(out, fg.processOne(d)...)
	}
	return out
}

// PushDefinition enqueues (node,label) for propagation without itself
// defining an edge; used when the caller (e.g. ToddCoxeterCore's HLT
// strategy) has already called DefineEdge directly via the embedded
// GraphWithSources and only needs consequence propagation.
func (fg *Graph) PushDefinition(node uint32, label int) {
	fg.defStack = append(fg.defStack, definition{node: node, label: label})
}

func (fg *Graph) processOne(d definition) []Coincidence {
	var out []Coincidence
	target := fg.TargetNoCheck(int(d.node), d.label)
	if target == wordgraph.UNDEFINED {
		return nil
	}

	fg.tree.Reset()
	fg.frontier[0] = d.node
	fg.tree.PushBack(word.Letter(d.label))
	out = append(out, fg.applyMatches(target)...)
	out = append(out, fg.dfs(d.node, 0, target)...)
	return out
}

// dfs extends the backward match walk one letter at a time by following
// reverse adjacency from frontier[depth], trying every label with at least
// one source.
func (fg *Graph) dfs(node uint32, depth int, end uint32) []Coincidence {
	if depth+1 >= len(fg.frontier) {
		return nil
	}
	var out []Coincidence
	for b := 0; b < fg.OutDegree(); b++ {
		for _, s := range fg.Sources(int(node), b) {
			if !fg.tree.PushFront(word.Letter(b)) {
				fg.tree.PopFront()
				continue
			}
			fg.frontier[depth+1] = s
			out = append(out, fg.applyMatches(end)...)
			out = append(out, fg.dfs(s, depth+1, end)...)
			fg.tree.PopFront()
		}
	}
	return out
}

// applyMatches processes every relation whose LHS the current tree state
// reports complete, walking that relation's RHS from the corresponding
// frontier node and comparing the result against end (the node the LHS walk
// is already known to reach).
func (fg *Graph) applyMatches(end uint32) []Coincidence {
	var out []Coincidence
	for _, idx := range fg.tree.Matches() {
		lhsLen := fg.ruleLens[idx]
		if lhsLen == 0 {
			// An empty LHS has no last letter for a new edge to complete.
			continue
		}
		start := fg.frontier[lhsLen-1]
		if c, ok := fg.applyRule(start, fg.rules[idx].RHS, end); ok {
			out = append(out, c)
		}
	}
	return out
}

// applyRule walks rhs from start, allocating new nodes via fg.Nodes and
// pushing fresh definitions for further propagation whenever an edge along
// the way is undefined; if the walk completes at a node other than end, the
// pair (end, that node) is a forced coincidence.
func (fg *Graph) applyRule(start uint32, rhs word.Word, end uint32) (Coincidence, bool) {
	cur := start
	for i, a := range rhs {
		next := fg.TargetNoCheck(int(cur), int(a))
		if next == wordgraph.UNDEFINED {
			if i == len(rhs)-1 {
				next = end
			} else {
				next = fg.Nodes.Allocate()
			}
			_ = fg.GraphWithSources.DefineEdge(int(cur), int(a), next)
			fg.defStack = append(fg.defStack, definition{node: cur, label: int(a)})
		}
		cur = next
	}
	if cur != end {
		return Coincidence{X: min32(cur, end), Y: max32(cur, end)}, true
	}
	return Coincidence{}, false
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// AddNodes grows the graph, node manager bookkeeping aside (NodeManager
// owns growth for nodes it allocates; this is exposed for callers that need
// nodes outside that bookkeeping - toddcoxeter.Core does not use it and
// allocates every node, the root included, through NodeManager).
func (fg *Graph) AddNodes(k int) int {
	return fg.GraphWithSources.AddNodes(k)
}
