package wordgraph

// GraphWithSources extends Graph with reverse adjacency: for every (v,a)
// pair it threads an intrusive singly-linked list of the nodes u with
// Target(u,a)==v, so that merging two nodes during coincidence processing can
// redirect every incoming edge in amortized O(1) per edge (spec §4.2).
//
// The list is represented with two parallel n*degree arrays (preimHead,
// preimNext) rather than a slice-of-slices, matching the teacher's
// DynamicArray2-style dense storage and spec §9's explicit requirement that
// source lists be snapshot-style intrusive lists, not a higher-level
// iterator abstraction (because the list head may be spliced mid-iteration).
type GraphWithSources struct {
	*Graph
	// preimHead[v*degree+a] is the first source of (v,a), or UNDEFINED.
	preimHead []uint32
	// preimNext[u*degree+a] is the next source after u in (target(u,a), a)'s
	// source list, or UNDEFINED.
	preimNext []uint32
}

// NewWithSources creates a GraphWithSources with n nodes and out-degree d.
func NewWithSources(n, d int) *GraphWithSources {
	g := &GraphWithSources{Graph: New(n, d)}
	g.preimHead = make([]uint32, n*d)
	g.preimNext = make([]uint32, n*d)
	for i := range g.preimHead {
		g.preimHead[i] = UNDEFINED
		g.preimNext[i] = UNDEFINED
	}
	return g
}

func (g *GraphWithSources) growPreimages(newN int) {
	needed := newN * g.degree
	for len(g.preimHead) < needed {
		g.preimHead = append(g.preimHead, UNDEFINED)
	}
	for len(g.preimNext) < needed {
		g.preimNext = append(g.preimNext, UNDEFINED)
	}
}

// AddNodes grows the underlying graph and the reverse-adjacency tables
// together.
func (g *GraphWithSources) AddNodes(k int) int {
	n := g.Graph.AddNodes(k)
	g.growPreimages(n)
	return n
}

// AddToOutDegree grows the out-degree of both the forward and reverse
// adjacency tables together.
func (g *GraphWithSources) AddToOutDegree(k int) {
	g.Graph.AddToOutDegree(k)
	newSize := g.n * g.degree
	newHead := make([]uint32, newSize)
	newNext := make([]uint32, newSize)
	for i := range newHead {
		newHead[i] = UNDEFINED
		newNext[i] = UNDEFINED
	}
	// Degree already changed on g.Graph; rebuild source lists from scratch
	// since the column layout shifted. Correctness over cleverness: this path
	// is only hit when the alphabet itself grows, which is rare relative to
	// node growth.
	g.preimHead = newHead
	g.preimNext = newNext
	for v := 0; v < g.n; v++ {
		for a := 0; a < g.degree; a++ {
			w := g.TargetNoCheck(v, a)
			if w != UNDEFINED {
				g.prependSource(int(w), a, uint32(v))
			}
		}
	}
}

func (g *GraphWithSources) prependSource(v int, a int, u uint32) {
	idx := v*g.degree + a
	g.preimNext[u*g.degree+a] = g.preimHead[idx]
	g.preimHead[idx] = u
}

// unspliceSource removes u from the source list of (v,a). O(sources(v,a)) in
// the worst case; called once per coincidence-redirected edge, so amortized
// cost across a whole enumeration stays linear in the number of definitions.
func (g *GraphWithSources) unspliceSource(v int, a int, u uint32) {
	idx := v*g.degree + a
	head := g.preimHead[idx]
	if head == u {
		g.preimHead[idx] = g.preimNext[u*g.degree+a]
		g.preimNext[u*g.degree+a] = UNDEFINED
		return
	}
	cur := head
	for cur != UNDEFINED {
		next := g.preimNext[cur*g.degree+a]
		if next == u {
			g.preimNext[cur*g.degree+a] = g.preimNext[u*g.degree+a]
			g.preimNext[u*g.degree+a] = UNDEFINED
			return
		}
		cur = next
	}
}

// DefineEdge sets the edge (u,a) to v, maintaining both forward and reverse
// adjacency. If (u,a) was already defined to some other node, that stale
// reverse-adjacency entry is removed first.
func (g *GraphWithSources) DefineEdge(u int, a int, v uint32) error {
	old := g.TargetNoCheck(u, a)
	if old != UNDEFINED && old != v {
		g.unspliceSource(int(old), a, uint32(u))
	}
	if err := g.Graph.SetTarget(u, a, v); err != nil {
		return err
	}
	if old != v {
		g.prependSource(int(v), a, uint32(u))
	}
	return nil
}

// RemoveEdge undefines the edge (u,a), removing u from its old target's
// source list.
func (g *GraphWithSources) RemoveEdge(u int, a int) {
	old := g.TargetNoCheck(u, a)
	if old == UNDEFINED {
		return
	}
	g.unspliceSource(int(old), a, uint32(u))
	g.targets[u*g.degree+a] = UNDEFINED
	g.invalidateCaches()
}

// Sources returns a snapshot slice of every node u with Target(u,a)==v. A
// snapshot, rather than a live iterator, is used deliberately: spec §9 notes
// that the coincidence loop mutates this very list while conceptually
// "iterating" it, so callers must capture the head once and walk a fixed
// chain rather than risk seeing nodes spliced mid-walk twice or not at all.
func (g *GraphWithSources) Sources(v int, a int) []uint32 {
	var out []uint32
	cur := g.preimHead[v*g.degree+a]
	for cur != UNDEFINED {
		out = append(out, cur)
		cur = g.preimNext[cur*g.degree+a]
	}
	return out
}

// RedirectSources moves every source of (oldTarget,a) to point at newTarget
// instead, used by the coincidence loop ("for each source u of (max,a):
// redirect u -> max into u -> min", spec §4.5). Implemented by splicing the
// whole list onto the front of newTarget's list in O(k) for k sources,
// rather than re-walking per element.
func (g *GraphWithSources) RedirectSources(oldTarget, newTarget int, a int) {
	oldIdx := oldTarget*g.degree + a
	head := g.preimHead[oldIdx]
	if head == UNDEFINED {
		return
	}
	cur := head
	for {
		idx := int(cur)*g.degree + a
		g.targets[idx] = uint32(newTarget)
		next := g.preimNext[idx]
		if next == UNDEFINED {
			newIdx := newTarget*g.degree + a
			g.preimNext[idx] = g.preimHead[newIdx]
			g.preimHead[newIdx] = head
			break
		}
		cur = next
	}
	g.preimHead[oldIdx] = UNDEFINED
	g.invalidateCaches()
}
