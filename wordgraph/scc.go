package wordgraph

import "sort"

// gabow implements Gabow's path-based strongly-connected-components
// algorithm (spec §4.1 "scc() — Gabow's algorithm"), O(n*degree). Results are
// cached on the Graph and invalidated by any mutation (AddNodes,
// AddToOutDegree, SetTarget), mirroring the teacher's cached-view
// invalidation pattern (see DESIGN.md).
func (g *Graph) gabow() {
	if g.sccValid {
		return
	}
	n := g.n
	preorder := make([]int, n)
	for i := range preorder {
		preorder[i] = -1
	}
	id := make([]int, n)
	for i := range id {
		id[i] = -1
	}
	var sStack, pStack []uint32
	counter := 0
	comps := make([][]uint32, 0)

	var visit func(v uint32)
	visit = func(v uint32) {
		preorder[v] = counter
		counter++
		sStack = append(sStack, v)
		pStack = append(pStack, v)

		for a := 0; a < g.degree; a++ {
			w := g.TargetNoCheck(int(v), a)
			if w == UNDEFINED {
				continue
			}
			if preorder[w] == -1 {
				visit(w)
			} else if id[w] == -1 {
				for len(pStack) > 0 && preorder[pStack[len(pStack)-1]] > preorder[w] {
					pStack = pStack[:len(pStack)-1]
				}
			}
		}

		if len(pStack) > 0 && pStack[len(pStack)-1] == v {
			pStack = pStack[:len(pStack)-1]
			comp := make([]uint32, 0)
			for {
				top := sStack[len(sStack)-1]
				sStack = sStack[:len(sStack)-1]
				id[top] = len(comps)
				comp = append(comp, top)
				if top == v {
					break
				}
			}
			comps = append(comps, comp)
		}
	}

	for v := 0; v < n; v++ {
		if preorder[v] == -1 {
			visit(uint32(v))
		}
	}

	roots := make([]uint32, len(comps))
	for i, comp := range comps {
		min := comp[0]
		for _, x := range comp {
			if x < min {
				min = x
			}
		}
		roots[i] = min
	}

	g.sccID = id
	g.sccComps = comps
	g.sccRoots = roots
	g.sccValid = true
}

// SCCID returns the strongly-connected-component index of node v. Component
// indices are not ordered in any particular way relative to node ids.
func (g *Graph) SCCID(v uint32) int {
	g.gabow()
	return g.sccID[v]
}

// NumSCC returns the number of strongly connected components.
func (g *Graph) NumSCC() int {
	g.gabow()
	return len(g.sccComps)
}

// SCCRoots returns, for each component index, the minimum-id node in that
// component (used as the root of the component's spanning tree).
func (g *Graph) SCCRoots() []uint32 {
	g.gabow()
	out := make([]uint32, len(g.sccRoots))
	copy(out, g.sccRoots)
	return out
}

// SCCNodes returns the node ids belonging to the component with the given
// index, in the order Gabow's algorithm discovered them.
func (g *Graph) SCCNodes(component int) []uint32 {
	g.gabow()
	out := make([]uint32, len(g.sccComps[component]))
	copy(out, g.sccComps[component])
	return out
}

// SpanningForest is a BFS forest whose trees are grown from the strongly
// connected components' minimum-id nodes, taken in increasing id order; a
// root already reached by an earlier tree starts no tree of its own, and a
// tree may cross component boundaries. Edges are oriented away from the root
// (reverse=false, used by Todd-Coxeter's Reduce/NormalForms: "spell a word
// from the root to v") or towards the root (reverse=true, using reverse
// adjacency). The result is a parent map: for each non-root node, the
// node's parent in its tree and the label of the edge between them.
// UNDEFINED marks a root.
//
// Grounded on digraph.hpp's spanning_tree/reverse_spanning_tree pair used by
// Todd-Coxeter's standardization and normal-form recovery.
type SpanningForest struct {
	Parent []uint32
	Label  []int
}

// SpanningForest builds a canonical forest used to recover a shortest
// representative word for each node: Parent[v]/Label[v] give the edge
// between Parent[v] and v (labelled Label[v]) used to first reach v in the
// forest. reverse=true walks preimages (g.Sources) instead of images, so
// WordTo instead spells a word read backwards from v to its root; only
// GraphWithSources tracks the preimages this needs.
func (g *GraphWithSources) SpanningForest(reverse bool) *SpanningForest {
	n := g.n
	parent := make([]uint32, n)
	label := make([]int, n)
	visited := make([]bool, n)
	for i := range parent {
		parent[i] = UNDEFINED
		label[i] = -1
	}

	roots := g.SCCRoots()
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	for _, root := range roots {
		if visited[root] {
			continue
		}
		queue := []uint32{root}
		visited[root] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if reverse {
				for a := 0; a < g.degree; a++ {
					for _, w := range g.Sources(int(v), a) {
						if visited[w] {
							continue
						}
						visited[w] = true
						parent[w] = v
						label[w] = a
						queue = append(queue, w)
					}
				}
				continue
			}
			for a := 0; a < g.degree; a++ {
				w := g.TargetNoCheck(int(v), a)
				if w == UNDEFINED || visited[w] {
					continue
				}
				visited[w] = true
				parent[w] = v
				label[w] = a
				queue = append(queue, w)
			}
		}
	}
	return &SpanningForest{Parent: parent, Label: label}
}

// WordTo returns the shortest word (by the forest's BFS order, which for a
// tree built breadth-first is a shortest word in the generators) spelling a
// path from the forest's root to node v. Root nodes return the empty word.
func (f *SpanningForest) WordTo(v uint32) []uint32 {
	var rev []uint32
	for f.Parent[v] != UNDEFINED {
		rev = append(rev, uint32(f.Label[v]))
		v = f.Parent[v]
	}
	out := make([]uint32, len(rev))
	for i, a := range rev {
		out[len(rev)-1-i] = a
	}
	return out
}
