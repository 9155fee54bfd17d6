package wordgraph

import (
	"errors"

	"github.com/bits-and-blooms/bitset"
)

// ErrNodeNotActive is returned by Free when asked to free a node that is not
// currently active.
var ErrNodeNotActive = errors.New("wordgraph: node is not active")

const nilNode = ^uint32(0)

// NodeManager is a free-list/active-list over node indices (spec §3, §4.3).
// Two logical doubly-linked lists are threaded through parallel next/prev
// arrays so that allocation, deallocation, and in-order active iteration are
// all O(1), and so the allocation sequence is fully deterministic -
// important for reproducibility of coset enumeration across repeated runs.
//
// Membership itself (IsActive) is answered by a bitset.BitSet rather than a
// []bool: one word of the set covers 64 node ids, which keeps the hot
// membership test (consulted on every coincidence and lookahead step) cache
// dense the way gaissmai/bart's node tables use bits-and-blooms/bitset for
// child-slot occupancy.
// Grower is the subset of Graph's surface NodeManager needs to add capacity.
// Both *Graph and *GraphWithSources satisfy it; passing a *GraphWithSources
// here (rather than its embedded *Graph) ensures growth also extends the
// reverse-adjacency tables, since GraphWithSources.AddNodes shadows Graph's.
type Grower interface {
	AddNodes(k int) int
}

type NodeManager struct {
	graph Grower

	next, prev []uint32
	firstFree  uint32
	lastFree   uint32
	firstAct   uint32
	lastAct    uint32
	active     *bitset.BitSet
}

// NewNodeManager creates a manager with no active or free nodes, growing g
// on demand as Allocate is called.
func NewNodeManager(g Grower) *NodeManager {
	return &NodeManager{
		graph:     g,
		firstFree: nilNode,
		lastFree:  nilNode,
		firstAct:  nilNode,
		lastAct:   nilNode,
		active:    bitset.New(0),
	}
}

func (m *NodeManager) grow(by int) {
	old := len(m.next)
	m.graph.AddNodes(by)
	for i := 0; i < old+by; i++ {
		if i >= len(m.next) {
			m.next = append(m.next, nilNode)
			m.prev = append(m.prev, nilNode)
		}
	}
	for i := old; i < old+by; i++ {
		m.pushFree(uint32(i))
	}
}

func (m *NodeManager) pushFree(id uint32) {
	m.prev[id] = m.lastFree
	m.next[id] = nilNode
	if m.lastFree != nilNode {
		m.next[m.lastFree] = id
	} else {
		m.firstFree = id
	}
	m.lastFree = id
}

func (m *NodeManager) popFree() uint32 {
	id := m.firstFree
	m.firstFree = m.next[id]
	if m.firstFree != nilNode {
		m.prev[m.firstFree] = nilNode
	} else {
		m.lastFree = nilNode
	}
	m.next[id] = nilNode
	m.prev[id] = nilNode
	return id
}

func (m *NodeManager) pushActive(id uint32) {
	m.prev[id] = m.lastAct
	m.next[id] = nilNode
	if m.lastAct != nilNode {
		m.next[m.lastAct] = id
	} else {
		m.firstAct = id
	}
	m.lastAct = id
	m.active.Set(uint(id))
}

func (m *NodeManager) unspliceActive(id uint32) {
	p, n := m.prev[id], m.next[id]
	if p != nilNode {
		m.next[p] = n
	} else {
		m.firstAct = n
	}
	if n != nilNode {
		m.prev[n] = p
	} else {
		m.lastAct = p
	}
	m.next[id] = nilNode
	m.prev[id] = nilNode
	m.active.Clear(uint(id))
}

// Allocate returns a node id, reusing a freed id if one is available, else
// growing the underlying graph by a chunk.
func (m *NodeManager) Allocate() uint32 {
	if m.firstFree == nilNode {
		m.grow(growthChunk(len(m.next)))
	}
	id := m.popFree()
	m.pushActive(id)
	return id
}

func growthChunk(current int) int {
	if current < 64 {
		return 64
	}
	return current / 2
}

// Free returns id to the free list. Precondition: id is active.
func (m *NodeManager) Free(id uint32) error {
	if !m.active.Test(uint(id)) {
		return ErrNodeNotActive
	}
	m.unspliceActive(id)
	m.pushFree(id)
	return nil
}

// IsActive reports whether id is currently allocated (O(1)).
func (m *NodeManager) IsActive(id uint32) bool {
	return m.active.Test(uint(id))
}

// FirstActive returns the first node in active-iteration order, or
// UNDEFINED if none are active.
func (m *NodeManager) FirstActive() uint32 {
	if m.firstAct == nilNode {
		return UNDEFINED
	}
	return m.firstAct
}

// NextActive returns the active node following id in iteration order, or
// UNDEFINED at the end.
func (m *NodeManager) NextActive(id uint32) uint32 {
	n := m.next[id]
	if n == nilNode {
		return UNDEFINED
	}
	return n
}

// FirstFree returns the first freed node id, or UNDEFINED if none are free.
func (m *NodeManager) FirstFree() uint32 {
	if m.firstFree == nilNode {
		return UNDEFINED
	}
	return m.firstFree
}

// NumActive returns the number of currently active nodes.
func (m *NodeManager) NumActive() int {
	count := 0
	for id := m.FirstActive(); id != UNDEFINED; id = m.NextActive(id) {
		count++
	}
	return count
}
