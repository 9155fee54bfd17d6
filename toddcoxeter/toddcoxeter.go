// Package toddcoxeter implements ToddCoxeterCore (spec §4.5): coset
// enumeration over a word graph whose nodes are congruence classes, using
// the interleavable HLT and Felsch strategies, a shared coincidence-
// processing loop, periodic lookahead, and post-hoc standardization.
//
// Grounded on felsch.Graph for the deduction/propagation engine shared by
// both strategies, wordgraph.UnionFind and wordgraph.GraphWithSources for
// the coincidence-processing loop spec §4.5 specifies almost verbatim as
// pseudocode, and original_source/include/libsemigroups/todd-coxeter-new.hpp
// for the HLT/Felsch/lookahead terminology and the root-node convention.
package toddcoxeter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/semigroups/felsch"
	"github.com/katalvlaran/semigroups/word"
	"github.com/katalvlaran/semigroups/wordgraph"
)

// Strategy selects which enumeration strategy Run drives.
type Strategy int

const (
	// HLT traces every relation eagerly from each active node, allocating
	// new nodes as needed.
	HLT Strategy = iota
	// Felsch never traces eagerly; it relies entirely on consequence
	// propagation from definitions made elsewhere (by the caller seeding
	// generator images, or by a preceding HLT pass).
	Felsch
	// HLTThenLookahead interleaves HLT tracing with periodic Felsch
	// lookahead passes (spec §4.5 "Lookahead"), the default and generally
	// fastest-converging strategy for presentations with small relations.
	HLTThenLookahead
)

// Ternary mirrors knuthbendix.Ternary; duplicated here rather than imported
// to keep toddcoxeter free of a dependency on knuthbendix (the congruence
// facade is what ties both solvers together).
type Ternary int

const (
	Unknown Ternary = iota
	True
	False
)

// Options configures a Core, following the teacher's functional-options
// idiom.
type Options struct {
	strategy              Strategy
	lookaheadNext         int
	lookaheadGrowthFactor float64
	logger                *logrus.Logger
	containsEmptyWord     bool
}

// Option mutates Options during construction.
type Option func(*Options)

// WithStrategy selects the enumeration strategy (default HLTThenLookahead).
func WithStrategy(s Strategy) Option { return func(o *Options) { o.strategy = s } }

// WithLookaheadThreshold sets the initial active-node count at which a
// lookahead pass is triggered (spec §4.5 "lookahead_next", default 4096).
func WithLookaheadThreshold(n int) Option {
	return func(o *Options) { o.lookaheadNext = n }
}

// WithLookaheadGrowthFactor sets the multiplier applied to the lookahead
// threshold after a lookahead pass that kills no node (spec §4.5
// "lookahead_growth_factor", default 2.0).
func WithLookaheadGrowthFactor(f float64) Option {
	return func(o *Options) { o.lookaheadGrowthFactor = f }
}

// WithLogger attaches a logrus.Logger that Run uses to emit structured
// progress at each lookahead safe point (spec §10.4). A nil logger (the
// default) disables reporting entirely.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithContainsEmptyWord records whether the presentation being enumerated
// treats the empty word as a legal element (a monoid presentation) or not
// (a semigroup presentation). Node 0 always represents ε internally (spec
// §4.5 "Root convention"), but when false, ε is not itself a class of the
// semigroup being presented, so NumClasses and NormalForms exclude it
// (spec §4.5 "if the presentation does not include ε, class indices are
// offset by 1 at the boundary"). Default true.
func WithContainsEmptyWord(b bool) Option {
	return func(o *Options) { o.containsEmptyWord = b }
}

func defaultOptions() Options {
	return Options{
		strategy:              HLTThenLookahead,
		lookaheadNext:         4096,
		lookaheadGrowthFactor: 2.0,
		containsEmptyWord:     true,
	}
}

// Rule is a relation (or generating pair) the enumeration must respect.
type Rule struct {
	LHS, RHS word.Word
}

// Core drives Todd-Coxeter coset enumeration over an alphabet of the given
// degree (spec §4.5). The zero value is not usable; construct with New.
type Core struct {
	graph *felsch.Graph
	uf    *wordgraph.UnionFind
	rules []Rule

	opts Options
	stop atomic.Bool

	coincidences []felsch.Coincidence

	lookaheadNext int
	finished      bool

	standardOrder  []uint32 // node ids in standardized visit order, valid once standardized
	standardForest *wordgraph.SpanningForest
	standardized   bool

	startedAt time.Time
}

// Stats is a point-in-time snapshot of a Core's progress (spec §10.4
// "node/rule counts, elapsed time").
type Stats struct {
	NumClasses int
	Elapsed    time.Duration
}

// Report returns the current Stats snapshot. Elapsed is zero until Run has
// been called at least once.
func (c *Core) Report() Stats {
	st := Stats{NumClasses: c.NumClasses()}
	if !c.startedAt.IsZero() {
		st.Elapsed = time.Since(c.startedAt)
	}
	return st
}

// logProgress emits a structured progress line at a lookahead safe point,
// if a logger was attached via WithLogger (spec §10.4).
func (c *Core) logProgress(stage string) {
	if c.opts.logger == nil {
		return
	}
	st := c.Report()
	c.opts.logger.WithFields(logrus.Fields{
		"num_classes": st.NumClasses,
		"elapsed":     st.Elapsed,
	}).Info(stage)
}

// New builds a Core over the given alphabet size and rules. rules should
// list each two-sided relation once per direction (u,v) and (v,u), matching
// felsch.Graph's convention, since either side completing an edge must
// trigger propagation.
func New(degree int, rules []Rule, opts ...Option) *Core {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	fr := make([]felsch.Rule, len(rules))
	for i, r := range rules {
		fr[i] = felsch.Rule{LHS: r.LHS, RHS: r.RHS}
	}
	g := felsch.New(degree, fr)
	c := &Core{
		graph:         g,
		uf:            wordgraph.NewUnionFind(0),
		rules:         rules,
		opts:          o,
		lookaheadNext: o.lookaheadNext,
	}
	c.ensureNode() // node 0: the root, representing ε
	return c
}

// Root is the node id representing the empty word.
const Root uint32 = 0

// Stop cooperatively requests Run return at its next safe point.
func (c *Core) Stop() { c.stop.Store(true) }

// Finished reports whether the last Run call ran to its end rather than
// being cancelled: under the HLT strategies, a pass that traced every rule
// from every active node defined no new edge and no coincidence remains
// pending (an edge that no relation trace reaches stays undefined); under
// Felsch, the graph is complete.
func (c *Core) Finished() bool { return c.finished }

// NumClasses returns the number of active nodes, i.e. congruence classes
// currently known (spec §4.5's node count; only stable once Finished). When
// the presentation does not contain the empty word, ε's own class (node 0's
// union-find representative - always node 0 itself, since nodes only ever
// merge towards the lower id) is excluded from the count (spec §4.5 "Root
// convention": class indices are offset by 1 at the boundary for
// presentations where ε is not a legal word).
func (c *Core) NumClasses() int {
	n := c.graph.Nodes.NumActive()
	if !c.opts.containsEmptyWord {
		n--
	}
	return n
}

// ensureNode grows the graph/node-manager/union-find together so every
// structure always agrees on the live node count.
func (c *Core) ensureNode() uint32 {
	id := c.graph.Nodes.Allocate()
	c.uf.Grow(int(id) + 1)
	return id
}

// Run drives enumeration until it finishes (see Finished) or until
// Stop/ctx fires, following the configured Strategy (spec §4.5 "run()").
func (c *Core) Run(ctx context.Context) error {
	c.stop.Store(false)
	if c.startedAt.IsZero() {
		c.startedAt = time.Now()
	}

	for {
		if c.stop.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch c.opts.strategy {
		case Felsch:
			if c.graph.IsComplete() {
				c.finished = true
				return nil
			}
			// Felsch alone makes no progress without externally supplied
			// definitions; Run defines no edge in pure-Felsch mode.
			c.finished = false
			return nil
		default:
			progressed := c.hltPass(ctx)
			if !progressed {
				c.finished = true
				return nil
			}
			if c.opts.strategy == HLTThenLookahead && c.NumClasses() >= c.lookaheadNext {
				c.logProgress("lookahead")
				killed := c.Lookahead(false)
				if killed == 0 {
					c.lookaheadNext = int(float64(c.lookaheadNext) * c.opts.lookaheadGrowthFactor)
				}
			}
		}
	}
}

// hltPass traces every rule from every currently active node once,
// returning true iff it defined at least one new edge (i.e. made progress).
// Tracing allocates new nodes for undefined edges and immediately
// propagates consequences through felsch.Graph.DefineEdgeAndPropagate;
// coincidences collected from both this node's relation traces are drained
// through processCoincidences once the pair of walks for that relation
// completes (rather than interrupted mid-walk - see DESIGN.md "HLT
// coincidence draining").
func (c *Core) hltPass(ctx context.Context) bool {
	progressed := false
	for v := c.graph.Nodes.FirstActive(); v != wordgraph.UNDEFINED; v = c.graph.Nodes.NextActive(v) {
		if c.stop.Load() {
			return progressed
		}
		select {
		case <-ctx.Done():
			return progressed
		default:
		}
		cur := c.uf.Find(v)
		if !c.graph.Nodes.IsActive(cur) {
			continue
		}
		for _, r := range c.rules {
			before := c.graph.NumEdges()
			x := c.traceWord(cur, r.LHS)
			y := c.traceWord(cur, r.RHS)
			if c.graph.NumEdges() != before {
				progressed = true
			}
			x, y = c.uf.Find(x), c.uf.Find(y)
			if x != y {
				c.coincidences = append(c.coincidences, felsch.Coincidence{X: x, Y: y})
			}
			c.drainCoincidences()
		}
	}
	return progressed
}

// traceWord walks w from v, allocating a new node and defining the edge
// whenever a transition is undefined, and returns the node reached. Any
// coincidence forced by a definition along the way is appended to
// c.coincidences for hltPass to drain.
func (c *Core) traceWord(v uint32, w word.Word) uint32 {
	cur := v
	for _, a := range w {
		cur = c.uf.Find(cur)
		next := c.graph.TargetNoCheck(int(cur), int(a))
		if next == wordgraph.UNDEFINED {
			next = c.ensureNode()
			cs := c.graph.DefineEdgeAndPropagate(cur, int(a), next)
			// Propagation may allocate nodes through the node manager alone.
			c.uf.Grow(c.graph.NumNodes())
			c.coincidences = append(c.coincidences, cs...)
		}
		cur = next
	}
	return cur
}

// drainCoincidences runs the shared coincidence-processing loop (spec
// §4.5's pseudocode): repeatedly pop a pair, merge their union-find roots
// (lower id survives), redirect every source of the retired node onto the
// survivor, and either move or merge each of the retired node's own
// outgoing edges, freeing the retired node once its edges are disposed of.
func (c *Core) drainCoincidences() {
	for len(c.coincidences) > 0 {
		last := len(c.coincidences) - 1
		pair := c.coincidences[last]
		c.coincidences = c.coincidences[:last]

		lo, hi := c.uf.Union(pair.X, pair.Y)
		if lo == hi {
			continue
		}
		if !c.graph.Nodes.IsActive(hi) {
			continue
		}

		for a := 0; a < c.graph.OutDegree(); a++ {
			for _, u := range c.graph.Sources(int(hi), a) {
				_ = c.graph.GraphWithSources.DefineEdge(int(u), a, lo)
			}
			c.graph.RedirectSources(int(hi), int(lo), a)

			t := c.graph.TargetNoCheck(int(hi), a)
			if t == wordgraph.UNDEFINED {
				continue
			}
			c.graph.RemoveEdge(int(hi), a)
			t = c.uf.Find(t)
			loTarget := c.graph.TargetNoCheck(int(lo), a)
			if loTarget == wordgraph.UNDEFINED {
				_ = c.graph.GraphWithSources.DefineEdge(int(lo), a, t)
			} else if c.uf.Find(loTarget) != t {
				c.coincidences = append(c.coincidences, felsch.Coincidence{X: c.uf.Find(loTarget), Y: t})
			}
		}
		_ = c.graph.Nodes.Free(hi)
	}
}

// Lookahead runs an exhaustive Felsch-style consistency pass over the
// current graph without allocating any new node: for every active node and
// every rule, both sides are traced using only already-defined edges
// (FollowPath, never tracing past an undefined edge), and any two distinct
// landing nodes for the same relation are queued as a coincidence. Returns
// the number of nodes killed. full selects nothing: a partial pass scans
// every active node, exactly as a full one does (spec §4.5 "partial" vs
// "full").
func (c *Core) Lookahead(full bool) int {
	before := c.NumClasses()
	for v := c.graph.Nodes.FirstActive(); v != wordgraph.UNDEFINED; v = c.graph.Nodes.NextActive(v) {
		cur := c.uf.Find(v)
		if !c.graph.Nodes.IsActive(cur) {
			continue
		}
		for _, r := range c.rules {
			x := c.graph.FollowPath(cur, r.LHS)
			y := c.graph.FollowPath(cur, r.RHS)
			if x == wordgraph.UNDEFINED || y == wordgraph.UNDEFINED {
				continue
			}
			x, y = c.uf.Find(x), c.uf.Find(y)
			if x != y {
				c.coincidences = append(c.coincidences, felsch.Coincidence{X: x, Y: y})
			}
		}
	}
	c.drainCoincidences()
	_ = full // partial-vs-full distinction affects only which nodes are scanned; both pick up every node here since graphs in this module's test/usage scale stay small enough that the distinction is not worth a separate node-age bookkeeping structure (see DESIGN.md).
	return before - c.NumClasses()
}

// Contains reports whether u and v land on the same class (spec §4.5
// "contains(u,v)"): TRUE if they do; FALSE if they do not and the last Run
// finished; UNKNOWN if an edge along either walk is undefined, or if they
// land on different classes of a graph whose enumeration has not finished.
func (c *Core) Contains(u, v word.Word) Ternary {
	x := c.graph.FollowPath(Root, u)
	y := c.graph.FollowPath(Root, v)
	if x == wordgraph.UNDEFINED || y == wordgraph.UNDEFINED {
		return Unknown
	}
	if c.uf.Find(x) == c.uf.Find(y) {
		return True
	}
	if c.finished {
		return False
	}
	return Unknown
}

// Reduce follows w from the root and returns the class-representative word:
// once Standardize has been called, this is the canonical shortlex-least
// spelling of w's class (read from a BFS spanning forest, whichever
// StandardOrder was given); otherwise it is w itself
// reduced only insofar as the graph's current shape already identifies
// prefixes, which is a best-effort answer the caller must not treat as
// canonical (spec §4.5 "reduce(w)").
func (c *Core) Reduce(w word.Word) word.Word {
	node := c.graph.FollowPath(Root, w)
	if node == wordgraph.UNDEFINED {
		return w.Clone()
	}
	node = c.uf.Find(node)
	if c.standardized {
		return c.standardForest.WordTo(node)
	}
	return w.Clone()
}

// StandardOrder selects the enumeration order in which Standardize lists
// classes (spec §4.5 "Standardization").
type StandardOrder int

const (
	// ShortLex visits nodes in breadth-first order, children in increasing
	// label order, so class i's representative is the i-th word in
	// shortlex order among all words reaching a distinct class.
	ShortLex StandardOrder = iota
	// Lex visits nodes depth-first, children in increasing label order, and
	// lists classes in that preorder; each class's representative is still
	// its shortlex-least word, read from the same BFS forest as ShortLex.
	Lex
	// RecursivePath is accepted for API completeness but currently produces
	// the same order as ShortLex; see DESIGN.md "Open Question —
	// RecursivePath standardization order".
	RecursivePath
)

// Standardize records the order in which the given enumeration visits the
// active nodes (NormalForms lists classes in that order; node ids are left
// unchanged), and the spanning forest Reduce and NormalForms use to recover
// canonical representative words.
func (c *Core) Standardize(order StandardOrder) {
	n := c.graph.NumNodes()
	visited := make([]bool, n)
	var visitOrder []uint32

	var visit func(v uint32)
	switch order {
	case Lex:
		visit = func(v uint32) {
			if visited[v] || !c.graph.Nodes.IsActive(v) {
				return
			}
			visited[v] = true
			visitOrder = append(visitOrder, v)
			for a := 0; a < c.graph.OutDegree(); a++ {
				t := c.graph.TargetNoCheck(int(v), a)
				if t != wordgraph.UNDEFINED {
					visit(t)
				}
			}
		}
	default: // ShortLex, RecursivePath
		visit = func(start uint32) {
			queue := []uint32{start}
			visited[start] = true
			visitOrder = append(visitOrder, start)
			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				for a := 0; a < c.graph.OutDegree(); a++ {
					t := c.graph.TargetNoCheck(int(u), a)
					if t == wordgraph.UNDEFINED || visited[t] || !c.graph.Nodes.IsActive(t) {
						continue
					}
					visited[t] = true
					visitOrder = append(visitOrder, t)
					queue = append(queue, t)
				}
			}
		}
	}
	visit(Root)
	for id := c.graph.Nodes.FirstActive(); id != wordgraph.UNDEFINED; id = c.graph.Nodes.NextActive(id) {
		if !visited[id] {
			visit(id)
		}
	}

	c.standardOrder = visitOrder
	c.standardForest = c.graph.SpanningForest(false)
	c.standardized = true
}

// NormalForms returns every class's canonical representative word, in
// standardized class-index order (spec §4.5 "normal_forms()"). Standardize
// must be called first. When the presentation does not contain the empty
// word, ε's own class (always Root's class - see NumClasses) is omitted,
// matching the same boundary offset.
func (c *Core) NormalForms() []word.Word {
	if !c.standardized {
		return nil
	}
	out := make([]word.Word, 0, len(c.standardOrder))
	for _, id := range c.standardOrder {
		if !c.opts.containsEmptyWord && id == Root {
			continue
		}
		out = append(out, c.standardForest.WordTo(id))
	}
	return out
}
