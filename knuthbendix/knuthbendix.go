// Package knuthbendix implements KnuthBendixCore (spec §4.6): Knuth-Bendix
// completion of a finitely presented semigroup/monoid into a confluent,
// length-reducing string rewriting system, plus the Gilman graph of normal
// forms that system accepts.
//
// Grounded on original_source/include/libsemigroups/knuth-bendix-new.hpp for
// the overlap-measure policies and the pending/active rule split, and on
// this module's own rewrite.Trie for the rewriting engine and
// wordgraph.Graph for the Gilman graph. Confluence is checked by the
// trivial, provably-correct "pending queue empty" test rather than the
// original's paired-iterator incremental check, since insertActive already
// eagerly queues every overlap a newly active rule can participate in (see
// DESIGN.md "KnuthBendix confluence check"). The teacher's functional-
// options config style and context-driven cancellation idiom carry over
// into this package (see DESIGN.md for the teacher files they're grounded
// on), as does github.com/sirupsen/logrus for optional structured progress
// reporting (see DESIGN.md "Logging").
package knuthbendix

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/semigroups/rewrite"
	"github.com/katalvlaran/semigroups/word"
	"github.com/katalvlaran/semigroups/wordgraph"
)

// OverlapPolicy selects how the overlap length d(AB,BC) of two active rules
// is measured when ordering pending overlaps (spec §4.6 "Overlap policy").
type OverlapPolicy int

const (
	// ABC measures |A|+|B|+|C|: the full span of both left-hand sides.
	ABC OverlapPolicy = iota
	// ABBC measures |AB|+|BC|: the sum of both left-hand side lengths.
	ABBC
	// MaxABBC measures max(|AB|,|BC|).
	MaxABBC
)

// Ternary mirrors the TRUE/FALSE/UNKNOWN result spec §4.5/§4.6 specifies for
// contains, since a partially-run system cannot always decide equality.
type Ternary int

const (
	Unknown Ternary = iota
	True
	False
)

// ErrIncompatibleOrder is returned by Run if a rule's two sides compare
// equal under the configured reduction order, so neither side can be
// oriented as strictly greater (spec §4.6 "Failure semantics").
var ErrIncompatibleOrder = errors.New("knuthbendix: reduction order does not orient every rule")

// Options configures a System, following the teacher's functional-options
// idiom (see core.WithX helpers).
type Options struct {
	overlapPolicy OverlapPolicy
	maxOverlap    int
	maxRules      int
	logger        *logrus.Logger
}

// Option mutates an Options during construction.
type Option func(*Options)

// WithOverlapPolicy sets how overlap length is measured (default ABC).
func WithOverlapPolicy(p OverlapPolicy) Option {
	return func(o *Options) { o.overlapPolicy = p }
}

// WithMaxOverlap bounds the overlap length considered (0 means unbounded, the
// default). Once an overlap longer than n has been skipped, Run stops when
// the pending queue drains without reporting Finished.
func WithMaxOverlap(n int) Option {
	return func(o *Options) { o.maxOverlap = n }
}

// WithMaxRules bounds the number of active rules Run will accumulate before
// stopping even if not yet confluent (0 means unbounded, the default).
func WithMaxRules(n int) Option {
	return func(o *Options) { o.maxRules = n }
}

// WithLogger attaches a logrus.Logger that Run uses to emit structured
// progress at each confluence-check safe point (spec §10.4). A nil logger
// (the default) disables reporting entirely.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.logger = l }
}

func defaultOptions() Options {
	return Options{overlapPolicy: ABC}
}

// rule is an active or pending oriented rule lhs -> rhs, lhs > rhs under the
// configured order. trieIdx indexes the corresponding node in the rewrite
// trie once the rule is active, or -1 while only pending.
type rule struct {
	lhs, rhs word.Word
	trieIdx  int
}

// System drives Knuth-Bendix completion over a presentation (spec §4.6).
// The zero value is not usable; construct with New.
type System struct {
	alphabet int
	less     func(a, b word.Word) bool // true iff a < b under the reduction order

	trie *rewrite.Trie

	active  []rule
	pending []rule

	opts Options

	stop atomic.Bool

	confluent      bool
	confluentKnown bool
	// overlapsSkipped is set once WithMaxOverlap has caused some overlap to
	// go unchecked, after which an empty pending queue proves nothing.
	overlapsSkipped bool

	gilman      *wordgraph.Graph
	gilmanValid bool

	startedAt time.Time
}

// Stats is a point-in-time snapshot of a System's progress (spec §10.4
// "node/rule counts, elapsed time").
type Stats struct {
	ActiveRules  int
	PendingRules int
	Elapsed      time.Duration
}

// Report returns the current Stats snapshot. Elapsed is zero until Run has
// been called at least once.
func (s *System) Report() Stats {
	st := Stats{ActiveRules: len(s.active), PendingRules: len(s.pending)}
	if !s.startedAt.IsZero() {
		st.Elapsed = time.Since(s.startedAt)
	}
	return st
}

// logProgress emits a structured progress line at a confluence-check safe
// point, if a logger was attached via WithLogger (spec §10.4).
func (s *System) logProgress(stage string) {
	if s.opts.logger == nil {
		return
	}
	st := s.Report()
	s.opts.logger.WithFields(logrus.Fields{
		"active_rules":  st.ActiveRules,
		"pending_rules": st.PendingRules,
		"elapsed":       st.Elapsed,
	}).Info(stage)
}

// ShortLexOrder is the default reduction order: shorter words are smaller,
// ties broken lexicographically by letter value (word.Word.Compare).
func ShortLexOrder(a, b word.Word) bool { return a.Compare(b) < 0 }

// New builds a System over the given alphabet size and reduction order
// (typically ShortLexOrder), with no rules yet.
func New(alphabetSize int, less func(a, b word.Word) bool, opts ...Option) *System {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &System{
		alphabet: alphabetSize,
		less:     less,
		trie:     rewrite.NewTrie(alphabetSize),
		opts:     o,
	}
}

// AddRule orients (u,v) under the system's reduction order and queues it as
// pending. Returns ErrIncompatibleOrder if the order cannot relate u and v
// at all (neither u<v nor v<u holds, and u != v), since then neither side
// can be chosen as the one that reduces to the other.
func (s *System) AddRule(u, v word.Word) error {
	if u.Equal(v) {
		return nil
	}
	lhs, rhs, ok := orient(s.less, u, v)
	if !ok {
		return ErrIncompatibleOrder
	}
	s.pending = append(s.pending, rule{lhs: lhs, rhs: rhs, trieIdx: -1})
	s.confluentKnown = false
	s.gilmanValid = false
	return nil
}

// orient picks (lhs,rhs) = (max,min) of u,v under less; ok is false if
// neither u<v nor v<u holds (a non-total order cannot orient this pair).
func orient(less func(a, b word.Word) bool, u, v word.Word) (lhs, rhs word.Word, ok bool) {
	switch {
	case less(u, v):
		return v, u, true
	case less(v, u):
		return u, v, true
	default:
		return nil, nil, false
	}
}

// Stop cooperatively requests that a running Run return at its next safe
// point (spec §5 "Suspension points"/"Cancellation semantics").
func (s *System) Stop() { s.stop.Store(true) }

// StopRequested reports whether Stop has been called since the last Run.
func (s *System) StopRequested() bool { return s.stop.Load() }

// Finished reports whether the system is known confluent (i.e. Run
// completed, rather than being cancelled or budget-exhausted).
func (s *System) Finished() bool { return s.confluentKnown && s.confluent }

// ActiveRules returns the current set of active rules in insertion order
// (spec §4.6 "active_rules()").
func (s *System) ActiveRules() [][2]word.Word {
	out := make([][2]word.Word, len(s.active))
	for i, r := range s.active {
		out[i] = [2]word.Word{r.lhs.Clone(), r.rhs.Clone()}
	}
	return out
}

// Run drives completion to confluence, to cancellation (ctx.Done or Stop),
// or to whatever budget (MaxOverlap/MaxRules) was configured, reducing one
// pending rule per iteration (spec §4.6 "Main loop").
func (s *System) Run(ctx context.Context) error {
	s.stop.Store(false)
	if s.startedAt.IsZero() {
		s.startedAt = time.Now()
	}
	for {
		if s.stop.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if s.checkConfluent() {
			s.confluent = !s.overlapsSkipped
			s.confluentKnown = true
			if s.confluent {
				s.logProgress("confluent")
			} else {
				s.logProgress("overlap budget exhausted")
			}
			return nil
		}
		s.logProgress("checking confluence")

		r := s.pending[0]
		s.pending = s.pending[1:]

		red := s.reduceWord(r.lhs)
		rhsRed := s.reduceWord(r.rhs)
		if red.Equal(rhsRed) {
			continue
		}
		lhs, rhs, ok := orient(s.less, red, rhsRed)
		if !ok {
			return ErrIncompatibleOrder
		}
		s.insertActive(lhs, rhs)
		s.confluentKnown = false

		if s.opts.maxRules > 0 && len(s.active) >= s.opts.maxRules {
			return nil
		}
	}
}

// reduceWord returns w's normal form under the currently active rules.
func (s *System) reduceWord(w word.Word) word.Word {
	return s.trie.Rewrite(w)
}

// insertActive adds (lhs,rhs) to the active set, indexes lhs in the
// rewrite trie, deactivates any existing active rule whose own LHS becomes
// reducible by this new rule (spec §3 "Rule ... deactivated when it becomes
// reducible by a newer rule"), re-reduces every surviving rule's RHS through
// the now-larger trie so RHSs stay fully irreducible, and queues every new
// overlap between the new rule and each surviving active rule (spec §4.6
// step 2 "for every pair of active rules whose LHSs overlap..."). Because
// this runs for every newly active rule against every rule still active
// (both as AB and as BC, plus its self-overlap), no pair of active rules is
// ever left unchecked: confluence holds exactly when the pending queue
// drains to empty, so checkConfluent below needs no separate pairwise
// rescan - the two-iterator optimisation spec §4.6 describes is subsumed by
// checking eagerly at insertion time.
func (s *System) insertActive(lhs, rhs word.Word) {
	idx := s.trie.AddRule(lhs, rhs)
	newRule := rule{lhs: lhs, rhs: rhs, trieIdx: idx}

	survivors := s.active[:0]
	for _, r := range s.active {
		if containsSubword(r.lhs, lhs) {
			// r's LHS now contains the new rule's LHS as a substring, so r
			// itself is reducible: retire it from the trie and push its
			// original pair back onto pending for re-derivation against the
			// now-larger active set.
			s.trie.RemoveRule(r.trieIdx)
			s.pending = append(s.pending, rule{lhs: r.lhs, rhs: r.rhs, trieIdx: -1})
			continue
		}
		survivors = append(survivors, r)
	}
	for i := range survivors {
		survivors[i].rhs = s.trie.Rewrite(survivors[i].rhs)
	}

	for i := range survivors {
		s.queueOverlaps(survivors[i], newRule)
		s.queueOverlaps(newRule, survivors[i])
	}
	s.queueOverlaps(newRule, newRule)

	s.active = append(survivors, newRule)
	s.gilmanValid = false
}

// containsSubword reports whether needle occurs as a contiguous subword of
// haystack.
func containsSubword(haystack, needle word.Word) bool {
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i : i+len(needle)].Equal(needle) {
			return true
		}
	}
	return false
}

// queueOverlaps finds every way AB (ab.lhs) and BC (bc.lhs) overlap - a
// proper non-empty suffix of ab.lhs equal to a proper non-empty prefix of
// bc.lhs - and for each, reduces the overlap word ABC from both sides,
// pushing a new pending rule if the reductions differ (spec §4.6).
func (s *System) queueOverlaps(ab, bc rule) {
	maxK := len(ab.lhs)
	if len(bc.lhs) < maxK {
		maxK = len(bc.lhs)
	}
	for k := 1; k < maxK; k++ {
		if !suffixEqualsPrefix(ab.lhs, bc.lhs, k) {
			continue
		}
		d := s.overlapLength(ab.lhs, bc.lhs, k)
		if s.opts.maxOverlap > 0 && d > s.opts.maxOverlap {
			s.overlapsSkipped = true
			continue
		}
		overlap := concatOverlap(ab.lhs, bc.lhs, k)
		left := substituteAt(overlap, 0, ab.lhs, ab.rhs)
		right := substituteAt(overlap, len(ab.lhs)-k, bc.lhs, bc.rhs)
		leftRed := s.reduceWord(left)
		rightRed := s.reduceWord(right)
		if !leftRed.Equal(rightRed) {
			s.pending = append(s.pending, rule{lhs: leftRed, rhs: rightRed, trieIdx: -1})
		}
	}
}

// suffixEqualsPrefix reports whether the last k letters of a equal the
// first k letters of b.
func suffixEqualsPrefix(a, b word.Word, k int) bool {
	return a[len(a)-k:].Equal(b[:k])
}

// concatOverlap builds ABC = A + BC, where a and b share the k-letter
// overlap B (b's first k letters equal a's last k).
func concatOverlap(a, b word.Word, k int) word.Word {
	out := make(word.Word, 0, len(a)+len(b)-k)
	out = append(out, a...)
	out = append(out, b[k:]...)
	return out
}

// substituteAt replaces the occurrence of lhs starting at position start in
// w with rhs.
func substituteAt(w word.Word, start int, lhs, rhs word.Word) word.Word {
	out := make(word.Word, 0, len(w)-len(lhs)+len(rhs))
	out = append(out, w[:start]...)
	out = append(out, rhs...)
	out = append(out, w[start+len(lhs):]...)
	return out
}

// overlapLength measures d(AB,BC) per the configured OverlapPolicy.
func (s *System) overlapLength(ab, bc word.Word, k int) int {
	switch s.opts.overlapPolicy {
	case ABBC:
		return len(ab) + len(bc)
	case MaxABBC:
		if len(ab) > len(bc) {
			return len(ab)
		}
		return len(bc)
	default: // ABC
		return (len(ab) - k) + len(bc)
	}
}

// checkConfluent reports whether the system is confluent: since
// insertActive already queues every overlap a rule can possibly take part
// in as soon as it becomes active, the pending queue is empty if and only
// if every overlap of every pair of active rules reduces identically from
// both sides (overlaps skipped under WithMaxOverlap aside; Run accounts for
// those separately).
func (s *System) checkConfluent() bool {
	return len(s.pending) == 0
}

// Contains reports whether u and v represent the same element: TRUE
// whenever both rewrite to the same word under the current rules; FALSE
// only if the system is confluent and they rewrite to different normal
// forms; UNKNOWN otherwise, since an unfinished system cannot distinguish
// "provably different" from "not yet reduced enough" (spec §4.5/§4.6).
func (s *System) Contains(u, v word.Word) Ternary {
	if !s.confluentKnown || !s.confluent {
		ru, rv := s.reduceWord(u), s.reduceWord(v)
		if ru.Equal(rv) {
			return True
		}
		return Unknown
	}
	ru, rv := s.reduceWord(u), s.reduceWord(v)
	if ru.Equal(rv) {
		return True
	}
	return False
}

// Reduce returns the current normal form of w; canonical only once Finished
// reports true (spec §4.6 "reduce(w) gives canonical normal form" only once
// confluent).
func (s *System) Reduce(w word.Word) word.Word {
	return s.reduceWord(w)
}

// Gilman returns the Gilman graph (spec §4.6 "Gilman graph"): nodes are the
// prefixes of active rules' left-hand sides (ε, the root, included); from a
// node p, whenever pa is irreducible, an a-labelled edge leads to the
// longest suffix of pa that is itself such a prefix; a node at which some
// LHS ends (a "terminal prefix") is a sink. The graph accepts exactly the
// words that are already irreducible under the active rule set.
func (s *System) Gilman() *wordgraph.Graph {
	if s.gilmanValid {
		return s.gilman
	}
	s.gilman = s.buildGilman()
	s.gilmanValid = true
	return s.gilman
}

func (s *System) buildGilman() *wordgraph.Graph {
	prefixID := map[string]int{"": 0}
	prefixes := []word.Word{{}}
	terminal := []bool{false}

	ensure := func(p word.Word) int {
		if id, ok := prefixID[p.String()]; ok {
			return id
		}
		id := len(prefixes)
		prefixID[p.String()] = id
		prefixes = append(prefixes, p.Clone())
		terminal = append(terminal, false)
		return id
	}

	for _, r := range s.active {
		for i := 0; i <= len(r.lhs); i++ {
			ensure(r.lhs[:i])
		}
		terminal[prefixID[r.lhs.String()]] = true
	}

	g := wordgraph.New(len(prefixes), s.alphabet)
	// Each edge lands on the longest suffix of the irreducible word p·a that
	// is already a prefix node (ε at worst), so no node is added here.
	for id := 0; id < len(prefixes); id++ {
		if terminal[id] {
			continue
		}
		p := prefixes[id]
		for a := 0; a < s.alphabet; a++ {
			child := p.Append(word.Letter(a))
			if s.isReducible(child) {
				continue
			}
			cid := 0
			for i := 0; i < len(child); i++ {
				if pid, ok := prefixID[child[i:].String()]; ok {
					cid = pid
					break
				}
			}
			_ = g.SetTarget(id, a, uint32(cid))
		}
	}
	return g
}

// isReducible reports whether w contains some active rule's left-hand side
// as a substring, checked directly against the active set (the Gilman
// graph is being built, so the rewrite trie's own match bookkeeping isn't
// reused here to avoid a chicken-and-egg dependency on a graph that does
// not exist yet).
func (s *System) isReducible(w word.Word) bool {
	for _, r := range s.active {
		if len(r.lhs) > len(w) {
			continue
		}
		for i := 0; i+len(r.lhs) <= len(w); i++ {
			if w[i : i+len(r.lhs)].Equal(r.lhs) {
				return true
			}
		}
	}
	return false
}

// NormalForms returns, in ShortLex order, every normal form of length in
// [min,max] - i.e. every word accepted by the Gilman graph of that length
// range (spec §4.6 "normal_forms()"). Intended for small ranges; callers
// enumerating large or unbounded ranges should walk Gilman() directly.
func (s *System) NormalForms(min, max int) []word.Word {
	g := s.Gilman()
	var out []word.Word
	var walk func(node uint32, w word.Word)
	walk = func(node uint32, w word.Word) {
		if len(w) >= min && len(w) <= max {
			out = append(out, w.Clone())
		}
		if len(w) >= max {
			return
		}
		for a := 0; a < g.OutDegree(); a++ {
			t := g.Target(int(node), a)
			if t == wordgraph.UNDEFINED {
				continue
			}
			walk(t, w.Append(word.Letter(a)))
		}
	}
	walk(0, word.Word{})
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// String renders a rule for diagnostics/logging.
func (r rule) String() string {
	return fmt.Sprintf("%s -> %s", r.lhs, r.rhs)
}
