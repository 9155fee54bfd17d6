// Package congruence implements CongruenceFacade (spec §4.8, §6
// Congruence): the user-facing entry point that owns a presentation, a
// congruence kind, a set of extra generating pairs, and a race.Dispatcher.
// On the first query requiring a decision it reverses the presentation for
// left congruences, wires a ToddCoxeter and a KnuthBendix runner (and a
// Kambites runner when one can be shown viable), races them, and answers
// later queries from the winner, except NumberOfClasses, which always
// resumes the ToddCoxeter runner.
//
// Grounded on original_source/include/libsemigroups/cong-class.hpp for the
// facade's shape (kind/presentation/generating-pairs accessors, has<T>/
// get<T>), and on the teacher's dijkstra.Dijkstra for ordered precondition
// checks returning a single wrapped error type.
package congruence

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/semigroups/knuthbendix"
	"github.com/katalvlaran/semigroups/race"
	"github.com/katalvlaran/semigroups/toddcoxeter"
	"github.com/katalvlaran/semigroups/word"
)

// Kind selects which side(s) of multiplication the congruence respects
// (spec §3 "Kind").
type Kind int

const (
	TwoSided Kind = iota
	Left
	Right
)

// Ternary mirrors knuthbendix.Ternary/toddcoxeter.Ternary for
// currently_contains (spec §6): a third package-local copy rather than an
// import, for the same reason toddcoxeter duplicates it instead of
// depending on knuthbendix.
type Ternary int

const (
	Unknown Ternary = iota
	True
	False
)

// ErrKind identifies which spec §7 error kind a LibsemigroupsError carries.
type ErrKind int

const (
	InvalidPresentation ErrKind = iota
	AlphabetTooLarge
	IncompatibleCongruenceKind
	NoWinner
	MissingRunner
	MutationAfterStart
	Cancelled
)

func (k ErrKind) String() string {
	switch k {
	case InvalidPresentation:
		return "InvalidPresentation"
	case AlphabetTooLarge:
		return "AlphabetTooLarge"
	case IncompatibleCongruenceKind:
		return "IncompatibleCongruenceKind"
	case NoWinner:
		return "NoWinner"
	case MissingRunner:
		return "MissingRunner"
	case MutationAfterStart:
		return "MutationAfterStart"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// sentinel per ErrKind, returned by LibsemigroupsError.Unwrap. The
// sentinels are unexported, so callers outside this package match a failure
// on LibsemigroupsError.Kind (via errors.As) instead.
var (
	errInvalidPresentation        = errors.New("congruence: invalid presentation")
	errAlphabetTooLarge           = errors.New("congruence: alphabet too large for knuth-bendix")
	errIncompatibleCongruenceKind = errors.New("congruence: runner cannot handle this congruence kind")
	errNoWinner                   = errors.New("congruence: no runner finished")
	errMissingRunner              = errors.New("congruence: no runner of the requested type")
	errMutationAfterStart         = errors.New("congruence: generating pair added after dispatcher started")
	errCancelled                  = errors.New("congruence: runner cancelled before finishing")
)

func sentinelFor(k ErrKind) error {
	switch k {
	case InvalidPresentation:
		return errInvalidPresentation
	case AlphabetTooLarge:
		return errAlphabetTooLarge
	case IncompatibleCongruenceKind:
		return errIncompatibleCongruenceKind
	case NoWinner:
		return errNoWinner
	case MissingRunner:
		return errMissingRunner
	case MutationAfterStart:
		return errMutationAfterStart
	case Cancelled:
		return errCancelled
	default:
		return errors.New("congruence: unknown error")
	}
}

// LibsemigroupsError is the single error type every facade/dispatcher
// failure surfaces as (spec §6 "LibsemigroupsException", §7's enumerated
// error kinds), wrapping an unexported sentinel per Kind; callers use
// errors.As(err, &lsErr) and compare lsErr.Kind, without a type switch.
type LibsemigroupsError struct {
	Kind    ErrKind
	Message string
}

func (e *LibsemigroupsError) Error() string {
	return fmt.Sprintf("congruence: %s: %s", e.Kind, e.Message)
}

func (e *LibsemigroupsError) Unwrap() error { return sentinelFor(e.Kind) }

func newErr(k ErrKind, format string, args ...interface{}) *LibsemigroupsError {
	return &LibsemigroupsError{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// ElementSource is the documented-but-unimplemented FroidurePin boundary
// (spec §6 "to<Congruence>", §12 "KBP / FroidurePin boundary"): a future
// froidurepin package can satisfy this to seed a Facade from an existing
// transformation semigroup's Cayley graph without this module changing.
type ElementSource interface {
	NumberOfGenerators() int
	CayleyGraph(leftSide bool) *word.Presentation
}

// Runner is the capability set a solver exposes to the dispatcher (spec
// §4.7), re-exported here so callers can type-switch a Get result without
// importing race directly.
type Runner = race.Runner

// kambitesStub exercises race.Runner's type surface without implementing
// the small-overlap algorithm body (spec §13 Non-goals: "Kambites' full
// algorithm body... only its Runner-shaped seam is stubbed"). Success is
// never established, so the facade never actually races it.
type kambitesStub struct{}

func (kambitesStub) Run(ctx context.Context) error { return nil }
func (kambitesStub) Finished() bool                { return false }
func (kambitesStub) Stop()                         {}

// success reports whether the small-overlap condition could be established
// for the given presentation. Always false: detecting small-overlap classes
// (C(4), C(6), ...) is outside this module's scope.
func (kambitesStub) success(*word.Presentation) bool { return false }

// Facade is CongruenceFacade (spec §4.8). The zero value is not usable;
// construct with New.
type Facade struct {
	kind       Kind
	pres       *word.Presentation
	pairs      [][2]word.Word
	maxThreads int

	dispatcher *race.Dispatcher
	tc         *toddcoxeter.Core
	kb         *knuthbendix.System
	started    bool
	winner     race.Runner
}

// New builds a Facade over a presentation and kind. The presentation is
// cloned (spec §5 "passed by value... because Knuth-Bendix may alter it").
func New(kind Kind, p *word.Presentation) *Facade {
	return &Facade{kind: kind, pres: p.Clone(), dispatcher: &race.Dispatcher{}}
}

// AddGeneratingPair appends (u,v) to the facade's extra generating pairs
// (spec §6 "add_generating_pair"), re-initialising the dispatcher so the
// next query sees it - as long as run has not yet started (spec §4.8 "the
// facade reinitialises the dispatcher whenever a new generating pair is
// added and the previous run has not yet started").
func (f *Facade) AddGeneratingPair(u, v word.Word) error {
	if f.started {
		return newErr(MutationAfterStart, "add_generating_pair called after run started")
	}
	f.pairs = append(f.pairs, [2]word.Word{u.Clone(), v.Clone()})
	f.dispatcher = &race.Dispatcher{}
	f.tc, f.kb, f.winner = nil, nil, nil
	return nil
}

// MaxThreads sets the race dispatcher's parallelism bound (spec §6
// "max_threads(n) → Congruence").
func (f *Facade) MaxThreads(n int) *Facade {
	f.maxThreads = n
	return f
}

// Kind returns the congruence kind the facade was constructed with.
func (f *Facade) Kind() Kind { return f.kind }

// Presentation returns a defensive copy of the presentation supplied at
// construction (spec §8 "Presentation preservation": bit-for-bit, for any
// user-reachable query path - so the stored reversal used internally for
// left congruences is never visible here).
func (f *Facade) Presentation() *word.Presentation { return f.pres.Clone() }

// GeneratingPairs returns a defensive copy of the extra generating pairs
// added so far.
func (f *Facade) GeneratingPairs() [][2]word.Word {
	out := make([][2]word.Word, len(f.pairs))
	for i, pr := range f.pairs {
		out[i] = [2]word.Word{pr[0].Clone(), pr[1].Clone()}
	}
	return out
}

// runnerPresentation builds the presentation runners actually see: reversed
// once if this is a left congruence (spec §9 "Reversal for left
// congruences"), with every generating pair folded in as an extra rule.
func (f *Facade) runnerPresentation() (*word.Presentation, error) {
	p := f.pres.Clone()
	if f.kind == Left {
		p = p.Reversed()
	}
	for _, pr := range f.pairs {
		u, v := pr[0], pr[1]
		if f.kind == Left {
			u, v = u.Reversed(), v.Reversed()
		}
		if err := p.AddRule(u, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

const alphabetTooLargeLimit = 255

// ensureStarted lazily builds and races the runners on first use (spec
// §4.8 "On the first query that requires a decision").
func (f *Facade) ensureStarted(ctx context.Context) error {
	if f.started {
		return nil
	}
	f.started = true

	p, err := f.runnerPresentation()
	if err != nil {
		return newErr(InvalidPresentation, "%v", err)
	}
	if p.Size() > alphabetTooLargeLimit {
		return newErr(AlphabetTooLarge, "alphabet size %d exceeds %d", p.Size(), alphabetTooLargeLimit)
	}

	rules := p.Rules()
	tcRules := make([]toddcoxeter.Rule, 0, len(rules)*2)
	for _, r := range rules {
		tcRules = append(tcRules,
			toddcoxeter.Rule{LHS: r[0], RHS: r[1]},
			toddcoxeter.Rule{LHS: r[1], RHS: r[0]},
		)
	}

	f.tc = toddcoxeter.New(p.Size(), tcRules, toddcoxeter.WithContainsEmptyWord(p.ContainsEmptyWord()))
	f.kb = knuthbendix.New(p.Size(), knuthbendix.ShortLexOrder)
	for _, r := range rules {
		if err := f.kb.AddRule(r[0], r[1]); err != nil {
			return newErr(InvalidPresentation, "%v", err)
		}
	}

	if err := f.dispatcher.MaxThreads(f.maxThreads); err != nil {
		return newErr(MutationAfterStart, "%v", err)
	}
	if err := f.dispatcher.AddRunner(tcRunner{f.tc}); err != nil {
		return newErr(MutationAfterStart, "%v", err)
	}
	if err := f.dispatcher.AddRunner(kbRunner{f.kb}); err != nil {
		return newErr(MutationAfterStart, "%v", err)
	}
	if stub := (kambitesStub{}); stub.success(p) {
		if err := f.dispatcher.AddRunner(stub); err != nil {
			return newErr(MutationAfterStart, "%v", err)
		}
	}

	if err := f.dispatcher.Run(ctx); err != nil {
		if errors.Is(err, race.ErrNoWinner) {
			return newErr(NoWinner, "no runner finished")
		}
		return err
	}
	w, err := f.dispatcher.Winner()
	if err != nil {
		return newErr(NoWinner, "no runner finished")
	}
	f.winner = w
	return nil
}

// HasToddCoxeter reports whether a ToddCoxeter runner has been constructed
// for this facade (true once any query has started the race).
func (f *Facade) HasToddCoxeter() bool { return f.tc != nil }

// GetToddCoxeter returns the facade's ToddCoxeter runner, or
// MissingRunner if one has not yet been constructed (spec §4.8
// "get<T>()").
func (f *Facade) GetToddCoxeter() (*toddcoxeter.Core, error) {
	if f.tc == nil {
		return nil, newErr(MissingRunner, "no ToddCoxeter runner yet; query the facade first")
	}
	return f.tc, nil
}

// HasKnuthBendix reports whether a KnuthBendix runner has been constructed.
func (f *Facade) HasKnuthBendix() bool { return f.kb != nil }

// GetKnuthBendix returns the facade's KnuthBendix runner, or MissingRunner.
func (f *Facade) GetKnuthBendix() (*knuthbendix.System, error) {
	if f.kb == nil {
		return nil, newErr(MissingRunner, "no KnuthBendix runner yet; query the facade first")
	}
	return f.kb, nil
}

// NumberOfClasses returns the number of congruence classes, or (0, false)
// if no runner could determine a finite count (spec §6 "number_of_classes()
// → Natural ∪ {∞}"). This always consults the ToddCoxeter runner rather
// than whichever runner happened to win the race (spec §8: the user-visible
// result of a query is independent of scheduling) - a confluent Knuth-Bendix
// system only bounds the language of irreducible words, and deciding
// whether that language is finite would require walking the Gilman graph
// for cycles, which this module does not attempt (see DESIGN.md "KnuthBendix
// class counts"), so KnuthBendix can never answer this query regardless of
// whether it won. If ToddCoxeter was stopped early because KnuthBendix won
// the race, it is resumed here to completion.
func (f *Facade) NumberOfClasses(ctx context.Context) (int, bool, error) {
	if err := f.ensureStarted(ctx); err != nil {
		return 0, false, err
	}
	if f.tc == nil {
		return 0, false, newErr(NoWinner, "no winner")
	}
	if !f.tc.Finished() {
		if err := f.tc.Run(ctx); err != nil {
			return 0, false, err
		}
	}
	if !f.tc.Finished() {
		return 0, false, nil
	}
	return f.tc.NumClasses(), true, nil
}

// forward applies the left-congruence reverse trick to a query word, the
// way runnerPresentation applies it to rules (spec §9).
func (f *Facade) forward(w word.Word) word.Word {
	if f.kind == Left {
		return w.Reversed()
	}
	return w
}

// Contains decides whether u and v represent the same class, blocking
// until the winning runner can answer (spec §6 "contains(u,v) → bool (may
// not terminate)").
func (f *Facade) Contains(ctx context.Context, u, v word.Word) (bool, error) {
	if err := f.ensureStarted(ctx); err != nil {
		return false, err
	}
	ru, rv := f.forward(u), f.forward(v)
	switch w := f.winner.(type) {
	case tcRunner:
		return w.core.Contains(ru, rv) == toddcoxeter.True, nil
	case kbRunner:
		return w.sys.Contains(ru, rv) == knuthbendix.True, nil
	default:
		return false, newErr(NoWinner, "no winner")
	}
}

// CurrentlyContains answers without blocking for completion (spec §6
// "currently_contains(u,v) → TRUE|FALSE|UNKNOWN"): if the dispatcher has
// not yet been raced, it reports Unknown rather than starting one.
func (f *Facade) CurrentlyContains(u, v word.Word) Ternary {
	if f.winner == nil {
		return Unknown
	}
	ru, rv := f.forward(u), f.forward(v)
	switch w := f.winner.(type) {
	case tcRunner:
		switch w.core.Contains(ru, rv) {
		case toddcoxeter.True:
			return True
		case toddcoxeter.False:
			return False
		default:
			return Unknown
		}
	case kbRunner:
		switch w.sys.Contains(ru, rv) {
		case knuthbendix.True:
			return True
		case knuthbendix.False:
			return False
		default:
			return Unknown
		}
	default:
		return Unknown
	}
}

// Reduce returns w's canonical class representative, reversing the result
// back for left congruences (spec §6 "reduce(w) → Word", §9 "reverse
// reduce outputs before returning").
func (f *Facade) Reduce(ctx context.Context, w word.Word) (word.Word, error) {
	if err := f.ensureStarted(ctx); err != nil {
		return nil, err
	}
	rw := f.forward(w)
	var out word.Word
	switch r := f.winner.(type) {
	case tcRunner:
		out = r.core.Reduce(rw)
	case kbRunner:
		out = r.sys.Reduce(rw)
	default:
		return nil, newErr(NoWinner, "no winner")
	}
	if f.kind == Left {
		return out.Reversed(), nil
	}
	return out, nil
}

// tcRunner adapts *toddcoxeter.Core to race.Runner.
type tcRunner struct{ core *toddcoxeter.Core }

func (r tcRunner) Run(ctx context.Context) error { return r.core.Run(ctx) }
func (r tcRunner) Finished() bool                { return r.core.Finished() }
func (r tcRunner) Stop()                         { r.core.Stop() }

// kbRunner adapts *knuthbendix.System to race.Runner.
type kbRunner struct{ sys *knuthbendix.System }

func (r kbRunner) Run(ctx context.Context) error { return r.sys.Run(ctx) }
func (r kbRunner) Finished() bool                { return r.sys.Finished() }
func (r kbRunner) Stop()                         { r.sys.Stop() }
