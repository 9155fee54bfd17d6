// Package race implements RaceDispatcher (spec §4.7): runs several solvers
// (each capable of deciding the same question its own way) in parallel OS
// threads, shares a single cooperative cancellation flag between them, and
// reports whichever one finishes first as the winner.
//
// Grounded on original_source/include/libsemigroups/race.hpp for the shape
// of the abstraction (a Runner interface and a dispatcher that polls it),
// and on the teacher's goroutine-fencing idiom (see DESIGN.md) for the
// concrete Go shape: a sync.WaitGroup fencing a fixed number of goroutines,
// with shared state guarded by atomics rather than a mutex on the hot path.
// Optional structured progress reporting via github.com/sirupsen/logrus
// (WithLogger) follows spec §10.4; a nil logger keeps the dispatcher
// silent and embeddable.
package race

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoWinner is returned by Winner (and by Run's result) when every runner
// returned without finishing (spec §4.7 "if all runners return without
// finishing... run reports no-winner").
var ErrNoWinner = errors.New("race: no runner finished")

// ErrAlreadyStarted is returned by AddRunner/MaxThreads once Run has been
// called (spec §4.7 "pre: not yet started").
var ErrAlreadyStarted = errors.New("race: dispatcher has already started")

// Runner is the common capability set every solver wraps (spec §4.7):
// Todd-Coxeter, Knuth-Bendix, and (when wired) Kambites all implement it.
type Runner interface {
	// Run drives the solver, returning when it finishes, is cancelled via
	// ctx or the dispatcher's shared stop signal, or otherwise gives up.
	Run(ctx context.Context) error
	// Finished reports whether the solver reached a decisive conclusion.
	Finished() bool
	// Stop cooperatively requests the solver return at its next safe point.
	Stop()
}

// Dispatcher owns an ordered list of Runners and races them (spec §4.7).
// The zero value is ready to use.
type Dispatcher struct {
	mu         sync.Mutex
	runners    []Runner
	maxThreads int
	logger     *logrus.Logger

	started atomic.Bool
	winner  atomic.Int64 // index+1 of the winning runner, or 0 if none/not yet run
}

// WithLogger attaches a logrus.Logger that Run uses to report the winning
// runner once the race settles (spec §10.4). Pre: Run has not yet been
// called. A nil logger (the default) disables reporting entirely.
func (d *Dispatcher) WithLogger(l *logrus.Logger) error {
	if d.started.Load() {
		return ErrAlreadyStarted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
	return nil
}

// AddRunner appends r to the set of runners to race. Pre: Run has not yet
// been called.
func (d *Dispatcher) AddRunner(r Runner) error {
	if d.started.Load() {
		return ErrAlreadyStarted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runners = append(d.runners, r)
	return nil
}

// MaxThreads sets the parallelism bound (spec §4.7 "max_threads(n)"). Pre:
// Run has not yet been called. A non-positive n is treated as "one thread
// per runner" (no bound).
func (d *Dispatcher) MaxThreads(n int) error {
	if d.started.Load() {
		return ErrAlreadyStarted
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxThreads = n
	return nil
}

// Reset clears any previous winner and restores the dispatcher to its
// not-yet-started state, so AddRunner/MaxThreads can be called again and Run
// re-invoked (spec §4.8 "reinitialises the dispatcher whenever a new
// generating pair is added and the previous run has not yet started" -
// callers needing a fresh race after changing runners call Reset first).
func (d *Dispatcher) Reset() {
	d.started.Store(false)
	d.winner.Store(0)
}

// NumRunners returns the number of runners currently registered.
func (d *Dispatcher) NumRunners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.runners)
}

// Run spawns up to min(maxThreads, len(runners)) workers, each driving one
// runner to completion or cancellation (spec §4.7 "run()"). The first
// runner whose Run returns with Finished()==true stops every other runner
// and is recorded as the winner; Run then waits for all workers to return
// before itself returning, so that by the time Run returns, every runner's
// state is quiescent and safe to inspect.
//
// Returns ErrNoWinner if no runner finished (including if ctx was cancelled
// first).
func (d *Dispatcher) Run(ctx context.Context) error {
	d.started.Store(true)
	start := time.Now()
	d.mu.Lock()
	runners := append([]Runner(nil), d.runners...)
	workers := len(runners)
	if d.maxThreads > 0 && d.maxThreads < workers {
		workers = d.maxThreads
	}
	logger := d.logger
	d.mu.Unlock()

	if len(runners) == 0 {
		return ErrNoWinner
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(runners))
	for i := range runners {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				_ = runners[i].Run(runCtx)
				if runners[i].Finished() && d.winner.CompareAndSwap(0, int64(i)+1) {
					for _, r := range runners {
						r.Stop()
					}
					cancel()
				}
				select {
				case <-runCtx.Done():
					return
				default:
				}
			}
		}()
	}
	wg.Wait()

	idx := d.winner.Load()
	if logger != nil {
		fields := logrus.Fields{"num_runners": len(runners), "elapsed": time.Since(start)}
		if idx != 0 {
			fields["winner_index"] = idx - 1
		}
		logger.WithFields(fields).Info("race finished")
	}
	if idx == 0 {
		return ErrNoWinner
	}
	return nil
}

// Winner returns the runner that finished first, or ErrNoWinner if Run has
// not been called or no runner finished.
func (d *Dispatcher) Winner() (Runner, error) {
	idx := d.winner.Load()
	if idx == 0 {
		return nil, ErrNoWinner
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runners[idx-1], nil
}

// WinnerIndex returns the registration-order index of the winning runner, or
// -1 if there is none.
func (d *Dispatcher) WinnerIndex() int {
	idx := d.winner.Load()
	if idx == 0 {
		return -1
	}
	return int(idx - 1)
}
