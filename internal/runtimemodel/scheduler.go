package runtimemodel

// tracker is whatever is currently reading signals — an Effect or a
// Computed mid-recompute — so a signal read can record it as a subscriber.
// Modeled as a package-level stack (not per-Owner) because the emitted JS
// runtime's tracking context is itself a single global "current observer"
// slot pushed/popped around each run, not scoped per component.
type tracker interface {
	notify()
	depth() int
}

var trackingStack []tracker

func currentTracker() tracker {
	if len(trackingStack) == 0 {
		return nil
	}
	return trackingStack[len(trackingStack)-1]
}

func pushTracker(t tracker) { trackingStack = append(trackingStack, t) }
func popTracker() {
	if len(trackingStack) > 0 {
		trackingStack = trackingStack[:len(trackingStack)-1]
	}
}

// scheduler owns the batching depth counter and the set of effects pending
// a re-run, mirroring SPEC_FULL §4.7's batch/flush contract: a setter that
// fires outside of any batch flushes immediately; one inside a batch only
// enqueues, and the outermost batch's return triggers exactly one flush.
type scheduler struct {
	batchDepth int
	pending    map[*Effect]bool
	flushing   bool
}

var sched = &scheduler{pending: map[*Effect]bool{}}

// maxFlushIterations bounds the flush loop against effects that
// re-trigger each other indefinitely — SPEC_FULL §4.7 calls for "a loop
// warning" past 100 iterations; this model treats it as a hard stop rather
// than a Console.warn, since there's no console to warn to in Go tests.
const maxFlushIterations = 100

func (s *scheduler) enqueue(e *Effect) {
	if e.disposed {
		return
	}
	s.pending[e] = true
	if s.batchDepth == 0 {
		s.flush()
	}
}

// flush is re-entrant-safe: a setter fired from inside a running effect's
// body enqueues into the same pending set rather than recursing into a
// nested flush call, and the outer flush's loop simply picks up the new
// entry on its next iteration.
func (s *scheduler) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	for iter := 0; len(s.pending) > 0 && iter < maxFlushIterations; iter++ {
		batch := make([]*Effect, 0, len(s.pending))
		for e := range s.pending {
			batch = append(batch, e)
		}
		s.pending = map[*Effect]bool{}

		ordered := make([]scheduled, len(batch))
		for i, e := range batch {
			ordered[i] = effectScheduled{e}
		}
		sortByDepthAscending(ordered)

		for _, os := range ordered {
			e := os.(effectScheduled).e
			if !e.disposed {
				e.run()
			}
		}
	}
}

type effectScheduled struct{ e *Effect }

func (s effectScheduled) depth() int { return s.e.owner.Depth() }

// Batch runs fn with setter-triggered effect flushes deferred until fn
// returns, per SPEC_FULL §4.7: "setters enqueue but do not flush; decrement
// at end triggers flush."
func Batch(fn func()) {
	sched.batchDepth++
	defer func() {
		sched.batchDepth--
		if sched.batchDepth == 0 {
			sched.flush()
		}
	}()
	fn()
}
