package runtimemodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectRunsOnceOnSignalChange(t *testing.T) {
	root := NewRoot(context.Background())
	s := NewSignal(0)
	runs := 0
	NewEffect(root, func() func() {
		s.Get()
		runs++
		return nil
	})
	require.Equal(t, 1, runs)

	s.Set(1)
	assert.Equal(t, 2, runs)
}

func TestEffectThatDoesNotDependDoesNotRerun(t *testing.T) {
	root := NewRoot(context.Background())
	tracked := NewSignal(0)
	untouched := NewSignal(100)
	runs := 0
	NewEffect(root, func() func() {
		tracked.Get()
		runs++
		return nil
	})
	require.Equal(t, 1, runs)

	untouched.Set(999)
	assert.Equal(t, 1, runs, "effect never read untouched, must not re-run")
}

func TestBatchFlushesExactlyOnceAfterCompletion(t *testing.T) {
	root := NewRoot(context.Background())
	a := NewSignal(0)
	b := NewSignal(0)
	runs := 0
	NewEffect(root, func() func() {
		a.Get()
		b.Get()
		runs++
		return nil
	})
	require.Equal(t, 1, runs)

	Batch(func() {
		a.Set(1)
		b.Set(2)
	})
	assert.Equal(t, 2, runs, "two signal writes inside one batch must flush once")
}

func TestComputedIsGlitchFreeAndLazy(t *testing.T) {
	a := NewSignal(1)
	b := NewSignal(2)
	evaluations := 0
	sum := NewComputed(func() int {
		evaluations++
		return a.Get() + b.Get()
	})

	assert.Equal(t, 0, evaluations, "computed must not evaluate before first read")
	assert.Equal(t, 3, sum.Get())
	assert.Equal(t, 1, evaluations)
	assert.Equal(t, 3, sum.Get(), "repeated read without invalidation reuses cached value")
	assert.Equal(t, 1, evaluations)

	root := NewRoot(context.Background())
	var observed int
	NewEffect(root, func() func() {
		observed = sum.Get()
		return nil
	})

	Batch(func() {
		a.Set(10)
		b.Set(20)
	})
	assert.Equal(t, 30, observed, "effect must observe a fully-updated computed, never a half-updated one")
}

func TestEffectCleanupRunsExactlyOnceBetweenRuns(t *testing.T) {
	root := NewRoot(context.Background())
	s := NewSignal(0)
	cleanups := 0
	NewEffect(root, func() func() {
		s.Get()
		return func() { cleanups++ }
	})
	assert.Equal(t, 0, cleanups)

	s.Set(1)
	assert.Equal(t, 1, cleanups)

	s.Set(2)
	assert.Equal(t, 2, cleanups)
}

func TestDisposeStopsFurtherEffectRuns(t *testing.T) {
	root := NewRoot(context.Background())
	s := NewSignal(0)
	runs := 0
	NewEffect(root, func() func() {
		s.Get()
		runs++
		return nil
	})
	require.Equal(t, 1, runs)

	root.Dispose()
	s.Set(1)
	assert.Equal(t, 1, runs, "disposed owner's effect must not re-run")
	assert.True(t, root.Context().Err() != nil, "disposing an owner cancels its context")
}

func TestDisposeRunsChildrenInReverseCreationOrder(t *testing.T) {
	root := NewRoot(context.Background())
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		child := root.Child()
		child.OnCleanup(func() { order = append(order, i) })
	}
	root.Dispose()
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestDisposeIsIdempotent(t *testing.T) {
	root := NewRoot(context.Background())
	calls := 0
	root.OnCleanup(func() { calls++ })
	root.Dispose()
	root.Dispose()
	assert.Equal(t, 1, calls)
}

func TestParentEffectRunsBeforeChildOnSharedFlush(t *testing.T) {
	root := NewRoot(context.Background())
	child := root.Child()
	s := NewSignal(0)
	var order []string

	NewEffect(child, func() func() {
		s.Get()
		order = append(order, "child")
		return nil
	})
	NewEffect(root, func() func() {
		s.Get()
		order = append(order, "parent")
		return nil
	})
	order = nil

	s.Set(1)
	assert.Equal(t, []string{"parent", "child"}, order)
}

func TestReconcilePositionalAppendsAndTrims(t *testing.T) {
	old := []VNode{{Tag: "li"}, {Tag: "li"}}
	next := []VNode{{Tag: "li"}, {Tag: "li"}, {Tag: "li"}}
	patch := Reconcile(old, next)
	assert.Equal(t, []int{2}, patch.Created)
	assert.Empty(t, patch.Removed)
	assert.Empty(t, patch.Moves)
}

func TestReconcileKeyedReusesAndRemovesByKey(t *testing.T) {
	old := []VNode{{Tag: "li", Key: "a"}, {Tag: "li", Key: "b"}, {Tag: "li", Key: "c"}}
	next := []VNode{{Tag: "li", Key: "a"}, {Tag: "li", Key: "c"}, {Tag: "li", Key: "d"}}
	patch := Reconcile(old, next)

	assert.Equal(t, []int{1}, patch.Removed, "b was dropped")
	assert.Equal(t, []int{2}, patch.Created, "d is new")
}

func TestReconcileKeyedMinimizesMovesViaLIS(t *testing.T) {
	// old: a b c d e  ->  new: a c b d e
	// Old positions in new order are [0,2,1,3,4]. The LIS construction keeps
	// the smallest tail, so it picks values {0,1,3,4} (new positions 0,2,3,4),
	// and only "c" (old index 2, now at new index 1) moves.
	old := []VNode{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}, {Key: "e"}}
	next := []VNode{{Key: "a"}, {Key: "c"}, {Key: "b"}, {Key: "d"}, {Key: "e"}}
	patch := Reconcile(old, next)

	assert.Empty(t, patch.Removed)
	assert.Empty(t, patch.Created)
	require.Len(t, patch.Moves, 1)
	assert.Equal(t, Move{From: 2, To: 1}, patch.Moves[0])
}

func TestReconcileKeyedFullReverseMovesAllButOne(t *testing.T) {
	old := []VNode{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}}
	next := []VNode{{Key: "d"}, {Key: "c"}, {Key: "b"}, {Key: "a"}}
	patch := Reconcile(old, next)

	// bound from SPEC_FULL §8: moves <= N - LIS(oldPositions(new)).
	// oldPositions = [3,2,1,0]; longest increasing subsequence length is 1.
	assert.LessOrEqual(t, len(patch.Moves), len(next)-1)
}
