package evo

import "errors"

var (
	ErrNoPendingComparison = errors.New("no comparison is pending")
	ErrInvalidOutcome      = errors.New("invalid comparison outcome")
)

// Swapper is the in-place view a Ranker reorders.
type Swapper interface {
	Swap(i, j int)
}

// Range is a closed index interval awaiting partitioning.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Ranker is a quicksort whose less-than answers arrive one at a time from
// outside. The recursion is kept on an explicit pending stack so the sort can
// suspend between comparisons. Elements end up most preferred first.
type Ranker struct {
	items   Swapper
	pending []Range
	low     int
	scan    int

	comparisons int
}

// NewRanker starts a pass over items[0:n].
func NewRanker(items Swapper, n int) *Ranker {
	r := &Ranker{}
	r.Reset(items, n)
	return r
}

// Reset discards any in-progress pass and starts a new one over items[0:n].
func (r *Ranker) Reset(items Swapper, n int) {
	r.items = items
	r.pending = r.pending[:0]
	r.comparisons = 0
	r.low, r.scan = 0, 0
	if n > 1 {
		r.pending = append(r.pending, Range{Start: 0, End: n - 1})
		r.selectPivot()
	}
}

// Pending reports whether a comparison is waiting for an outcome.
func (r *Ranker) Pending() bool {
	return len(r.pending) > 0
}

// Pair returns the two indices to compare. ok is false when no pass is active.
func (r *Ranker) Pair() (pair Pair, ok bool) {
	if !r.Pending() {
		return Pair{}, false
	}
	return Pair{Left: r.scan, Right: r.active().End}, true
}

// Active returns the range currently being partitioned.
func (r *Ranker) Active() (Range, bool) {
	if !r.Pending() {
		return Range{}, false
	}
	return r.active(), true
}

// PendingRanges returns a copy of the stack, bottom first.
func (r *Ranker) PendingRanges() []Range {
	return append([]Range(nil), r.pending...)
}

// Comparisons is the number of outcomes consumed in the current pass.
func (r *Ranker) Comparisons() int {
	return r.comparisons
}

// Compare consumes one outcome. LeftPreferred means the scanned element ranks
// above the pivot. done is true when this outcome finished the pass; the
// ranker then has nothing pending until Reset.
func (r *Ranker) Compare(outcome Outcome) (done bool, err error) {
	if !outcome.Valid() {
		return false, ErrInvalidOutcome
	}
	if !r.Pending() {
		return false, ErrNoPendingComparison
	}

	active := r.active()
	if outcome == LeftPreferred {
		r.items.Swap(r.low, r.scan)
		r.low++
	}
	r.scan++
	r.comparisons++
	if r.scan < active.End {
		return false, nil
	}

	// Partition settled: the pivot lands on its final rank.
	r.items.Swap(r.low, active.End)
	r.pending = r.pending[:len(r.pending)-1]
	if active.Start < r.low-1 {
		r.pending = append(r.pending, Range{Start: active.Start, End: r.low - 1})
	}
	if r.low+1 < active.End {
		r.pending = append(r.pending, Range{Start: r.low + 1, End: active.End})
	}

	if !r.Pending() {
		return true, nil
	}
	r.selectPivot()
	return false, nil
}

func (r *Ranker) active() Range {
	return r.pending[len(r.pending)-1]
}

// selectPivot moves the upper midpoint of the active range into its end slot.
func (r *Ranker) selectPivot() {
	active := r.active()
	r.low, r.scan = active.Start, active.Start
	mid := active.Start + active.Len()/2
	if mid != active.End {
		r.items.Swap(mid, active.End)
	}
}
