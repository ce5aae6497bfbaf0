package gps

import (
	"sort"
	"time"
)

// TimelineIndex is an ordered sequence of fixes, strictly increasing by
// timestamp, answering nearest-at-or-before queries in logarithmic time.
// Scrubbing can issue many queries per second, so lookups never scan. The
// index is immutable once built; loading a new log replaces it wholesale.
type TimelineIndex struct {
	fixes []Fix
}

// NewTimelineIndex wraps a finished, time-ordered fix sequence. The caller
// must not mutate fixes afterwards.
func NewTimelineIndex(fixes []Fix) *TimelineIndex {
	return &TimelineIndex{fixes: fixes}
}

// Len returns the number of indexed fixes
func (ix *TimelineIndex) Len() int { return len(ix.fixes) }

// At returns the i-th fix in timestamp order
func (ix *TimelineIndex) At(i int) Fix { return ix.fixes[i] }

// Start returns the first indexed timestamp. ok is false for an empty index.
func (ix *TimelineIndex) Start() (time.Time, bool) {
	if len(ix.fixes) == 0 {
		return time.Time{}, false
	}
	return ix.fixes[0].Timestamp, true
}

// End returns the last indexed timestamp. ok is false for an empty index.
func (ix *TimelineIndex) End() (time.Time, bool) {
	if len(ix.fixes) == 0 {
		return time.Time{}, false
	}
	return ix.fixes[len(ix.fixes)-1].Timestamp, true
}

// AtOrBefore returns the fix with the greatest timestamp at or before t. ok
// is false when t precedes the first entry or the index is empty.
func (ix *TimelineIndex) AtOrBefore(t time.Time) (Fix, bool) {
	n := sort.Search(len(ix.fixes), func(i int) bool {
		return ix.fixes[i].Timestamp.After(t)
	})
	if n == 0 {
		return Fix{}, false
	}
	return ix.fixes[n-1], true
}

// PositionAtOrBefore is AtOrBefore restricted to fixes that carry a position.
// Timestamp-only fixes are anchors, not answers, so the search walks back
// past them.
func (ix *TimelineIndex) PositionAtOrBefore(t time.Time) (Fix, bool) {
	n := sort.Search(len(ix.fixes), func(i int) bool {
		return ix.fixes[i].Timestamp.After(t)
	})
	for i := n - 1; i >= 0; i-- {
		if ix.fixes[i].HasPosition() {
			return ix.fixes[i], true
		}
	}
	return Fix{}, false
}
