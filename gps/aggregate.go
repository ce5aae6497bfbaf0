package gps

import (
	"github.com/rs/zerolog"
)

// Aggregator merges per-sentence field sets into time-ordered fixes. Real
// logs emit several sentence types in a tight burst with the same clock
// second, so fields merge into the open fix while the timestamp holds and the
// fix is sealed as soon as the timestamp advances.
type Aggregator struct {
	fixes   []Fix
	open    Fix
	hasOpen bool
	log     zerolog.Logger

	droppedTimeless int
	droppedBackward int
	fieldConflicts  int
}

// NewAggregator creates an aggregator logging through logger
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{log: logger}
}

// Add merges one sentence's fields in arrival order. Fields with no timestamp
// attach to the open fix, or are dropped when there is nothing to anchor them
// to. A timestamp moving backwards would break the index's strict ordering,
// so such sentences are dropped with a warning.
func (a *Aggregator) Add(f Fields, raw string) {
	if !f.HasTimestamp {
		if !a.hasOpen {
			a.droppedTimeless++
			a.log.Debug().Str("sentence", raw).Msg("no open fix to anchor timeless sentence")
			return
		}
		a.mergeOpen(f, raw)
		return
	}

	switch {
	case !a.hasOpen:
		a.openFix(f, raw)
	case f.Timestamp.Equal(a.open.Timestamp):
		a.mergeOpen(f, raw)
	case f.Timestamp.After(a.open.Timestamp):
		a.fixes = append(a.fixes, a.open)
		a.openFix(f, raw)
	default:
		a.droppedBackward++
		a.log.Warn().
			Time("timestamp", f.Timestamp).
			Time("open", a.open.Timestamp).
			Msg("out-of-order timestamp, sentence dropped")
	}
}

// Finish seals the open fix and returns the completed sequence, strictly
// increasing by timestamp.
func (a *Aggregator) Finish() []Fix {
	if a.hasOpen {
		a.fixes = append(a.fixes, a.open)
		a.open = Fix{}
		a.hasOpen = false
	}
	return a.fixes
}

// DroppedTimeless returns the count of sentences dropped for lacking a time anchor
func (a *Aggregator) DroppedTimeless() int { return a.droppedTimeless }

// DroppedBackward returns the count of sentences dropped for going back in time
func (a *Aggregator) DroppedBackward() int { return a.droppedBackward }

// FieldConflicts returns the count of conflicting duplicate field values seen
func (a *Aggregator) FieldConflicts() int { return a.fieldConflicts }

func (a *Aggregator) openFix(f Fields, raw string) {
	a.open = Fix{
		Timestamp: f.Timestamp,
		Fields:    f,
		Sentences: []string{raw},
	}
	a.hasOpen = true
}

// mergeOpen unions fields into the open fix. A well-formed log never carries
// two differing values for one field at one timestamp; when it happens the
// earlier value wins and the conflict is flagged as a data-quality warning.
func (a *Aggregator) mergeOpen(f Fields, raw string) {
	conflicts := a.open.Fields.merge(f)
	if len(conflicts) > 0 {
		a.fieldConflicts += len(conflicts)
		a.log.Warn().
			Time("timestamp", a.open.Timestamp).
			Strs("fields", conflicts).
			Msg("conflicting field values at one timestamp, keeping earlier")
	}
	a.open.Sentences = append(a.open.Sentences, raw)
}
