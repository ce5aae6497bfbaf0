package gps

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func ts(h, m, s int) time.Time {
	return time.Date(2021, 3, 21, h, m, s, 0, time.UTC)
}

func TestAggregatorMergesSameTimestamp(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	// position-only and satellite-count-only sentences at the same second
	agg.Add(Fields{
		Timestamp: ts(10, 0, 1), HasTimestamp: true,
		Latitude: 48.1, HasLatitude: true,
		Longitude: 11.5, HasLongitude: true,
	}, "$GPRMC,...")
	agg.Add(Fields{
		Timestamp: ts(10, 0, 1), HasTimestamp: true,
		Satellites: 8, HasSatellites: true,
	}, "$GPGGA,...")
	// a third sentence one second later seals the first fix
	agg.Add(Fields{
		Timestamp: ts(10, 0, 2), HasTimestamp: true,
		Latitude: 48.2, HasLatitude: true,
		Longitude: 11.6, HasLongitude: true,
	}, "$GPRMC,...2")

	fixes := agg.Finish()
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}

	first := fixes[0]
	if !first.Timestamp.Equal(ts(10, 0, 1)) {
		t.Errorf("first fix timestamp = %v", first.Timestamp)
	}
	if !first.Fields.HasLatitude || first.Fields.Latitude != 48.1 {
		t.Errorf("merged fix lost its position: %+v", first.Fields)
	}
	if !first.Fields.HasSatellites || first.Fields.Satellites != 8 {
		t.Errorf("merged fix lost its satellite count: %+v", first.Fields)
	}
	if len(first.Sentences) != 2 {
		t.Errorf("merged fix should carry both raw sentences, got %d", len(first.Sentences))
	}
}

func TestAggregatorTimelessAttachesToOpenFix(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	agg.Add(Fields{Timestamp: ts(10, 0, 1), HasTimestamp: true}, "$GPZDA,...")
	agg.Add(Fields{Speed: 12.5, HasSpeed: true, Course: 84.4, HasCourse: true}, "$GPVTG,...")

	fixes := agg.Finish()
	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %d", len(fixes))
	}
	if !fixes[0].Fields.HasSpeed || fixes[0].Fields.Speed != 12.5 {
		t.Errorf("timeless speed must merge into the open fix: %+v", fixes[0].Fields)
	}
	if len(fixes[0].Sentences) != 2 {
		t.Errorf("timeless raw sentence must ride along, got %d sentences", len(fixes[0].Sentences))
	}
}

func TestAggregatorDropsTimelessWithoutOpenFix(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	agg.Add(Fields{Speed: 12.5, HasSpeed: true}, "$GPVTG,...")

	if fixes := agg.Finish(); len(fixes) != 0 {
		t.Fatalf("sentence with no time anchor must be dropped, got %d fixes", len(fixes))
	}
	if agg.DroppedTimeless() != 1 {
		t.Errorf("expected 1 dropped timeless sentence, got %d", agg.DroppedTimeless())
	}
}

func TestAggregatorConflictKeepsEarlierValue(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	agg.Add(Fields{
		Timestamp: ts(10, 0, 1), HasTimestamp: true,
		Altitude: 545.4, HasAltitude: true,
	}, "$GPGGA,...")
	agg.Add(Fields{
		Timestamp: ts(10, 0, 1), HasTimestamp: true,
		Altitude: 999.9, HasAltitude: true,
	}, "$GNGNS,...")

	fixes := agg.Finish()
	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %d", len(fixes))
	}
	if fixes[0].Fields.Altitude != 545.4 {
		t.Errorf("conflicting value must keep the earlier one, got %v", fixes[0].Fields.Altitude)
	}
	if agg.FieldConflicts() != 1 {
		t.Errorf("expected 1 flagged conflict, got %d", agg.FieldConflicts())
	}
}

func TestAggregatorIdenticalDuplicateIsNotAConflict(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	agg.Add(Fields{Timestamp: ts(10, 0, 1), HasTimestamp: true, Altitude: 545.4, HasAltitude: true}, "a")
	agg.Add(Fields{Timestamp: ts(10, 0, 1), HasTimestamp: true, Altitude: 545.4, HasAltitude: true}, "b")

	agg.Finish()
	if agg.FieldConflicts() != 0 {
		t.Errorf("identical duplicate values must not count as conflicts, got %d", agg.FieldConflicts())
	}
}

func TestAggregatorDropsBackwardTimestamp(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	agg.Add(Fields{Timestamp: ts(10, 0, 5), HasTimestamp: true}, "a")
	agg.Add(Fields{Timestamp: ts(10, 0, 3), HasTimestamp: true, Altitude: 1, HasAltitude: true}, "b")
	agg.Add(Fields{Timestamp: ts(10, 0, 6), HasTimestamp: true}, "c")

	fixes := agg.Finish()
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}
	for i := 1; i < len(fixes); i++ {
		if !fixes[i].Timestamp.After(fixes[i-1].Timestamp) {
			t.Fatalf("index must stay strictly increasing: %v then %v",
				fixes[i-1].Timestamp, fixes[i].Timestamp)
		}
	}
	if agg.DroppedBackward() != 1 {
		t.Errorf("expected 1 dropped backward sentence, got %d", agg.DroppedBackward())
	}
}

func TestAggregatorDistinctTimestampsDistinctFixes(t *testing.T) {
	agg := NewAggregator(zerolog.Nop())

	// five sentences over three distinct timestamps
	stamps := []time.Time{
		ts(10, 0, 1), ts(10, 0, 1), ts(10, 0, 2), ts(10, 0, 2), ts(10, 0, 3),
	}
	for i, stamp := range stamps {
		agg.Add(Fields{Timestamp: stamp, HasTimestamp: true}, string(rune('a'+i)))
	}

	fixes := agg.Finish()
	if len(fixes) != 3 {
		t.Fatalf("3 distinct timestamps must yield 3 fixes, got %d", len(fixes))
	}
}
