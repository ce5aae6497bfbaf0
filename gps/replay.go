package gps

import (
	"context"
	"fmt"
	"io"
	"time"
)

// State identifies the replay source's connection state
type State int

const (
	// Disconnected means no log is loaded
	Disconnected State = iota
	// Connected means a log is loaded and a fix is current
	Connected
	// ConnectedNoFix means a log is loaded but the playback time precedes its
	// first positioned fix
	ConnectedNoFix
)

// String returns a readable state name
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case ConnectedNoFix:
		return "connected, no fix"
	default:
		return "unknown"
	}
}

// ReplaySource replays a loaded NMEA log as if it were a live positioning
// device. Playback position is driven entirely by Seek calls; nothing runs on
// wall-clock time. The source is single-threaded by design: it executes on
// the host's event loop and every operation is synchronous.
type ReplaySource struct {
	config Config
	loader *Loader

	index      *TimelineIndex
	state      State
	generation uint64
	stats      LoadStats

	current    Fix
	hasCurrent bool

	sentenceWriter io.Writer
	callbacks      []func(Fix)
}

// NewReplaySource creates a replay source with the given configuration
func NewReplaySource(config Config) (*ReplaySource, error) {
	loader, err := NewLoader(config)
	if err != nil {
		return nil, err
	}
	return &ReplaySource{
		config: config,
		loader: loader,
	}, nil
}

// AddCallback registers a function invoked whenever the current fix changes
func (r *ReplaySource) AddCallback(callback func(Fix)) {
	r.callbacks = append(r.callbacks, callback)
}

// SetSentenceWriter sets a writer that receives each emitted fix's raw
// sentences verbatim, CRLF terminated, so downstream NMEA consumers can read
// the replay like a live device.
func (r *ReplaySource) SetSentenceWriter(w io.Writer) {
	r.sentenceWriter = w
}

// State returns the current connection state
func (r *ReplaySource) State() State { return r.state }

// Generation returns the tag identifying the currently loaded index. It
// advances on every connect and disconnect, so callers holding a stale tag
// can be ignored.
func (r *ReplaySource) Generation() uint64 { return r.generation }

// Stats returns the load statistics of the connected log
func (r *ReplaySource) Stats() LoadStats { return r.stats }

// Index returns the loaded timeline index, or nil while disconnected
func (r *ReplaySource) Index() *TimelineIndex { return r.index }

// Extent returns the loaded log's first and last timestamps, used by the
// host's scrubbing controller to configure its playback range.
func (r *ReplaySource) Extent() (start, end time.Time, ok bool) {
	if r.index == nil {
		return time.Time{}, time.Time{}, false
	}
	start, ok = r.index.Start()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, _ = r.index.End()
	return start, end, true
}

// Connect loads and indexes the log at path, atomically replacing any
// previously loaded index. On failure (unreadable file, no usable position
// data, cancelled ctx) the source stays Disconnected and any prior index is
// already gone.
func (r *ReplaySource) Connect(ctx context.Context, path string) error {
	if r.state != Disconnected {
		return ErrAlreadyConnected
	}

	fixes, stats, err := r.loader.Load(ctx, path)
	if err != nil {
		return err
	}

	r.generation++
	r.index = NewTimelineIndex(fixes)
	r.stats = stats
	r.state = ConnectedNoFix
	r.hasCurrent = false

	start, end, _ := r.Extent()
	r.config.Logger.Info().
		Str("log", path).
		Int("fixes", stats.Fixes).
		Time("start", start).
		Time("end", end).
		Msg("replay source connected")
	return nil
}

// Disconnect discards the loaded index and returns to Disconnected. Seeks
// issued against the discarded index become stale and are silently ignored.
func (r *ReplaySource) Disconnect() {
	r.generation++
	r.index = nil
	r.stats = LoadStats{}
	r.state = Disconnected
	r.hasCurrent = false
	r.config.Logger.Info().Msg("replay source disconnected")
}

// Seek moves playback to t. The fix with the greatest timestamp at or before
// t becomes current; a fix-changed notification fires only when it differs
// from the last one emitted, so re-seeking into the same fix is a no-op. A
// time before the log's first positioned fix yields ConnectedNoFix and emits
// nothing.
func (r *ReplaySource) Seek(t time.Time) error {
	return r.seek(t)
}

// SeekAt is Seek guarded by the generation the caller captured when it
// attached. Seeks against a superseded index are ignored rather than applied
// to whatever replaced it.
func (r *ReplaySource) SeekAt(generation uint64, t time.Time) error {
	if generation != r.generation {
		return nil
	}
	return r.seek(t)
}

func (r *ReplaySource) seek(t time.Time) error {
	if r.state == Disconnected {
		return ErrNotConnected
	}

	fix, ok := r.index.PositionAtOrBefore(t)
	if !ok {
		r.state = ConnectedNoFix
		r.hasCurrent = false
		return nil
	}

	r.state = Connected
	if r.hasCurrent && fix.Timestamp.Equal(r.current.Timestamp) {
		return nil
	}
	r.current = fix
	r.hasCurrent = true
	r.emit(fix)
	return nil
}

// Current returns the last fix resolved by a seek. ok is false while no fix
// is current.
func (r *ReplaySource) Current() (Fix, bool) {
	return r.current, r.hasCurrent
}

func (r *ReplaySource) emit(fix Fix) {
	if r.sentenceWriter != nil {
		for _, raw := range fix.Sentences {
			fmt.Fprintf(r.sentenceWriter, "%s\r\n", raw)
		}
	}
	for _, callback := range r.callbacks {
		callback(fix)
	}
}
