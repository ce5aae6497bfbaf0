package gps

import (
	"context"
	"time"
)

// TimeRange is one frame of the host's time-scrubbing controller
type TimeRange struct {
	Begin time.Time
	End   time.Time
}

// TimeController is the engine's view of the host's time-scrubbing surface:
// it notifies subscribers when the visible frame changes and adopts the
// extent of whatever log is loaded.
type TimeController interface {
	Subscribe(func(TimeRange))
	SetExtent(start, end time.Time)
}

// SyncAdapter translates controller frame changes into seeks on a replay
// source. It is a thin, stateless translation layer: each notification
// becomes exactly one seek at the frame's begin instant, with no buffering or
// rate limiting, so playback never lags the controller's reported time.
type SyncAdapter struct {
	source     *ReplaySource
	controller TimeController
	generation uint64
}

// NewSyncAdapter wires source to controller. The controller's extent is set
// from the loaded log (when one is connected) and every subsequent frame
// change becomes a seek.
func NewSyncAdapter(source *ReplaySource, controller TimeController) *SyncAdapter {
	a := &SyncAdapter{
		source:     source,
		controller: controller,
		generation: source.Generation(),
	}
	if start, end, ok := source.Extent(); ok {
		controller.SetExtent(start, end)
	}
	controller.Subscribe(a.rangeChanged)
	return a
}

// Connect forwards a host connect toggle, then reconfigures the controller's
// playback range to match the newly loaded log.
func (a *SyncAdapter) Connect(ctx context.Context, path string) error {
	if err := a.source.Connect(ctx, path); err != nil {
		return err
	}
	a.generation = a.source.Generation()
	if start, end, ok := a.source.Extent(); ok {
		a.controller.SetExtent(start, end)
	}
	return nil
}

// Disconnect forwards a host disconnect toggle
func (a *SyncAdapter) Disconnect() {
	a.source.Disconnect()
	a.generation = a.source.Generation()
}

// rangeChanged seeks to the frame's begin instant. Notifications referring to
// a superseded index are dropped by the generation guard.
func (a *SyncAdapter) rangeChanged(r TimeRange) {
	_ = a.source.SeekAt(a.generation, r.Begin)
}
