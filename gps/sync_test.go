package gps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController stands in for the host's time-scrubbing controller
type fakeController struct {
	callback   func(TimeRange)
	start, end time.Time
	extentSet  int
}

func (c *fakeController) Subscribe(callback func(TimeRange)) { c.callback = callback }

func (c *fakeController) SetExtent(start, end time.Time) {
	c.start, c.end = start, end
	c.extentSet++
}

func (c *fakeController) frame(begin time.Time) {
	c.callback(TimeRange{Begin: begin, End: begin.Add(time.Second)})
}

func TestSyncAdapterReportsExtent(t *testing.T) {
	source := newConnectedSource(t, sampleLog)
	controller := &fakeController{}

	NewSyncAdapter(source, controller)

	require.Equal(t, 1, controller.extentSet)
	assert.True(t, controller.start.Equal(time.Date(2021, 3, 21, 10, 0, 1, 0, time.UTC)))
	assert.True(t, controller.end.Equal(time.Date(2021, 3, 21, 10, 0, 5, 0, time.UTC)))
}

func TestSyncAdapterSeeksOnFrameChange(t *testing.T) {
	source := newConnectedSource(t, sampleLog)
	controller := &fakeController{}
	NewSyncAdapter(source, controller)

	var emitted []Fix
	source.AddCallback(func(fix Fix) { emitted = append(emitted, fix) })

	controller.frame(time.Date(2021, 3, 21, 10, 0, 2, 0, time.UTC))
	require.Len(t, emitted, 1)
	assert.True(t, emitted[0].Timestamp.Equal(time.Date(2021, 3, 21, 10, 0, 2, 0, time.UTC)),
		"the frame's begin instant drives the seek")

	// same frame again: no duplicate emission
	controller.frame(time.Date(2021, 3, 21, 10, 0, 2, 0, time.UTC))
	assert.Len(t, emitted, 1)
}

func TestSyncAdapterConnectDisconnect(t *testing.T) {
	source, err := NewReplaySource(DefaultConfig())
	require.NoError(t, err)
	controller := &fakeController{}
	adapter := NewSyncAdapter(source, controller)

	assert.Equal(t, 0, controller.extentSet, "no extent while disconnected")

	require.NoError(t, adapter.Connect(context.Background(), writeLog(t, sampleLog)))
	assert.Equal(t, ConnectedNoFix, source.State())
	assert.Equal(t, 1, controller.extentSet)

	adapter.Disconnect()
	assert.Equal(t, Disconnected, source.State())
}

func TestSyncAdapterDropsStaleFrames(t *testing.T) {
	source := newConnectedSource(t, sampleLog)
	controller := &fakeController{}
	NewSyncAdapter(source, controller)

	var emitted int
	source.AddCallback(func(Fix) { emitted++ })

	// the host disconnects behind the adapter's back; its captured generation
	// is now stale, so pending frame notifications must be ignored
	source.Disconnect()
	require.NoError(t, source.Connect(context.Background(), writeLog(t, sampleLog)))

	controller.frame(time.Date(2021, 3, 21, 10, 0, 2, 0, time.UTC))
	assert.Zero(t, emitted)
}

func TestSyncAdapterConnectFailureKeepsController(t *testing.T) {
	source, err := NewReplaySource(DefaultConfig())
	require.NoError(t, err)
	controller := &fakeController{}
	adapter := NewSyncAdapter(source, controller)

	require.Error(t, adapter.Connect(context.Background(), "/nonexistent/track.nmea"))
	assert.Equal(t, 0, controller.extentSet)
	assert.Equal(t, Disconnected, source.State())
}
