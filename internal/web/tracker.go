package web

import (
	"time"

	"industrial-4.0-demo/internal/state"
	"industrial-4.0-demo/internal/station"
)

// Snapshot is the JSON document broadcast to every connected client
// and served from GET /state, grounded on the teacher's GlobalState.
type Snapshot struct {
	Counters state.Counters      `json:"counters"`
	Stations []station.Snapshot  `json:"stations"`
	AsOf     time.Time           `json:"as_of"`
}

// Tracker periodically pulls a Region's snapshot and broadcasts it
// over the Hub, mirroring the teacher's StateTracker push pattern but
// sourced from a poll instead of individual events, since Region has
// no per-mutation event stream (see DESIGN.md's dropped event bus).
type Tracker struct {
	region *state.Region
	hub    *Hub
}

// NewTracker builds a Tracker over region, broadcasting through hub.
func NewTracker(region *state.Region, hub *Hub) *Tracker {
	return &Tracker{region: region, hub: hub}
}

// PushOnce takes one snapshot of region and broadcasts it immediately;
// used both by the periodic ticker in Run and by control-surface
// handlers so a pause/resume/refill is reflected without waiting for
// the next tick.
func (t *Tracker) PushOnce() {
	counters, stations := t.region.Snapshot()
	t.hub.BroadcastState(Snapshot{
		Counters: counters,
		Stations: stations,
		AsOf:     time.Now(),
	})
}

// Run pushes a snapshot on a fixed cadence until stop is closed.
func (t *Tracker) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.PushOnce()
		}
	}
}
