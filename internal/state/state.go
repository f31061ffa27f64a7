// Package state implements the Shared State Region: the aggregate of
// every station, the order FIFO and the global counters, all guarded
// by a single global lock. Grounded on
// original_source/burger_types.h's DatosCompartidos struct, redesigned
// per spec §9 to live in one process's memory behind a Unix domain
// socket rather than POSIX shared memory (see SPEC_FULL.md §1).
package state

import (
	"strconv"
	"sync"
	"time"

	"industrial-4.0-demo/internal/fifo"
	"industrial-4.0-demo/internal/metrics"
	"industrial-4.0-demo/internal/station"
	"industrial-4.0-demo/internal/types"
)

// Region is the shared state every component reads from and mutates
// through. Its own lock (mu/cond) sits above every station lock and
// the FIFO's lock in the acquisition order (spec §5: global -> FIFO ->
// station -> dispenser).
type Region struct {
	Name string

	mu   sync.Mutex
	cond *sync.Cond

	FIFO     *fifo.FIFO
	Stations []*station.Station

	totalGenerated int64
	totalProcessed int64
	startedAt      time.Time
	active         bool
}

// New builds a Region over the given stations and FIFO, wiring each
// station's completion callback to bump total_processed under the
// global lock (spec §4.5).
func New(name string, stations []*station.Station, queue *fifo.FIFO) *Region {
	r := &Region{
		Name:      name,
		FIFO:      queue,
		Stations:  stations,
		startedAt: time.Now(),
		active:    true,
	}
	r.cond = sync.NewCond(&r.mu)

	for _, st := range stations {
		st := st
		st.OnComplete(func(o *types.Order) {
			r.recordProcessed(st.ID)
		})
	}
	return r
}

func (r *Region) recordProcessed(stationID int) {
	r.mu.Lock()
	r.totalProcessed++
	r.mu.Unlock()
	metrics.OrdersProcessedTotal.WithLabelValues(strconv.Itoa(stationID)).Inc()
	r.cond.Broadcast()
}

// RecordGenerated bumps total_generated; called by the generator's
// OnGenerate hook.
func (r *Region) RecordGenerated(*types.Order) {
	r.mu.Lock()
	r.totalGenerated++
	r.mu.Unlock()
	metrics.OrdersGeneratedTotal.Inc()
	r.cond.Broadcast()
}

// RecordTimeout is the dispatcher's OnTimeout hook. Timed-out orders
// are deliberately not folded into total_generated or total_processed
// (see DESIGN.md's Open Question decision); they are only surfaced via
// the orders_timeout_total metric.
func (r *Region) RecordTimeout(*types.Order) {
	metrics.OrdersTimeoutTotal.Inc()
}

// RecordAlert is the monitor's OnAlert hook.
func (r *Region) RecordAlert(stationID int, severe bool) {
	sev := "low"
	if severe {
		sev = "exhausted"
	}
	metrics.AlertsTotal.WithLabelValues(sev).Inc()
}

// Counters is a point-in-time snapshot of the global counters.
type Counters struct {
	TotalGenerated int64         `json:"total_generated"`
	TotalProcessed int64         `json:"total_processed"`
	QueueDepth     int           `json:"queue_depth"`
	QueueCapacity  int           `json:"queue_capacity"`
	Uptime         time.Duration `json:"uptime_ns"`
}

// Snapshot returns the counters plus every station's snapshot, all
// captured without holding two locks at once (each sub-snapshot takes
// and releases its own lock in the order global -> FIFO -> station).
func (r *Region) Snapshot() (Counters, []station.Snapshot) {
	r.mu.Lock()
	c := Counters{
		TotalGenerated: r.totalGenerated,
		TotalProcessed: r.totalProcessed,
		Uptime:         time.Since(r.startedAt),
	}
	r.mu.Unlock()

	_, _, size, capacity := r.FIFO.Snapshot()
	c.QueueDepth = size
	c.QueueCapacity = capacity
	metrics.QueueDepth.Set(float64(size))

	snaps := make([]station.Snapshot, len(r.Stations))
	for i, st := range r.Stations {
		snaps[i] = st.Snapshot()
		for _, d := range snaps[i].Dispensers {
			metrics.DispenserLevel.WithLabelValues(strconv.Itoa(st.ID), d.Name).Set(float64(d.Quantity))
		}
	}
	return c, snaps
}

// Shutdown marks the region inactive, drains the FIFO and stops every
// station's worker (spec §4.8).
func (r *Region) Shutdown() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()

	r.FIFO.DrainOnShutdown()
	for _, st := range r.Stations {
		st.Shutdown()
	}
	r.cond.Broadcast()
}

// StationByID finds a station by id, or nil.
func (r *Region) StationByID(id int) *station.Station {
	for _, st := range r.Stations {
		if st.ID == id {
			return st
		}
	}
	return nil
}

