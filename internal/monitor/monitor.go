// Package monitor periodically scans every station's dispensers and
// classifies them as exhausted, low or healthy, raising rate-limited
// alerts. Grounded on original_source/burger_system.c's
// mostrar_estado_sistema, which prints "[BAJO!]" at quantity<=2 and
// "[AGOTADO!]" at quantity==0 for each dispenser.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"industrial-4.0-demo/internal/station"
	"industrial-4.0-demo/internal/types"
)

const (
	scanInterval  = 15 * time.Second
	alertCooldown = 30 * time.Second
)

// Monitor watches a fixed set of stations for low or exhausted
// dispensers.
type Monitor struct {
	stations []*station.Station
	logger   *slog.Logger

	// cooldown rate-limits repeat alerts per station, keyed by station
	// id, so a persistently-low dispenser doesn't spam the log every
	// scan (spec §4.6's 30s alert rate limit).
	cooldown *cache.Cache

	onAlert func(stationID int, severe bool)
}

// New builds a Monitor over stations.
func New(stations []*station.Station, logger *slog.Logger) *Monitor {
	return &Monitor{
		stations: stations,
		logger:   logger,
		cooldown: cache.New(alertCooldown, alertCooldown*2),
	}
}

// OnAlert registers a callback fired whenever a station's needs_refill
// classification is raised, used to bump the alerts_total metric.
func (m *Monitor) OnAlert(fn func(stationID int, severe bool)) {
	m.onAlert = fn
}

// Run scans every station on a fixed cadence until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scanAll()
		}
	}
}

func (m *Monitor) scanAll() {
	for _, st := range m.stations {
		m.scanOne(st)
	}
}

// scanOne classifies one station: any exhausted dispenser is severe;
// otherwise three or more low dispensers is a lesser alert; otherwise
// the station is healthy and needs_refill clears.
func (m *Monitor) scanOne(st *station.Station) {
	exhausted := []string{}
	low := []string{}

	for _, d := range st.Dispensers() {
		lvl := d.Level()
		if lvl == 0 {
			exhausted = append(exhausted, d.Name)
		} else if lvl <= types.DefaultLowThreshold {
			low = append(low, d.Name)
		}
	}

	switch {
	case len(exhausted) > 0:
		st.SetNeedsRefill(true)
		m.raise(st, true, fmt.Sprintf("ALERTA: BANDA %d SIN: %v", st.ID, exhausted))
	case len(low) >= types.LowDispenserCountForAlert:
		st.SetNeedsRefill(true)
		m.raise(st, false, fmt.Sprintf("AVISO: BANDA %d BAJO EN: %v", st.ID, low))
	default:
		st.SetNeedsRefill(false)
	}
}

func (m *Monitor) raise(st *station.Station, severe bool, message string) {
	key := strconv.Itoa(st.ID)
	if _, found := m.cooldown.Get(key); found {
		return
	}
	m.cooldown.SetDefault(key, struct{}{})

	st.SetLastAlertAt(time.Now())
	st.AppendAlert(message)
	m.logger.Warn(message, "station_id", st.ID, "severe", severe)
	if m.onAlert != nil {
		m.onAlert(st.ID, severe)
	}
}
