// Package control exposes the operator control surface: pause/resume
// a station, refill or adjust one dispenser, refill in bulk, and read
// the current state. Grounded on original_source/control_panel.c's
// pausar_banda/reanudar_banda/reabastecer_ingrediente family, served
// over plain net/http the way the teacher project's HTTP surfaces are
// (station-server, remote_station) rather than ncurses.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"industrial-4.0-demo/internal/catalog"
	"industrial-4.0-demo/internal/state"
	"industrial-4.0-demo/internal/supplier"
	"industrial-4.0-demo/internal/types"
	"industrial-4.0-demo/internal/util"
	"industrial-4.0-demo/internal/web"
)

// Server wires the Region's mutating operations to HTTP handlers.
type Server struct {
	region   *state.Region
	catalog  catalog.Catalog
	tracker  *web.Tracker
	hub      *web.Hub
	logger   *slog.Logger
	mux      *http.ServeMux
	supplier *supplier.Client
}

// NewServer builds a Server and registers every route. supplier may be
// nil or disabled (see supplier.New); refills then fall back to an
// immediate local refill-to-capacity.
func NewServer(region *state.Region, cat catalog.Catalog, tracker *web.Tracker, hub *web.Hub, logger *slog.Logger, sup *supplier.Client) *Server {
	s := &Server{region: region, catalog: cat, tracker: tracker, hub: hub, logger: logger, mux: http.NewServeMux(), supplier: sup}
	s.routes()
	return s
}

// traceContext extracts an inbound X-Trace-ID header, or mints a fresh
// one, injects it into the request context, and echoes it back on the
// response — mirroring the teacher's station-server/remote_station
// trace propagation.
func (s *Server) traceContext(w http.ResponseWriter, r *http.Request) (context.Context, *slog.Logger) {
	traceID := r.Header.Get("X-Trace-ID")
	if traceID == "" {
		traceID = util.NewTraceID()
	}
	w.Header().Set("X-Trace-ID", traceID)
	return util.ContextWithTraceID(r.Context(), traceID), s.logger.With("trace_id", traceID)
}

// refillDispenser tops up d, delegating to the configured supplier
// first and falling back to an immediate local refill when the
// supplier is disabled or the request fails (spec §4.7).
func (s *Server) refillDispenser(ctx context.Context, logger *slog.Logger, stationID int, d *types.Ingredient) {
	if s.supplier != nil {
		units := d.Capacity - d.Level()
		if units > 0 {
			delivered, err := s.supplier.RequestDelivery(ctx, stationID, d.Name, units)
			if err == nil {
				d.Adjust(delivered)
				return
			}
			if err != supplier.ErrDisabled {
				logger.Warn("supplier delivery failed, refilling locally", "error", err, "station_id", stationID, "ingredient", d.Name)
			}
		}
	}
	d.RefillToCapacity()
}

// Handler returns the http.Handler serving every registered route,
// suitable for http.Serve over a Unix listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /state", s.handleGetState)
	s.mux.HandleFunc("GET /menu", s.handleGetMenu)
	s.mux.HandleFunc("GET /ws", s.hub.ServeWs)

	s.mux.HandleFunc("POST /stations/{id}/pause", s.handlePause)
	s.mux.HandleFunc("POST /stations/{id}/resume", s.handleResume)
	s.mux.HandleFunc("POST /stations/{id}/refill", s.handleRefillStation)
	s.mux.HandleFunc("POST /stations/{id}/ingredients/{idx}/refill", s.handleRefillIngredient)
	s.mux.HandleFunc("POST /stations/{id}/ingredients/{idx}/adjust", s.handleAdjustIngredient)

	s.mux.HandleFunc("POST /refill-all", s.handleRefillAll)
	s.mux.HandleFunc("POST /refill-critical", s.handleRefillCritical)
	s.mux.HandleFunc("POST /refill-exhausted", s.handleRefillExhausted)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	counters, stations := s.region.Snapshot()
	writeJSON(w, http.StatusOK, web.Snapshot{Counters: counters, Stations: stations})
}

func (s *Server) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Recipes())
}

func (s *Server) stationFromPath(w http.ResponseWriter, r *http.Request) (id int, ok bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid station id")
		return 0, false
	}
	if s.region.StationByID(id) == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no station with id %d", id))
		return 0, false
	}
	return id, true
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	id, ok := s.stationFromPath(w, r)
	if !ok {
		return
	}
	st := s.region.StationByID(id)
	changed := st.Pause()
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.stationFromPath(w, r)
	if !ok {
		return
	}
	st := s.region.StationByID(id)
	changed := st.Resume()
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// handleRefillStation refills every dispenser at one station to
// capacity (control_panel.c's reabastecer_ingrediente applied to a
// whole banda).
func (s *Server) handleRefillStation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.stationFromPath(w, r)
	if !ok {
		return
	}
	ctx, logger := s.traceContext(w, r)
	st := s.region.StationByID(id)
	for _, d := range st.Dispensers() {
		s.refillDispenser(ctx, logger, id, d)
	}
	st.SetNeedsRefill(false)
	st.AppendLog("REFILLED (station)")
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRefillIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.stationFromPath(w, r)
	if !ok {
		return
	}
	st := s.region.StationByID(id)
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dispenser index")
		return
	}
	// Spec §4.7: an invalid dispenser index is a silent no-op, not an
	// error, since the operator surface polls a fixed layout that may
	// briefly disagree with a station's actual dispenser count.
	if d := st.DispenserAt(idx); d != nil {
		ctx, logger := s.traceContext(w, r)
		s.refillDispenser(ctx, logger, id, d)
		st.AppendLog(fmt.Sprintf("REFILLED %s", d.Name))
	}
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleAdjustIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.stationFromPath(w, r)
	if !ok {
		return
	}
	st := s.region.StationByID(id)
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dispenser index")
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if d := st.DispenserAt(idx); d != nil {
		d.Adjust(req.Delta)
	}
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleRefillAll refills every dispenser on every station.
func (s *Server) handleRefillAll(w http.ResponseWriter, r *http.Request) {
	ctx, logger := s.traceContext(w, r)
	for _, st := range s.region.Stations {
		for _, d := range st.Dispensers() {
			s.refillDispenser(ctx, logger, st.ID, d)
		}
		st.SetNeedsRefill(false)
		st.AppendLog("REFILLED (all)")
	}
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleRefillCritical refills every dispenser at or below the low
// threshold, regardless of whether the monitor's last scan has caught
// up to it yet (spec §4.7's refill_critical selection is a live
// re-check of dispenser levels, not a replay of the last
// classification).
func (s *Server) handleRefillCritical(w http.ResponseWriter, r *http.Request) {
	ctx, logger := s.traceContext(w, r)
	count := 0
	for _, st := range s.region.Stations {
		critical := false
		for _, d := range st.Dispensers() {
			if d.Level() <= types.DefaultLowThreshold {
				s.refillDispenser(ctx, logger, st.ID, d)
				count++
				critical = true
			}
		}
		if critical {
			st.SetNeedsRefill(false)
			st.AppendLog("REFILLED (critical)")
		}
	}
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]int{"refilled": count})
}

// handleRefillExhausted refills only dispensers currently at zero.
func (s *Server) handleRefillExhausted(w http.ResponseWriter, r *http.Request) {
	ctx, logger := s.traceContext(w, r)
	count := 0
	for _, st := range s.region.Stations {
		for _, d := range st.Dispensers() {
			if d.Level() == 0 {
				s.refillDispenser(ctx, logger, st.ID, d)
				count++
			}
		}
	}
	s.tracker.PushOnce()
	writeJSON(w, http.StatusOK, map[string]int{"refilled": count})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
