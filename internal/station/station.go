// Package station implements a single burger-assembly station: its
// dispensers, its rolling log, its state machine and the worker
// goroutine that executes assigned orders. Grounded on
// original_source/burger_types.h's Banda struct and
// burger_system.c's banda_worker, shaped the way the teacher
// project's internal/station package hands a station a logger and a
// step delay.
package station

import (
	"sync"
	"time"

	"industrial-4.0-demo/internal/fsm"
	"industrial-4.0-demo/internal/types"
)

// Station is one parallel assembly unit with its own dispensers, lock,
// condition, log ring and currently-assigned order slot.
type Station struct {
	ID   int
	Name string

	mu   sync.Mutex
	cond *sync.Cond

	active bool
	paused bool
	busy   bool

	current *types.Order
	fsm     *fsm.FSM

	dispensers   []*types.Ingredient
	dispenserIdx map[string]int // name -> index, built once at startup

	logs     []types.LogEntry
	logHead  int
	logCount int

	status            string
	currentIngredient string

	needsRefill bool
	lastAlertAt time.Time
	processed   int64

	completeMu sync.Mutex
	completeFn func(*types.Order)

	logger LineLogger
	// stepDelay is the per-ingredient pacing delay (tick_per_ingredient).
	stepDelay time.Duration
}

// LineLogger is the minimal logging surface a Station needs; satisfied
// by *slog.Logger.With(...).
type LineLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New creates a station with a fresh, full inventory for the given
// ingredient list, each capped at capacity.
func New(id int, name string, ingredientNames []string, capacity int, stepDelay time.Duration, logger LineLogger) *Station {
	s := &Station{
		ID:           id,
		Name:         name,
		active:       true,
		fsm:          fsm.New(name),
		dispensers:   make([]*types.Ingredient, len(ingredientNames)),
		dispenserIdx: make(map[string]int, len(ingredientNames)),
		logs:         make([]types.LogEntry, types.MaxLogEntriesPerStation),
		status:       "idle",
		stepDelay:    stepDelay,
		logger:       logger,
	}
	s.cond = sync.NewCond(&s.mu)
	for i, n := range ingredientNames {
		s.dispensers[i] = &types.Ingredient{Name: n, Capacity: capacity, Quantity: capacity}
		s.dispenserIdx[n] = i
	}
	s.appendLog("BANDA INITIATED", false)
	return s
}

func (s *Station) appendLog(text string, isAlert bool) {
	entry := types.LogEntry{Text: types.TruncateMessage(text), Timestamp: time.Now(), IsAlert: isAlert}
	idx := (s.logHead + s.logCount) % len(s.logs)
	if s.logCount == len(s.logs) {
		idx = s.logHead
		s.logHead = (s.logHead + 1) % len(s.logs)
	} else {
		s.logCount++
	}
	s.logs[idx] = entry
}

// Logs returns a snapshot of the log ring in chronological order.
func (s *Station) Logs() []types.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.LogEntry, s.logCount)
	for i := 0; i < s.logCount; i++ {
		out[i] = s.logs[(s.logHead+i)%len(s.logs)]
	}
	return out
}

// Dispenser returns the dispenser for name, or nil if the station
// carries no such ingredient.
func (s *Station) Dispenser(name string) *types.Ingredient {
	idx, ok := s.dispenserIdx[name]
	if !ok {
		return nil
	}
	return s.dispensers[idx]
}

// DispenserAt returns the dispenser at index, or nil if out of range
// (spec §4.7: an invalid dispenser index is a no-op).
func (s *Station) DispenserAt(idx int) *types.Ingredient {
	if idx < 0 || idx >= len(s.dispensers) {
		return nil
	}
	return s.dispensers[idx]
}

// Dispensers returns every dispenser, in fixed catalog order.
func (s *Station) Dispensers() []*types.Ingredient {
	return s.dispensers
}

// IsEligible reports whether the station is active, not paused, not
// busy, and holds at least one unit of every ingredient the order
// requires (spec §4.4 step 2, the plain part of the eligibility rule).
func (s *Station) IsEligible(ingredients []string) bool {
	s.mu.Lock()
	eligible := s.active && !s.paused && !s.busy
	s.mu.Unlock()
	if !eligible {
		return false
	}

	for _, name := range ingredients {
		d := s.Dispenser(name)
		if d == nil || !d.HasStock() {
			return false
		}
	}
	return true
}

// Assign moves an order into the station's slot under the station
// lock, marks it busy, and appends the ASSIGNED log line (spec §4.4
// step 3). It returns false if the station is no longer eligible by
// the time the caller acquires the lock (a race with pause/exhaustion).
func (s *Station) Assign(o *types.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.paused || s.busy {
		return false
	}
	o.AssignedStation = s.ID
	s.current = o
	s.busy = true
	s.status = "preparing " + o.RecipeName
	s.appendLog("ASSIGNED order for "+o.RecipeName, false)
	if err := s.fsm.Fire(fsm.EventAssign); err != nil {
		s.logger.Warn("fsm transition failed", "event", fsm.EventAssign, "error", err)
	}
	s.cond.Broadcast()
	return true
}

// Pause sets paused=true; idempotent (spec §8 law). Returns true if
// this call actually changed state.
func (s *Station) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return false
	}
	s.paused = true
	s.appendLog("PAUSED", false)
	if err := s.fsm.Fire(fsm.EventPause); err != nil {
		s.logger.Warn("fsm transition failed", "event", fsm.EventPause, "error", err)
	}
	return true
}

// Resume clears paused and wakes the worker; idempotent no-op on a
// non-paused station (spec §8 law).
func (s *Station) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return false
	}
	s.paused = false
	s.appendLog("RESUMED", false)
	if err := s.fsm.Fire(fsm.EventResume); err != nil {
		s.logger.Warn("fsm transition failed", "event", fsm.EventResume, "error", err)
	}
	s.cond.Broadcast()
	return true
}

// Shutdown marks the station inactive and wakes its worker so it can
// observe shutdown and exit (spec §4.8).
func (s *Station) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.cond.Broadcast()
}

// SetNeedsRefill is called by the monitor under the station lock.
func (s *Station) SetNeedsRefill(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsRefill = v
}

// NeedsRefill reports the monitor's last classification.
func (s *Station) NeedsRefill() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsRefill
}

// LastAlertAt / SetLastAlertAt back the monitor's 30s rate limit.
func (s *Station) LastAlertAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAlertAt
}

func (s *Station) SetLastAlertAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAlertAt = t
}

// AppendAlert appends a rate-limited alert log line (is_alert=true).
func (s *Station) AppendAlert(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLog(text, true)
}

// AppendLog appends a plain (non-alert) log line, e.g. REFILLED.
func (s *Station) AppendLog(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLog(text, false)
}

// Snapshot is a read-only view for the state feed and the monitor.
type Snapshot struct {
	ID                int                     `json:"id"`
	Name              string                  `json:"name"`
	Active            bool                    `json:"active"`
	Paused            bool                    `json:"paused"`
	Busy              bool                    `json:"busy"`
	Processed         int64                   `json:"processed"`
	Status            string                  `json:"status"`
	FSMState          string                  `json:"fsm_state"`
	CurrentIngredient string                  `json:"current_ingredient"`
	NeedsRefill       bool                    `json:"needs_refill"`
	CurrentOrderID    int64                   `json:"current_order_id,omitempty"`
	Dispensers        []types.IngredientView  `json:"dispensers"`
}

// Snapshot returns a consistent point-in-time view of the station.
func (s *Station) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID: s.ID, Name: s.Name, Active: s.active, Paused: s.paused, Busy: s.busy,
		Processed: s.processed, Status: s.status, CurrentIngredient: s.currentIngredient,
		NeedsRefill: s.needsRefill, FSMState: string(s.fsm.Current()),
	}
	if s.current != nil {
		snap.CurrentOrderID = s.current.ID
	}
	s.mu.Unlock()

	snap.Dispensers = make([]types.IngredientView, len(s.dispensers))
	for i, d := range s.dispensers {
		snap.Dispensers[i] = d.Snapshot()
	}
	return snap
}

// OnComplete lets the owner (internal/state) register a callback fired
// after a station finishes an order and has cleared its busy flag,
// used to bump total_processed under the global lock (spec §4.5).
func (s *Station) OnComplete(fn func(*types.Order)) {
	s.completeMu.Lock()
	defer s.completeMu.Unlock()
	s.completeFn = fn
}

func (s *Station) onComplete(o *types.Order) {
	s.completeMu.Lock()
	fn := s.completeFn
	s.completeMu.Unlock()
	if fn != nil {
		fn(o)
	}
}
