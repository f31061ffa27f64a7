package station

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"industrial-4.0-demo/internal/fsm"
	"industrial-4.0-demo/internal/metrics"
	"industrial-4.0-demo/internal/types"
)

// RunWorker is the per-station worker goroutine: waits for an
// assignment (blocking on the station condition while unassigned or
// paused, spec §4.5/§5), processes it step by step, then loops.
// Grounded on burger_system.c's banda_worker.
func (s *Station) RunWorker(ctx context.Context) {
	for {
		s.mu.Lock()
		for s.active && (s.paused || !s.busy) {
			// Reflect the reason we're about to block in the FSM before
			// waiting, so Snapshot's fsm_state matches why the worker is
			// idle instead of lagging one event behind. A pause that
			// arrived mid-order already self-looped Processing/Finalizing
			// (see internal/fsm); this is where it becomes visible, once
			// the worker actually reaches Idle between orders.
			switch {
			case s.paused && s.fsm.Current() != fsm.StatePaused:
				if err := s.fsm.Fire(fsm.EventPause); err != nil {
					s.logger.Warn("fsm transition failed", "event", fsm.EventPause, "error", err)
				}
			case !s.paused && s.fsm.Current() == fsm.StateIdle:
				if err := s.fsm.Fire(fsm.EventWait); err != nil {
					s.logger.Warn("fsm transition failed", "event", fsm.EventWait, "error", err)
				}
			}
			s.cond.Wait()
		}
		if !s.active {
			s.mu.Unlock()
			return
		}
		order := s.current
		s.mu.Unlock()

		assignedAt := time.Now()
		s.processOrder(ctx, order)
		metrics.StationProcessingDuration.WithLabelValues(strconv.Itoa(s.ID)).Observe(time.Since(assignedAt).Seconds())

		s.mu.Lock()
		s.busy = false
		s.current = nil
		s.processed++
		s.status = "idle"
		s.appendLog(fmt.Sprintf("COMPLETED order %s", order.RecipeName), false)
		if err := s.fsm.Fire(fsm.EventComplete); err != nil {
			s.logger.Warn("fsm transition failed", "event", fsm.EventComplete, "error", err)
		}
		s.mu.Unlock()

		order.Completed = true
		s.onComplete(order)
	}
}

// processOrder consumes ingredients up front, then paces through the
// visible assembly steps (spec §4.5's processing algorithm). Inventory
// reservation happens before the step loop and is not transactional
// with it (spec's Open Question, preserved as-is — see DESIGN.md).
func (s *Station) processOrder(ctx context.Context, order *types.Order) {
	consumed := make([]bool, len(order.Ingredients))
	for i, name := range order.Ingredients {
		d := s.Dispenser(name)
		if d == nil {
			// Defensive: dispatcher pre-checked, but the recipe may
			// name an ingredient this station doesn't carry. The step
			// is skipped; the order still advances visibly.
			continue
		}
		consumed[i] = d.TryConsumeOne()
	}

	for i, name := range order.Ingredients {
		s.mu.Lock()
		order.CurrentStep = i + 1
		s.currentIngredient = name
		s.status = "adding " + name
		s.appendLog("ADDING "+name, false)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.stepDelay):
		}
	}
	_ = consumed // recorded for defensiveness; not otherwise surfaced

	s.mu.Lock()
	s.status = "finalizing"
	s.appendLog("FINISHED order "+order.RecipeName, false)
	if err := s.fsm.Fire(fsm.EventFinalize); err != nil {
		s.logger.Warn("fsm transition failed", "event", fsm.EventFinalize, "error", err)
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}
