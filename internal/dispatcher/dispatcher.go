// Package dispatcher implements the assignment loop that moves orders
// out of the shared FIFO and onto an eligible station. Grounded on
// original_source/burger_system.c's verificar_ingredientes_disponibles
// scan-and-check loop, restructured per spec §4.4 into its own
// component with the station scan order fixed at ascending id.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antonmedv/expr"

	"industrial-4.0-demo/internal/fifo"
	"industrial-4.0-demo/internal/station"
	"industrial-4.0-demo/internal/types"
)

const (
	pollInterval  = 200 * time.Millisecond
	retryInterval = 3 * time.Second
)

// RuleEnv is the environment an order's optional station rule is
// evaluated against, mirroring the teacher's evaluateRule env shape
// but keyed on station and order instead of product.
type RuleEnv struct {
	Station station.Snapshot `expr:"station"`
	Order   types.Order      `expr:"order"`
}

// Dispatcher pulls orders from a FIFO and hands them to the first
// eligible station in ascending id order.
type Dispatcher struct {
	queue      *fifo.FIFO
	stations   []*station.Station
	retryBound int
	logger     *slog.Logger

	onTimeout func(*types.Order)
	rules     map[string]string // recipe name -> compiled rule source
}

// New builds a Dispatcher over stations, scanned in the slice's order
// (callers should pass stations sorted by ascending ID).
func New(queue *fifo.FIFO, stations []*station.Station, retryBound int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		stations:   stations,
		retryBound: retryBound,
		logger:     logger,
		rules:      make(map[string]string),
	}
}

// SetRule registers an optional expr boolean rule narrowing which
// stations are eligible for orders of the given recipe (SPEC_FULL §4.4).
func (d *Dispatcher) SetRule(recipeName, rule string) {
	d.rules[recipeName] = rule
}

// OnTimeout registers a callback fired when an order exceeds its retry
// bound and is dropped (spec §4.4's TIMEOUT case).
func (d *Dispatcher) OnTimeout(fn func(*types.Order)) {
	d.onTimeout = fn
}

// Run drains the FIFO until ctx is cancelled. It never blocks
// indefinitely: an empty queue yields a short poll sleep instead of a
// blocking dequeue, so shutdown via ctx is always responsive.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		order, ok := d.queue.TryDequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
			continue
		}

		d.dispatch(ctx, order)
	}
}

// dispatch scans stations in order for one eligible for order, assigns
// it there, or requeues/drops per the retry policy.
func (d *Dispatcher) dispatch(ctx context.Context, order *types.Order) {
	for _, st := range d.stations {
		if !st.IsEligible(order.Ingredients) {
			continue
		}
		if !d.ruleAllows(st, order) {
			continue
		}
		if st.Assign(order) {
			return
		}
	}

	order.AssignmentAttempt++
	if order.AssignmentAttempt >= d.retryBound {
		d.logger.Warn("order TIMEOUT: no station became eligible in time",
			"order_id", order.ID, "recipe", order.RecipeName, "attempts", order.AssignmentAttempt)
		if d.onTimeout != nil {
			d.onTimeout(order)
		}
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(retryInterval):
	}
	d.queue.Requeue(order)
}

// ruleAllows evaluates the recipe's optional station rule, if any.
// An empty or unregistered rule imposes no restriction. A rule that
// fails to compile or run is logged and treated as non-restrictive,
// since a bad rule config must never wedge dispatch entirely.
func (d *Dispatcher) ruleAllows(st *station.Station, order *types.Order) bool {
	rule, ok := d.rules[order.RecipeName]
	if !ok || rule == "" {
		return true
	}

	env := map[string]interface{}{
		"station": st.Snapshot(),
		"order":   *order,
	}
	program, err := expr.Compile(rule, expr.Env(env))
	if err != nil {
		d.logger.Error("station rule compilation failed", "recipe", order.RecipeName, "error", err)
		return true
	}
	result, err := expr.Run(program, env)
	if err != nil {
		d.logger.Error("station rule evaluation failed", "recipe", order.RecipeName, "error", err)
		return true
	}
	allowed, ok := result.(bool)
	if !ok {
		d.logger.Error("station rule did not evaluate to a boolean", "recipe", order.RecipeName, "result", fmt.Sprintf("%v", result))
		return true
	}
	return allowed
}
