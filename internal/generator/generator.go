// Package generator produces new orders on a fixed cadence, choosing a
// random recipe from the catalog and pushing it onto the shared FIFO.
// Grounded on original_source/burger_system.c's generador_ordenes
// thread loop, structured as the teacher's cmd/orchestrator
// simulateTasks goroutine.
package generator

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"industrial-4.0-demo/internal/catalog"
	"industrial-4.0-demo/internal/fifo"
	"industrial-4.0-demo/internal/types"
)

// Generator emits new orders onto a FIFO at a fixed cadence.
type Generator struct {
	queue    *fifo.FIFO
	catalog  catalog.Catalog
	interval time.Duration
	logger   *slog.Logger
	rng      *rand.Rand

	nextID    int64
	onGenerate func(*types.Order)
}

// New builds a Generator. seed lets tests get deterministic recipe
// selection; production callers should pass time.Now().UnixNano().
func New(queue *fifo.FIFO, cat catalog.Catalog, interval time.Duration, seed int64, logger *slog.Logger) *Generator {
	return &Generator{
		queue:    queue,
		catalog:  cat,
		interval: interval,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
		nextID:   1,
	}
}

// OnGenerate registers a callback fired after each order is enqueued,
// used to bump the total_generated counter under the global lock.
func (g *Generator) OnGenerate(fn func(*types.Order)) {
	g.onGenerate = fn
}

// Run emits one order every interval until ctx is cancelled. Enqueue
// blocks when the FIFO is full, providing the backpressure spec §4.3
// requires instead of dropping orders.
func (g *Generator) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.generateOne(ctx)
		}
	}
}

func (g *Generator) generateOne(ctx context.Context) {
	recipe, ok := g.catalog.Random(g.rng)
	if !ok {
		g.logger.Warn("order generation skipped: catalog is empty")
		return
	}

	id := atomic.AddInt64(&g.nextID, 1) - 1
	order := &types.Order{
		ID:              id,
		RecipeName:      recipe.Name,
		Ingredients:     append([]string(nil), recipe.Ingredients...),
		CreatedAt:       time.Now(),
		AssignedStation: -1,
	}

	if !g.queue.Enqueue(order) {
		// FIFO closed under us mid-shutdown; nothing left to do.
		return
	}

	g.logger.Info("order generated", "order_id", order.ID, "recipe", order.RecipeName)
	if g.onGenerate != nil {
		g.onGenerate(order)
	}
}
