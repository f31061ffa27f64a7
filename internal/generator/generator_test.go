package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"industrial-4.0-demo/internal/catalog"
	"industrial-4.0-demo/internal/fifo"
	"industrial-4.0-demo/internal/types"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGeneratorEmitsFromCatalog(t *testing.T) {
	q := fifo.New(4)
	g := New(q, catalog.Default(), 10*time.Millisecond, 1, silentLogger())

	var generated *types.Order
	g.OnGenerate(func(o *types.Order) { generated = o })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if got, ok := q.TryDequeue(); ok {
			if got.AssignedStation != -1 {
				t.Errorf("expected a freshly generated order to be unassigned, got %d", got.AssignedStation)
			}
			if _, ok := catalog.Default().ByName(got.RecipeName); !ok {
				t.Errorf("generated order references unknown recipe %q", got.RecipeName)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("generator did not emit an order in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if generated == nil {
		t.Errorf("expected OnGenerate callback to fire")
	}
}

func TestGeneratorAssignsIncreasingIDs(t *testing.T) {
	q := fifo.New(10)
	g := New(q, catalog.Default(), 5*time.Millisecond, 2, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	var last int64 = -1
	for i := 0; i < 3; i++ {
		var got *types.Order
		deadline := time.After(2 * time.Second)
		for got == nil {
			if o, ok := q.TryDequeue(); ok {
				got = o
				break
			}
			select {
			case <-deadline:
				t.Fatalf("generator stalled")
			case <-time.After(5 * time.Millisecond):
			}
		}
		if got.ID <= last {
			t.Fatalf("expected strictly increasing order ids, got %d after %d", got.ID, last)
		}
		last = got.ID
	}
}
