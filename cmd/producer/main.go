// Command producer runs the burger production line: it owns the
// stations, the shared order FIFO, the order generator, the
// dispatcher and the inventory monitor, and serves the operator
// control surface over a Unix domain socket. Structured the way the
// teacher project's cmd/orchestrator/main.go wires its components.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"industrial-4.0-demo/internal/catalog"
	"industrial-4.0-demo/internal/config"
	"industrial-4.0-demo/internal/control"
	"industrial-4.0-demo/internal/dispatcher"
	"industrial-4.0-demo/internal/fifo"
	"industrial-4.0-demo/internal/generator"
	"industrial-4.0-demo/internal/monitor"
	"industrial-4.0-demo/internal/state"
	"industrial-4.0-demo/internal/station"
	"industrial-4.0-demo/internal/supplier"
	"industrial-4.0-demo/internal/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	fs := config.FlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			// pflag already printed usage to stderr.
			os.Exit(0)
		}
		logger.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		logger.Error("failed to load recipe catalog", "error", err)
		os.Exit(1)
	}

	if cfg.PrintMenu {
		printMenu(cat)
		return
	}

	logger.Info("=== burger production line starting ===",
		"stations", cfg.Stations, "tick_per_ingredient", cfg.TickPerIngredient(),
		"tick_between_orders", cfg.TickBetweenOrders())

	stations := make([]*station.Station, cfg.Stations)
	for i := 0; i < cfg.Stations; i++ {
		name := fmt.Sprintf("banda-%d", i)
		stations[i] = station.New(i, name, cfg.Ingredients, cfg.DispenserCapacity, cfg.TickPerIngredient(), logger.With("station", name))
	}

	queue := fifo.New(cfg.MaxQueue)
	region := state.New(cfg.RegionName, stations, queue)

	hub := web.NewHub(logger)
	go hub.Run()
	tracker := web.NewTracker(region, hub)

	gen := generator.New(queue, cat, cfg.TickBetweenOrders(), time.Now().UnixNano(), logger)
	gen.OnGenerate(region.RecordGenerated)

	disp := dispatcher.New(queue, stations, cfg.RetryBound, logger)
	disp.OnTimeout(region.RecordTimeout)
	for _, r := range cat.Recipes() {
		if r.StationRule != "" {
			disp.SetRule(r.Name, r.StationRule)
		}
	}

	mon := monitor.New(stations, logger)
	mon.OnAlert(region.RecordAlert)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, st := range stations {
		go st.RunWorker(ctx)
	}
	go gen.Run(ctx)
	go disp.Run(ctx)
	go mon.Run(ctx)

	stop := make(chan struct{})
	go tracker.Run(2*time.Second, stop)

	sup := supplier.New(cfg.SupplierEndpoint, logger)
	srv := control.NewServer(region, cat, tracker, hub, logger, sup)
	socketPath := socketPathFor(cfg.RegionName)
	listener, err := listenUnix(socketPath)
	if err != nil {
		logger.Error("failed to open control socket", "error", err, "path", socketPath)
		os.Exit(1)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.Handle("/", srv.Handler())

	httpServer := &http.Server{Handler: metricsMux}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("control server stopped unexpectedly", "error", err)
		}
	}()

	logger.Info("control surface listening", "socket", socketPath)

	control.WatchSignals(ctx, region, tracker, func() {
		logger.Info("shutdown signal received, draining")
		cancel()
		close(stop)
		_ = httpServer.Close()
		region.Shutdown()
		_ = os.Remove(socketPath)
	})

	counters, _ := region.Snapshot()
	logger.Info("production line stopped",
		"total_generated", counters.TotalGenerated, "total_processed", counters.TotalProcessed)
}

// socketPathFor derives a filesystem path for the Unix domain socket
// from the region name, mirroring the leading-slash POSIX shared
// memory name burger_system.c passed to shm_open (see SPEC_FULL.md §1
// for the redesign rationale).
func socketPathFor(regionName string) string {
	name := regionName
	for len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	if name == "" {
		name = "burger_system"
	}
	return fmt.Sprintf("/tmp/%s.sock", name)
}

// listenUnix creates the control socket, unlinking any stale socket
// file left behind by a prior, uncleanly-terminated run. This is the
// "create" side of the redesigned named-handle contract: only the
// producer creates and removes the socket file; the operator only
// dials it.
func listenUnix(path string) (net.Listener, error) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	return net.Listen("unix", path)
}

func printMenu(cat catalog.Catalog) {
	for _, r := range cat.Recipes() {
		fmt.Printf("%-24s $%.2f  %v\n", r.Name, r.Price, r.Ingredients)
	}
}
