package control

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"industrial-4.0-demo/internal/state"
	"industrial-4.0-demo/internal/station"
)

// WatchSignals adapts original_source/burger_system.c's manejar_senal
// to Go's os/signal package: SIGINT/SIGTERM trigger the supplied
// shutdown callback; SIGUSR1 pauses one random station; SIGUSR2
// resumes every paused station; SIGCONT refills every station flagged
// needs_refill, or one random station if none are flagged (spec §4.8's
// re-specified CONT behavior, not the C original's blanket refill).
// It blocks until ctx is cancelled or a termination signal arrives.
func WatchSignals(ctx context.Context, region *state.Region, tracker interface{ PushOnce() }, shutdown func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGCONT)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				shutdown()
				return
			case syscall.SIGUSR1:
				if len(region.Stations) > 0 {
					st := region.Stations[rand.Intn(len(region.Stations))]
					st.Pause()
				}
			case syscall.SIGUSR2:
				for _, st := range region.Stations {
					st.Resume()
				}
			case syscall.SIGCONT:
				refillFlagged(region)
			}
			tracker.PushOnce()
		}
	}
}

// refillFlagged refills every station whose last monitor scan flagged
// it needs_refill, or one random station when none are flagged.
func refillFlagged(region *state.Region) {
	flagged := make([]*station.Station, 0, len(region.Stations))
	for _, st := range region.Stations {
		if st.NeedsRefill() {
			flagged = append(flagged, st)
		}
	}
	if len(flagged) == 0 && len(region.Stations) > 0 {
		flagged = []*station.Station{region.Stations[rand.Intn(len(region.Stations))]}
	}
	for _, st := range flagged {
		for _, d := range st.Dispensers() {
			d.RefillToCapacity()
		}
		st.SetNeedsRefill(false)
		st.AppendLog("REFILLED (signal)")
	}
}
