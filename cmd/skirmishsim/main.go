package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"skirmish/ecs"
	"skirmish/ecs/component"
	"skirmish/scenario"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "scenarios/skirmish.yaml", "scenario file to run")
		seed         = flag.Int64("seed", 0, "override the scenario seed (0 keeps the file's seed)")
		duration     = flag.Float64("duration", 0, "override the scenario duration in seconds")
		watch        = flag.Bool("watch", false, "restart the run when the scenario or its scripts change")
		verbose      = flag.Bool("v", false, "log every simulation event")
	)
	flag.Parse()

	log.SetFlags(0)

	var watcher *scenario.Watcher
	if *watch {
		var err error
		watcher, err = scenario.NewWatcher(filepath.Dir(*scenarioPath))
		if err != nil {
			log.Fatalf("watch %s: %v", *scenarioPath, err)
		}
		defer watcher.Close()
	}

	for {
		restart, err := run(*scenarioPath, *seed, *duration, *verbose, watcher)
		if err != nil {
			log.Printf("run failed: %v", err)
			if watcher == nil {
				os.Exit(1)
			}
			// wait for an edit before trying again
			if _, ok := <-watcher.Events; !ok {
				return
			}
			restart = true
		}
		if !restart {
			return
		}
		log.Printf("scenario changed, restarting")
	}
}

// run steps one simulation to completion. With a watcher attached it returns
// restart=true as soon as a watched file changes.
func run(path string, seedOverride int64, durationOverride float64, verbose bool, watcher *scenario.Watcher) (bool, error) {
	spec, err := scenario.Load(path)
	if err != nil {
		return false, err
	}
	if seedOverride != 0 {
		spec.Seed = seedOverride
	}
	if durationOverride > 0 {
		spec.Duration = durationOverride
	}

	w, err := scenario.Build(spec)
	if err != nil {
		return false, err
	}

	runID := uuid.NewString()
	log.Printf("run %s: scenario %q seed=%d tick_rate=%d units=%d",
		runID, spec.Name, spec.Seed, spec.TickRate, len(spec.Units))

	dt := 1.0 / float64(spec.TickRate)
	for {
		if watcher != nil {
			select {
			case name, ok := <-watcher.Events:
				if ok {
					log.Printf("run %s: %s changed", runID, name)
					return true, nil
				}
			case err := <-watcher.Errors:
				log.Printf("run %s: watch error: %v", runID, err)
			default:
			}
		}

		w.Step(dt)
		logEvents(w, runID, verbose)

		if spec.Duration > 0 && w.Clock() >= spec.Duration {
			log.Printf("run %s: time limit reached at t=%.2f", runID, w.Clock())
			break
		}
		if done, winner := decided(w); done {
			log.Printf("run %s: decided at t=%.2f, %s", runID, w.Clock(), winner)
			break
		}
	}

	for f, n := range scenario.Survivors(w) {
		log.Printf("run %s: %s survivors=%d", runID, f, n)
	}
	return false, nil
}

func logEvents(w *ecs.World, runID string, verbose bool) {
	for _, ev := range w.Events().Drain() {
		switch data := ev.Data.(type) {
		case ecs.UnitDiedEvent:
			log.Printf("run %s: t=%.2f %s died", runID, data.At, unitName(w, data.Entity))
		case ecs.StateChangedEvent:
			if verbose {
				log.Printf("run %s: t=%.2f %s %s -> %s", runID, data.At, unitName(w, data.Entity), data.From, data.To)
			}
		case ecs.TargetAcquiredEvent:
			if verbose {
				log.Printf("run %s: t=%.2f %s targets %s (score %.2f)",
					runID, w.Clock(), unitName(w, data.Entity), unitName(w, data.Target), data.Score)
			}
		case ecs.OrderStatusEvent:
			if verbose {
				log.Printf("run %s: t=%.2f %s order %s: %s",
					runID, w.Clock(), unitName(w, data.Entity), data.Kind, data.Status)
			}
		}
	}
}

func unitName(w *ecs.World, e ecs.Entity) string {
	if u, ok := ecs.Get(w, e, component.UnitComponent); ok && u.Name != "" {
		return u.Name
	}
	return fmt.Sprintf("entity %s", e)
}

// decided reports whether at most one faction still has living units.
func decided(w *ecs.World) (bool, string) {
	counts := scenario.Survivors(w)
	living := 0
	var winner component.Faction
	for f, n := range counts {
		if n > 0 {
			living++
			winner = f
		}
	}
	switch living {
	case 0:
		return true, "mutual annihilation"
	case 1:
		return true, fmt.Sprintf("%s wins", winner)
	default:
		return false, ""
	}
}
