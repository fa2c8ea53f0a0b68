// Command ecs-stress runs generated systems over a randomly populated World
// and prints a timing and memory report.
package main

//go:generate go run ../ecs-stress-gen -components 16 -systems 8 -out generated.go

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plus3/kudo/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Float64("churn", 0.01, "Fraction of entities despawned and respawned every frame.")
	reservers := flag.Int("reservers", 4, "Goroutines reserving entity handles during population.")
	seed := flag.Uint64("seed", 1, "Random seed.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu, mem or trace.")
	verbose := flag.Bool("v", false, "Log World debug events.")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := log.Logger.Level(level)

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "trace":
		defer profile.Start(profile.TraceProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		logger.Fatal().Str("profile", *profileMode).Msg("unknown profile mode")
	}

	logger.Info().Msg("Starting ECS stress test...")

	// 1. Setup Registry, World, and Scheduler
	registry := ecs.NewComponentRegistry()
	RegisterAllGeneratedComponents(registry)
	world := ecs.NewWorld(registry,
		ecs.WithLogger(logger.With().Str("component", "world").Logger()),
		ecs.WithEntityCapacity(*entityCount),
	)
	ecs.SetResource(world, FrameStats{})
	scheduler := ecs.NewScheduler(world)
	RegisterAllGeneratedSystems(scheduler)
	scheduler.Register(&churnSystem{rng: rand.New(rand.NewPCG(*seed, *seed+1)), rate: *churn})

	// 2. Populate the World with initial entities
	logger.Info().Int("entities", *entityCount).Int("reservers", *reservers).Msg("Populating world...")
	rng := rand.New(rand.NewPCG(*seed, *seed))
	for _, e := range reserveConcurrently(world, *entityCount, *reservers) {
		if err := world.SpawnReserved(e, randomBundle(rng, rng.IntN(5)+1)...); err != nil {
			logger.Fatal().Err(err).Stringer("entity", e).Msg("spawn reserved entity")
		}
	}
	logger.Info().Int("archetypes", world.ArchetypeCount()).Msg("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     componentCount,
		Systems:        systemCount,
		GCPauseMetrics: *gcPauseMetrics,
	}

	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)

	logger.Info().Dur("duration", *duration).Msg("Running simulation...")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := scheduler.Once(float64(deltaTime) / float64(time.Second)); err != nil {
				report.Errors++
				logger.Warn().Err(err).Msg("frame failed")
			}

			report.Frames.Add(time.Since(updateStart))
		}
	}

	runtime.ReadMemStats(&memEnd)
	report.Memory = measureMemory(&memStart, &memEnd)
	report.World = world.CollectStats()
	report.Scheduler = scheduler.GetStats()
	if stats, err := ecs.GetResource[FrameStats](world); err == nil {
		report.Frame = *stats
	}

	logger.Info().Msg("Simulation finished.")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("Failed to generate report")
	}
	fmt.Println("--- End of Report ---")

	logger.Info().Msg("Stress test complete.")
}
