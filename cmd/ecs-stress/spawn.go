package main

import (
	"math/rand/v2"
	"sync"

	"github.com/plus3/kudo/ecs"
)

// FrameStats is a resource updated by a subset of the generated systems.
type FrameStats struct {
	Matched int
}

// randomBundle returns n distinct generated components.
func randomBundle(rng *rand.Rand, n int) []any {
	n = min(n, componentCount)
	bundle := make([]any, 0, n)
	for _, idx := range rng.Perm(componentCount)[:n] {
		bundle = append(bundle, componentFactories[idx](rng))
	}
	return bundle
}

// reserveConcurrently reserves count entity handles from workers goroutines
// at once and returns them in no particular order.
func reserveConcurrently(world *ecs.World, count, workers int) []ecs.Entity {
	workers = max(workers, 1)
	reserved := make([][]ecs.Entity, workers)

	var wg sync.WaitGroup
	for w := range workers {
		share := count / workers
		if w < count%workers {
			share++
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]ecs.Entity, share)
			for i := range out {
				out[i] = world.Reserve()
			}
			reserved[w] = out
		}()
	}
	wg.Wait()

	all := make([]ecs.Entity, 0, count)
	for _, r := range reserved {
		all = append(all, r...)
	}
	return all
}

// churnSystem despawns a fraction of the live entities every frame and
// spawns the same number of fresh ones through the frame's command buffer.
type churnSystem struct {
	rng  *rand.Rand
	rate float64
}

func (s *churnSystem) Name() string { return "churn" }

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) error {
	if s.rate <= 0 {
		return nil
	}
	for e := range frame.World.Entities() {
		if s.rng.Float64() >= s.rate {
			continue
		}
		frame.Commands.Despawn(e)
		frame.Commands.Spawn(randomBundle(s.rng, s.rng.IntN(5)+1)...)
	}
	return nil
}
