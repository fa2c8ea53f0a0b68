package ecs_test

import (
	"fmt"
	"testing"

	"github.com/plus3/kudo/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	world := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkSpawnWithMultipleComponents(b *testing.B) {
	world := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		world.Spawn(
			Position{X: 1.0, Y: 2.0},
			Velocity{DX: 0.5, DY: 0.5},
			Health{Current: 100, Max: 100},
			Name{Value: "Entity"},
		)
	}
}

func BenchmarkDespawn(b *testing.B) {
	world := newTestWorld()

	ids := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = world.Despawn(ids[i])
	}
}

func BenchmarkReserve(b *testing.B) {
	world := newTestWorld()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = world.Reserve()
		}
	})
}

func BenchmarkGetComponent(b *testing.B) {
	world := newTestWorld()

	id := world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.GetComponent[Position](world, id)
	}
}

func BenchmarkAddComponent(b *testing.B) {
	world := newTestWorld()

	ids := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = world.Spawn(Position{X: 1.0, Y: 2.0})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = world.AddComponent(ids[i], Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkRemoveComponent(b *testing.B) {
	world := newTestWorld()

	ids := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.RemoveComponent[Velocity](world, ids[i])
	}
}

type PosVel struct {
	*Position
	*Velocity `ecs:"read"`
}

func BenchmarkQueryGet(b *testing.B) {
	world := newTestWorld()

	query := ecs.NewQuery[PosVel](world)
	id := world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = query.Get(id)
	}
}

func BenchmarkQueryIter(b *testing.B) {
	for _, size := range []int{1000, 10000} {
		b.Run(fmt.Sprintf("entities=%d", size), func(b *testing.B) {
			world := newTestWorld()
			for i := 0; i < size; i++ {
				world.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
			}

			query := ecs.NewQuery[PosVel](world)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for _, pv := range query.Iter() {
					_ = pv
				}
			}
		})
	}
}

// BenchmarkQueryFragmented spreads matching entities over many archetypes
// next to many non-matching ones.
func BenchmarkQueryFragmented(b *testing.B) {
	world := newTestWorld()
	extras := []any{Name{}, Health{}, AI{}, Score(0), Tag(""), Temperature(0), TestA(""), TestB("")}

	for i := 0; i < 1<<len(extras); i++ {
		bundle := []any{Position{}}
		if i%2 == 0 {
			bundle = append(bundle, Velocity{})
		}
		for bit, extra := range extras {
			if i&(1<<bit) != 0 {
				bundle = append(bundle, extra)
			}
		}
		for range 8 {
			world.Spawn(bundle...)
		}
	}

	query := ecs.NewQuery[PosVel](world)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pv := range query.Iter() {
			_ = pv
		}
	}
}

func BenchmarkMixedOperations(b *testing.B) {
	world := newTestWorld()
	query := ecs.NewQuery[PosVel](world)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := world.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
		_, _ = ecs.GetComponent[Position](world, id)
		_ = world.AddComponent(id, Health{Current: 100, Max: 100})
		_, _ = query.Get(id)
		_ = world.Despawn(id)
	}
}

type benchMovementSystem struct {
	Entities ecs.Query[PosVel]
}

func (s *benchMovementSystem) Execute(frame *ecs.UpdateFrame) error {
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
	return nil
}

type benchHealthSystem struct {
	Entities ecs.Query[struct {
		*Health
	}]
}

func (s *benchHealthSystem) Execute(frame *ecs.UpdateFrame) error {
	for item := range s.Entities.Values() {
		if item.Health.Current < item.Health.Max {
			item.Health.Current += int(1.0 * float32(frame.DeltaTime))
		}
	}
	return nil
}

func BenchmarkSchedulerOnce(b *testing.B) {
	world := newTestWorld()

	for i := 0; i < 1000; i++ {
		world.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}

	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&benchMovementSystem{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scheduler.Once(0.016)
	}
}

func BenchmarkSchedulerMultipleSystems(b *testing.B) {
	world := newTestWorld()

	for i := 0; i < 1000; i++ {
		world.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5}, Health{Current: 50, Max: 100})
	}

	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&benchMovementSystem{})
	scheduler.Register(&benchHealthSystem{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scheduler.Once(0.016)
	}
}

func BenchmarkFuncSystemRun(b *testing.B) {
	world := newTestWorld()
	for i := 0; i < 1000; i++ {
		world.Spawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}
	sys := ecs.MustIntoSystem(moveSystem)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sys.Run(world)
	}
}
