package main

import (
	"bytes"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/kudo/ecs"
)

func TestFrameTimesPercentile(t *testing.T) {
	var f FrameTimes
	assert.Equal(t, time.Duration(0), f.Percentile(50), "no frames")

	for _, ms := range []int{9, 1, 5, 3, 7, 2, 8, 4, 6, 10, 11} {
		f.Add(time.Duration(ms) * time.Millisecond)
	}
	assert.Equal(t, 11, f.Count())
	assert.Equal(t, time.Millisecond, f.Percentile(0))
	assert.Equal(t, 6*time.Millisecond, f.Percentile(50))
	assert.Equal(t, 11*time.Millisecond, f.Percentile(100))

	f.Add(20 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, f.Percentile(100), "resorts after Add")
}

func TestLargestArchetypes(t *testing.T) {
	breakdown := make([]ecs.ArchetypeStats, 0, topArchetypes+5)
	for i := range topArchetypes + 5 {
		breakdown = append(breakdown, ecs.ArchetypeStats{Index: i, EntityCount: i % 4})
	}
	r := &Report{World: &ecs.WorldStats{ArchetypeBreakdown: breakdown}}

	top := r.LargestArchetypes()
	require.Len(t, top, topArchetypes)
	assert.Equal(t, 3, top[0].EntityCount)
	assert.Equal(t, 3, top[0].Index, "ties keep archetype order")
	assert.Equal(t, 0, breakdown[0].EntityCount, "breakdown is not reordered")

	assert.Nil(t, (&Report{}).LargestArchetypes())
}

func TestReportGenerate(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	RegisterAllGeneratedComponents(registry)
	world := ecs.NewWorld(registry)
	world.Spawn(Component0{}, Component1{})

	r := &Report{
		Duration:   time.Second,
		Entities:   1,
		Components: componentCount,
		Systems:    systemCount,
		World:      world.CollectStats(),
		Frame:      FrameStats{Matched: 7},
	}
	r.Frames.Add(time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	assert.Contains(t, buf.String(), "**Live Entities:** 1")
	assert.Contains(t, buf.String(), "**Entities Matched (counting systems):** 7")
	assert.Contains(t, buf.String(), "| 1 | 1 | main.Component0, main.Component1 |")
	assert.Contains(t, buf.String(), "| 0 | 0 | (empty) |")
	assert.NotContains(t, buf.String(), "GC Cycles")
}

func TestRandomBundleIsDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		bundle := randomBundle(rng, 5)
		require.Len(t, bundle, 5)

		seen := map[reflect.Type]bool{}
		for _, c := range bundle {
			typ := reflect.TypeOf(c)
			if seen[typ] {
				t.Errorf("duplicate component %v in bundle", typ)
			}
			seen[typ] = true
		}
	}
}

func TestReserveConcurrently(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	RegisterAllGeneratedComponents(registry)
	world := ecs.NewWorld(registry)

	entities := reserveConcurrently(world, 103, 4)
	require.Len(t, entities, 103)

	seen := map[ecs.Entity]bool{}
	for _, e := range entities {
		assert.False(t, seen[e], "entity %v reserved twice", e)
		seen[e] = true
		require.NoError(t, world.SpawnReserved(e, Component2{}))
	}
	assert.Equal(t, 103, world.Len())
}

func TestGeneratedSystemsRun(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	RegisterAllGeneratedComponents(registry)
	world := ecs.NewWorld(registry)
	ecs.SetResource(world, FrameStats{})
	e := world.Spawn(Component0{Value: 1}, Component1{Value: 2})

	scheduler := ecs.NewScheduler(world)
	RegisterAllGeneratedSystems(scheduler)
	require.NoError(t, scheduler.Once(0.5))

	c0, err := ecs.GetComponent[Component0](world, e)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c0.Value)
	assert.Equal(t, 1, c0.Ticks)

	stats, err := ecs.GetResource[FrameStats](world)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Matched)
}
