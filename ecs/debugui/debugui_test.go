package debugui

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/kudo/ecs"
)

type position struct {
	X, Y float32
}

type velocity struct {
	DX, DY float32
}

type label string

type body struct {
	position
	Mass  float64
	Owner ecs.Entity
	Alive bool
	Name  *string
}

func newTestWorld() *ecs.World {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[position](registry)
	ecs.RegisterComponent[velocity](registry)
	ecs.RegisterComponent[label](registry)
	ecs.RegisterComponent[body](registry)
	RegisterDebugUIComponents(registry)
	return ecs.NewWorld(registry)
}

func TestEntityBrowserCache(t *testing.T) {
	world := newTestWorld()
	a := world.Spawn(position{})
	b := world.Spawn(position{}, velocity{})
	c := world.Spawn(position{}, velocity{}, label("boss"))

	eb := NewEntityBrowserComponent(2)
	eb.rebuildCacheIfNeeded(world)
	require.Len(t, eb.cache.entities, 3)
	assert.Equal(t, []ecs.Entity{a, b, c}, []ecs.Entity{
		eb.cache.entities[0].Entity,
		eb.cache.entities[1].Entity,
		eb.cache.entities[2].Entity,
	})

	start, end := eb.pageBounds(len(eb.filteredEntities()))
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	loc, _ := world.Location(b)
	eb.FilterArchetype(loc.ArchetypeIndex)
	filtered := eb.filteredEntities()
	require.Len(t, filtered, 1)
	assert.Equal(t, b, filtered[0].Entity)

	eb.ClearFilter()
	eb.filterText = "label"
	filtered = eb.filteredEntities()
	require.Len(t, filtered, 1)
	assert.Equal(t, c, filtered[0].Entity)

	require.NoError(t, world.Despawn(a))
	eb.rebuildCacheIfNeeded(world)
	assert.Len(t, eb.cache.entities, 2)
}

func TestEntityBrowserSortDescending(t *testing.T) {
	world := newTestWorld()
	for range 3 {
		world.Spawn(position{})
	}

	eb := NewEntityBrowserComponent(10)
	eb.cache.sortAscending = false
	eb.rebuildCacheIfNeeded(world)

	for i := 1; i < len(eb.cache.entities); i++ {
		if compareEntities(eb.cache.entities[i-1].Entity, eb.cache.entities[i].Entity) < 0 {
			t.Errorf("entities not in descending order at %d", i)
		}
	}
}

func TestArchetypeViewerCache(t *testing.T) {
	world := newTestWorld()
	world.Spawn(position{})
	world.Spawn(position{})
	world.Spawn(position{}, velocity{})

	av := NewArchetypeViewerComponent()
	av.rebuildCacheIfNeeded(world)

	// empty archetype plus two populated ones
	require.Len(t, av.cache.archetypes, 3)
	assert.Equal(t, 2, av.cache.archetypes[0].EntityCount)
	assert.Equal(t, []string{"debugui.position"}, av.cache.archetypes[0].ComponentTypes)

	world.Spawn(position{}, velocity{})
	world.Spawn(position{}, velocity{})
	av.rebuildCacheIfNeeded(world)
	assert.Equal(t, 3, av.cache.archetypes[0].EntityCount)
	assert.Equal(t, []string{"debugui.position", "debugui.velocity"}, av.cache.archetypes[0].ComponentTypes)

	av.setSort(archetypeColumnIndex, true)
	for i, info := range av.cache.archetypes {
		assert.Equal(t, i, info.Index)
	}
}

func TestQueryDebuggerMatching(t *testing.T) {
	world := newTestWorld()
	world.Spawn(position{})
	world.Spawn(position{}, velocity{})
	world.Spawn(velocity{})

	qd := NewQueryDebuggerComponent()
	qd.rebuildCacheIfNeeded(world)
	assert.Contains(t, qd.cache.componentTypes, "debugui.position")

	qd.setTerm("debugui.position", ecs.FilterWith, true)
	assert.Len(t, qd.matchingArchetypes(world), 2)

	qd.setTerm("debugui.velocity", ecs.FilterWithout, true)
	matching := qd.matchingArchetypes(world)
	require.Len(t, matching, 1)
	assert.Equal(t, 1, matching[0].Len())

	qd.setTerm("debugui.velocity", ecs.FilterWith, false)
	assert.Len(t, qd.matchingArchetypes(world), 1, "clearing a different kind keeps the term")

	qd.setTerm("debugui.velocity", ecs.FilterWithout, false)
	assert.Len(t, qd.matchingArchetypes(world), 2)
}

func TestFieldCacheFlattensEmbedded(t *testing.T) {
	fc := newFieldCache()
	fields := fc.Fields(reflect.TypeFor[body]())

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"X", "Y", "Mass", "Owner", "Alive", "Name"}, names)
	assert.Equal(t, []int{0, 1}, fields[1].Path)
	assert.True(t, fields[5].IsPointer)
	assert.Equal(t, reflect.String, fields[5].Kind())

	scalar := fc.Fields(reflect.TypeFor[label]())
	require.Len(t, scalar, 1)
	assert.Empty(t, scalar[0].Path)
}

func TestInspectorEditField(t *testing.T) {
	world := newTestWorld()
	e := world.Spawn(body{Mass: 1}, label("a"))
	ci := NewComponentInspectorComponent()

	require.NoError(t, ci.EditField(world, e, reflect.TypeFor[body](), "Y", float64(4)))
	require.NoError(t, ci.EditField(world, e, reflect.TypeFor[body](), "Alive", true))
	require.NoError(t, ci.EditField(world, e, reflect.TypeFor[label](), "label", "b"))

	got, err := ecs.GetComponent[body](world, e)
	require.NoError(t, err)
	assert.Equal(t, float32(4), got.Y)
	assert.True(t, got.Alive)

	l, err := ecs.GetComponent[label](world, e)
	require.NoError(t, err)
	assert.Equal(t, label("b"), *l)

	assert.Error(t, ci.EditField(world, e, reflect.TypeFor[body](), "Name", "x"), "nil pointer field")
	assert.Error(t, ci.EditField(world, e, reflect.TypeFor[body](), "Missing", 1))
	assert.Error(t, ci.EditField(world, e, reflect.TypeFor[body](), "Mass", "heavy"))
	assert.ErrorIs(t, ci.EditField(world, e, reflect.TypeFor[velocity](), "DX", float64(1)), ecs.ErrNoMatchingComponent)
}

func TestSetFieldOverflow(t *testing.T) {
	var v struct{ Small int8 }
	field := reflect.ValueOf(&v).Elem().Field(0)

	require.NoError(t, setField(field, int64(12)))
	assert.Equal(t, int8(12), v.Small)
	assert.Error(t, setField(field, int64(1000)))
	assert.ErrorIs(t, setField(reflect.ValueOf(v).Field(0), int64(1)), errFieldNotSettable)
}

func TestPerformanceStatsRecord(t *testing.T) {
	ps := NewPerformanceStatsComponent(4)
	ps.record(0.004)
	avg := ps.record(0.004)
	assert.InDelta(t, 2.0, avg, 0.001)

	for range 4 {
		avg = ps.record(0.010)
	}
	assert.InDelta(t, 10.0, avg, 0.001)
}
