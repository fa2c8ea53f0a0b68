package ecs_test

import (
	"sync"
	"testing"

	"github.com/plus3/kudo/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesGenerations(t *testing.T) {
	entities := ecs.NewEntities(0)

	e := entities.NewEntity(&ecs.EntityLocation{ArchetypeIndex: 1, Row: 0})
	assert.Equal(t, ecs.Entity{Index: 0, Generation: 0}, e)
	assert.True(t, entities.Contains(e))

	loc, err := entities.Free(e)
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityLocation{ArchetypeIndex: 1, Row: 0}, loc)
	assert.False(t, entities.Contains(e))

	_, err = entities.Free(e)
	assert.ErrorIs(t, err, ecs.ErrEntityMissing)

	reused := entities.NewEntity(&ecs.EntityLocation{ArchetypeIndex: 2, Row: 5})
	assert.Equal(t, e.Index, reused.Index)
	assert.Equal(t, e.Generation+1, reused.Generation)
	assert.False(t, entities.Contains(e), "stale handle must stay invalid after reuse")

	_, ok := entities.Location(e)
	assert.False(t, ok)
	loc, ok = entities.Location(reused)
	assert.True(t, ok)
	assert.Equal(t, ecs.EntityLocation{ArchetypeIndex: 2, Row: 5}, loc)
}

func TestEntitiesReserve(t *testing.T) {
	t.Run("past the end", func(t *testing.T) {
		entities := ecs.NewEntities(0)
		entities.NewEntity(&ecs.EntityLocation{})

		a := entities.Reserve()
		b := entities.Reserve()
		assert.Equal(t, uint32(1), a.Index)
		assert.Equal(t, uint32(2), b.Index)
		assert.False(t, entities.Contains(a))
		assert.True(t, entities.IsReserved(a))
		assert.True(t, entities.IsReserved(b))

		require.NoError(t, entities.InstantiateReserved(a, ecs.EntityLocation{Row: 1}))
		assert.True(t, entities.Contains(a))
		assert.Equal(t, 2, entities.Len())

		c := entities.NewEntity(&ecs.EntityLocation{})
		assert.Equal(t, uint32(3), c.Index, "reserved indices must not be handed out again")
	})

	t.Run("reuses freed indices", func(t *testing.T) {
		entities := ecs.NewEntities(0)
		e := entities.NewEntity(&ecs.EntityLocation{})
		_, err := entities.Free(e)
		require.NoError(t, err)

		r := entities.Reserve()
		assert.Equal(t, e.Index, r.Index)
		assert.Equal(t, e.Generation+1, r.Generation)

		next := entities.Reserve()
		assert.NotEqual(t, r.Index, next.Index)

		require.NoError(t, entities.InstantiateReserved(r, ecs.EntityLocation{}))
		assert.ErrorIs(t, entities.InstantiateReserved(r, ecs.EntityLocation{}), ecs.ErrEntityMissing)
	})

	t.Run("stale handle cannot be instantiated", func(t *testing.T) {
		entities := ecs.NewEntities(0)
		r := entities.Reserve()
		stale := ecs.Entity{Index: r.Index, Generation: r.Generation + 1}
		assert.ErrorIs(t, entities.InstantiateReserved(stale, ecs.EntityLocation{}), ecs.ErrEntityMissing)
	})
}

func TestEntitiesLen(t *testing.T) {
	entities := ecs.NewEntities(0)
	a := entities.NewEntity(&ecs.EntityLocation{})
	entities.NewEntity(&ecs.EntityLocation{})
	assert.Equal(t, 2, entities.Len())

	r := entities.Reserve()
	assert.Equal(t, 2, entities.Len(), "reserved entities are not live")
	pending := entities.NewEntity(nil)
	assert.Equal(t, 2, entities.Len())

	require.NoError(t, entities.InstantiateReserved(r, ecs.EntityLocation{}))
	require.NoError(t, entities.InstantiateReserved(pending, ecs.EntityLocation{}))
	assert.Equal(t, 4, entities.Len())

	_, err := entities.Free(a)
	require.NoError(t, err)
	_, err = entities.Free(a)
	assert.ErrorIs(t, err, ecs.ErrEntityMissing)
	assert.Equal(t, 3, entities.Len(), "a stale free does not change the count")
}

func TestEntitiesConcurrentReserve(t *testing.T) {
	entities := ecs.NewEntities(0)
	var freed []ecs.Entity
	for range 64 {
		freed = append(freed, entities.NewEntity(&ecs.EntityLocation{}))
	}
	for _, e := range freed {
		_, err := entities.Free(e)
		require.NoError(t, err)
	}

	const goroutines = 8
	const perGoroutine = 100
	results := make([][]ecs.Entity, goroutines)

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				results[g] = append(results[g], entities.Reserve())
			}
		}()
	}
	wg.Wait()

	seen := make(map[ecs.Entity]bool)
	indices := make(map[uint32]bool)
	for _, batch := range results {
		for _, e := range batch {
			assert.False(t, seen[e], "duplicate handle %s", e)
			assert.False(t, indices[e.Index], "duplicate index %d", e.Index)
			seen[e] = true
			indices[e.Index] = true
		}
	}
	assert.Len(t, seen, goroutines*perGoroutine)

	for e := range seen {
		require.NoError(t, entities.InstantiateReserved(e, ecs.EntityLocation{}))
	}
	assert.Equal(t, goroutines*perGoroutine, entities.Len())
}

func TestEntityString(t *testing.T) {
	assert.Equal(t, "3v7", ecs.Entity{Index: 3, Generation: 7}.String())
}
