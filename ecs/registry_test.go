package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/kudo/ecs"
	"github.com/stretchr/testify/assert"
)

func TestRegisterComponent(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	pos := ecs.RegisterComponent[Position](registry)
	vel := ecs.RegisterComponent[Velocity](registry)
	assert.Equal(t, ecs.ComponentID(0), pos)
	assert.Equal(t, ecs.ComponentID(1), vel)
	assert.Equal(t, pos, ecs.RegisterComponent[Position](registry), "registration is idempotent")
	assert.Equal(t, 2, registry.Len())

	id, ok := registry.ID(reflect.TypeFor[Velocity]())
	assert.True(t, ok)
	assert.Equal(t, vel, id)

	_, ok = ecs.ComponentIDOf[Health](registry)
	assert.False(t, ok)

	assert.Equal(t, reflect.TypeFor[Position](), registry.Type(pos))
	assert.Equal(t, "ecs_test.Position", registry.Name(pos))
	assert.Nil(t, registry.Type(42))
	assert.Equal(t, "<unregistered>", registry.Name(42))
}

func TestRegisterComponentRejectsReferenceKinds(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	assert.Panics(t, func() { ecs.RegisterComponent[*Position](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[map[string]int](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[func()](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[any](registry) })
	assert.Equal(t, 0, registry.Len())
}

func TestSharedRegistry(t *testing.T) {
	registry := newTestRegistry()
	a := ecs.NewWorld(registry)
	b := ecs.NewWorld(registry)

	a.Spawn(Position{})
	assert.Equal(t, 2, a.ArchetypeCount())
	assert.Equal(t, 1, b.ArchetypeCount(), "archetypes are per world")
	assert.Same(t, a.Registry(), b.Registry())
}
