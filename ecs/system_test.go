package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/kudo/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movers = ecs.Query[struct {
	*Position
	*Velocity `ecs:"read"`
}]

func moveSystem(q *movers) {
	for item := range q.Values() {
		item.Position.X += item.Velocity.DX
		item.Position.Y += item.Velocity.DY
	}
}

func TestIntoSystemRun(t *testing.T) {
	world := newTestWorld()
	e := world.Spawn(Position{X: 1, Y: 1}, Velocity{DX: 2, DY: 3})

	sys, err := ecs.IntoSystem(moveSystem)
	require.NoError(t, err)
	assert.Contains(t, sys.Name(), "moveSystem")

	require.NoError(t, sys.Run(world))
	require.NoError(t, sys.Run(world))

	pos, err := ecs.GetComponent[Position](world, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 5, Y: 7}, *pos)
}

func TestIntoSystemMissingComponent(t *testing.T) {
	world := newTestWorld()

	sys := ecs.MustIntoSystem(moveSystem)
	err := sys.Run(world)
	assert.ErrorIs(t, err, ecs.ErrNoMatchingComponent)
	assert.Contains(t, err.Error(), "Position")

	world.Spawn(Position{}, Velocity{})
	assert.NoError(t, sys.Run(world))
}

func TestIntoSystemEmptyArchetypeIsEnough(t *testing.T) {
	world := newTestWorld()
	e := world.Spawn(Position{}, Velocity{})
	require.NoError(t, world.Despawn(e))

	sys := ecs.MustIntoSystem(moveSystem)
	assert.NoError(t, sys.Run(world), "a type that has ever been stored is not an error")
}

func TestIntoSystemCall(t *testing.T) {
	world := newTestWorld()
	world.Spawn(Health{Current: 3})
	world.Spawn(Health{Current: 4})

	sys := ecs.MustIntoSystem(func(q *ecs.Query[struct {
		*Health `ecs:"read"`
	}]) (int, error) {
		total := 0
		for item := range q.Values() {
			total += item.Current
		}
		return total, nil
	})

	out, err := sys.Call(world)
	require.NoError(t, err)
	assert.Equal(t, 7, out)
}

func TestIntoSystemReturnsError(t *testing.T) {
	world := newTestWorld()
	boom := errors.New("boom")

	sys := ecs.MustIntoSystem(func() error { return boom })
	assert.ErrorIs(t, sys.Run(world), boom)

	_, err := ecs.MustIntoSystem(func() (string, error) { return "", boom }).Call(world)
	assert.ErrorIs(t, err, boom)
}

func TestIntoSystemExclusiveWorld(t *testing.T) {
	world := newTestWorld()

	sys := ecs.MustIntoSystem(func(w *ecs.World) error {
		w.Spawn(Name{Value: "direct"})
		return nil
	})
	require.NoError(t, sys.Run(world))
	assert.Equal(t, 1, world.Len())
}

func TestIntoSystemCommands(t *testing.T) {
	world := newTestWorld()
	e := world.Spawn(Position{})

	sys := ecs.MustIntoSystem(func(q *ecs.Query[struct{ *Position }], cmd *ecs.Commands, frame *ecs.UpdateFrame) {
		assert.Same(t, cmd, frame.Commands)
		for id := range q.Iter() {
			cmd.Despawn(id)
		}
		cmd.Spawn(Name{Value: "spawned"})
	})

	require.NoError(t, sys.Run(world))
	assert.False(t, world.Contains(e))
	assert.Equal(t, 1, world.Len())
}

func TestIntoSystemResource(t *testing.T) {
	world := newTestWorld()

	sys := ecs.MustIntoSystem(func(res *ecs.Res[Resources]) {
		res.Get().Gold += 10
	})

	err := sys.Run(world)
	assert.ErrorIs(t, err, ecs.ErrNoMatchingComponent, "missing resource")

	ecs.SetResource(world, Resources{Gold: 5})
	require.NoError(t, sys.Run(world))

	res, err := ecs.GetResource[Resources](world)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Gold)
}

func TestIntoSystemRebindsWorld(t *testing.T) {
	a := newTestWorld()
	b := newTestWorld()
	a.Spawn(Position{}, Velocity{DX: 1})
	eb := b.Spawn(Position{}, Velocity{DX: 5})

	sys := ecs.MustIntoSystem(moveSystem)
	require.NoError(t, sys.Run(a))
	require.NoError(t, sys.Run(b))

	pos, err := ecs.GetComponent[Position](b, eb)
	require.NoError(t, err)
	assert.Equal(t, float32(5), pos.X)
}

func TestIntoSystemInvalidSignatures(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"not a function", 42},
		{"nil function", (func())(nil)},
		{"world with other params", func(*ecs.World, *ecs.Commands) {}},
		{"unsupported param", func(int) {}},
		{"query by value", func(ecs.Query[struct{ *Position }]) {}},
		{"non-error result", func() int { return 0 }},
		{"second result not error", func() (int, int) { return 0, 0 }},
		{"too many results", func() (int, int, error) { return 0, 0, nil }},
		{"variadic", func(...*ecs.Commands) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ecs.IntoSystem(tt.fn)
			assert.ErrorIs(t, err, ecs.ErrInvalidSystem)
		})
	}

	assert.Panics(t, func() { ecs.MustIntoSystem(42) })
}
