package ecs

import (
	"errors"
	"reflect"

	"github.com/rotisserie/eris"
)

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the World while systems iterate it.
type Commands struct {
	spawns   []spawnCommand
	despawns []Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []deferCommand
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func(w *World)
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    Entity
	component any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Defer queues a function to run against the World after every other command.
func (c *Commands) Defer(fn func(w *World)) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Despawn queues an entity removal.
func (c *Commands) Despawn(entity Entity) {
	c.despawns = append(c.despawns, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies all commands to w and resets the buffer. Despawns run first,
// then removals, additions, spawns and deferred functions. Mutations of an
// entity despawned in the same flush are skipped. Every command is attempted;
// failures are joined into the returned error.
func (c *Commands) Flush(w *World) error {
	var errs []error
	despawned := make(map[Entity]struct{}, len(c.despawns))

	for _, e := range c.despawns {
		if _, ok := despawned[e]; ok {
			continue
		}
		despawned[e] = struct{}{}
		if err := w.Despawn(e); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.removes {
		if _, ok := despawned[cmd.entity]; ok {
			continue
		}
		if _, err := w.RemoveComponentType(cmd.entity, cmd.compType); err != nil {
			errs = append(errs, eris.Wrapf(err, "remove %s from %s", cmd.compType, cmd.entity))
		}
	}

	for _, cmd := range c.adds {
		if _, ok := despawned[cmd.entity]; ok {
			continue
		}
		if err := w.AddComponent(cmd.entity, cmd.component); err != nil {
			errs = append(errs, eris.Wrapf(err, "add %T to %s", cmd.component, cmd.entity))
		}
	}

	for _, cmd := range c.spawns {
		if _, _, err := w.bundle(cmd.components); err != nil {
			errs = append(errs, err)
			continue
		}
		w.Spawn(cmd.components...)
	}

	for _, df := range c.defers {
		df.fn(w)
	}

	clear(c.spawns)
	clear(c.adds)
	clear(c.defers)
	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
