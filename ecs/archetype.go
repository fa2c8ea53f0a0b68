package ecs

import (
	"iter"
	"reflect"
	"slices"
)

// Archetype stores every entity sharing one exact component signature as
// parallel columns, one per component ID, ordered by ID.
type Archetype struct {
	index    int
	ids      []ComponentID
	channels []channel
	entities []Entity
}

func newArchetype(index int, ids []ComponentID, channels []channel) *Archetype {
	return &Archetype{
		index:    index,
		ids:      ids,
		channels: channels,
	}
}

// Index returns the archetype's position in its World. It never changes.
func (a *Archetype) Index() int {
	return a.index
}

// ComponentIDs returns the sorted signature of this archetype.
func (a *Archetype) ComponentIDs() []ComponentID {
	return a.ids
}

// Types returns the component types of this archetype, ordered like ComponentIDs.
func (a *Archetype) Types() []reflect.Type {
	types := make([]reflect.Type, len(a.channels))
	for i, ch := range a.channels {
		types[i] = ch.Type()
	}
	return types
}

// Len returns the number of entities stored in the archetype.
func (a *Archetype) Len() int {
	return len(a.entities)
}

// Entity returns the entity stored at row.
func (a *Archetype) Entity(row int) Entity {
	return a.entities[row]
}

// channelIndex binary-searches the signature for id.
func (a *Archetype) channelIndex(id ComponentID) (int, bool) {
	return slices.BinarySearch(a.ids, id)
}

// HasComponent reports whether id is part of the signature.
func (a *Archetype) HasComponent(id ComponentID) bool {
	_, ok := a.channelIndex(id)
	return ok
}

// Component returns a pointer to the component id of the entity at row.
func (a *Archetype) Component(row int, id ComponentID) (any, bool) {
	idx, ok := a.channelIndex(id)
	if !ok || row < 0 || row >= len(a.entities) {
		return nil, false
	}
	return a.channels[idx].Get(row), true
}

// Iter yields the entities in row order.
func (a *Archetype) Iter() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for row, e := range a.entities {
			if !yield(row, e) {
				return
			}
		}
	}
}

// push appends a row. components must be ordered like the signature.
func (a *Archetype) push(e Entity, components []any) int {
	for i, c := range components {
		if !a.channels[i].Push(c) {
			panic("component " + componentType(c).String() + " does not match channel " + a.channels[i].Type().String())
		}
	}
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// swapRemove drops row from every channel and returns the entity that was
// moved into row, if any.
func (a *Archetype) swapRemove(row int) (Entity, bool) {
	for _, ch := range a.channels {
		ch.SwapRemove(row)
	}
	return a.swapRemoveEntity(row)
}

func (a *Archetype) swapRemoveEntity(row int) (Entity, bool) {
	last := len(a.entities) - 1
	moved := row != last
	if moved {
		a.entities[row] = a.entities[last]
	}
	a.entities = a.entities[:last]
	if moved {
		return a.entities[row], true
	}
	return Entity{}, false
}
