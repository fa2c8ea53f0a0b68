package ecs

import (
	"fmt"
	"sync/atomic"
)

// Entity is a weak handle to a row in some archetype. It is only valid while the
// generation stored in the World's entity table matches Generation.
type Entity struct {
	Index      uint32
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

// EntityLocation is the current storage coordinate of a live entity. It changes
// whenever the entity migrates between archetypes or another entity is
// swap-removed into its row.
type EntityLocation struct {
	ArchetypeIndex int
	Row            int
}

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotLive
)

type entitySlot struct {
	generation uint32
	state      slotState
	location   EntityLocation
}

// Entities is a generational allocator mapping Entity handles to locations.
//
// Reserve may be called from many goroutines at once as long as no other
// method runs concurrently. Every other method requires exclusive access.
type Entities struct {
	slots []entitySlot
	free  []uint32
	live  int

	// freeCursor counts the entries of free not yet claimed by Reserve. A
	// negative value -n means n indices past the end of slots were reserved.
	freeCursor atomic.Int64
}

// NewEntities creates an empty entity table with room for capacity slots.
func NewEntities(capacity int) *Entities {
	return &Entities{
		slots: make([]entitySlot, 0, capacity),
	}
}

// NewEntity allocates a handle, reusing a freed index when one is available.
// A nil location allocates the entity in the reserved state.
func (es *Entities) NewEntity(location *EntityLocation) Entity {
	es.flush()

	var index uint32
	if n := len(es.free); n > 0 {
		index = es.free[n-1]
		es.free = es.free[:n-1]
		es.freeCursor.Store(int64(len(es.free)))
	} else {
		index = uint32(len(es.slots))
		es.slots = append(es.slots, entitySlot{})
	}

	slot := &es.slots[index]
	if location != nil {
		slot.state = slotLive
		slot.location = *location
		es.live++
	} else {
		slot.state = slotReserved
	}
	return Entity{Index: index, Generation: slot.generation}
}

// Location returns the location of a live entity.
func (es *Entities) Location(e Entity) (EntityLocation, bool) {
	if int(e.Index) >= len(es.slots) {
		return EntityLocation{}, false
	}
	slot := es.slots[e.Index]
	if slot.generation != e.Generation || slot.state != slotLive {
		return EntityLocation{}, false
	}
	return slot.location, true
}

// Contains reports whether e refers to a live entity.
func (es *Entities) Contains(e Entity) bool {
	_, ok := es.Location(e)
	return ok
}

// Free invalidates e and returns its vacated location so the caller can
// swap-remove the matching archetype row.
func (es *Entities) Free(e Entity) (EntityLocation, error) {
	es.flush()

	location, ok := es.Location(e)
	if !ok {
		return EntityLocation{}, ErrEntityMissing
	}

	slot := &es.slots[e.Index]
	slot.generation++
	slot.state = slotFree
	slot.location = EntityLocation{}
	es.free = append(es.free, e.Index)
	es.freeCursor.Store(int64(len(es.free)))
	es.live--
	return location, nil
}

// Reserve hands out an entity handle without exclusive access. The handle is
// not live until InstantiateReserved assigns it a location.
func (es *Entities) Reserve() Entity {
	n := es.freeCursor.Add(-1)
	if n >= 0 {
		index := es.free[n]
		return Entity{Index: index, Generation: es.slots[index].generation}
	}

	// Past the end of the free list: indices beyond the slot array, generation 0.
	return Entity{Index: uint32(int64(len(es.slots)) - n - 1)}
}

// InstantiateReserved makes a reserved entity live at location.
func (es *Entities) InstantiateReserved(e Entity, location EntityLocation) error {
	es.flush()

	if int(e.Index) >= len(es.slots) {
		return ErrEntityMissing
	}
	slot := &es.slots[e.Index]
	if slot.generation != e.Generation || slot.state != slotReserved {
		return ErrEntityMissing
	}
	slot.state = slotLive
	slot.location = location
	es.live++
	return nil
}

// IsReserved reports whether e was reserved and not yet instantiated.
func (es *Entities) IsReserved(e Entity) bool {
	es.flush()

	if int(e.Index) >= len(es.slots) {
		return false
	}
	slot := es.slots[e.Index]
	return slot.generation == e.Generation && slot.state == slotReserved
}

// SetLocation moves a live entity.
func (es *Entities) SetLocation(e Entity, location EntityLocation) {
	slot := &es.slots[e.Index]
	if slot.generation == e.Generation && slot.state == slotLive {
		slot.location = location
	}
}

// Len returns the number of live entities.
func (es *Entities) Len() int {
	return es.live
}

// flush converts outstanding reservations into reserved slots so the free
// list and slot array agree again.
func (es *Entities) flush() int {
	cursor := es.freeCursor.Load()
	if cursor >= int64(len(es.free)) {
		return 0
	}

	flushed := 0
	if cursor < 0 {
		extra := int(-cursor)
		for range extra {
			es.slots = append(es.slots, entitySlot{state: slotReserved})
		}
		flushed += extra
		cursor = 0
	}

	for _, index := range es.free[cursor:] {
		es.slots[index].state = slotReserved
		flushed++
	}
	es.free = es.free[:cursor]
	es.freeCursor.Store(int64(len(es.free)))
	return flushed
}
