package ecs

import (
	"iter"
	"cmp"
	"reflect"
	"slices"
	"unsafe"

	"github.com/rotisserie/eris"
)

// Query iterates every entity whose archetype satisfies the layout of T.
//
// T is a struct of component pointers, With/Without markers and Entity
// fields, for example:
//
//	type movers struct {
//		ecs.Entity
//		*Position
//		*Velocity `ecs:"read"`
//		*Sprite   `ecs:"optional"`
//		_         ecs.Without[Frozen]
//	}
//
// Matching archetypes are cached and recomputed when the World gains
// archetypes. Archetypes are never destroyed, so cached indices stay valid.
type Query[T any] struct {
	world          *World
	layout         *viewLayout
	filters        []Filter
	matches        []ArchetypeMatch
	archetypeCount int
	registryLen    int
}

// NewQuery creates a Query over w.
func NewQuery[T any](w *World) *Query[T] {
	q := &Query[T]{}
	q.Init(w)
	return q
}

// Init binds the Query to a World. Called by the Scheduler and IntoSystem for
// Query fields and parameters.
func (q *Query[T]) Init(w *World) {
	q.world = w
	q.layout = newViewLayout(reflect.TypeFor[T]())
	q.filters = nil
	q.matches = nil
	q.archetypeCount = -1
	q.registryLen = -1
}

func (q *Query[T]) refresh() {
	if q.world == nil {
		panic("query used before Init")
	}
	w := q.world
	if q.registryLen != w.registry.Len() {
		q.filters = q.layout.resolve(w.registry)
		q.registryLen = w.registry.Len()
		q.archetypeCount = -1
	}
	if q.archetypeCount != len(w.archetypes) {
		q.matches = w.lookup.MatchingArchetypes(q.filters, len(q.layout.fields))
		q.archetypeCount = len(w.archetypes)
	}
}

// Matches returns the archetypes currently matching the query.
func (q *Query[T]) Matches() []ArchetypeMatch {
	q.refresh()
	return q.matches
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	q.refresh()
	n := 0
	for _, m := range q.matches {
		n += q.world.archetypes[m.ArchetypeIndex].Len()
	}
	return n
}

// Get returns the components of e, or false if e is missing, does not match,
// or one of its columns is borrowed incompatibly by an active iteration.
// No borrows are held after Get returns.
func (q *Query[T]) Get(e Entity) (T, bool) {
	result, err := q.GetEntity(e)
	return result, err == nil
}

// GetEntity is Get with the reason for a miss: ErrEntityMissing,
// ErrNoMatchingComponent or ErrChannelExclusivelyLocked.
func (q *Query[T]) GetEntity(e Entity) (T, error) {
	var result T
	loc, ok := q.world.entities.Location(e)
	if !ok {
		return result, eris.Wrapf(ErrEntityMissing, "%s", e)
	}
	q.refresh()

	i, found := slices.BinarySearchFunc(q.matches, loc.ArchetypeIndex, func(m ArchetypeMatch, target int) int {
		return cmp.Compare(m.ArchetypeIndex, target)
	})
	if !found {
		return result, eris.Wrapf(ErrNoMatchingComponent, "%s does not match %s", e, q.layout.structType)
	}

	m := q.matches[i]
	a := q.world.archetypes[m.ArchetypeIndex]
	for slot, ch := range m.Channels {
		if ch < 0 {
			continue
		}
		field := q.layout.fields[slot]
		if !a.channels[ch].borrows().available(field.read) {
			return result, eris.Wrapf(ErrChannelExclusivelyLocked, "%s of %s", field.typ, e)
		}
	}

	var c rowCursor
	q.layout.cursor(a, m, &c)
	q.layout.fill(unsafe.Pointer(&result), &c, loc.Row, e)
	return result, nil
}

// Iter yields every matching entity with its populated view, archetype by
// archetype in index order and row by row. The sequence can be ranged over any
// number of times. It panics with ErrChannelExclusivelyLocked when a column it
// needs is borrowed incompatibly by another active iteration.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		release, err := q.acquire()
		if err != nil {
			panic(err)
		}
		defer release()
		q.each(yield)
	}
}

// Values yields the populated views without entities.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range q.Iter() {
			if !yield(v) {
				return
			}
		}
	}
}

// Each calls fn for every matching entity. Borrow conflicts are returned
// instead of panicking.
func (q *Query[T]) Each(fn func(Entity, T)) error {
	release, err := q.acquire()
	if err != nil {
		return err
	}
	defer release()
	q.each(func(e Entity, v T) bool {
		fn(e, v)
		return true
	})
	return nil
}

func (q *Query[T]) each(yield func(Entity, T) bool) {
	var result T
	resultPtr := unsafe.Pointer(&result)
	var c rowCursor

	for _, m := range q.matches {
		a := q.world.archetypes[m.ArchetypeIndex]
		if a.Len() == 0 {
			continue
		}
		q.layout.cursor(a, m, &c)
		for row, e := range a.entities {
			q.layout.fill(resultPtr, &c, row, e)
			if !yield(e, result) {
				return
			}
		}
	}
}

// acquire refreshes the match cache and takes the column borrows needed for
// iteration. The World stays structurally locked until release is called.
func (q *Query[T]) acquire() (func(), error) {
	q.refresh()
	w := q.world

	type held struct {
		flag *borrowFlag
		read bool
	}
	var borrows []held
	release := func() {
		for _, h := range borrows {
			if h.read {
				h.flag.releaseShared()
			} else {
				h.flag.releaseExclusive()
			}
		}
		w.iterating.Add(-1)
	}

	w.iterating.Add(1)
	for _, m := range q.matches {
		a := w.archetypes[m.ArchetypeIndex]
		for i, ch := range m.Channels {
			if ch < 0 {
				continue
			}
			field := q.layout.fields[i]
			flag := a.channels[ch].borrows()
			var ok bool
			if field.read {
				ok = flag.acquireShared()
			} else {
				ok = flag.acquireExclusive()
			}
			if !ok {
				release()
				return nil, eris.Wrapf(ErrChannelExclusivelyLocked, "%s in archetype %d", field.typ, a.index)
			}
			borrows = append(borrows, held{flag: flag, read: field.read})
		}
	}
	return release, nil
}

// validate reports ErrNoMatchingComponent for a required component type that
// no archetype has ever contained.
func (q *Query[T]) validate() error {
	w := q.world
	for _, t := range q.layout.required() {
		id, ok := w.registry.ID(t)
		if !ok || w.lookup.Count(id) == 0 {
			return noMatchingComponent(t.String())
		}
	}
	return nil
}
