package ecs

import (
	"cmp"
	"iter"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// World owns all archetypes, the entity table and the storage lookup.
//
// A World is single-writer: structural changes require exclusive access.
// Only Reserve may be called concurrently with other Reserve calls.
type World struct {
	registry   *ComponentRegistry
	archetypes []*Archetype
	entities   *Entities
	lookup     *StorageLookup

	// signatures memoizes sorted component-id sets to archetype indices. Keys
	// are FNV-1a hashes; each bucket is checked for exact equality.
	signatures *intmap.Map[uint64, []int]
	resources  *intmap.Map[uintptr, any]

	logger    zerolog.Logger
	iterating atomic.Int32
}

// Option configures a World.
type Option func(*worldConfig)

type worldConfig struct {
	logger         zerolog.Logger
	entityCapacity int
}

// WithLogger sets the logger used for debug events. The default discards output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *worldConfig) {
		c.logger = logger
	}
}

// WithEntityCapacity preallocates the entity table.
func WithEntityCapacity(n int) Option {
	return func(c *worldConfig) {
		c.entityCapacity = n
	}
}

// NewWorld creates a World using registry for component types. A nil registry
// creates a fresh one. The empty archetype always exists at index 0.
func NewWorld(registry *ComponentRegistry, opts ...Option) *World {
	cfg := worldConfig{
		logger:         zerolog.Nop(),
		entityCapacity: 256,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if registry == nil {
		registry = NewComponentRegistry()
	}

	w := &World{
		registry:   registry,
		entities:   NewEntities(cfg.entityCapacity),
		lookup:     NewStorageLookup(),
		signatures: intmap.New[uint64, []int](64),
		resources:  intmap.New[uintptr, any](8),
		logger:     cfg.logger,
	}
	w.archetypeFor(nil, nil)
	return w
}

// Registry returns the component registry of the World.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Lookup returns the component-to-archetype index.
func (w *World) Lookup() *StorageLookup {
	return w.lookup
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.Len()
}

// ArchetypeCount returns the number of archetypes, including the empty one.
func (w *World) ArchetypeCount() int {
	return len(w.archetypes)
}

// Archetype returns the archetype at index, or nil.
func (w *World) Archetype(index int) *Archetype {
	if index < 0 || index >= len(w.archetypes) {
		return nil
	}
	return w.archetypes[index]
}

// Archetypes yields every archetype in index order.
func (w *World) Archetypes() iter.Seq[*Archetype] {
	return func(yield func(*Archetype) bool) {
		for _, a := range w.archetypes {
			if !yield(a) {
				return
			}
		}
	}
}

// Entities yields every live entity, archetype by archetype.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, a := range w.archetypes {
			for _, e := range a.entities {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Contains reports whether e is live.
func (w *World) Contains(e Entity) bool {
	return w.entities.Contains(e)
}

// Location returns where e is stored.
func (w *World) Location(e Entity) (EntityLocation, bool) {
	return w.entities.Location(e)
}

// Spawn creates an entity holding components, given as values or pointers.
// It panics on unregistered or duplicated component types and while a query
// iterates the World.
func (w *World) Spawn(components ...any) Entity {
	if err := w.checkUnlocked(); err != nil {
		panic(err)
	}
	ids, values, err := w.bundle(components)
	if err != nil {
		panic(err)
	}

	a := w.archetypes[w.archetypeFor(ids, w.registry.newChannel)]
	e := w.entities.NewEntity(&EntityLocation{ArchetypeIndex: a.index, Row: a.Len()})
	a.push(e, values)
	return e
}

// Reserve returns an entity handle without touching storage. It is safe to call
// from several goroutines at once; the handle becomes live with SpawnReserved.
func (w *World) Reserve() Entity {
	return w.entities.Reserve()
}

// SpawnReserved materializes a handle obtained from Reserve.
func (w *World) SpawnReserved(e Entity, components ...any) error {
	if err := w.checkUnlocked(); err != nil {
		return err
	}
	if !w.entities.IsReserved(e) {
		return eris.Wrapf(ErrEntityMissing, "%s is not reserved", e)
	}
	ids, values, err := w.bundle(components)
	if err != nil {
		return err
	}

	a := w.archetypes[w.archetypeFor(ids, w.registry.newChannel)]
	row := a.push(e, values)
	return w.entities.InstantiateReserved(e, EntityLocation{ArchetypeIndex: a.index, Row: row})
}

// Despawn removes e and all of its components.
func (w *World) Despawn(e Entity) error {
	if err := w.checkUnlocked(); err != nil {
		return err
	}
	loc, err := w.entities.Free(e)
	if err != nil {
		return eris.Wrapf(err, "despawn %s", e)
	}

	a := w.archetypes[loc.ArchetypeIndex]
	if moved, ok := a.swapRemove(loc.Row); ok {
		w.entities.SetLocation(moved, loc)
	}
	w.logger.Debug().Stringer("entity", e).Int("archetype", loc.ArchetypeIndex).Msg("despawned")
	return nil
}

// AddComponent adds one component to e. Adding a component e already has fails
// with ErrNoMatchingComponent.
func (w *World) AddComponent(e Entity, component any) error {
	return w.AddComponents(e, component)
}

// AddComponents adds a bundle of components to e in a single migration.
func (w *World) AddComponents(e Entity, components ...any) error {
	if err := w.checkUnlocked(); err != nil {
		return err
	}
	loc, ok := w.entities.Location(e)
	if !ok {
		return eris.Wrapf(ErrEntityMissing, "add component to %s", e)
	}
	addIDs, values, err := w.bundle(components)
	if err != nil {
		return err
	}
	if len(addIDs) == 0 {
		return nil
	}

	src := w.archetypes[loc.ArchetypeIndex]
	ids, dup, ok := mergeSignatures(src.ids, addIDs)
	if !ok {
		return eris.Wrapf(ErrNoMatchingComponent, "%s already present on %s", w.registry.Name(dup), e)
	}

	dst := w.archetypes[w.archetypeFor(ids, func(id ComponentID) channel {
		if i, ok := src.channelIndex(id); ok {
			return src.channels[i].NewEmpty()
		}
		return w.registry.newChannel(id)
	})]
	w.migrate(e, loc, src, dst, addIDs, values)
	return nil
}

// RemoveComponentType removes the component of type t from e and returns its
// value.
func (w *World) RemoveComponentType(e Entity, t reflect.Type) (any, error) {
	id, ok := w.registry.ID(t)
	if !ok {
		return nil, noMatchingComponent(t.String())
	}
	removed, err := w.RemoveComponentIDs(e, id)
	if err != nil {
		return nil, err
	}
	return removed[0], nil
}

// RemoveComponentIDs removes several components from e in a single migration
// and returns their values ordered by component ID.
func (w *World) RemoveComponentIDs(e Entity, remove ...ComponentID) ([]any, error) {
	if err := w.checkUnlocked(); err != nil {
		return nil, err
	}
	loc, ok := w.entities.Location(e)
	if !ok {
		return nil, eris.Wrapf(ErrEntityMissing, "remove component from %s", e)
	}

	if len(remove) == 0 {
		return nil, nil
	}
	remove = slices.Clone(remove)
	slices.Sort(remove)
	src := w.archetypes[loc.ArchetypeIndex]
	ids, missing, ok := diffSignatures(src.ids, remove)
	if !ok {
		return nil, eris.Wrapf(ErrNoMatchingComponent, "%s not present on %s", w.registry.Name(missing), e)
	}

	dst := w.archetypes[w.archetypeFor(ids, func(id ComponentID) channel {
		i, _ := src.channelIndex(id)
		return src.channels[i].NewEmpty()
	})]
	return w.migrate(e, loc, src, dst, nil, nil), nil
}

// Component returns a pointer to e's component of type t. It fails with
// ErrChannelExclusivelyLocked while a query holds that column exclusively.
func (w *World) Component(e Entity, t reflect.Type) (any, error) {
	loc, ok := w.entities.Location(e)
	if !ok {
		return nil, eris.Wrapf(ErrEntityMissing, "%s", e)
	}
	id, ok := w.registry.ID(t)
	if !ok {
		return nil, noMatchingComponent(t.String())
	}
	a := w.archetypes[loc.ArchetypeIndex]
	c, ok := a.Component(loc.Row, id)
	if !ok {
		return nil, noMatchingComponent(t.String())
	}
	if i, _ := a.channelIndex(id); a.channels[i].borrows().exclusive() {
		return nil, eris.Wrapf(ErrChannelExclusivelyLocked, "%s of %s", t, e)
	}
	return c, nil
}

// GetComponent returns a pointer to e's component T. The pointer is valid
// until the next structural change of the World.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	c, err := w.Component(e, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}

// HasComponent reports whether e is live and holds a T.
func HasComponent[T any](w *World, e Entity) bool {
	_, err := w.Component(e, reflect.TypeFor[T]())
	return err == nil
}

// RemoveComponent removes e's component T and returns it.
func RemoveComponent[T any](w *World, e Entity) (T, error) {
	var zero T
	v, err := w.RemoveComponentType(e, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// migrate moves e's row from src to dst. Components of src missing from dst
// are returned; added values are pushed in the order of addIDs. The entity
// swapped into e's old row gets its location corrected in the same step.
func (w *World) migrate(e Entity, loc EntityLocation, src, dst *Archetype, addIDs []ComponentID, added []any) []any {
	var removed []any
	for i, id := range src.ids {
		if j, ok := dst.channelIndex(id); ok {
			src.channels[i].MoveRow(loc.Row, dst.channels[j])
		} else {
			removed = append(removed, src.channels[i].Take(loc.Row))
		}
	}
	for k, id := range addIDs {
		j, _ := dst.channelIndex(id)
		dst.channels[j].Push(added[k])
	}
	dst.entities = append(dst.entities, e)

	if moved, ok := src.swapRemoveEntity(loc.Row); ok {
		w.entities.SetLocation(moved, loc)
	}
	w.entities.SetLocation(e, EntityLocation{ArchetypeIndex: dst.index, Row: len(dst.entities) - 1})
	return removed
}

// archetypeFor returns the index of the archetype with exactly ids, creating it
// with one channel per id from newChannel when missing.
func (w *World) archetypeFor(ids []ComponentID, newChannel func(ComponentID) channel) int {
	h := hashSignature(ids)
	bucket, _ := w.signatures.Get(h)
	for _, index := range bucket {
		if slices.Equal(w.archetypes[index].ids, ids) {
			return index
		}
	}

	channels := make([]channel, len(ids))
	for i, id := range ids {
		channels[i] = newChannel(id)
	}
	index := len(w.archetypes)
	a := newArchetype(index, slices.Clone(ids), channels)
	w.archetypes = append(w.archetypes, a)
	w.signatures.Put(h, append(bucket, index))
	w.lookup.addArchetype(index, a.ids)

	if e := w.logger.Debug(); e.Enabled() {
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = w.registry.Name(id)
		}
		e.Int("archetype", index).Strs("components", names).Msg("archetype created")
	}
	return index
}

// bundle resolves and sorts a component bundle by component ID.
func (w *World) bundle(components []any) ([]ComponentID, []any, error) {
	type entry struct {
		id    ComponentID
		value any
	}
	entries := make([]entry, len(components))
	for i, c := range components {
		if c == nil {
			return nil, nil, eris.Wrap(ErrNoMatchingComponent, "nil component in bundle")
		}
		if v := reflect.ValueOf(c); v.Kind() == reflect.Ptr && v.IsNil() {
			return nil, nil, eris.Wrapf(ErrNoMatchingComponent, "nil %s in bundle", v.Type().Elem())
		}
		t := componentType(c)
		id, ok := w.registry.ID(t)
		if !ok {
			return nil, nil, eris.Wrapf(ErrNoMatchingComponent, "%s is not registered", t)
		}
		entries[i] = entry{id: id, value: c}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.id, b.id)
	})

	ids := make([]ComponentID, len(entries))
	values := make([]any, len(entries))
	for i, en := range entries {
		if i > 0 && ids[i-1] == en.id {
			return nil, nil, eris.Wrapf(ErrNoMatchingComponent, "%s appears twice in bundle", w.registry.Name(en.id))
		}
		ids[i] = en.id
		values[i] = en.value
	}
	return ids, values, nil
}

func (w *World) checkUnlocked() error {
	if w.iterating.Load() != 0 {
		return eris.Wrap(ErrChannelExclusivelyLocked, "world is borrowed by an active query")
	}
	return nil
}

// mergeSignatures merges two sorted signatures. It reports the first id found
// in both.
func mergeSignatures(a, b []ComponentID) ([]ComponentID, ComponentID, bool) {
	out := make([]ComponentID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			return nil, a[i], false
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out, 0, true
}

// diffSignatures returns a minus remove, both sorted. It reports the first id
// of remove not found in a.
func diffSignatures(a, remove []ComponentID) ([]ComponentID, ComponentID, bool) {
	out := make([]ComponentID, 0, len(a))
	j := 0
	for _, id := range a {
		if j < len(remove) && remove[j] < id {
			return nil, remove[j], false
		}
		if j < len(remove) && remove[j] == id {
			j++
			continue
		}
		out = append(out, id)
	}
	if j < len(remove) {
		return nil, remove[j], false
	}
	return out, 0, true
}

// hashSignature generates an FNV-1a hash of a sorted signature.
func hashSignature(ids []ComponentID) uint64 {
	var h uint64 = 14695981039346656037 // FNV-1a 64-bit offset basis
	const prime uint64 = 1099511628211  // FNV-1a 64-bit prime

	for _, id := range ids {
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64(byte(id >> shift))
			h *= prime
		}
	}
	return h
}
