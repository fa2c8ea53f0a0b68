package ecs

import (
	"cmp"
	"iter"
	"slices"
)

const tombstone = -1

type archetypeChannel struct {
	archetype int
	channel   int
}

// sparseSet maps archetype index to the channel index of one component inside
// that archetype. The sparse array is sized to the largest archetype index seen,
// which is bounded by the number of distinct signatures, not by entity count.
type sparseSet struct {
	sparse []int
	dense  []archetypeChannel
}

func (s *sparseSet) get(archetype int) (int, bool) {
	if archetype >= len(s.sparse) {
		return 0, false
	}
	pos := s.sparse[archetype]
	if pos == tombstone {
		return 0, false
	}
	return s.dense[pos].channel, true
}

func (s *sparseSet) insert(archetype, channel int) {
	if archetype >= len(s.sparse) {
		oldLen := len(s.sparse)
		newLen := max(oldLen*2, archetype+1)
		grown := make([]int, newLen)
		copy(grown, s.sparse)
		for i := oldLen; i < newLen; i++ {
			grown[i] = tombstone
		}
		s.sparse = grown
	}
	if pos := s.sparse[archetype]; pos != tombstone {
		s.dense[pos].channel = channel
		return
	}
	s.sparse[archetype] = len(s.dense)
	s.dense = append(s.dense, archetypeChannel{archetype: archetype, channel: channel})
}

func (s *sparseSet) len() int {
	return len(s.dense)
}

// FilterKind selects how a Filter constrains an archetype.
type FilterKind uint8

const (
	// FilterWith requires the component.
	FilterWith FilterKind = iota
	// FilterWithout rejects archetypes holding the component.
	FilterWithout
	// FilterOptional never rejects; the output slot is -1 when absent.
	FilterOptional
)

func (k FilterKind) String() string {
	switch k {
	case FilterWith:
		return "With"
	case FilterWithout:
		return "Without"
	case FilterOptional:
		return "Optional"
	}
	return "Unknown"
}

// Filter is one query term. Slot is the output position receiving the channel
// index of Component, or -1 for filter-only terms.
type Filter struct {
	Component ComponentID
	Kind      FilterKind
	Slot      int
}

// ArchetypeMatch is an archetype satisfying a filter set together with the
// channel index for each output slot (-1 when an optional component is absent).
type ArchetypeMatch struct {
	ArchetypeIndex int
	Channels       []int
}

// StorageLookup indexes, for every component ID, the archetypes containing it.
type StorageLookup struct {
	sets           []sparseSet
	archetypeCount int
}

// NewStorageLookup creates an empty lookup.
func NewStorageLookup() *StorageLookup {
	return &StorageLookup{}
}

// addArchetype records the signature of a newly created archetype.
func (l *StorageLookup) addArchetype(index int, ids []ComponentID) {
	for channel, id := range ids {
		if int(id) >= len(l.sets) {
			l.sets = slices.Grow(l.sets, int(id)+1-len(l.sets))
			l.sets = l.sets[:int(id)+1]
		}
		l.sets[id].insert(index, channel)
	}
	l.archetypeCount = max(l.archetypeCount, index+1)
}

// ArchetypeCount returns the number of archetypes the lookup knows about.
func (l *StorageLookup) ArchetypeCount() int {
	return l.archetypeCount
}

// Count returns how many archetypes contain id.
func (l *StorageLookup) Count(id ComponentID) int {
	if int(id) >= len(l.sets) {
		return 0
	}
	return l.sets[id].len()
}

// Channel returns the channel index of id within archetype.
func (l *StorageLookup) Channel(id ComponentID, archetype int) (int, bool) {
	if int(id) >= len(l.sets) {
		return 0, false
	}
	return l.sets[id].get(archetype)
}

func (l *StorageLookup) cost(f Filter) int {
	switch f.Kind {
	case FilterWith:
		return l.Count(f.Component)
	case FilterWithout:
		return l.archetypeCount - l.Count(f.Component)
	default:
		return l.archetypeCount
	}
}

// Matching yields every archetype satisfying all filters, in ascending
// archetype index. slots is the number of output channel slots.
//
// Filters are ordered by estimated selectivity and candidates are drawn from
// the cheapest one, so a single required component bounds the scan to the
// archetypes that contain it.
func (l *StorageLookup) Matching(filters []Filter, slots int) iter.Seq[ArchetypeMatch] {
	return func(yield func(ArchetypeMatch) bool) {
		sorted := slices.Clone(filters)
		slices.SortStableFunc(sorted, func(a, b Filter) int {
			return cmp.Compare(l.cost(a), l.cost(b))
		})

		test := func(archetype int) (ArchetypeMatch, bool) {
			m := ArchetypeMatch{ArchetypeIndex: archetype, Channels: make([]int, slots)}
			for i := range m.Channels {
				m.Channels[i] = -1
			}
			for _, f := range sorted {
				channel, has := l.Channel(f.Component, archetype)
				switch f.Kind {
				case FilterWith:
					if !has {
						return m, false
					}
				case FilterWithout:
					if has {
						return m, false
					}
					continue
				}
				if has && f.Slot >= 0 {
					m.Channels[f.Slot] = channel
				}
			}
			return m, true
		}

		if len(sorted) > 0 && sorted[0].Kind == FilterWith {
			if int(sorted[0].Component) >= len(l.sets) {
				return
			}
			for _, ac := range l.sets[sorted[0].Component].dense {
				if m, ok := test(ac.archetype); ok {
					if !yield(m) {
						return
					}
				}
			}
			return
		}

		for archetype := range l.archetypeCount {
			if m, ok := test(archetype); ok {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// MatchingArchetypes collects Matching into a slice.
func (l *StorageLookup) MatchingArchetypes(filters []Filter, slots int) []ArchetypeMatch {
	var matches []ArchetypeMatch
	for m := range l.Matching(filters, slots) {
		matches = append(matches, m)
	}
	return matches
}
