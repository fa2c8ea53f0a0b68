package ecs

import (
	"slices"

	"github.com/rotisserie/eris"
)

// EntityRemapper is implemented, with a pointer receiver, by components that
// hold Entity references. Merge calls RemapEntities on every copied value so
// references point at the destination World's handles.
type EntityRemapper interface {
	RemapEntities(remap func(Entity) Entity)
}

// Merge copies every live entity of src into w and returns the mapping from
// source to destination handles. src is left untouched. Every component type
// of src must be registered in w's registry; otherwise nothing is copied and
// ErrNoMatchingComponent is returned. References to entities outside src are
// passed through unchanged.
func (w *World) Merge(src *World) (map[Entity]Entity, error) {
	if src == w {
		return nil, eris.New("cannot merge a world into itself")
	}
	if err := w.checkUnlocked(); err != nil {
		return nil, err
	}

	// Translate every source signature before mutating anything.
	plans := make([]mergePlan, 0, len(src.archetypes))
	for _, a := range src.archetypes {
		if a.Len() == 0 {
			continue
		}
		plan, err := w.planMerge(a)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	mapping := make(map[Entity]Entity, src.Len())
	for _, plan := range plans {
		for _, e := range plan.source.entities {
			mapping[e] = w.entities.NewEntity(nil)
		}
	}
	remap := func(e Entity) Entity {
		if mapped, ok := mapping[e]; ok {
			return mapped
		}
		return e
	}

	for _, plan := range plans {
		dst := w.archetypes[w.archetypeFor(plan.ids, func(id ComponentID) channel {
			return plan.source.channels[plan.channelFor[id]].NewEmpty()
		})]
		for row, e := range plan.source.entities {
			for i, ch := range plan.source.channels {
				j, _ := dst.channelIndex(plan.translated[i])
				ch.CloneRow(row, dst.channels[j], remap)
			}
			dst.entities = append(dst.entities, mapping[e])
			loc := EntityLocation{ArchetypeIndex: dst.index, Row: len(dst.entities) - 1}
			if err := w.entities.InstantiateReserved(mapping[e], loc); err != nil {
				return nil, eris.Wrapf(err, "merge %s", e)
			}
		}
	}

	w.logger.Debug().Int("entities", len(mapping)).Int("archetypes", len(plans)).Msg("world merged")
	return mapping, nil
}

type mergePlan struct {
	source *Archetype
	// translated[i] is the destination ID of source channel i.
	translated []ComponentID
	// ids is the sorted destination signature.
	ids        []ComponentID
	channelFor map[ComponentID]int
}

func (w *World) planMerge(a *Archetype) (mergePlan, error) {
	plan := mergePlan{
		source:     a,
		translated: make([]ComponentID, len(a.ids)),
		channelFor: make(map[ComponentID]int, len(a.ids)),
	}
	for i, ch := range a.channels {
		id, ok := w.registry.ID(ch.Type())
		if !ok {
			return mergePlan{}, eris.Wrapf(ErrNoMatchingComponent, "%s is not registered in the destination world", ch.Type())
		}
		plan.translated[i] = id
		plan.channelFor[id] = i
	}
	plan.ids = slices.Clone(plan.translated)
	slices.Sort(plan.ids)
	return plan, nil
}
