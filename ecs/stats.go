package ecs

// WorldStats is a point-in-time summary of a World.
type WorldStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	ResourceCount      int
	ComponentTypeCount int
	ArchetypeBreakdown []ArchetypeStats
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	Index          int
	ComponentTypes []string
	EntityCount    int
}

// CollectStats gathers statistics about every archetype of the World,
// including the empty one.
func (w *World) CollectStats() *WorldStats {
	stats := &WorldStats{
		ArchetypeCount:     len(w.archetypes),
		ResourceCount:      w.resources.Len(),
		ComponentTypeCount: w.registry.Len(),
		ArchetypeBreakdown: make([]ArchetypeStats, 0, len(w.archetypes)),
	}

	for _, a := range w.archetypes {
		names := make([]string, len(a.ids))
		for i, id := range a.ids {
			names[i] = w.registry.Name(id)
		}
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			Index:          a.index,
			ComponentTypes: names,
			EntityCount:    a.Len(),
		})
		stats.TotalEntityCount += a.Len()
	}
	return stats
}
