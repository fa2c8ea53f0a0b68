package debugui

import (
	"github.com/plus3/kudo/ecs"
)

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	selected           ecs.Entity
	hasSelection       bool
	filterText         string
	filterArchetype    int
	hasArchetypeFilter bool
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selected     ecs.Entity
	hasSelection bool
	fields       *fieldCache
}

type ArchetypeViewerComponent struct {
	cache         *ArchetypeViewerCache
	selected      int
	hasSelection  bool
	sortColumn    int
	sortAscending bool
}

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type QueryDebuggerComponent struct {
	// terms maps a component type name to FilterWith or FilterWithout.
	terms map[string]ecs.FilterKind
	cache *QueryDebuggerCache
}
