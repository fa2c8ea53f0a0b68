package debugui

import "github.com/plus3/kudo/ecs"

// SpawnDebugUI spawns one entity per debug panel. Register DebugUISystem to
// draw them.
func SpawnDebugUI(world *ecs.World) {
	world.Spawn(NewEntityBrowserComponent(100))
	world.Spawn(NewComponentInspectorComponent())
	world.Spawn(NewArchetypeViewerComponent())
	world.Spawn(NewPerformanceStatsComponent(120))
	world.Spawn(NewQueryDebuggerComponent())
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[ComponentInspectorComponent](registry)
	ecs.RegisterComponent[ArchetypeViewerComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[QueryDebuggerComponent](registry)
}
