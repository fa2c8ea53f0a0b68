// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/kudo/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a World resource.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions.
// It also updates the ImguiInputState resource when one is present.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Res[ImguiInputState]
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) error {
	if state := i.InputState.Get(); state != nil {
		state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
		state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		render := item.Render
		frame.Commands.Defer(func(*ecs.World) { render() })
	}
	return nil
}

// DebugUISystem renders every debug panel spawned by SpawnDebugUI. Panels
// draw after all structural commands of the frame have been applied, so they
// always show a consistent World.
type DebugUISystem struct {
	// Scheduler is optional; when set, the performance panel lists per-system timings.
	Scheduler *ecs.Scheduler

	Browsers   ecs.Query[struct{ *EntityBrowserComponent }]
	Inspectors ecs.Query[struct{ *ComponentInspectorComponent }]
	Viewers    ecs.Query[struct{ *ArchetypeViewerComponent }]
	Perf       ecs.Query[struct{ *PerformanceStatsComponent }]
	Debuggers  ecs.Query[struct{ *QueryDebuggerComponent }]
}

func (s *DebugUISystem) Execute(frame *ecs.UpdateFrame) error {
	dt := float32(frame.DeltaTime)
	frame.Commands.Defer(func(w *ecs.World) {
		s.render(w, dt)
	})
	return nil
}

func (s *DebugUISystem) render(w *ecs.World, dt float32) {
	var selected ecs.Entity
	var hasSelection bool

	for item := range s.Browsers.Values() {
		item.Render(w)
		if e, ok := item.SelectedEntity(); ok {
			selected, hasSelection = e, true
		}
	}
	for item := range s.Viewers.Values() {
		if idx, ok := item.Render(w); ok {
			for b := range s.Browsers.Values() {
				b.FilterArchetype(idx)
			}
		}
	}
	for item := range s.Inspectors.Values() {
		if hasSelection {
			item.Select(selected)
		}
		item.Render(w)
	}
	for item := range s.Perf.Values() {
		item.Render(w, s.Scheduler, dt)
	}
	for item := range s.Debuggers.Values() {
		item.Render(w)
	}
}
