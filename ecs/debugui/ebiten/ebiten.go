// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"

	"github.com/plus3/kudo/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Store it as a World resource to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Update runs one scheduler frame inside an ImGui frame, so ImguiItem render
// functions deferred by the systems draw into it.
func (b *ImguiBackend) Update(scheduler *ecs.Scheduler, dt float64) error {
	b.BeginFrame()
	defer b.EndFrame()
	return scheduler.Once(dt)
}
