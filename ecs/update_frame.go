package ecs

// UpdateFrame is passed to every System executed in one Scheduler tick.
// Structural changes made through Commands are applied after the last system.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}

func newUpdateFrame(dt float64, w *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  NewCommands(),
		World:     w,
	}
}
