package ecs

import "github.com/rotisserie/eris"

var (
	// ErrEntityMissing is returned for stale handles, handles from another World
	// and entities that were already despawned.
	ErrEntityMissing = eris.New("entity missing")

	// ErrNoMatchingComponent is returned when a component type is not
	// structurally present for the requested operation. The wrapped message
	// carries the component type name.
	ErrNoMatchingComponent = eris.New("no matching component")

	// ErrChannelExclusivelyLocked is returned when a component column is
	// borrowed in a way that conflicts with an active borrow, or when the World
	// is structurally mutated while a query iterates it.
	ErrChannelExclusivelyLocked = eris.New("channel exclusively locked")

	// ErrInvalidSystem is returned by IntoSystem for functions whose signature
	// cannot be adapted into a System.
	ErrInvalidSystem = eris.New("invalid system")
)

func noMatchingComponent(name string) error {
	return eris.Wrapf(ErrNoMatchingComponent, "%s", name)
}
