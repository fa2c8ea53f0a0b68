package ecs

import (
	"reflect"
)

// SetResource stores value as the World's single resource of type T, replacing
// any previous one, and returns a pointer to the stored value.
func SetResource[T any](w *World, value T) *T {
	ptr := &value
	w.resources.Put(typeKey(reflect.TypeFor[T]()), ptr)
	return ptr
}

// GetResource returns the resource of type T.
func GetResource[T any](w *World) (*T, error) {
	v, ok := w.resources.Get(typeKey(reflect.TypeFor[T]()))
	if !ok {
		return nil, noMatchingComponent(reflect.TypeFor[T]().String())
	}
	return v.(*T), nil
}

// HasResource reports whether a resource of type T exists.
func HasResource[T any](w *World) bool {
	_, ok := w.resources.Get(typeKey(reflect.TypeFor[T]()))
	return ok
}

// RemoveResource removes the resource of type T and returns it.
func RemoveResource[T any](w *World) (T, error) {
	var zero T
	ptr, err := GetResource[T](w)
	if err != nil {
		return zero, err
	}
	w.resources.Del(typeKey(reflect.TypeFor[T]()))
	return *ptr, nil
}

// Res is a system parameter giving access to the resource of type T.
type Res[T any] struct {
	world *World
}

// Init binds the parameter to a World. Called by the Scheduler and IntoSystem.
func (r *Res[T]) Init(w *World) {
	r.world = w
}

// Get returns the resource, or nil if it does not exist.
func (r *Res[T]) Get() *T {
	if r.world == nil {
		return nil
	}
	v, err := GetResource[T](r.world)
	if err != nil {
		return nil
	}
	return v
}

// Exists reports whether the resource has been set.
func (r *Res[T]) Exists() bool {
	return r.world != nil && HasResource[T](r.world)
}

func (r *Res[T]) validate() error {
	if !r.Exists() {
		return noMatchingComponent(reflect.TypeFor[T]().String())
	}
	return nil
}
