package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentID identifies a registered component type within a ComponentRegistry.
// IDs are dense and assigned in registration order.
type ComponentID uint32

// invalidComponentID marks a type that is not registered.
const invalidComponentID = ^ComponentID(0)

type componentInfo struct {
	id         ComponentID
	typ        reflect.Type
	newChannel func() channel
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each World holds a registry; several Worlds may share one, which makes their
// component IDs compatible for Merge.
type ComponentRegistry struct {
	infos  []componentInfo
	byType *intmap.Map[uintptr, ComponentID]
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: intmap.New[uintptr, ComponentID](64),
	}
}

// RegisterComponent registers T and returns its ID. Registering the same type
// twice returns the existing ID.
func RegisterComponent[T any](r *ComponentRegistry) ComponentID {
	t := reflect.TypeFor[T]()
	if id, ok := r.byType.Get(typeKey(t)); ok {
		return id
	}

	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}

	id := ComponentID(len(r.infos))
	r.infos = append(r.infos, componentInfo{
		id:  id,
		typ: t,
		newChannel: func() channel {
			return newColumn[T](0)
		},
	})
	r.byType.Put(typeKey(t), id)
	return id
}

// ComponentIDOf returns the ID of T in r.
func ComponentIDOf[T any](r *ComponentRegistry) (ComponentID, bool) {
	return r.ID(reflect.TypeFor[T]())
}

// ID returns the ID registered for t.
func (r *ComponentRegistry) ID(t reflect.Type) (ComponentID, bool) {
	return r.byType.Get(typeKey(t))
}

// Type returns the reflect.Type registered under id.
func (r *ComponentRegistry) Type(id ComponentID) reflect.Type {
	if int(id) >= len(r.infos) {
		return nil
	}
	return r.infos[id].typ
}

// Name returns the type name of id for diagnostics.
func (r *ComponentRegistry) Name(id ComponentID) string {
	if t := r.Type(id); t != nil {
		return t.String()
	}
	return "<unregistered>"
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.infos)
}

func (r *ComponentRegistry) newChannel(id ComponentID) channel {
	return r.infos[id].newChannel()
}

// componentType normalizes a bundle value to its component type.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t == nil {
		panic("nil component")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
