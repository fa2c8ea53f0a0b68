package ecs

import "reflect"

// With is a zero-sized query field requiring component C without fetching it.
type With[C any] struct{}

// Without is a zero-sized query field rejecting entities that hold component C.
type Without[C any] struct{}

type filterMarker interface {
	filterTerm() (reflect.Type, FilterKind)
}

func (With[C]) filterTerm() (reflect.Type, FilterKind) {
	return reflect.TypeFor[C](), FilterWith
}

func (Without[C]) filterTerm() (reflect.Type, FilterKind) {
	return reflect.TypeFor[C](), FilterWithout
}

var (
	filterMarkerType = reflect.TypeFor[filterMarker]()
	entityType       = reflect.TypeFor[Entity]()
)
