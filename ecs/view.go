package ecs

import (
	"reflect"
	"strings"
	"unsafe"
)

// viewField is one component pointer field of a query struct.
type viewField struct {
	typ      reflect.Type
	offset   uintptr
	optional bool
	read     bool
}

type viewFilter struct {
	typ  reflect.Type
	kind FilterKind
}

// viewLayout describes how a query struct maps onto archetype channels.
//
// The struct T may hold:
//   - embedded or named pointer fields to component types; these are required
//     and borrowed mutably unless tagged `ecs:"read"`; named and embedded fields
//     tagged `ecs:"optional"` are set to nil when the component is absent
//   - With[C] and Without[C] fields, which only filter
//   - Entity fields, set to the entity of the row
type viewLayout struct {
	structType    reflect.Type
	fields        []viewField
	filters       []viewFilter
	entityOffsets []uintptr
}

func newViewLayout(structType reflect.Type) *viewLayout {
	if structType.Kind() != reflect.Struct {
		panic("query type parameter must be a struct")
	}

	v := &viewLayout{structType: structType}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		switch {
		case fieldType == entityType:
			v.entityOffsets = append(v.entityOffsets, field.Offset)

		case fieldType.Implements(filterMarkerType):
			typ, kind := reflect.Zero(fieldType).Interface().(filterMarker).filterTerm()
			v.filters = append(v.filters, viewFilter{typ: typ, kind: kind})

		case fieldType.Kind() == reflect.Ptr:
			vf := viewField{typ: fieldType.Elem(), offset: field.Offset}
			if tag, ok := field.Tag.Lookup("ecs"); ok {
				for opt := range strings.SplitSeq(tag, ",") {
					switch strings.TrimSpace(opt) {
					case "optional":
						vf.optional = true
					case "read":
						vf.read = true
					case "":
					default:
						panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" and \"read\" are supported)")
					}
				}
			}
			v.fields = append(v.fields, vf)

		default:
			panic("query struct field " + field.Name + " must be a component pointer, Entity, With or Without")
		}
	}
	return v
}

// resolve maps the layout against a registry. Output slot i corresponds to
// fields[i]; unregistered types resolve to an ID no archetype contains.
func (v *viewLayout) resolve(r *ComponentRegistry) []Filter {
	filters := make([]Filter, 0, len(v.fields)+len(v.filters))
	for i, f := range v.fields {
		kind := FilterWith
		if f.optional {
			kind = FilterOptional
		}
		filters = append(filters, Filter{Component: resolveID(r, f.typ), Kind: kind, Slot: i})
	}
	for _, f := range v.filters {
		filters = append(filters, Filter{Component: resolveID(r, f.typ), Kind: f.kind, Slot: -1})
	}
	return filters
}

// required returns the component types that must exist for the layout to match
// anything.
func (v *viewLayout) required() []reflect.Type {
	var types []reflect.Type
	for _, f := range v.fields {
		if !f.optional {
			types = append(types, f.typ)
		}
	}
	for _, f := range v.filters {
		if f.kind == FilterWith {
			types = append(types, f.typ)
		}
	}
	return types
}

func resolveID(r *ComponentRegistry, t reflect.Type) ComponentID {
	if id, ok := r.ID(t); ok {
		return id
	}
	return invalidComponentID
}

// rowCursor holds the column base addresses of one matched archetype so rows
// can be filled without going through the channel interface.
type rowCursor struct {
	bases []unsafe.Pointer
	sizes []uintptr
}

func (v *viewLayout) cursor(a *Archetype, m ArchetypeMatch, c *rowCursor) {
	if cap(c.bases) < len(v.fields) {
		c.bases = make([]unsafe.Pointer, len(v.fields))
		c.sizes = make([]uintptr, len(v.fields))
	}
	c.bases = c.bases[:len(v.fields)]
	c.sizes = c.sizes[:len(v.fields)]
	for i, ch := range m.Channels {
		if ch < 0 || a.Len() == 0 {
			c.bases[i] = nil
			continue
		}
		c.bases[i] = a.channels[ch].Pointer(0)
		c.sizes[i] = v.fields[i].typ.Size()
	}
}

// fill populates the struct at dst for row using a prepared cursor.
func (v *viewLayout) fill(dst unsafe.Pointer, c *rowCursor, row int, e Entity) {
	for i, f := range v.fields {
		fieldPtr := unsafe.Add(dst, f.offset)
		if c.bases[i] == nil {
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = unsafe.Add(c.bases[i], uintptr(row)*c.sizes[i])
	}
	for _, off := range v.entityOffsets {
		*(*Entity)(unsafe.Add(dst, off)) = e
	}
}
