package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one editable leaf field of a component. Fields promoted
// from embedded structs are flattened; Path is the index sequence accepted by
// reflect.Value.FieldByIndex.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Path      []int
	IsPointer bool
}

// Kind returns the kind of the field, looking through a pointer.
func (f FieldInfo) Kind() reflect.Kind {
	return f.Type.Kind()
}

type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]FieldInfo),
	}
}

// Fields returns the exported fields of t. Non-struct types yield a single
// unnamed field with an empty path, addressing the value itself.
func (fc *fieldCache) Fields(t reflect.Type) []FieldInfo {
	fc.mu.RLock()
	cached, ok := fc.fields[t]
	fc.mu.RUnlock()
	if ok {
		return cached
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if cached, ok := fc.fields[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() != reflect.Struct {
		fields = []FieldInfo{{Name: t.Name(), Type: t}}
	} else {
		for _, field := range reflect.VisibleFields(t) {
			if !field.IsExported() {
				continue
			}
			fieldType := field.Type
			if field.Anonymous && underlying(fieldType).Kind() == reflect.Struct {
				continue
			}
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}
			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Path:      field.Index,
				IsPointer: isPointer,
			})
		}
	}

	fc.fields[t] = fields
	return fields
}

// resolve returns the settable value of f inside the struct v, or an invalid
// value when a nil pointer sits on the path.
func (f FieldInfo) resolve(v reflect.Value) reflect.Value {
	if len(f.Path) == 0 {
		return v
	}
	fv, err := v.FieldByIndexErr(f.Path)
	if err != nil {
		return reflect.Value{}
	}
	if f.IsPointer {
		if fv.IsNil() {
			return reflect.Value{}
		}
		fv = fv.Elem()
	}
	return fv
}

func underlying(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
