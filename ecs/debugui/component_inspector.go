package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/rotisserie/eris"

	"github.com/plus3/kudo/ecs"
)

var errFieldNotSettable = eris.New("field is not settable")

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{
		fields: newFieldCache(),
	}
}

// Select makes e the inspected entity.
func (ci *ComponentInspectorComponent) Select(e ecs.Entity) {
	ci.selected, ci.hasSelection = e, true
}

func (ci *ComponentInspectorComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if !ci.hasSelection {
		imgui.Text("No entity selected")
		return
	}

	loc, ok := world.Location(ci.selected)
	if !ok {
		imgui.Text(fmt.Sprintf("Entity %s no longer exists", ci.selected))
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selected))
	imgui.Text(fmt.Sprintf("Archetype: #%d (row %d)", loc.ArchetypeIndex, loc.Row))
	imgui.Separator()

	for _, compType := range world.Archetype(loc.ArchetypeIndex).Types() {
		component, err := world.Component(ci.selected, compType)
		if err != nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			val := reflect.ValueOf(component).Elem()
			for _, field := range ci.fields.Fields(compType) {
				ci.renderField(world, compType, field, field.resolve(val))
			}
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspectorComponent) renderField(world *ecs.World, compType reflect.Type, field FieldInfo, val reflect.Value) {
	name := field.Name
	if name == "" {
		name = "value"
	}
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	id := fmt.Sprintf("##%s%v", compType, field.Path)
	var edited any

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) {
			edited = int64(v)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) && v >= 0 {
			edited = uint64(v)
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(id, &v) {
			edited = float64(v)
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name+id, &v) {
			edited = v
		}

	case reflect.String:
		v := val.String()
		imgui.Text(name + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			edited = v
		}

	case reflect.Struct:
		if val.Type() == reflect.TypeFor[ecs.Entity]() {
			imgui.Text(fmt.Sprintf("%s: %s", name, val.Interface()))
			return
		}
		if imgui.TreeNodeStr(name + id) {
			for _, nested := range ci.fields.Fields(val.Type()) {
				ci.renderField(world, compType, nested, nested.resolve(val))
			}
			imgui.TreePop()
		}
		return

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))
		return

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))
		return

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		return
	}

	if edited != nil {
		_ = setField(val, edited)
	}
}

// setField stores value into the settable scalar field, converting between
// the widget type and the field's own width.
func setField(field reflect.Value, value any) error {
	if !field.CanSet() {
		return errFieldNotSettable
	}

	kind := field.Kind()
	switch v := value.(type) {
	case int64:
		if kind < reflect.Int || kind > reflect.Int64 {
			break
		}
		if field.OverflowInt(v) {
			return eris.Errorf("%d overflows %s", v, field.Type())
		}
		field.SetInt(v)
		return nil
	case uint64:
		if kind < reflect.Uint || kind > reflect.Uintptr {
			break
		}
		if field.OverflowUint(v) {
			return eris.Errorf("%d overflows %s", v, field.Type())
		}
		field.SetUint(v)
		return nil
	case float64:
		if kind != reflect.Float32 && kind != reflect.Float64 {
			break
		}
		field.SetFloat(v)
		return nil
	case bool:
		if kind != reflect.Bool {
			break
		}
		field.SetBool(v)
		return nil
	case string:
		if kind != reflect.String {
			break
		}
		field.SetString(v)
		return nil
	}
	return eris.Errorf("cannot store %T in %s", value, field.Type())
}

// EditField sets the field called name of e's component of type compType.
// Scalar components are addressed by their type name.
func (ci *ComponentInspectorComponent) EditField(world *ecs.World, e ecs.Entity, compType reflect.Type, name string, value any) error {
	component, err := world.Component(e, compType)
	if err != nil {
		return err
	}
	val := reflect.ValueOf(component).Elem()
	for _, field := range ci.fields.Fields(compType) {
		if field.Name != name {
			continue
		}
		target := field.resolve(val)
		if !target.IsValid() {
			return eris.Errorf("field %s of %s is nil", name, compType)
		}
		return setField(target, value)
	}
	return eris.Errorf("%s has no field %s", compType, name)
}
