package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/kudo/ecs"
)

type QueryDebuggerCache struct {
	componentTypes []string
	ids            map[string]ecs.ComponentID
	lastTypeCount  int
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		terms: make(map[string]ecs.FilterKind),
		cache: &QueryDebuggerCache{
			lastTypeCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	qd.rebuildCacheIfNeeded(world)

	imgui.Text("Select With / Without terms:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.terms)
	}

	for _, name := range qd.cache.componentTypes {
		kind, set := qd.terms[name]
		with := set && kind == ecs.FilterWith
		without := set && kind == ecs.FilterWithout
		if imgui.Checkbox("##with"+name, &with) {
			qd.setTerm(name, ecs.FilterWith, with)
		}
		imgui.SameLine()
		if imgui.Checkbox("##without"+name, &without) {
			qd.setTerm(name, ecs.FilterWithout, without)
		}
		imgui.SameLine()
		imgui.Text(name)
	}

	imgui.Separator()

	filters := qd.filters()
	if len(filters) == 0 {
		imgui.Text("No component types selected")
		return
	}

	matching := qd.matchingArchetypes(world)
	totalEntities := 0
	for _, arch := range matching {
		totalEntities += arch.Len()
	}

	imgui.Text(fmt.Sprintf("Matching Archetypes: %d", len(matching)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", totalEntities))

	if imgui.TreeNodeStr("Archetype Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryArchTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype")
			imgui.TableSetupColumn("All Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range matching {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("#%d", arch.Index()))

				imgui.TableSetColumnIndex(1)
				imgui.Text(strings.Join(typeNames(arch), ", "))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", arch.Len()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}
}

func (qd *QueryDebuggerComponent) setTerm(name string, kind ecs.FilterKind, on bool) {
	if on {
		qd.terms[name] = kind
		return
	}
	if current, ok := qd.terms[name]; ok && current == kind {
		delete(qd.terms, name)
	}
}

// rebuildCacheIfNeeded lists every registered component type. The registry
// only grows, so its length is a sufficient version.
func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(world *ecs.World) {
	registry := world.Registry()
	if qd.cache.lastTypeCount == registry.Len() {
		return
	}
	qd.cache.lastTypeCount = registry.Len()
	qd.cache.componentTypes = make([]string, 0, registry.Len())
	qd.cache.ids = make(map[string]ecs.ComponentID, registry.Len())

	for i := range registry.Len() {
		id := ecs.ComponentID(i)
		name := registry.Name(id)
		qd.cache.componentTypes = append(qd.cache.componentTypes, name)
		qd.cache.ids[name] = id
	}

	slices.Sort(qd.cache.componentTypes)
}

func (qd *QueryDebuggerComponent) filters() []ecs.Filter {
	filters := make([]ecs.Filter, 0, len(qd.terms))
	for name, kind := range qd.terms {
		id, ok := qd.cache.ids[name]
		if !ok {
			continue
		}
		filters = append(filters, ecs.Filter{Component: id, Kind: kind, Slot: -1})
	}
	return filters
}

// matchingArchetypes resolves the selected terms through the World's storage
// lookup, the same path a Query takes.
func (qd *QueryDebuggerComponent) matchingArchetypes(world *ecs.World) []*ecs.Archetype {
	qd.rebuildCacheIfNeeded(world)

	var matching []*ecs.Archetype
	for m := range world.Lookup().Matching(qd.filters(), 0) {
		matching = append(matching, world.Archetype(m.ArchetypeIndex))
	}
	return matching
}
