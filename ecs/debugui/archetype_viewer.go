package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/kudo/ecs"
)

type ArchetypeInfo struct {
	Index          int
	ComponentTypes []string
	EntityCount    int
}

type ArchetypeViewerCache struct {
	archetypes         []ArchetypeInfo
	lastArchetypeCount int
	sortColumn         int
	sortAscending      bool
}

const (
	archetypeColumnIndex = iota
	archetypeColumnComponents
	archetypeColumnComponentCount
	archetypeColumnEntityCount
)

func NewArchetypeViewerComponent() ArchetypeViewerComponent {
	return ArchetypeViewerComponent{
		cache: &ArchetypeViewerCache{
			sortColumn: archetypeColumnEntityCount,
		},
		sortColumn: archetypeColumnEntityCount,
	}
}

// Render draws the archetype table and returns the archetype clicked this
// frame, if any.
func (av *ArchetypeViewerComponent) Render(world *ecs.World) (int, bool) {
	if !imgui.BeginV("Archetype Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return 0, false
	}
	defer imgui.End()

	av.rebuildCacheIfNeeded(world)

	maxEntityCount := 0
	for _, arch := range av.cache.archetypes {
		maxEntityCount = max(maxEntityCount, arch.EntityCount)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if !imgui.BeginTableV("ArchetypeTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return 0, false
	}
	defer imgui.EndTable()

	imgui.TableSetupColumn("Archetype")
	imgui.TableSetupColumn("Components")
	imgui.TableSetupColumn("Comp Count")
	imgui.TableSetupColumn("Entity Count")
	imgui.TableHeadersRow()

	sortSpecs := imgui.TableGetSortSpecs()
	if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
		spec := sortSpecs.Specs()
		av.setSort(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
		sortSpecs.SetSpecsDirty(false)
	}

	clicked, hasClick := 0, false
	for _, arch := range av.cache.archetypes {
		imgui.TableNextRow()

		imgui.TableNextColumn()
		isSelected := av.hasSelection && av.selected == arch.Index
		if imgui.SelectableBoolV(fmt.Sprintf("#%d", arch.Index), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
			av.selected, av.hasSelection = arch.Index, true
			clicked, hasClick = arch.Index, true
		}

		imgui.TableNextColumn()
		imgui.Text(strings.Join(arch.ComponentTypes, ", "))

		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", len(arch.ComponentTypes)))

		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", arch.EntityCount))

		if maxEntityCount > 0 {
			barWidth := float32(arch.EntityCount) / float32(maxEntityCount) * 80.0
			imgui.SameLine()
			drawList := imgui.WindowDrawList()
			pos := imgui.CursorScreenPos()
			color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
			drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
		}
	}

	return clicked, hasClick
}

func (av *ArchetypeViewerComponent) setSort(column int, ascending bool) {
	av.sortColumn, av.sortAscending = column, ascending
	av.cache.sortColumn, av.cache.sortAscending = column, ascending
	av.sortArchetypes()
}

// rebuildCacheIfNeeded rebuilds the table when a new archetype appears.
// Archetypes are never removed, so between rebuilds only counts change.
func (av *ArchetypeViewerComponent) rebuildCacheIfNeeded(world *ecs.World) {
	if count := world.ArchetypeCount(); av.cache.lastArchetypeCount != count {
		av.cache.archetypes = nil
		av.cache.lastArchetypeCount = count
	}

	if av.cache.archetypes == nil {
		av.rebuildCache(world)
	} else {
		av.updateEntityCounts(world)
	}
}

func (av *ArchetypeViewerComponent) rebuildCache(world *ecs.World) {
	av.cache.archetypes = make([]ArchetypeInfo, 0, world.ArchetypeCount())

	for archetype := range world.Archetypes() {
		av.cache.archetypes = append(av.cache.archetypes, ArchetypeInfo{
			Index:          archetype.Index(),
			ComponentTypes: typeNames(archetype),
			EntityCount:    archetype.Len(),
		})
	}

	av.sortArchetypes()
}

func (av *ArchetypeViewerComponent) updateEntityCounts(world *ecs.World) {
	for i := range av.cache.archetypes {
		av.cache.archetypes[i].EntityCount = world.Archetype(av.cache.archetypes[i].Index).Len()
	}

	if av.sortColumn == archetypeColumnEntityCount {
		av.sortArchetypes()
	}
}

func (av *ArchetypeViewerComponent) sortArchetypes() {
	slices.SortStableFunc(av.cache.archetypes, func(a, b ArchetypeInfo) int {
		var c int
		switch av.cache.sortColumn {
		case archetypeColumnIndex:
			c = a.Index - b.Index
		case archetypeColumnComponents:
			c = strings.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case archetypeColumnComponentCount:
			c = len(a.ComponentTypes) - len(b.ComponentTypes)
		default:
			c = a.EntityCount - b.EntityCount
		}
		if !av.cache.sortAscending {
			return -c
		}
		return c
	})
}

func typeNames(archetype *ecs.Archetype) []string {
	types := archetype.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
