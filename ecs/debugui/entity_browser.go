package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/kudo/ecs"
)

type EntityInfo struct {
	Entity         ecs.Entity
	ArchetypeIndex int
	ComponentTypes []string
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	lastLen       int
	lastArchetype int
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache: &EntityBrowserCache{
			sortAscending: true,
		},
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

func (eb *EntityBrowserComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	eb.rebuildCacheIfNeeded(world)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.ClearFilter()
	}

	filteredEntities := eb.filteredEntities()
	start, end := eb.pageBounds(len(filteredEntities))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, info := range filteredEntities[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selected == info.Entity
			if imgui.SelectableBoolV(info.Entity.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected, eb.hasSelection = info.Entity, true
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("#%d", info.ArchetypeIndex))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(info.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(info.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := eb.pageCount(len(filteredEntities))
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}
}

func (eb *EntityBrowserComponent) pageCount(n int) int {
	return max((n+eb.maxEntitiesPerPage-1)/eb.maxEntitiesPerPage, 1)
}

// pageBounds clamps the current page to n entities and returns its slice bounds.
func (eb *EntityBrowserComponent) pageBounds(n int) (int, int) {
	eb.currentPage = min(eb.currentPage, eb.pageCount(n)-1)
	start := eb.currentPage * eb.maxEntitiesPerPage
	return start, min(start+eb.maxEntitiesPerPage, n)
}

// rebuildCacheIfNeeded rebuilds the entity list whenever the entity count or
// the number of archetypes changed since the last frame.
func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(world *ecs.World) {
	if eb.cache.lastLen != world.Len() || eb.cache.lastArchetype != world.ArchetypeCount() {
		eb.cache.entities = nil
		eb.cache.lastLen = world.Len()
		eb.cache.lastArchetype = world.ArchetypeCount()
	}

	if eb.cache.entities == nil {
		eb.rebuildCache(world)
	}
}

func (eb *EntityBrowserComponent) rebuildCache(world *ecs.World) {
	eb.cache.entities = make([]EntityInfo, 0, world.Len())

	for archetype := range world.Archetypes() {
		names := typeNames(archetype)
		for _, e := range archetype.Iter() {
			eb.cache.entities = append(eb.cache.entities, EntityInfo{
				Entity:         e,
				ArchetypeIndex: archetype.Index(),
				ComponentTypes: names,
			})
		}
	}

	eb.sortEntities()
}

func compareEntities(a, b ecs.Entity) int {
	return cmp.Or(cmp.Compare(a.Index, b.Index), cmp.Compare(a.Generation, b.Generation))
}

func (eb *EntityBrowserComponent) sortEntities() {
	slices.SortStableFunc(eb.cache.entities, func(a, b EntityInfo) int {
		var c int
		switch eb.cache.sortColumn {
		case 1:
			c = cmp.Compare(a.ArchetypeIndex, b.ArchetypeIndex)
		case 2:
			c = strings.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case 3:
			c = cmp.Compare(len(a.ComponentTypes), len(b.ComponentTypes))
		}
		c = cmp.Or(c, compareEntities(a.Entity, b.Entity))
		if !eb.cache.sortAscending {
			return -c
		}
		return c
	})
}

func (eb *EntityBrowserComponent) filteredEntities() []EntityInfo {
	if eb.filterText == "" && !eb.hasArchetypeFilter {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, info := range eb.cache.entities {
		if eb.hasArchetypeFilter && info.ArchetypeIndex != eb.filterArchetype {
			continue
		}

		if eb.filterText != "" {
			archStr := fmt.Sprintf("#%d", info.ArchetypeIndex)
			componentsStr := strings.ToLower(strings.Join(info.ComponentTypes, " "))

			if !strings.Contains(info.Entity.String(), filterLower) &&
				!strings.Contains(archStr, filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, info)
	}

	return filtered
}

// FilterArchetype restricts the browser to entities of one archetype.
func (eb *EntityBrowserComponent) FilterArchetype(index int) {
	eb.filterArchetype, eb.hasArchetypeFilter = index, true
	eb.currentPage = 0
}

// ClearFilter removes the text and archetype filters.
func (eb *EntityBrowserComponent) ClearFilter() {
	eb.filterText = ""
	eb.hasArchetypeFilter = false
	eb.currentPage = 0
}

// SelectedEntity returns the entity last clicked in the table.
func (eb *EntityBrowserComponent) SelectedEntity() (ecs.Entity, bool) {
	return eb.selected, eb.hasSelection
}
