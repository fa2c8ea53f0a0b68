package main

import (
	"cmp"
	"io"
	"runtime"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/rotisserie/eris"

	"github.com/plus3/kudo/ecs"
)

// topArchetypes bounds the archetype table; a random population produces
// hundreds of small ones.
const topArchetypes = 10

type Report struct {
	Duration   time.Duration
	Entities   int
	Components int
	Systems    int

	Frames         FrameTimes
	Errors         int
	GCPauseMetrics bool
	Memory         MemoryDelta

	World     *ecs.WorldStats
	Scheduler *ecs.SchedulerStats
	Frame     FrameStats
}

// FrameTimes collects per-frame durations and summarizes them as percentiles.
type FrameTimes struct {
	samples []time.Duration
	sorted  bool
}

func (f *FrameTimes) Add(d time.Duration) {
	f.samples = append(f.samples, d)
	f.sorted = false
}

func (f *FrameTimes) Count() int { return len(f.samples) }

// Percentile returns the nearest-rank p-th percentile, p in [0, 100].
func (f *FrameTimes) Percentile(p float64) time.Duration {
	if len(f.samples) == 0 {
		return 0
	}
	if !f.sorted {
		slices.Sort(f.samples)
		f.sorted = true
	}
	rank := int(p / 100 * float64(len(f.samples)-1))
	return f.samples[min(max(rank, 0), len(f.samples)-1)]
}

// MemoryDelta is the heap movement over the measured loop.
type MemoryDelta struct {
	HeapGrowth int64
	Allocated  uint64
	GCCycles   uint32
	GCPause    time.Duration
}

// measureMemory diffs two runtime snapshots.
func measureMemory(start, end *runtime.MemStats) MemoryDelta {
	return MemoryDelta{
		HeapGrowth: int64(end.HeapAlloc) - int64(start.HeapAlloc),
		Allocated:  end.TotalAlloc - start.TotalAlloc,
		GCCycles:   end.NumGC - start.NumGC,
		GCPause:    time.Duration(end.PauseTotalNs - start.PauseTotalNs),
	}
}

// LargestArchetypes returns the most populated archetypes, largest first.
func (r *Report) LargestArchetypes() []ecs.ArchetypeStats {
	if r.World == nil {
		return nil
	}
	out := slices.Clone(r.World.ArchetypeBreakdown)
	slices.SortStableFunc(out, func(a, b ecs.ArchetypeStats) int {
		return cmp.Compare(b.EntityCount, a.EntityCount)
	})
	return out[:min(len(out), topArchetypes)]
}

// BytesPerEntity is the heap growth spread over the entities alive at the end.
func (r *Report) BytesPerEntity() int64 {
	if r.World == nil || r.World.TotalEntityCount == 0 {
		return 0
	}
	return r.Memory.HeapGrowth / int64(r.World.TotalEntityCount)
}

const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Generated Components:** {{.Components}}
- **Generated Systems:** {{.Systems}}

## Frames
- **Frames Run:** {{.Frames.Count}}
- **p50 / p95 / p99:** {{.Frames.Percentile 50}} / {{.Frames.Percentile 95}} / {{.Frames.Percentile 99}}
- **Slowest:** {{.Frames.Percentile 100}}
- **Failed Frames:** {{.Errors}}
- **Entities Matched (counting systems):** {{.Frame.Matched}}
{{with .World}}
## World
- **Live Entities:** {{.TotalEntityCount}}
- **Archetypes:** {{.ArchetypeCount}}
- **Registered Components:** {{.ComponentTypeCount}}
- **Resources:** {{.ResourceCount}}
{{end}}
{{- with .LargestArchetypes}}
| Archetype | Entities | Components |
|---|---|---|
{{- range .}}
| {{.Index}} | {{.EntityCount}} | {{join .ComponentTypes}} |
{{- end}}
{{end}}
{{- with .Scheduler}}
## Systems
{{- range .Systems}}
- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}, errors {{.ErrorCount}}
{{- end}}
{{end}}
## Memory
- **Heap Growth:** {{.Memory.HeapGrowth}} bytes ({{.BytesPerEntity}} per live entity)
- **Allocated:** {{.Memory.Allocated}} bytes
{{- if .GCPauseMetrics}}
- **GC Cycles:** {{.Memory.GCCycles}}, paused {{.Memory.GCPause}}
{{- end}}
`

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"join": func(names []string) string {
			if len(names) == 0 {
				return "(empty)"
			}
			return strings.Join(names, ", ")
		},
	}).Parse(reportTemplate)
	if err != nil {
		return eris.Wrap(err, "parse report template")
	}

	return eris.Wrap(tmpl.Execute(w, r), "render report")
}
