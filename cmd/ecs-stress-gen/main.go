// Command ecs-stress-gen writes the component and system definitions used by
// ecs-stress.
//
//	go run ./cmd/ecs-stress-gen -components 16 -systems 8 -out cmd/ecs-stress/generated.go
package main

import (
	"bytes"
	"flag"
	"os"
	"text/template"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/tools/imports"
)

type system struct {
	Index   int
	Write   int
	Read    int
	Counter bool
}

type params struct {
	Components []int
	Systems    []system
}

const source = `// Code generated by ecs-stress-gen; DO NOT EDIT.

package main

import (
	"math/rand/v2"

	"github.com/plus3/kudo/ecs"
)

const (
	componentCount = {{len .Components}}
	systemCount    = {{len .Systems}}
)
{{range .Components}}
type Component{{.}} struct {
	Value float64
	Ticks int
}
{{end}}
// RegisterAllGeneratedComponents registers every generated component type.
func RegisterAllGeneratedComponents(registry *ecs.ComponentRegistry) {
{{- range .Components}}
	ecs.RegisterComponent[Component{{.}}](registry)
{{- end}}
}

var componentFactories = [componentCount]func(rng *rand.Rand) any{
{{- range .Components}}
	func(rng *rand.Rand) any { return Component{{.}}{Value: rng.Float64()} },
{{- end}}
}
{{range .Systems}}
type System{{.Index}} struct {
	Entities ecs.Query[struct {
		*Component{{.Write}}
		*Component{{.Read}} ` + "`ecs:\"read\"`" + `
	}]
{{- if .Counter}}
	Stats ecs.Res[FrameStats]
{{- end}}
}

func (s *System{{.Index}}) Execute(frame *ecs.UpdateFrame) error {
{{- if .Counter}}
	if stats := s.Stats.Get(); stats != nil {
		stats.Matched += s.Entities.Count()
	}
{{- end}}
	for item := range s.Entities.Values() {
		item.Component{{.Write}}.Value += item.Component{{.Read}}.Value * frame.DeltaTime
		item.Component{{.Write}}.Ticks++
	}
	return nil
}
{{end}}
// RegisterAllGeneratedSystems registers every generated system with scheduler.
func RegisterAllGeneratedSystems(scheduler *ecs.Scheduler) {
{{- range .Systems}}
	scheduler.Register(&System{{.Index}}{})
{{- end}}
}
`

func generate(componentCount, systemCount int) ([]byte, error) {
	if componentCount < 2 {
		return nil, eris.Errorf("need at least 2 components, got %d", componentCount)
	}
	if systemCount < 1 {
		return nil, eris.Errorf("need at least 1 system, got %d", systemCount)
	}

	p := params{
		Components: make([]int, componentCount),
		Systems:    make([]system, systemCount),
	}
	for i := range p.Components {
		p.Components[i] = i
	}
	for i := range p.Systems {
		p.Systems[i] = system{
			Index:   i,
			Write:   i % componentCount,
			Read:    (i + 1) % componentCount,
			Counter: i%4 == 0,
		}
	}

	tmpl, err := template.New("generated").Parse(source)
	if err != nil {
		return nil, eris.Wrap(err, "parse template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, eris.Wrap(err, "execute template")
	}

	out, err := imports.Process("generated.go", buf.Bytes(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "format generated source")
	}
	return out, nil
}

func main() {
	componentCount := flag.Int("components", 16, "Number of component types to generate.")
	systemCount := flag.Int("systems", 8, "Number of systems to generate.")
	out := flag.String("out", "generated.go", "Output file.")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	src, err := generate(*componentCount, *systemCount)
	if err != nil {
		log.Fatal().Err(err).Msg("generate")
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("write")
	}
	log.Info().
		Int("components", *componentCount).
		Int("systems", *systemCount).
		Str("path", *out).
		Msg("generated stress harness definitions")
}
