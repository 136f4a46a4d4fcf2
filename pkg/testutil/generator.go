// Package testutil provides declaration fixtures and assertion helpers for
// graph and focus tests. All generators produce deterministic output for
// reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// WG returns a working-group pipeline declaration.
func WG(name string, number int) *model.Pipeline {
	return &model.Pipeline{
		Name:         name,
		Kind:         model.KindWorkingGroupPipeline,
		WorkingGroup: &model.WorkingGroup{Number: number, Name: name},
	}
}

// External returns an external-group pipeline declaration.
func External(name string) *model.Pipeline {
	return &model.Pipeline{Name: name, Kind: model.KindExternalGroupPipeline}
}

// Public returns a public sink declaration.
func Public(name string) *model.Pipeline {
	return &model.Pipeline{Name: name, Kind: model.KindPublic}
}

// Leaf returns a record with only a name.
func Leaf(name string) model.DataRecord {
	return model.DataRecord{Information: model.Information{Name: name}}
}

// Tree returns a record decomposing into children.
func Tree(info model.Information, children ...model.DataRecord) model.DataRecord {
	return model.DataRecord{Information: info, Elements: children}
}

// Flow declares one data flow.
func Flow(src *model.Pipeline, data model.DataRecord, dst ...*model.Pipeline) model.DataFlowDeclaration {
	return model.DataFlowDeclaration{Source: src, Destinations: dst, Data: data}
}

// ChainFixture is A -> X -> B -> Y -> C where A and B are working groups and C
// is public.
func ChainFixture() []model.DataFlowDeclaration {
	a, b, c := WG("A", 1), WG("B", 2), Public("C")
	return []model.DataFlowDeclaration{
		Flow(a, Leaf("X"), b),
		Flow(b, Leaf("Y"), c),
	}
}

// TreeFixture is A -> X -> B where X carries unit "per event" and decomposes
// into leaves u1 and u2.
func TreeFixture() []model.DataFlowDeclaration {
	a, b := WG("A", 1), WG("B", 2)
	return []model.DataFlowDeclaration{
		Flow(a, Tree(model.Information{Name: "X", Unit: "per event"}, Leaf("u1"), Leaf("u2")), b),
	}
}

// SiblingFixture has two flows out of A, each with its own subtree, plus a
// nested subtree under f1 to exercise multi-level closure.
func SiblingFixture() []model.DataFlowDeclaration {
	a, b, c := WG("A", 1), WG("B", 2), External("E")
	f1 := Tree(model.Information{Name: "f1", Frequency: "daily"},
		Tree(model.Information{Name: "f1.t"}, Leaf("f1.t.a"), Leaf("f1.t.b")),
		Leaf("f1.l"),
	)
	f2 := Tree(model.Information{Name: "f2"}, Leaf("f2.l"))
	return []model.DataFlowDeclaration{
		Flow(a, f1, b),
		Flow(a, f2, b, c),
	}
}

// GeneratorConfig controls declaration generation.
type GeneratorConfig struct {
	Seed         int64 // Random seed for determinism (0 = use current time)
	Pipelines    int   // Number of pipelines (default 6)
	Flows        int   // Number of flows (default 12)
	MaxDepth     int   // Maximum decomposition depth (default 2)
	MaxBreadth   int   // Maximum children per tree node (default 3)
	PublicSinks  int   // Number of public sinks among the pipelines (default 1)
	ExternalMix  float64
	TreeFraction float64 // Share of flows that decompose (default 0.5)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		Pipelines:    6,
		Flows:        12,
		MaxDepth:     2,
		MaxBreadth:   3,
		PublicSinks:  1,
		ExternalMix:  0.3,
		TreeFraction: 0.5,
	}
}

// Generator creates random but reproducible declaration sets.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	def := DefaultConfig()
	if cfg.Pipelines < 2 {
		cfg.Pipelines = def.Pipelines
	}
	if cfg.Flows <= 0 {
		cfg.Flows = def.Flows
	}
	if cfg.MaxBreadth <= 0 {
		cfg.MaxBreadth = def.MaxBreadth
	}
	if cfg.PublicSinks >= cfg.Pipelines {
		cfg.PublicSinks = cfg.Pipelines - 1
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Declarations generates a declaration set. Public sinks are only ever
// destinations; every flow has at least one destination distinct from its
// source.
func (g *Generator) Declarations() []model.DataFlowDeclaration {
	var senders, all []*model.Pipeline
	for i := 0; i < g.cfg.Pipelines; i++ {
		name := fmt.Sprintf("P%02d", i)
		var p *model.Pipeline
		switch {
		case i >= g.cfg.Pipelines-g.cfg.PublicSinks:
			p = Public(name)
		case g.rng.Float64() < g.cfg.ExternalMix:
			p = External(name)
			senders = append(senders, p)
		default:
			p = WG(name, i+1)
			senders = append(senders, p)
		}
		all = append(all, p)
	}

	decls := make([]model.DataFlowDeclaration, 0, g.cfg.Flows)
	for i := 0; i < g.cfg.Flows; i++ {
		src := senders[g.rng.Intn(len(senders))]
		var dsts []*model.Pipeline
		seen := map[string]bool{src.Name: true}
		for n := 1 + g.rng.Intn(3); n > 0; n-- {
			d := all[g.rng.Intn(len(all))]
			if !seen[d.Name] {
				seen[d.Name] = true
				dsts = append(dsts, d)
			}
		}
		if len(dsts) == 0 {
			for _, d := range all {
				if d.Name != src.Name {
					dsts = append(dsts, d)
					break
				}
			}
		}
		name := fmt.Sprintf("F%02d", i)
		data := Leaf(name)
		if g.rng.Float64() < g.cfg.TreeFraction {
			data.Elements = g.elements(name, 1)
		}
		decls = append(decls, Flow(src, data, dsts...))
	}
	return decls
}

func (g *Generator) elements(prefix string, depth int) []model.DataRecord {
	n := 1 + g.rng.Intn(g.cfg.MaxBreadth)
	out := make([]model.DataRecord, n)
	for i := range out {
		name := fmt.Sprintf("%s.%d", prefix, i)
		out[i] = Leaf(name)
		if g.rng.Intn(2) == 0 {
			out[i].Unit = "unit of " + name
		}
		if depth < g.cfg.MaxDepth && g.rng.Intn(3) == 0 {
			out[i].Elements = g.elements(name, depth+1)
		}
	}
	return out
}
