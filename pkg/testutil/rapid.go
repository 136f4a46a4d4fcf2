package testutil

import (
	"pgregory.net/rapid"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// DeclarationsGen draws declaration sets for property tests. The shape
// follows Generator but every choice is made by rapid so failures shrink.
func DeclarationsGen() *rapid.Generator[[]model.DataFlowDeclaration] {
	return rapid.Custom(func(t *rapid.T) []model.DataFlowDeclaration {
		cfg := GeneratorConfig{
			Seed:         rapid.Int64Range(1, 1<<40).Draw(t, "seed"),
			Pipelines:    rapid.IntRange(2, 8).Draw(t, "pipelines"),
			Flows:        rapid.IntRange(1, 16).Draw(t, "flows"),
			MaxDepth:     rapid.IntRange(1, 3).Draw(t, "depth"),
			MaxBreadth:   rapid.IntRange(1, 4).Draw(t, "breadth"),
			PublicSinks:  rapid.IntRange(0, 2).Draw(t, "public"),
			ExternalMix:  rapid.Float64Range(0, 1).Draw(t, "external"),
			TreeFraction: rapid.Float64Range(0, 1).Draw(t, "trees"),
		}
		return New(cfg).Declarations()
	})
}
