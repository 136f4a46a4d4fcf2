package dataset

import (
	"testing"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

func TestDeclarations(t *testing.T) {
	decls, ps := Declarations()
	if len(decls) != 27 {
		t.Errorf("expected 27 flows, got %d", len(decls))
	}
	if n := len(ps.All()); n != 16 {
		t.Errorf("expected 16 pipelines, got %d", n)
	}
	for i, d := range decls {
		if err := d.Validate(); err != nil {
			t.Errorf("declaration %d (%s): %v", i, d.Data.Name, err)
		}
		if d.Source.Kind == model.KindPublic {
			t.Errorf("declaration %d (%s) has the public sink as source", i, d.Data.Name)
		}
	}
}

func TestPipelinesFresh(t *testing.T) {
	a, b := Pipelines(), Pipelines()
	a.EventModeling.Name = "changed"
	if b.EventModeling.Name != "Event modeling pipeline" {
		t.Errorf("Pipelines shares state between calls")
	}
	if a.LensFluxAnalysis.WorkingGroup.Number != 4 || a.DifferenceImageAnalysis.WorkingGroup.Number != 4 {
		t.Errorf("WG4 pipelines misassigned")
	}
	if a.SOC.WorkingGroup != nil {
		t.Errorf("external pipelines carry no working group")
	}
}

func TestPublicProducts(t *testing.T) {
	decls, ps := Declarations()
	var public int
	for _, d := range decls {
		for _, dst := range d.Destinations {
			if dst == ps.Public {
				public++
			}
		}
	}
	if public != 12 {
		t.Errorf("expected 12 flows into Public, got %d", public)
	}
}
