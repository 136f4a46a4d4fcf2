package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// SourceDiff represents differences between two declaration sources.
// Flows are matched by source pipeline and flow name.
type SourceDiff struct {
	SourceA string
	SourceB string
	// MissingInA holds flow keys present in B but not in A.
	MissingInA []string
	// MissingInB holds flow keys present in A but not in B.
	MissingInB []string
	// Changed holds per-field differences of flows present in both.
	Changed []FlowDifference
	CountA  int
	CountB  int
}

// FlowDifference is one field that differs for a flow present in both
// sources. Field is a record field name, "destinations" or "elements".
type FlowDifference struct {
	Flow  string `json:"flow"`
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// HasInconsistencies returns true if there are any differences between sources.
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.Changed) > 0
}

// Summary returns a human-readable summary of the differences.
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d flows each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Differences between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count mismatch: %d vs %d flows\n", d.CountA, d.CountB)
	}
	list := func(ids []string) {
		if len(ids) <= 5 {
			for _, id := range ids {
				fmt.Fprintf(&sb, "    - %s\n", id)
			}
		}
	}
	if len(d.MissingInA) > 0 {
		fmt.Fprintf(&sb, "  - %d flows in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		list(d.MissingInA)
	}
	if len(d.MissingInB) > 0 {
		fmt.Fprintf(&sb, "  - %d flows in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		list(d.MissingInB)
	}
	if len(d.Changed) > 0 {
		fmt.Fprintf(&sb, "  - %d changed fields\n", len(d.Changed))
		if len(d.Changed) <= 10 {
			for _, c := range d.Changed {
				fmt.Fprintf(&sb, "    - %s %s: %q vs %q\n", c.Flow, c.Field, c.A, c.B)
			}
		}
	}
	return sb.String()
}

// FlowKey names a flow by its source pipeline and payload name.
func FlowKey(d model.DataFlowDeclaration) string {
	src := ""
	if d.Source != nil {
		src = d.Source.Name
	}
	return src + "/" + d.Data.Name
}

// DetectInconsistencies compares two sets of declarations.
func DetectInconsistencies(a, b Declarations, sourceA, sourceB string) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}

	mapA := flowMap(a.Flows)
	mapB := flowMap(b.Flows)
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for key := range mapA {
		if _, ok := mapB[key]; !ok {
			diff.MissingInB = append(diff.MissingInB, key)
		}
	}
	for key, fb := range mapB {
		fa, ok := mapA[key]
		if !ok {
			diff.MissingInA = append(diff.MissingInA, key)
			continue
		}
		diff.Changed = append(diff.Changed, compareFlows(key, fa, fb)...)
	}

	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Slice(diff.Changed, func(i, j int) bool {
		if diff.Changed[i].Flow != diff.Changed[j].Flow {
			return diff.Changed[i].Flow < diff.Changed[j].Flow
		}
		return diff.Changed[i].Field < diff.Changed[j].Field
	})
	return diff
}

func flowMap(flows []model.DataFlowDeclaration) map[string]model.DataFlowDeclaration {
	m := make(map[string]model.DataFlowDeclaration, len(flows))
	for _, f := range flows {
		m[FlowKey(f)] = f
	}
	return m
}

func compareFlows(key string, a, b model.DataFlowDeclaration) []FlowDifference {
	var out []FlowDifference
	add := func(field, va, vb string) {
		if va != vb {
			out = append(out, FlowDifference{Flow: key, Field: field, A: va, B: vb})
		}
	}
	add("destinations", destinationNames(a), destinationNames(b))
	add("elements", strings.Join(elementPaths(a.Data, ""), ", "), strings.Join(elementPaths(b.Data, ""), ", "))
	for _, f := range model.DetailFields {
		va, _ := a.Data.Get(f)
		vb, _ := b.Data.Get(f)
		add(string(f), va, vb)
	}
	return out
}

func destinationNames(d model.DataFlowDeclaration) string {
	names := make([]string, 0, len(d.Destinations))
	for _, p := range d.Destinations {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// elementPaths lists every element below r as a slash-joined name path.
func elementPaths(r model.DataRecord, prefix string) []string {
	var out []string
	for _, el := range r.Elements {
		p := prefix + el.Name
		out = append(out, p)
		out = append(out, elementPaths(el, p+"/")...)
	}
	return out
}

// CompareSources loads and compares two sources.
func CompareSources(sourceA, sourceB Source) (*SourceDiff, error) {
	a, err := Load(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA, err)
	}
	b, err := Load(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB, err)
	}
	diff := DetectInconsistencies(a, b, label(sourceA), label(sourceB))
	return &diff, nil
}

func label(s Source) string {
	if s.Path == "" {
		return string(s.Type)
	}
	return s.Path
}
