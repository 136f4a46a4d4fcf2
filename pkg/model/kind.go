package model

import (
	"fmt"
	"strings"
)

// Kind tags a node. A node may carry more than one kind (a data flow whose
// payload decomposes into elements is both DataFlow and DataTree).
type Kind uint8

const (
	KindWorkingGroupPipeline Kind = 1 << iota
	KindExternalGroupPipeline
	KindPublic
	KindDataFlow
	KindDataTree
	KindDataLeaf
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindWorkingGroupPipeline, "working-group-pipeline"},
	{KindExternalGroupPipeline, "external-group-pipeline"},
	{KindPublic, "public"},
	{KindDataFlow, "data-flow"},
	{KindDataTree, "data-tree"},
	{KindDataLeaf, "data-leaf"},
}

// String returns the style class name used by the renderers.
func (k Kind) String() string {
	for _, kn := range kindNames {
		if kn.kind == k {
			return kn.name
		}
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a style class name back into a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, kn := range kindNames {
		if kn.name == s {
			return kn.kind, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// IsPipeline reports whether k is one of the top-level actor kinds.
func (k Kind) IsPipeline() bool {
	return k == KindWorkingGroupPipeline || k == KindExternalGroupPipeline || k == KindPublic
}

// KindSet is a set of kinds. Matching is OR: a node matches a filter when it
// carries any kind in the filter.
type KindSet uint8

// Kinds builds a KindSet from individual kinds.
func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= KindSet(k)
	}
	return s
}

// Common filters.
var (
	PipelineKinds  = Kinds(KindWorkingGroupPipeline, KindExternalGroupPipeline, KindPublic)
	GroupKinds     = Kinds(KindWorkingGroupPipeline, KindExternalGroupPipeline)
	StructureKinds = Kinds(KindDataTree, KindDataLeaf)
	GlobalKinds    = Kinds(KindWorkingGroupPipeline, KindExternalGroupPipeline, KindDataFlow)
	AllKinds       = Kinds(KindWorkingGroupPipeline, KindExternalGroupPipeline, KindPublic, KindDataFlow, KindDataTree, KindDataLeaf)
)

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	return s&KindSet(k) != 0
}

// Matches reports whether the two sets share at least one kind.
func (s KindSet) Matches(filter KindSet) bool {
	return s&filter != 0
}

// With returns s with k added.
func (s KindSet) With(k Kind) KindSet {
	return s | KindSet(k)
}

// List returns the kinds in the set in declaration order.
func (s KindSet) List() []Kind {
	var out []Kind
	for _, kn := range kindNames {
		if s.Has(kn.kind) {
			out = append(out, kn.kind)
		}
	}
	return out
}

// Classes returns the style class names of every kind in the set.
func (s KindSet) Classes() []string {
	kinds := s.List()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

func (s KindSet) String() string {
	return strings.Join(s.Classes(), ",")
}

// EdgeKind tags an edge.
type EdgeKind uint8

const (
	// EdgeDataFlow connects a pipeline to a flow or a flow to a pipeline.
	EdgeDataFlow EdgeKind = iota + 1
	// EdgeDataTree connects a structural parent to a child element.
	EdgeDataTree
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDataFlow:
		return "data-flow-edge"
	case EdgeDataTree:
		return "data-tree-edge"
	default:
		return fmt.Sprintf("edge-kind(%d)", uint8(k))
	}
}
