package graph

import (
	"errors"
	"fmt"
)

// ErrStructural indicates a structural violation: duplicate ids, dangling
// references or a broken flow/tree invariant.
var ErrStructural = errors.New("structural error")

// StructuralError describes one structural violation.
// Wraps ErrStructural for errors.Is() compatibility.
type StructuralError struct {
	Kind string // "duplicate_flow", "dangling_reference", "leaf_with_children", ...
	Msg  string
}

func (e *StructuralError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrStructural.Error()
	}
	return fmt.Sprintf("%s: %s", ErrStructural.Error(), e.Msg)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// Structural error kinds.
const (
	KindInvalidDeclaration     = "invalid_declaration"
	KindConflictingPipeline    = "conflicting_pipeline"
	KindDuplicateNode          = "duplicate_node"
	KindDuplicateFlow          = "duplicate_flow"
	KindDuplicateEdge          = "duplicate_edge"
	KindDanglingReference      = "dangling_reference"
	KindSelfReference          = "self_reference"
	KindFlowWithoutSource      = "flow_without_source"
	KindFlowWithoutDestination = "flow_without_destination"
	KindLeafWithChildren       = "leaf_with_children"
	KindMultipleTreeParents    = "multiple_tree_parents"
	KindOrphanTreeNode         = "orphan_tree_node"
)
