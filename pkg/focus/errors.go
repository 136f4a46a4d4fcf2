package focus

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/pitgraph/pkg/model"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrUnknownNode indicates a focus request for an id absent from the store.
	ErrUnknownNode = errors.New("unknown node")

	// ErrKindMismatch indicates a focus request on a node of the wrong kind.
	ErrKindMismatch = errors.New("kind mismatch")
)

// UnknownNodeError reports an id the store does not hold.
// Wraps ErrUnknownNode for errors.Is() compatibility.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q", ErrUnknownNode.Error(), e.ID)
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// KindMismatchError reports a focus operation asked of a node that does not
// carry any of the kinds the operation accepts.
// Wraps ErrKindMismatch for errors.Is() compatibility.
type KindMismatchError struct {
	Op   string
	ID   string
	Name string
	Have model.KindSet
	Want model.KindSet
}

func (e *KindMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s focus on %q (%s), want one of %s",
		ErrKindMismatch.Error(), e.Op, e.Name, e.Have, e.Want)
}

func (e *KindMismatchError) Unwrap() error { return ErrKindMismatch }
