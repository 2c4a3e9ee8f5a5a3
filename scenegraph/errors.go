package scenegraph

import (
	"github.com/pkg/errors"
)

var (
	// ErrNodeNotFound is returned for handles that were never issued or whose node has been removed.
	ErrNodeNotFound = errors.New("node not found in scene")
	// ErrAlreadyParented is returned when adding a node that already has a parent as a child.
	ErrAlreadyParented = errors.New("node already has a parent")
	// ErrCycle is returned when parenting a node under itself or one of its descendants.
	ErrCycle = errors.New("parenting would create a cycle")
	// ErrSkipSubtree may be returned by a Walk visitor to skip the children of the visited node.
	ErrSkipSubtree = errors.New("skip subtree")
)

func newNodeNotFoundError(id NodeID) error {
	return errors.Wrapf(ErrNodeNotFound, "node %v", id)
}
