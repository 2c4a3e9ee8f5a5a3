package scenegraph

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/spatialmath"
)

// WorldOBB returns the payload's object space box moved into world space by the node's cached world
// transform. The boolean is false when the node has no payload or the payload has no box.
func (s *Scene) WorldOBB(id NodeID) (*spatialmath.OBB, bool) {
	n, err := s.get(id)
	if err != nil || n.payload == nil {
		return nil, false
	}
	box := n.payload.ObjectSpaceOBB()
	if box == nil {
		return nil, false
	}
	return box.Transformed(n.worldTransform), true
}

// Intersects reports whether the world space boxes of two nodes overlap. Nodes without a box never intersect.
func (s *Scene) Intersects(a, b NodeID) bool {
	boxA, ok := s.WorldOBB(a)
	if !ok {
		return false
	}
	boxB, ok := s.WorldOBB(b)
	if !ok {
		return false
	}
	return boxA.Intersects(boxB)
}

// IntersectsOBB reports whether the world space box of a node overlaps box.
func (s *Scene) IntersectsOBB(id NodeID, box *spatialmath.OBB) bool {
	nodeBox, ok := s.WorldOBB(id)
	if !ok {
		return false
	}
	return nodeBox.Intersects(box)
}

// IntersectsRay returns the distance along a world space ray to the node's world space box.
func (s *Scene) IntersectsRay(id NodeID, ray spatialmath.Ray) (float64, bool) {
	box, ok := s.WorldOBB(id)
	if !ok {
		return 0, false
	}
	return box.IntersectRay(ray)
}

// SetGrabbed sets the per-frame grabbed flag of a node.
func (s *Scene) SetGrabbed(id NodeID, grabbed bool) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.grabbed = grabbed
	return nil
}

// IsGrabbed reports whether a pointer held the node on the last interaction step.
func (s *Scene) IsGrabbed(id NodeID) bool {
	n, err := s.get(id)
	return err == nil && n.grabbed
}

// SetIntersected sets the per-frame intersected flag of a node.
func (s *Scene) SetIntersected(id NodeID, intersected bool) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.intersected = intersected
	return nil
}

// Intersected reports whether a pointer touched the node on the last interaction step.
func (s *Scene) Intersected(id NodeID) bool {
	n, err := s.get(id)
	return err == nil && n.intersected
}

// ResetFrameFlags clears the grabbed and intersected flags of every live node.
func (s *Scene) ResetFrameFlags() {
	for idx := 1; idx < len(s.nodes); idx++ {
		if s.nodes[idx].alive {
			s.nodes[idx].grabbed = false
			s.nodes[idx].intersected = false
		}
	}
}

// Walk visits the nodes of the scene parent before child, starting from each root in order. Inactive
// subtrees are skipped unless includeInactive is set. Returning ErrSkipSubtree from visit skips the children
// of that node; any other error stops the walk and is returned.
func (s *Scene) Walk(includeInactive bool, visit func(id NodeID, world mgl64.Mat4) error) error {
	for _, root := range s.Roots() {
		if err := s.walk(root, includeInactive, visit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) walk(id NodeID, includeInactive bool, visit func(id NodeID, world mgl64.Mat4) error) error {
	n := &s.nodes[id.index]
	if !includeInactive && !n.active {
		return nil
	}
	if err := visit(id, n.worldTransform); err != nil {
		if errors.Is(err, ErrSkipSubtree) {
			return nil
		}
		return err
	}
	for _, child := range append([]NodeID(nil), s.nodes[id.index].children...) {
		if !s.Contains(child) {
			continue
		}
		if err := s.walk(child, includeInactive, visit); err != nil {
			return err
		}
	}
	return nil
}
