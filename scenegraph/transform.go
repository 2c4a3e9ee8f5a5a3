package scenegraph

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Translate adds delta to the local translation of a node.
func (s *Scene) Translate(id NodeID, delta mgl64.Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.translation = n.translation.Add(delta)
	n.dirty = true
	return nil
}

// Rotate composes delta onto the local rotation of a node, applied in the node's own frame.
func (s *Scene) Rotate(id NodeID, delta mgl64.Quat) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.rotation = n.rotation.Mul(delta).Normalize()
	n.dirty = true
	return nil
}

// Scale multiplies the local scale of a node componentwise by factor.
func (s *Scene) Scale(id NodeID, factor mgl64.Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.scale = mgl64.Vec3{n.scale[0] * factor[0], n.scale[1] * factor[1], n.scale[2] * factor[2]}
	n.dirty = true
	return nil
}

// SetPosition assigns the local translation of a node.
func (s *Scene) SetPosition(id NodeID, position mgl64.Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.translation = position
	n.dirty = true
	return nil
}

// SetRotation assigns the local rotation of a node.
func (s *Scene) SetRotation(id NodeID, rotation mgl64.Quat) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.rotation = rotation.Normalize()
	n.dirty = true
	return nil
}

// SetScale assigns the local scale of a node.
func (s *Scene) SetScale(id NodeID, scale mgl64.Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.scale = scale
	n.dirty = true
	return nil
}

// LocalPosition returns the local translation of a node.
func (s *Scene) LocalPosition(id NodeID) (mgl64.Vec3, error) {
	n, err := s.get(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return n.translation, nil
}

// LocalRotation returns the local rotation of a node.
func (s *Scene) LocalRotation(id NodeID) (mgl64.Quat, error) {
	n, err := s.get(id)
	if err != nil {
		return mgl64.QuatIdent(), err
	}
	return n.rotation, nil
}

// LocalScale returns the local scale of a node.
func (s *Scene) LocalScale(id NodeID) (mgl64.Vec3, error) {
	n, err := s.get(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return n.scale, nil
}

// LocalTransform returns the cached local transform, as of the last update.
func (s *Scene) LocalTransform(id NodeID) (mgl64.Mat4, error) {
	n, err := s.get(id)
	if err != nil {
		return mgl64.Ident4(), err
	}
	return n.localTransform, nil
}

// WorldTransform returns the cached world transform, as of the last update.
func (s *Scene) WorldTransform(id NodeID) (mgl64.Mat4, error) {
	n, err := s.get(id)
	if err != nil {
		return mgl64.Ident4(), err
	}
	return n.worldTransform, nil
}

// WorldPosition returns the translation column of the cached world transform.
func (s *Scene) WorldPosition(id NodeID) (mgl64.Vec3, error) {
	world, err := s.WorldTransform(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return world.Col(3).Vec3(), nil
}

// IsDirty reports whether a node has been mutated since the last update that reached it.
func (s *Scene) IsDirty(id NodeID) bool {
	n, err := s.get(id)
	if err != nil {
		return false
	}
	return n.dirty
}

// UpdateTransformation recomputes the world transform of every node that is dirty or has a dirty ancestor,
// walking each root's tree parent before child. Inactive subtrees are updated too so they are current when
// they are reactivated. All dirty flags are clear afterwards.
func (s *Scene) UpdateTransformation() {
	for _, root := range s.roots {
		s.updateNode(root, mgl64.Ident4(), false, false)
	}
}

// UpdateSubtree runs the update for the subtree rooted at id only, composing with the parent's cached world
// transform. The parent is assumed to be up to date.
func (s *Scene) UpdateSubtree(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if n.parent == NoNode {
		s.updateNode(id, mgl64.Ident4(), false, false)
		return nil
	}
	s.updateNode(id, s.nodes[n.parent.index].worldTransform, true, false)
	return nil
}

// updateNode updates a node when it or an ancestor was dirty. parentDirty is the effective flag of the parent
// as it was before the parent cleared its own.
func (s *Scene) updateNode(id NodeID, parentWorld mgl64.Mat4, hasParent, parentDirty bool) {
	n := &s.nodes[id.index]
	needsUpdate := n.dirty || (hasParent && parentDirty)
	if needsUpdate {
		n.localTransform = n.composeLocal()
		if hasParent {
			n.worldTransform = parentWorld.Mul4(n.localTransform)
		} else {
			n.worldTransform = n.localTransform
		}
		if n.payload != nil {
			n.payload.SetWorldTransform(n.worldTransform)
		}
		n.dirty = false
	}
	world := n.worldTransform
	for _, child := range n.children {
		s.updateNode(child, world, true, needsUpdate)
	}
}
