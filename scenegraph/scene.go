// Package scenegraph implements a hierarchy of transformable nodes with lazy world transform propagation,
// and the per-scene registries of grabbable, terrain and button nodes queried by interaction logic.
//
// A Scene is not safe for concurrent use. It is mutated and queried from a single frame loop.
package scenegraph

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/logging"
)

// Scene owns a pool of nodes and the interaction registries over them.
type Scene struct {
	name   string
	logger logging.Logger

	// nodes[0] is never used so the zero NodeID names no node.
	nodes []node
	free  []uint32
	roots []NodeID
	live  int

	registry *Registry
}

// NewScene returns an empty scene.
func NewScene(name string, logger logging.Logger) *Scene {
	return &Scene{
		name:     name,
		logger:   logger,
		nodes:    make([]node, 1),
		registry: newRegistry(),
	}
}

// Name returns the name of the scene.
func (s *Scene) Name() string {
	return s.name
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	return s.live
}

// Registry returns the interaction registries of the scene.
func (s *Scene) Registry() *Registry {
	return s.registry
}

// Roots returns the parentless nodes in creation order.
func (s *Scene) Roots() []NodeID {
	return append([]NodeID(nil), s.roots...)
}

func (s *Scene) get(id NodeID) (*node, error) {
	if !id.IsValid() || int(id.index) >= len(s.nodes) {
		return nil, newNodeNotFoundError(id)
	}
	n := &s.nodes[id.index]
	if !n.alive || n.generation != id.generation {
		return nil, newNodeNotFoundError(id)
	}
	return n, nil
}

// Contains reports whether id names a live node of this scene.
func (s *Scene) Contains(id NodeID) bool {
	_, err := s.get(id)
	return err == nil
}

// NewNode creates a node under parent, or as a root when parent is NoNode. An empty name is replaced by a
// generated one. The payload may be nil.
func (s *Scene) NewNode(name string, parent NodeID, payload Payload) (NodeID, error) {
	if parent != NoNode {
		if _, err := s.get(parent); err != nil {
			return NoNode, errors.Wrap(err, "invalid parent")
		}
	}
	if name == "" {
		name = "node-" + uuid.NewString()
	}

	var id NodeID
	if len(s.free) > 0 {
		idx := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
		id = NodeID{index: idx, generation: s.nodes[idx].generation + 1}
		s.nodes[idx] = newNode(name, id.generation, payload)
	} else {
		id = NodeID{index: uint32(len(s.nodes)), generation: 1}
		s.nodes = append(s.nodes, newNode(name, id.generation, payload))
	}
	s.live++
	s.roots = append(s.roots, id)

	if parent != NoNode {
		if err := s.AddChildNode(parent, id); err != nil {
			return NoNode, err
		}
	}
	s.logger.Debugw("node created", "scene", s.name, "node", name, "id", id.String())
	return id, nil
}

// AddChildNode appends child to the children of parent. The child must currently be a root; a node cannot
// have two parents. Parenting a node under its own descendant is rejected.
func (s *Scene) AddChildNode(parent, child NodeID) error {
	p, err := s.get(parent)
	if err != nil {
		return err
	}
	c, err := s.get(child)
	if err != nil {
		return err
	}
	if c.parent != NoNode {
		return errors.Wrapf(ErrAlreadyParented, "cannot add %q to %q", c.name, p.name)
	}
	if s.isAncestorOrSelf(child, parent) {
		return errors.Wrapf(ErrCycle, "cannot add %q to %q", c.name, p.name)
	}

	s.removeRoot(child)
	c.parent = parent
	p.children = append(p.children, child)
	c.dirty = true
	return nil
}

// Detach removes a node from its parent, making it a root. Its local transform is kept, so its world
// transform changes on the next update unless the parent transform was the identity.
func (s *Scene) Detach(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if n.parent == NoNode {
		return nil
	}
	p := &s.nodes[n.parent.index]
	p.children = removeID(p.children, id)
	n.parent = NoNode
	n.dirty = true
	s.roots = append(s.roots, id)
	return nil
}

// Reparent moves a node under a new parent, or to the roots when newParent is NoNode.
func (s *Scene) Reparent(id, newParent NodeID) error {
	if newParent != NoNode {
		if s.isAncestorOrSelf(id, newParent) {
			return ErrCycle
		}
		if _, err := s.get(newParent); err != nil {
			return err
		}
	}
	if err := s.Detach(id); err != nil {
		return err
	}
	if newParent == NoNode {
		return nil
	}
	return s.AddChildNode(newParent, id)
}

// Remove releases a node and all of its descendants. Registry memberships are revoked before release, and
// handles to released nodes become invalid.
func (s *Scene) Remove(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	name := n.name
	if err := s.Detach(id); err != nil {
		return err
	}
	s.removeRoot(id)
	s.release(id)
	s.logger.Debugw("node removed", "scene", s.name, "node", name, "id", id.String())
	return nil
}

func (s *Scene) release(id NodeID) {
	n := &s.nodes[id.index]
	for _, child := range n.children {
		s.release(child)
	}
	s.registry.revoke(id)
	generation := n.generation
	*n = node{generation: generation}
	s.free = append(s.free, id.index)
	s.live--
}

// Teardown releases every node of the scene and clears the registries.
func (s *Scene) Teardown() {
	for _, root := range s.Roots() {
		s.removeRoot(root)
		s.release(root)
	}
	s.registry = newRegistry()
}

// Parent returns the parent of a node, NoNode for a root.
func (s *Scene) Parent(id NodeID) (NodeID, error) {
	n, err := s.get(id)
	if err != nil {
		return NoNode, err
	}
	return n.parent, nil
}

// Children returns the children of a node in insertion order.
func (s *Scene) Children(id NodeID) ([]NodeID, error) {
	n, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return append([]NodeID(nil), n.children...), nil
}

// Traceback returns the node followed by each of its ancestors up to its root.
func (s *Scene) Traceback(id NodeID) ([]NodeID, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	var chain []NodeID
	for cur := id; cur != NoNode; cur = s.nodes[cur.index].parent {
		chain = append(chain, cur)
	}
	return chain, nil
}

// NodeName returns the name of a node.
func (s *Scene) NodeName(id NodeID) (string, error) {
	n, err := s.get(id)
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// FindByName returns the first live node with the given name, in creation order.
func (s *Scene) FindByName(name string) (NodeID, bool) {
	for idx := 1; idx < len(s.nodes); idx++ {
		n := &s.nodes[idx]
		if n.alive && n.name == name {
			return NodeID{index: uint32(idx), generation: n.generation}, true
		}
	}
	return NoNode, false
}

// Payload returns the payload of a node, nil if it has none.
func (s *Scene) Payload(id NodeID) (Payload, error) {
	n, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return n.payload, nil
}

// SetPayload replaces the payload of a node. The new payload receives the world transform on the next update.
func (s *Scene) SetPayload(id NodeID, payload Payload) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.payload = payload
	n.dirty = true
	return nil
}

// SetActive controls whether a node and its subtree are rendered and visible to interaction queries.
// Inactive nodes stay in the tree.
func (s *Scene) SetActive(id NodeID, active bool) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.active = active
	return nil
}

// IsActive returns the node's own active flag.
func (s *Scene) IsActive(id NodeID) bool {
	n, err := s.get(id)
	if err != nil {
		return false
	}
	return n.active
}

// ActiveInHierarchy reports whether the node and all of its ancestors are active.
func (s *Scene) ActiveInHierarchy(id NodeID) bool {
	if _, err := s.get(id); err != nil {
		return false
	}
	for cur := id; cur != NoNode; cur = s.nodes[cur.index].parent {
		if !s.nodes[cur.index].active {
			return false
		}
	}
	return true
}

// isAncestorOrSelf reports whether id is target or one of target's ancestors, in which case attaching id
// under target would close a loop.
func (s *Scene) isAncestorOrSelf(id, target NodeID) bool {
	for cur := target; cur != NoNode; {
		if cur == id {
			return true
		}
		n, err := s.get(cur)
		if err != nil {
			return false
		}
		cur = n.parent
	}
	return false
}

func (s *Scene) removeRoot(id NodeID) {
	s.roots = removeID(s.roots, id)
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
