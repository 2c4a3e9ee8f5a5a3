package scenegraph

import (
	"github.com/samber/lo"
)

// idSet is an identity set of node handles that iterates in insertion order.
type idSet struct {
	members map[NodeID]struct{}
	order   []NodeID
}

func newIDSet() *idSet {
	return &idSet{members: map[NodeID]struct{}{}}
}

func (set *idSet) add(id NodeID) {
	if _, ok := set.members[id]; ok {
		return
	}
	set.members[id] = struct{}{}
	set.order = append(set.order, id)
}

func (set *idSet) remove(id NodeID) {
	if _, ok := set.members[id]; !ok {
		return
	}
	delete(set.members, id)
	set.order = removeID(set.order, id)
}

func (set *idSet) has(id NodeID) bool {
	_, ok := set.members[id]
	return ok
}

// Registry holds the grabbable, terrain and button memberships of one scene. It references nodes by handle
// and never owns them.
type Registry struct {
	grabbable *idSet
	terrain   *idSet
	buttons   map[NodeID]*Button
	order     []NodeID
}

func newRegistry() *Registry {
	return &Registry{
		grabbable: newIDSet(),
		terrain:   newIDSet(),
		buttons:   map[NodeID]*Button{},
	}
}

func (r *Registry) revoke(id NodeID) {
	r.grabbable.remove(id)
	r.terrain.remove(id)
	if _, ok := r.buttons[id]; ok {
		delete(r.buttons, id)
		r.order = removeID(r.order, id)
	}
}

// SetGrabbable adds or removes a node from the grabbable set.
func (s *Scene) SetGrabbable(id NodeID, grabbable bool) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.grabbable = grabbable
	if grabbable {
		s.registry.grabbable.add(id)
	} else {
		s.registry.grabbable.remove(id)
	}
	return nil
}

// IsGrabbable reports whether a node is in the grabbable set.
func (s *Scene) IsGrabbable(id NodeID) bool {
	return s.Contains(id) && s.registry.grabbable.has(id)
}

// SetIsTerrain adds or removes a node from the terrain set.
func (s *Scene) SetIsTerrain(id NodeID, terrain bool) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.terrain = terrain
	if terrain {
		s.registry.terrain.add(id)
	} else {
		s.registry.terrain.remove(id)
	}
	return nil
}

// IsTerrain reports whether a node is in the terrain set.
func (s *Scene) IsTerrain(id NodeID) bool {
	return s.Contains(id) && s.registry.terrain.has(id)
}

// Grabbables returns the grabbable nodes that are active in the hierarchy, in registration order.
func (s *Scene) Grabbables() []NodeID {
	return lo.Filter(s.registry.grabbable.order, func(id NodeID, _ int) bool {
		return s.ActiveInHierarchy(id)
	})
}

// Terrain returns the terrain nodes that are active in the hierarchy, in registration order.
func (s *Scene) Terrain() []NodeID {
	return lo.Filter(s.registry.terrain.order, func(id NodeID, _ int) bool {
		return s.ActiveInHierarchy(id)
	})
}

// RegisterButton registers a button on its node, replacing any button already registered there.
func (s *Scene) RegisterButton(b *Button) error {
	if _, err := s.get(b.Node); err != nil {
		return err
	}
	if _, ok := s.registry.buttons[b.Node]; !ok {
		s.registry.order = append(s.registry.order, b.Node)
	}
	s.registry.buttons[b.Node] = b
	return nil
}

// UnregisterButton removes the button registered on a node, if any.
func (s *Scene) UnregisterButton(id NodeID) {
	if _, ok := s.registry.buttons[id]; !ok {
		return
	}
	delete(s.registry.buttons, id)
	s.registry.order = removeID(s.registry.order, id)
}

// Buttons returns the registered buttons whose nodes are active in the hierarchy, in registration order.
func (s *Scene) Buttons() []*Button {
	active := lo.Filter(s.registry.order, func(id NodeID, _ int) bool {
		return s.ActiveInHierarchy(id)
	})
	return lo.Map(active, func(id NodeID, _ int) *Button {
		return s.registry.buttons[id]
	})
}
