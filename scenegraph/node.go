package scenegraph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"go.hmdkit.dev/xrcore/spatialmath"
)

// NodeID is a handle to a node in a Scene's node pool. Handles of removed nodes are never valid again,
// even if the pool slot is reused.
type NodeID struct {
	index      uint32
	generation uint32
}

// NoNode is the zero handle. It names no node and is used as the parent of roots.
var NoNode = NodeID{}

// IsValid reports whether the handle was issued by a scene. It does not check that the node is still alive.
func (id NodeID) IsValid() bool {
	return id.generation != 0
}

func (id NodeID) String() string {
	if !id.IsValid() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d:%d)", id.index, id.generation)
}

// Payload is the renderable content a node drives. A payload may be shared by several nodes; each of them
// pushes its own world transform before the payload is drawn.
type Payload interface {
	// ObjectSpaceOBB returns the bounding box fitted to the payload's geometry at load time, or nil if the
	// payload has no volume.
	ObjectSpaceOBB() *spatialmath.OBB
	SetWorldTransform(world mgl64.Mat4)
}

type node struct {
	name       string
	generation uint32
	alive      bool

	parent   NodeID
	children []NodeID

	translation mgl64.Vec3
	rotation    mgl64.Quat
	scale       mgl64.Vec3

	localTransform mgl64.Mat4
	worldTransform mgl64.Mat4

	dirty       bool
	active      bool
	grabbed     bool
	intersected bool
	grabbable   bool
	terrain     bool

	payload Payload
}

func newNode(name string, generation uint32, payload Payload) node {
	return node{
		name:           name,
		generation:     generation,
		alive:          true,
		rotation:       mgl64.QuatIdent(),
		scale:          mgl64.Vec3{1, 1, 1},
		localTransform: mgl64.Ident4(),
		worldTransform: mgl64.Ident4(),
		dirty:          true,
		active:         true,
		payload:        payload,
	}
}

// composeLocal builds translation * rotation * scale.
func (n *node) composeLocal() mgl64.Mat4 {
	t := mgl64.Translate3D(n.translation[0], n.translation[1], n.translation[2])
	s := mgl64.Scale3D(n.scale[0], n.scale[1], n.scale[2])
	return t.Mul4(n.rotation.Mat4()).Mul4(s)
}
