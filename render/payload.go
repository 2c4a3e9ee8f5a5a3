package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/spatialmath"
)

// Kind identifies the payload variant behind a Renderable.
type Kind int

const (
	// KindMesh is a triangle mesh.
	KindMesh Kind = iota
	// KindLine is a list of line segments.
	KindLine
	// KindText is a text label on a quad.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Renderable is a scene node payload that can submit draw commands.
type Renderable interface {
	scenegraph.Payload
	Kind() Kind
	Name() string
	// Render submits the payload using the world transform last set on it.
	Render(ctx *Context) error
}

// base holds what every payload kind shares: a name, the object space box and the last world transform.
type base struct {
	name  string
	box   *spatialmath.OBB
	world mgl64.Mat4
}

func newBase(name string, box *spatialmath.OBB) base {
	return base{name: name, box: box, world: mgl64.Ident4()}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) ObjectSpaceOBB() *spatialmath.OBB {
	return b.box
}

func (b *base) SetWorldTransform(world mgl64.Mat4) {
	b.world = world
}

// WorldTransform returns the transform last set by the node driving the payload.
func (b *base) WorldTransform() mgl64.Mat4 {
	return b.world
}

// Mesh is an indexed triangle mesh. Its box is fitted to its vertices when it is created.
type Mesh struct {
	base
	vertices []mgl64.Vec3
	indices  []uint32
}

// NewMesh returns a mesh over vertices. Indices, taken three at a time, must reference existing vertices.
func NewMesh(name string, vertices []mgl64.Vec3, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, errors.Errorf("mesh %q: index count %d is not a multiple of 3", name, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, errors.Errorf("mesh %q: index %d out of range for %d vertices", name, idx, len(vertices))
		}
	}
	return &Mesh{
		base:     newBase(name, spatialmath.NewOBBFromPoints(toR3(vertices))),
		vertices: vertices,
		indices:  indices,
	}, nil
}

// NewBoxMesh returns a mesh of an axis aligned box with the given half sizes, centered on the origin.
func NewBoxMesh(name string, half mgl64.Vec3) (*Mesh, error) {
	box, err := spatialmath.NewAxisAlignedOBB(r3.Vector{}, spatialmath.Vec3ToR3(half))
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q", name)
	}
	corners := box.Corners()
	vertices := make([]mgl64.Vec3, 0, len(corners))
	for _, c := range corners {
		vertices = append(vertices, spatialmath.R3ToVec3(c))
	}
	return NewMesh(name, vertices, spatialmath.OBBTriangleIndices[:])
}

// Kind returns KindMesh.
func (m *Mesh) Kind() Kind {
	return KindMesh
}

// Render submits one draw of the mesh.
func (m *Mesh) Render(ctx *Context) error {
	return ctx.Submitter.Submit(DrawCommand{
		Kind:        KindMesh,
		Name:        m.name,
		World:       m.world,
		VertexCount: len(m.vertices),
		IndexCount:  len(m.indices),
	})
}

// Line is a list of line segments drawn with a single command.
type Line struct {
	base
	segments [][2]mgl64.Vec3
}

// NewLine returns a line payload. Its box is fitted to the segment end points.
func NewLine(name string, segments [][2]mgl64.Vec3) *Line {
	points := make([]mgl64.Vec3, 0, 2*len(segments))
	for _, s := range segments {
		points = append(points, s[0], s[1])
	}
	return &Line{
		base:     newBase(name, spatialmath.NewOBBFromPoints(toR3(points))),
		segments: segments,
	}
}

// Kind returns KindLine.
func (l *Line) Kind() Kind {
	return KindLine
}

// Render submits the segments.
func (l *Line) Render(ctx *Context) error {
	return ctx.Submitter.Submit(DrawCommand{
		Kind:        KindLine,
		Name:        l.name,
		World:       l.world,
		VertexCount: 2 * len(l.segments),
	})
}

// Text is a label laid out on a quad in the payload's XY plane, centered on the origin.
type Text struct {
	base
	label string
}

// NewText returns a text payload whose quad is width by height.
func NewText(name, label string, width, height float64) (*Text, error) {
	box, err := spatialmath.NewAxisAlignedOBB(r3.Vector{}, r3.Vector{X: width / 2, Y: height / 2})
	if err != nil {
		return nil, errors.Wrapf(err, "text %q", name)
	}
	return &Text{base: newBase(name, box), label: label}, nil
}

// Kind returns KindText.
func (t *Text) Kind() Kind {
	return KindText
}

// Label returns the text.
func (t *Text) Label() string {
	return t.label
}

// SetLabel replaces the text.
func (t *Text) SetLabel(label string) {
	t.label = label
}

// Render submits the label quad.
func (t *Text) Render(ctx *Context) error {
	return ctx.Submitter.Submit(DrawCommand{
		Kind:        KindText,
		Name:        t.name,
		World:       t.world,
		VertexCount: 4,
		IndexCount:  6,
		Label:       t.label,
	})
}

func toR3(points []mgl64.Vec3) []r3.Vector {
	out := make([]r3.Vector, 0, len(points))
	for _, p := range points {
		out = append(out, spatialmath.Vec3ToR3(p))
	}
	return out
}
