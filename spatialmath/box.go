package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.hmdkit.dev/xrcore/utils"
)

// Ordered list of box corner signs. Corner i of an OBB is center + sum(sign[k] * extent[k] * axis[k]).
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// OBBTriangleIndices are the indices of the corners returned by Corners that tile the box exterior,
// two triangles per face.
var OBBTriangleIndices = [36]uint32{
	0, 1, 3,
	0, 2, 3,
	0, 1, 5,
	0, 4, 5,
	0, 2, 6,
	0, 4, 6,
	7, 1, 3,
	7, 2, 3,
	7, 1, 5,
	7, 4, 5,
	7, 2, 6,
	7, 4, 6,
}

// OBBEdgeIndices are the 12 edges of a box as pairs of corner indices (corners differing in exactly one sign),
// suitable for drawing a wireframe with a line list.
var OBBEdgeIndices = [24]uint32{
	0, 1, 0, 2, 0, 4,
	1, 3, 1, 5,
	2, 3, 2, 6,
	3, 7,
	4, 5, 4, 6,
	5, 7,
	6, 7,
}

const (
	// cross products of box axes shorter than this are treated as parallel edges and skipped.
	satParallelEpsilon = 1e-8
	// ray direction components smaller than this are treated as parallel to a slab.
	rayParallelEpsilon = 1e-12
)

// OBB is an oriented bounding box. Axes are the box's local X, Y and Z directions (the columns of its
// rotation matrix) and Extents are the half widths along each of them.
type OBB struct {
	Center  r3.Vector
	Extents r3.Vector
	Axes    [3]r3.Vector
}

// NewOBB returns an OBB with the given center, half widths and axes. Negative extents are not allowed.
func NewOBB(center, extents r3.Vector, axes [3]r3.Vector) (*OBB, error) {
	if extents.X < 0 || extents.Y < 0 || extents.Z < 0 {
		return nil, newBadExtentsError(extents)
	}
	return &OBB{Center: center, Extents: extents, Axes: axes}, nil
}

// NewAxisAlignedOBB returns an OBB aligned with the world axes.
func NewAxisAlignedOBB(center, extents r3.Vector) (*OBB, error) {
	return NewOBB(center, extents, identityAxes())
}

func identityAxes() [3]r3.Vector {
	return [3]r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}
}

// String returns a human readable string that represents the box.
func (o *OBB) String() string {
	return fmt.Sprintf("Type: OBB | Center: X:%.3f, Y:%.3f, Z:%.3f | Extents: X:%.3f, Y:%.3f, Z:%.3f",
		o.Center.X, o.Center.Y, o.Center.Z, o.Extents.X, o.Extents.Y, o.Extents.Z)
}

// extent returns the half width along axis i.
func (o *OBB) extent(i int) float64 {
	switch i {
	case 0:
		return o.Extents.X
	case 1:
		return o.Extents.Y
	default:
		return o.Extents.Z
	}
}

// AlmostEqual compares two boxes and checks if they are equivalent within eps.
func (o *OBB) AlmostEqual(other *OBB, eps float64) bool {
	if !vectorAlmostEqual(o.Center, other.Center, eps) || !vectorAlmostEqual(o.Extents, other.Extents, eps) {
		return false
	}
	for i := 0; i < 3; i++ {
		if !vectorAlmostEqual(o.Axes[i], other.Axes[i], eps) {
			return false
		}
	}
	return true
}

// Corners returns the 8 corners of the box in the order indexed by OBBEdgeIndices and OBBTriangleIndices.
func (o *OBB) Corners() [8]r3.Vector {
	var corners [8]r3.Vector
	ex := o.Axes[0].Mul(o.Extents.X)
	ey := o.Axes[1].Mul(o.Extents.Y)
	ez := o.Axes[2].Mul(o.Extents.Z)
	for i, s := range boxVertices {
		corners[i] = o.Center.Add(ex.Mul(s.X)).Add(ey.Mul(s.Y)).Add(ez.Mul(s.Z))
	}
	return corners
}

// ToLocal expresses a point in the box frame, relative to the box center.
func (o *OBB) ToLocal(pt r3.Vector) r3.Vector {
	d := pt.Sub(o.Center)
	return r3.Vector{X: d.Dot(o.Axes[0]), Y: d.Dot(o.Axes[1]), Z: d.Dot(o.Axes[2])}
}

// ContainsPoint returns whether pt lies inside the box, with eps of slack along each axis.
func (o *OBB) ContainsPoint(pt r3.Vector, eps float64) bool {
	local := o.ToLocal(pt)
	return math.Abs(local.X) <= o.Extents.X+eps &&
		math.Abs(local.Y) <= o.Extents.Y+eps &&
		math.Abs(local.Z) <= o.Extents.Z+eps
}

// Transformed returns a new box moved by the given model matrix. The center is transformed by the full
// matrix, the axes by its upper-left 3x3 block and renormalized, and the extents are scaled by the length of
// each transformed axis so non-uniform scale is captured. Axes collapsed by zero scale are rebuilt
// perpendicular to the surviving ones so the frame stays orthonormal. The receiver is not modified.
func (o *OBB) Transformed(model mgl64.Mat4) *OBB {
	center := model.Mul4x1(R3ToVec3(o.Center).Vec4(1)).Vec3()
	basis := model.Mat3()

	out := &OBB{Center: Vec3ToR3(center)}
	var extents [3]float64
	var collapsed []int
	for i := 0; i < 3; i++ {
		axis := basis.Mul3x1(R3ToVec3(o.Axes[i]))
		length := axis.Len()
		if length < floatEpsilon {
			collapsed = append(collapsed, i)
			continue
		}
		out.Axes[i] = Vec3ToR3(axis.Mul(1 / length))
		extents[i] = o.extent(i) * length
	}
	out.Extents = r3.Vector{X: extents[0], Y: extents[1], Z: extents[2]}

	switch len(collapsed) {
	case 1:
		i := collapsed[0]
		rebuilt := out.Axes[(i+1)%3].Cross(out.Axes[(i+2)%3])
		if rebuilt.Norm() < floatEpsilon {
			rebuilt = orthogonalTo(out.Axes[(i+1)%3])
		}
		out.Axes[i] = rebuilt.Normalize()
	case 2:
		kept := 3 - collapsed[0] - collapsed[1]
		out.Axes[(kept+1)%3] = orthogonalTo(out.Axes[kept])
		out.Axes[(kept+2)%3] = out.Axes[kept].Cross(out.Axes[(kept+1)%3])
	case 3:
		out.Axes = o.Axes
	}
	return out
}

// Intersects performs the separating axis test between two boxes. The candidate axes are the three axes of
// each box and the nine cross products of axis pairs; near-parallel pairs are skipped since the face axes
// already cover them. The boxes intersect when no candidate separates them. Touching boxes intersect.
func (o *OBB) Intersects(other *OBB) bool {
	centerDist := other.Center.Sub(o.Center)

	for i := 0; i < 3; i++ {
		if separatingAxisTest(centerDist, o.Axes[i], o, other) > 0 {
			return false
		}
		if separatingAxisTest(centerDist, other.Axes[i], o, other) > 0 {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			crossProductPlane := o.Axes[i].Cross(other.Axes[j])
			if crossProductPlane.Norm2() < satParallelEpsilon {
				continue
			}
			if separatingAxisTest(centerDist, crossProductPlane.Normalize(), o, other) > 0 {
				return false
			}
		}
	}
	return true
}

// separatingAxisTest projects both boxes onto plane and returns the gap between the projections. A positive
// gap proves that plane separates the boxes.
func separatingAxisTest(positionDelta, plane r3.Vector, a, b *OBB) float64 {
	return math.Abs(positionDelta.Dot(plane)) - (projectedRadius(a, plane) + projectedRadius(b, plane))
}

func projectedRadius(o *OBB, plane r3.Vector) float64 {
	var r float64
	for i := 0; i < 3; i++ {
		r += math.Abs(o.extent(i) * plane.Dot(o.Axes[i]))
	}
	return r
}

// IntersectRay returns the distance along the ray to the closest intersection with the box in front of the
// ray origin. A ray starting inside the box reports the exit distance. The boolean is false when the ray
// misses, runs parallel outside a slab, or only hits behind its origin.
func (o *OBB) IntersectRay(ray Ray) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	delta := o.Center.Sub(ray.Origin)

	for i := 0; i < 3; i++ {
		axis := o.Axes[i]
		ext := o.extent(i)
		e := axis.Dot(delta)
		f := axis.Dot(ray.Direction)

		if math.Abs(f) < rayParallelEpsilon {
			// parallel to this slab, the origin has to already be between its planes
			if -e-ext > 0 || -e+ext < 0 {
				return 0, false
			}
			continue
		}
		t1 := (e + ext) / f
		t2 := (e - ext) / f
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax || tMax < 0 {
			return 0, false
		}
	}
	if tMin >= 0 {
		return tMin, true
	}
	return tMax, true
}

func vectorAlmostEqual(a, b r3.Vector, eps float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, eps) &&
		utils.Float64AlmostEqual(a.Y, b.Y, eps) &&
		utils.Float64AlmostEqual(a.Z, b.Z, eps)
}
