package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

var deg45 = math.Pi / 4.

func makeOBB(t *testing.T, center r3.Vector, rotation mgl64.Quat, halfSize r3.Vector) *OBB {
	t.Helper()
	axes := [3]r3.Vector{
		RotateVector(rotation, r3.Vector{X: 1}),
		RotateVector(rotation, r3.Vector{Y: 1}),
		RotateVector(rotation, r3.Vector{Z: 1}),
	}
	o, err := NewOBB(center, halfSize, axes)
	test.That(t, err, test.ShouldBeNil)
	return o
}

func TestNewOBBBadExtents(t *testing.T) {
	_, err := NewAxisAlignedOBB(r3.Vector{}, r3.Vector{X: 1, Y: -1, Z: 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "non-negative")

	o, err := NewAxisAlignedOBB(r3.Vector{}, r3.Vector{X: 1, Y: 0, Z: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, o.Extents.Y, test.ShouldEqual, 0.)
}

func TestOBBVsOBB(t *testing.T) {
	unit := r3.Vector{X: 1, Y: 1, Z: 1}
	ident := mgl64.QuatIdent()
	cases := []struct {
		name     string
		a        *OBB
		b        *OBB
		expected bool
	}{
		{
			"inscribed box",
			makeOBB(t, r3.Vector{}, ident, r3.Vector{X: 2, Y: 2, Z: 2}),
			makeOBB(t, r3.Vector{}, ident, unit),
			true,
		},
		{
			"unit cubes overlapping",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 1.9}, ident, unit),
			true,
		},
		{
			"unit cubes apart",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 2.1}, ident, unit),
			false,
		},
		{
			"face near contact",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 2.01}, ident, unit),
			false,
		},
		{
			"coincident edge overlap",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 1.99, Y: 3.99}, ident, r3.Vector{X: 1, Y: 3, Z: 1}),
			true,
		},
		{
			"nearly coincident edges",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 2, Y: 4.01}, ident, r3.Vector{X: 1, Y: 3, Z: 1}),
			false,
		},
		{
			"vertex overlap",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 1.99, Y: 1.99, Z: 1.99}, ident, unit),
			true,
		},
		{
			"vertex near contact",
			makeOBB(t, r3.Vector{}, ident, unit),
			makeOBB(t, r3.Vector{X: 2.01, Y: 2, Z: 2}, ident, unit),
			false,
		},
		{
			"edge into face",
			makeOBB(t, r3.Vector{}, mgl64.QuatRotate(deg45, mgl64.Vec3{1, 0, 0}), unit),
			makeOBB(t, r3.Vector{Y: 0.99 + math.Sqrt2}, ident, unit),
			true,
		},
		{
			"edge along face near contact",
			makeOBB(t, r3.Vector{}, mgl64.QuatRotate(deg45, mgl64.Vec3{1, 0, 0}), unit),
			makeOBB(t, r3.Vector{Y: 1.01 + math.Sqrt2}, ident, unit),
			false,
		},
		{
			"crossed edges overlap",
			makeOBB(t, r3.Vector{X: 0.01}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 0, 1}), unit),
			makeOBB(t, r3.Vector{X: 2 * math.Sqrt2}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 1, 0}), unit),
			true,
		},
		{
			"crossed edges near contact",
			makeOBB(t, r3.Vector{X: -0.01}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 0, 1}), unit),
			makeOBB(t, r3.Vector{X: 2 * math.Sqrt2}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 1, 0}), unit),
			false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			test.That(t, c.a.Intersects(c.b), test.ShouldEqual, c.expected)
			test.That(t, c.b.Intersects(c.a), test.ShouldEqual, c.expected)
		})
	}
}

func TestOBBStackedBars(t *testing.T) {
	// two long thin bars crossing diagonally, one stacked above the other
	bar := r3.Vector{X: 5, Y: 0.1, Z: 0.1}
	a := makeOBB(t, r3.Vector{}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 0, 1}), bar)
	b := makeOBB(t, r3.Vector{Z: 0.25}, mgl64.QuatRotate(-deg45, mgl64.Vec3{0, 0, 1}), bar)
	test.That(t, a.Intersects(b), test.ShouldBeFalse)

	b = makeOBB(t, r3.Vector{Z: 0.15}, mgl64.QuatRotate(-deg45, mgl64.Vec3{0, 0, 1}), bar)
	test.That(t, a.Intersects(b), test.ShouldBeTrue)
}

func TestOBBIntersectsSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	randomOBB := func() *OBB {
		axis := r3.Vector{X: rnd.Float64() - 0.5, Y: rnd.Float64() - 0.5, Z: rnd.Float64() - 0.5}
		q := QuatFromAxisAngle(axis, rnd.Float64()*2*math.Pi)
		center := r3.Vector{X: rnd.Float64()*4 - 2, Y: rnd.Float64()*4 - 2, Z: rnd.Float64()*4 - 2}
		half := r3.Vector{X: rnd.Float64() + 0.1, Y: rnd.Float64() + 0.1, Z: rnd.Float64() + 0.1}
		return makeOBB(t, center, q, half)
	}
	hits := 0
	for i := 0; i < 500; i++ {
		a, b := randomOBB(), randomOBB()
		ab := a.Intersects(b)
		test.That(t, ab, test.ShouldEqual, b.Intersects(a))
		if ab {
			hits++
		}
	}
	// both outcomes should have been exercised
	test.That(t, hits, test.ShouldBeGreaterThan, 0)
	test.That(t, hits, test.ShouldBeLessThan, 500)
}

func TestOBBCorners(t *testing.T) {
	o := makeOBB(t, r3.Vector{X: 1, Y: 2, Z: 3}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 2, Z: 3})
	corners := o.Corners()
	test.That(t, corners[0], test.ShouldResemble, r3.Vector{X: 2, Y: 4, Z: 6})
	test.That(t, corners[7], test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	for _, c := range corners {
		test.That(t, o.ContainsPoint(c, 1e-9), test.ShouldBeTrue)
	}

	// every edge joins corners that differ along exactly one box axis
	test.That(t, len(OBBEdgeIndices), test.ShouldEqual, 24)
	for i := 0; i < len(OBBEdgeIndices); i += 2 {
		a, b := boxVertices[OBBEdgeIndices[i]], boxVertices[OBBEdgeIndices[i+1]]
		diff := a.Sub(b)
		nonZero := 0
		for _, v := range []float64{diff.X, diff.Y, diff.Z} {
			if v != 0 {
				nonZero++
			}
		}
		test.That(t, nonZero, test.ShouldEqual, 1)
	}
	test.That(t, len(OBBTriangleIndices), test.ShouldEqual, 36)
}

func TestOBBTransformed(t *testing.T) {
	src := makeOBB(t, r3.Vector{X: 1}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 0, 1}), r3.Vector{X: 1, Y: 2, Z: 3})
	orig := *src

	t.Run("identity", func(t *testing.T) {
		test.That(t, src.Transformed(mgl64.Ident4()).AlmostEqual(src, 1e-9), test.ShouldBeTrue)
	})

	t.Run("translation", func(t *testing.T) {
		out := src.Transformed(mgl64.Translate3D(0, 5, 0))
		test.That(t, out.Center.X, test.ShouldAlmostEqual, 1.)
		test.That(t, out.Center.Y, test.ShouldAlmostEqual, 5.)
		test.That(t, vectorAlmostEqual(out.Extents, src.Extents, 1e-9), test.ShouldBeTrue)
	})

	t.Run("non-uniform scale", func(t *testing.T) {
		box := makeOBB(t, r3.Vector{X: 1, Y: 1, Z: 1}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 1, Z: 1})
		out := box.Transformed(mgl64.Scale3D(2, 3, 4))
		test.That(t, out.Center, test.ShouldResemble, r3.Vector{X: 2, Y: 3, Z: 4})
		test.That(t, out.Extents.X, test.ShouldAlmostEqual, 2.)
		test.That(t, out.Extents.Y, test.ShouldAlmostEqual, 3.)
		test.That(t, out.Extents.Z, test.ShouldAlmostEqual, 4.)
		test.That(t, out.Axes[0].Norm(), test.ShouldAlmostEqual, 1.)
	})

	t.Run("rotation", func(t *testing.T) {
		rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
		box := makeOBB(t, r3.Vector{X: 1}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 2, Z: 3})
		out := box.Transformed(rot.Mat4())
		test.That(t, out.Center.Z, test.ShouldAlmostEqual, -1.)
		test.That(t, out.Axes[0].Z, test.ShouldAlmostEqual, -1.)
		test.That(t, vectorAlmostEqual(out.Extents, box.Extents, 1e-9), test.ShouldBeTrue)
	})

	t.Run("zero scale", func(t *testing.T) {
		out := src.Transformed(mgl64.Scale3D(1, 1, 0))
		test.That(t, out.Extents.Z, test.ShouldEqual, 0.)
		test.That(t, out.Axes[2].Norm(), test.ShouldAlmostEqual, 1.)
		test.That(t, orthonormal(out.Axes), test.ShouldBeTrue)
	})

	t.Run("zero scale under rotation", func(t *testing.T) {
		unit := makeOBB(t, r3.Vector{}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 1, Z: 1})
		plate := unit.Transformed(mgl64.HomogRotate3DZ(math.Pi / 2).Mul4(mgl64.Scale3D(0, 1, 1)))
		test.That(t, plate.Extents.X, test.ShouldEqual, 0.)
		test.That(t, orthonormal(plate.Axes), test.ShouldBeTrue)
		test.That(t, vectorAlmostEqual(plate.Axes[0], r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)

		// the plate lies in the XZ plane and spans x in [-1, 1]
		ray, err := NewRay(r3.Vector{X: 0.5, Y: 5}, r3.Vector{Y: -1})
		test.That(t, err, test.ShouldBeNil)
		dist, hit := plate.IntersectRay(ray)
		test.That(t, hit, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldAlmostEqual, 5.)
	})

	t.Run("two axes collapsed", func(t *testing.T) {
		unit := makeOBB(t, r3.Vector{}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 1, Z: 1})
		rod := unit.Transformed(mgl64.HomogRotate3DZ(math.Pi / 4).Mul4(mgl64.Scale3D(2, 0, 0)))
		test.That(t, rod.Extents.X, test.ShouldAlmostEqual, 2.)
		test.That(t, rod.Extents.Y, test.ShouldEqual, 0.)
		test.That(t, rod.Extents.Z, test.ShouldEqual, 0.)
		test.That(t, orthonormal(rod.Axes), test.ShouldBeTrue)
	})

	test.That(t, *src, test.ShouldResemble, orig)
}

func orthonormal(axes [3]r3.Vector) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(axes[i].Norm()-1) > 1e-9 {
			return false
		}
		if math.Abs(axes[i].Dot(axes[(i+1)%3])) > 1e-9 {
			return false
		}
	}
	return vectorAlmostEqual(axes[0].Cross(axes[1]), axes[2], 1e-9)
}

func TestOBBString(t *testing.T) {
	o := makeOBB(t, r3.Vector{X: 1}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, o.String(), test.ShouldContainSubstring, "Type: OBB")
}
