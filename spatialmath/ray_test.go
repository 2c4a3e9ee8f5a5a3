package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewRay(t *testing.T) {
	_, err := NewRay(r3.Vector{}, r3.Vector{})
	test.That(t, err, test.ShouldBeError, ErrZeroDirection)

	r, err := NewRay(r3.Vector{X: 1}, r3.Vector{Y: 3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Direction, test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, r.PointAt(2), test.ShouldResemble, r3.Vector{X: 1, Y: 2})
}

func TestOBBIntersectRay(t *testing.T) {
	box := makeOBB(t, r3.Vector{X: 5}, mgl64.QuatIdent(), r3.Vector{X: 1, Y: 1, Z: 1})
	rotated := makeOBB(t, r3.Vector{}, mgl64.QuatRotate(deg45, mgl64.Vec3{0, 0, 1}), r3.Vector{X: 1, Y: 1, Z: 1})

	cases := []struct {
		name     string
		box      *OBB
		origin   r3.Vector
		dir      r3.Vector
		hit      bool
		expected float64
	}{
		{"straight on", box, r3.Vector{}, r3.Vector{X: 1}, true, 4},
		{"behind origin", box, r3.Vector{}, r3.Vector{X: -1}, false, 0},
		{"origin inside", box, r3.Vector{X: 5}, r3.Vector{X: 1}, true, 1},
		{"parallel outside slab", box, r3.Vector{Y: 5}, r3.Vector{X: 1}, false, 0},
		{"parallel inside slab", box, r3.Vector{Y: 0.5}, r3.Vector{X: 1}, true, 4},
		{"oblique miss", box, r3.Vector{}, r3.Vector{X: 1, Y: 1}, false, 0},
		{"oblique hit", box, r3.Vector{Y: -4}, r3.Vector{X: 1, Y: 1}, true, 4 * math.Sqrt2},
		{"rotated box", rotated, r3.Vector{X: -5}, r3.Vector{X: 1}, true, 5 - math.Sqrt2},
		{"from above", box, r3.Vector{X: 5, Y: 10}, r3.Vector{Y: -1}, true, 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ray, err := NewRay(c.origin, c.dir)
			test.That(t, err, test.ShouldBeNil)
			d, ok := c.box.IntersectRay(ray)
			test.That(t, ok, test.ShouldEqual, c.hit)
			if c.hit {
				test.That(t, d, test.ShouldAlmostEqual, c.expected, 1e-9)
				test.That(t, c.box.ContainsPoint(ray.PointAt(d), 1e-9), test.ShouldBeTrue)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, Vec3ToR3(R3ToVec3(v)), test.ShouldResemble, v)
	test.That(t, QuatFromAxisAngle(r3.Vector{}, 1), test.ShouldResemble, mgl64.QuatIdent())

	q := QuatFromAxisAngle(r3.Vector{Z: 2}, math.Pi/2)
	rotated := RotateVector(q, r3.Vector{X: 1})
	test.That(t, rotated.X, test.ShouldAlmostEqual, 0.)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, 1.)
}
