package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Ray is a half line with a unit length direction.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay returns a Ray from origin along direction, normalizing the direction.
func NewRay(origin, direction r3.Vector) (Ray, error) {
	if direction.Norm2() < floatEpsilon*floatEpsilon {
		return Ray{}, ErrZeroDirection
	}
	return Ray{Origin: origin, Direction: direction.Normalize()}, nil
}

// PointAt returns the point at distance t along the ray.
func (r Ray) PointAt(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}
