package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Vec3ToR3 converts a mathgl vector to an r3 vector.
func Vec3ToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// R3ToVec3 converts an r3 vector to a mathgl vector.
func R3ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// QuatFromAxisAngle returns the rotation of angle radians about axis. A zero axis yields the identity.
func QuatFromAxisAngle(axis r3.Vector, angle float64) mgl64.Quat {
	if axis.Norm2() < floatEpsilon*floatEpsilon {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, R3ToVec3(axis.Normalize()))
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q mgl64.Quat, v r3.Vector) r3.Vector {
	return Vec3ToR3(q.Rotate(R3ToVec3(v)))
}
