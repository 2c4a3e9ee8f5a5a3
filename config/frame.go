package config

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/utils"
)

// Translation is an offset from the parent node, in meters.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 returns the translation as a vector.
func (t Translation) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{t.X, t.Y, t.Z}
}

// Orientation is a rotation of TH degrees around the axis (X, Y, Z). A zero axis means no rotation.
type Orientation struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	TH float64 `json:"th"`
}

// Quat returns the orientation as a unit quaternion.
func (o Orientation) Quat() mgl64.Quat {
	axis := mgl64.Vec3{o.X, o.Y, o.Z}
	if axis.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(utils.DegToRad(o.TH), axis.Normalize())
}

// Scale is a per axis scale factor. A missing scale is 1 on every axis.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 returns the scale as a vector.
func (s *Scale) Vec3() mgl64.Vec3 {
	if s == nil {
		return mgl64.Vec3{1, 1, 1}
	}
	return mgl64.Vec3{s.X, s.Y, s.Z}
}

// Frame is the pose of a node relative to its parent.
type Frame struct {
	Parent      string      `json:"parent,omitempty"`
	Translation Translation `json:"translation"`
	Orientation Orientation `json:"orientation"`
	Scale       *Scale      `json:"scale,omitempty"`
}

// Validate ensures all parts of the frame are valid.
func (f *Frame) Validate(path string) error {
	if f.Scale == nil {
		return nil
	}
	for i, v := range f.Scale.Vec3() {
		if v == 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("scale axis %d must be non-zero", i))
		}
	}
	return nil
}
