// Package xr defines what the frame loop consumes from an XR runtime: a blocking frame wait that yields the
// predicted display time and the tracked pointers for the frame.
package xr

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/spatialmath"
)

// ErrSessionClosed is returned by WaitFrame after Close.
var ErrSessionClosed = errors.New("xr session closed")

// PointerKind distinguishes tracked controllers from tracked hands.
type PointerKind int

const (
	// Controller is a handheld controller whose proxy volume is its model box.
	Controller PointerKind = iota
	// Hand is a tracked hand whose proxy volumes are the thumb tip and the palm.
	Hand
)

func (k PointerKind) String() string {
	switch k {
	case Controller:
		return "controller"
	case Hand:
		return "hand"
	default:
		return "unknown"
	}
}

// Pose is a position and orientation in the stage space of the session.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// IdentityPose is the pose at the stage origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// Mat4 returns the rigid transform of the pose.
func (p Pose) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Orientation.Normalize().Mat4())
}

// Compose returns p expressed in the space that parent is given in.
func (parent Pose) Compose(p Pose) Pose {
	return Pose{
		Position:    parent.Position.Add(parent.Orientation.Rotate(p.Position)),
		Orientation: parent.Orientation.Mul(p.Orientation).Normalize(),
	}
}

// PointerState is the tracked state of one pointer for one frame.
type PointerState struct {
	ID   string
	Kind PointerKind
	// Valid is false when tracking was lost for this frame. Invalid pointers are ignored by interaction logic.
	Valid bool
	Pose  Pose

	AimOrigin    mgl64.Vec3
	AimDirection mgl64.Vec3

	// Grabbing is the grip button for controllers and the pinch gesture for hands.
	Grabbing bool
	// TeleportRequested is the current level of the teleport input, not an edge.
	TeleportRequested bool

	// ThumbTip and Palm are only meaningful for hands.
	ThumbTip Pose
	Palm     Pose
}

// AimRay returns the aim ray of the pointer in the geometry types used for queries.
func (p PointerState) AimRay() (spatialmath.Ray, error) {
	return spatialmath.NewRay(spatialmath.Vec3ToR3(p.AimOrigin), spatialmath.Vec3ToR3(p.AimDirection))
}

// InSpace returns the pointer state with every pose and the aim ray moved from stage space into the space the
// stage pose is given in.
func (p PointerState) InSpace(stage Pose) PointerState {
	out := p
	out.Pose = stage.Compose(p.Pose)
	out.ThumbTip = stage.Compose(p.ThumbTip)
	out.Palm = stage.Compose(p.Palm)
	out.AimOrigin = stage.Position.Add(stage.Orientation.Rotate(p.AimOrigin))
	out.AimDirection = stage.Orientation.Rotate(p.AimDirection)
	return out
}

// FrameState is everything the runtime reports for one frame.
type FrameState struct {
	Index                uint64
	PredictedDisplayTime time.Time
	Pointers             []PointerState
	// ShouldExit is set when the runtime asks the application to stop.
	ShouldExit bool
}

// A Session is an XR runtime session. WaitFrame blocks until the runtime is ready for the next frame and is
// the only blocking call of the frame loop.
type Session interface {
	WaitFrame(ctx context.Context) (*FrameState, error)
	Close() error
}
