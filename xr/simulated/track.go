package simulated

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/utils"
	"go.hmdkit.dev/xrcore/xr"
)

var (
	// pointers aim down their local -Z axis
	aimForward = mgl64.Vec3{0, 0, -1}
	// offset of a hand's thumb tip from its palm, in the hand frame
	thumbTipOffset = mgl64.Vec3{0.03, 0.02, -0.06}
)

// Keyframe is the scripted state of a pointer from Frame on. Positions and orientations are interpolated
// toward the next keyframe; the boolean inputs hold until the next keyframe.
type Keyframe struct {
	Frame           uint64     `json:"frame"`
	Position        mgl64.Vec3 `json:"position"`
	RotationAxis    mgl64.Vec3 `json:"rotation_axis"`
	RotationDegrees float64    `json:"rotation_degrees"`
	Grabbing        bool       `json:"grabbing"`
	Teleport        bool       `json:"teleport"`
	// Lost marks tracking loss for the frames this keyframe covers.
	Lost bool `json:"lost"`
}

func (k Keyframe) orientation() mgl64.Quat {
	if k.RotationAxis.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(utils.DegToRad(k.RotationDegrees), k.RotationAxis.Normalize())
}

// Track is the scripted motion of one pointer.
type Track struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Keyframes []Keyframe `json:"keyframes"`

	kind xr.PointerKind
}

func (t *Track) validate(path string) error {
	switch t.Kind {
	case "", "controller":
		t.kind = xr.Controller
	case "hand":
		t.kind = xr.Hand
	default:
		return errors.Errorf("%s.kind: unknown pointer kind %q", path, t.Kind)
	}
	if len(t.Keyframes) == 0 {
		return errors.Errorf("%s.keyframes: at least one keyframe is required", path)
	}
	sort.SliceStable(t.Keyframes, func(i, j int) bool {
		return t.Keyframes[i].Frame < t.Keyframes[j].Frame
	})
	return nil
}

// stateAt returns the pointer state of the track for a frame. Frames before the first keyframe report the
// pointer as not tracked.
func (t *Track) stateAt(frame uint64) xr.PointerState {
	state := xr.PointerState{ID: t.ID, Kind: t.kind}
	idx := sort.Search(len(t.Keyframes), func(i int) bool {
		return t.Keyframes[i].Frame > frame
	}) - 1
	if idx < 0 {
		return state
	}

	cur := t.Keyframes[idx]
	pose := xr.Pose{Position: cur.Position, Orientation: cur.orientation()}
	if idx+1 < len(t.Keyframes) {
		next := t.Keyframes[idx+1]
		amount := float64(frame-cur.Frame) / float64(next.Frame-cur.Frame)
		pose.Position = cur.Position.Add(next.Position.Sub(cur.Position).Mul(amount))
		pose.Orientation = mgl64.QuatSlerp(pose.Orientation, next.orientation(), amount)
	}

	state.Valid = !cur.Lost
	state.Pose = pose
	state.AimOrigin = pose.Position
	state.AimDirection = pose.Orientation.Rotate(aimForward)
	state.Grabbing = cur.Grabbing
	state.TeleportRequested = cur.Teleport
	if t.kind == xr.Hand {
		state.Palm = pose
		state.ThumbTip = xr.Pose{
			Position:    pose.Position.Add(pose.Orientation.Rotate(thumbTipOffset)),
			Orientation: pose.Orientation,
		}
	}
	return state
}
