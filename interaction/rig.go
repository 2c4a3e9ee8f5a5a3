package interaction

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/xr"
)

// ApplyTeleport moves the rig node, the stage origin the user stands on, to the target point. The rig is
// expected to be a root so its local position is its world position.
func ApplyTeleport(scene *scenegraph.Scene, rig scenegraph.NodeID, target *TeleportTarget) error {
	if target == nil {
		return nil
	}
	parent, err := scene.Parent(rig)
	if err != nil {
		return errors.Wrap(err, "cannot teleport rig")
	}
	if parent != scenegraph.NoNode {
		return errors.New("cannot teleport a rig that has a parent")
	}
	return scene.SetPosition(rig, target.Point)
}

// FollowPointers places the node bound to each pointer at that pointer's pose and hides it while the pointer
// is not tracked. Pointers without a bound node are ignored.
func FollowPointers(scene *scenegraph.Scene, bound map[string]scenegraph.NodeID, pointers []xr.PointerState) error {
	for _, p := range pointers {
		id, ok := bound[p.ID]
		if !ok {
			continue
		}
		if err := scene.SetActive(id, p.Valid); err != nil {
			return errors.Wrapf(err, "pointer %q", p.ID)
		}
		if !p.Valid {
			continue
		}
		if err := scene.SetPosition(id, p.Pose.Position); err != nil {
			return err
		}
		if err := scene.SetRotation(id, p.Pose.Orientation); err != nil {
			return err
		}
	}
	return nil
}

// StageToWorld moves pointer states reported in stage space into world space by the pose of the rig. With no
// rig the pointers are returned as they are. Rig scale is not applied.
func StageToWorld(scene *scenegraph.Scene, rig scenegraph.NodeID, pointers []xr.PointerState) ([]xr.PointerState, error) {
	if rig == scenegraph.NoNode {
		return pointers, nil
	}
	position, err := scene.LocalPosition(rig)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read rig pose")
	}
	rotation, err := scene.LocalRotation(rig)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read rig pose")
	}
	stage := xr.Pose{Position: position, Orientation: rotation}
	out := make([]xr.PointerState, 0, len(pointers))
	for _, p := range pointers {
		out = append(out, p.InSpace(stage))
	}
	return out, nil
}

// PoseInParent expresses a world pose in the space of the node's parent, so that setting it as the node's
// local pose puts the node at the world pose. Roots take the world pose as is. The parent's scale is divided
// out of the position; a parent scaled to zero has no such pose.
func PoseInParent(scene *scenegraph.Scene, id scenegraph.NodeID, world xr.Pose) (xr.Pose, error) {
	parent, err := scene.Parent(id)
	if err != nil {
		return xr.Pose{}, err
	}
	if parent == scenegraph.NoNode {
		return world, nil
	}
	parentWorld, err := scene.WorldTransform(parent)
	if err != nil {
		return xr.Pose{}, err
	}
	if math.Abs(parentWorld.Det()) < 1e-12 {
		return xr.Pose{}, errors.Errorf("parent of node %v is scaled to zero", id)
	}
	var cols [3]mgl64.Vec4
	for i := range cols {
		cols[i] = parentWorld.Col(i).Vec3().Normalize().Vec4(0)
	}
	parentRotation := mgl64.Mat4ToQuat(mgl64.Mat4FromCols(cols[0], cols[1], cols[2], mgl64.Vec4{0, 0, 0, 1}))
	return xr.Pose{
		Position:    parentWorld.Inv().Mul4x1(world.Position.Vec4(1)).Vec3(),
		Orientation: parentRotation.Inverse().Mul(world.Orientation).Normalize(),
	}, nil
}
