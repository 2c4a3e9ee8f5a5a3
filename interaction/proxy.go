package interaction

import (
	"github.com/go-gl/mathgl/mgl64"

	"go.hmdkit.dev/xrcore/spatialmath"
	"go.hmdkit.dev/xrcore/xr"
)

// proxyBox returns an origin centered box of the given half size placed at pose.
func proxyBox(half mgl64.Vec3, pose xr.Pose) *spatialmath.OBB {
	local, err := spatialmath.NewAxisAlignedOBB(spatialmath.Vec3ToR3(mgl64.Vec3{}), spatialmath.Vec3ToR3(half))
	if err != nil {
		// negative sizes are rejected by Config.Validate
		return nil
	}
	return local.Transformed(pose.Mat4())
}

// Proxies returns the world space volumes that stand in for a pointer when testing touch and grab: the
// controller model box for controllers, the thumb tip and palm boxes for hands.
func (cfg Config) Proxies(p xr.PointerState) []*spatialmath.OBB {
	var boxes []*spatialmath.OBB
	switch p.Kind {
	case xr.Hand:
		boxes = []*spatialmath.OBB{proxyBox(cfg.ThumbHalfExtents, p.ThumbTip), proxyBox(cfg.PalmHalfExtents, p.Palm)}
	default:
		boxes = []*spatialmath.OBB{proxyBox(cfg.ControllerHalfExtents, p.Pose)}
	}
	out := boxes[:0]
	for _, b := range boxes {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
