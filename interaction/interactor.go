// Package interaction turns tracked pointers into scene mutations once per frame: grabbing nodes with a
// controller or a pinching hand, aiming at nodes and teleporting onto terrain, and pressing buttons.
package interaction

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/spatialmath"
	"go.hmdkit.dev/xrcore/utils"
	"go.hmdkit.dev/xrcore/xr"
)

// AimHit is the closest node hit by a pointer's aim ray within the configured band.
type AimHit struct {
	PointerID string
	Node      scenegraph.NodeID
	Distance  float64
	Point     mgl64.Vec3
	Terrain   bool
}

// TeleportTarget is a terrain point chosen by a pointer that fired its teleport input this frame.
type TeleportTarget struct {
	PointerID string
	Node      scenegraph.NodeID
	Point     mgl64.Vec3
	Distance  float64
}

// Result is the outcome of one interaction step.
type Result struct {
	// Grabbed maps each node held this frame to the pointer holding it.
	Grabbed map[scenegraph.NodeID]string
	// AimHits has at most one entry per valid pointer, in pointer order.
	AimHits []AimHit
	// Teleport is the first teleport target of the frame, nil if none.
	Teleport *TeleportTarget
	Pressed  []*scenegraph.Button
}

// An Interactor runs the interaction step. It keeps the per-pointer state needed to detect edges between
// frames, so one Interactor should serve one scene for its whole life.
type Interactor struct {
	cfg    Config
	logger logging.Logger

	teleportLevel map[string]bool
	held          map[string][]scenegraph.NodeID
}

// NewInteractor returns an Interactor using cfg.
func NewInteractor(cfg Config, logger logging.Logger) *Interactor {
	return &Interactor{
		cfg:           cfg,
		logger:        logger,
		teleportLevel: map[string]bool{},
		held:          map[string][]scenegraph.NodeID{},
	}
}

// Config returns the configuration of the interactor.
func (in *Interactor) Config() Config {
	return in.cfg
}

// Step runs grab, aim and button logic for one frame. World transforms must be current. Grabbed nodes are
// snapped to their pointer by setting their local position and rotation, so callers update the scene again
// before rendering. Pointers that lost tracking are skipped.
func (in *Interactor) Step(scene *scenegraph.Scene, pointers []xr.PointerState) Result {
	res := Result{Grabbed: map[scenegraph.NodeID]string{}}
	valid := lo.Filter(pointers, func(p xr.PointerState, _ int) bool {
		return p.Valid
	})
	proxies := make(map[string][]*spatialmath.OBB, len(valid))
	for _, p := range valid {
		proxies[p.ID] = in.cfg.Proxies(p)
	}

	scene.ResetFrameFlags()
	in.grab(scene, valid, proxies, &res)
	in.aim(scene, valid, &res)
	in.buttons(scene, valid, proxies, &res)
	in.logHeld(scene, pointers, res.Grabbed)
	return res
}

func (in *Interactor) grab(
	scene *scenegraph.Scene,
	pointers []xr.PointerState,
	proxies map[string][]*spatialmath.OBB,
	res *Result,
) {
	grabbables := scene.Grabbables()
	for _, p := range pointers {
		for _, id := range grabbables {
			if owner, claimed := res.Grabbed[id]; claimed && owner != p.ID {
				continue
			}
			if !touches(scene, id, proxies[p.ID]) {
				continue
			}
			// registry members are live, so the mutations below cannot fail
			utils.UncheckedError(scene.SetIntersected(id, true))
			if !p.Grabbing {
				continue
			}
			res.Grabbed[id] = p.ID
			utils.UncheckedError(scene.SetGrabbed(id, true))
			local, err := PoseInParent(scene, id, p.Pose)
			if err != nil {
				in.logger.Debugw("grabbed node cannot follow pointer", "pointer", p.ID, "node", id, "error", err)
				continue
			}
			utils.UncheckedError(scene.SetPosition(id, local.Position))
			utils.UncheckedError(scene.SetRotation(id, local.Orientation))
		}
	}
}

func touches(scene *scenegraph.Scene, id scenegraph.NodeID, proxies []*spatialmath.OBB) bool {
	return lo.SomeBy(proxies, func(box *spatialmath.OBB) bool {
		return scene.IntersectsOBB(id, box)
	})
}

func (in *Interactor) aim(scene *scenegraph.Scene, pointers []xr.PointerState, res *Result) {
	candidates := lo.Uniq(append(scene.Grabbables(), scene.Terrain()...))
	for _, p := range pointers {
		fired := p.TeleportRequested && !in.teleportLevel[p.ID]
		in.teleportLevel[p.ID] = p.TeleportRequested

		ray, err := p.AimRay()
		if err != nil {
			continue
		}
		hit, ok := in.closestHit(scene, ray, candidates)
		if !ok {
			continue
		}
		hit.PointerID = p.ID
		res.AimHits = append(res.AimHits, hit)

		if !hit.Terrain || !fired || res.Teleport != nil {
			continue
		}
		res.Teleport = &TeleportTarget{PointerID: p.ID, Node: hit.Node, Point: hit.Point, Distance: hit.Distance}
		in.logger.Infow("teleport requested", "pointer", p.ID, "point", hit.Point, "distance", hit.Distance)
	}
}

func (in *Interactor) closestHit(scene *scenegraph.Scene, ray spatialmath.Ray, candidates []scenegraph.NodeID) (AimHit, bool) {
	best := AimHit{Distance: math.Inf(1)}
	found := false
	for _, id := range candidates {
		dist, ok := scene.IntersectsRay(id, ray)
		if !ok || dist < in.cfg.Near || dist > in.cfg.Far || dist >= best.Distance {
			continue
		}
		best = AimHit{
			Node:     id,
			Distance: dist,
			Point:    spatialmath.R3ToVec3(ray.PointAt(dist)),
			Terrain:  scene.IsTerrain(id),
		}
		found = true
	}
	return best, found
}

func (in *Interactor) buttons(
	scene *scenegraph.Scene,
	pointers []xr.PointerState,
	proxies map[string][]*spatialmath.OBB,
	res *Result,
) {
	for _, b := range scene.Buttons() {
		touched := lo.SomeBy(pointers, func(p xr.PointerState) bool {
			return touches(scene, b.Node, proxies[p.ID])
		})
		if touched {
			utils.UncheckedError(scene.SetIntersected(b.Node, true))
		}
		if b.Update(touched) {
			res.Pressed = append(res.Pressed, b)
			name, _ := scene.NodeName(b.Node)
			in.logger.Infow("button pressed", "node", name)
		}
	}
}

// logHeld logs grab starts and releases by comparing this frame's grabs with the previous frame's.
func (in *Interactor) logHeld(scene *scenegraph.Scene, pointers []xr.PointerState, grabbed map[scenegraph.NodeID]string) {
	now := map[string][]scenegraph.NodeID{}
	for id, pointer := range grabbed {
		now[pointer] = append(now[pointer], id)
	}
	for _, p := range pointers {
		started, released := lo.Difference(now[p.ID], in.held[p.ID])
		for _, id := range started {
			name, _ := scene.NodeName(id)
			in.logger.Debugw("grab started", "pointer", p.ID, "node", name)
		}
		for _, id := range released {
			name, _ := scene.NodeName(id)
			in.logger.Debugw("grab released", "pointer", p.ID, "node", name)
		}
	}
	in.held = now
}
