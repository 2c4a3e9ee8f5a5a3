// Package render walks a scene graph and turns its payloads into draw commands for a graphics backend.
package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/spatialmath"
)

// DrawCommand is one draw submitted to the backend.
type DrawCommand struct {
	Kind        Kind
	Name        string
	World       mgl64.Mat4
	VertexCount int
	IndexCount  int
	Label       string
}

// DebugBox is the world space wireframe of a payload's box. Indices pair up corners into the box's 12 edges.
type DebugBox struct {
	Node    scenegraph.NodeID
	Corners [8]mgl64.Vec3
	Indices [24]uint32
}

// Submitter is the graphics backend boundary.
type Submitter interface {
	Submit(cmd DrawCommand) error
	SubmitDebugBox(box DebugBox) error
}

// Context is passed to every Render call of a frame.
type Context struct {
	Frame                uint64
	PredictedDisplayTime time.Time
	Submitter            Submitter
}

// Submission is a renderable payload together with the world transform of the node drawing it.
type Submission struct {
	Node    scenegraph.NodeID
	Payload Renderable
	World   mgl64.Mat4
}

// Traverse yields the renderable payloads of the active part of the scene, parents before children. Payloads
// that cannot render are passed over, and returning an error from fn stops the walk.
func Traverse(scene *scenegraph.Scene, fn func(Submission) error) error {
	return scene.Walk(false, func(id scenegraph.NodeID, world mgl64.Mat4) error {
		payload, err := scene.Payload(id)
		if err != nil {
			return err
		}
		renderable, ok := payload.(Renderable)
		if !ok {
			return nil
		}
		return fn(Submission{Node: id, Payload: renderable, World: world})
	})
}

// FrameStats counts what a frame submitted.
type FrameStats struct {
	Draws      int
	DebugBoxes int
	Failed     int
}

// Renderer submits a scene once per frame.
type Renderer struct {
	logger logging.Logger
	debug  bool
}

// NewRenderer returns a Renderer. With debug set every payload box is also submitted as a wireframe.
func NewRenderer(logger logging.Logger, debug bool) *Renderer {
	return &Renderer{logger: logger, debug: debug}
}

// SetDebug toggles box wireframes.
func (r *Renderer) SetDebug(debug bool) {
	r.debug = debug
}

// Frame submits every active payload of the scene in hierarchy order. Each payload first receives the world
// transform of the node drawing it, so a payload shared by several nodes is drawn once per node. A failed
// submission does not stop the frame; all failures are returned together.
func (r *Renderer) Frame(ctx *Context, scene *scenegraph.Scene) (FrameStats, error) {
	var stats FrameStats
	var errs error
	walkErr := Traverse(scene, func(sub Submission) error {
		sub.Payload.SetWorldTransform(sub.World)
		if err := sub.Payload.Render(ctx); err != nil {
			stats.Failed++
			errs = multierr.Append(errs, errors.Wrapf(err, "rendering %s %q", sub.Payload.Kind(), sub.Payload.Name()))
		} else {
			stats.Draws++
		}
		if !r.debug {
			return nil
		}
		box := sub.Payload.ObjectSpaceOBB()
		if box == nil {
			return nil
		}
		if err := ctx.Submitter.SubmitDebugBox(NewDebugBox(sub.Node, box.Transformed(sub.World))); err != nil {
			stats.Failed++
			errs = multierr.Append(errs, errors.Wrapf(err, "debug box of %q", sub.Payload.Name()))
			return nil
		}
		stats.DebugBoxes++
		return nil
	})
	if walkErr != nil {
		errs = multierr.Append(errs, walkErr)
	}
	if errs != nil {
		r.logger.Debugw("frame rendered with errors", "frame", ctx.Frame, "failed", stats.Failed)
	}
	return stats, errs
}

// NewDebugBox returns the wireframe of a world space box.
func NewDebugBox(node scenegraph.NodeID, box *spatialmath.OBB) DebugBox {
	out := DebugBox{Node: node, Indices: spatialmath.OBBEdgeIndices}
	for i, c := range box.Corners() {
		out.Corners[i] = spatialmath.R3ToVec3(c)
	}
	return out
}
