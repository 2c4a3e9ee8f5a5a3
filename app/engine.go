// Package app runs the frame loop of an XR application: it waits on the runtime, moves the scene by the
// tracked pointers, resolves interactions and submits the scene to the renderer.
package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.hmdkit.dev/xrcore/interaction"
	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/render"
	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/xr"
)

// Options configures an Engine. Session, Scene and Submitter are required.
type Options struct {
	Session   xr.Session
	Scene     *scenegraph.Scene
	Submitter render.Submitter

	// Interactor defaults to one using interaction.DefaultConfig.
	Interactor *interaction.Interactor
	// Renderer defaults to one without debug boxes.
	Renderer *render.Renderer

	// Rig is the root moved by teleports and the stage pointers are reported in. NoNode disables both.
	Rig scenegraph.NodeID
	// Pointers binds pointer ids to nodes that follow them in stage space.
	Pointers map[string]scenegraph.NodeID

	// OnFrame, if set, is called at the end of every frame.
	OnFrame func(frame *xr.FrameState, result interaction.Result)
}

// Stats counts what the engine did so far.
type Stats struct {
	Frames        uint64
	Draws         uint64
	Teleports     uint64
	Presses       uint64
	RenderErrored uint64
}

// Engine drives one scene from one session. All scene mutation happens on the goroutine calling Run.
type Engine struct {
	opts   Options
	logger logging.Logger

	frames        atomic.Uint64
	draws         atomic.Uint64
	teleports     atomic.Uint64
	presses       atomic.Uint64
	renderErrored atomic.Uint64
}

// NewEngine returns an engine for opts.
func NewEngine(opts Options, logger logging.Logger) (*Engine, error) {
	if opts.Session == nil {
		return nil, errors.New("engine needs a session")
	}
	if opts.Scene == nil {
		return nil, errors.New("engine needs a scene")
	}
	if opts.Submitter == nil {
		return nil, errors.New("engine needs a submitter")
	}
	if opts.Interactor == nil {
		opts.Interactor = interaction.NewInteractor(interaction.DefaultConfig(), logger.Sublogger("interaction"))
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer(logger.Sublogger("render"), false)
	}
	return &Engine{opts: opts, logger: logger}, nil
}

// Stats returns the counters of the engine. It is safe to call while Run is in progress.
func (e *Engine) Stats() Stats {
	return Stats{
		Frames:        e.frames.Load(),
		Draws:         e.draws.Load(),
		Teleports:     e.teleports.Load(),
		Presses:       e.presses.Load(),
		RenderErrored: e.renderErrored.Load(),
	}
}

// Run runs frames until the session asks to exit or ctx is done, then closes the session. A frame that has
// started always completes; cancellation is only observed while waiting for the next frame.
func (e *Engine) Run(ctx context.Context) (err error) {
	defer func() {
		err = multierr.Combine(err, e.opts.Session.Close())
		e.logger.Infow("frame loop stopped", "frames", e.frames.Load(), "error", err)
	}()
	for {
		done, err := e.RunFrame(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
		if done {
			return nil
		}
	}
}

// RunFrame waits for and runs a single frame. It reports true once the session asks to exit.
func (e *Engine) RunFrame(ctx context.Context) (bool, error) {
	frame, err := e.opts.Session.WaitFrame(ctx)
	if err != nil {
		return false, err
	}
	if frame.ShouldExit {
		e.logger.Debugw("session requested exit", "frame", frame.Index)
		return true, nil
	}
	if err := e.runFrame(frame); err != nil {
		return false, errors.Wrapf(err, "frame %d", frame.Index)
	}
	return false, nil
}

func (e *Engine) runFrame(frame *xr.FrameState) error {
	scene := e.opts.Scene
	if err := interaction.FollowPointers(scene, e.opts.Pointers, frame.Pointers); err != nil {
		return err
	}
	scene.UpdateTransformation()

	pointers, err := interaction.StageToWorld(scene, e.opts.Rig, frame.Pointers)
	if err != nil {
		return err
	}
	result := e.opts.Interactor.Step(scene, pointers)
	if result.Teleport != nil && e.opts.Rig != scenegraph.NoNode {
		if err := interaction.ApplyTeleport(scene, e.opts.Rig, result.Teleport); err != nil {
			return err
		}
		e.teleports.Inc()
	}
	e.presses.Add(uint64(len(result.Pressed)))
	scene.UpdateTransformation()

	stats, err := e.opts.Renderer.Frame(&render.Context{
		Frame:                frame.Index,
		PredictedDisplayTime: frame.PredictedDisplayTime,
		Submitter:            e.opts.Submitter,
	}, scene)
	e.draws.Add(uint64(stats.Draws))
	if err != nil {
		e.renderErrored.Inc()
		e.logger.Warnw("frame rendered with errors", "frame", frame.Index, "error", err)
	}

	e.frames.Inc()
	if e.opts.OnFrame != nil {
		e.opts.OnFrame(frame, result)
	}
	return nil
}
