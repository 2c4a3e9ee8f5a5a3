package config

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/render"
	"go.hmdkit.dev/xrcore/scenegraph"
	"go.hmdkit.dev/xrcore/utils"
)

// DefaultSceneName names scenes whose config has no name.
const DefaultSceneName = "scene"

// Built is a scene created from a config, with handles of its named nodes.
type Built struct {
	Scene *scenegraph.Scene
	Nodes map[string]scenegraph.NodeID
	// Rig is NoNode when the config has no rig.
	Rig scenegraph.NodeID
	// Pointers maps pointer ids to the nodes following them.
	Pointers map[string]scenegraph.NodeID
}

// BuildScene creates the nodes of an ensured config, parents first, and registers their roles. The world
// transforms of the returned scene are up to date.
func BuildScene(cfg *Config, logger logging.Logger) (*Built, error) {
	name := cfg.Name
	if name == "" {
		name = DefaultSceneName
	}
	scene := scenegraph.NewScene(name, logger)
	guard := utils.NewGuard(scene.Teardown)
	defer guard.OnFail()

	built := &Built{
		Scene:    scene,
		Nodes:    make(map[string]scenegraph.NodeID, len(cfg.Nodes)),
		Rig:      scenegraph.NoNode,
		Pointers: make(map[string]scenegraph.NodeID, len(cfg.Pointers)),
	}
	payloads := map[string]render.Renderable{}

	for _, n := range cfg.Nodes {
		parent := scenegraph.NoNode
		if n.Parent != "" {
			var ok bool
			if parent, ok = built.Nodes[n.Parent]; !ok {
				return nil, errors.Errorf("node %q: parent %q is not built yet", n.Name, n.Parent)
			}
		}

		var payload scenegraph.Payload
		if n.Payload != nil {
			key := n.Payload.key(n.Name)
			renderable, ok := payloads[key]
			if !ok {
				var err error
				if renderable, err = newPayload(n.Name, n.Payload); err != nil {
					return nil, err
				}
				payloads[key] = renderable
			}
			payload = renderable
		}

		id, err := scene.NewNode(n.Name, parent, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "node %q", n.Name)
		}
		built.Nodes[n.Name] = id

		if err := setupNode(scene, id, n); err != nil {
			return nil, errors.Wrapf(err, "node %q", n.Name)
		}
	}

	for _, n := range cfg.Nodes {
		if n.Button == nil {
			continue
		}
		if err := scene.RegisterButton(scenegraph.NewButton(built.Nodes[n.Name], pressAction(scene, built, n, logger))); err != nil {
			return nil, errors.Wrapf(err, "button %q", n.Name)
		}
	}

	if cfg.Rig != "" {
		built.Rig = built.Nodes[cfg.Rig]
	}
	for pointer, node := range cfg.Pointers {
		built.Pointers[pointer] = built.Nodes[node]
	}

	scene.UpdateTransformation()
	logger.Infow("scene built", "scene", name, "nodes", scene.Len(), "payloads", len(payloads))
	guard.Success()
	return built, nil
}

func setupNode(scene *scenegraph.Scene, id scenegraph.NodeID, n Node) error {
	if err := scene.SetPosition(id, n.Translation.Vec3()); err != nil {
		return err
	}
	if err := scene.SetRotation(id, n.Orientation.Quat()); err != nil {
		return err
	}
	if err := scene.SetScale(id, n.Scale.Vec3()); err != nil {
		return err
	}
	if !n.IsActive() {
		if err := scene.SetActive(id, false); err != nil {
			return err
		}
	}
	if n.Grabbable {
		if err := scene.SetGrabbable(id, true); err != nil {
			return err
		}
	}
	if n.Terrain {
		if err := scene.SetIsTerrain(id, true); err != nil {
			return err
		}
	}
	return nil
}

func pressAction(scene *scenegraph.Scene, built *Built, n Node, logger logging.Logger) func() {
	switch n.Button.Action {
	case ActionToggle:
		target := built.Nodes[n.Button.Target]
		return func() {
			active := !scene.IsActive(target)
			if err := scene.SetActive(target, active); err != nil {
				logger.Warnw("button target is gone", "button", n.Name, "target", n.Button.Target, "error", err)
				return
			}
			logger.Infow("button toggled node", "button", n.Name, "target", n.Button.Target, "active", active)
		}
	default:
		return func() {
			logger.Infow("button pressed", "button", n.Name)
		}
	}
}

func newPayload(node string, cfg *PayloadConfig) (render.Renderable, error) {
	name := cfg.Name
	if name == "" {
		name = node
	}
	switch cfg.Type {
	case PayloadBox:
		return render.NewBoxMesh(name, cfg.Dims.Mul(0.5))
	case PayloadPoints:
		return render.NewMesh(name, cfg.Points, cfg.Indices)
	case PayloadLine:
		segments := make([][2]mgl64.Vec3, 0, len(cfg.Points)/2)
		for i := 0; i+1 < len(cfg.Points); i += 2 {
			segments = append(segments, [2]mgl64.Vec3{cfg.Points[i], cfg.Points[i+1]})
		}
		return render.NewLine(name, segments), nil
	case PayloadText:
		return render.NewText(name, cfg.Label, cfg.Dims.X(), cfg.Dims.Y())
	default:
		return nil, utils.NewUnknownKindError("payload type", cfg.Type)
	}
}
