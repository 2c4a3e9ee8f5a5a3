package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/utils"
)

// Payload types.
const (
	PayloadBox    = "box"
	PayloadPoints = "points"
	PayloadLine   = "line"
	PayloadText   = "text"
)

// Button actions.
const (
	// ActionLog only logs the press.
	ActionLog = "log"
	// ActionToggle flips the active flag of the target node.
	ActionToggle = "toggle"
)

// Node describes one scene node.
type Node struct {
	Name string `json:"name"`
	Frame

	// Active defaults to true.
	Active    *bool          `json:"active,omitempty"`
	Grabbable bool           `json:"grabbable,omitempty"`
	Terrain   bool           `json:"terrain,omitempty"`
	Button    *ButtonConfig  `json:"button,omitempty"`
	Payload   *PayloadConfig `json:"payload,omitempty"`
}

// IsActive reports whether the node starts active.
func (n *Node) IsActive() bool {
	return n.Active == nil || *n.Active
}

// Validate ensures all parts of the config are valid.
func (n *Node) Validate(path string) error {
	if n.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if !utils.ValidNameRegex.MatchString(n.Name) {
		return utils.NewConfigValidationError(path, utils.ErrInvalidName(n.Name))
	}
	if n.Parent == n.Name {
		return utils.NewConfigValidationError(path, errors.Errorf("node %q cannot be its own parent", n.Name))
	}
	if err := n.Frame.Validate(path); err != nil {
		return err
	}
	if n.Button != nil {
		if err := n.Button.Validate(path + ".button"); err != nil {
			return err
		}
		if n.Payload == nil {
			return utils.NewConfigValidationError(path, errors.New("a button needs a payload to be touched"))
		}
	}
	if (n.Grabbable || n.Terrain) && n.Payload == nil {
		return utils.NewConfigValidationError(path, errors.New("grabbable and terrain nodes need a payload"))
	}
	if n.Payload != nil {
		return n.Payload.Validate(path + ".payload")
	}
	return nil
}

// ButtonConfig makes a node a button.
type ButtonConfig struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (b *ButtonConfig) Validate(path string) error {
	switch b.Action {
	case "", ActionLog:
	case ActionToggle:
		if b.Target == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "target")
		}
	default:
		return utils.NewConfigValidationError(path, utils.NewUnknownKindError("button action", b.Action))
	}
	return nil
}

// PayloadConfig describes the drawable attached to a node.
type PayloadConfig struct {
	Type string `json:"type"`
	// Name of the payload. Nodes using the same name share one payload. Defaults to the node name.
	Name string `json:"name,omitempty"`

	// Dims are the full box sizes of a box payload, or width and height of a text quad.
	Dims mgl64.Vec3 `json:"dims,omitempty"`
	// Points are mesh vertices, or segment end points taken two at a time for a line.
	Points  []mgl64.Vec3 `json:"points,omitempty"`
	Indices []uint32     `json:"indices,omitempty"`
	Label   string       `json:"label,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (p *PayloadConfig) Validate(path string) error {
	switch p.Type {
	case PayloadBox:
		if p.Dims.X() <= 0 || p.Dims.Y() <= 0 || p.Dims.Z() <= 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("box dims must be positive, got %v", p.Dims))
		}
	case PayloadText:
		if p.Dims.X() <= 0 || p.Dims.Y() <= 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("text dims must be positive, got %v", p.Dims))
		}
	case PayloadPoints:
		if len(p.Points) == 0 {
			return utils.NewConfigValidationFieldRequiredError(path, "points")
		}
		if len(p.Indices)%3 != 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("index count %d is not a multiple of 3", len(p.Indices)))
		}
	case PayloadLine:
		if len(p.Points) == 0 || len(p.Points)%2 != 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("a line needs an even, non-zero number of points, got %d", len(p.Points)))
		}
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	default:
		return utils.NewConfigValidationError(path, utils.NewUnknownKindError("payload type", p.Type))
	}
	return nil
}

func (p *PayloadConfig) key(node string) string {
	if p.Name != "" {
		return fmt.Sprintf("%s/%s", p.Type, p.Name)
	}
	return fmt.Sprintf("%s/%s", p.Type, node)
}
