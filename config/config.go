// Package config defines the JSON description of a scene, its interaction tunables and the runtime that drives
// it, and builds scenes from it.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.hmdkit.dev/xrcore/interaction"
	"go.hmdkit.dev/xrcore/logging"
	"go.hmdkit.dev/xrcore/utils"
	"go.hmdkit.dev/xrcore/xr/simulated"
)

// A Config describes the configuration of a scene and the loop running it.
type Config struct {
	ConfigFilePath string `json:"-"`

	Name        string             `json:"name,omitempty"`
	Nodes       []Node             `json:"nodes"`
	Interaction interaction.Config `json:"interaction"`
	Render      RenderConfig       `json:"render"`
	Log         LogConfig          `json:"log"`
	Simulation  simulated.Config   `json:"simulation"`

	// Rig names the root node moved by teleports. Empty disables teleporting.
	Rig string `json:"rig,omitempty"`
	// Pointers binds pointer ids to the nodes that follow them.
	Pointers map[string]string `json:"pointers,omitempty"`
}

// RenderConfig configures the renderer.
type RenderConfig struct {
	Debug bool `json:"debug"`
}

// LogConfig configures logging. A set File adds a rotated log file next to stdout.
type LogConfig struct {
	Level string         `json:"level,omitempty"`
	File  *LogFileConfig `json:"file,omitempty"`
}

// LogFileConfig controls rotation of the log file.
type LogFileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *LogConfig) Validate(path string) error {
	if c.Level != "" {
		if _, err := logging.LevelFromString(c.Level); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if c.File != nil && c.File.Path == "" {
		return utils.NewConfigValidationFieldRequiredError(path+".file", "path")
	}
	return nil
}

// Ensure fills in defaults and ensures all parts of the config are valid. Nodes are sorted so every parent
// comes before its children.
func (c *Config) Ensure() error {
	for idx := 0; idx < len(c.Nodes); idx++ {
		if err := c.Nodes[idx].Validate(fmt.Sprintf("%s.%d", "nodes", idx)); err != nil {
			return err
		}
	}

	if len(c.Nodes) > 0 {
		sorted, err := SortNodes(c.Nodes)
		if err != nil {
			return err
		}
		c.Nodes = sorted
	}

	names := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		names[n.Name] = true
	}
	for _, n := range c.Nodes {
		if n.Button != nil && n.Button.Target != "" && !names[n.Button.Target] {
			return utils.NewConfigValidationError(fmt.Sprintf("nodes.%s.button", n.Name),
				errors.Errorf("unknown target node %q", n.Button.Target))
		}
	}
	if c.Rig != "" {
		if !names[c.Rig] {
			return utils.NewConfigValidationError("rig", errors.Errorf("unknown node %q", c.Rig))
		}
		for _, n := range c.Nodes {
			if n.Name == c.Rig && n.Parent != "" {
				return utils.NewConfigValidationError("rig", errors.Errorf("node %q must not have a parent", c.Rig))
			}
		}
	}
	for pointer, node := range c.Pointers {
		if !names[node] {
			return utils.NewConfigValidationError("pointers."+pointer, errors.Errorf("unknown node %q", node))
		}
	}

	c.Interaction.Ensure()
	if err := c.Interaction.Validate("interaction"); err != nil {
		return err
	}
	if err := c.Simulation.Validate("simulation"); err != nil {
		return err
	}
	return c.Log.Validate("log")
}

// SortNodes sorts nodes so that every parent precedes its children, keeping the given order otherwise.
// It fails on duplicate names, unknown parents and cycles.
func SortNodes(nodes []Node) ([]Node, error) {
	byName := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if _, ok := byName[n.Name]; ok {
			return nil, errors.Errorf("node name %q is not unique", n.Name)
		}
		byName[n.Name] = n
	}
	for _, n := range nodes {
		if n.Parent == "" {
			continue
		}
		if _, ok := byName[n.Parent]; !ok {
			return nil, errors.Errorf("node %q has unknown parent %q", n.Name, n.Parent)
		}
	}

	sorted := make([]Node, 0, len(nodes))
	visited := map[string]bool{}

	var dfsHelper func(string, []string) error
	dfsHelper = func(name string, path []string) error {
		for idx, seen := range path {
			if name == seen {
				return errors.Errorf("circular parenting detected in node list between %s", strings.Join(path[idx:], ", "))
			}
		}
		if visited[name] {
			return nil
		}
		path = append(path, name)
		n := byName[name]
		if n.Parent != "" {
			if err := dfsHelper(n.Parent, path); err != nil {
				return err
			}
		}
		visited[name] = true
		sorted = append(sorted, n)
		return nil
	}

	for _, n := range nodes {
		if err := dfsHelper(n.Name, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
