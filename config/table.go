package config

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NodeTable renders the nodes of the config as a table with columns of name, parent, translation,
// orientation, payload and behaviors, parents first once the config is ensured.
func (c *Config) NodeTable() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Parent", "Translation", "Orientation", "Payload", "Behavior"})
	for i, n := range c.Nodes {
		tra := n.Translation
		ori := n.Orientation
		payload := ""
		if n.Payload != nil {
			payload = n.Payload.Type
			if n.Payload.Name != "" {
				payload += ":" + n.Payload.Name
			}
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			n.Name,
			n.Parent,
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf("TH:%.1f around (%.2f, %.2f, %.2f)", ori.TH, ori.X, ori.Y, ori.Z),
			payload,
			behaviors(&n),
		})
	}
	return t.Render()
}

func behaviors(n *Node) string {
	var out []string
	if !n.IsActive() {
		out = append(out, "inactive")
	}
	if n.Grabbable {
		out = append(out, "grabbable")
	}
	if n.Terrain {
		out = append(out, "terrain")
	}
	if n.Button != nil {
		action := n.Button.Action
		if action == "" {
			action = ActionLog
		}
		button := "button:" + action
		if n.Button.Target != "" {
			button += ">" + n.Button.Target
		}
		out = append(out, button)
	}
	return strings.Join(out, " ")
}
