package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/nacre/model"
	"github.com/zjrosen/nacre/registry"
)

// maxValueWidth bounds rendered property values; longer values are
// truncated with an ellipsis.
const maxValueWidth = 60

// Semantic styles for CLI output.
var (
	identityStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"})
	uuidStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#696969"})
	propKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"})
	sharedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	deleteStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"})
	insertStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
)

// graphNode is one materialized model with its resolved children.
type graphNode struct {
	entity   model.Entity
	shared   bool // entity already appeared elsewhere in the walk
	scalars  []scalarProp
	children []childRef
}

type scalarProp struct {
	key   string
	value any
}

// childRef links a parent property (or list slot) to a nested model.
type childRef struct {
	label string
	node  *graphNode
}

// graphStats summarizes a materialization walk.
type graphStats struct {
	Materialized int // bags resolved through the registry
	Models       int // distinct live instances
	SharedRefs   int // resolutions that returned an existing instance
}

// materializeGraph resolves every reachable model bag through the registry
// and returns the graph root plus walk statistics.
func materializeGraph(reg *registry.Registry, doc model.Data) (*graphNode, graphStats, error) {
	stats := graphStats{}
	seen := make(map[model.Entity]bool)

	var walk func(bag model.Data) (*graphNode, error)
	walk = func(bag model.Data) (*graphNode, error) {
		ent, err := reg.GetModel(bag)
		if err != nil {
			return nil, err
		}
		stats.Materialized++

		n := &graphNode{entity: ent}
		if seen[ent] {
			// A shared entity renders in full once; later references
			// collapse to a marker.
			n.shared = true
			stats.SharedRefs++
			return n, nil
		}
		seen[ent] = true
		stats.Models++

		keys := make([]string, 0, len(ent.Data()))
		for k := range ent.Data() {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if k == model.PropIdentity || k == model.PropUUID {
				continue // shown on the node header
			}
			v := ent.Data()[k]
			if bag, ok := asModelBag(v); ok {
				child, err := walk(bag)
				if err != nil {
					return nil, err
				}
				n.children = append(n.children, childRef{label: k, node: child})
				continue
			}
			if items, ok := v.([]any); ok && len(items) > 0 {
				for i, el := range items {
					slot := fmt.Sprintf("%s[%d]", k, i)
					if bag, ok := asModelBag(el); ok {
						child, err := walk(bag)
						if err != nil {
							return nil, err
						}
						n.children = append(n.children, childRef{label: slot, node: child})
					} else {
						n.scalars = append(n.scalars, scalarProp{key: slot, value: el})
					}
				}
				continue
			}
			n.scalars = append(n.scalars, scalarProp{key: k, value: v})
		}
		return n, nil
	}

	root, err := walk(doc)
	if err != nil {
		return nil, stats, err
	}
	return root, stats, nil
}

// asModelBag returns the value as a bag when it names its own identity.
func asModelBag(v any) (model.Data, bool) {
	var bag model.Data
	switch t := v.(type) {
	case model.Data:
		bag = t
	case map[string]any:
		bag = model.Data(t)
	default:
		return nil, false
	}
	if _, ok := bag[model.PropIdentity].(string); !ok {
		return nil, false
	}
	return bag, true
}

// renderGraph writes the materialized tree to w.
func renderGraph(w io.Writer, root *graphNode) {
	fmt.Fprintln(w, nodeHeader(root))
	renderChildren(w, root, "")
}

// nodeHeader formats one model line: identity, uuid and a shared marker.
func nodeHeader(n *graphNode) string {
	header := identityStyle.Render(n.entity.ModelIdentity()) + " " + uuidStyle.Render(n.entity.UUID())
	if n.shared {
		header += " " + sharedStyle.Render("(shared)")
	}
	return header
}

// renderChildren writes scalar properties then nested models, extending
// prefix for each level.
func renderChildren(w io.Writer, n *graphNode, prefix string) {
	total := len(n.scalars) + len(n.children)
	idx := 0

	branch := func() (string, string) {
		idx++
		if idx == total {
			return prefix + "└── ", prefix + "    "
		}
		return prefix + "├── ", prefix + "│   "
	}

	for _, p := range n.scalars {
		lead, _ := branch()
		fmt.Fprintf(w, "%s%s: %s\n", lead, propKeyStyle.Render(p.key), clipValue(formatValue(p.value)))
	}
	for _, c := range n.children {
		lead, cont := branch()
		fmt.Fprintf(w, "%s%s %s\n", lead, propKeyStyle.Render(c.label+":"), nodeHeader(c.node))
		if !c.node.shared {
			renderChildren(w, c.node, cont)
		}
	}
}

// renderStats writes the walk summary line.
func renderStats(w io.Writer, stats graphStats) {
	line := fmt.Sprintf("%d models (%d shared references) from %d bags",
		stats.Models, stats.SharedRefs, stats.Materialized)
	fmt.Fprintln(w, statsStyle.Render(line))
}

// formatValue renders a scalar property value. Strings are quoted;
// everything else uses compact JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// clipValue truncates long values to the display width.
func clipValue(s string) string {
	if runewidth.StringWidth(s) <= maxValueWidth {
		return s
	}
	return truncate.StringWithTail(s, maxValueWidth, "…")
}
