package taxonomy

import (
	"strings"

	"github.com/persistorai/papergraph/internal/models"
)

// CollapseState maps a node's Path to whether it is collapsed. It is owned
// by the caller and survives rebuilds because paths are stable.
type CollapseState map[string]bool

// CollapsedFrom returns a state with each given path collapsed.
func CollapsedFrom(paths []string) CollapseState {
	s := make(CollapseState, len(paths))
	for _, p := range paths {
		if segs, _ := splitPath(p); len(segs) > 0 {
			s[strings.Join(segs, PathSeparator)] = true
		}
	}

	return s
}

// IsCollapsed reports whether path is collapsed. A nil state collapses nothing.
func (s CollapseState) IsCollapsed(path string) bool {
	return s[path]
}

// Toggle flips the collapse flag for path and returns the new value. The
// state must be non-nil.
func (s CollapseState) Toggle(path string) bool {
	if s[path] {
		delete(s, path)
		return false
	}

	s[path] = true

	return true
}

// Row is one visible line of the rendered sidebar.
type Row struct {
	Label       string            `json:"label"`
	Path        string            `json:"path"`
	Depth       int               `json:"depth"`
	Record      *models.TagRecord `json:"record,omitempty"`
	HasChildren bool              `json:"has_children"`
	Collapsed   bool              `json:"collapsed"`
}

// Visible flattens the forest depth-first, skipping the descendants of
// collapsed nodes.
func Visible(f *Forest, state CollapseState) []Row {
	rows := []Row{}
	if f == nil {
		return rows
	}

	var visit func([]*TreeNode)
	visit = func(nodes []*TreeNode) {
		for _, n := range nodes {
			collapsed := n.HasChildren() && state.IsCollapsed(n.Path)

			rows = append(rows, Row{
				Label:       n.Label,
				Path:        n.Path,
				Depth:       n.Depth,
				Record:      n.Record,
				HasChildren: n.HasChildren(),
				Collapsed:   collapsed,
			})

			if !collapsed {
				visit(n.Children)
			}
		}
	}

	visit(f.Roots)

	return rows
}

// Action is what Activate did.
type Action int

// Possible outcomes of Activate.
const (
	ActionNone Action = iota
	ActionToggled
	ActionNavigated
)

// Activate handles a click on node. Nodes with children toggle their
// collapse flag; bound leaves call navigate with their record; unbound
// leaves do nothing.
func Activate(state CollapseState, node *TreeNode, navigate func(models.TagRecord)) Action {
	if node == nil {
		return ActionNone
	}

	if node.HasChildren() {
		state.Toggle(node.Path)
		return ActionToggled
	}

	if node.Record != nil && navigate != nil {
		navigate(*node.Record)
		return ActionNavigated
	}

	return ActionNone
}
