// Package taxonomy turns flat slash-delimited tag titles into a forest of
// nested tree nodes for sidebar display.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/persistorai/papergraph/internal/models"
)

// PathSeparator splits a tag path into segments.
const PathSeparator = "/"

// ErrDuplicatePath is returned by Build under DuplicateFail when two records
// resolve to the same path.
var ErrDuplicatePath = errors.New("duplicate tag path")

// Reasons attached to dropped records.
const (
	ReasonMalformedPath = "malformed_path"
	ReasonEmptySegment  = "empty_segment"
)

// TreeNode is one segment of the hierarchy. Path is the normalised
// root-to-node key and is stable across rebuilds of the same input.
type TreeNode struct {
	Label    string            `json:"label"`
	Depth    int               `json:"depth"`
	Path     string            `json:"path"`
	Record   *models.TagRecord `json:"record,omitempty"`
	Children []*TreeNode       `json:"children"`
}

// HasChildren reports whether the node has at least one child.
func (n *TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}

// DroppedRecord is a record that could not be placed in the tree.
type DroppedRecord struct {
	Record models.TagRecord `json:"record"`
	Reason string           `json:"reason"`
}

// Duplicate describes two records that resolved to the same path.
type Duplicate struct {
	Path      string           `json:"path"`
	Kept      models.TagRecord `json:"kept"`
	Discarded models.TagRecord `json:"discarded"`
}

// Forest is the result of Build.
type Forest struct {
	Roots      []*TreeNode     `json:"roots"`
	Dropped    []DroppedRecord `json:"dropped"`
	Duplicates []Duplicate     `json:"duplicates"`
}

// Find returns the node at the given normalised path, or nil.
func (f *Forest) Find(path string) *TreeNode {
	if f == nil {
		return nil
	}

	segments, _ := splitPath(path)
	level := f.Roots

	var found *TreeNode

	for _, seg := range segments {
		found = nil

		for _, n := range level {
			if n.Label == seg {
				found = n
				break
			}
		}

		if found == nil {
			return nil
		}

		level = found.Children
	}

	return found
}

// Walk visits every node depth-first in sibling order.
func (f *Forest) Walk(fn func(*TreeNode)) {
	var visit func([]*TreeNode)
	visit = func(nodes []*TreeNode) {
		for _, n := range nodes {
			fn(n)
			visit(n.Children)
		}
	}

	visit(f.Roots)
}

// trieNode is the mutable build-time shape. Children are kept in a map for
// lookup and a slice for insertion order.
type trieNode struct {
	label    string
	record   *models.TagRecord
	children map[string]*trieNode
	order    []string
}

func newTrieNode(label string) *trieNode {
	return &trieNode{label: label, children: make(map[string]*trieNode)}
}

func (t *trieNode) child(label string) *trieNode {
	if c, ok := t.children[label]; ok {
		return c
	}

	c := newTrieNode(label)
	t.children[label] = c
	t.order = append(t.order, label)

	return c
}

// Build groups records into a forest. It is pure and only fails under
// DuplicateFail or when opts holds an unknown value.
func Build(records []models.TagRecord, opts Options) (*Forest, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	root := newTrieNode("")
	forest := &Forest{Dropped: []DroppedRecord{}, Duplicates: []Duplicate{}}

	for i := range records {
		rec := records[i]

		segments, hadEmpty := splitPath(rec.Path)
		if len(segments) == 0 {
			forest.Dropped = append(forest.Dropped, DroppedRecord{Record: rec, Reason: ReasonMalformedPath})
			continue
		}

		if hadEmpty && opts.EmptySegments == EmptyReject {
			forest.Dropped = append(forest.Dropped, DroppedRecord{Record: rec, Reason: ReasonEmptySegment})
			continue
		}

		node := root
		for _, seg := range segments {
			node = node.child(seg)
		}

		if node.record == nil {
			bound := rec
			node.record = &bound

			continue
		}

		path := strings.Join(segments, PathSeparator)
		dup := Duplicate{Path: path}

		switch opts.Duplicates {
		case DuplicateFail:
			return nil, fmt.Errorf("%w: %q (ids %s, %s)", ErrDuplicatePath, path, node.record.ID, rec.ID)
		case DuplicateKeepFirst:
			dup.Kept, dup.Discarded = *node.record, rec
		default:
			dup.Kept, dup.Discarded = rec, *node.record
			bound := rec
			node.record = &bound
		}

		forest.Duplicates = append(forest.Duplicates, dup)
	}

	forest.Roots = convert(root, -1, "", opts.Order)

	return forest, nil
}

// convert turns the children of t into public tree nodes at depth+1.
func convert(t *trieNode, depth int, prefix string, order SiblingOrder) []*TreeNode {
	labels := append([]string(nil), t.order...)
	if order == OrderSorted {
		sort.Strings(labels)
	}

	out := make([]*TreeNode, 0, len(labels))

	for _, label := range labels {
		c := t.children[label]

		path := label
		if prefix != "" {
			path = prefix + PathSeparator + label
		}

		out = append(out, &TreeNode{
			Label:    label,
			Depth:    depth + 1,
			Path:     path,
			Record:   c.record,
			Children: convert(c, depth+1, path, order),
		})
	}

	return out
}

// splitPath returns the non-empty trimmed segments of path and whether any
// empty or whitespace-only segment was skipped.
func splitPath(path string) ([]string, bool) {
	parts := strings.Split(path, PathSeparator)
	segments := make([]string, 0, len(parts))
	hadEmpty := false

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			hadEmpty = true
			continue
		}

		segments = append(segments, p)
	}

	return segments, hadEmpty
}
