// Package models defines data types for the paper graph.
package models

import (
	"strings"
	"time"
)

// NodeType distinguishes document entries from tag nodes.
type NodeType string

// Node types stored in the graph.
const (
	NodeTypeDocument NodeType = "DOCUMENT"
	NodeTypeTag      NodeType = "TAG"
)

// ParseNodeType accepts the canonical names as well as the bracketed
// "[TAG]" / "[ENTRY]" spellings used by legacy graph exports.
func ParseNodeType(s string) (NodeType, bool) {
	switch strings.ToUpper(strings.Trim(strings.TrimSpace(s), "[]")) {
	case "DOCUMENT", "ENTRY":
		return NodeTypeDocument, true
	case "TAG":
		return NodeTypeTag, true
	default:
		return "", false
	}
}

// Node represents a vertex in the paper graph: a submitted document or a tag.
type Node struct {
	ID        string    `json:"id"`
	Type      NodeType  `json:"type"`
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Owner     string    `json:"user"`
	AddedOn   string    `json:"date,omitempty"`
	Val       int       `json:"val,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsTag reports whether the node is a tag node.
func (n *Node) IsTag() bool {
	return n.Type == NodeTypeTag
}

// NodeDetail pairs a node with the document type inferred from its link.
type NodeDetail struct {
	Node
	DocType DocTypeInfo `json:"doc_type"`
}
