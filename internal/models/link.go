package models

// Link is a directed relationship between two nodes. Tag links point from a
// tag to its parent tag; document links point from an entry to its deepest tag.
type Link struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   NodeType `json:"type"`
}
