// Package entries parses submitted documents and derives the graph nodes
// they imply.
package entries

import (
	"crypto/md5" //nolint:gosec // ids only, not a security boundary.
	"encoding/hex"
	"strings"

	"github.com/persistorai/papergraph/internal/models"
)

// NodeID derives the stable id for a node title: the hex MD5 of the title
// with spaces removed. Returns "" for a blank title.
func NodeID(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	sum := md5.Sum([]byte(strings.ReplaceAll(title, " ", ""))) //nolint:gosec // see import.

	return hex.EncodeToString(sum[:])
}

// TagChain expands a nested tag into every prefix, shallowest first:
// "A/B/C" becomes ["A", "A/B", "A/B/C"]. Blank segments are skipped.
func TagChain(tag string) []string {
	var (
		chain   []string
		current string
	)

	for _, seg := range strings.Split(tag, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		if current == "" {
			current = seg
		} else {
			current += "/" + seg
		}

		chain = append(chain, current)
	}

	return chain
}

// Parent returns the tag one level up, or "" for a top-level tag.
func Parent(tag string) string {
	i := strings.LastIndex(tag, "/")
	if i < 0 {
		return ""
	}

	return tag[:i]
}

// Plan is the set of nodes and links one entry implies.
type Plan struct {
	Document models.Node
	Tags     []models.Node
	Links    []models.Link
}

// PlanEntry lays out the document node, one tag node per prefix of its
// tag, a link from each nested tag to its parent, and a single link from
// the document to its deepest tag. e must already be validated.
func PlanEntry(e models.Entry) Plan {
	doc := models.Node{
		ID:    NodeID(e.Name),
		Type:  models.NodeTypeDocument,
		Title: e.Name,
		Link:  e.Link,
		Owner: e.Owner,
	}

	chain := TagChain(e.Tag)
	p := Plan{Document: doc, Tags: make([]models.Node, 0, len(chain))}

	for _, tag := range chain {
		id := NodeID(tag)
		p.Tags = append(p.Tags, models.Node{ID: id, Type: models.NodeTypeTag, Title: tag, Owner: e.Owner})

		if parent := Parent(tag); parent != "" {
			p.Links = append(p.Links, models.Link{Source: id, Target: NodeID(parent), Type: models.NodeTypeTag})
		}
	}

	if len(chain) > 0 {
		deepest := chain[len(chain)-1]
		p.Links = append(p.Links, models.Link{Source: doc.ID, Target: NodeID(deepest), Type: models.NodeTypeDocument})
	}

	return p
}
