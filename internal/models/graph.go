package models

// GraphData is a full snapshot of the graph as consumed by the UI.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// TagRecord is a tag node reduced to what the hierarchy builder needs.
type TagRecord struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// TagRecordsFrom filters nodes down to tags, preserving input order.
func TagRecordsFrom(nodes []Node) []TagRecord {
	records := make([]TagRecord, 0, len(nodes))

	for i := range nodes {
		if !nodes[i].IsTag() {
			continue
		}

		records = append(records, TagRecord{ID: nodes[i].ID, Path: nodes[i].Title})
	}

	return records
}
