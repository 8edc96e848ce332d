package types

import "time"

// SourceInfo describes the origin of a piece of extracted text.
type SourceInfo struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ExtractedNode is an entity proposed by the extraction collaborator.
// Labels are raw; canonical resolution happens during merge.
type ExtractedNode struct {
	Label      string                 `json:"label"`
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Confidence float64                `json:"confidence"`
	Salience   float64                `json:"salience"`
}

// ExtractedEdge is a relationship proposed by the extraction collaborator.
// Endpoints are label references, resolved against the merged node set.
type ExtractedEdge struct {
	SourceLabel string   `json:"source_label"`
	TargetLabel string   `json:"target_label"`
	Type        string   `json:"type"`
	Weight      int      `json:"weight"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence,omitempty"`
}

// ExtractionResult is the structured output of one extraction call.
type ExtractionResult struct {
	Nodes    []ExtractedNode `json:"nodes"`
	Edges    []ExtractedEdge `json:"edges"`
	Insights []string        `json:"insights,omitempty"`
	Source   SourceInfo      `json:"source,omitempty"`
}

// Empty reports whether the extraction produced nothing usable.
func (r *ExtractionResult) Empty() bool {
	return r == nil || (len(r.Nodes) == 0 && len(r.Edges) == 0 && len(r.Insights) == 0)
}

// MergeDiff describes what a batch merge changed in the graph store.
type MergeDiff struct {
	AddedNodes    []string `json:"added_nodes"`
	ModifiedNodes []string `json:"modified_nodes"`
	AddedEdges    []string `json:"added_edges"`
	ModifiedEdges []string `json:"modified_edges"`
	DroppedEdges  int      `json:"dropped_edges"`
}
