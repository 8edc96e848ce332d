// Package merge folds whole extraction batches into the graph store,
// resolving node identity by lexical similarity and edge endpoints by label
// reference. Re-merging a logically identical batch is idempotent: no
// duplicate nodes or edges are created.
package merge

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/normalize"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// SimilarityThreshold is the minimum Levenshtein ratio for treating two
// same-type labels as the same entity when one contains the other.
const SimilarityThreshold = 0.7

// TypeResolver maps a proposed type name to a registered node type. The
// default passes the lowercased name through unchanged.
type TypeResolver func(proposed string) types.NodeType

// Merger applies extraction batches to a graph store.
type Merger struct {
	store       *graph.Store
	resolveType TypeResolver
	logger      *slog.Logger
}

// NewMerger creates a merge engine writing through the given store.
func NewMerger(store *graph.Store, resolveType TypeResolver, logger *slog.Logger) *Merger {
	if resolveType == nil {
		resolveType = func(proposed string) types.NodeType {
			return types.NodeType(strings.ToLower(strings.TrimSpace(proposed)))
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{store: store, resolveType: resolveType, logger: logger}
}

// Merge folds a batch into the store and reports what changed. Edges whose
// endpoints cannot be resolved are dropped individually; the rest of the
// batch still applies.
func (m *Merger) Merge(batch *types.ExtractionResult, now time.Time) (*types.MergeDiff, error) {
	if batch == nil {
		return &types.MergeDiff{}, nil
	}

	diff := &types.MergeDiff{}
	prov := provenanceFor(batch.Source, now)

	// labelIndex maps normalized incoming labels to resolved node ids for
	// edge endpoint resolution below.
	labelIndex := make(map[string]string)

	for _, inc := range batch.Nodes {
		norm := normalize.Label(inc.Label)
		if norm == "" {
			continue
		}
		typ := m.resolveType(inc.Type)

		if existing := m.findMatch(norm, typ); existing != nil {
			merged := mergeNode(existing, inc, prov, now)
			if err := m.store.ReplaceNode(merged); err != nil {
				m.logger.Warn("failed to update merged node", "node", merged.ID, "error", err)
				continue
			}
			labelIndex[norm] = merged.ID
			diff.ModifiedNodes = append(diff.ModifiedNodes, merged.ID)
			continue
		}

		node := &types.Node{
			ID:         graph.NodeID(typ, inc.Label),
			Label:      strings.TrimSpace(inc.Label),
			Type:       typ,
			Weight:     1,
			FirstSeen:  now,
			LastSeen:   now,
			Confidence: inc.Confidence,
			Salience:   inc.Salience,
			Attributes: inc.Attributes,
			Sources:    []types.Provenance{prov},
		}
		if err := m.store.InsertNode(node); err != nil {
			m.logger.Warn("failed to insert extracted node", "label", inc.Label, "error", err)
			continue
		}
		labelIndex[norm] = node.ID
		diff.AddedNodes = append(diff.AddedNodes, node.ID)
	}

	for _, inc := range batch.Edges {
		srcID, srcOK := m.resolveEndpoint(inc.SourceLabel, labelIndex)
		tgtID, tgtOK := m.resolveEndpoint(inc.TargetLabel, labelIndex)
		if !srcOK || !tgtOK || srcID == tgtID {
			diff.DroppedEdges++
			m.logger.Warn("dropping edge with unresolvable endpoints",
				"source", inc.SourceLabel, "target", inc.TargetLabel, "relation", inc.Type)
			continue
		}

		id := graph.EdgeID(srcID, tgtID, inc.Type)
		if existing, ok := m.store.Edge(id); ok {
			updated := mergeEdge(existing, inc, prov, now)
			if err := m.store.PutEdge(updated); err != nil {
				m.logger.Warn("failed to update merged edge", "edge", id, "error", err)
				continue
			}
			diff.ModifiedEdges = append(diff.ModifiedEdges, id)
			continue
		}

		edge := &types.Edge{
			ID:         id,
			Source:     srcID,
			Target:     tgtID,
			Weight:     maxInt(inc.Weight, 1),
			Relation:   inc.Type,
			Confidence: inc.Confidence,
			Evidence:   inc.Evidence,
			Sources:    []types.Provenance{prov},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := m.store.PutEdge(edge); err != nil {
			m.logger.Warn("failed to insert extracted edge", "edge", id, "error", err)
			continue
		}
		diff.AddedEdges = append(diff.AddedEdges, id)
	}

	return diff, nil
}

// findMatch searches existing nodes of the same type for a label match:
// normalized equality, or containment between whitespace-delimited forms
// combined with a Levenshtein ratio above the threshold.
func (m *Merger) findMatch(norm string, typ types.NodeType) *types.Node {
	for _, node := range m.store.Nodes() {
		if node.Type != typ {
			continue
		}
		candidate := normalize.Label(node.Label)
		if candidate == norm {
			return node
		}
		if containsTokens(candidate, norm) && normalize.Ratio(candidate, norm) > SimilarityThreshold {
			return node
		}
	}
	return nil
}

// containsTokens reports whether one label is a whitespace-delimited
// substring or prefix of the other.
func containsTokens(a, b string) bool {
	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if strings.HasPrefix(longer, shorter+" ") || strings.HasSuffix(longer, " "+shorter) {
		return true
	}
	return strings.Contains(longer, " "+shorter+" ")
}

func mergeNode(existing *types.Node, inc types.ExtractedNode, prov types.Provenance, now time.Time) *types.Node {
	merged := existing

	if merged.Attributes == nil && inc.Attributes != nil {
		merged.Attributes = make(map[string]interface{}, len(inc.Attributes))
	}
	for k, v := range inc.Attributes {
		merged.Attributes[k] = v
	}

	weight := len(merged.Sources)
	if weight < 1 {
		weight = 1
	}
	merged.Confidence = (merged.Confidence*float64(weight) + inc.Confidence) / float64(weight+1)
	if inc.Salience > merged.Salience {
		merged.Salience = inc.Salience
	}
	merged.Sources = append(merged.Sources, prov)
	merged.Weight++
	merged.LastSeen = now
	if merged.FirstSeen.After(now) {
		merged.FirstSeen = now
	}
	return merged
}

func mergeEdge(existing *types.Edge, inc types.ExtractedEdge, prov types.Provenance, now time.Time) *types.Edge {
	updated := existing
	if inc.Weight > updated.Weight {
		updated.Weight = inc.Weight
	}
	updated.Confidence = (updated.Confidence + inc.Confidence) / 2
	updated.Evidence = unionStrings(updated.Evidence, inc.Evidence)
	updated.Sources = append(updated.Sources, prov)
	updated.UpdatedAt = now
	return updated
}

// resolveEndpoint maps an edge endpoint reference to a node id: exact node
// id first, then the batch's own label index, then exact label match over
// the store.
func (m *Merger) resolveEndpoint(ref string, labelIndex map[string]string) (string, bool) {
	if _, ok := m.store.Node(ref); ok {
		return ref, true
	}
	norm := normalize.Label(ref)
	if id, ok := labelIndex[norm]; ok {
		return id, true
	}
	for _, node := range m.store.Nodes() {
		if normalize.Label(node.Label) == norm {
			return node.ID, true
		}
	}
	return "", false
}

func provenanceFor(src types.SourceInfo, now time.Time) types.Provenance {
	kind := src.Kind
	if kind == "" {
		kind = "extraction"
	}
	id := src.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := src.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return types.Provenance{Kind: kind, OriginID: id, Timestamp: ts}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
