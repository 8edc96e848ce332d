package lifegraph

import (
	"github.com/lifegraph-ai/lifegraph/pkg/analytics"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Node returns a copy of the node with the given id.
func (e *Engine) Node(id string) (*types.Node, bool) {
	return e.store.Node(id)
}

// Search returns nodes whose normalized label contains the query, optionally
// filtered by type, heaviest first.
func (e *Engine) Search(query string, typ types.NodeType, limit int) []*types.Node {
	return e.store.Search(query, typ, limit)
}

// Stats summarizes the current graph.
func (e *Engine) Stats() types.GraphStats {
	stats := e.store.Stats()
	stats.PendingCount = e.tracker.PendingCount()
	return stats
}

// Clusters computes the connected components of the current graph.
func (e *Engine) Clusters() []analytics.Cluster {
	return analytics.Clusters(e.store.Nodes(), e.store.Edges())
}

// Centrality returns the top-K nodes by salience-boosted PageRank.
func (e *Engine) Centrality(topK int) []analytics.RankedNode {
	return analytics.Centrality(e.store.Nodes(), e.store.Edges(), topK)
}

// Contradictions reports pairs of opposed assertions made by the same node.
func (e *Engine) Contradictions() []analytics.Contradiction {
	return analytics.Contradictions(e.store.Nodes(), e.store.Edges())
}

// Gaps reports thinly covered areas and isolated nodes.
func (e *Engine) Gaps() ([]analytics.Gap, []string) {
	return analytics.Gaps(e.store.Nodes(), e.store.Edges())
}
