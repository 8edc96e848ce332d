package analytics

import (
	"sort"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

const (
	pageRankIterations = 20
	dampingFactor      = 0.85
)

// RankedNode is a node with its centrality score.
type RankedNode struct {
	NodeID string  `json:"node_id"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
}

// Centrality scores nodes by a fixed-iteration PageRank over the undirected
// graph, then boosts each score by (1 + salience) so that nodes the extractor
// marked as prominent outrank purely structural hubs. Returns the top K nodes
// by score; K <= 0 returns all of them.
func Centrality(nodes []*types.Node, edges []*types.Edge, topK int) []RankedNode {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[string]*types.Node, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	neighbors := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		neighbors[e.Source] = append(neighbors[e.Source], e.Target)
		neighbors[e.Target] = append(neighbors[e.Target], e.Source)
	}

	n := float64(len(ids))
	scores := make(map[string]float64, len(ids))
	for _, id := range ids {
		scores[id] = 1.0 / n
	}

	for i := 0; i < pageRankIterations; i++ {
		next := make(map[string]float64, len(ids))
		for _, id := range ids {
			next[id] = (1 - dampingFactor) / n
		}
		for _, id := range ids {
			out := neighbors[id]
			if len(out) == 0 {
				continue
			}
			share := dampingFactor * scores[id] / float64(len(out))
			for _, nb := range out {
				next[nb] += share
			}
		}
		scores = next
	}

	ranked := make([]RankedNode, 0, len(ids))
	for _, id := range ids {
		node := byID[id]
		ranked = append(ranked, RankedNode{
			NodeID: id,
			Label:  node.Label,
			Score:  scores[id] * (1 + node.Salience),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].NodeID < ranked[j].NodeID
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
