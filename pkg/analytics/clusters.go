// Package analytics provides derived, read-only computations over a graph
// snapshot: connected-component clustering, iterative centrality scoring,
// contradiction detection, and coverage-gap detection.
package analytics

import (
	"sort"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Cluster is a connected component of the graph.
type Cluster struct {
	Label     string           `json:"label"`
	NodeIDs   []string         `json:"node_ids"`
	Coherence float64          `json:"coherence"`
	Themes    []types.NodeType `json:"themes"`
}

// Clusters partitions the graph into connected components via breadth-first
// traversal. Each component is labeled by its highest-salience member (ties
// break toward weight, then id); coherence is actual internal edges over the
// theoretical pairwise maximum; themes are the top-3 node types by frequency.
func Clusters(nodes []*types.Node, edges []*types.Edge) []Cluster {
	byID := make(map[string]*types.Node, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		adjacency[e.Target] = append(adjacency[e.Target], e.Source)
	}

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	var clusters []Cluster

	for _, start := range ids {
		if visited[start] {
			continue
		}
		component := bfs(start, adjacency, visited)
		clusters = append(clusters, buildCluster(component, byID, edges))
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].NodeIDs) != len(clusters[j].NodeIDs) {
			return len(clusters[i].NodeIDs) > len(clusters[j].NodeIDs)
		}
		return clusters[i].Label < clusters[j].Label
	})
	return clusters
}

func bfs(start string, adjacency map[string][]string, visited map[string]bool) []string {
	queue := []string{start}
	visited[start] = true
	var component []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		component = append(component, id)
		for _, next := range adjacency[id] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return component
}

func buildCluster(component []string, byID map[string]*types.Node, edges []*types.Edge) Cluster {
	sort.Strings(component)
	members := make(map[string]bool, len(component))
	for _, id := range component {
		members[id] = true
	}

	internal := 0
	for _, e := range edges {
		if members[e.Source] && members[e.Target] {
			internal++
		}
	}
	coherence := 0.0
	n := len(component)
	if n > 1 {
		coherence = float64(internal) / (float64(n*(n-1)) / 2)
	}

	var best *types.Node
	typeCounts := make(map[types.NodeType]int)
	for _, id := range component {
		node := byID[id]
		typeCounts[node.Type]++
		if best == nil ||
			node.Salience > best.Salience ||
			(node.Salience == best.Salience && node.Weight > best.Weight) ||
			(node.Salience == best.Salience && node.Weight == best.Weight && node.ID < best.ID) {
			best = node
		}
	}

	return Cluster{
		Label:     best.Label,
		NodeIDs:   component,
		Coherence: coherence,
		Themes:    topThemes(typeCounts, 3),
	}
}

func topThemes(counts map[types.NodeType]int, k int) []types.NodeType {
	themes := make([]types.NodeType, 0, len(counts))
	for t := range counts {
		themes = append(themes, t)
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return themes[i] < themes[j]
	})
	if len(themes) > k {
		themes = themes[:k]
	}
	return themes
}
