package analytics

import (
	"sort"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Contradiction is a pair of edges from the same node whose relations pull
// in opposite directions.
type Contradiction struct {
	NodeID    string `json:"node_id"`
	NodeLabel string `json:"node_label"`
	RelationA string `json:"relation_a"`
	TargetA   string `json:"target_a"`
	RelationB string `json:"relation_b"`
	TargetB   string `json:"target_b"`
}

// opposedRelations pairs relations that conflict when asserted by the same
// node about the same target. Both orderings are present.
var opposedRelations = map[string]string{
	"prefers":  "avoids",
	"avoids":   "prefers",
	"likes":    "dislikes",
	"dislikes": "likes",
	"enjoys":   "avoids",
	"believes": "doubts",
	"doubts":   "believes",
}

// Contradictions scans every pair of relation-bearing edges sharing a source
// node. A pair is flagged when the relations are opposed on the same target,
// or when a node both believes something and avoids a belief-typed node.
func Contradictions(nodes []*types.Node, edges []*types.Edge) []Contradiction {
	byID := make(map[string]*types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	bySource := make(map[string][]*types.Edge)
	for _, e := range edges {
		if e.Relation == "" {
			continue
		}
		bySource[e.Source] = append(bySource[e.Source], e)
	}

	sources := make([]string, 0, len(bySource))
	for id := range bySource {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	var found []Contradiction
	for _, src := range sources {
		node := byID[src]
		if node == nil {
			continue
		}
		outgoing := bySource[src]
		sort.Slice(outgoing, func(i, j int) bool { return outgoing[i].ID < outgoing[j].ID })

		for i := 0; i < len(outgoing); i++ {
			for j := i + 1; j < len(outgoing); j++ {
				a, b := outgoing[i], outgoing[j]
				if !conflicts(a, b, byID) {
					continue
				}
				found = append(found, Contradiction{
					NodeID:    src,
					NodeLabel: node.Label,
					RelationA: a.Relation,
					TargetA:   targetLabel(a, byID),
					RelationB: b.Relation,
					TargetB:   targetLabel(b, byID),
				})
			}
		}
	}
	return found
}

func conflicts(a, b *types.Edge, byID map[string]*types.Node) bool {
	// Opposition is checked both ways: the table carries asymmetric entries
	// (enjoys -> avoids) and edge ordering is arbitrary.
	if a.Target == b.Target &&
		(opposedRelations[a.Relation] == b.Relation || opposedRelations[b.Relation] == a.Relation) {
		return true
	}
	// Holding a belief while avoiding a belief node is a conflict even when
	// the edges point at different nodes.
	if a.Relation == "believes" && b.Relation == "avoids" && isBelief(b.Target, byID) {
		return true
	}
	if b.Relation == "believes" && a.Relation == "avoids" && isBelief(a.Target, byID) {
		return true
	}
	return false
}

func isBelief(id string, byID map[string]*types.Node) bool {
	n := byID[id]
	return n != nil && n.Type == types.BeliefNodeType
}

func targetLabel(e *types.Edge, byID map[string]*types.Node) string {
	if n := byID[e.Target]; n != nil {
		return n.Label
	}
	return e.Target
}
