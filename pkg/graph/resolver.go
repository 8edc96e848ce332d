package graph

import (
	"strings"

	"github.com/lifegraph-ai/lifegraph/pkg/normalize"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Match rule scores. An exact same-type hit dominates; substring hits are
// boosted by the matched length so longer overlaps win over shorter ones.
const (
	sameTypeScore     = 1000
	substringLenBoost = 10
	minSubstringLen   = 4
)

// dedupGroup maps a node type to its deduplication pool. People and apps only
// dedupe against their own kind; topical entities (place, topic, project,
// content, goal) share one pool because they are often confused for each
// other. Everything else stays in a pool of its own type.
func dedupGroup(typ types.NodeType) string {
	switch typ {
	case types.PersonNodeType:
		return "person"
	case types.AppNodeType:
		return "app"
	case types.PlaceNodeType, types.TopicNodeType, types.ProjectNodeType,
		types.ContentNodeType, types.GoalNodeType:
		return "general"
	default:
		return string(typ)
	}
}

// Resolve searches for an existing node representing the same real-world
// entity as (label, typ). Returns the canonical node id, or false when the
// caller should create a new node.
//
// This is a greedy, single-pass heuristic: whichever entity was inserted
// first becomes canonical for future aliases. Ties break toward the earlier
// node so repeated runs over the same graph resolve identically.
func (s *Store) Resolve(label string, typ types.NodeType) (string, bool) {
	norm := normalize.Label(label)
	if len(norm) < normalize.MinTokenLength || normalize.IsStopToken(norm) || normalize.LooksLikePath(label) {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(norm, typ)
}

func (s *Store) resolveLocked(norm string, typ types.NodeType) (string, bool) {
	group := dedupGroup(typ)
	query := normalize.Underscores(norm)

	bestID := ""
	bestScore := 0
	var bestFirst int64

	for id, node := range s.nodes {
		if dedupGroup(node.Type) != group {
			continue
		}
		candidate := normalize.Underscores(normalize.Label(node.Label))

		score := 0
		switch {
		case candidate == query:
			score = node.Weight
			if node.Type == typ {
				score += sameTypeScore
			}
		default:
			longer, shorter := candidate, query
			if len(shorter) > len(longer) {
				longer, shorter = shorter, longer
			}
			matched := strings.HasPrefix(longer, shorter) ||
				normalize.ContainsWholeWord(longer, shorter) ||
				(len(shorter) >= minSubstringLen && strings.Contains(longer, shorter))
			if !matched {
				continue
			}
			score = substringLenBoost*len(shorter) + node.Weight
			if node.Type == typ {
				score += sameTypeScore
			}
		}

		if score <= 0 {
			continue
		}
		first := node.FirstSeen.UnixNano()
		if score > bestScore || (score == bestScore && (bestID == "" || first < bestFirst)) {
			bestID = id
			bestScore = score
			bestFirst = first
		}
	}

	return bestID, bestID != ""
}
