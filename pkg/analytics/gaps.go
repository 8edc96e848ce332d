package analytics

import (
	"sort"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Gap coverage statuses.
const (
	GapMissing = "missing"
	GapLimited = "limited"
)

// limitedAreaThreshold is the node count below which an area counts as
// thinly covered rather than absent.
const limitedAreaThreshold = 3

// Gap describes an area of the graph with little or no coverage.
type Gap struct {
	Area      types.NodeType `json:"area"`
	Status    string         `json:"status"`
	NodeCount int            `json:"node_count"`
	Questions []string       `json:"questions"`
}

// importantAreas are node types whose absence suggests the graph is missing
// whole dimensions of its subject, in reporting order.
var importantAreas = []types.NodeType{
	types.GoalNodeType,
	types.BeliefNodeType,
	types.SkillNodeType,
	types.InterestNodeType,
	types.PersonNodeType,
}

var areaQuestions = map[types.NodeType][]string{
	types.GoalNodeType: {
		"What are you currently working toward?",
		"What would you like to achieve this year?",
	},
	types.BeliefNodeType: {
		"What principles guide your decisions?",
		"What strong opinions do you hold?",
	},
	types.SkillNodeType: {
		"What are you good at?",
		"What skills are you building right now?",
	},
	types.InterestNodeType: {
		"What do you enjoy outside of work?",
		"What topics do you keep coming back to?",
	},
	types.PersonNodeType: {
		"Who do you spend the most time with?",
		"Who do you collaborate with regularly?",
	},
}

// Gaps reports important areas that are missing or thinly covered, plus the
// ids of nodes with no edges at all.
func Gaps(nodes []*types.Node, edges []*types.Edge) ([]Gap, []string) {
	counts := make(map[types.NodeType]int)
	for _, n := range nodes {
		counts[n.Type]++
	}

	var gaps []Gap
	for _, area := range importantAreas {
		count := counts[area]
		switch {
		case count == 0:
			gaps = append(gaps, Gap{Area: area, Status: GapMissing, Questions: areaQuestions[area]})
		case count < limitedAreaThreshold:
			gaps = append(gaps, Gap{Area: area, Status: GapLimited, NodeCount: count, Questions: areaQuestions[area]})
		}
	}

	connected := make(map[string]bool, len(nodes))
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	var isolated []string
	for _, n := range nodes {
		if !connected[n.ID] {
			isolated = append(isolated, n.ID)
		}
	}
	sort.Strings(isolated)

	return gaps, isolated
}
