package merge_test

import (
	"testing"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/merge"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() *types.ExtractionResult {
	return &types.ExtractionResult{
		Nodes: []types.ExtractedNode{
			{Label: "Chris Li", Type: "person", Confidence: 0.9, Salience: 0.8},
			{Label: "Machine Learning", Type: "topic", Confidence: 0.7, Salience: 0.5,
				Attributes: map[string]interface{}{"domain": "cs"}},
			{Label: "Atlas Project", Type: "project", Confidence: 0.8, Salience: 0.6},
		},
		Edges: []types.ExtractedEdge{
			{SourceLabel: "Chris Li", TargetLabel: "Atlas Project", Type: "works_on",
				Weight: 2, Confidence: 0.8, Evidence: []string{"chris is leading atlas"}},
			{SourceLabel: "Chris Li", TargetLabel: "Machine Learning", Type: "interested_in",
				Weight: 1, Confidence: 0.6},
		},
		Source: types.SourceInfo{Kind: "document", ID: "doc-1"},
	}
}

func TestMergeFreshBatch(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	diff, err := m.Merge(sampleBatch(), now)
	require.NoError(t, err)

	assert.Len(t, diff.AddedNodes, 3)
	assert.Empty(t, diff.ModifiedNodes)
	assert.Len(t, diff.AddedEdges, 2)
	assert.Zero(t, diff.DroppedEdges)
	assert.Equal(t, 3, s.Stats().NodeCount)
	assert.Equal(t, 2, s.Stats().EdgeCount)

	nodes := s.Search("chris", types.PersonNodeType, 1)
	require.Len(t, nodes, 1)
	assert.Equal(t, 0.9, nodes[0].Confidence)
	require.Len(t, nodes[0].Sources, 1)
	assert.Equal(t, "doc-1", nodes[0].Sources[0].OriginID)
}

func TestMergeIdempotent(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	_, err := m.Merge(sampleBatch(), now)
	require.NoError(t, err)
	statsAfterFirst := s.Stats()

	diff, err := m.Merge(sampleBatch(), now.Add(time.Minute))
	require.NoError(t, err)

	assert.Empty(t, diff.AddedNodes, "re-merging an identical batch creates no nodes")
	assert.Len(t, diff.ModifiedNodes, 3)
	assert.Empty(t, diff.AddedEdges, "re-merging an identical batch creates no edges")
	assert.Len(t, diff.ModifiedEdges, 2)

	statsAfterSecond := s.Stats()
	assert.Equal(t, statsAfterFirst.NodeCount, statsAfterSecond.NodeCount)
	assert.Equal(t, statsAfterFirst.EdgeCount, statsAfterSecond.EdgeCount)

	// The edge weight is the max across passes, not the sum.
	edges := s.Edges()
	for _, e := range edges {
		assert.LessOrEqual(t, e.Weight, 2)
	}
}

func TestMergeSimilarLabelFoldsIn(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	_, err := m.Merge(&types.ExtractionResult{Nodes: []types.ExtractedNode{
		{Label: "Deep Learning 101", Type: "topic", Confidence: 0.6, Salience: 0.4},
	}}, now)
	require.NoError(t, err)

	// "Deep Learning" is a token-prefix of the existing label with a
	// similarity ratio above the threshold, so it merges instead of forking.
	diff, err := m.Merge(&types.ExtractionResult{Nodes: []types.ExtractedNode{
		{Label: "Deep Learning", Type: "topic", Confidence: 0.8, Salience: 0.9,
			Attributes: map[string]interface{}{"level": "intro"}},
	}}, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Empty(t, diff.AddedNodes)
	require.Len(t, diff.ModifiedNodes, 1)
	assert.Equal(t, 1, s.Stats().NodeCount)

	node, ok := s.Node(diff.ModifiedNodes[0])
	require.True(t, ok)
	assert.Equal(t, 2, node.Weight)
	assert.Equal(t, 0.9, node.Salience, "salience is the max across merges")
	assert.InDelta(t, 0.7, node.Confidence, 0.001, "confidence is a source-weighted average")
	assert.Equal(t, "intro", node.Attributes["level"], "incoming attributes overwrite on collision")
}

func TestMergeSameLabelDifferentTypeStaysDistinct(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	_, err := m.Merge(&types.ExtractionResult{Nodes: []types.ExtractedNode{
		{Label: "Mercury", Type: "project", Confidence: 0.8},
		{Label: "Mercury", Type: "topic", Confidence: 0.8},
	}}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Stats().NodeCount, "batch merge only folds within the same type")
}

func TestMergeDropsUnresolvableEdges(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	batch := &types.ExtractionResult{
		Nodes: []types.ExtractedNode{
			{Label: "Chris Li", Type: "person", Confidence: 0.9},
		},
		Edges: []types.ExtractedEdge{
			{SourceLabel: "Chris Li", TargetLabel: "Nobody Mentioned", Type: "knows", Weight: 1},
			{SourceLabel: "Chris Li", TargetLabel: "Chris Li", Type: "knows", Weight: 1},
		},
	}

	diff, err := m.Merge(batch, now)
	require.NoError(t, err)
	assert.Len(t, diff.AddedNodes, 1)
	assert.Empty(t, diff.AddedEdges)
	assert.Equal(t, 2, diff.DroppedEdges, "unresolvable and self edges are dropped, batch still applies")
}

func TestMergeEndpointResolutionByExistingLabel(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	now := time.Now()

	_, _, err := s.UpsertNode("Gardening", types.TopicNodeType, "", now)
	require.NoError(t, err)

	batch := &types.ExtractionResult{
		Nodes: []types.ExtractedNode{{Label: "Chris Li", Type: "person", Confidence: 0.9}},
		Edges: []types.ExtractedEdge{
			{SourceLabel: "Chris Li", TargetLabel: "Gardening", Type: "enjoys", Weight: 1, Confidence: 0.7},
		},
	}

	diff, err := m.Merge(batch, now)
	require.NoError(t, err)
	assert.Len(t, diff.AddedEdges, 1, "endpoints resolve against pre-existing nodes by exact label")
	assert.Zero(t, diff.DroppedEdges)
}

func TestMergeNilBatch(t *testing.T) {
	s := graph.NewStore(nil)
	m := merge.NewMerger(s, nil, nil)
	diff, err := m.Merge(nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, diff.AddedNodes)
}
