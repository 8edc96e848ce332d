package graph_test

import (
	"testing"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliasWithinPersonGroup(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	chris := mustUpsert(t, s, "Chris", types.PersonNodeType, now)

	merged, created, err := s.UpsertNode("Chris Li", types.PersonNodeType, "", now)
	require.NoError(t, err)
	assert.False(t, created, "Chris Li should resolve to the earlier Chris node")
	assert.Equal(t, chris.ID, merged.ID)
	assert.Equal(t, 2, merged.Weight)
}

func TestResolveTypeMismatchStaysDistinct(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	mustUpsert(t, s, "Chris", types.PersonNodeType, now)

	// person and topic are in different dedup groups: no cross-dedup.
	_, created, err := s.UpsertNode("chris", types.TopicNodeType, "", now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, s.Stats().NodeCount)
}

func TestResolveCrossDedupPool(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	topic := mustUpsert(t, s, "Rust", types.TopicNodeType, now)

	// topic and project share the broad pool, so the project observation
	// reinforces the earlier topic node instead of forking.
	merged, created, err := s.UpsertNode("Rust", types.ProjectNodeType, "", now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, topic.ID, merged.ID)
	assert.Equal(t, types.TopicNodeType, merged.Type, "first insertion stays canonical")
}

func TestResolveUnderscoreEquivalence(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	ml := mustUpsert(t, s, "machine_learning", types.TopicNodeType, now)

	merged, created, err := s.UpsertNode("Machine Learning", types.TopicNodeType, "", now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ml.ID, merged.ID)
}

func TestResolvePrefersSameTypeExactOverSubstring(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	// Insert directly so both candidates coexist; UpsertNode would greedily
	// coalesce them inside the shared pool.
	planning := &types.Node{Label: "Go Conference Planning", Type: types.ProjectNodeType, Weight: 5, FirstSeen: now, LastSeen: now}
	exact := &types.Node{Label: "Go Conference", Type: types.TopicNodeType, Weight: 1, FirstSeen: now, LastSeen: now}
	require.NoError(t, s.InsertNode(planning))
	require.NoError(t, s.InsertNode(exact))

	id, ok := s.Resolve("Go Conference", types.TopicNodeType)
	require.True(t, ok)
	assert.Equal(t, graph.NodeID(types.TopicNodeType, "Go Conference"), id,
		"same-type exact match beats a heavier substring candidate")
}

func TestResolveGreedyFirstWins(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	first := mustUpsert(t, s, "Atlas", types.ProjectNodeType, now)
	mustUpsert(t, s, "Atlantis", types.ProjectNodeType, now.Add(time.Second))

	// The alias lands on whichever canonical node was inserted first when
	// scores tie; here the prefix rule only matches "Atlas".
	id, ok := s.Resolve("Atlas Project Notes", types.ProjectNodeType)
	require.True(t, ok)
	assert.Equal(t, first.ID, id)
}

func TestResolveRejectsNoise(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	mustUpsert(t, s, "Notes", types.ContentNodeType, now)

	_, ok := s.Resolve("x", types.ContentNodeType)
	assert.False(t, ok)
	_, ok = s.Resolve("untitled", types.ContentNodeType)
	assert.False(t, ok)
	_, ok = s.Resolve("notes.txt", types.ContentNodeType)
	assert.False(t, ok)
}

func TestResolveNoMatchReturnsFalse(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	mustUpsert(t, s, "Gardening", types.TopicNodeType, now)

	_, ok := s.Resolve("Woodworking", types.TopicNodeType)
	assert.False(t, ok)
}
