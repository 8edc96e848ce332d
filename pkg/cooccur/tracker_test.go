package cooccur_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/cooccur"
	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*graph.Store, *cooccur.Tracker, string, string) {
	t.Helper()
	s := graph.NewStore(nil)
	now := time.Now()
	a, _, err := s.UpsertNode("Alice", types.PersonNodeType, "", now)
	require.NoError(t, err)
	b, _, err := s.UpsertNode("Atlas Project", types.ProjectNodeType, "", now)
	require.NoError(t, err)
	return s, cooccur.NewTracker(s, cooccur.Config{}, nil), a.ID, b.ID
}

func TestContextKey(t *testing.T) {
	assert.Equal(t, cooccur.ContextKey("AI: Slack"), cooccur.ContextKey("slack"))
	assert.Equal(t, cooccur.ContextKey("chrome timestamp:12345"), cooccur.ContextKey("Chrome timestamp:99999"))
	long := cooccur.ContextKey(string(make([]byte, 300)))
	assert.LessOrEqual(t, len(long), 100)
}

func TestSingleCoOccurrenceStaysPending(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(time.Second))

	assert.Equal(t, 0, s.Stats().EdgeCount, "one co-occurrence must not create an edge")
	assert.Equal(t, 1, tr.PendingCount())
}

func TestRepeatedCoOccurrencePromotesEdge(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(time.Second))
	tr.Observe(a, "slack", now.Add(2*time.Second))

	require.Equal(t, 1, s.Stats().EdgeCount)
	edge, ok := s.EdgeBetween(a, b)
	require.True(t, ok)
	assert.GreaterOrEqual(t, edge.Weight, 2)
	assert.Empty(t, edge.Relation, "co-occurrence edges carry no semantic relation")
	assert.Equal(t, 0, tr.PendingCount(), "promoted pairs leave the pending map")
}

func TestExistingEdgeStrengthenedDirectly(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	_, err := s.UpsertEdge(a, b, 3, "", now)
	require.NoError(t, err)

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(time.Second))

	edge, ok := s.EdgeBetween(a, b)
	require.True(t, ok)
	assert.Equal(t, 4, edge.Weight)
	assert.Equal(t, 0, tr.PendingCount())
}

func TestObservationsOutsideWindowIgnored(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(31*time.Second))

	assert.Equal(t, 0, s.Stats().EdgeCount)
	assert.Equal(t, 0, tr.PendingCount())
}

func TestDifferentContextKeysDoNotPair(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "chrome", now.Add(time.Second))

	assert.Equal(t, 0, s.Stats().EdgeCount)
	assert.Equal(t, 0, tr.PendingCount())
}

func TestStalePendingExpired(t *testing.T) {
	s, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(time.Second))
	require.Equal(t, 1, tr.PendingCount())

	// A later, unrelated observation triggers the lazy sweep.
	tr.Observe(a, "chrome", now.Add(25*time.Hour))

	assert.Equal(t, 0, tr.PendingCount(), "pending pairs older than the TTL are discarded")
	assert.Equal(t, 0, s.Stats().EdgeCount)
}

func TestRingEviction(t *testing.T) {
	s := graph.NewStore(nil)
	now := time.Now()
	tr := cooccur.NewTracker(s, cooccur.Config{RingCapacity: 3, Window: time.Hour}, nil)

	var ids []string
	for i := 0; i < 5; i++ {
		n, _, err := s.UpsertNode(fmt.Sprintf("Topic Number %d", i), types.TopicNodeType, "", now)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	// Fill the ring past capacity with distinct contexts so nothing pairs.
	for i, id := range ids[:4] {
		tr.Observe(id, fmt.Sprintf("ctx-%d", i), now.Add(time.Duration(i)*time.Second))
	}

	// ids[0] was evicted: observing in its context pairs nothing.
	tr.Observe(ids[4], "ctx-0", now.Add(10*time.Second))
	assert.Equal(t, 0, tr.PendingCount())

	// ids[3] is still in the ring.
	tr.Observe(ids[4], "ctx-3", now.Add(11*time.Second))
	assert.Equal(t, 1, tr.PendingCount())
}

func TestPendingSnapshotRoundTrip(t *testing.T) {
	_, tr, a, b := newFixture(t)
	now := time.Now()

	tr.Observe(a, "slack", now)
	tr.Observe(b, "slack", now.Add(time.Second))

	pending := tr.Pending()
	require.Len(t, pending, 1)

	tr.Reset()
	assert.Equal(t, 0, tr.PendingCount())

	tr.RestorePending(pending)
	assert.Equal(t, 1, tr.PendingCount())
}
