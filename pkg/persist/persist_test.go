package persist_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/persist"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *types.Snapshot {
	now := time.Now().UTC().Truncate(time.Second)
	return &types.Snapshot{
		Nodes: map[string]*types.Node{
			"person:chris-li": {
				ID: "person:chris-li", Label: "Chris Li", Type: types.PersonNodeType,
				Weight: 3, FirstSeen: now, LastSeen: now,
			},
		},
		Edges: map[string]*types.Edge{
			"abc123": {
				ID: "abc123", Source: "person:chris-li", Target: "topic:go",
				Weight: 2, CreatedAt: now, UpdatedAt: now,
			},
		},
		Pending:  map[string]types.PendingEdge{"a|b": {Count: 1, LastSeen: now}},
		Insights: []string{"spends mornings in the editor"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph", "snapshot.json")

	s, err := persist.NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, persist.ErrNoSnapshot)

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, snap))
	assert.False(t, snap.SavedAt.IsZero(), "save stamps the snapshot")

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Nodes["person:chris-li"].Label, loaded.Nodes["person:chris-li"].Label)
	assert.Equal(t, 2, loaded.Edges["abc123"].Weight)
	assert.Equal(t, 1, loaded.Pending["a|b"].Count)
	assert.Equal(t, snap.Insights, loaded.Insights)
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.json")

	s, err := persist.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	second := sampleSnapshot()
	second.Insights = append(second.Insights, "new insight")
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Insights, 2, "later saves replace the snapshot wholesale")
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	s, err := persist.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, persist.ErrNoSnapshot)

	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded.Nodes, "person:chris-li")
	assert.Equal(t, 3, loaded.Nodes["person:chris-li"].Weight)
}

func TestOpenSelectsDriver(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := persist.Open(persist.DriverFile, filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &persist.FileStore{}, fileStore)
	fileStore.Close()

	_, err = persist.Open("cassandra", "")
	assert.Error(t, err)
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	s, err := persist.NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, sampleSnapshot()))
}
