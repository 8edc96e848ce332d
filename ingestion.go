package lifegraph

import (
	"context"
	"errors"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Observe records a single entity sighting in streaming mode: the label is
// canonicalized into the store and fed to the co-occurrence tracker so that
// entities repeatedly seen together in the same context grow edges. Noise
// labels (stop tokens, paths, too-short strings) are rejected and return
// (nil, false).
func (e *Engine) Observe(label string, typ types.NodeType, contextHint string, at time.Time) (*types.Node, bool) {
	node, _, err := e.store.UpsertNode(label, typ, contextHint, at)
	if err != nil {
		if !errors.Is(err, graph.ErrRejectedLabel) {
			e.logger.Warn("failed to upsert observation", "label", label, "error", err)
		}
		return nil, false
	}
	e.tracker.Observe(node.ID, contextHint, at)
	return node, true
}

// IngestText runs the extraction collaborator over free text and merges the
// resulting batch. Extraction failures (timeout, malformed output, open
// circuit breaker) are treated as "no update": an empty diff is returned
// along with the error, and the graph is untouched.
func (e *Engine) IngestText(ctx context.Context, text string, source types.SourceInfo) (*types.MergeDiff, error) {
	batch, err := e.extractor.Extract(ctx, text, source)
	if err != nil {
		e.logger.Warn("extraction failed, skipping text", "source", source.ID, "error", err)
		return &types.MergeDiff{}, err
	}
	return e.IngestBatch(ctx, batch)
}

// IngestBatch merges a pre-built extraction batch into the graph. Relation
// names are resolved through the type registry; new ones are registered. The
// batch's insights accumulate on the engine, and a consolidation pass is
// scheduled when the merge registered new types.
func (e *Engine) IngestBatch(ctx context.Context, batch *types.ExtractionResult) (*types.MergeDiff, error) {
	if batch == nil || batch.Empty() {
		return &types.MergeDiff{}, nil
	}
	if err := ctx.Err(); err != nil {
		return &types.MergeDiff{}, err
	}

	typesBefore := e.registry.Summary().NodeTypeCount

	// Resolve relation names into a copy so the caller's batch stays intact.
	resolved := *batch
	resolved.Edges = make([]types.ExtractedEdge, len(batch.Edges))
	copy(resolved.Edges, batch.Edges)
	for i := range resolved.Edges {
		resolved.Edges[i].Type = e.registry.ResolveEdgeType(resolved.Edges[i].Type)
	}

	diff, err := e.merger.Merge(&resolved, time.Now())
	if err != nil {
		return diff, err
	}
	e.addInsights(batch.Insights)

	if e.registry.Summary().NodeTypeCount > typesBefore {
		e.ScheduleConsolidation()
	}

	e.logger.Info("merged extraction batch",
		"source", batch.Source.ID,
		"added_nodes", len(diff.AddedNodes),
		"modified_nodes", len(diff.ModifiedNodes),
		"added_edges", len(diff.AddedEdges),
		"dropped_edges", diff.DroppedEdges)
	return diff, nil
}
