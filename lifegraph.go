package lifegraph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/config"
	"github.com/lifegraph-ai/lifegraph/pkg/cooccur"
	"github.com/lifegraph-ai/lifegraph/pkg/extract"
	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/merge"
	"github.com/lifegraph-ai/lifegraph/pkg/persist"
	"github.com/lifegraph-ai/lifegraph/pkg/typereg"
)

// Engine owns the knowledge graph and its collaborators: the store, the
// co-occurrence tracker for streaming observations, the merge engine for
// extraction batches, the type registry, and the persistence backend.
type Engine struct {
	cfg *config.Config

	store     *graph.Store
	tracker   *cooccur.Tracker
	merger    *merge.Merger
	registry  *typereg.Registry
	extractor extract.Extractor
	persister persist.Store
	logger    *slog.Logger

	mu       sync.Mutex
	insights []string

	// Single-slot consolidation scheduling: a request either arms the timer
	// or is a no-op because one is already armed.
	consolidateTimer *time.Timer

	stopMaintenance chan struct{}
	startOnce       sync.Once
	maintenanceOnce sync.Once
	wg              sync.WaitGroup
}

// Options carries optional collaborator overrides. Zero values are replaced
// with implementations built from the config: an OpenAI extractor behind a
// circuit breaker, and the configured persistence driver.
type Options struct {
	Extractor extract.Extractor
	Persister persist.Store
	Logger    *slog.Logger
}

// New creates an engine from configuration, restoring any persisted snapshot
// and type registry. A persistence failure on load is non-fatal: the engine
// starts empty and logs the problem.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := graph.NewStore(logger)
	registry := typereg.NewRegistry(cfg.Persistence.TypeRegistryPath, logger)

	tracker := cooccur.NewTracker(store, cooccur.Config{
		RingCapacity:       cfg.Engine.RingCapacity,
		Window:             time.Duration(cfg.Engine.CoOccurrenceWindowSeconds) * time.Second,
		PromotionThreshold: cfg.Engine.PromotionThreshold,
		PendingTTL:         time.Duration(cfg.Engine.PendingTTLHours) * time.Hour,
	}, logger)

	merger := merge.NewMerger(store, registry.ResolveNodeType, logger)

	extractor := opts.Extractor
	if extractor == nil {
		extractor = buildExtractor(cfg, store, logger)
	}

	persister := opts.Persister
	if persister == nil {
		var err error
		persister, err = persist.Open(cfg.Persistence.Driver, cfg.Persistence.Path)
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:             cfg,
		store:           store,
		tracker:         tracker,
		merger:          merger,
		registry:        registry,
		extractor:       extractor,
		persister:       persister,
		logger:          logger,
		stopMaintenance: make(chan struct{}),
	}
	e.restore(context.Background())
	return e, nil
}

func buildExtractor(cfg *config.Config, store *graph.Store, logger *slog.Logger) extract.Extractor {
	if cfg.Extraction.Provider == "mock" || cfg.Extraction.APIKey == "" {
		logger.Info("no extraction endpoint configured, using offline extractor")
		return &extract.MockExtractor{}
	}

	var inner extract.Extractor = extract.NewOpenAIExtractor(extract.OpenAIConfig{
		APIKey:  cfg.Extraction.APIKey,
		BaseURL: cfg.Extraction.BaseURL,
		Model:   cfg.Extraction.Model,
		ContextProvider: func() []string {
			nodes := store.Nodes()
			labels := make([]string, 0, len(nodes))
			for _, n := range nodes {
				labels = append(labels, n.Label)
			}
			return labels
		},
	}, logger)

	if cfg.CircuitBreaker.Enabled {
		inner = extract.NewCircuitBreakerExtractor(inner, extract.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			IntervalSeconds:  cfg.CircuitBreaker.Interval,
			TimeoutSeconds:   cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, logger)
	}
	return inner
}

// restore loads the persisted snapshot into the store and tracker.
func (e *Engine) restore(ctx context.Context) {
	snap, err := e.persister.Load(ctx)
	if err != nil {
		if err != persist.ErrNoSnapshot {
			e.logger.Warn("failed to load snapshot, starting empty", "error", err)
		}
		return
	}
	e.store.Restore(snap)
	e.tracker.RestorePending(snap.Pending)

	e.mu.Lock()
	e.insights = append(e.insights[:0], snap.Insights...)
	e.mu.Unlock()

	e.logger.Info("restored graph snapshot",
		"nodes", len(snap.Nodes), "edges", len(snap.Edges), "saved_at", snap.SavedAt)
}

// Flush persists the current graph state and type registry. Persistence
// failures are logged and returned but never affect the in-memory graph.
func (e *Engine) Flush(ctx context.Context) error {
	snap := e.store.Snapshot()
	snap.Pending = e.tracker.Pending()
	snap.Insights = e.Insights()

	if err := e.persister.Save(ctx, snap); err != nil {
		e.logger.Error("failed to persist snapshot", "error", err)
		return err
	}
	if err := e.registry.Save(); err != nil {
		e.logger.Error("failed to persist type registry", "error", err)
		return err
	}
	return nil
}

// Close flushes state, stops maintenance, and releases the persistence
// backend.
func (e *Engine) Close(ctx context.Context) error {
	e.maintenanceOnce.Do(func() { close(e.stopMaintenance) })
	e.wg.Wait()

	e.mu.Lock()
	if e.consolidateTimer != nil {
		e.consolidateTimer.Stop()
		e.consolidateTimer = nil
	}
	e.mu.Unlock()

	flushErr := e.Flush(ctx)
	if err := e.persister.Close(); err != nil {
		return err
	}
	return flushErr
}

// Registry exposes the type registry for admin surfaces.
func (e *Engine) Registry() *typereg.Registry { return e.registry }

// Insights returns the accumulated free-text insights.
func (e *Engine) Insights() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.insights))
	copy(out, e.insights)
	return out
}

// maxInsights bounds the retained free-text insight list; oldest entries
// are evicted first.
const maxInsights = 200

func (e *Engine) addInsights(insights []string) {
	if len(insights) == 0 {
		return
	}
	e.mu.Lock()
	e.insights = append(e.insights, insights...)
	if len(e.insights) > maxInsights {
		e.insights = e.insights[len(e.insights)-maxInsights:]
	}
	e.mu.Unlock()
}
