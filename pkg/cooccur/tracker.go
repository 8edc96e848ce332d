// Package cooccur tracks temporal co-occurrence of entities and promotes
// repeatedly co-occurring pairs into graph edges. A pair seen together once
// stays pending; only reinforcement within the retention window commits an
// edge, trading a few missed edges for precision.
package cooccur

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/graph"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Defaults for the sliding-window promotion scheme.
const (
	DefaultRingCapacity       = 50
	DefaultWindow             = 30 * time.Second
	DefaultPromotionThreshold = 2
	DefaultPendingTTL         = 24 * time.Hour

	maxContextKeyLength = 100
)

var timestampMarkerRe = regexp.MustCompile(`timestamp:\d+`)

// ContextKey collapses near-identical context hints to one comparison key:
// strips "ai:" and "timestamp:NNN" markers, lowercases, trims to 100 chars.
func ContextKey(hint string) string {
	key := strings.TrimSpace(strings.ToLower(hint))
	key = strings.TrimPrefix(key, "ai:")
	key = timestampMarkerRe.ReplaceAllString(key, "")
	key = strings.TrimSpace(key)
	if len(key) > maxContextKeyLength {
		key = key[:maxContextKeyLength]
	}
	return key
}

type observation struct {
	entityID   string
	contextKey string
	at         time.Time
}

// Config tunes the tracker. Zero values fall back to the defaults above.
type Config struct {
	RingCapacity       int
	Window             time.Duration
	PromotionThreshold int
	PendingTTL         time.Duration
}

func (c Config) withDefaults() Config {
	if c.RingCapacity <= 0 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.PromotionThreshold <= 0 {
		c.PromotionThreshold = DefaultPromotionThreshold
	}
	if c.PendingTTL <= 0 {
		c.PendingTTL = DefaultPendingTTL
	}
	return c
}

// Tracker keeps a bounded ring of recent observations plus a map of pending
// (unconfirmed) pairs. It mutates the graph only through the store's API.
type Tracker struct {
	mu      sync.Mutex
	store   *graph.Store
	cfg     Config
	recent  []observation
	pending map[string]*types.PendingEdge
	logger  *slog.Logger
}

// NewTracker creates a co-occurrence tracker writing through the given store.
func NewTracker(store *graph.Store, cfg Config, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:   store,
		cfg:     cfg.withDefaults(),
		pending: make(map[string]*types.PendingEdge),
		logger:  logger,
	}
}

// Observe records that an entity was seen in a context at a point in time.
// Entities sharing a context key within the window accumulate pending counts;
// at the promotion threshold the pair becomes a real edge.
func (t *Tracker) Observe(entityID, contextHint string, at time.Time) {
	key := ContextKey(contextHint)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.expireStaleLocked(at)

	for _, obs := range t.recent {
		if obs.entityID == entityID || obs.contextKey != key {
			continue
		}
		if at.Sub(obs.at) > t.cfg.Window {
			continue
		}
		t.reinforcePairLocked(entityID, obs.entityID, at)
	}

	t.recent = append(t.recent, observation{entityID: entityID, contextKey: key, at: at})
	if len(t.recent) > t.cfg.RingCapacity {
		t.recent = t.recent[len(t.recent)-t.cfg.RingCapacity:]
	}
}

func (t *Tracker) reinforcePairLocked(a, b string, at time.Time) {
	if _, exists := t.store.EdgeBetween(a, b); exists {
		if _, err := t.store.UpsertEdge(a, b, 1, "", at); err != nil {
			t.logger.Warn("failed to strengthen co-occurrence edge", "a", a, "b", b, "error", err)
		}
		return
	}

	key := pairKey(a, b)
	p := t.pending[key]
	if p == nil {
		p = &types.PendingEdge{}
		t.pending[key] = p
	}
	p.Count++
	p.LastSeen = at

	if p.Count < t.cfg.PromotionThreshold {
		return
	}
	if _, err := t.store.UpsertEdge(a, b, p.Count, "", at); err != nil {
		t.logger.Warn("failed to promote co-occurrence edge", "a", a, "b", b, "error", err)
		return
	}
	delete(t.pending, key)
	t.logger.Debug("promoted co-occurrence pair", "a", a, "b", b, "count", p.Count)
}

// expireStaleLocked lazily discards pending pairs that never reached the
// promotion threshold within the TTL.
func (t *Tracker) expireStaleLocked(now time.Time) {
	for key, p := range t.pending {
		if now.Sub(p.LastSeen) > t.cfg.PendingTTL {
			delete(t.pending, key)
		}
	}
}

// PendingCount returns the number of unconfirmed pairs.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Pending returns a copy of the pending pair state for snapshotting.
func (t *Tracker) Pending() map[string]types.PendingEdge {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]types.PendingEdge, len(t.pending))
	for k, p := range t.pending {
		out[k] = *p
	}
	return out
}

// RestorePending replaces the pending pair state from a snapshot.
func (t *Tracker) RestorePending(pending map[string]types.PendingEdge) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[string]*types.PendingEdge, len(pending))
	for k, p := range pending {
		cp := p
		t.pending[k] = &cp
	}
}

// Reset drops all transient tracker state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = nil
	t.pending = make(map[string]*types.PendingEdge)
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
