package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/normalize"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// ErrRejectedLabel is returned when a label fails the resolver's noise
// filters (too short, stop-listed, or path-like) and no node is created.
var ErrRejectedLabel = errors.New("label rejected by noise filters")

// Store owns the node and edge maps. All mutation goes through its API; read
// accessors return copies so no caller holds references into internal state.
// A single RWMutex serializes writers against readers (spec'd single-writer
// model: analytics reads run against a momentarily-paused store).
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*types.Node
	edges  map[string]*types.Edge
	logger *slog.Logger
}

// NewStore creates an empty graph store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		nodes:  make(map[string]*types.Node),
		edges:  make(map[string]*types.Edge),
		logger: logger,
	}
}

// NodeID derives the stable node id from (type, normalized label), so
// re-insertion of the same entity yields the same id.
func NodeID(typ types.NodeType, label string) string {
	norm := normalize.Label(label)
	return fmt.Sprintf("%s:%s", typ, strings.ReplaceAll(norm, " ", "-"))
}

// EdgeID derives a content-based edge id. Relation-less edges are undirected:
// endpoints are sorted so a pair maps to one key regardless of observation
// order. Relation edges keep their asserted direction.
func EdgeID(source, target, relation string) string {
	a, b := source, target
	if relation == "" && b < a {
		a, b = b, a
	}
	sum := sha256.Sum256([]byte(a + "|" + relation + "|" + b))
	return hex.EncodeToString(sum[:8])
}

// UpsertNode resolves the label against the existing graph and either
// reinforces the canonical node (weight, lastSeen, context) or creates a new
// one with weight 1. Returns the node and whether it was created.
func (s *Store) UpsertNode(label string, typ types.NodeType, context string, at time.Time) (*types.Node, bool, error) {
	norm := normalize.Label(label)
	if len(norm) < normalize.MinTokenLength || normalize.IsStopToken(norm) || normalize.LooksLikePath(label) {
		return nil, false, ErrRejectedLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.resolveLocked(norm, typ); ok {
		node := s.nodes[id]
		node.Weight++
		node.LastSeen = at
		node.AppendContext(context)
		return cloneNode(node), false, nil
	}

	node := &types.Node{
		ID:        NodeID(typ, label),
		Label:     strings.TrimSpace(label),
		Type:      typ,
		Weight:    1,
		FirstSeen: at,
		LastSeen:  at,
	}
	node.AppendContext(context)
	s.nodes[node.ID] = node
	return cloneNode(node), true, nil
}

// InsertNode adds a pre-built node (merge engine path). Fails if the id is
// already taken.
func (s *Store) InsertNode(n *types.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = NodeID(n.Type, n.Label)
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("node %s already exists", n.ID)
	}
	if n.Weight < 1 {
		n.Weight = 1
	}
	s.nodes[n.ID] = cloneNode(n)
	return nil
}

// ReplaceNode overwrites an existing node's state (merge engine path).
func (s *Store) ReplaceNode(n *types.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[n.ID]; !exists {
		return types.ErrNodeNotFound
	}
	s.nodes[n.ID] = cloneNode(n)
	return nil
}

// UpsertEdge creates or strengthens the edge between two node ids. Both
// endpoints must exist. Relation-less endpoint order is normalized by EdgeID.
func (s *Store) UpsertEdge(source, target string, weightDelta int, relation string, at time.Time) (*types.Edge, error) {
	if source == target {
		return nil, types.ErrSelfEdge
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[source]; !ok {
		return nil, fmt.Errorf("edge source %s: %w", source, types.ErrNodeNotFound)
	}
	if _, ok := s.nodes[target]; !ok {
		return nil, fmt.Errorf("edge target %s: %w", target, types.ErrNodeNotFound)
	}

	id := EdgeID(source, target, relation)
	if edge, ok := s.edges[id]; ok {
		edge.Weight += weightDelta
		edge.UpdatedAt = at
		return cloneEdge(edge), nil
	}

	a, b := source, target
	if relation == "" && b < a {
		a, b = b, a
	}
	edge := &types.Edge{
		ID:        id,
		Source:    a,
		Target:    b,
		Weight:    weightDelta,
		Relation:  relation,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if edge.Weight < 1 {
		edge.Weight = 1
	}
	s.edges[id] = edge
	return cloneEdge(edge), nil
}

// PutEdge inserts or overwrites an edge wholesale (merge engine path). Both
// endpoints must exist.
func (s *Store) PutEdge(e *types.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[e.Source]; !ok {
		return fmt.Errorf("edge source %s: %w", e.Source, types.ErrNodeNotFound)
	}
	if _, ok := s.nodes[e.Target]; !ok {
		return fmt.Errorf("edge target %s: %w", e.Target, types.ErrNodeNotFound)
	}
	if e.ID == "" {
		e.ID = EdgeID(e.Source, e.Target, e.Relation)
	}
	s.edges[e.ID] = cloneEdge(e)
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (*types.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return cloneNode(n), true
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(id string) (*types.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	if !ok {
		return nil, false
	}
	return cloneEdge(e), true
}

// EdgeBetween looks up the relation-less co-occurrence edge for a pair.
func (s *Store) EdgeBetween(a, b string) (*types.Edge, bool) {
	return s.Edge(EdgeID(a, b, ""))
}

// Nodes returns copies of all nodes, sorted by id for deterministic output.
func (s *Store) Nodes() []*types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, cloneNode(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns copies of all edges, sorted by id for deterministic output.
func (s *Store) Edges() []*types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, cloneEdge(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveNode deletes a node and prunes any edges left dangling.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	delete(s.nodes, id)
	s.pruneOrphansLocked()
	return true
}

// PruneOrphans removes edges whose endpoints no longer exist or are equal.
func (s *Store) PruneOrphans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneOrphansLocked()
}

func (s *Store) pruneOrphansLocked() int {
	removed := 0
	for id, e := range s.edges {
		_, srcOK := s.nodes[e.Source]
		_, tgtOK := s.nodes[e.Target]
		if !srcOK || !tgtOK || e.Source == e.Target {
			delete(s.edges, id)
			removed++
		}
	}
	return removed
}

// Decay removes weak, stale edges. Structural (relation-less) edges decay at
// weight <= 2, semantically asserted ones only at weight <= 1. An edge
// survives as long as either endpoint has been seen since the cutoff.
func (s *Store) Decay(cutoffDays int, now time.Time) int {
	cutoff := now.Add(-time.Duration(cutoffDays) * 24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.edges {
		weak := (e.Relation == "" && e.Weight <= 2) || (e.Relation != "" && e.Weight <= 1)
		if !weak {
			continue
		}
		if s.endpointAliveLocked(e.Source, cutoff) || s.endpointAliveLocked(e.Target, cutoff) {
			continue
		}
		delete(s.edges, id)
		removed++
	}
	if removed > 0 {
		s.logger.Debug("decayed stale edges", "removed", removed, "cutoff_days", cutoffDays)
	}
	return removed
}

func (s *Store) endpointAliveLocked(id string, cutoff time.Time) bool {
	n, ok := s.nodes[id]
	return ok && !n.LastSeen.Before(cutoff)
}

// Reset clears all graph state. Used for explicit user-triggered rebuild.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*types.Node)
	s.edges = make(map[string]*types.Edge)
}

// Search returns nodes whose normalized label contains the normalized query,
// optionally filtered by type, ordered by weight descending.
func (s *Store) Search(query string, typ types.NodeType, limit int) []*types.Node {
	q := normalize.Label(query)
	s.mu.RLock()
	var matches []*types.Node
	for _, n := range s.nodes {
		if typ != "" && n.Type != typ {
			continue
		}
		if q == "" || strings.Contains(normalize.Label(n.Label), q) {
			matches = append(matches, cloneNode(n))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Weight != matches[j].Weight {
			return matches[i].Weight > matches[j].Weight
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Stats summarizes the current graph.
func (s *Store) Stats() types.GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := types.GraphStats{
		NodeCount:   len(s.nodes),
		EdgeCount:   len(s.edges),
		NodesByType: make(map[types.NodeType]int),
	}
	for _, n := range s.nodes {
		stats.NodesByType[n.Type]++
		stats.TotalWeight += n.Weight
	}
	return stats
}

// Snapshot returns a deep copy of the whole graph for persistence.
func (s *Store) Snapshot() *types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &types.Snapshot{
		Nodes:   make(map[string]*types.Node, len(s.nodes)),
		Edges:   make(map[string]*types.Edge, len(s.edges)),
		SavedAt: time.Now().UTC(),
	}
	for id, n := range s.nodes {
		snap.Nodes[id] = cloneNode(n)
	}
	for id, e := range s.edges {
		snap.Edges[id] = cloneEdge(e)
	}
	return snap
}

// Restore replaces all graph state from a snapshot, then prunes any edges
// the snapshot left dangling.
func (s *Store) Restore(snap *types.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]*types.Node, len(snap.Nodes))
	s.edges = make(map[string]*types.Edge, len(snap.Edges))
	for id, n := range snap.Nodes {
		s.nodes[id] = cloneNode(n)
	}
	for id, e := range snap.Edges {
		s.edges[id] = cloneEdge(e)
	}
	s.pruneOrphansLocked()
}

func cloneNode(n *types.Node) *types.Node {
	out := *n
	out.Contexts = append([]string(nil), n.Contexts...)
	out.Sources = append([]types.Provenance(nil), n.Sources...)
	if n.Attributes != nil {
		out.Attributes = make(map[string]interface{}, len(n.Attributes))
		for k, v := range n.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

func cloneEdge(e *types.Edge) *types.Edge {
	out := *e
	out.Evidence = append([]string(nil), e.Evidence...)
	out.Sources = append([]types.Provenance(nil), e.Sources...)
	return &out
}
