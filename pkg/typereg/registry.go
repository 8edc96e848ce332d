// Package typereg maintains the dynamic entity and relationship type
// registry: a fixed seed set extended at runtime whenever an extraction
// proposes an unrecognized type. Lookups fall through id, label, and alias
// before a new type is registered.
package typereg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/normalize"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// ConsolidationThreshold is the minimum Levenshtein ratio for folding two
// runtime-registered types into one during consolidation.
const ConsolidationThreshold = 0.8

// Seed categories.
const (
	CategorySeed   = "seed"
	CategoryCustom = "custom"
)

// Registry holds node and edge type definitions, keyed by id.
type Registry struct {
	mu        sync.RWMutex
	nodeTypes map[string]*types.TypeDefinition
	edgeTypes map[string]*types.EdgeTypeDefinition
	path      string
	logger    *slog.Logger
}

// NewRegistry creates a registry seeded with the built-in types and, when a
// snapshot exists at path, overlays the persisted state. An empty path
// disables persistence.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		nodeTypes: make(map[string]*types.TypeDefinition),
		edgeTypes: make(map[string]*types.EdgeTypeDefinition),
		path:      path,
		logger:    logger,
	}
	r.seed()
	if path != "" {
		if err := r.load(); err != nil {
			logger.Warn("failed to load type registry snapshot, starting from seeds", "path", path, "error", err)
		}
	}
	return r
}

func (r *Registry) seed() {
	now := time.Now()
	seedNodes := []struct {
		id, description string
		aliases         []string
	}{
		{"person", "An individual human being", []string{"people", "human", "user", "contact"}},
		{"app", "A software application or tool", []string{"application", "software", "tool"}},
		{"place", "A physical or virtual location", []string{"location", "city", "venue"}},
		{"topic", "A subject of interest or discussion", []string{"subject", "theme", "concept"}},
		{"project", "An ongoing body of work", []string{"initiative", "workstream"}},
		{"content", "A document, page, or piece of media consumed", []string{"document", "article", "page"}},
		{"goal", "A desired outcome being worked toward", []string{"objective", "target", "aspiration"}},
		{"organization", "A company, team, or institution", []string{"company", "org", "team", "institution"}},
		{"media", "A creative work such as a film, album, or game", []string{"movie", "music", "book", "game"}},
		{"event", "A dated occurrence such as a meeting or trip", []string{"meeting", "appointment", "occasion"}},
		{"skill", "A learned capability", []string{"ability", "competency"}},
		{"interest", "A recurring personal interest or hobby", []string{"hobby", "passion"}},
		{"belief", "A held principle, value, or opinion", []string{"value", "principle", "opinion"}},
		{"habit", "A recurring behavior or routine", []string{"routine", "practice"}},
	}
	for _, s := range seedNodes {
		r.nodeTypes[s.id] = &types.TypeDefinition{
			ID: s.id, Label: s.id, Description: s.description,
			Category: CategorySeed, Aliases: s.aliases, CreatedAt: now,
		}
	}

	seedEdges := []struct {
		id, description string
		directionality  types.Directionality
		inverse         string
		aliases         []string
	}{
		{"works_on", "Actively contributes to", types.Directed, "", []string{"working_on", "contributes_to"}},
		{"interested_in", "Shows sustained interest in", types.Directed, "", []string{"curious_about"}},
		{"knows", "Is acquainted with", types.Undirected, "", []string{"acquainted_with", "friends_with"}},
		{"uses", "Regularly uses", types.Directed, "used_by", nil},
		{"likes", "Has positive sentiment toward", types.Directed, "", []string{"loves", "fond_of"}},
		{"dislikes", "Has negative sentiment toward", types.Directed, "", []string{"hates"}},
		{"prefers", "Chooses over alternatives", types.Directed, "", nil},
		{"avoids", "Deliberately steers away from", types.Directed, "", []string{"steers_clear_of"}},
		{"enjoys", "Takes pleasure in", types.Directed, "", nil},
		{"believes", "Holds as a principle or opinion", types.Directed, "", []string{"values"}},
		{"doubts", "Questions or distrusts", types.Directed, "", []string{"distrusts"}},
		{"located_in", "Is physically or logically within", types.Directed, "contains", nil},
		{"part_of", "Belongs to a larger whole", types.Directed, "has_part", []string{"member_of", "belongs_to"}},
		{"relates_to", "Has an unspecified association with", types.Undirected, "", []string{"associated_with", "connected_to"}},
	}
	for _, s := range seedEdges {
		r.edgeTypes[s.id] = &types.EdgeTypeDefinition{
			TypeDefinition: types.TypeDefinition{
				ID: s.id, Label: s.id, Description: s.description,
				Category: CategorySeed, Aliases: s.aliases, CreatedAt: now,
			},
			Directionality: s.directionality,
			InverseType:    s.inverse,
		}
	}
}

// normalizeTypeName turns a proposed type name into registry key form:
// normalized, with spaces collapsed to underscores ("Works On" -> "works_on").
func normalizeTypeName(proposed string) string {
	return strings.ReplaceAll(normalize.Label(proposed), " ", "_")
}

// ResolveNodeType maps a proposed type name to a registered node type,
// registering a new custom type when nothing matches. Every resolution bumps
// the winning definition's usage count.
func (r *Registry) ResolveNodeType(proposed string) types.NodeType {
	key := normalizeTypeName(proposed)
	if key == "" {
		key = string(types.TopicNodeType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def := r.findNodeTypeLocked(key); def != nil {
		def.UsageCount++
		return types.NodeType(def.ID)
	}

	def := &types.TypeDefinition{
		ID: key, Label: key, Category: CategoryCustom,
		UsageCount: 1, CreatedAt: time.Now(),
	}
	r.nodeTypes[key] = def
	r.logger.Info("registered new node type", "type", key)
	return types.NodeType(key)
}

// ResolveEdgeType maps a proposed relation name to a registered edge type,
// registering a new custom one when nothing matches.
func (r *Registry) ResolveEdgeType(proposed string) string {
	key := normalizeTypeName(proposed)
	if key == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def := r.findEdgeTypeLocked(key); def != nil {
		def.UsageCount++
		return def.ID
	}

	def := &types.EdgeTypeDefinition{
		TypeDefinition: types.TypeDefinition{
			ID: key, Label: key, Category: CategoryCustom,
			UsageCount: 1, CreatedAt: time.Now(),
		},
		Directionality: types.Directed,
	}
	r.edgeTypes[key] = def
	r.logger.Info("registered new edge type", "type", key)
	return key
}

func (r *Registry) findNodeTypeLocked(key string) *types.TypeDefinition {
	if def, ok := r.nodeTypes[key]; ok {
		return def
	}
	for _, def := range r.sortedNodeTypesLocked() {
		for _, alias := range def.Aliases {
			if normalizeTypeName(alias) == key {
				return def
			}
		}
	}
	return nil
}

func (r *Registry) findEdgeTypeLocked(key string) *types.EdgeTypeDefinition {
	if def, ok := r.edgeTypes[key]; ok {
		return def
	}
	for _, def := range r.sortedEdgeTypesLocked() {
		for _, alias := range def.Aliases {
			if normalizeTypeName(alias) == key {
				return def
			}
		}
	}
	return nil
}

// AddNodeType registers a node type explicitly, e.g. from the admin CLI.
// Returns an error if the id is already taken.
func (r *Registry) AddNodeType(def *types.TypeDefinition) error {
	key := normalizeTypeName(def.ID)
	if key == "" {
		return fmt.Errorf("empty type id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodeTypes[key]; ok {
		return fmt.Errorf("node type %q already registered", key)
	}
	cp := *def
	cp.ID = key
	if cp.Label == "" {
		cp.Label = key
	}
	if cp.Category == "" {
		cp.Category = CategoryCustom
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.nodeTypes[key] = &cp
	return nil
}

// NodeTypes returns all node type definitions sorted by id.
func (r *Registry) NodeTypes() []*types.TypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.TypeDefinition, 0, len(r.nodeTypes))
	for _, def := range r.sortedNodeTypesLocked() {
		cp := *def
		out = append(out, &cp)
	}
	return out
}

// EdgeTypes returns all edge type definitions sorted by id.
func (r *Registry) EdgeTypes() []*types.EdgeTypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.EdgeTypeDefinition, 0, len(r.edgeTypes))
	for _, def := range r.sortedEdgeTypesLocked() {
		cp := *def
		out = append(out, &cp)
	}
	return out
}

// Search returns node types whose id, label, description, or aliases contain
// the query, case-insensitively.
func (r *Registry) Search(query string) []*types.TypeDefinition {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*types.TypeDefinition
	for _, def := range r.sortedNodeTypesLocked() {
		if typeMatchesQuery(def, q) {
			cp := *def
			out = append(out, &cp)
		}
	}
	return out
}

func typeMatchesQuery(def *types.TypeDefinition, q string) bool {
	if strings.Contains(strings.ToLower(def.ID), q) ||
		strings.Contains(strings.ToLower(def.Label), q) ||
		strings.Contains(strings.ToLower(def.Description), q) {
		return true
	}
	for _, alias := range def.Aliases {
		if strings.Contains(strings.ToLower(alias), q) {
			return true
		}
	}
	return false
}

// Stats summarizes registry contents.
type Stats struct {
	NodeTypeCount int `json:"node_type_count"`
	EdgeTypeCount int `json:"edge_type_count"`
	CustomCount   int `json:"custom_count"`
	TotalUsage    int `json:"total_usage"`
}

// Summary returns registry statistics.
func (r *Registry) Summary() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{NodeTypeCount: len(r.nodeTypes), EdgeTypeCount: len(r.edgeTypes)}
	for _, def := range r.nodeTypes {
		s.TotalUsage += def.UsageCount
		if def.Category == CategoryCustom {
			s.CustomCount++
		}
	}
	for _, def := range r.edgeTypes {
		s.TotalUsage += def.UsageCount
		if def.Category == CategoryCustom {
			s.CustomCount++
		}
	}
	return s
}

// Consolidate folds near-duplicate custom node types into each other: when
// two custom ids have a Levenshtein ratio above the threshold, the less-used
// one becomes an alias of the more-used one. Seed types are never folded.
// Returns the number of types removed.
func (r *Registry) Consolidate() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var custom []*types.TypeDefinition
	for _, def := range r.sortedNodeTypesLocked() {
		if def.Category == CategoryCustom {
			custom = append(custom, def)
		}
	}

	removed := 0
	for i := 0; i < len(custom); i++ {
		for j := i + 1; j < len(custom); j++ {
			a, b := custom[i], custom[j]
			if _, ok := r.nodeTypes[a.ID]; !ok {
				continue
			}
			if _, ok := r.nodeTypes[b.ID]; !ok {
				continue
			}
			if normalize.Ratio(a.ID, b.ID) < ConsolidationThreshold {
				continue
			}
			keep, fold := a, b
			if fold.UsageCount > keep.UsageCount {
				keep, fold = fold, keep
			}
			keep.UsageCount += fold.UsageCount
			keep.Aliases = appendUnique(keep.Aliases, fold.ID)
			keep.Aliases = appendUnique(keep.Aliases, fold.Aliases...)
			delete(r.nodeTypes, fold.ID)
			removed++
			r.logger.Info("consolidated node type", "folded", fold.ID, "into", keep.ID)
		}
	}
	return removed
}

// Save persists the registry snapshot with an atomic write. A registry with
// no path configured saves nowhere and returns nil.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}

	r.mu.RLock()
	snap := types.TypeRegistrySnapshot{
		NodeTypes: r.nodeTypes,
		EdgeTypes: r.edgeTypes,
		SavedAt:   time.Now(),
	}
	data, err := json.MarshalIndent(&snap, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal type registry: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write type registry: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to rename type registry: %w", err)
	}
	return nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snap types.TypeRegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal type registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, def := range snap.NodeTypes {
		r.nodeTypes[id] = def
	}
	for id, def := range snap.EdgeTypes {
		r.edgeTypes[id] = def
	}
	return nil
}

func (r *Registry) sortedNodeTypesLocked() []*types.TypeDefinition {
	out := make([]*types.TypeDefinition, 0, len(r.nodeTypes))
	for _, def := range r.nodeTypes {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) sortedEdgeTypesLocked() []*types.EdgeTypeDefinition {
	out := make([]*types.EdgeTypeDefinition, 0, len(r.edgeTypes))
	for _, def := range r.edgeTypes {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range dst {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
