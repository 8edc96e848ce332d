package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyLabel   = errors.New("label cannot be empty")
	ErrEmptyType    = errors.New("type cannot be empty")
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrSelfEdge     = errors.New("edge endpoints must differ")
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
)

// MaxNodeContexts bounds the per-node list of recent observation contexts.
const MaxNodeContexts = 10

// NodeType categorizes an entity node. The set is open: these are the seed
// types, and the type registry can introduce more at runtime.
type NodeType string

const (
	PersonNodeType       NodeType = "person"
	AppNodeType          NodeType = "app"
	PlaceNodeType        NodeType = "place"
	TopicNodeType        NodeType = "topic"
	ProjectNodeType      NodeType = "project"
	ContentNodeType      NodeType = "content"
	GoalNodeType         NodeType = "goal"
	OrganizationNodeType NodeType = "organization"
	MediaNodeType        NodeType = "media"
	EventNodeType        NodeType = "event"
	SkillNodeType        NodeType = "skill"
	InterestNodeType     NodeType = "interest"
	BeliefNodeType       NodeType = "belief"
	HabitNodeType        NodeType = "habit"
)

// Provenance records where an observation came from.
type Provenance struct {
	Kind      string    `json:"kind"`
	OriginID  string    `json:"origin_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Node represents one canonical real-world entity in the graph.
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Type       NodeType               `json:"type"`
	Weight     int                    `json:"weight"`
	FirstSeen  time.Time              `json:"first_seen"`
	LastSeen   time.Time              `json:"last_seen"`
	Contexts   []string               `json:"contexts,omitempty"`
	Confidence float64                `json:"confidence,omitempty"`
	Salience   float64                `json:"salience,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Sources    []Provenance           `json:"sources,omitempty"`
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.Label == "" {
		return ErrEmptyLabel
	}
	if n.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// AppendContext records an observation context, evicting the oldest entry
// beyond MaxNodeContexts.
func (n *Node) AppendContext(context string) {
	if context == "" {
		return
	}
	n.Contexts = append(n.Contexts, context)
	if len(n.Contexts) > MaxNodeContexts {
		n.Contexts = n.Contexts[len(n.Contexts)-MaxNodeContexts:]
	}
}

// Edge is a weighted relationship between two nodes. Edges without a Relation
// label come from co-occurrence and are undirected: Source/Target are stored
// in sorted order so a pair maps to one key regardless of observation order.
// Relation-labeled edges keep their asserted direction.
type Edge struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Weight     int          `json:"weight"`
	Relation   string       `json:"relation,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
	Evidence   []string     `json:"evidence,omitempty"`
	Sources    []Provenance `json:"sources,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Validate checks if the Edge has all required fields set.
func (e *Edge) Validate() error {
	if e.Source == "" || e.Target == "" {
		return ErrEmptyID
	}
	if e.Source == e.Target {
		return ErrSelfEdge
	}
	return nil
}

// PendingEdge tracks an unconfirmed co-occurrence pair. It is promoted to a
// real Edge once Count reaches the promotion threshold, or discarded when it
// goes stale without reaching it.
type PendingEdge struct {
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// Snapshot is the serializable whole-graph state handed to the persistence
// collaborator. IDs are the join keys; ordering is not significant.
type Snapshot struct {
	Nodes    map[string]*Node       `json:"nodes"`
	Edges    map[string]*Edge       `json:"edges"`
	Pending  map[string]PendingEdge `json:"pending,omitempty"`
	Insights []string               `json:"insights,omitempty"`
	SavedAt  time.Time              `json:"saved_at"`
}

// GraphStats summarizes the current graph for CLI and server surfaces.
type GraphStats struct {
	NodeCount    int              `json:"node_count"`
	EdgeCount    int              `json:"edge_count"`
	PendingCount int              `json:"pending_count"`
	NodesByType  map[NodeType]int `json:"nodes_by_type"`
	TotalWeight  int              `json:"total_weight"`
}

// ContextKey is used for context values carried through request handling.
type ContextKey string

const (
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeySourceID      ContextKey = "source_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
