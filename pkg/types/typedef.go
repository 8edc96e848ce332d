package types

import "time"

// Directionality describes whether an edge type is directed.
type Directionality string

const (
	Directed   Directionality = "directed"
	Undirected Directionality = "undirected"
)

// TypeDefinition is a node type registered with the type registry. Seed
// definitions ship with the engine; new ones are created at runtime when an
// extraction proposes an unrecognized type.
type TypeDefinition struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Examples    []string  `json:"examples,omitempty"`
	Aliases     []string  `json:"aliases,omitempty"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// EdgeTypeDefinition is a relationship type registered with the type registry.
type EdgeTypeDefinition struct {
	TypeDefinition
	Directionality Directionality `json:"directionality"`
	InverseType    string         `json:"inverse_type,omitempty"`
}

// TypeRegistrySnapshot is the persisted form of the type registry.
type TypeRegistrySnapshot struct {
	NodeTypes map[string]*TypeDefinition     `json:"node_types"`
	EdgeTypes map[string]*EdgeTypeDefinition `json:"edge_types"`
	SavedAt   time.Time                      `json:"saved_at"`
}
