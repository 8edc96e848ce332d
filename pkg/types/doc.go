// Package types defines the shared data model for the lifegraph engine:
// nodes, edges, pending co-occurrence pairs, extraction batches, type
// definitions, and the snapshot form handed to persistence.
package types
