// Package persist provides snapshot persistence backends: a single-file JSON
// store with atomic writes, and an embedded Badger key-value store.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// ErrNoSnapshot is returned by Load when the backend holds no saved state.
var ErrNoSnapshot = errors.New("no snapshot found")

// Store persists and restores full graph snapshots.
type Store interface {
	Save(ctx context.Context, snap *types.Snapshot) error
	Load(ctx context.Context) (*types.Snapshot, error)
	Close() error
}

// Supported driver names.
const (
	DriverFile   = "file"
	DriverBadger = "badger"
)

// Open creates a snapshot store for the given driver and path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverBadger:
		return NewBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", driver)
	}
}
