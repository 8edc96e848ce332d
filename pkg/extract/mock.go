package extract

import (
	"context"
	"sync"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// MockExtractor returns canned batches; used in tests and as the offline
// fallback when no model endpoint is configured.
type MockExtractor struct {
	mu      sync.Mutex
	Results []*types.ExtractionResult
	Err     error
	calls   int
}

// Extract implements Extractor. It returns the queued results in order,
// repeating the last one, or an empty batch if none are queued.
func (m *MockExtractor) Extract(ctx context.Context, text string, source types.SourceInfo) (*types.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Results) == 0 {
		return &types.ExtractionResult{Source: source}, nil
	}
	idx := m.calls - 1
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1
	}
	result := m.Results[idx]
	result.Source = source
	return result, nil
}

// Calls reports how many times Extract ran.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
