package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the extraction circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	IntervalSeconds  int
	TimeoutSeconds   int
	ReadyToTripRatio float64
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 60
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 120
	}
	if c.ReadyToTripRatio <= 0 {
		c.ReadyToTripRatio = 0.6
	}
	return c
}

// CircuitBreakerExtractor wraps an Extractor with circuit breaking so that a
// failing or slow model endpoint stops being called for a cool-down period
// instead of stalling every ingest.
type CircuitBreakerExtractor struct {
	inner Extractor
	cb    *gobreaker.CircuitBreaker
}

// NewCircuitBreakerExtractor wraps an extractor in a circuit breaker.
func NewCircuitBreakerExtractor(inner Extractor, cfg BreakerConfig, logger *slog.Logger) *CircuitBreakerExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	st := gobreaker.Settings{
		Name:        "extraction",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("extraction circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerExtractor{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(st),
	}
}

// Extract implements Extractor.
func (c *CircuitBreakerExtractor) Extract(ctx context.Context, text string, source types.SourceInfo) (*types.ExtractionResult, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.Extract(ctx, text, source)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*types.ExtractionResult), nil
}
