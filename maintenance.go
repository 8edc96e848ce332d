package lifegraph

import (
	"context"
	"time"
)

// consolidateDelay is how long a consolidation request coalesces before the
// pass actually runs.
const consolidateDelay = 30 * time.Second

// StartMaintenance launches the background decay and flush loops. It is a
// no-op to call more than once; Close stops the loops.
func (e *Engine) StartMaintenance() {
	e.startOnce.Do(func() {
		e.wg.Add(2)
		go e.decayLoop()
		go e.flushLoop()
	})
}

func (e *Engine) decayLoop() {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.Engine.DecayIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Decay(time.Now())
		case <-e.stopMaintenance:
			return
		}
	}
}

func (e *Engine) flushLoop() {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.Persistence.FlushSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Failures already logged inside Flush; the in-memory graph
			// stays authoritative for the session.
			_ = e.Flush(context.Background())
		case <-e.stopMaintenance:
			return
		}
	}
}

// Decay removes weak stale edges per the configured cutoff and prunes any
// nodes orphaned by the removal. Returns the number of edges removed.
func (e *Engine) Decay(now time.Time) int {
	cutoff := e.cfg.Engine.DecayCutoffDays
	if cutoff <= 0 {
		cutoff = 7
	}
	removed := e.store.Decay(cutoff, now)
	if removed > 0 {
		e.logger.Info("decay pass complete", "removed", removed, "cutoff_days", cutoff)
	}
	return removed
}

// ScheduleConsolidation requests a type-registry consolidation pass. Requests
// coalesce: while one is armed, further calls are no-ops.
func (e *Engine) ScheduleConsolidation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.consolidateTimer != nil {
		return
	}
	e.consolidateTimer = time.AfterFunc(consolidateDelay, func() {
		e.mu.Lock()
		e.consolidateTimer = nil
		e.mu.Unlock()

		if removed := e.registry.Consolidate(); removed > 0 {
			e.logger.Info("consolidated type registry", "removed", removed)
			if err := e.registry.Save(); err != nil {
				e.logger.Warn("failed to persist consolidated registry", "error", err)
			}
		}
	})
}
