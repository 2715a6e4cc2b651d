// Package worker contains the background processing: folding queued view
// events into the catalog and reconciling tallies against the vote ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/metrics"
)

// ViewProcessor persists view events and keeps the live Redis view counter
// in step for dashboards.
type ViewProcessor struct {
	debates domain.DebateRepository
	counter domain.Counter
}

func NewViewProcessor(debates domain.DebateRepository, counter domain.Counter) *ViewProcessor {
	return &ViewProcessor{
		debates: debates,
		counter: counter,
	}
}

func (p *ViewProcessor) Process(ctx context.Context, event domain.ViewEvent) error {
	start := time.Now()

	if err := p.debates.AddViews(ctx, event.DebateID, 1); err != nil {
		return fmt.Errorf("worker: record view for %s: %w", event.DebateID, err)
	}

	if p.counter != nil {
		if _, err := p.counter.Increment(ctx, ViewCounterKey(event.DebateID), 1); err != nil {
			return fmt.Errorf("worker: bump view counter %s: %w", event.DebateID, err)
		}
	}

	metrics.IncViewProcessed()
	metrics.ObserveViewProcessingDuration(time.Since(start).Seconds())

	return nil
}

func ViewCounterKey(id domain.DebateID) string {
	return fmt.Sprintf("debate:%s", id)
}
