package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/metrics"
)

// Reconciler rewrites option and debate counters from the vote ledger.
// The synchronous vote path issues its two counter updates without a
// cross-row transaction, so a crash can leave them diverged; each pass
// here repairs whatever drift accumulated.
type Reconciler struct {
	debates domain.DebateRepository
	options domain.OptionRepository
	votes   domain.VoteRepository
	logger  *slog.Logger
}

func NewReconciler(debates domain.DebateRepository, options domain.OptionRepository, votes domain.VoteRepository, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		debates: debates,
		options: options,
		votes:   votes,
		logger:  logger,
	}
}

// Run reconciles on a fixed interval until the context is canceled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			repaired, err := r.ReconcileAll(ctx)
			if err != nil {
				metrics.ObserveReconcileRun("error")
				r.logger.Error("tally reconciliation failed", "err", err)
				continue
			}
			metrics.ObserveReconcileRun("ok")
			if repaired > 0 {
				r.logger.Info("tally drift repaired", "counters", repaired)
			}
		}
	}
}

func (r *Reconciler) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := r.debates.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconciler: list debates: %w", err)
	}

	var repaired int
	for _, id := range ids {
		n, err := r.ReconcileDebate(ctx, id)
		if err != nil {
			return repaired, err
		}
		repaired += n
	}
	return repaired, nil
}

// ReconcileDebate compares the stored counters of one debate with counts
// derived from the ledger and rewrites any that disagree.
func (r *Reconciler) ReconcileDebate(ctx context.Context, id domain.DebateID) (int, error) {
	debate, err := r.debates.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reconciler: load debate %s: %w", id, err)
	}

	ledgerTotal, err := r.votes.CountByDebate(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reconciler: count ledger %s: %w", id, err)
	}
	perOption, err := r.votes.CountByOption(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reconciler: count ledger per option %s: %w", id, err)
	}

	var repaired int
	if debate.TotalVotes != ledgerTotal {
		if err := r.debates.SetTotalVotes(ctx, id, ledgerTotal); err != nil {
			return repaired, fmt.Errorf("reconciler: rewrite debate total %s: %w", id, err)
		}
		metrics.IncDriftRepaired()
		repaired++
	}

	options, err := r.options.ListByDebate(ctx, id)
	if err != nil {
		return repaired, fmt.Errorf("reconciler: list options %s: %w", id, err)
	}
	for _, option := range options {
		want := perOption[option.ID]
		if option.Votes == want {
			continue
		}
		if err := r.options.SetVotes(ctx, option.ID, want); err != nil {
			return repaired, fmt.Errorf("reconciler: rewrite option tally %s: %w", option.ID, err)
		}
		metrics.IncDriftRepaired()
		repaired++
	}

	return repaired, nil
}
