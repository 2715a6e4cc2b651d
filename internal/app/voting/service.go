// Package voting implements the vote ledger: one mutable vote per
// (debate, identity), with the tally deltas that keep the option and
// debate counters in step.
package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/ids"
)

var (
	ErrInvalidBallot   = errors.New("invalid ballot")
	ErrDebateNotFound  = errors.New("debate not found")
	ErrOptionNotFound  = errors.New("option not found")
	ErrAlreadyVoted    = errors.New("already voted")
)

// Service applies the voting rules and delegates persistence to the
// repositories.
type Service struct {
	debates domain.DebateRepository
	options domain.OptionRepository
	votes   domain.VoteRepository
	limiter domain.RateLimiter
	clock   domain.Clock
	ids     *ids.Generator
}

func NewService(
	debates domain.DebateRepository,
	options domain.OptionRepository,
	votes domain.VoteRepository,
	limiter domain.RateLimiter,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		debates: debates,
		options: options,
		votes:   votes,
		limiter: limiter,
		clock:   clock,
		ids:     idsGen,
	}
}

// Cast records a ballot. First vote inserts a ledger row and bumps both
// counters; a repeat for the same option is a no-op; a different option
// moves the ledger row and shifts one vote between options without
// touching the debate total.
func (s *Service) Cast(ctx context.Context, b domain.Ballot) (domain.VoteOutcome, error) {
	if b.DebateID == "" || b.OptionID == "" || b.Identity.FingerprintID == "" {
		return domain.VoteOutcome{}, ErrInvalidBallot
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, b); err != nil {
			return domain.VoteOutcome{}, err
		}
	}

	if _, err := s.debates.FindByID(ctx, b.DebateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VoteOutcome{}, ErrDebateNotFound
		}
		return domain.VoteOutcome{}, err
	}

	option, err := s.options.FindByID(ctx, b.OptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VoteOutcome{}, ErrOptionNotFound
		}
		return domain.VoteOutcome{}, err
	}
	if option.DebateID != b.DebateID {
		return domain.VoteOutcome{}, ErrOptionNotFound
	}

	existing, err := s.votes.FindByIdentity(ctx, b.DebateID, b.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.castNew(ctx, b)
		}
		return domain.VoteOutcome{}, err
	}

	if existing.OptionID == b.OptionID {
		// Same choice again: nothing moves, nowhere.
		return domain.VoteOutcome{Result: domain.VoteUnchanged}, nil
	}

	return s.changeVote(ctx, existing, b.OptionID)
}

func (s *Service) castNew(ctx context.Context, b domain.Ballot) (domain.VoteOutcome, error) {
	vote := domain.Vote{
		ID:            domain.VoteID(s.ids.New()),
		DebateID:      b.DebateID,
		OptionID:      b.OptionID,
		IP:            b.Identity.IP,
		FingerprintID: b.Identity.FingerprintID,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// A concurrent request from the same identity won the insert.
			return domain.VoteOutcome{}, ErrAlreadyVoted
		}
		return domain.VoteOutcome{}, fmt.Errorf("voting: record vote: %w", err)
	}

	// Two sequential single-row atomic updates. A crash between them
	// leaves drift that the reconciler repairs on its next pass.
	if err := s.options.AddVotes(ctx, b.OptionID, 1); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("voting: bump option tally: %w", err)
	}
	if err := s.debates.AddTotalVotes(ctx, b.DebateID, 1); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("voting: bump debate tally: %w", err)
	}

	return domain.VoteOutcome{Result: domain.VoteCreated}, nil
}

func (s *Service) changeVote(ctx context.Context, existing domain.Vote, optionID domain.OptionID) (domain.VoteOutcome, error) {
	if err := s.votes.UpdateOption(ctx, existing.ID, optionID); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("voting: move vote: %w", err)
	}

	// One vote shifts between options; the debate total stays fixed
	// because a change is not a new vote.
	if err := s.options.AddVotes(ctx, existing.OptionID, -1); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("voting: release old option tally: %w", err)
	}
	if err := s.options.AddVotes(ctx, optionID, 1); err != nil {
		return domain.VoteOutcome{}, fmt.Errorf("voting: bump new option tally: %w", err)
	}

	return domain.VoteOutcome{
		Result:           domain.VoteChanged,
		PreviousOptionID: existing.OptionID,
	}, nil
}

var _ domain.VotingService = (*Service)(nil)
