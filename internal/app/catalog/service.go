// Package catalog implements the debate/option catalog: public submission
// through the moderation gate, listing and detail reads, and the admin
// moderation surface.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gosimple/slug"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/ids"
)

var (
	ErrValidation      = errors.New("invalid input")
	ErrSlugTaken       = errors.New("debate with this title already exists")
	ErrDuplicateOption = errors.New("option already exists")
	ErrOptionsLocked   = errors.New("debate does not accept new options")
	ErrDebateNotFound  = errors.New("debate not found")
	ErrOptionNotFound  = errors.New("option not found")
)

const topOptionsPerCard = 3

// Service holds the catalog rules and delegates persistence and content
// analysis to its collaborators.
type Service struct {
	debates   domain.DebateRepository
	options   domain.OptionRepository
	moderator domain.Moderator
	queue     domain.EventQueue
	clock     domain.Clock
	ids       *ids.Generator
	logger    *slog.Logger
}

func NewService(
	debates domain.DebateRepository,
	options domain.OptionRepository,
	moderator domain.Moderator,
	queue domain.EventQueue,
	clock domain.Clock,
	idsGen *ids.Generator,
	logger *slog.Logger,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		debates:   debates,
		options:   options,
		moderator: moderator,
		queue:     queue,
		clock:     clock,
		ids:       idsGen,
		logger:    logger,
	}
}

// Submit validates a public submission, runs it through the moderation
// gate and creates the debate with its options. The resulting status
// decides whether it is published immediately or held for an admin.
func (s *Service) Submit(ctx context.Context, sub domain.NewDebate) (domain.Debate, error) {
	if sub.Category == "" {
		return domain.Debate{}, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if err := validateTitle(sub.Title); err != nil {
		return domain.Debate{}, err
	}
	if err := validateDescription(sub.Description); err != nil {
		return domain.Debate{}, err
	}
	if err := validateOptionNames(sub.Options); err != nil {
		return domain.Debate{}, err
	}

	debateSlug := slug.Make(sub.Title)
	if _, err := s.debates.FindBySlug(ctx, debateSlug); err == nil {
		return domain.Debate{}, ErrSlugTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Debate{}, err
	}

	review, err := s.moderate(ctx, sub)
	if err != nil {
		return domain.Debate{}, err
	}

	now := s.clock.Now()
	debate := domain.Debate{
		ID:                 domain.DebateID(s.ids.New()),
		Slug:               debateSlug,
		Title:              strings.TrimSpace(sub.Title),
		Description:        strings.TrimSpace(sub.Description),
		Category:           sub.Category,
		SubCategory:        sub.SubCategory,
		IsActive:           true,
		MoreOptionsAllowed: sub.MoreOptionsAllowed,
		Status:             review.Status,
		Tags:               review.Tags,
		CreatedBy:          sub.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.debates.Create(ctx, debate); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Debate{}, ErrSlugTaken
		}
		return domain.Debate{}, err
	}

	options := make([]domain.Option, len(sub.Options))
	for i, name := range sub.Options {
		options[i] = domain.Option{
			ID:        domain.OptionID(s.ids.New()),
			DebateID:  debate.ID,
			Name:      strings.TrimSpace(name),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if err := s.options.BulkCreate(ctx, debate.ID, options); err != nil {
		return domain.Debate{}, err
	}

	debate.Options = options
	return debate, nil
}

// moderate consults the content-analysis collaborator. If the collaborator
// fails, the submission is held as pending rather than auto-published.
func (s *Service) moderate(ctx context.Context, sub domain.NewDebate) (domain.Review, error) {
	if s.moderator == nil {
		return domain.Review{Status: domain.StatusPending}, nil
	}
	review, err := s.moderator.Analyze(ctx, sub.Title, sub.Description, sub.Options)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("moderation unavailable, holding submission", "err", err)
		}
		return domain.Review{Status: domain.StatusPending}, nil
	}
	if !review.Status.Valid() {
		review.Status = domain.StatusPending
	}
	return review, nil
}

func (s *Service) ListPublic(ctx context.Context, filter domain.PublicListFilter) ([]domain.DebateCard, error) {
	debates, err := s.debates.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.DebateCard, len(debates))
	for i, d := range debates {
		options, oErr := s.options.ListByDebate(ctx, d.ID)
		if oErr != nil {
			return nil, oErr
		}
		if len(options) > topOptionsPerCard {
			options = options[:topOptionsPerCard]
		}
		cards[i] = domain.DebateCard{Debate: d, TopOptions: options}
	}
	return cards, nil
}

// GetBySlug serves the public debate page and queues a view event. Pending
// and rejected debates are invisible here regardless of who asks.
func (s *Service) GetBySlug(ctx context.Context, slugKey string) (domain.DebateDetail, error) {
	debate, err := s.debates.FindBySlug(ctx, slugKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DebateDetail{}, ErrDebateNotFound
		}
		return domain.DebateDetail{}, err
	}
	if debate.Status != domain.StatusApproved || !debate.IsActive {
		return domain.DebateDetail{}, ErrDebateNotFound
	}

	options, err := s.options.ListByDebate(ctx, debate.ID)
	if err != nil {
		return domain.DebateDetail{}, err
	}

	related, err := s.debates.ListRelated(ctx, debate, 4)
	if err != nil {
		return domain.DebateDetail{}, err
	}

	if s.queue != nil {
		event := domain.ViewEvent{DebateID: debate.ID, ViewedAt: s.clock.Now()}
		// View tracking is best-effort; losing an event never fails the read.
		if pubErr := s.queue.PublishView(ctx, event); pubErr != nil && s.logger != nil {
			s.logger.Warn("failed to queue view event", "debate", debate.ID, "err", pubErr)
		}
	}

	return domain.DebateDetail{Debate: debate, Options: options, Related: related}, nil
}

// AddOption appends a candidate to an open debate. Names are deduplicated
// case-insensitively within the debate.
func (s *Service) AddOption(ctx context.Context, debateID domain.DebateID, name string) (domain.Option, error) {
	if debateID == "" {
		return domain.Option{}, fmt.Errorf("%w: debate id is required", ErrValidation)
	}
	if err := validateOptionName(name); err != nil {
		return domain.Option{}, err
	}

	debate, err := s.debates.FindByID(ctx, debateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Option{}, ErrDebateNotFound
		}
		return domain.Option{}, err
	}
	if !debate.MoreOptionsAllowed {
		return domain.Option{}, ErrOptionsLocked
	}

	trimmed := strings.TrimSpace(name)
	if _, err := s.options.FindByName(ctx, debateID, trimmed); err == nil {
		return domain.Option{}, ErrDuplicateOption
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Option{}, err
	}

	now := s.clock.Now()
	option := domain.Option{
		ID:        domain.OptionID(s.ids.New()),
		DebateID:  debateID,
		Name:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.options.Create(ctx, option); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Option{}, ErrDuplicateOption
		}
		return domain.Option{}, err
	}
	return option, nil
}

func (s *Service) AdminListDebates(ctx context.Context, filter domain.AdminListFilter) (domain.DebatePage, error) {
	debates, total, err := s.debates.ListAdmin(ctx, filter)
	if err != nil {
		return domain.DebatePage{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	return domain.DebatePage{
		Debates:    debates,
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *Service) AdminGetDebate(ctx context.Context, id domain.DebateID) (domain.DebateDetail, error) {
	debate, err := s.debates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DebateDetail{}, ErrDebateNotFound
		}
		return domain.DebateDetail{}, err
	}

	options, err := s.options.ListByDebate(ctx, id)
	if err != nil {
		return domain.DebateDetail{}, err
	}
	return domain.DebateDetail{Debate: debate, Options: options}, nil
}

// UpdateDebate applies a partial admin edit. Setting a field to its
// current value is a harmless no-op.
func (s *Service) UpdateDebate(ctx context.Context, id domain.DebateID, update domain.DebateUpdate) (domain.Debate, error) {
	fields := map[string]any{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.SubCategory != nil {
		fields["sub_category"] = *update.SubCategory
	}
	if update.IsActive != nil {
		fields["is_active"] = *update.IsActive
	}
	if update.MoreOptionsAllowed != nil {
		fields["more_options_allowed"] = *update.MoreOptionsAllowed
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return domain.Debate{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *update.Status)
		}
		fields["status"] = *update.Status
	}
	if update.RejectionReason != nil {
		fields["rejection_reason"] = *update.RejectionReason
	}

	if len(fields) > 0 {
		if err := s.debates.Update(ctx, id, fields); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Debate{}, ErrDebateNotFound
			}
			return domain.Debate{}, err
		}
	}

	debate, err := s.debates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Debate{}, ErrDebateNotFound
		}
		return domain.Debate{}, err
	}
	return debate, nil
}

// ApproveDebate publishes a debate. Admin transitions are unrestricted:
// any status may move to any other at any time.
func (s *Service) ApproveDebate(ctx context.Context, id domain.DebateID) (domain.Debate, error) {
	status := domain.StatusApproved
	empty := ""
	return s.UpdateDebate(ctx, id, domain.DebateUpdate{Status: &status, RejectionReason: &empty})
}

func (s *Service) RejectDebate(ctx context.Context, id domain.DebateID, reason string) (domain.Debate, error) {
	if reason == "" {
		reason = "Rejected by admin"
	}
	status := domain.StatusRejected
	return s.UpdateDebate(ctx, id, domain.DebateUpdate{Status: &status, RejectionReason: &reason})
}

// DeleteDebate removes a debate and cascades to its options. Vote rows are
// deliberately retained as an audit trail.
func (s *Service) DeleteDebate(ctx context.Context, id domain.DebateID) error {
	if err := s.debates.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrDebateNotFound
		}
		return err
	}
	return s.options.DeleteByDebate(ctx, id)
}

func (s *Service) AdminListOptions(ctx context.Context, filter domain.OptionListFilter) (domain.OptionPage, error) {
	options, total, err := s.options.ListAdmin(ctx, filter)
	if err != nil {
		return domain.OptionPage{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	return domain.OptionPage{
		Options:    options,
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *Service) DeleteOption(ctx context.Context, id domain.OptionID) error {
	if err := s.options.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrOptionNotFound
		}
		return err
	}
	return nil
}

var _ domain.CatalogService = (*Service)(nil)
