package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/letsettle/letsettle/internal/domain"
)

// OptionRepository persists the candidate options of a debate.
type OptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

func (r *OptionRepository) Create(ctx context.Context, o domain.Option) error {
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("gorm options: insert: %w", err)
	}
	return nil
}

func (r *OptionRepository) BulkCreate(ctx context.Context, debateID domain.DebateID, options []domain.Option) error {
	if len(options) == 0 {
		return nil
	}

	rows := make([]domain.Option, len(options))
	for i, o := range options {
		if o.DebateID == "" {
			o.DebateID = debateID
		}
		rows[i] = o
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("gorm options: bulk create: %w", err)
	}
	return nil
}

func (r *OptionRepository) FindByID(ctx context.Context, id domain.OptionID) (domain.Option, error) {
	var o domain.Option
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Option{}, domain.ErrNotFound
		}
		return domain.Option{}, fmt.Errorf("gorm options: find by id: %w", err)
	}
	return o, nil
}

func (r *OptionRepository) FindByName(ctx context.Context, debateID domain.DebateID, name string) (domain.Option, error) {
	var o domain.Option
	// Name uniqueness within a debate is case-insensitive and enforced
	// here at write time, not by a database constraint.
	if err := r.db.WithContext(ctx).
		Where("debate_id = ? AND LOWER(name) = LOWER(?)", debateID, name).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Option{}, domain.ErrNotFound
		}
		return domain.Option{}, fmt.Errorf("gorm options: find by name: %w", err)
	}
	return o, nil
}

func (r *OptionRepository) ListByDebate(ctx context.Context, debateID domain.DebateID) ([]domain.Option, error) {
	var options []domain.Option
	if err := r.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("votes DESC").
		Order("created_at ASC").
		Find(&options).Error; err != nil {
		return nil, fmt.Errorf("gorm options: list by debate: %w", err)
	}
	return options, nil
}

func (r *OptionRepository) ListAdmin(ctx context.Context, filter domain.OptionListFilter) ([]domain.Option, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Option{})
	if filter.DebateID != "" {
		query = query.Where("debate_id = ?", filter.DebateID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm options: count admin: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var options []domain.Option
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&options).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm options: list admin: %w", err)
	}
	return options, total, nil
}

func (r *OptionRepository) Delete(ctx context.Context, id domain.OptionID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Option{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("gorm options: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OptionRepository) DeleteByDebate(ctx context.Context, debateID domain.DebateID) error {
	if err := r.db.WithContext(ctx).
		Delete(&domain.Option{}, "debate_id = ?", debateID).Error; err != nil {
		return fmt.Errorf("gorm options: delete by debate: %w", err)
	}
	return nil
}

func (r *OptionRepository) AddVotes(ctx context.Context, id domain.OptionID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&domain.Option{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error; err != nil {
		return fmt.Errorf("gorm options: add votes: %w", err)
	}
	return nil
}

func (r *OptionRepository) SetVotes(ctx context.Context, id domain.OptionID, votes int64) error {
	if err := r.db.WithContext(ctx).Model(&domain.Option{}).
		Where("id = ?", id).
		UpdateColumn("votes", votes).Error; err != nil {
		return fmt.Errorf("gorm options: set votes: %w", err)
	}
	return nil
}

var _ domain.OptionRepository = (*OptionRepository)(nil)
