package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/letsettle/letsettle/internal/domain"
)

// DebateRepository maps the debate aggregate onto GORM.
type DebateRepository struct {
	db *gorm.DB
}

func NewDebateRepository(db *gorm.DB) *DebateRepository {
	return &DebateRepository{db: db}
}

func (r *DebateRepository) Create(ctx context.Context, d domain.Debate) error {
	if err := r.db.WithContext(ctx).Omit("Options").Create(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("gorm debates: insert: %w", err)
	}
	return nil
}

func (r *DebateRepository) Update(ctx context.Context, id domain.DebateID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Debate{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("gorm debates: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DebateRepository) FindByID(ctx context.Context, id domain.DebateID) (domain.Debate, error) {
	var d domain.Debate
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Debate{}, domain.ErrNotFound
		}
		return domain.Debate{}, fmt.Errorf("gorm debates: find by id: %w", err)
	}
	return d, nil
}

func (r *DebateRepository) FindBySlug(ctx context.Context, slug string) (domain.Debate, error) {
	var d domain.Debate
	if err := r.db.WithContext(ctx).First(&d, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Debate{}, domain.ErrNotFound
		}
		return domain.Debate{}, fmt.Errorf("gorm debates: find by slug: %w", err)
	}
	return d, nil
}

func (r *DebateRepository) ListPublic(ctx context.Context, filter domain.PublicListFilter) ([]domain.Debate, error) {
	// Public surfaces only ever see approved, active debates.
	query := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ?", domain.StatusApproved, true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SubCategory != "" {
		query = query.Where("sub_category = ?", filter.SubCategory)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var debates []domain.Debate
	if err := query.
		Order("total_votes DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&debates).Error; err != nil {
		return nil, fmt.Errorf("gorm debates: list public: %w", err)
	}
	return debates, nil
}

func (r *DebateRepository) ListAdmin(ctx context.Context, filter domain.AdminListFilter) ([]domain.Debate, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Debate{})

	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm debates: count admin: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var debates []domain.Debate
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&debates).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm debates: list admin: %w", err)
	}
	return debates, total, nil
}

func (r *DebateRepository) ListRelated(ctx context.Context, d domain.Debate, limit int) ([]domain.Debate, error) {
	if limit <= 0 {
		limit = 4
	}

	// Tags are stored as a JSON array in a text column, so overlap is
	// approximated with LIKE on the quoted tag. Portable across Postgres
	// and the sqlite test driver.
	match := r.db.Where("category = ?", d.Category)
	for _, tag := range d.Tags {
		match = match.Or("tags LIKE ?", "%\""+tag+"\"%")
	}

	var related []domain.Debate
	if err := r.db.WithContext(ctx).
		Where("id <> ? AND status = ? AND is_active = ?", d.ID, domain.StatusApproved, true).
		Where(match).
		Order("total_votes DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&related).Error; err != nil {
		return nil, fmt.Errorf("gorm debates: list related: %w", err)
	}
	return related, nil
}

func (r *DebateRepository) ListIDs(ctx context.Context) ([]domain.DebateID, error) {
	var ids []domain.DebateID
	if err := r.db.WithContext(ctx).
		Model(&domain.Debate{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("gorm debates: list ids: %w", err)
	}
	return ids, nil
}

func (r *DebateRepository) Delete(ctx context.Context, id domain.DebateID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Debate{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("gorm debates: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DebateRepository) AddTotalVotes(ctx context.Context, id domain.DebateID, delta int64) error {
	// Single-row atomic add: never read-modify-write a counter.
	if err := r.db.WithContext(ctx).Model(&domain.Debate{}).
		Where("id = ?", id).
		UpdateColumn("total_votes", gorm.Expr("total_votes + ?", delta)).Error; err != nil {
		return fmt.Errorf("gorm debates: add total votes: %w", err)
	}
	return nil
}

func (r *DebateRepository) SetTotalVotes(ctx context.Context, id domain.DebateID, total int64) error {
	if err := r.db.WithContext(ctx).Model(&domain.Debate{}).
		Where("id = ?", id).
		UpdateColumn("total_votes", total).Error; err != nil {
		return fmt.Errorf("gorm debates: set total votes: %w", err)
	}
	return nil
}

func (r *DebateRepository) AddViews(ctx context.Context, id domain.DebateID, delta int64) error {
	if err := r.db.WithContext(ctx).Model(&domain.Debate{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", delta)).Error; err != nil {
		return fmt.Errorf("gorm debates: add views: %w", err)
	}
	return nil
}

var _ domain.DebateRepository = (*DebateRepository)(nil)
