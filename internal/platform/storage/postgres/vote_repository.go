package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/letsettle/letsettle/internal/domain"
)

// VoteRepository stores the vote ledger and exposes the aggregate counts
// the reconciler derives tallies from.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) FindByIdentity(ctx context.Context, debateID domain.DebateID, identity domain.Identity) (domain.Vote, error) {
	var v domain.Vote
	// Inclusive-or identity match: either signal alone marks a returning
	// voter. The DB backstop constraints are stricter (two unique pairs);
	// they only fire on races this lookup already classifies.
	if err := r.db.WithContext(ctx).
		Where("debate_id = ? AND (ip = ? OR fingerprint_id = ?)",
			debateID, identity.IP, identity.FingerprintID).
		First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, fmt.Errorf("gorm votes: find by identity: %w", err)
	}
	return v, nil
}

func (r *VoteRepository) Create(ctx context.Context, v domain.Vote) error {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("gorm votes: insert: %w", err)
	}
	return nil
}

func (r *VoteRepository) UpdateOption(ctx context.Context, id domain.VoteID, optionID domain.OptionID) error {
	res := r.db.WithContext(ctx).Model(&domain.Vote{}).
		Where("id = ?", id).
		UpdateColumn("option_id", optionID)
	if res.Error != nil {
		return fmt.Errorf("gorm votes: update option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VoteRepository) CountByDebate(ctx context.Context, debateID domain.DebateID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("debate_id = ?", debateID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm votes: count by debate: %w", err)
	}
	return total, nil
}

func (r *VoteRepository) CountByOption(ctx context.Context, debateID domain.DebateID) (map[domain.OptionID]int64, error) {
	type row struct {
		OptionID string
		Total    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Select("option_id as option_id, COUNT(*) as total").
		Where("debate_id = ?", debateID).
		Group("option_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: count by option: %w", err)
	}

	totals := make(map[domain.OptionID]int64, len(rows))
	for _, item := range rows {
		totals[domain.OptionID(item.OptionID)] = item.Total
	}
	return totals, nil
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
