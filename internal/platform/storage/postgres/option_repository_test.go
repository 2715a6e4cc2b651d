package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/ids"
)

func seedDebateWithOptions(t *testing.T, repo *DebateRepository, options *OptionRepository, gen *ids.Generator, names ...string) (domain.Debate, []domain.Option) {
	t.Helper()
	ctx := context.Background()

	debate := newTestDebate(gen, "seed-"+gen.New(), domain.StatusApproved)
	require.NoError(t, repo.Create(ctx, debate))

	rows := make([]domain.Option, len(names))
	base := time.Now().UTC()
	for i, name := range names {
		rows[i] = domain.Option{
			ID:        domain.OptionID(gen.New()),
			DebateID:  debate.ID,
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	require.NoError(t, options.BulkCreate(ctx, debate.ID, rows))
	return debate, rows
}

func TestOptionRepository_BulkCreateAndList(t *testing.T) {
	db := setupPostgres(t)
	debates := NewDebateRepository(db)
	repo := NewOptionRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	debate, seeded := seedDebateWithOptions(t, debates, repo, gen, "Messi", "Ronaldo", "Neymar")

	require.NoError(t, repo.AddVotes(ctx, seeded[2].ID, 10))

	options, err := repo.ListByDebate(ctx, debate.ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "Neymar", options[0].Name, "most voted option comes first")
}

func TestOptionRepository_FindByName_CaseInsensitive(t *testing.T) {
	db := setupPostgres(t)
	debates := NewDebateRepository(db)
	repo := NewOptionRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	debate, _ := seedDebateWithOptions(t, debates, repo, gen, "Messi", "Ronaldo")

	found, err := repo.FindByName(ctx, debate.ID, "mEsSi")
	require.NoError(t, err)
	assert.Equal(t, "Messi", found.Name)

	_, err = repo.FindByName(ctx, debate.ID, "Neymar")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The match is scoped to the debate.
	other, _ := seedDebateWithOptions(t, debates, repo, gen, "Pele", "Maradona")
	_, err = repo.FindByName(ctx, other.ID, "Messi")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOptionRepository_VoteCounters(t *testing.T) {
	db := setupPostgres(t)
	debates := NewDebateRepository(db)
	repo := NewOptionRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	_, seeded := seedDebateWithOptions(t, debates, repo, gen, "Messi", "Ronaldo")
	target := seeded[0].ID

	require.NoError(t, repo.AddVotes(ctx, target, 1))
	require.NoError(t, repo.AddVotes(ctx, target, 1))
	require.NoError(t, repo.AddVotes(ctx, target, -1))

	option, err := repo.FindByID(ctx, target)
	require.NoError(t, err)
	assert.EqualValues(t, 1, option.Votes)

	require.NoError(t, repo.SetVotes(ctx, target, 9))
	option, err = repo.FindByID(ctx, target)
	require.NoError(t, err)
	assert.EqualValues(t, 9, option.Votes)
}

func TestOptionRepository_Delete(t *testing.T) {
	db := setupPostgres(t)
	debates := NewDebateRepository(db)
	repo := NewOptionRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	debate, seeded := seedDebateWithOptions(t, debates, repo, gen, "Messi", "Ronaldo")

	require.NoError(t, repo.Delete(ctx, seeded[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, seeded[0].ID), domain.ErrNotFound)

	require.NoError(t, repo.DeleteByDebate(ctx, debate.ID))
	options, err := repo.ListByDebate(ctx, debate.ID)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestOptionRepository_ListAdmin(t *testing.T) {
	db := setupPostgres(t)
	debates := NewDebateRepository(db)
	repo := NewOptionRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	debate, _ := seedDebateWithOptions(t, debates, repo, gen, "Messi", "Ronaldo", "Neymar")
	seedDebateWithOptions(t, debates, repo, gen, "Pele", "Maradona")

	options, total, err := repo.ListAdmin(ctx, domain.OptionListFilter{DebateID: debate.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, options, 3)

	options, total, err = repo.ListAdmin(ctx, domain.OptionListFilter{Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, options, 4)
}
