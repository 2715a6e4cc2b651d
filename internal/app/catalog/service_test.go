package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/ids"
)

func TestSubmitApprovedDebate(t *testing.T) {
	deps := newCatalogDeps(t)
	deps.moderator.review = domain.Review{Status: domain.StatusApproved, Tags: []string{"football"}}
	service := deps.service()

	debate, err := service.Submit(context.Background(), domain.NewDebate{
		Title:              "Who is the greatest footballer?",
		Description:        "Settle it once and for all.",
		Category:           "Sports",
		Options:            []string{"Messi", "Ronaldo"},
		MoreOptionsAllowed: true,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if debate.Slug != "who-is-the-greatest-footballer" {
		t.Fatalf("unexpected slug %q", debate.Slug)
	}
	if debate.Status != domain.StatusApproved {
		t.Fatalf("expected approved status, got %q", debate.Status)
	}
	if len(debate.Tags) != 1 || debate.Tags[0] != "football" {
		t.Fatalf("expected moderation tags to be stored, got %v", debate.Tags)
	}
	if len(debate.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(debate.Options))
	}
	if !debate.IsActive {
		t.Fatal("new debates should start active")
	}

	stored, err := deps.debates.FindBySlug(context.Background(), debate.Slug)
	if err != nil {
		t.Fatalf("debate was not persisted: %v", err)
	}
	if stored.ID != debate.ID {
		t.Fatalf("persisted id mismatch: %s vs %s", stored.ID, debate.ID)
	}
}

func TestSubmitDuplicateSlug(t *testing.T) {
	deps := newCatalogDeps(t)
	service := deps.service()
	ctx := context.Background()

	sub := domain.NewDebate{
		Title:    "Who is the greatest footballer?",
		Category: "Sports",
		Options:  []string{"Messi", "Ronaldo"},
	}
	if _, err := service.Submit(ctx, sub); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	if _, err := service.Submit(ctx, sub); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got: %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	deps := newCatalogDeps(t)
	service := deps.service()
	ctx := context.Background()

	cases := []struct {
		name string
		sub  domain.NewDebate
	}{
		{"missing category", domain.NewDebate{Title: "A valid title here", Options: []string{"One", "Two"}}},
		{"short title", domain.NewDebate{Title: "Short", Category: "Misc", Options: []string{"One", "Two"}}},
		{"single option", domain.NewDebate{Title: "A valid title here", Category: "Misc", Options: []string{"One"}}},
		{"spam title", domain.NewDebate{Title: "Buy now greatest debates", Category: "Misc", Options: []string{"One", "Two"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Submit(ctx, tc.sub); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got: %v", err)
			}
		})
	}

	if len(deps.debates.byID) != 0 {
		t.Fatal("rejected submissions must not be persisted")
	}
}

func TestSubmitHoldsWhenModerationFails(t *testing.T) {
	deps := newCatalogDeps(t)
	deps.moderator.err = errors.New("analysis backend down")
	service := deps.service()

	debate, err := service.Submit(context.Background(), domain.NewDebate{
		Title:    "Who is the greatest footballer?",
		Category: "Sports",
		Options:  []string{"Messi", "Ronaldo"},
	})
	if err != nil {
		t.Fatalf("submit should fall back to pending, got: %v", err)
	}
	if debate.Status != domain.StatusPending {
		t.Fatalf("expected pending fallback, got %q", debate.Status)
	}
}

func TestSubmitRejectedByModeration(t *testing.T) {
	deps := newCatalogDeps(t)
	deps.moderator.review = domain.Review{Status: domain.StatusRejected}
	service := deps.service()

	debate, err := service.Submit(context.Background(), domain.NewDebate{
		Title:    "Who is the greatest footballer?",
		Category: "Sports",
		Options:  []string{"Messi", "Ronaldo"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if debate.Status != domain.StatusRejected {
		t.Fatalf("expected rejected status to be stored, got %q", debate.Status)
	}
}

func TestGetBySlugPublishesViewEvent(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusApproved, true)
	service := deps.service()

	detail, err := service.GetBySlug(context.Background(), debate.Slug)
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if detail.Debate.ID != debate.ID {
		t.Fatalf("unexpected debate %s", detail.Debate.ID)
	}
	if len(deps.queue.events) != 1 {
		t.Fatalf("expected exactly 1 queued view event, got %d", len(deps.queue.events))
	}
	if deps.queue.events[0].DebateID != debate.ID {
		t.Fatalf("view event points at wrong debate: %s", deps.queue.events[0].DebateID)
	}
}

func TestGetBySlugHidesUnpublished(t *testing.T) {
	deps := newCatalogDeps(t)
	pending := deps.seedDebate(domain.StatusPending, true)
	inactive := deps.seedDebate(domain.StatusApproved, false)
	service := deps.service()
	ctx := context.Background()

	if _, err := service.GetBySlug(ctx, pending.Slug); !errors.Is(err, ErrDebateNotFound) {
		t.Fatalf("pending debate must be invisible, got: %v", err)
	}
	if _, err := service.GetBySlug(ctx, inactive.Slug); !errors.Is(err, ErrDebateNotFound) {
		t.Fatalf("inactive debate must be invisible, got: %v", err)
	}
	if len(deps.queue.events) != 0 {
		t.Fatal("hidden debates must not queue view events")
	}
}

func TestAddOption(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusApproved, true)
	service := deps.service()
	ctx := context.Background()

	option, err := service.AddOption(ctx, debate.ID, "  Neymar  ")
	if err != nil {
		t.Fatalf("add option failed: %v", err)
	}
	if option.Name != "Neymar" {
		t.Fatalf("expected trimmed name, got %q", option.Name)
	}

	// Same name in a different case is the same option.
	if _, err := service.AddOption(ctx, debate.ID, "NEYMAR"); !errors.Is(err, ErrDuplicateOption) {
		t.Fatalf("expected ErrDuplicateOption, got: %v", err)
	}
}

func TestAddOptionOnLockedDebate(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusApproved, true)
	locked := deps.debates.byID[debate.ID]
	locked.MoreOptionsAllowed = false
	deps.debates.byID[debate.ID] = locked
	service := deps.service()

	if _, err := service.AddOption(context.Background(), debate.ID, "Neymar"); !errors.Is(err, ErrOptionsLocked) {
		t.Fatalf("expected ErrOptionsLocked, got: %v", err)
	}
}

func TestAddOptionUnknownDebate(t *testing.T) {
	deps := newCatalogDeps(t)
	service := deps.service()

	if _, err := service.AddOption(context.Background(), "missing", "Neymar"); !errors.Is(err, ErrDebateNotFound) {
		t.Fatalf("expected ErrDebateNotFound, got: %v", err)
	}
}

func TestApproveAndRejectDebate(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusPending, true)
	service := deps.service()
	ctx := context.Background()

	approved, err := service.ApproveDebate(ctx, debate.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %q", approved.Status)
	}

	rejected, err := service.RejectDebate(ctx, debate.ID, "")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}
	if rejected.RejectionReason != "Rejected by admin" {
		t.Fatalf("expected default rejection reason, got %q", rejected.RejectionReason)
	}
}

func TestUpdateDebateRejectsUnknownStatus(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusPending, true)
	service := deps.service()

	bogus := domain.DebateStatus("archived")
	_, err := service.UpdateDebate(context.Background(), debate.ID, domain.DebateUpdate{Status: &bogus})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}
}

func TestDeleteDebateCascadesToOptions(t *testing.T) {
	deps := newCatalogDeps(t)
	debate := deps.seedDebate(domain.StatusApproved, true)
	service := deps.service()
	ctx := context.Background()

	if err := service.DeleteDebate(ctx, debate.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := deps.debates.byID[debate.ID]; ok {
		t.Fatal("debate should be gone")
	}
	for _, o := range deps.options.byID {
		if o.DebateID == debate.ID {
			t.Fatalf("option %s should have been removed with the debate", o.ID)
		}
	}

	if err := service.DeleteDebate(ctx, debate.ID); !errors.Is(err, ErrDebateNotFound) {
		t.Fatalf("expected ErrDebateNotFound on repeat delete, got: %v", err)
	}
}

func TestAdminListDebatesPagination(t *testing.T) {
	deps := newCatalogDeps(t)
	deps.debates.adminTotal = 101
	service := deps.service()

	page, err := service.AdminListDebates(context.Background(), domain.AdminListFilter{Page: 2, Limit: 50})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if page.Total != 101 {
		t.Fatalf("expected total 101, got %d", page.Total)
	}
	if page.Page != 2 {
		t.Fatalf("expected page 2, got %d", page.Page)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
}

// === test doubles ===

type catalogDeps struct {
	debates   *catDebateRepo
	options   *catOptionRepo
	moderator *stubModerator
	queue     *memQueue
	clock     stubClock
	idGen     *ids.Generator
}

func newCatalogDeps(t *testing.T) *catalogDeps {
	t.Helper()
	return &catalogDeps{
		debates:   &catDebateRepo{byID: map[domain.DebateID]domain.Debate{}},
		options:   &catOptionRepo{byID: map[domain.OptionID]domain.Option{}},
		moderator: &stubModerator{review: domain.Review{Status: domain.StatusApproved}},
		queue:     &memQueue{},
		clock:     stubClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		idGen:     ids.NewGenerator(),
	}
}

func (d *catalogDeps) service() *Service {
	return NewService(d.debates, d.options, d.moderator, d.queue, d.clock, d.idGen, nil)
}

func (d *catalogDeps) seedDebate(status domain.DebateStatus, active bool) domain.Debate {
	id := domain.DebateID(d.idGen.New())
	debate := domain.Debate{
		ID:                 id,
		Slug:               "seed-" + strings.ToLower(string(id)),
		Title:              "Seeded debate " + string(id),
		Category:           "Sports",
		IsActive:           active,
		MoreOptionsAllowed: true,
		Status:             status,
	}
	d.debates.byID[id] = debate

	for _, name := range []string{"Messi", "Ronaldo"} {
		option := domain.Option{ID: domain.OptionID(d.idGen.New()), DebateID: id, Name: name}
		d.options.byID[option.ID] = option
	}
	return debate
}

type catDebateRepo struct {
	byID       map[domain.DebateID]domain.Debate
	adminTotal int64
}

func (m *catDebateRepo) Create(_ context.Context, d domain.Debate) error {
	for _, existing := range m.byID {
		if existing.Slug == d.Slug {
			return domain.ErrDuplicate
		}
	}
	m.byID[d.ID] = d
	return nil
}

func (m *catDebateRepo) Update(_ context.Context, id domain.DebateID, fields map[string]any) error {
	d, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case "title":
			d.Title = value.(string)
		case "description":
			d.Description = value.(string)
		case "category":
			d.Category = value.(string)
		case "sub_category":
			d.SubCategory = value.(string)
		case "is_active":
			d.IsActive = value.(bool)
		case "more_options_allowed":
			d.MoreOptionsAllowed = value.(bool)
		case "status":
			d.Status = value.(domain.DebateStatus)
		case "rejection_reason":
			d.RejectionReason = value.(string)
		}
	}
	m.byID[id] = d
	return nil
}

func (m *catDebateRepo) FindByID(_ context.Context, id domain.DebateID) (domain.Debate, error) {
	d, ok := m.byID[id]
	if !ok {
		return domain.Debate{}, domain.ErrNotFound
	}
	return d, nil
}

func (m *catDebateRepo) FindBySlug(_ context.Context, slug string) (domain.Debate, error) {
	for _, d := range m.byID {
		if d.Slug == slug {
			return d, nil
		}
	}
	return domain.Debate{}, domain.ErrNotFound
}

func (m *catDebateRepo) ListPublic(_ context.Context, filter domain.PublicListFilter) ([]domain.Debate, error) {
	var out []domain.Debate
	for _, d := range m.byID {
		if d.Status == domain.StatusApproved && d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *catDebateRepo) ListAdmin(_ context.Context, filter domain.AdminListFilter) ([]domain.Debate, int64, error) {
	var out []domain.Debate
	for _, d := range m.byID {
		out = append(out, d)
	}
	total := m.adminTotal
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (m *catDebateRepo) ListRelated(_ context.Context, debate domain.Debate, limit int) ([]domain.Debate, error) {
	var out []domain.Debate
	for _, d := range m.byID {
		if d.ID != debate.ID && d.Category == debate.Category && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *catDebateRepo) ListIDs(context.Context) ([]domain.DebateID, error) {
	var ids []domain.DebateID
	for id := range m.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *catDebateRepo) Delete(_ context.Context, id domain.DebateID) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *catDebateRepo) AddTotalVotes(_ context.Context, id domain.DebateID, delta int64) error {
	if d, ok := m.byID[id]; ok {
		d.TotalVotes += delta
		m.byID[id] = d
	}
	return nil
}

func (m *catDebateRepo) SetTotalVotes(_ context.Context, id domain.DebateID, total int64) error {
	if d, ok := m.byID[id]; ok {
		d.TotalVotes = total
		m.byID[id] = d
	}
	return nil
}

func (m *catDebateRepo) AddViews(_ context.Context, id domain.DebateID, delta int64) error {
	if d, ok := m.byID[id]; ok {
		d.Views += delta
		m.byID[id] = d
	}
	return nil
}

type catOptionRepo struct {
	byID map[domain.OptionID]domain.Option
}

func (m *catOptionRepo) Create(_ context.Context, o domain.Option) error {
	m.byID[o.ID] = o
	return nil
}

func (m *catOptionRepo) BulkCreate(_ context.Context, debateID domain.DebateID, options []domain.Option) error {
	for _, o := range options {
		m.byID[o.ID] = o
	}
	return nil
}

func (m *catOptionRepo) FindByID(_ context.Context, id domain.OptionID) (domain.Option, error) {
	o, ok := m.byID[id]
	if !ok {
		return domain.Option{}, domain.ErrNotFound
	}
	return o, nil
}

func (m *catOptionRepo) FindByName(_ context.Context, debateID domain.DebateID, name string) (domain.Option, error) {
	for _, o := range m.byID {
		if o.DebateID == debateID && strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	return domain.Option{}, domain.ErrNotFound
}

func (m *catOptionRepo) ListByDebate(_ context.Context, debateID domain.DebateID) ([]domain.Option, error) {
	var out []domain.Option
	for _, o := range m.byID {
		if o.DebateID == debateID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *catOptionRepo) ListAdmin(context.Context, domain.OptionListFilter) ([]domain.Option, int64, error) {
	return nil, 0, nil
}

func (m *catOptionRepo) Delete(_ context.Context, id domain.OptionID) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *catOptionRepo) DeleteByDebate(_ context.Context, debateID domain.DebateID) error {
	for id, o := range m.byID {
		if o.DebateID == debateID {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *catOptionRepo) AddVotes(_ context.Context, id domain.OptionID, delta int64) error {
	if o, ok := m.byID[id]; ok {
		o.Votes += delta
		m.byID[id] = o
	}
	return nil
}

func (m *catOptionRepo) SetVotes(_ context.Context, id domain.OptionID, votes int64) error {
	if o, ok := m.byID[id]; ok {
		o.Votes = votes
		m.byID[id] = o
	}
	return nil
}

type stubModerator struct {
	review domain.Review
	err    error
}

func (s *stubModerator) Analyze(context.Context, string, string, []string) (domain.Review, error) {
	if s.err != nil {
		return domain.Review{}, s.err
	}
	return s.review, nil
}

type memQueue struct {
	events []domain.ViewEvent
}

func (m *memQueue) PublishView(_ context.Context, event domain.ViewEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memQueue) ConsumeViews(ctx context.Context, handler func(context.Context, domain.ViewEvent) error) error {
	for _, event := range m.events {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
