package domain

import (
	"context"
	"time"
)

type DebateRepository interface {
	Create(ctx context.Context, d Debate) error
	Update(ctx context.Context, id DebateID, fields map[string]any) error
	FindByID(ctx context.Context, id DebateID) (Debate, error)
	FindBySlug(ctx context.Context, slug string) (Debate, error)
	ListPublic(ctx context.Context, filter PublicListFilter) ([]Debate, error)
	ListAdmin(ctx context.Context, filter AdminListFilter) ([]Debate, int64, error)
	ListRelated(ctx context.Context, d Debate, limit int) ([]Debate, error)
	ListIDs(ctx context.Context) ([]DebateID, error)
	Delete(ctx context.Context, id DebateID) error
	AddTotalVotes(ctx context.Context, id DebateID, delta int64) error
	SetTotalVotes(ctx context.Context, id DebateID, total int64) error
	AddViews(ctx context.Context, id DebateID, delta int64) error
}

type OptionRepository interface {
	Create(ctx context.Context, o Option) error
	BulkCreate(ctx context.Context, debateID DebateID, options []Option) error
	FindByID(ctx context.Context, id OptionID) (Option, error)
	// FindByName matches the option name case-insensitively within a debate.
	FindByName(ctx context.Context, debateID DebateID, name string) (Option, error)
	ListByDebate(ctx context.Context, debateID DebateID) ([]Option, error)
	ListAdmin(ctx context.Context, filter OptionListFilter) ([]Option, int64, error)
	Delete(ctx context.Context, id OptionID) error
	DeleteByDebate(ctx context.Context, debateID DebateID) error
	AddVotes(ctx context.Context, id OptionID, delta int64) error
	SetVotes(ctx context.Context, id OptionID, votes int64) error
}

type VoteRepository interface {
	// FindByIdentity returns the existing vote for a debate whose IP or
	// fingerprint matches the given identity (inclusive or).
	FindByIdentity(ctx context.Context, debateID DebateID, identity Identity) (Vote, error)
	Create(ctx context.Context, v Vote) error
	UpdateOption(ctx context.Context, id VoteID, optionID OptionID) error
	CountByDebate(ctx context.Context, debateID DebateID) (int64, error)
	CountByOption(ctx context.Context, debateID DebateID) (map[OptionID]int64, error)
}

// Counter is an atomic key/value counter (Redis in production).
type Counter interface {
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	GetAll(ctx context.Context, keys []string) (map[string]int64, error)
}

// EventQueue transports view events from the API to the worker.
type EventQueue interface {
	PublishView(ctx context.Context, event ViewEvent) error
	ConsumeViews(ctx context.Context, handler func(context.Context, ViewEvent) error) error
}

// Moderator is the opaque content-analysis collaborator. Implementations
// may be a rules engine, an external service, or a stub.
type Moderator interface {
	Analyze(ctx context.Context, title, description string, options []string) (Review, error)
}

// RateLimiter throttles vote submissions per identity.
type RateLimiter interface {
	Check(ctx context.Context, b Ballot) error
}

type Clock interface {
	Now() time.Time
}

type VotingService interface {
	Cast(ctx context.Context, b Ballot) (VoteOutcome, error)
}

type CatalogService interface {
	Submit(ctx context.Context, sub NewDebate) (Debate, error)
	ListPublic(ctx context.Context, filter PublicListFilter) ([]DebateCard, error)
	GetBySlug(ctx context.Context, slug string) (DebateDetail, error)
	AddOption(ctx context.Context, debateID DebateID, name string) (Option, error)

	AdminListDebates(ctx context.Context, filter AdminListFilter) (DebatePage, error)
	AdminGetDebate(ctx context.Context, id DebateID) (DebateDetail, error)
	UpdateDebate(ctx context.Context, id DebateID, update DebateUpdate) (Debate, error)
	ApproveDebate(ctx context.Context, id DebateID) (Debate, error)
	RejectDebate(ctx context.Context, id DebateID, reason string) (Debate, error)
	DeleteDebate(ctx context.Context, id DebateID) error
	AdminListOptions(ctx context.Context, filter OptionListFilter) (OptionPage, error)
	DeleteOption(ctx context.Context, id OptionID) error
}
