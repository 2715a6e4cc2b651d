// Package domain holds the Letsettle entities and the ports the
// application services depend on.
package domain

import (
	"time"
)

type (
	DebateID string
	OptionID string
	VoteID   string
)

// DebateStatus is the moderation state of a debate. Only approved debates
// are ever shown on public surfaces.
type DebateStatus string

const (
	StatusPending  DebateStatus = "pending"
	StatusApproved DebateStatus = "approved"
	StatusRejected DebateStatus = "rejected"
)

func (s DebateStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Debate struct {
	ID                 DebateID     `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Slug               string       `gorm:"column:slug;type:text;not null;uniqueIndex:idx_debates_slug" json:"slug"`
	Title              string       `gorm:"column:title;type:text;not null" json:"title"`
	Description        string       `gorm:"column:description;type:text" json:"description,omitempty"`
	Category           string       `gorm:"column:category;type:text;not null;index:idx_debates_category" json:"category"`
	SubCategory        string       `gorm:"column:sub_category;type:text" json:"sub_category,omitempty"`
	TotalVotes         int64        `gorm:"column:total_votes;not null;default:0" json:"total_votes"`
	IsActive           bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	MoreOptionsAllowed bool         `gorm:"column:more_options_allowed;not null;default:true" json:"more_options_allowed"`
	Status             DebateStatus `gorm:"column:status;type:text;not null;default:pending;index:idx_debates_status" json:"status"`
	RejectionReason    string       `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CreatedBy          string       `gorm:"column:created_by;type:text" json:"-"`
	Tags               []string     `gorm:"column:tags;type:text;serializer:json" json:"tags,omitempty"`
	Views              int64        `gorm:"column:views;not null;default:0" json:"views"`
	Options            []Option     `gorm:"foreignKey:DebateID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt          time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

type Option struct {
	ID        OptionID  `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	DebateID  DebateID  `gorm:"column:debate_id;type:char(26);not null;index:idx_options_debate" json:"debate_id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Votes     int64     `gorm:"column:votes;not null;default:0" json:"votes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

/// Vote is the ledger row: at most one per (debate, identity). It is
// updated in place on a vote change and survives debate deletion as an
// audit record. The two unique indexes are the backstop for requests that
// race past the application-level duplicate check.
type Vote struct {
	ID            VoteID    `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	DebateID      DebateID  `gorm:"column:debate_id;type:char(26);not null;uniqueIndex:idx_votes_debate_ip,priority:1;uniqueIndex:idx_votes_debate_fp,priority:1" json:"debate_id"`
	OptionID      OptionID  `gorm:"column:option_id;type:char(26);not null;index:idx_votes_option" json:"option_id"`
	IP            string    `gorm:"column:ip;type:text;not null;uniqueIndex:idx_votes_debate_ip,priority:2" json:"-"`
	FingerprintID string    `gorm:"column:fingerprint_id;type:text;not null;uniqueIndex:idx_votes_debate_fp,priority:2" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// Identity is the anonymous voter signal pair. Two requests belong to the
// same voter when either field matches. This is a heuristic against casual
// duplicate voting, not a security boundary.
type Identity struct {
	IP            string
	FingerprintID string
}

// Ballot is a vote submission after identity resolution.
type Ballot struct {
	DebateID DebateID
	OptionID OptionID
	Identity Identity
}

type VoteResult string

const (
	VoteCreated   VoteResult = "created"
	VoteUnchanged VoteResult = "unchanged"
	VoteChanged   VoteResult = "changed"
)

// VoteOutcome reports what the ledger did with a ballot. PreviousOptionID
// is set only when Result is VoteChanged.
type VoteOutcome struct {
	Result           VoteResult
	PreviousOptionID OptionID
}

// Review is the moderation gate verdict for a submission.
type Review struct {
	Status DebateStatus
	Tags   []string
}

// NewDebate carries a public debate submission into the catalog.
type NewDebate struct {
	Title              string
	Description        string
	Category           string
	SubCategory        string
	Options            []string
	MoreOptionsAllowed bool
	CreatedBy          string
}

// DebateUpdate is a partial admin edit; nil fields are left untouched.
type DebateUpdate struct {
	Title              *string
	Description        *string
	Category           *string
	SubCategory        *string
	IsActive           *bool
	MoreOptionsAllowed *bool
	Status             *DebateStatus
	RejectionReason    *string
}

type PublicListFilter struct {
	Category    string
	SubCategory string
	Limit       int
}

type AdminListFilter struct {
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int
}

type OptionListFilter struct {
	DebateID DebateID
	Page     int
	Limit    int
}

// DebateCard is a public listing entry with the leading options attached.
type DebateCard struct {
	Debate
	TopOptions []Option `json:"options"`
}

// DebateDetail is the full read model for a debate page.
type DebateDetail struct {
	Debate  Debate   `json:"debate"`
	Options []Option `json:"options"`
	Related []Debate `json:"related_debates,omitempty"`
}

type DebatePage struct {
	Debates    []Debate `json:"debates"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
}

type OptionPage struct {
	Options    []Option `json:"options"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
}

// ViewEvent is queued when a debate page is served and folded into the
// view counter by the worker.
type ViewEvent struct {
	DebateID DebateID  `json:"debate_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

func (Debate) TableName() string { return "debates" }

func (Option) TableName() string { return "options" }

func (Vote) TableName() string { return "votes" }
