// Package httpapi exposes the REST handlers and translates HTTP requests
// into the voting and catalog services.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/letsettle/letsettle/internal/app/catalog"
	"github.com/letsettle/letsettle/internal/app/voting"
	"github.com/letsettle/letsettle/internal/domain"
	"github.com/letsettle/letsettle/internal/platform/adminauth"
	"github.com/letsettle/letsettle/internal/platform/metrics"
	"github.com/letsettle/letsettle/internal/platform/ratelimit"
)

// API bundles the HTTP handlers bound to the services and the logger.
type API struct {
	voting  domain.VotingService
	catalog domain.CatalogService
	auth    *adminauth.Authenticator
	logger  *slog.Logger
}

func New(votingSvc domain.VotingService, catalogSvc domain.CatalogService, auth *adminauth.Authenticator, logger *slog.Logger) *API {
	return &API{voting: votingSvc, catalog: catalogSvc, auth: auth, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	// Routes stay centralized so tests and alternate servers can reuse them.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/votes", a.handleVotes)
	mux.HandleFunc("/api/debates", a.handleDebates)
	mux.HandleFunc("/api/debates/", a.handleDebateBySlug)
	mux.HandleFunc("/api/options", a.handleOptions)
	mux.HandleFunc("/api/admin/auth", a.handleAdminAuth)
	mux.HandleFunc("/api/admin/debates", a.handleAdminDebates)
	mux.HandleFunc("/api/admin/debates/", a.handleAdminDebateByID)
	mux.HandleFunc("/api/admin/options", a.handleAdminOptions)
	mux.HandleFunc("/api/admin/options/", a.handleAdminOptionByID)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// clientIP resolves the voter network address: first X-Forwarded-For
// entry, else the transport peer, else loopback. No format validation.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if r.RemoteAddr != "" {
		return strings.Split(r.RemoteAddr, ":")[0]
	}
	return "127.0.0.1"
}

type voteRequest struct {
	DebateID      string `json:"debate_id"`
	OptionID      string `json:"option_id"`
	FingerprintID string `json:"fingerprint_id"`
}

func (a *API) handleVotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.logger.Warn("invalid vote payload", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if req.DebateID == "" || req.OptionID == "" || req.FingerprintID == "" {
		// Rejected before any identity lookup or database access.
		metrics.ObserveVoteRequest("missing_fields")
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		return
	}

	ballot := domain.Ballot{
		DebateID: domain.DebateID(req.DebateID),
		OptionID: domain.OptionID(req.OptionID),
		Identity: domain.Identity{
			IP:            clientIP(r),
			FingerprintID: req.FingerprintID,
		},
	}

	outcome, err := a.voting.Cast(r.Context(), ballot)
	if err != nil {
		status := voteStatusFromError(err)
		metrics.ObserveVoteRequest(status)
		a.logger.Warn("vote rejected", "err", err, "debate", req.DebateID, "option", req.OptionID, "status", status)
		a.respondError(w, err)
		return
	}

	metrics.ObserveVoteRequest(string(outcome.Result))
	switch outcome.Result {
	case domain.VoteCreated:
		respondJSON(w, http.StatusCreated, map[string]any{
			"success":   true,
			"is_change": false,
		})
	case domain.VoteUnchanged:
		respondJSON(w, http.StatusOK, map[string]any{
			"message":   "Already voted for this option",
			"is_change": false,
		})
	case domain.VoteChanged:
		respondJSON(w, http.StatusOK, map[string]any{
			"success":            true,
			"is_change":          true,
			"previous_option_id": string(outcome.PreviousOptionID),
		})
	}
	a.logger.Info("vote recorded", "debate", req.DebateID, "option", req.OptionID, "result", outcome.Result)
}

type debateRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	SubCategory        string   `json:"sub_category"`
	Options            []string `json:"options"`
	MoreOptionsAllowed *bool    `json:"is_more_option_allowed"`
}

func (a *API) handleDebates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listDebates(w, r)
	case http.MethodPost:
		a.submitDebate(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) listDebates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.PublicListFilter{
		Category:    query.Get("category"),
		SubCategory: query.Get("sub_category"),
		Limit:       intParam(query.Get("limit"), 10),
	}

	cards, err := a.catalog.ListPublic(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list debates", "err", err)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (a *API) submitDebate(w http.ResponseWriter, r *http.Request) {
	var req debateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.logger.Warn("invalid debate payload", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	moreAllowed := true
	if req.MoreOptionsAllowed != nil {
		moreAllowed = *req.MoreOptionsAllowed
	}

	debate, err := a.catalog.Submit(r.Context(), domain.NewDebate{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		SubCategory:        req.SubCategory,
		Options:            req.Options,
		MoreOptionsAllowed: moreAllowed,
		CreatedBy:          clientIP(r),
	})
	if err != nil {
		metrics.ObserveDebateSubmission("rejected_input")
		a.logger.Warn("debate submission rejected", "err", err)
		a.respondError(w, err)
		return
	}

	metrics.ObserveDebateSubmission(string(debate.Status))
	a.logger.Info("debate submitted", "slug", debate.Slug, "status", debate.Status)
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"slug":    debate.Slug,
		"status":  debate.Status,
		"message": "Debate submitted successfully",
	})
}

func (a *API) handleDebateBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/debates/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}

	detail, err := a.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

type optionRequest struct {
	DebateID string `json:"debate_id"`
	Name     string `json:"name"`
}

func (a *API) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.DebateID == "" || req.Name == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		return
	}

	option, err := a.catalog.AddOption(r.Context(), domain.DebateID(req.DebateID), req.Name)
	if err != nil {
		a.logger.Warn("option rejected", "err", err, "debate", req.DebateID)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, option)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (a *API) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, voting.ErrInvalidBallot):
		status = http.StatusBadRequest
	case errors.Is(err, adminauth.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, voting.ErrAlreadyVoted):
		status = http.StatusForbidden
	case errors.Is(err, voting.ErrDebateNotFound), errors.Is(err, voting.ErrOptionNotFound),
		errors.Is(err, catalog.ErrDebateNotFound), errors.Is(err, catalog.ErrOptionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrSlugTaken), errors.Is(err, catalog.ErrDuplicateOption),
		errors.Is(err, catalog.ErrOptionsLocked):
		status = http.StatusConflict
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}

	if status == http.StatusInternalServerError {
		respondJSON(w, status, map[string]string{"error": "server error"})
		return
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func voteStatusFromError(err error) string {
	switch {
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, voting.ErrAlreadyVoted):
		return "duplicate"
	case errors.Is(err, voting.ErrInvalidBallot):
		return "invalid"
	case errors.Is(err, voting.ErrDebateNotFound), errors.Is(err, voting.ErrOptionNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
