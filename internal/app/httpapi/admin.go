package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/letsettle/letsettle/internal/domain"
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	token, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		a.logger.Warn("admin login failed", "username", req.Username)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token, "message": "Login successful"})
}

// requireAdmin gates an admin handler; it writes the 401 itself.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := a.auth.Require(r); err != nil {
		a.respondError(w, err)
		return false
	}
	return true
}

func (a *API) handleAdminDebates(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	filter := domain.AdminListFilter{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Page:     intParam(query.Get("page"), 1),
		Limit:    intParam(query.Get("limit"), 50),
	}

	page, err := a.catalog.AdminListDebates(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list debates for admin", "err", err)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

type adminDebateUpdateRequest struct {
	Title              *string              `json:"title"`
	Description        *string              `json:"description"`
	Category           *string              `json:"category"`
	SubCategory        *string              `json:"sub_category"`
	IsActive           *bool                `json:"is_active"`
	MoreOptionsAllowed *bool                `json:"is_more_option_allowed"`
	Status             *domain.DebateStatus `json:"status"`
	RejectionReason    *string              `json:"rejection_reason"`
}

func (a *API) handleAdminDebateByID(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/admin/debates/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := domain.DebateID(parts[0])

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		a.adminGetDebate(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodPatch:
		a.adminUpdateDebate(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		a.adminDeleteDebate(w, r, id)
	case len(parts) == 2 && parts[1] == "approve" && r.Method == http.MethodPost:
		a.adminApproveDebate(w, r, id)
	case len(parts) == 2 && parts[1] == "reject" && r.Method == http.MethodPost:
		a.adminRejectDebate(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) adminGetDebate(w http.ResponseWriter, r *http.Request, id domain.DebateID) {
	detail, err := a.catalog.AdminGetDebate(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (a *API) adminUpdateDebate(w http.ResponseWriter, r *http.Request, id domain.DebateID) {
	var req adminDebateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	debate, err := a.catalog.UpdateDebate(r.Context(), id, domain.DebateUpdate{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		SubCategory:        req.SubCategory,
		IsActive:           req.IsActive,
		MoreOptionsAllowed: req.MoreOptionsAllowed,
		Status:             req.Status,
		RejectionReason:    req.RejectionReason,
	})
	if err != nil {
		a.logger.Warn("admin debate update failed", "err", err, "debate", id)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "debate": debate})
}

func (a *API) adminDeleteDebate(w http.ResponseWriter, r *http.Request, id domain.DebateID) {
	if err := a.catalog.DeleteDebate(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.logger.Info("debate deleted", "debate", id)
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Debate and options deleted; vote records are retained",
	})
}

func (a *API) adminApproveDebate(w http.ResponseWriter, r *http.Request, id domain.DebateID) {
	debate, err := a.catalog.ApproveDebate(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.logger.Info("debate approved", "debate", id)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "debate": debate})
}

type adminRejectRequest struct {
	Reason string `json:"reason"`
}

func (a *API) adminRejectDebate(w http.ResponseWriter, r *http.Request, id domain.DebateID) {
	var req adminRejectRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	debate, err := a.catalog.RejectDebate(r.Context(), id, req.Reason)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.logger.Info("debate rejected", "debate", id, "reason", req.Reason)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "debate": debate})
}

func (a *API) handleAdminOptions(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	filter := domain.OptionListFilter{
		DebateID: domain.DebateID(query.Get("debate_id")),
		Page:     intParam(query.Get("page"), 1),
		Limit:    intParam(query.Get("limit"), 50),
	}

	page, err := a.catalog.AdminListOptions(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list options for admin", "err", err)
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (a *API) handleAdminOptionByID(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/admin/options/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	if err := a.catalog.DeleteOption(r.Context(), domain.OptionID(id)); err != nil {
		a.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Option deleted"})
}
