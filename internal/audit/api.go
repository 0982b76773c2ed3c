package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Handler provides HTTP handlers for reading the audit trail
type Handler struct {
	repo *Repository
}

// NewHandler creates a new audit handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes registers the audit routes. Reading the trail is admin-only.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRoles(auth.RoleAdmin))

	r.Get("/", h.List)
	r.Get("/verify", h.Verify)
	r.Get("/complaints/{complaintID}", h.GetComplaintTrail)

	return r
}

// List lists audit entries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		ActorID:      r.URL.Query().Get("actor_id"),
		Action:       r.URL.Query().Get("action"),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = n
	}

	entries, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"total": total,
	})
}

// Verify runs a full chain verification
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.VerifyChain(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetComplaintTrail returns the audit trail of one complaint
func (h *Handler) GetComplaintTrail(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "complaintID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid complaint ID"))
		return
	}

	entries, err := h.repo.GetByResource(r.Context(), "complaint", id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
