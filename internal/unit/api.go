package unit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/config"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Handler provides HTTP handlers for units, staff accounts and login
type Handler struct {
	repo    *Repository
	authCfg config.AuthConfig
}

// NewHandler creates a new unit handler
func NewHandler(repo *Repository, authCfg config.AuthConfig) *Handler {
	return &Handler{repo: repo, authCfg: authCfg}
}

// UnitRoutes registers unit management routes. Writes are admin-only;
// staff read the list for referrals.
func (h *Handler) UnitRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListUnits)
	r.With(auth.RequireRoles(auth.RoleAdmin)).Post("/", h.CreateUnit)

	r.Route("/{unitID}", func(r chi.Router) {
		r.Get("/", h.GetUnit)
		r.Get("/staff", h.ListUnitStaff)
		r.With(auth.RequireRoles(auth.RoleAdmin)).Put("/", h.UpdateUnit)
		r.With(auth.RequireRoles(auth.RoleAdmin)).Delete("/", h.DeleteUnit)
	})

	return r
}

// StaffRoutes registers staff account management routes, admin-only.
func (h *Handler) StaffRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRoles(auth.RoleAdmin))

	r.Get("/", h.ListStaff)
	r.Post("/", h.CreateStaff)
	r.Route("/{staffID}", func(r chi.Router) {
		r.Get("/", h.GetStaff)
		r.Delete("/", h.DeleteStaff)
	})

	return r
}

// --- Unit Handlers ---

// ListUnits lists all units
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.repo.ListUnits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": units})
}

// GetUnit gets a unit by ID
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "unitID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid unit ID"))
		return
	}

	u, err := h.repo.GetUnit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// CreateUnit creates a new unit
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	details := map[string]string{}
	if req.Code == "" {
		details["code"] = "required"
	}
	if req.Name == "" {
		details["name"] = "required"
	}
	if len(details) > 0 {
		writeError(w, errors.Validation("missing required unit fields", details))
		return
	}

	now := time.Now()
	u := &Unit{
		ID:                types.NewID(),
		Code:              req.Code,
		Name:              req.Name,
		NotificationEmail: req.NotificationEmail,
		CategoryID:        req.CategoryID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.repo.CreateUnit(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// UpdateUnit updates a unit
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "unitID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid unit ID"))
		return
	}

	u, err := h.repo.GetUnit(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.NotificationEmail != nil {
		u.NotificationEmail = *req.NotificationEmail
	}
	if req.CategoryID != nil {
		u.CategoryID = req.CategoryID
	}

	if err := h.repo.UpdateUnit(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// DeleteUnit deletes a unit
func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "unitID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid unit ID"))
		return
	}

	if err := h.repo.DeleteUnit(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Staff Handlers ---

// ListStaff lists staff accounts, optionally filtered by unit
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	var unitID *types.ID
	if raw := r.URL.Query().Get("unit_id"); raw != "" {
		id, err := types.ParseID(raw)
		if err != nil {
			writeError(w, errors.BadRequest("invalid unit_id"))
			return
		}
		unitID = &id
	}

	staff, err := h.repo.ListStaff(r.Context(), unitID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": staff})
}

// ListUnitStaff lists the staff of one unit
func (h *Handler) ListUnitStaff(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "unitID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid unit ID"))
		return
	}

	staff, err := h.repo.ListStaff(r.Context(), &id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": staff})
}

// GetStaff gets a staff account by ID
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "staffID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid staff ID"))
		return
	}

	s, err := h.repo.GetStaff(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// CreateStaff creates a staff or admin account
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	details := map[string]string{}
	if req.Name == "" {
		details["name"] = "required"
	}
	if req.Email == "" {
		details["email"] = "required"
	}
	if len(req.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if !req.Role.Valid() || req.Role == auth.RolePublic {
		details["role"] = "must be admin or staff"
	}
	if req.Role == auth.RoleStaff && req.UnitID == nil {
		details["unit_id"] = "required for staff accounts"
	}
	if len(details) > 0 {
		writeError(w, errors.Validation("invalid staff account", details))
		return
	}

	if req.UnitID != nil {
		if _, err := h.repo.GetUnit(r.Context(), *req.UnitID); err != nil {
			writeError(w, err)
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	now := time.Now()
	s := &Staff{
		ID:           types.NewID(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		UnitID:       req.UnitID,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.CreateStaff(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

// DeleteStaff deletes a staff account
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "staffID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid staff ID"))
		return
	}

	if err := h.repo.DeleteStaff(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Login ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	s, err := h.repo.GetStaffByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		writeError(w, errors.Unauthorized("invalid credentials"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, errors.Unauthorized("invalid credentials"))
		return
	}

	user := &auth.User{ID: s.ID, Name: s.Name, Role: s.Role}
	if s.UnitID != nil {
		user.UnitID = *s.UnitID
	}

	token, err := auth.IssueToken(h.authCfg, user)
	if err != nil {
		writeError(w, errors.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  s,
	})
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
