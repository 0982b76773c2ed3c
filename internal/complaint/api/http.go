// Package api exposes the complaint workflow over HTTP. Public intake and
// tracking live on an unauthenticated router; everything else requires a
// staff or admin token.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/complaint/service"
	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Handler provides HTTP handlers for the complaint module
type Handler struct {
	workflow   *Workflow
	categories domain.CategoryRepository
}

// Workflow aliases the engine type to keep constructor signatures short.
type Workflow = service.Workflow

// NewHandler creates a new complaint handler
func NewHandler(workflow *Workflow, categories domain.CategoryRepository) *Handler {
	return &Handler{workflow: workflow, categories: categories}
}

// RegisterPublic registers the unauthenticated intake and tracking routes.
// POST /complaints shares its path with the authenticated GET, so routes
// are registered per method instead of mounted as a subtree.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/complaints", h.Submit)
	r.Get("/track/{code}", h.Track)
	r.Get("/categories", h.ListCategories)
}

// Register registers the authenticated complaint routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/complaints", h.List)
	r.Route("/complaints/{complaintID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/dispositions", h.GetDispositions)

		r.Post("/verify", h.Verify)
		r.Post("/dispose", h.Dispose)
		r.Post("/advance", h.Advance)

		r.With(auth.RequireRoles(auth.RoleAdmin)).Delete("/", h.Delete)
	})

	// Category writes; the public router serves the read side.
	r.With(auth.RequireRoles(auth.RoleAdmin)).Post("/categories", h.CreateCategory)
	r.With(auth.RequireRoles(auth.RoleAdmin)).Put("/categories/{categoryID}", h.UpdateCategory)
	r.With(auth.RequireRoles(auth.RoleAdmin)).Delete("/categories/{categoryID}", h.DeleteCategory)
}

// --- Request types ---

type submitRequest struct {
	CategoryID types.ID `json:"category_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Anonymous  bool     `json:"anonymous"`

	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
	ReporterPhone string `json:"reporter_phone"`

	Location     string     `json:"location,omitempty"`
	IncidentDate *time.Time `json:"incident_date,omitempty"`
	EvidenceRef  string     `json:"evidence_ref,omitempty"`
}

type disposeRequest struct {
	UnitID    types.ID `json:"unit_id"`
	Rationale string   `json:"rationale"`
}

type advanceRequest struct {
	Note string `json:"note"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- Public Handlers ---

// Submit files a new complaint
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	c, err := h.workflow.Submit(r.Context(), service.SubmitRequest{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Body:       req.Body,
		Reporter: domain.Reporter{
			Name:  req.ReporterName,
			Email: req.ReporterEmail,
			Phone: req.ReporterPhone,
		},
		Anonymous:    req.Anonymous,
		Location:     req.Location,
		IncidentDate: req.IncidentDate,
		EvidenceRef:  req.EvidenceRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The public response carries only the tracking handle, not the
	// internal record.
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":   c.Code,
		"status": c.Status,
	})
}

// Track returns the public tracking view for a code
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, errors.BadRequest("tracking code is required"))
		return
	}

	view, err := h.workflow.Track(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// --- Authenticated Handlers ---

// List lists complaints visible to the caller
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	filter := domain.ListFilter{
		Search: r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := types.ParseID(raw)
		if err != nil {
			writeError(w, errors.BadRequest("invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}
	if raw := r.URL.Query().Get("unit_id"); raw != "" {
		id, err := types.ParseID(raw)
		if err != nil {
			writeError(w, errors.BadRequest("invalid unit_id"))
			return
		}
		filter.UnitID = &id
	}
	filter.Page = queryInt(r, "page")
	filter.Limit = queryInt(r, "limit")

	complaints, total, err := h.workflow.List(r.Context(), user, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  complaints,
		"total": total,
		"page":  filter.Page,
	})
}

// Get returns one complaint
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	c, err := h.workflow.Get(r.Context(), auth.GetUser(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// GetTimeline returns the status history of a complaint
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	timeline, err := h.workflow.GetTimeline(r.Context(), auth.GetUser(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": timeline})
}

// GetDispositions returns the disposition log of a complaint
func (h *Handler) GetDispositions(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	dispositions, err := h.workflow.GetDispositions(r.Context(), auth.GetUser(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": dispositions})
}

// Verify marks a submitted complaint as verified
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	c, err := h.workflow.Verify(r.Context(), auth.GetUser(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Dispose routes a complaint to a unit
func (h *Handler) Dispose(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	var req disposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	c, err := h.workflow.Dispose(r.Context(), auth.GetUser(r.Context()), id, req.UnitID, req.Rationale)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Advance moves a complaint to its next work state
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	c, err := h.workflow.Advance(r.Context(), auth.GetUser(r.Context()), id, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Delete removes a complaint entirely
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(w, r)
	if !ok {
		return
	}

	if err := h.workflow.Delete(r.Context(), auth.GetUser(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Category Handlers ---

// ListCategories lists complaint categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": categories})
}

// CreateCategory creates a complaint category
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.Name == "" {
		writeError(w, errors.Validation("missing required category fields", map[string]string{"name": "required"}))
		return
	}

	now := time.Now()
	cat := &domain.Category{
		ID:          types.NewID(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.categories.Create(r.Context(), cat); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory updates a complaint category
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid category ID"))
		return
	}

	cat, err := h.categories.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.Name != "" {
		cat.Name = req.Name
	}
	cat.Description = req.Description

	if err := h.categories.Update(r.Context(), cat); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory deletes a complaint category
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid category ID"))
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func complaintID(w http.ResponseWriter, r *http.Request) (types.ID, bool) {
	id, err := types.ParseID(chi.URLParam(r, "complaintID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid complaint ID"))
		return "", false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

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
