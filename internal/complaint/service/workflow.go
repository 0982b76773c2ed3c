// Package service contains the complaint workflow engine: the only code
// path that mutates complaint status or unit assignment. HTTP handlers,
// the legacy importer and background jobs all go through it.
package service

import (
	"context"
	"log"
	"time"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/notification"
	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/events"
	"github.com/disnaker/sipelan/internal/shared/metrics"
	"github.com/disnaker/sipelan/internal/shared/types"
	"github.com/disnaker/sipelan/internal/unit"
)

// UnitDirectory resolves disposition targets.
type UnitDirectory interface {
	GetUnit(ctx context.Context, id types.ID) (*unit.Unit, error)
}

// Notifier queues outbound email without blocking.
type Notifier interface {
	Enqueue(n *notification.Notification)
}

// Workflow is the complaint workflow engine
type Workflow struct {
	repo       domain.Repository
	categories domain.CategoryRepository
	units      UnitDirectory
	notifier   Notifier
	bus        events.EventBus // optional, may be nil
}

// NewWorkflow creates a new workflow engine
func NewWorkflow(
	repo domain.Repository,
	categories domain.CategoryRepository,
	units UnitDirectory,
	notifier Notifier,
	bus events.EventBus,
) *Workflow {
	return &Workflow{
		repo:       repo,
		categories: categories,
		units:      units,
		notifier:   notifier,
		bus:        bus,
	}
}

// SubmitRequest is the intake payload
type SubmitRequest struct {
	CategoryID types.ID        `json:"category_id"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	Reporter   domain.Reporter `json:"reporter"`
	Anonymous  bool            `json:"anonymous"`

	Location     string     `json:"location,omitempty"`
	IncidentDate *time.Time `json:"incident_date,omitempty"`
	EvidenceRef  string     `json:"evidence_ref,omitempty"`
}

// Submit files a new complaint. No authentication: submission is open to
// the public. The returned complaint carries the tracking code the
// reporter uses from now on.
func (w *Workflow) Submit(ctx context.Context, req SubmitRequest) (*domain.Complaint, error) {
	c, err := domain.NewComplaint(req.CategoryID, req.Title, req.Body, req.Reporter, req.Anonymous)
	if err != nil {
		return nil, err
	}
	c.Location = req.Location
	c.IncidentDate = req.IncidentDate
	c.EvidenceRef = req.EvidenceRef

	cat, err := w.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Validation("unknown complaint category", map[string]string{
				"category_id": req.CategoryID.String(),
			})
		}
		return nil, err
	}

	// The pre-check in generateCode does not close the window between
	// check and insert, so a racing submission can still claim the code
	// first. On a duplicate from the UNIQUE constraint, draw again.
	saved := false
	for attempt := 0; attempt < maxCodeAttempts && !saved; attempt++ {
		code, err := generateCode(ctx, w.repo)
		if err != nil {
			return nil, err
		}
		c.Code = code

		switch err := w.repo.Save(ctx, c); {
		case err == nil:
			saved = true
		case errors.Is(err, errors.ErrDuplicateCode):
			continue
		default:
			return nil, err
		}
	}
	if !saved {
		return nil, errors.DuplicateCode(c.Code)
	}

	metrics.RecordComplaintSubmitted(cat.Name)
	w.notifier.Enqueue(notification.ComplaintReceived(c))
	w.publish(ctx, events.NewEvent("complaint.submitted", "workflow", map[string]any{
		"complaint_id": c.ID.String(),
		"code":         c.Code,
		"category":     cat.Name,
		"anonymous":    c.Anonymous,
	}))

	return c, nil
}

// Verify moves a submitted complaint to verified. Admin only.
func (w *Workflow) Verify(ctx context.Context, actor *auth.User, id types.ID) (*domain.Complaint, error) {
	c, err := w.authorize(ctx, actor, domain.OpVerify, id)
	if err != nil {
		return nil, err
	}

	entry, err := c.Verify(actor.ID, string(actor.Role))
	if err != nil {
		return nil, err
	}

	t := &domain.Transition{
		ComplaintID: c.ID,
		From:        domain.StatusSubmitted,
		To:          domain.StatusVerified,
		Entry:       *entry,
		UpdatedAt:   c.UpdatedAt,
	}
	if err := w.repo.ApplyTransition(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(t.From), string(t.To))
	w.notifier.Enqueue(notification.StatusChanged(c, entry))
	w.publish(ctx, events.NewEvent("complaint.verified", "workflow", map[string]any{
		"complaint_id": c.ID.String(),
		"code":         c.Code,
	}).WithActor(actor.ID, string(actor.Role)))

	return c, nil
}

// Dispose routes a complaint to a unit. Admin routes freely; unit staff
// may only refer complaints already assigned to their own unit.
func (w *Workflow) Dispose(ctx context.Context, actor *auth.User, id, toUnitID types.ID, rationale string) (*domain.Complaint, error) {
	c, err := w.authorize(ctx, actor, domain.OpDispose, id)
	if err != nil {
		return nil, err
	}

	target, err := w.units.GetUnit(ctx, toUnitID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Validation("unknown destination unit", map[string]string{
				"unit_id": toUnitID.String(),
			})
		}
		return nil, err
	}

	from := c.Status
	disposition, entry, err := c.Dispose(target.ID, rationale, actor.ID, string(actor.Role))
	if err != nil {
		return nil, err
	}

	t := &domain.Transition{
		ComplaintID: c.ID,
		From:        from,
		To:          domain.StatusRouted,
		UnitID:      c.UnitID,
		Entry:       *entry,
		Disposition: disposition,
		UpdatedAt:   c.UpdatedAt,
	}
	if err := w.repo.ApplyTransition(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(from), string(domain.StatusRouted))
	metrics.RecordDisposition(target.Code)

	categoryName := ""
	if cat, err := w.categories.FindByID(ctx, c.CategoryID); err == nil {
		categoryName = cat.Name
	}
	w.notifier.Enqueue(notification.Disposed(c, disposition, target.Name, target.NotificationEmail, categoryName))
	w.notifier.Enqueue(notification.StatusChanged(c, entry))

	w.publish(ctx, events.NewEvent("complaint.disposed", "workflow", map[string]any{
		"complaint_id": c.ID.String(),
		"code":         c.Code,
		"to_unit":      target.Code,
		"rationale":    rationale,
	}).WithActor(actor.ID, string(actor.Role)))

	return c, nil
}

// Advance moves a routed complaint to in_progress, or an in_progress
// complaint to resolved. Staff of the assigned unit only.
func (w *Workflow) Advance(ctx context.Context, actor *auth.User, id types.ID, note string) (*domain.Complaint, error) {
	c, err := w.authorize(ctx, actor, domain.OpAdvance, id)
	if err != nil {
		return nil, err
	}

	from := c.Status
	entry, err := c.Advance(note, actor.ID, string(actor.Role))
	if err != nil {
		return nil, err
	}

	t := &domain.Transition{
		ComplaintID: c.ID,
		From:        from,
		To:          c.Status,
		Entry:       *entry,
		UpdatedAt:   c.UpdatedAt,
	}
	if err := w.repo.ApplyTransition(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(string(from), string(c.Status))
	w.notifier.Enqueue(notification.StatusChanged(c, entry))
	w.publish(ctx, events.NewEvent("complaint.advanced", "workflow", map[string]any{
		"complaint_id": c.ID.String(),
		"code":         c.Code,
		"status":       string(c.Status),
	}).WithActor(actor.ID, string(actor.Role)))

	return c, nil
}

// Get returns one complaint for an authenticated caller. Visibility
// follows the timeline rule: admin, or staff of the assigned unit.
func (w *Workflow) Get(ctx context.Context, actor *auth.User, id types.ID) (*domain.Complaint, error) {
	return w.authorize(ctx, actor, domain.OpGetTimeline, id)
}

// GetTimeline returns the full status history of a complaint.
func (w *Workflow) GetTimeline(ctx context.Context, actor *auth.User, id types.ID) ([]domain.StatusEntry, error) {
	if _, err := w.authorize(ctx, actor, domain.OpGetTimeline, id); err != nil {
		return nil, err
	}
	return w.repo.GetTimeline(ctx, id)
}

// GetDispositions returns the disposition log of a complaint.
func (w *Workflow) GetDispositions(ctx context.Context, actor *auth.User, id types.ID) ([]domain.Disposition, error) {
	if _, err := w.authorize(ctx, actor, domain.OpGetTimeline, id); err != nil {
		return nil, err
	}
	return w.repo.GetDispositions(ctx, id)
}

// List returns complaints visible to the actor. Staff are always scoped
// to their own unit regardless of the requested filter.
func (w *Workflow) List(ctx context.Context, actor *auth.User, filter domain.ListFilter) ([]domain.Complaint, int, error) {
	if actor == nil {
		return nil, 0, errors.Unauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		unitID := actor.UnitID
		if unitID.IsZero() {
			return nil, 0, errors.Forbidden("staff account has no unit")
		}
		filter.UnitID = &unitID
	}

	return w.repo.List(ctx, filter)
}

// Delete removes a complaint and its logs. Administrative override; the
// workflow itself never deletes.
func (w *Workflow) Delete(ctx context.Context, actor *auth.User, id types.ID) error {
	if _, err := w.authorize(ctx, actor, domain.OpDelete, id); err != nil {
		return err
	}

	if err := w.repo.Delete(ctx, id); err != nil {
		return err
	}

	w.publish(ctx, events.NewEvent("complaint.deleted", "workflow", map[string]any{
		"complaint_id": id.String(),
	}).WithActor(actor.ID, string(actor.Role)))

	return nil
}

// TrackingEvent is one public timeline entry.
type TrackingEvent struct {
	Status      domain.Status `json:"status"`
	StatusLabel string        `json:"status_label"`
	Note        string        `json:"note,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// TrackingView is the public representation of a complaint, looked up by
// tracking code. Anonymous submissions expose no reporter identity here.
type TrackingView struct {
	Code         string          `json:"code"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	CategoryName string          `json:"category"`
	Status       domain.Status   `json:"status"`
	StatusLabel  string          `json:"status_label"`
	ReporterName string          `json:"reporter_name,omitempty"`
	Location     string          `json:"location,omitempty"`
	IncidentDate *time.Time      `json:"incident_date,omitempty"`
	UnitName     string          `json:"unit_name,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Timeline     []TrackingEvent `json:"timeline"`
}

// Track looks up a complaint by tracking code for the public tracking
// page. No authentication: possession of the code is the credential.
func (w *Workflow) Track(ctx context.Context, code string) (*TrackingView, error) {
	c, err := w.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	timeline, err := w.repo.GetTimeline(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	view := &TrackingView{
		Code:         c.Code,
		Title:        c.Title,
		Body:         c.Body,
		Status:       c.Status,
		StatusLabel:  notification.StatusLabel(c.Status),
		Location:     c.Location,
		IncidentDate: c.IncidentDate,
		SubmittedAt:  c.CreatedAt,
	}
	if !c.Anonymous {
		view.ReporterName = c.Reporter.Name
	}

	if cat, err := w.categories.FindByID(ctx, c.CategoryID); err == nil {
		view.CategoryName = cat.Name
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if c.UnitID != nil {
		u, err := w.units.GetUnit(ctx, *c.UnitID)
		if err != nil {
			return nil, err
		}
		view.UnitName = u.Name
	}

	for _, entry := range timeline {
		view.Timeline = append(view.Timeline, TrackingEvent{
			Status:      entry.Status,
			StatusLabel: notification.StatusLabel(entry.Status),
			Note:        entry.Note,
			Timestamp:   entry.CreatedAt,
		})
	}

	return view, nil
}

// authorize loads the complaint and runs the policy check for op,
// recording the decision.
func (w *Workflow) authorize(ctx context.Context, actor *auth.User, op domain.Operation, id types.ID) (*domain.Complaint, error) {
	c, err := w.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, op, c); err != nil {
		metrics.RecordAuthorizationDecision(string(op), false)
		return nil, err
	}
	metrics.RecordAuthorizationDecision(string(op), true)

	return c, nil
}

// publish sends a domain event when a bus is configured. Failures are
// logged only; the transition has already committed.
func (w *Workflow) publish(ctx context.Context, event events.Event) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(ctx, event); err != nil {
		log.Printf("event publish %s failed: %v", event.Type, err)
	}
}
