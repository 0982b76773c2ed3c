package domain

import (
	"time"

	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// ActorSystem is the actor role recorded on system-generated history entries.
const ActorSystem = "system"

// Complaint is the aggregate root for one citizen submission. Status and
// unit assignment are mutated only through the transition methods below;
// everything else in the service reads state.
type Complaint struct {
	ID   types.ID `json:"id"`
	Code string   `json:"code"`

	CategoryID types.ID `json:"category_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`

	Reporter  Reporter `json:"reporter"`
	Anonymous bool     `json:"anonymous"`

	Location     string     `json:"location,omitempty"`
	IncidentDate *time.Time `json:"incident_date,omitempty"`
	EvidenceRef  string     `json:"evidence_ref,omitempty"`

	Status Status    `json:"status"`
	UnitID *types.ID `json:"unit_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// History holds entries loaded from or destined for the status history
	// log, ascending by time.
	History []StatusEntry `json:"history,omitempty"`
}

// NewComplaint creates a complaint in the submitted state with its initial
// history entry (actor = system). Validation of the category reference
// happens in the workflow service, which can see the category store.
func NewComplaint(categoryID types.ID, title, body string, reporter Reporter, anonymous bool) (*Complaint, error) {
	details := map[string]string{}
	if categoryID.IsZero() {
		details["category_id"] = "required"
	}
	if title == "" {
		details["title"] = "required"
	}
	if body == "" {
		details["body"] = "required"
	}
	if len(details) > 0 {
		return nil, errors.Validation("missing required complaint fields", details)
	}

	now := time.Now()
	c := &Complaint{
		ID:         types.NewID(),
		CategoryID: categoryID,
		Title:      title,
		Body:       body,
		Reporter:   reporter,
		Anonymous:  anonymous,
		Status:     StatusSubmitted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	c.appendHistory(StatusSubmitted, "Pengaduan diterima sistem", nil, ActorSystem)

	return c, nil
}

// Verify moves submitted -> verified.
func (c *Complaint) Verify(actorID types.ID, actorRole string) (*StatusEntry, error) {
	if c.Status != StatusSubmitted {
		return nil, errors.InvalidTransition("only a submitted complaint can be verified", map[string]string{
			"status": string(c.Status),
		})
	}

	c.Status = StatusVerified
	c.UpdatedAt = time.Now()
	entry := c.appendHistory(StatusVerified, "Pengaduan terverifikasi", &actorID, actorRole)

	return entry, nil
}

// Dispose routes the complaint to a unit: records the disposition, assigns
// the unit and moves to routed. First disposition requires verified;
// a routed complaint may be disposed again (unit-to-unit referral).
func (c *Complaint) Dispose(toUnitID types.ID, rationale string, actorID types.ID, actorRole string) (*Disposition, *StatusEntry, error) {
	if toUnitID.IsZero() {
		return nil, nil, errors.Validation("destination unit is required", nil)
	}
	if c.UnitID != nil && *c.UnitID == toUnitID {
		return nil, nil, errors.Validation("complaint is already assigned to this unit", map[string]string{
			"unit_id": toUnitID.String(),
		})
	}
	if c.Status != StatusVerified && c.Status != StatusRouted {
		return nil, nil, errors.InvalidTransition("complaint must be verified before disposition", map[string]string{
			"status": string(c.Status),
		})
	}

	now := time.Now()
	disposition := &Disposition{
		ID:          types.NewID(),
		ComplaintID: c.ID,
		FromUnitID:  c.UnitID,
		ToUnitID:    toUnitID,
		Rationale:   rationale,
		ActorID:     &actorID,
		CreatedAt:   now,
	}

	unitID := toUnitID
	c.UnitID = &unitID
	c.Status = StatusRouted
	c.UpdatedAt = now
	entry := c.appendHistory(StatusRouted, rationale, &actorID, actorRole)

	return disposition, entry, nil
}

// Advance moves routed -> in_progress or in_progress -> resolved. States
// cannot be skipped and resolved is terminal.
func (c *Complaint) Advance(note string, actorID types.ID, actorRole string) (*StatusEntry, error) {
	next, ok := c.Status.nextWorkState()
	if !ok {
		return nil, errors.InvalidTransition("complaint cannot be advanced from its current status", map[string]string{
			"status": string(c.Status),
		})
	}

	c.Status = next
	c.UpdatedAt = time.Now()
	entry := c.appendHistory(next, note, &actorID, actorRole)

	return entry, nil
}

func (c *Complaint) appendHistory(status Status, note string, actorID *types.ID, actorRole string) *StatusEntry {
	entry := StatusEntry{
		ID:          types.NewID(),
		ComplaintID: c.ID,
		Status:      status,
		Note:        note,
		ActorID:     actorID,
		ActorRole:   actorRole,
		CreatedAt:   time.Now(),
	}
	c.History = append(c.History, entry)
	return &c.History[len(c.History)-1]
}
