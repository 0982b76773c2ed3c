package domain

import (
	"context"
	"time"

	"github.com/disnaker/sipelan/internal/shared/types"
)

// Transition is the unit of persistence for one workflow step: the status
// (and optionally unit) mutation plus the records it appends. A repository
// must apply it atomically, and must reject it with InvalidTransition when
// the stored status no longer equals From (a concurrent writer won).
type Transition struct {
	ComplaintID types.ID
	From        Status
	To          Status
	UnitID      *types.ID // set when the transition assigns a unit
	Entry       StatusEntry
	Disposition *Disposition
	UpdatedAt   time.Time
}

// Repository defines the interface for complaint persistence
type Repository interface {
	// Save persists a new complaint together with its initial history
	// entry, atomically.
	Save(ctx context.Context, c *Complaint) error
	FindByID(ctx context.Context, id types.ID) (*Complaint, error)
	FindByCode(ctx context.Context, code string) (*Complaint, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// ApplyTransition applies one workflow step with a conditional write
	// on the expected prior status.
	ApplyTransition(ctx context.Context, t *Transition) error

	GetTimeline(ctx context.Context, complaintID types.ID) ([]StatusEntry, error)
	GetDispositions(ctx context.Context, complaintID types.ID) ([]Disposition, error)

	List(ctx context.Context, filter ListFilter) ([]Complaint, int, error)

	// Delete hard-deletes a complaint and its logs. Administrative
	// override only; the workflow never deletes.
	Delete(ctx context.Context, id types.ID) error
}

// CategoryRepository manages complaint category reference data
type CategoryRepository interface {
	Create(ctx context.Context, cat *Category) error
	FindByID(ctx context.Context, id types.ID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, id types.ID) error
}

// ListFilter defines filters for listing complaints
type ListFilter struct {
	Status     *Status   `json:"status,omitempty"`
	CategoryID *types.ID `json:"category_id,omitempty"`
	UnitID     *types.ID `json:"unit_id,omitempty"`
	Search     string    `json:"search,omitempty"`
	Page       int       `json:"page,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Offset converts the 1-based page to a row offset.
func (f ListFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageSize()
}

// PageSize returns the clamped page size.
func (f ListFilter) PageSize() int {
	if f.Limit > 0 && f.Limit <= 100 {
		return f.Limit
	}
	return 20
}
