package domain

import (
	"time"

	"github.com/disnaker/sipelan/internal/shared/types"
)

// Reporter identifies the citizen who filed a complaint. The identity is
// always stored, even for anonymous submissions: anonymity masks it in the
// public tracking representation, nowhere else.
type Reporter struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// StatusEntry is one row of the append-only status history. Exactly one
// entry is written per transition; ascending created_at order is the
// publicly visible tracking timeline.
type StatusEntry struct {
	ID          types.ID  `json:"id"`
	ComplaintID types.ID  `json:"complaint_id"`
	Status      Status    `json:"status"`
	Note        string    `json:"note,omitempty"`
	ActorID     *types.ID `json:"actor_id,omitempty"` // nil means "system"
	ActorRole   string    `json:"actor_role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Disposition records one routing action: which unit received the
// complaint, from whom, and why. Append-only.
type Disposition struct {
	ID          types.ID  `json:"id"`
	ComplaintID types.ID  `json:"complaint_id"`
	FromUnitID  *types.ID `json:"from_unit_id,omitempty"` // nil means from admin/intake
	ToUnitID    types.ID  `json:"to_unit_id"`
	Rationale   string    `json:"rationale,omitempty"`
	ActorID     *types.ID `json:"actor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category is a complaint category (reference data, admin-managed).
type Category struct {
	ID          types.ID  `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
