// Package unit manages the organizational units (bidang) of the agency and
// the staff accounts attached to them. Units are the targets of complaint
// disposition; a unit's notification email receives assignment notices.
package unit

import (
	"time"

	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Unit represents one organizational unit (bidang)
type Unit struct {
	ID   types.ID `json:"id"`
	Code string   `json:"code"`
	Name string   `json:"name"`

	// NotificationEmail is the unit mailbox that receives disposition
	// notices. Empty disables them for this unit.
	NotificationEmail string `json:"notification_email,omitempty"`

	// CategoryID optionally marks the unit as the default handler for a
	// complaint category.
	CategoryID *types.ID `json:"category_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Staff represents a user account. Admin accounts have no unit; staff
// accounts always belong to one.
type Staff struct {
	ID    types.ID  `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`

	UnitID *types.ID `json:"unit_id,omitempty"`

	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUnitRequest is the payload for creating a unit
type CreateUnitRequest struct {
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	NotificationEmail string    `json:"notification_email"`
	CategoryID        *types.ID `json:"category_id"`
}

// UpdateUnitRequest is the payload for updating a unit
type UpdateUnitRequest struct {
	Name              *string   `json:"name"`
	NotificationEmail *string   `json:"notification_email"`
	CategoryID        *types.ID `json:"category_id"`
}

// CreateStaffRequest is the payload for creating a staff account
type CreateStaffRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
	UnitID   *types.ID `json:"unit_id"`
}
