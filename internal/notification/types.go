package notification

import (
	"time"

	"github.com/disnaker/sipelan/internal/shared/types"
)

// Kind names the workflow moment a notification reports.
type Kind string

const (
	// KindReceived confirms intake to the reporter, carrying the tracking code.
	KindReceived Kind = "received"
	// KindStatus tells the reporter their complaint changed state.
	KindStatus Kind = "status"
	// KindDisposition tells a unit's mailbox it was assigned a complaint.
	KindDisposition Kind = "disposition"
	// KindResolution tells the reporter the complaint is resolved.
	KindResolution Kind = "resolution"
)

// Status represents notification delivery status
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Notification is one outbound email. Delivery is best-effort: the
// workflow never waits on it and never fails because of it.
type Notification struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipient_name,omitempty"`

	Subject string `json:"subject"`
	Body    string `json:"body"`

	ComplaintID   types.ID `json:"complaint_id"`
	ComplaintCode string   `json:"complaint_code"`

	Status       Status `json:"status"`
	RetryCount   int    `json:"retry_count"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Stats holds delivery counters
type Stats struct {
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Dropped  int64 `json:"dropped"`
}
