package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/disnaker/sipelan/internal/shared/events"
)

// Subscriber turns workflow events into audit entries. It is only wired
// when the event bus is configured; without a bus the audit trail is
// simply absent, never partially written.
type Subscriber struct {
	repo *Repository
	bus  events.EventBus
}

// NewSubscriber creates a new audit subscriber
func NewSubscriber(repo *Repository, bus events.EventBus) *Subscriber {
	return &Subscriber{repo: repo, bus: bus}
}

// Start subscribes to all workflow events
func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, "complaint.*", s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to complaint events: %w", err)
	}
	return nil
}

func (s *Subscriber) handleEvent(ctx context.Context, event events.Event) error {
	entry := eventToEntry(event)
	if entry == nil {
		return nil
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// eventToEntry maps a workflow event onto an audit entry. Events without
// an actor were triggered by the public or the system itself.
func eventToEntry(event events.Event) *Entry {
	if !strings.HasPrefix(event.Type, "complaint.") {
		return nil
	}

	actorType := ActorTypeUser
	switch event.ActorRole {
	case "", "citizen":
		actorType = ActorTypeCitizen
	case "system":
		actorType = ActorTypeSystem
	}

	var resourceID *string
	if raw, ok := event.Data["complaint_id"].(string); ok && raw != "" {
		resourceID = &raw
	}

	return NewEntry(
		actorType,
		event.ActorID.String(),
		event.ActorRole,
		event.Type,
		"complaint",
		resourceID,
		event.Data,
	)
}
