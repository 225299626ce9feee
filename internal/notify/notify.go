// Package notify is the boundary to the notification/email collaborator.
// The core invokes it best-effort on state transitions; delivery failure
// is logged and never propagated into the authoritative response.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event identifies a notifiable state transition.
type Event string

const (
	EventEntrySealed  Event = "entry_sealed"
	EventWeekApproved Event = "week_approved"
	EventWeekRejected Event = "week_rejected"
)

// Notification carries the event plus the recipient and subject entity.
type Notification struct {
	Event       Event
	RecipientID uuid.UUID
	EntityID    uuid.UUID
	Comment     string
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier is the default Notifier: it records the notification in
// the structured log. Real delivery (email, push) is wired in by the
// deployment behind the same interface.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{log: logger.With("component", "notify")}
}

// Notify logs the notification and always succeeds.
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.log.InfoContext(ctx, "notification",
		slog.String("event", string(notification.Event)),
		slog.String("recipient_id", notification.RecipientID.String()),
		slog.String("entity_id", notification.EntityID.String()),
	)
	return nil
}
