package ports

import (
	"context"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

// Notifier announces newly created incidents. Notify must return
// promptly and never report delivery failures to the caller.
type Notifier interface {
	Notify(incident domain.Incident)
}

// Notification is a rendered message ready for delivery.
type Notification struct {
	Subject    string
	Body       string
	Recipients []string
	IncidentID int64
}

// NotificationSender delivers a single notification over some channel
// (mail, pub/sub, log). It may block up to ctx's deadline.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}
