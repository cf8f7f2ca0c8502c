// Package notify holds the delivery channels for incident announcements.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

var _ ports.NotificationSender = (*LogSender)(nil)

// LogSender writes notifications to the structured log instead of delivering
// them. It is the default for local development.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n ports.Notification) error {
	s.log.Info().
		Int64("incident_id", n.IncidentID).
		Strs("recipients", n.Recipients).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("incident notification")
	return nil
}
