package domain

import "time"

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

const (
	StatusOpen       IncidentStatus = "Open"
	StatusInProgress IncidentStatus = "In Progress"
	StatusResolved   IncidentStatus = "Resolved"
	StatusClosed     IncidentStatus = "Closed"
)

// Valid reports whether s is a known status. Any known status may move to
// any other; there is no terminal state.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Incident is the core aggregate root.
type Incident struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Priority    string         `json:"priority"`
	CreatedBy   string         `json:"created_by"`
	AssignedTo  *string        `json:"assigned_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Touch refreshes UpdatedAt, never letting it fall behind CreatedAt.
func (i *Incident) Touch(now time.Time) {
	if now.Before(i.CreatedAt) {
		now = i.CreatedAt
	}
	i.UpdatedAt = now
}
