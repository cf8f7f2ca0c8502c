package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

// IncidentPatch lists the fields an update writes. Fields left nil (or
// AssignedToSet false) are not touched in storage, so concurrent patches of
// different fields never overwrite each other.
type IncidentPatch struct {
	Status *domain.IncidentStatus
	// AssignedTo is written only when AssignedToSet is true; nil clears it.
	AssignedTo    *string
	AssignedToSet bool
	// UpdatedAt never moves an incident's timestamp backwards.
	UpdatedAt time.Time
}

// IncidentRepository defines persistence operations for incidents.
// Every method touches a single incident; no cross-entity transactions.
type IncidentRepository interface {
	// Create assigns the next ID to inc and stores it.
	Create(ctx context.Context, inc *domain.Incident) error
	FindByID(ctx context.Context, id int64) (*domain.Incident, error)
	// Patch applies p in a single atomic write and returns the stored
	// incident. Returns domain.ErrIncidentNotFound for an unknown id.
	Patch(ctx context.Context, id int64, p IncidentPatch) (*domain.Incident, error)
	// List returns every incident ordered by ID.
	List(ctx context.Context) ([]*domain.Incident, error)
	ListByCreator(ctx context.Context, userID string) ([]*domain.Incident, error)
}
