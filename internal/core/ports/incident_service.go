package ports

import (
	"context"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

// CreateIncidentInput carries the fields a reporter supplies.
type CreateIncidentInput struct {
	Title       string
	Description string
	Priority    string
}

// UpdateIncidentInput carries a partial update. Nil fields are left as is.
type UpdateIncidentInput struct {
	Status *string
	// AssignedTo is applied only when AssignedToSet is true; a nil value
	// then clears the assignee.
	AssignedTo    *string
	AssignedToSet bool
}

// IncidentService defines use-case operations for incidents. The acting
// user is always passed explicitly.
type IncidentService interface {
	Create(ctx context.Context, actor *domain.User, in CreateIncidentInput) (*domain.Incident, error)
	List(ctx context.Context, actor *domain.User) ([]*domain.Incident, error)
	ListCreatedBy(ctx context.Context, actor *domain.User) ([]*domain.Incident, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Incident, error)
	Update(ctx context.Context, actor *domain.User, id int64, in UpdateIncidentInput) (*domain.Incident, error)
}
