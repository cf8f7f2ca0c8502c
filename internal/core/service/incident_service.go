package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
	"github.com/sirpyerre/incident-tracker/pkg/metrics"
)

// updaterRoles may change an incident's status or assignee.
var updaterRoles = []string{domain.RoleAdmin, domain.RoleTechnician}

type IncidentService struct {
	repo     ports.IncidentRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewIncidentService(repo ports.IncidentRepository, notifier ports.Notifier, logger zerolog.Logger) *IncidentService {
	return &IncidentService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create files a new Open incident on behalf of actor and hands it to the
// notifier. Notification never affects the result.
func (s *IncidentService) Create(ctx context.Context, actor *domain.User, in ports.CreateIncidentInput) (*domain.Incident, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	priority := strings.TrimSpace(in.Priority)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	case priority == "":
		return nil, fmt.Errorf("%w: priority is required", domain.ErrValidation)
	}

	now := s.now()
	incident := &domain.Incident{
		Title:       title,
		Description: description,
		Status:      domain.StatusOpen,
		Priority:    priority,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		s.logger.Error().Err(err).Msg("failed to create incident")
		return nil, err
	}

	metrics.IncidentsCreatedTotal.WithLabelValues(priority).Inc()
	s.logger.Info().Int64("incident_id", incident.ID).Str("created_by", actor.ID).Msg("incident created")

	if s.notifier != nil {
		s.notifier.Notify(*incident)
	}
	return incident, nil
}

// List returns every incident. All authenticated users see all incidents.
func (s *IncidentService) List(ctx context.Context, actor *domain.User) ([]*domain.Incident, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.List(ctx)
}

// ListCreatedBy returns the incidents the actor filed.
func (s *IncidentService) ListCreatedBy(ctx context.Context, actor *domain.User) ([]*domain.Incident, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByCreator(ctx, actor.ID)
}

func (s *IncidentService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Incident, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial update. Only admins and technicians may update,
// and the role check runs before the incident is looked up. UpdatedAt is
// refreshed even when nothing else changes.
func (s *IncidentService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateIncidentInput) (*domain.Incident, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.HasRole(updaterRoles...) {
		return nil, domain.ErrForbidden
	}

	var status domain.IncidentStatus
	if in.Status != nil {
		status = domain.IncidentStatus(*in.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: status must be one of: Open, In Progress, Resolved, Closed", domain.ErrValidation)
		}
	}

	// Only the immutable created_at is used from this read.
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Touch(s.now())

	patch := ports.IncidentPatch{UpdatedAt: current.UpdatedAt}
	if in.Status != nil {
		patch.Status = &status
	}
	if in.AssignedToSet {
		patch.AssignedTo = in.AssignedTo
		patch.AssignedToSet = true
	}

	incident, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		s.logger.Error().Err(err).Int64("incident_id", id).Msg("failed to update incident")
		return nil, err
	}

	metrics.IncidentsUpdatedTotal.WithLabelValues(string(incident.Status)).Inc()
	s.logger.Info().
		Int64("incident_id", id).
		Str("status", string(incident.Status)).
		Str("updated_by", actor.ID).
		Msg("incident updated")

	return incident, nil
}
