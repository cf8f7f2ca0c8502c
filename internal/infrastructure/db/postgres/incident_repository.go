package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

var _ ports.IncidentRepository = (*IncidentRepository)(nil)

const incidentColumns = `id, title, description, status, priority, created_by, assigned_to, created_at, updated_at`

// IncidentRepository provides Postgres-backed persistence for incidents.
type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

// Create lets the BIGSERIAL column assign the ID and writes it back to inc.
func (r *IncidentRepository) Create(ctx context.Context, inc *domain.Incident) error {
	const query = `
		INSERT INTO incidents (title, description, status, priority, created_by, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		inc.Title, inc.Description, string(inc.Status), inc.Priority,
		inc.CreatedBy, inc.AssignedTo, inc.CreatedAt, inc.UpdatedAt,
	).Scan(&inc.ID)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id int64) (*domain.Incident, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id)
	inc, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return inc, nil
}

// Patch writes only the columns present in p and returns the stored row.
// updated_at goes through GREATEST so a slow writer cannot move it backwards.
func (r *IncidentRepository) Patch(ctx context.Context, id int64, p ports.IncidentPatch) (*domain.Incident, error) {
	args := []any{id, p.UpdatedAt}
	sets := []string{"updated_at = GREATEST(updated_at, $2)"}
	if p.Status != nil {
		args = append(args, string(*p.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if p.AssignedToSet {
		args = append(args, p.AssignedTo)
		sets = append(sets, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	query := `UPDATE incidents SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + incidentColumns
	inc, err := scanIncident(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return inc, nil
}

func (r *IncidentRepository) List(ctx context.Context) ([]*domain.Incident, error) {
	return r.query(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY id`)
}

func (r *IncidentRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Incident, error) {
	return r.query(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE created_by = $1 ORDER BY id`, userID)
}

func (r *IncidentRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Incident, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return out, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		inc    domain.Incident
		status string
	)
	err := row.Scan(
		&inc.ID, &inc.Title, &inc.Description, &status, &inc.Priority,
		&inc.CreatedBy, &inc.AssignedTo, &inc.CreatedAt, &inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inc.Status = domain.IncidentStatus(status)
	inc.CreatedAt = inc.CreatedAt.UTC()
	inc.UpdatedAt = inc.UpdatedAt.UTC()
	return &inc, nil
}
