package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

var (
	alice = &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	tech  = &domain.User{ID: "u2", Username: "tech", Role: domain.RoleTechnician}
	admin = &domain.User{ID: "u3", Username: "admin", Role: domain.RoleAdmin}
)

func strPtr(s string) *string { return &s }

type fixture struct {
	svc      *IncidentService
	repo     *stubIncidentRepo
	notifier *stubNotifier
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newStubIncidentRepo(),
		notifier: &stubNotifier{},
		clock:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewIncidentService(f.repo, f.notifier, zerolog.Nop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) create(t *testing.T) *domain.Incident {
	t.Helper()
	inc, err := f.svc.Create(context.Background(), alice, ports.CreateIncidentInput{
		Title:       "Printer down",
		Description: "3rd floor",
		Priority:    "High",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return inc
}

func TestIncidentService_Create(t *testing.T) {
	f := newFixture()
	inc := f.create(t)

	if inc.ID != 1 {
		t.Fatalf("expected id 1, got %d", inc.ID)
	}
	if inc.Status != domain.StatusOpen {
		t.Fatalf("expected Open, got %s", inc.Status)
	}
	if inc.CreatedBy != alice.ID {
		t.Fatalf("expected created_by %s, got %s", alice.ID, inc.CreatedBy)
	}
	if inc.AssignedTo != nil {
		t.Fatalf("expected no assignee")
	}
	if !inc.CreatedAt.Equal(f.clock) || !inc.UpdatedAt.Equal(inc.CreatedAt) {
		t.Fatalf("expected created_at == updated_at == now, got %v / %v", inc.CreatedAt, inc.UpdatedAt)
	}
	if len(f.notifier.seen) != 1 || f.notifier.seen[0].ID != inc.ID {
		t.Fatalf("expected one notification for incident %d, got %+v", inc.ID, f.notifier.seen)
	}
}

func TestIncidentService_Create_Validation(t *testing.T) {
	f := newFixture()

	cases := map[string]ports.CreateIncidentInput{
		"missing title":       {Description: "d", Priority: "Low"},
		"missing description": {Title: "t", Priority: "Low"},
		"blank priority":      {Title: "t", Description: "d", Priority: "   "},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), alice, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(f.repo.items) != 0 || len(f.notifier.seen) != 0 {
		t.Fatalf("invalid input must not persist or notify")
	}
}

func TestIncidentService_Create_RequiresActor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), nil, ports.CreateIncidentInput{Title: "t", Description: "d", Priority: "Low"})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIncidentService_Create_WithoutNotifier(t *testing.T) {
	svc := NewIncidentService(newStubIncidentRepo(), nil, zerolog.Nop())
	if _, err := svc.Create(context.Background(), alice, ports.CreateIncidentInput{Title: "t", Description: "d", Priority: "Low"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
}

func TestIncidentService_List(t *testing.T) {
	f := newFixture()
	f.create(t)
	if _, err := f.svc.Create(context.Background(), tech, ports.CreateIncidentInput{Title: "VPN", Description: "flaky", Priority: "Low"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := f.svc.List(context.Background(), alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("every user sees every incident; got %d", len(all))
	}

	mine, err := f.svc.ListCreatedBy(context.Background(), alice)
	if err != nil {
		t.Fatalf("list mine failed: %v", err)
	}
	if len(mine) != 1 || mine[0].CreatedBy != alice.ID {
		t.Fatalf("unexpected own incidents: %+v", mine)
	}
}

func TestIncidentService_Update_Technician(t *testing.T) {
	f := newFixture()
	inc := f.create(t)
	f.clock = f.clock.Add(time.Minute)

	got, err := f.svc.Update(context.Background(), tech, inc.ID, ports.UpdateIncidentInput{Status: strPtr("Resolved")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != domain.StatusResolved {
		t.Fatalf("expected Resolved, got %s", got.Status)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updated_at to advance")
	}

	stored, _ := f.repo.FindByID(context.Background(), inc.ID)
	if stored.Status != domain.StatusResolved || stored.Title != "Printer down" {
		t.Fatalf("unexpected stored incident: %+v", stored)
	}
}

func TestIncidentService_Update_Partial(t *testing.T) {
	f := newFixture()
	inc := f.create(t)

	got, err := f.svc.Update(context.Background(), admin, inc.ID, ports.UpdateIncidentInput{
		AssignedTo:    strPtr("tech"),
		AssignedToSet: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("status must be untouched, got %s", got.Status)
	}
	if got.AssignedTo == nil || *got.AssignedTo != "tech" {
		t.Fatalf("expected assignee tech, got %v", got.AssignedTo)
	}

	cleared, err := f.svc.Update(context.Background(), admin, inc.ID, ports.UpdateIncidentInput{AssignedToSet: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if cleared.AssignedTo != nil {
		t.Fatalf("expected assignee cleared, got %v", *cleared.AssignedTo)
	}
}

// staleReadRepo holds every FindByID until all expected readers have read,
// so concurrent updates all start from the same snapshot.
type staleReadRepo struct {
	*stubIncidentRepo
	reads sync.WaitGroup
}

func (r *staleReadRepo) FindByID(ctx context.Context, id int64) (*domain.Incident, error) {
	inc, err := r.stubIncidentRepo.FindByID(ctx, id)
	r.reads.Done()
	r.reads.Wait()
	return inc, err
}

func TestIncidentService_Update_ConcurrentFieldsBothSurvive(t *testing.T) {
	f := newFixture()
	inc := f.create(t)
	f.clock = f.clock.Add(time.Minute)

	repo := &staleReadRepo{stubIncidentRepo: f.repo}
	repo.reads.Add(2)
	svc := NewIncidentService(repo, f.notifier, zerolog.Nop())
	svc.now = f.svc.now

	inputs := []struct {
		actor *domain.User
		in    ports.UpdateIncidentInput
	}{
		{tech, ports.UpdateIncidentInput{Status: strPtr("Resolved")}},
		{admin, ports.UpdateIncidentInput{AssignedTo: strPtr("tech"), AssignedToSet: true}},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(inputs))
	for _, u := range inputs {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Update(context.Background(), u.actor, inc.ID, u.in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	stored, _ := f.repo.FindByID(context.Background(), inc.ID)
	if stored.Status != domain.StatusResolved {
		t.Fatalf("status lost: %s", stored.Status)
	}
	if stored.AssignedTo == nil || *stored.AssignedTo != "tech" {
		t.Fatalf("assignee lost: %v", stored.AssignedTo)
	}
	if !stored.UpdatedAt.Equal(f.clock) {
		t.Fatalf("expected updated_at %v, got %v", f.clock, stored.UpdatedAt)
	}
}

func TestIncidentService_Update_EmptyBodyRefreshesTimestamp(t *testing.T) {
	f := newFixture()
	inc := f.create(t)
	f.clock = f.clock.Add(time.Second)

	got, err := f.svc.Update(context.Background(), tech, inc.ID, ports.UpdateIncidentInput{})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Status != inc.Status || !got.UpdatedAt.Equal(f.clock) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestIncidentService_Update_ClockSkewNeverPrecedesCreation(t *testing.T) {
	f := newFixture()
	inc := f.create(t)
	f.clock = f.clock.Add(-time.Hour)

	got, err := f.svc.Update(context.Background(), tech, inc.ID, ports.UpdateIncidentInput{Status: strPtr("Closed")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("updated_at %v precedes created_at %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestIncidentService_Update_ForbiddenLeavesIncidentUnchanged(t *testing.T) {
	f := newFixture()
	inc := f.create(t)

	_, err := f.svc.Update(context.Background(), alice, inc.ID, ports.UpdateIncidentInput{Status: strPtr("Closed")})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), inc.ID)
	if stored.Status != domain.StatusOpen || !stored.UpdatedAt.Equal(inc.UpdatedAt) {
		t.Fatalf("incident changed after forbidden update: %+v", stored)
	}
}

func TestIncidentService_Update_ForbiddenBeforeLookup(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Update(context.Background(), alice, 404, ports.UpdateIncidentInput{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden even for a missing incident, got %v", err)
	}
}

func TestIncidentService_Update_Errors(t *testing.T) {
	f := newFixture()
	inc := f.create(t)

	if _, err := f.svc.Update(context.Background(), tech, 404, ports.UpdateIncidentInput{}); !errors.Is(err, domain.ErrIncidentNotFound) {
		t.Fatalf("expected ErrIncidentNotFound, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), tech, inc.ID, ports.UpdateIncidentInput{Status: strPtr("Pending")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), nil, inc.ID, ports.UpdateIncidentInput{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	f.repo.patchErr = errors.New("write conflict")
	if _, err := f.svc.Update(context.Background(), tech, inc.ID, ports.UpdateIncidentInput{}); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestIncidentService_Get(t *testing.T) {
	f := newFixture()
	inc := f.create(t)

	got, err := f.svc.Get(context.Background(), tech, inc.ID)
	if err != nil || got.ID != inc.ID {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}
	if _, err := f.svc.Get(context.Background(), tech, 99); !errors.Is(err, domain.ErrIncidentNotFound) {
		t.Fatalf("expected ErrIncidentNotFound, got %v", err)
	}
}
