package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[copy.Username] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.users)), nil
}

// ── Security ──────────────────────────────────────────────────────────────────

type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

func (stubHasher) Verify(plaintext, hash string) bool { return hash == "hashed:"+plaintext }

type stubTokens struct{}

func (stubTokens) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user")
	}
	return "tok:" + userID, nil
}

func (stubTokens) Verify(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "tok:")
	if !ok || id == "" {
		return "", domain.ErrInvalidToken
	}
	return id, nil
}

// ── Incidents ─────────────────────────────────────────────────────────────────

type stubIncidentRepo struct {
	mu       sync.Mutex
	items    map[int64]*domain.Incident
	nextID   int64
	patchErr error
}

func newStubIncidentRepo() *stubIncidentRepo {
	return &stubIncidentRepo{items: make(map[int64]*domain.Incident)}
}

func cloneIncident(i *domain.Incident) *domain.Incident {
	clone := *i
	if i.AssignedTo != nil {
		v := *i.AssignedTo
		clone.AssignedTo = &v
	}
	return &clone
}

func (r *stubIncidentRepo) Create(_ context.Context, inc *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	inc.ID = r.nextID
	r.items[inc.ID] = cloneIncident(inc)
	return nil
}

func (r *stubIncidentRepo) FindByID(_ context.Context, id int64) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.items[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	return cloneIncident(inc), nil
}

func (r *stubIncidentRepo) Patch(_ context.Context, id int64, p ports.IncidentPatch) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.patchErr != nil {
		return nil, r.patchErr
	}
	inc, ok := r.items[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	if p.Status != nil {
		inc.Status = *p.Status
	}
	if p.AssignedToSet {
		inc.AssignedTo = nil
		if p.AssignedTo != nil {
			v := *p.AssignedTo
			inc.AssignedTo = &v
		}
	}
	if p.UpdatedAt.After(inc.UpdatedAt) {
		inc.UpdatedAt = p.UpdatedAt
	}
	return cloneIncident(inc), nil
}

func (r *stubIncidentRepo) List(_ context.Context) ([]*domain.Incident, error) {
	return r.filter(func(*domain.Incident) bool { return true }), nil
}

func (r *stubIncidentRepo) ListByCreator(_ context.Context, userID string) ([]*domain.Incident, error) {
	return r.filter(func(i *domain.Incident) bool { return i.CreatedBy == userID }), nil
}

func (r *stubIncidentRepo) filter(keep func(*domain.Incident) bool) []*domain.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Incident, 0, len(r.items))
	for _, inc := range r.items {
		if keep(inc) {
			out = append(out, cloneIncident(inc))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// ── Notifier ──────────────────────────────────────────────────────────────────

type stubNotifier struct {
	mu   sync.Mutex
	seen []domain.Incident
}

func (n *stubNotifier) Notify(inc domain.Incident) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, inc)
}
