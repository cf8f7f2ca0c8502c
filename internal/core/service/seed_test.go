package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

func TestSeed_EmptyStore(t *testing.T) {
	repo := newStubUserRepo()
	auth := newAuthService(repo)

	n, err := Seed(context.Background(), repo, auth, DefaultSeedAccounts, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 accounts, got %d", n)
	}

	token, user, err := auth.Login(context.Background(), "tech", "tech123")
	if err != nil || token == "" {
		t.Fatalf("seeded account cannot log in: %v", err)
	}
	if user.Role != domain.RoleTechnician {
		t.Fatalf("unexpected role %s", user.Role)
	}
}

func TestSeed_SkipsPopulatedStore(t *testing.T) {
	repo := newStubUserRepo()
	auth := newAuthService(repo)
	_, _ = auth.Register(context.Background(), "alice", "pw1", domain.RoleUser)

	n, err := Seed(context.Background(), repo, auth, DefaultSeedAccounts, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no accounts created, got %d", n)
	}
	if _, err := repo.FindByUsername(context.Background(), "admin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("admin must not be seeded into a populated store")
	}
}

func TestSeed_CountError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("unreachable")

	if _, err := Seed(context.Background(), repo, newAuthService(repo), DefaultSeedAccounts, zerolog.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSeed_InvalidAccount(t *testing.T) {
	repo := newStubUserRepo()
	accounts := []SeedAccount{{Username: "root", Password: "pw", Role: "superuser"}}

	if _, err := Seed(context.Background(), repo, newAuthService(repo), accounts, zerolog.Nop()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
