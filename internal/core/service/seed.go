package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

// SeedAccount is a bootstrap credential created on an empty user store.
type SeedAccount struct {
	Username string
	Password string
	Role     string
}

// DefaultSeedAccounts gives a fresh install one account per role.
var DefaultSeedAccounts = []SeedAccount{
	{Username: "admin", Password: "admin123", Role: domain.RoleAdmin},
	{Username: "tech", Password: "tech123", Role: domain.RoleTechnician},
	{Username: "user", Password: "user123", Role: domain.RoleUser},
}

// Seed registers accounts through auth when the user store is empty.
// It is a no-op once any user exists. Returns the number of users created.
func Seed(ctx context.Context, users ports.UserRepository, auth ports.AuthService, accounts []SeedAccount, log zerolog.Logger) (int, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("users", n).Msg("user store not empty, skipping seed")
		return 0, nil
	}

	created := 0
	for _, a := range accounts {
		if _, err := auth.Register(ctx, a.Username, a.Password, a.Role); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", a.Username, err)
		}
		created++
	}

	log.Warn().Int("users", created).Msg("seeded default accounts; change their passwords")
	return created, nil
}
