package store

import (
	"context"
	"errors"

	"teamcal/models"
	"teamcal/utils"
)

// SeedDefaultUsers creates the default accounts unless the administrator
// already exists. It reports how many accounts were created.
func SeedDefaultUsers(ctx context.Context, users *UserStore) (int, error) {
	_, err := users.GetByEmail(ctx, models.DefaultAdminEmail)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return 0, err
	}

	created := 0
	for _, seed := range models.DefaultUsers() {
		_, err := users.Create(ctx, NewUser{
			Email:      seed.Email,
			Password:   seed.Password,
			Name:       seed.Name,
			Role:       seed.Role,
			Position:   utils.Pointer(seed.Position),
			Department: utils.Pointer(seed.Department),
		})
		if errors.Is(err, utils.ErrConflict) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
