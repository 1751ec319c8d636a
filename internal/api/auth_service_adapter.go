package api

import (
	"github.com/psyvr/exposure/internal/services"
)

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByUsername(username string) (*services.User, error) {
	u, err := a.store.FindUserByUsername(username)
	if err != nil || u == nil {
		return nil, err
	}
	return toServiceUser(u), nil
}

var _ services.AuthStore = (*authStoreAdapter)(nil)

func toServiceUser(u *User) *services.User {
	return &services.User{
		ID:          u.ID,
		Username:    u.Username,
		PassHash:    u.PassHash,
		Role:        services.Role(u.Role),
		Name:        u.Name,
		TherapistID: u.TherapistID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

func fromServiceUser(u *services.User) *User {
	return &User{
		ID:          u.ID,
		Username:    u.Username,
		PassHash:    u.PassHash,
		Role:        string(u.Role),
		Name:        u.Name,
		TherapistID: u.TherapistID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}
