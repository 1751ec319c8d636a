package api

import (
	"github.com/psyvr/exposure/internal/services"
)

type directoryStoreAdapter struct {
	store Store
}

func newDirectoryStoreAdapter(store Store) services.DirectoryStore {
	return &directoryStoreAdapter{store: store}
}

func (a *directoryStoreAdapter) GetUser(id string) (*services.User, error) {
	u, err := a.store.GetUser(id)
	if err != nil || u == nil {
		return nil, err
	}
	return toServiceUser(u), nil
}

func (a *directoryStoreAdapter) ListUsers() ([]*services.User, error) {
	users, err := a.store.ListUsers()
	if err != nil {
		return nil, err
	}
	out := make([]*services.User, 0, len(users))
	for _, u := range users {
		out = append(out, toServiceUser(u))
	}
	return out, nil
}

func (a *directoryStoreAdapter) ListPatientsByTherapist(tid string) ([]*services.User, error) {
	users, err := a.store.ListPatientsByTherapist(tid)
	if err != nil {
		return nil, err
	}
	out := make([]*services.User, 0, len(users))
	for _, u := range users {
		out = append(out, toServiceUser(u))
	}
	return out, nil
}

func (a *directoryStoreAdapter) AddUser(u *services.User) error {
	if u == nil {
		return services.NewInvalidError("user required")
	}
	return a.store.AddUser(fromServiceUser(u))
}

func (a *directoryStoreAdapter) SetUserActive(id string, active bool) (bool, error) {
	return a.store.SetUserActive(id, active)
}

func (a *directoryStoreAdapter) SetUserPassword(id string, hash []byte) (bool, error) {
	return a.store.SetUserPassword(id, hash)
}

func (a *directoryStoreAdapter) CountUsersByRole(role services.Role) (int, error) {
	return a.store.CountUsersByRole(string(role))
}

var _ services.DirectoryStore = (*directoryStoreAdapter)(nil)
