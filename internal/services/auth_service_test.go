package services

import (
	"testing"
	"time"
)

type authStubStore struct {
	users map[string]*User
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{users: map[string]*User{}}
}

func (s *authStubStore) FindUserByUsername(username string) (*User, error) {
	if u, ok := s.users[username]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *authStubStore) add(t *testing.T, id, username, password string, role Role, active bool) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	s.users[username] = &User{ID: id, Username: username, PassHash: hash, Role: role, Name: "Тест " + id, IsActive: active}
}

func stubSigner(uid string, role Role, name string, ttl time.Duration) (string, error) {
	return "token:" + uid + ":" + string(role), nil
}

func TestLoginSuccess(t *testing.T) {
	store := newAuthStubStore()
	store.add(t, "PT001", "pt001234", "pass123", RolePatient, true)
	svc := NewAuthService(store, fixedLicenseService(newLicenseStubStore(), time.Unix(0, 0)), stubSigner)

	res, err := svc.Login("pt001234", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != "token:PT001:patient" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if res.User.ID != "PT001" || res.IsLicensed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoginFailures(t *testing.T) {
	store := newAuthStubStore()
	store.add(t, "PT001", "pt001234", "pass123", RolePatient, true)
	store.add(t, "PT002", "pt002345", "pass123", RolePatient, false)
	svc := NewAuthService(store, fixedLicenseService(newLicenseStubStore(), time.Unix(0, 0)), stubSigner)

	if _, err := svc.Login("pt001234", "wrong"); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if _, err := svc.Login("missing", "pass123"); err == nil {
		t.Fatalf("expected error for unknown username")
	}
	if _, err := svc.Login("pt002345", "pass123"); err == nil {
		t.Fatalf("expected error for deactivated account")
	}
	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("expected validation error for empty credentials")
	}
}

func TestLoginTherapistCreatesLicense(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newAuthStubStore()
	store.add(t, "TH001", "therapist", "therapy123", RoleTherapist, true)
	licStore := newLicenseStubStore()
	svc := NewAuthService(store, fixedLicenseService(licStore, now), stubSigner)

	res, err := svc.Login("therapist", "therapy123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.IsLicensed {
		t.Fatalf("first login must not be licensed")
	}
	if licStore.rows["TH001"] == nil {
		t.Fatalf("first therapist login should create an empty license row")
	}
}
