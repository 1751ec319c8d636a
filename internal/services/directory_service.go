package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

type DirectoryStore interface {
	GetUser(id string) (*User, error)
	ListUsers() ([]*User, error)
	ListPatientsByTherapist(therapistID string) ([]*User, error)
	AddUser(u *User) error
	SetUserActive(id string, active bool) (bool, error)
	SetUserPassword(id string, hash []byte) (bool, error)
	CountUsersByRole(role Role) (int, error)
}

// DirectoryService manages user accounts: patient creation by therapists,
// therapist creation by the superadmin, activation toggles.
//
// Generated passwords are kept in an in-process map so the creating
// therapist can hand them over; they are never persisted in plain text and
// do not survive a restart.
type DirectoryService struct {
	store DirectoryStore
	now   func() time.Time

	mu            sync.Mutex
	tempPasswords map[string]string
}

func NewDirectoryService(store DirectoryStore) *DirectoryService {
	return &DirectoryService{
		store:         store,
		now:           func() time.Time { return time.Now().UTC() },
		tempPasswords: map[string]string{},
	}
}

type CreatedAccount struct {
	User     *User
	Username string
	Password string
}

// CreatePatient registers a new patient owned by the therapist, with
// generated credentials (pt + 6 digits / 8-char password).
func (s *DirectoryService) CreatePatient(name, therapistID string) (*CreatedAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("patient name required")
	}
	therapist, err := s.store.GetUser(therapistID)
	if err != nil {
		return nil, err
	}
	if therapist == nil || therapist.Role != RoleTherapist {
		return nil, NewForbiddenError("not a therapist")
	}
	n, err := s.store.CountUsersByRole(RolePatient)
	if err != nil {
		return nil, err
	}
	username := "pt" + randDigits(6)
	password := randAlnum(8)
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:          fmt.Sprintf("PT%03d", n+1),
		Username:    username,
		PassHash:    hash,
		Role:        RolePatient,
		Name:        name,
		TherapistID: therapistID,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tempPasswords[u.ID] = password
	s.mu.Unlock()
	return &CreatedAccount{User: u, Username: username, Password: password}, nil
}

// CreateTherapist registers a new therapist account (superadmin action).
func (s *DirectoryService) CreateTherapist(name string) (*CreatedAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("therapist name required")
	}
	n, err := s.store.CountUsersByRole(RoleTherapist)
	if err != nil {
		return nil, err
	}
	username := "doc" + randDigits(4)
	password := randAlnum(10)
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:        fmt.Sprintf("TH%03d", n+1),
		Username:  username,
		PassHash:  hash,
		Role:      RoleTherapist,
		Name:      name,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	return &CreatedAccount{User: u, Username: username, Password: password}, nil
}

// ResetPatientPassword generates a fresh password for a patient owned by the
// given therapist.
func (s *DirectoryService) ResetPatientPassword(patientID, therapistID string) (string, error) {
	patient, err := s.store.GetUser(patientID)
	if err != nil {
		return "", err
	}
	if patient == nil || patient.Role != RolePatient || patient.TherapistID != therapistID {
		return "", NewForbiddenError("patient not found or access denied")
	}
	password := randAlnum(8)
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	ok, err := s.store.SetUserPassword(patientID, hash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NewNotFoundError("patient not found")
	}
	s.mu.Lock()
	s.tempPasswords[patientID] = password
	s.mu.Unlock()
	return password, nil
}

// PatientPassword returns the plain password of a freshly created patient,
// if still held in memory.
func (s *DirectoryService) PatientPassword(patientID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tempPasswords[patientID]
	return p, ok
}

// ListPatients returns the therapist's active patients.
func (s *DirectoryService) ListPatients(therapistID string) ([]*User, error) {
	return s.store.ListPatientsByTherapist(therapistID)
}

// ListUsers returns every account (superadmin view, inactive included).
func (s *DirectoryService) ListUsers() ([]*User, error) {
	return s.store.ListUsers()
}

// GetUser returns an active user by id, or nil.
func (s *DirectoryService) GetUser(id string) (*User, error) {
	return s.store.GetUser(id)
}

// ToggleActive flips the active flag and returns the new status. Accounts
// are deactivated, never hard-deleted.
func (s *DirectoryService) ToggleActive(id string) (bool, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == id {
			ok, err := s.store.SetUserActive(id, !u.IsActive)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, NewNotFoundError("user not found")
			}
			return !u.IsActive, nil
		}
	}
	return false, NewNotFoundError("user not found")
}

const (
	digitChars = "0123456789"
	alnumChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func randDigits(n int) string { return randFrom(digitChars, n) }
func randAlnum(n int) string  { return randFrom(alnumChars, n) }

func randFrom(alphabet string, n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			b[i] = alphabet[0]
			continue
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
