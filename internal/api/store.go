package api

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type User struct {
	ID          string    `json:"user_id"`
	Username    string    `json:"username"`
	PassHash    []byte    `json:"-"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	TherapistID string    `json:"therapist_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type TherapistLicense struct {
	TherapistID    string     `json:"therapist_id"`
	LicenseType    string     `json:"license_type"`
	IsActive       bool       `json:"is_active"`
	TestPassed     bool       `json:"test_passed"`
	TestScore      float64    `json:"test_score"`
	TestDate       *time.Time `json:"test_date,omitempty"`
	LicenseExpires *time.Time `json:"license_expires,omitempty"`
	CreatedAt      time.Time  `json:"-"`
}

// TestQuestion is stored with the answer key; the key never reaches clients.
type TestQuestion struct {
	ID          string   `json:"id"`
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	CorrectIdx  int      `json:"-"`
	Explanation string   `json:"-"`
	Category    string   `json:"category"`
}

type TherapySession struct {
	ID              string         `json:"session_id"`
	PatientID       string         `json:"patient_id"`
	Date            time.Time      `json:"date"`
	DurationMinutes int            `json:"duration_minutes"`
	ModuleUsed      string         `json:"module_used"`
	PreSUD          int            `json:"pre_sud"`
	PostSUD         int            `json:"post_sud"`
	Parameters      map[string]any `json:"parameters,omitempty"`
}

type memoryStore struct {
	mu        sync.RWMutex
	users     []*User
	licenses  map[string]*TherapistLicense
	questions []*TestQuestion
	sessions  []*TherapySession
}

// NewMemoryStore returns an in-memory Store. It backs tests and local runs
// without a database file.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     []*User{},
		licenses:  map[string]*TherapistLicense{},
		questions: []*TestQuestion{},
		sessions:  []*TherapySession{},
	}
}

func (s *memoryStore) AddUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users = append(s.users, &cp)
	return nil
}

func (s *memoryStore) GetUser(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindUserByUsername(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListUsers() ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) ListPatientsByTherapist(tid string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*User{}
	for _, u := range s.users {
		if u.Role == "patient" && u.TherapistID == tid && u.IsActive {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryStore) SetUserActive(id string, active bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.IsActive = active
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) SetUserPassword(id string, hash []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.PassHash = append([]byte(nil), hash...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) CountUsersByRole(role string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) GetLicense(tid string) (*TherapistLicense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.licenses[tid]
	if l == nil {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (s *memoryStore) PutLicense(l *TherapistLicense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.licenses[l.TherapistID] = &cp
	return nil
}

func (s *memoryStore) AddQuestion(q *TestQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.questions = append(s.questions, &cp)
	return nil
}

func (s *memoryStore) ListQuestions(category string) ([]*TestQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*TestQuestion{}
	for _, q := range s.questions {
		if category != "" && q.Category != category {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memoryStore) AddSession(rec *TherapySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.sessions = append(s.sessions, &cp)
	return nil
}

func (s *memoryStore) ListSessionsByPatient(pid string) ([]*TherapySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*TherapySession{}
	for _, rec := range s.sessions {
		if rec.PatientID == pid {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memoryStore) ListAllSessions() ([]*TherapySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TherapySession, 0, len(s.sessions))
	for _, rec := range s.sessions {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
