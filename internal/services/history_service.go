package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

// SafePlaceModule is the module-name prefix that carries a sub-preference
// ("Безопасное место - Море" etc.).
const SafePlaceModule = "Безопасное место"

type HistoryStore interface {
	AppendSession(rec *TherapySession) error
	ListSessionsByPatient(patientID string) ([]*TherapySession, error)
	ListAllSessions() ([]*TherapySession, error)
}

// HistoryService reads the append-only therapy-session log and derives
// per-patient preferences and practice-wide statistics from it.
type HistoryService struct {
	store HistoryStore
	users DirectoryStore
}

func NewHistoryService(store HistoryStore, users DirectoryStore) *HistoryService {
	return &HistoryService{store: store, users: users}
}

func (s *HistoryService) Append(rec *TherapySession) error {
	return s.store.AppendSession(rec)
}

// PatientWithSessions returns the patient record and their sessions in date
// order. Non-patient ids resolve to not found.
func (s *HistoryService) PatientWithSessions(patientID string) (*User, []*TherapySession, error) {
	u, err := s.users.GetUser(patientID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || u.Role != RolePatient {
		return nil, nil, NewNotFoundError("patient not found")
	}
	sessions, err := s.store.ListSessionsByPatient(patientID)
	if err != nil {
		return nil, nil, err
	}
	return u, sessions, nil
}

// PatientsWithSessions pairs each of the therapist's patients with their
// session history.
func (s *HistoryService) PatientsWithSessions(therapistID string) ([]*User, [][]*TherapySession, error) {
	patients, err := s.users.ListPatientsByTherapist(therapistID)
	if err != nil {
		return nil, nil, err
	}
	sessions := make([][]*TherapySession, len(patients))
	for i, p := range patients {
		ss, err := s.store.ListSessionsByPatient(p.ID)
		if err != nil {
			return nil, nil, err
		}
		sessions[i] = ss
	}
	return patients, sessions, nil
}

// AverageSUDReduction is the mean post−pre delta over every recorded
// session; negative values mean distress went down.
func (s *HistoryService) AverageSUDReduction() (float64, error) {
	all, err := s.store.ListAllSessions()
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}
	total := 0
	for _, rec := range all {
		total += rec.PostSUD - rec.PreSUD
	}
	return float64(total) / float64(len(all)), nil
}

type Preferences struct {
	FavoriteModule       string         `json:"favorite_module"`
	ModuleCounts         map[string]int `json:"module_counts"`
	SafePlacePreferences map[string]int `json:"safe_place_preferences"`
	TotalSessions        int            `json:"total_sessions"`
	AvgSUDReduction      float64        `json:"avg_sud_reduction"`
}

// PatientPreferences aggregates module usage for one patient. An empty
// history yields a nil result.
func (s *HistoryService) PatientPreferences(patientID string) (*Preferences, error) {
	sessions, err := s.store.ListSessionsByPatient(patientID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	moduleCounts := map[string]int{}
	safePlaces := map[string]int{}
	totalReduction := 0
	for _, rec := range sessions {
		moduleCounts[rec.ModuleUsed]++
		if strings.Contains(rec.ModuleUsed, SafePlaceModule) {
			place := "default"
			if i := strings.LastIndex(rec.ModuleUsed, " - "); i >= 0 {
				place = rec.ModuleUsed[i+len(" - "):]
			}
			safePlaces[place]++
		}
		totalReduction += rec.PostSUD - rec.PreSUD
	}
	favorite := "EMDR"
	best := 0
	for module, n := range moduleCounts {
		if n > best || (n == best && module < favorite) {
			favorite = module
			best = n
		}
	}
	return &Preferences{
		FavoriteModule:       favorite,
		ModuleCounts:         moduleCounts,
		SafePlacePreferences: safePlaces,
		TotalSessions:        len(sessions),
		AvgSUDReduction:      float64(totalReduction) / float64(len(sessions)),
	}, nil
}

type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Recommendations derives interface presets from preferences; only patients
// with at least three sessions get any.
func (s *HistoryService) Recommendations(prefs *Preferences) []Recommendation {
	if prefs == nil || prefs.TotalSessions < 3 {
		return nil
	}
	var out []Recommendation
	if strings.Contains(prefs.FavoriteModule, SafePlaceModule) {
		place := "Море"
		if i := strings.LastIndex(prefs.FavoriteModule, " - "); i >= 0 {
			place = prefs.FavoriteModule[i+len(" - "):]
		}
		out = append(out, Recommendation{
			Type:        "interface_preset",
			Title:       "Быстрый доступ к безопасному месту",
			Description: "Предлагать «" + place + "» первым в списке",
			Priority:    "high",
		})
	}
	return out
}

// ExportSessionsCSV renders a patient's history as CSV, one row per session.
func (s *HistoryService) ExportSessionsCSV(patientID string) ([]byte, error) {
	_, sessions, err := s.PatientWithSessions(patientID)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"session_id", "date", "duration_minutes", "module_used", "pre_sud", "post_sud", "sud_reduction"})
	for _, rec := range sessions {
		row := []string{
			rec.ID,
			rec.Date.Format(time.RFC3339),
			strconv.Itoa(rec.DurationMinutes),
			rec.ModuleUsed,
			strconv.Itoa(rec.PreSUD),
			strconv.Itoa(rec.PostSUD),
			strconv.Itoa(rec.PostSUD - rec.PreSUD),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
