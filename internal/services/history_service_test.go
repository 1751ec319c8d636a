package services

import (
	"sort"
	"strings"
	"testing"
	"time"
)

type historyStubStore struct {
	sessions []*TherapySession
}

func (s *historyStubStore) AppendSession(rec *TherapySession) error {
	copy := *rec
	s.sessions = append(s.sessions, &copy)
	return nil
}

func (s *historyStubStore) ListSessionsByPatient(pid string) ([]*TherapySession, error) {
	out := []*TherapySession{}
	for _, rec := range s.sessions {
		if rec.PatientID == pid {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *historyStubStore) ListAllSessions() ([]*TherapySession, error) {
	return append([]*TherapySession(nil), s.sessions...), nil
}

func day(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

func seededHistory() *historyStubStore {
	return &historyStubStore{sessions: []*TherapySession{
		{ID: "S1", PatientID: "PT001", Date: day(10), DurationMinutes: 30, ModuleUsed: "360° Экспозиция", PreSUD: 7, PostSUD: 4},
		{ID: "S2", PatientID: "PT001", Date: day(15), DurationMinutes: 35, ModuleUsed: "Безопасное место - Море", PreSUD: 6, PostSUD: 3},
		{ID: "S3", PatientID: "PT001", Date: day(20), DurationMinutes: 40, ModuleUsed: "Безопасное место - Море", PreSUD: 5, PostSUD: 2},
		{ID: "S4", PatientID: "PT002", Date: day(12), DurationMinutes: 30, ModuleUsed: "EMDR", PreSUD: 8, PostSUD: 5},
	}}
}

func TestPatientWithSessions(t *testing.T) {
	svc := NewHistoryService(seededHistory(), seededDirectory())

	u, sessions, err := svc.PatientWithSessions("PT001")
	if err != nil {
		t.Fatalf("PatientWithSessions returned error: %v", err)
	}
	if u.Name != "Иван Петров" || len(sessions) != 3 {
		t.Fatalf("unexpected result: %+v, %d sessions", u, len(sessions))
	}
	if sessions[0].ID != "S1" || sessions[2].ID != "S3" {
		t.Fatalf("sessions not in date order: %+v", sessions)
	}

	// A therapist id is not a patient.
	if _, _, err := svc.PatientWithSessions("TH001"); err == nil {
		t.Fatalf("expected not-found for non-patient id")
	}
}

func TestAverageSUDReduction(t *testing.T) {
	svc := NewHistoryService(seededHistory(), seededDirectory())
	avg, err := svc.AverageSUDReduction()
	if err != nil {
		t.Fatalf("AverageSUDReduction returned error: %v", err)
	}
	// Deltas: -3, -3, -3, -3 over 4 sessions.
	if avg != -3.0 {
		t.Fatalf("expected -3.0, got %v", avg)
	}

	empty := NewHistoryService(&historyStubStore{}, seededDirectory())
	avg, err = empty.AverageSUDReduction()
	if err != nil || avg != 0 {
		t.Fatalf("empty history should average 0, got %v err %v", avg, err)
	}
}

func TestPatientPreferences(t *testing.T) {
	svc := NewHistoryService(seededHistory(), seededDirectory())
	prefs, err := svc.PatientPreferences("PT001")
	if err != nil {
		t.Fatalf("PatientPreferences returned error: %v", err)
	}
	if prefs.FavoriteModule != "Безопасное место - Море" {
		t.Fatalf("unexpected favorite module %q", prefs.FavoriteModule)
	}
	if prefs.SafePlacePreferences["Море"] != 2 {
		t.Fatalf("unexpected safe place counts: %+v", prefs.SafePlacePreferences)
	}
	if prefs.TotalSessions != 3 || prefs.AvgSUDReduction != -3.0 {
		t.Fatalf("unexpected aggregates: %+v", prefs)
	}

	none, err := svc.PatientPreferences("PT999")
	if err != nil || none != nil {
		t.Fatalf("empty history should yield nil preferences")
	}
}

func TestRecommendations(t *testing.T) {
	svc := NewHistoryService(seededHistory(), seededDirectory())

	prefs, err := svc.PatientPreferences("PT001")
	if err != nil {
		t.Fatalf("PatientPreferences returned error: %v", err)
	}
	recs := svc.Recommendations(prefs)
	if len(recs) != 1 {
		t.Fatalf("expected one recommendation, got %d", len(recs))
	}
	if recs[0].Type != "interface_preset" || !strings.Contains(recs[0].Description, "Море") {
		t.Fatalf("unexpected recommendation: %+v", recs[0])
	}

	if recs := svc.Recommendations(nil); recs != nil {
		t.Fatalf("nil preferences should yield no recommendations")
	}
	few := &Preferences{FavoriteModule: "Безопасное место - Лес", TotalSessions: 2}
	if recs := svc.Recommendations(few); recs != nil {
		t.Fatalf("fewer than 3 sessions should yield no recommendations")
	}
}

func TestExportSessionsCSV(t *testing.T) {
	svc := NewHistoryService(seededHistory(), seededDirectory())
	b, err := svc.ExportSessionsCSV("PT001")
	if err != nil {
		t.Fatalf("ExportSessionsCSV returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "session_id,date,duration_minutes,module_used,pre_sud,post_sud,sud_reduction") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "S1") || !strings.Contains(lines[1], "-3") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}
