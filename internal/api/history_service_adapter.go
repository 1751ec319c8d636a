package api

import (
	"github.com/psyvr/exposure/internal/services"
)

type historyStoreAdapter struct {
	store Store
}

// newHistoryStoreAdapter serves both the history service and the simulation
// recorder; they share the AppendSession method.
func newHistoryStoreAdapter(store Store) *historyStoreAdapter {
	return &historyStoreAdapter{store: store}
}

func (a *historyStoreAdapter) AppendSession(rec *services.TherapySession) error {
	if rec == nil {
		return services.NewInvalidError("session required")
	}
	return a.store.AddSession(fromServiceSession(rec))
}

func (a *historyStoreAdapter) ListSessionsByPatient(pid string) ([]*services.TherapySession, error) {
	rows, err := a.store.ListSessionsByPatient(pid)
	if err != nil {
		return nil, err
	}
	out := make([]*services.TherapySession, 0, len(rows))
	for _, rec := range rows {
		out = append(out, toServiceSession(rec))
	}
	return out, nil
}

func (a *historyStoreAdapter) ListAllSessions() ([]*services.TherapySession, error) {
	rows, err := a.store.ListAllSessions()
	if err != nil {
		return nil, err
	}
	out := make([]*services.TherapySession, 0, len(rows))
	for _, rec := range rows {
		out = append(out, toServiceSession(rec))
	}
	return out, nil
}

var (
	_ services.HistoryStore    = (*historyStoreAdapter)(nil)
	_ services.SessionRecorder = (*historyStoreAdapter)(nil)
)

func toServiceSession(rec *TherapySession) *services.TherapySession {
	return &services.TherapySession{
		ID:              rec.ID,
		PatientID:       rec.PatientID,
		Date:            rec.Date,
		DurationMinutes: rec.DurationMinutes,
		ModuleUsed:      rec.ModuleUsed,
		PreSUD:          rec.PreSUD,
		PostSUD:         rec.PostSUD,
		Parameters:      rec.Parameters,
	}
}

func fromServiceSession(rec *services.TherapySession) *TherapySession {
	return &TherapySession{
		ID:              rec.ID,
		PatientID:       rec.PatientID,
		Date:            rec.Date,
		DurationMinutes: rec.DurationMinutes,
		ModuleUsed:      rec.ModuleUsed,
		PreSUD:          rec.PreSUD,
		PostSUD:         rec.PostSUD,
		Parameters:      rec.Parameters,
	}
}
