package services

import (
	"math/rand"
	"testing"
	"time"
)

type recorderStub struct {
	records []*TherapySession
}

func (r *recorderStub) AppendSession(rec *TherapySession) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestSimulation(rec SessionRecorder) *SimulationService {
	svc := NewSimulationService(rec)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	svc.rng = rand.New(rand.NewSource(1))
	return svc
}

func TestScenarioCatalog(t *testing.T) {
	svc := newTestSimulation(nil)
	scenarios := svc.Scenarios()
	if len(scenarios) != 5 {
		t.Fatalf("expected 5 scenarios, got %d", len(scenarios))
	}
	for _, sc := range scenarios {
		if sc.InitialSUD < 7 || sc.InitialSUD > 9 {
			t.Fatalf("scenario %s: initial SUD %d outside [7,9]", sc.ID, sc.InitialSUD)
		}
		if len(sc.ExpectedProgress) != 3 {
			t.Fatalf("scenario %s: expected 3 progress steps, got %d", sc.ID, len(sc.ExpectedProgress))
		}
		if sc.Environment == "" || sc.PatientProfile == "" {
			t.Fatalf("scenario %s: missing environment or profile", sc.ID)
		}
	}
}

func TestStartScenario2(t *testing.T) {
	svc := newTestSimulation(nil)
	st, err := svc.Start("TH001", "scenario_2", "PT001")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if st.CurrentSUD != 9 {
		t.Fatalf("scenario_2 initial SUD should be 9, got %d", st.CurrentSUD)
	}
	if st.Phase != PhasePre || st.Status != "active" {
		t.Fatalf("unexpected initial state: %+v", st)
	}
	if st.SessionID != "SIM_PT001_1709287200" {
		t.Fatalf("unexpected session id %q", st.SessionID)
	}
}

func TestStartUnknownScenario(t *testing.T) {
	svc := newTestSimulation(nil)
	_, err := svc.Start("TH001", "scenario_99", "PT001")
	if err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestStartReplacesPriorState(t *testing.T) {
	svc := newTestSimulation(nil)
	if _, err := svc.Start("TH001", "scenario_1", "PT001"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	st, err := svc.Start("TH001", "scenario_3", "PT002")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if got := svc.Get("TH001"); got != st {
		t.Fatalf("expected the second start to replace state")
	}
}

func TestAdvancePhaseMapping(t *testing.T) {
	svc := newTestSimulation(nil)
	if _, err := svc.Start("TH001", "scenario_2", "PT001"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	cases := []struct {
		phase Phase
		want  int
	}{
		{PhasePre, 9},
		{PhaseDuring1, 7},
		{PhaseDuring2, 5},
		{PhasePost, 4},
	}
	for _, c := range cases {
		res, err := svc.Advance("TH001", c.phase)
		if err != nil {
			t.Fatalf("Advance(%s) returned error: %v", c.phase, err)
		}
		if res.SUDValue != c.want {
			t.Fatalf("Advance(%s) SUD = %d, want %d", c.phase, res.SUDValue, c.want)
		}
		if res.PatientReaction == "" {
			t.Fatalf("Advance(%s): empty patient reaction", c.phase)
		}
		if st := svc.Get("TH001"); st.Phase != c.phase || st.CurrentSUD != c.want {
			t.Fatalf("state not updated after Advance(%s): %+v", c.phase, st)
		}
	}
}

func TestAdvanceUnknownPhaseFallsBack(t *testing.T) {
	svc := newTestSimulation(nil)
	if _, err := svc.Start("TH001", "scenario_4", "PT001"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Advance("TH001", PhasePost); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	res, err := svc.Advance("TH001", Phase("warmup"))
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if res.SUDValue != 8 {
		t.Fatalf("unknown phase should fall back to initial SUD 8, got %d", res.SUDValue)
	}
}

func TestAdvanceWithoutState(t *testing.T) {
	svc := newTestSimulation(nil)
	_, err := svc.Advance("TH001", PhasePre)
	if err == nil {
		t.Fatalf("expected error with no active simulation")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNoSimulation {
		t.Fatalf("expected no-simulation error, got %v", err)
	}
}

func TestStopReturnsAndClears(t *testing.T) {
	rec := &recorderStub{}
	svc := newTestSimulation(rec)
	started, err := svc.Start("TH001", "scenario_1", "PT001")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Advance("TH001", PhasePost); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}

	st, ok := svc.Stop("TH001")
	if !ok || st == nil {
		t.Fatalf("expected active state from Stop")
	}
	if st.SessionID != started.SessionID || st.Status != "stopped" {
		t.Fatalf("unexpected stopped state: %+v", st)
	}
	if svc.Get("TH001") != nil {
		t.Fatalf("state should be cleared after Stop")
	}
	if _, ok := svc.Stop("TH001"); ok {
		t.Fatalf("second Stop should report absent, not error")
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one recorded session, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.PatientID != "PT001" || got.ModuleUsed != "Страх высоты" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.PreSUD != 7 || got.PostSUD != 3 {
		t.Fatalf("expected pre 7 / post 3, got %d/%d", got.PreSUD, got.PostSUD)
	}
}

func TestCurrentVitalsDoesNotAdvance(t *testing.T) {
	svc := newTestSimulation(nil)
	if _, err := svc.Start("TH001", "scenario_5", "PT001"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	st, vs, err := svc.CurrentVitals("TH001")
	if err != nil {
		t.Fatalf("CurrentVitals returned error: %v", err)
	}
	if st.Phase != PhasePre || st.CurrentSUD != 8 {
		t.Fatalf("CurrentVitals must not mutate state: %+v", st)
	}
	// Live reads use the 0.5 skin-conductance factor: 2 + 8*0.5 = 6.0.
	if vs.SkinConductance != 6.0 {
		t.Fatalf("expected skin conductance 6.0, got %v", vs.SkinConductance)
	}
}

func TestReactionsConfinedToPhasePool(t *testing.T) {
	svc := newTestSimulation(nil)
	allowed := map[string]bool{}
	for _, r := range phaseReactions[PhaseDuring1] {
		allowed[r] = true
	}
	for _, r := range scenarioReactions["ПТСР"][PhaseDuring1] {
		allowed[r] = true
	}
	for i := 0; i < 100; i++ {
		got := svc.pickReaction("ПТСР", PhaseDuring1)
		if !allowed[got] {
			t.Fatalf("reaction %q outside the during_1 pool", got)
		}
	}
}
