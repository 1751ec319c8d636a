package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scenario is a predefined mock-session script. The catalog is fixed; the
// expected progress holds the target SUD for during_1, during_2 and post.
type Scenario struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	InitialSUD       int    `json:"initial_sud"`
	ExpectedProgress []int  `json:"expected_progress"`
	Environment      string `json:"environment"`
	PatientProfile   string `json:"patient_profile"`
}

// SimulationState is the live state of one mock session. Exactly one exists
// per therapist; starting a new scenario silently replaces it.
type SimulationState struct {
	Scenario   Scenario  `json:"scenario"`
	PatientID  string    `json:"patient_id"`
	Phase      Phase     `json:"phase"`
	CurrentSUD int       `json:"current_sud"`
	SessionID  string    `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
	Status     string    `json:"status"` // active|stopped
}

type ProgressResult struct {
	Phase           Phase
	SUDValue        int
	VitalSigns      VitalSigns
	PatientReaction string
}

type SessionRecorder interface {
	AppendSession(rec *TherapySession) error
}

// SimulationService owns the phase/SUD state machine. State is keyed by
// therapist id; access is serialized for safety, though concurrent requests
// from the same therapist are last-write-wins by design.
type SimulationService struct {
	mu       sync.Mutex
	active   map[string]*SimulationState
	recorder SessionRecorder
	now      func() time.Time
	rng      *rand.Rand
}

func NewSimulationService(recorder SessionRecorder) *SimulationService {
	return &SimulationService{
		active:   map[string]*SimulationState{},
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Scenarios returns the fixed catalog in stable order.
func (s *SimulationService) Scenarios() []Scenario {
	out := make([]Scenario, len(scenarioCatalog))
	copy(out, scenarioCatalog)
	return out
}

// Start initializes a new simulation for the therapist, replacing any prior
// state. The session id format SIM_{patient}_{unix} is part of the contract.
func (s *SimulationService) Start(therapistID, scenarioID, patientID string) (*SimulationState, error) {
	var sc *Scenario
	for i := range scenarioCatalog {
		if scenarioCatalog[i].ID == scenarioID {
			sc = &scenarioCatalog[i]
			break
		}
	}
	if sc == nil {
		return nil, NewNotFoundError("scenario not found")
	}
	now := s.now()
	st := &SimulationState{
		Scenario:   *sc,
		PatientID:  patientID,
		Phase:      PhasePre,
		CurrentSUD: sc.InitialSUD,
		SessionID:  fmt.Sprintf("SIM_%s_%d", patientID, now.Unix()),
		StartedAt:  now,
		Status:     "active",
	}
	s.mu.Lock()
	s.active[therapistID] = st
	s.mu.Unlock()
	return st, nil
}

// Advance moves the simulation to the requested phase. Phases are resolved
// directly, with no ordering guard; an unknown phase falls back to the
// scenario's initial SUD.
func (s *SimulationService) Advance(therapistID string, phase Phase) (*ProgressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.active[therapistID]
	if st == nil {
		return nil, NewNoSimulationError("no active simulation")
	}
	sud := phaseSUD(&st.Scenario, phase)
	st.Phase = phase
	st.CurrentSUD = sud
	return &ProgressResult{
		Phase:           phase,
		SUDValue:        sud,
		VitalSigns:      DeriveVitals(sud, SkinConductanceProgress, s.rng),
		PatientReaction: s.pickReaction(st.Scenario.Name, phase),
	}, nil
}

// CurrentVitals derives a live telemetry snapshot without advancing phase.
func (s *SimulationService) CurrentVitals(therapistID string) (*SimulationState, VitalSigns, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.active[therapistID]
	if st == nil {
		return nil, VitalSigns{}, NewNoSimulationError("no active simulation")
	}
	return st, DeriveVitals(st.CurrentSUD, SkinConductanceLive, s.rng), nil
}

// Stop returns and clears the therapist's state. A missing state is an
// absent result, not an error. The finished run is appended to the session
// history before the state is discarded.
func (s *SimulationService) Stop(therapistID string) (*SimulationState, bool) {
	s.mu.Lock()
	st := s.active[therapistID]
	delete(s.active, therapistID)
	s.mu.Unlock()
	if st == nil {
		return nil, false
	}
	now := s.now()
	st.Status = "stopped"
	if s.recorder != nil {
		rec := &TherapySession{
			ID:              uuid.NewString(),
			PatientID:       st.PatientID,
			Date:            now,
			DurationMinutes: int(now.Sub(st.StartedAt).Minutes()),
			ModuleUsed:      st.Scenario.Name,
			PreSUD:          st.Scenario.InitialSUD,
			PostSUD:         st.CurrentSUD,
			Parameters:      map[string]any{"session_id": st.SessionID, "environment": st.Scenario.Environment},
		}
		_ = s.recorder.AppendSession(rec)
	}
	return st, true
}

// Get returns the therapist's current state without modifying it.
func (s *SimulationService) Get(therapistID string) *SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[therapistID]
}

func phaseSUD(sc *Scenario, phase Phase) int {
	switch phase {
	case PhasePre:
		return sc.InitialSUD
	case PhaseDuring1:
		return sc.ExpectedProgress[0]
	case PhaseDuring2:
		return sc.ExpectedProgress[1]
	case PhasePost:
		return sc.ExpectedProgress[2]
	default:
		return sc.InitialSUD
	}
}

func (s *SimulationService) pickReaction(scenarioName string, phase Phase) string {
	pool := append([]string(nil), phaseReactions[phase]...)
	if extra, ok := scenarioReactions[scenarioName]; ok {
		pool = append(pool, extra[phase]...)
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[s.rng.Intn(len(pool))]
}

var scenarioCatalog = []Scenario{
	{
		ID:               "scenario_1",
		Name:             "Страх высоты",
		Description:      "Постепенная экспозиция на открытой высоте с контролем дыхания",
		InitialSUD:       7,
		ExpectedProgress: []int{5, 4, 3},
		Environment:      "Смотровая площадка небоскрёба",
		PatientProfile:   "Мужчина, 34 года, избегает балконов и мостов после падения с лестницы",
	},
	{
		ID:               "scenario_2",
		Name:             "ПТСР",
		Description:      "Контролируемая экспозиция травматических триггеров в безопасной среде",
		InitialSUD:       9,
		ExpectedProgress: []int{7, 5, 4},
		Environment:      "Городская улица, вечер",
		PatientProfile:   "Женщина, 29 лет, ПТСР после ДТП, острые реакции на звук тормозов",
	},
	{
		ID:               "scenario_3",
		Name:             "Социальная тревожность",
		Description:      "Выступление перед виртуальной аудиторией с нарастающей численностью",
		InitialSUD:       7,
		ExpectedProgress: []int{5, 3, 2},
		Environment:      "Конференц-зал",
		PatientProfile:   "Мужчина, 41 год, избегает совещаний и публичных выступлений",
	},
	{
		ID:               "scenario_4",
		Name:             "Страх полёта",
		Description:      "Полный цикл полёта от посадки до турбулентности",
		InitialSUD:       8,
		ExpectedProgress: []int{6, 4, 3},
		Environment:      "Салон самолёта",
		PatientProfile:   "Женщина, 52 года, не летала 11 лет, паническая реакция на взлёт",
	},
	{
		ID:               "scenario_5",
		Name:             "Клаустрофобия",
		Description:      "Замкнутые пространства с постепенным уменьшением объёма",
		InitialSUD:       8,
		ExpectedProgress: []int{6, 5, 3},
		Environment:      "Лифт офисного здания",
		PatientProfile:   "Мужчина, 27 лет, поднимается пешком на 14 этаж, избегает МРТ",
	},
}

// Flavor text pools. Selection is uniform within the phase pool plus any
// scenario-specific additions.
var phaseReactions = map[Phase][]string{
	PhasePre: {
		"Пациент напряжён, дыхание учащено",
		"Пациент осматривается, избегает смотреть на триггер",
		"Пациент сообщает о лёгкой тревоге",
	},
	PhaseDuring1: {
		"Пациент следует инструкциям, тревога заметна",
		"Пациент сжимает подлокотники, но остаётся в сцене",
		"Дыхание выравнивается, пациент продолжает",
	},
	PhaseDuring2: {
		"Пациент спокойнее, выполняет дыхательные упражнения",
		"Пациент описывает происходящее ровным голосом",
		"Заметное снижение напряжения в плечах",
	},
	PhasePost: {
		"Пациент расслаблен, улыбается",
		"Пациент отмечает, что было легче, чем ожидал",
		"Пациент спокойно обсуждает пройденную сцену",
	},
}

var scenarioReactions = map[string]map[Phase][]string{
	"ПТСР": {
		PhasePre:     {"Пациент вздрагивает от городского шума"},
		PhaseDuring1: {"Пациент применяет технику заземления 5-4-3-2-1"},
	},
	"Клаустрофобия": {
		PhasePre:     {"Пациент проверяет расположение дверей"},
		PhaseDuring2: {"Пациент замечает, что стены «перестали давить»"},
	},
}
