package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/psyvr/exposure/internal/middleware"
	"github.com/psyvr/exposure/internal/platform/logger"
	"github.com/psyvr/exposure/internal/services"
	"github.com/psyvr/exposure/internal/utils"
)

// Literal client-facing strings from the wire contract.
const (
	msgScenarioNotFound   = "Сценарий не найден"
	msgNoActiveSimulation = "Активная симуляция не найдена"
	msgSimulationStarted  = "Симуляция запущена"
	msgSimulationStopped  = "Симуляция завершена"
	msgPasswordUpdated    = "Пароль обновлён"
	msgAnswerAllQuestions = "Необходимо ответить на все вопросы теста"
)

type Router struct {
	store     Store
	log       *logger.Logger
	auth      *services.AuthService
	exam      *services.ExamService
	licenses  *services.LicenseService
	sim       *services.SimulationService
	directory *services.DirectoryService
	history   *services.HistoryService
	gate      *services.AccessGate
}

func NewRouter(store Store, log *logger.Logger) *Router {
	licenses := services.NewLicenseService(newLicenseStoreAdapter(store))
	histAdapter := newHistoryStoreAdapter(store)
	dirAdapter := newDirectoryStoreAdapter(store)
	signer := func(uid string, role services.Role, name string, ttl time.Duration) (string, error) {
		return middleware.SignToken(uid, string(role), name, ttl)
	}
	return &Router{
		store:     store,
		log:       log,
		auth:      services.NewAuthService(newAuthStoreAdapter(store), licenses, signer),
		exam:      services.NewExamService(newExamStoreAdapter(store)),
		licenses:  licenses,
		sim:       services.NewSimulationService(histAdapter),
		directory: services.NewDirectoryService(dirAdapter),
		history:   services.NewHistoryService(histAdapter, dirAdapter),
		gate:      services.NewAccessGate(licenses),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/login", rt.handleLogin)                   // POST
	mux.HandleFunc("/api/simulation/scenarios", rt.handleScenarios)     // GET
	mux.HandleFunc("/api/simulation/start", rt.handleSimulationStart)   // POST
	mux.HandleFunc("/api/simulation/progress", rt.handleSimulationProgress) // POST
	mux.HandleFunc("/api/simulation/stop", rt.handleSimulationStop)     // POST
	mux.HandleFunc("/api/simulation/vitals", rt.handleSimulationVitals) // GET
	mux.HandleFunc("/api/training/questions", rt.handleTrainingQuestions) // GET
	mux.HandleFunc("/api/training/submit-test", rt.handleSubmitTest)    // POST
	mux.HandleFunc("/api/training/can-retake", rt.handleCanRetake)      // GET
	mux.HandleFunc("/api/therapist/dashboard", rt.handleTherapistDashboard) // GET
	mux.HandleFunc("/api/therapist/profile", rt.handleTherapistProfile) // GET
	mux.HandleFunc("/api/therapist/patients", rt.handleTherapistPatients) // GET/POST
	mux.HandleFunc("/api/patient/", rt.handlePatientScoped)             // GET/POST /api/patient/{id}/...
	mux.HandleFunc("/api/admin/users", rt.handleAdminUsers)             // GET
	mux.HandleFunc("/api/admin/users/", rt.handleAdminUserScoped)       // POST /api/admin/users/{id}/toggle
	mux.HandleFunc("/api/admin/therapists", rt.handleAdminTherapists)   // POST
	mux.HandleFunc("/health", rt.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) identity(r *http.Request) *services.Identity {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	return &services.Identity{UserID: c.UID, Role: services.Role(c.Role), Name: c.Name}
}

// allow writes a denial response for any non-allow decision. The
// license-required outcome carries a redirect hint so clients can send the
// therapist to the qualification test instead of showing an error page.
func (rt *Router) allow(w http.ResponseWriter, r *http.Request, d services.GateDecision) bool {
	locale := middleware.LocaleFromContext(r.Context())
	switch d {
	case services.GateAllow:
		return true
	case services.GateNotAuthenticated:
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": utils.T(locale, "auth_required")})
	case services.GateLicenseRequired:
		writeJSON(w, http.StatusForbidden, map[string]any{
			"success":  false,
			"error":    utils.T(locale, "license_required"),
			"code":     "license_required",
			"redirect": "/training",
		})
	default:
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": utils.T(locale, "access_denied")})
	}
	return false
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden, services.ErrorLicenseRequired:
			status = http.StatusForbidden
		case services.ErrorNotFound, services.ErrorNoSimulation:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		body := map[string]any{"success": false, "error": se.Message}
		if se.Code == services.ErrorLicenseRequired {
			body["code"] = "license_required"
			body["redirect"] = "/training"
		}
		writeJSON(w, status, body)
		return
	}
	rt.log.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal error"})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid request body"))
		return
	}
	res, err := rt.auth.Login(req.Username, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   res.Token,
		"user": map[string]any{
			"user_id":  res.User.ID,
			"username": res.User.Username,
			"role":     string(res.User.Role),
			"name":     res.User.Name,
		},
		"is_licensed":     res.IsLicensed,
		"license_expires": res.LicenseExpires,
	})
}

// GET /api/simulation/scenarios
func (rt *Router) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allow(w, r, rt.gate.RequireLicensedTherapist(rt.identity(r))) {
		return
	}
	writeJSON(w, http.StatusOK, rt.sim.Scenarios())
}

// POST /api/simulation/start
func (rt *Router) handleSimulationStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireLicensedTherapist(id)) {
		return
	}
	var req struct {
		ScenarioID string `json:"scenario_id"`
		PatientID  string `json:"patient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid request body"))
		return
	}
	st, err := rt.sim.Start(id.UserID, req.ScenarioID, req.PatientID)
	if err != nil {
		if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorNotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": msgScenarioNotFound})
			return
		}
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": st.SessionID,
		"scenario":   st.Scenario,
		"message":    msgSimulationStarted,
	})
}

// POST /api/simulation/progress
func (rt *Router) handleSimulationProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireLicensedTherapist(id)) {
		return
	}
	var req struct {
		Phase string `json:"phase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid request body"))
		return
	}
	res, err := rt.sim.Advance(id.UserID, services.Phase(req.Phase))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": msgNoActiveSimulation})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"phase":            string(res.Phase),
		"sud_value":        res.SUDValue,
		"vital_signs":      res.VitalSigns,
		"patient_reaction": res.PatientReaction,
	})
}

// POST /api/simulation/stop
func (rt *Router) handleSimulationStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireLicensedTherapist(id)) {
		return
	}
	st, ok := rt.sim.Stop(id.UserID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": msgNoActiveSimulation})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      msgSimulationStopped,
		"session_data": st,
	})
}

// GET /api/simulation/vitals
func (rt *Router) handleSimulationVitals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireLicensedTherapist(id)) {
		return
	}
	st, vs, err := rt.sim.CurrentVitals(id.UserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": msgNoActiveSimulation})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"session_id":  st.SessionID,
		"phase":       string(st.Phase),
		"sud_value":   st.CurrentSUD,
		"vital_signs": vs,
	})
}

// GET /api/training/questions?category=
func (rt *Router) handleTrainingQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allow(w, r, rt.gate.RequireRole(rt.identity(r), services.RoleTherapist)) {
		return
	}
	qs, err := rt.exam.Questions(r.URL.Query().Get("category"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	out := make([]*TestQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, &TestQuestion{ID: q.ID, Text: q.Text, Options: q.Options, Category: q.Category})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "questions": out})
}

// POST /api/training/submit-test (form-encoded answers)
func (rt *Router) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	if err := r.ParseForm(); err != nil {
		rt.writeError(w, r, services.NewInvalidError("cannot process test submission"))
		return
	}
	answers := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			answers[k] = vs[0]
		}
	}
	// An empty submission must not reach the license update: scoring it as 0
	// would revoke a previously valid license on a body-less POST.
	if len(answers) == 0 {
		rt.writeError(w, r, services.NewInvalidError(msgAnswerAllQuestions))
		return
	}
	result, err := rt.exam.Evaluate(answers)
	if err != nil {
		if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorInvalid {
			rt.writeError(w, r, services.NewInvalidError("cannot process test submission"))
			return
		}
		rt.writeError(w, r, err)
		return
	}
	lic, err := rt.licenses.UpdateAfterTest(id.UserID, result.Score, result.Passed)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"total_questions": result.TotalQuestions,
		"correct_answers": result.CorrectAnswers,
		"score":           result.Score,
		"passed":          result.Passed,
		"answers_detail":  result.AnswersDetail,
		"license_expires": lic.LicenseExpires,
	})
}

// GET /api/training/can-retake
func (rt *Router) handleCanRetake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	ok, err := rt.licenses.CanRetake(id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"can_retake": ok})
}

// GET /api/therapist/dashboard
func (rt *Router) handleTherapistDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	patients, sessions, err := rt.history.PatientsWithSessions(id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	total := 0
	rows := make([]map[string]any, 0, len(patients))
	for i, p := range patients {
		total += len(sessions[i])
		rows = append(rows, map[string]any{
			"user_id":  p.ID,
			"name":     p.Name,
			"username": p.Username,
			"sessions": sessionRows(sessions[i]),
		})
	}
	avg, err := rt.history.AverageSUDReduction()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	lic, err := rt.licenses.EnsureLicense(id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":               true,
		"patients":              rows,
		"total_sessions":        total,
		"average_sud_reduction": avg,
		"license":               fromServiceLicense(lic),
	})
}

// GET /api/therapist/profile
func (rt *Router) handleTherapistProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	u, err := rt.directory.GetUser(id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if u == nil {
		rt.writeError(w, r, services.NewNotFoundError("therapist not found"))
		return
	}
	lic, err := rt.licenses.EnsureLicense(id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"therapist": fromServiceUser(u),
		"license":   fromServiceLicense(lic),
	})
}

// GET/POST /api/therapist/patients
func (rt *Router) handleTherapistPatients(w http.ResponseWriter, r *http.Request) {
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		patients, err := rt.directory.ListPatients(id.UserID)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		out := make([]*User, 0, len(patients))
		for _, p := range patients {
			out = append(out, fromServiceUser(p))
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "patients": out})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rt.writeError(w, r, services.NewInvalidError("invalid request body"))
			return
		}
		acc, err := rt.directory.CreatePatient(req.Name, id.UserID)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"patient":  fromServiceUser(acc.User),
			"username": acc.Username,
			"password": acc.Password,
		})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /api/patient/{id}
// /api/patient/{id}/sessions
// /api/patient/{id}/sessions/export
// /api/patient/{id}/reset-password
func (rt *Router) handlePatientScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/patient/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	pid := parts[0]
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		rt.patientDetail(w, r, pid)
	case len(parts) == 2 && parts[1] == "sessions" && r.Method == http.MethodGet:
		rt.patientSessions(w, r, pid)
	case len(parts) == 3 && parts[1] == "sessions" && parts[2] == "export" && r.Method == http.MethodGet:
		rt.patientSessionsExport(w, r, pid)
	case len(parts) == 2 && parts[1] == "reset-password" && r.Method == http.MethodPost:
		rt.patientResetPassword(w, r, pid)
	default:
		http.NotFound(w, r)
	}
}

// canViewPatient: the superadmin, the owning therapist, or the patient
// themselves.
func canViewPatient(id *services.Identity, patient *services.User) bool {
	if id == nil {
		return false
	}
	switch id.Role {
	case services.RoleSuperadmin:
		return true
	case services.RoleTherapist:
		return patient.TherapistID == id.UserID
	case services.RolePatient:
		return patient.ID == id.UserID
	}
	return false
}

func (rt *Router) loadPatientChecked(w http.ResponseWriter, r *http.Request, pid string) (*services.User, []*services.TherapySession, bool) {
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.Authenticated(id)) {
		return nil, nil, false
	}
	u, sessions, err := rt.history.PatientWithSessions(pid)
	if err != nil {
		rt.writeError(w, r, err)
		return nil, nil, false
	}
	if !canViewPatient(id, u) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "access denied"})
		return nil, nil, false
	}
	return u, sessions, true
}

func (rt *Router) patientDetail(w http.ResponseWriter, r *http.Request, pid string) {
	u, sessions, ok := rt.loadPatientChecked(w, r, pid)
	if !ok {
		return
	}
	prefs, err := rt.history.PatientPreferences(pid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"patient":         fromServiceUser(u),
		"sessions":        sessionRows(sessions),
		"preferences":     prefs,
		"recommendations": rt.history.Recommendations(prefs),
	})
}

func (rt *Router) patientSessions(w http.ResponseWriter, r *http.Request, pid string) {
	_, sessions, ok := rt.loadPatientChecked(w, r, pid)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionRows(sessions))
}

func (rt *Router) patientSessionsExport(w http.ResponseWriter, r *http.Request, pid string) {
	if _, _, ok := rt.loadPatientChecked(w, r, pid); !ok {
		return
	}
	b, err := rt.history.ExportSessionsCSV(pid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=sessions_"+pid+".csv")
	_, _ = w.Write(b)
}

func (rt *Router) patientResetPassword(w http.ResponseWriter, r *http.Request, pid string) {
	id := rt.identity(r)
	if !rt.allow(w, r, rt.gate.RequireRole(id, services.RoleTherapist)) {
		return
	}
	pw, err := rt.directory.ResetPatientPassword(pid, id.UserID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"new_password": pw,
		"message":      msgPasswordUpdated,
	})
}

// GET /api/admin/users
func (rt *Router) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allow(w, r, rt.gate.RequireRole(rt.identity(r), services.RoleSuperadmin)) {
		return
	}
	users, err := rt.directory.ListUsers()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, fromServiceUser(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": out})
}

// POST /api/admin/users/{id}/toggle
func (rt *Router) handleAdminUserScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "toggle" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !rt.allow(w, r, rt.gate.RequireRole(rt.identity(r), services.RoleSuperadmin)) {
		return
	}
	active, err := rt.directory.ToggleActive(parts[0])
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_id": parts[0], "is_active": active})
}

// POST /api/admin/therapists
func (rt *Router) handleAdminTherapists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allow(w, r, rt.gate.RequireRole(rt.identity(r), services.RoleSuperadmin)) {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, services.NewInvalidError("invalid request body"))
		return
	}
	acc, err := rt.directory.CreateTherapist(req.Name)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"therapist": fromServiceUser(acc.User),
		"username":  acc.Username,
		"password":  acc.Password,
	})
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func sessionRows(sessions []*services.TherapySession) []map[string]any {
	rows := make([]map[string]any, 0, len(sessions))
	for _, rec := range sessions {
		rows = append(rows, map[string]any{
			"date":          rec.Date.Format(time.RFC3339),
			"pre_sud":       rec.PreSUD,
			"post_sud":      rec.PostSUD,
			"module_used":   rec.ModuleUsed,
			"duration":      rec.DurationMinutes,
			"sud_reduction": rec.PostSUD - rec.PreSUD,
		})
	}
	return rows
}
