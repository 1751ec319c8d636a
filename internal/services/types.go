package services

import (
	"errors"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RolePatient    Role = "patient"
	RoleTherapist  Role = "therapist"
	RoleSuperadmin Role = "superadmin"
)

// Phase is the closed set of simulation phases.
type Phase string

const (
	PhasePre     Phase = "pre"
	PhaseDuring1 Phase = "during_1"
	PhaseDuring2 Phase = "during_2"
	PhasePost    Phase = "post"
)

// User is an identity record. The password hash is opaque to the services.
type User struct {
	ID          string
	Username    string
	PassHash    []byte
	Role        Role
	Name        string
	TherapistID string // patients only: owning therapist
	IsActive    bool
	CreatedAt   time.Time
}

// TherapistLicense tracks qualification-test state for one therapist.
type TherapistLicense struct {
	TherapistID    string
	LicenseType    string // basic|premium
	IsActive       bool
	TestPassed     bool
	TestScore      float64
	TestDate       *time.Time
	LicenseExpires *time.Time
	CreatedAt      time.Time
}

// IsValidAt reports whether the license grants full access at the given time.
func (l *TherapistLicense) IsValidAt(now time.Time) bool {
	if !l.IsActive || !l.TestPassed {
		return false
	}
	if l.LicenseExpires != nil && now.After(*l.LicenseExpires) {
		return false
	}
	return true
}

// DaysUntilExpiry returns whole days until expiry, or nil when no expiry is set.
func (l *TherapistLicense) DaysUntilExpiry(now time.Time) *int {
	if l.LicenseExpires == nil {
		return nil
	}
	d := int(l.LicenseExpires.Sub(now).Hours() / 24)
	return &d
}

// TestQuestion is immutable reference data seeded once.
type TestQuestion struct {
	ID          string
	Text        string
	Options     []string
	CorrectIdx  int
	Explanation string
	Category    string // theory|emergency|technical|administrative
}

// TherapySession is an append-only historical record.
type TherapySession struct {
	ID              string
	PatientID       string
	Date            time.Time
	DurationMinutes int
	ModuleUsed      string
	PreSUD          int
	PostSUD         int
	Parameters      map[string]any
}

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorForbidden       ErrorCode = "forbidden"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorConflict        ErrorCode = "conflict"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorLicenseRequired ErrorCode = "license_required"
	ErrorNoSimulation    ErrorCode = "no_simulation"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewLicenseRequiredError(msg string) error {
	return &ServiceError{Code: ErrorLicenseRequired, Message: msg}
}

func NewNoSimulationError(msg string) error {
	return &ServiceError{Code: ErrorNoSimulation, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
