package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AuthStore interface {
	FindUserByUsername(username string) (*User, error)
}

type TokenSigner func(uid string, role Role, name string, ttl time.Duration) (string, error)

// AuthService verifies credentials and issues tokens. Password hashing is
// bcrypt; the hash itself is opaque to everything above the store.
type AuthService struct {
	store     AuthStore
	licenses  *LicenseService
	now       func() time.Time
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token          string
	User           *User
	IsLicensed     bool
	LicenseExpires *time.Time
}

func NewAuthService(store AuthStore, licenses *LicenseService, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		licenses:  licenses,
		now:       func() time.Time { return time.Now().UTC() },
		signToken: signer,
		tokenTTL:  24 * time.Hour,
	}
}

// Login verifies the username/password pair. A first therapist login creates
// an empty license row so the training flow has something to update.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("username/password required")
	}
	u, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Role, u.Name, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	res := &AuthResult{Token: token, User: u}
	if u.Role == RoleTherapist {
		l, err := s.licenses.EnsureLicense(u.ID)
		if err != nil {
			return nil, err
		}
		res.IsLicensed = l.IsValidAt(s.now())
		res.LicenseExpires = l.LicenseExpires
	}
	return res, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// HashPassword is used by account creation and the demo seed.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
