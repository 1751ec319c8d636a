package services

// Identity is the authenticated caller as seen by the services. A nil
// identity means the request carried no valid token.
type Identity struct {
	UserID string
	Role   Role
	Name   string
}

// GateDecision is the outcome of an access check. LicenseRequired is a soft
// redirect to the training flow, not a hard failure.
type GateDecision int

const (
	GateAllow GateDecision = iota
	GateNotAuthenticated
	GateForbidden
	GateLicenseRequired
)

// AccessGate composes the three guard axes: authenticated, role-matches,
// license-valid. Handlers invoke it explicitly at the start of each gated
// operation and decide presentation from the returned decision.
type AccessGate struct {
	licenses *LicenseService
}

func NewAccessGate(licenses *LicenseService) *AccessGate {
	return &AccessGate{licenses: licenses}
}

// Authenticated requires any logged-in caller.
func (g *AccessGate) Authenticated(id *Identity) GateDecision {
	if id == nil || id.UserID == "" {
		return GateNotAuthenticated
	}
	return GateAllow
}

// RequireRole requires a logged-in caller with the given role.
func (g *AccessGate) RequireRole(id *Identity, role Role) GateDecision {
	if d := g.Authenticated(id); d != GateAllow {
		return d
	}
	if id.Role != role {
		return GateForbidden
	}
	return GateAllow
}

// RequireLicensedTherapist requires a therapist holding a valid license.
// An unlicensed therapist gets the license-required decision so the
// boundary can redirect to training instead of rejecting outright.
func (g *AccessGate) RequireLicensedTherapist(id *Identity) GateDecision {
	if d := g.RequireRole(id, RoleTherapist); d != GateAllow {
		return d
	}
	ok, err := g.licenses.IsValid(id.UserID)
	if err != nil || !ok {
		return GateLicenseRequired
	}
	return GateAllow
}
