package domain

// AccessKind is the single authorization outcome every screen branches on.
type AccessKind string

const (
	AccessUnauthenticated   AccessKind = "unauthenticated"
	AccessProfileIncomplete AccessKind = "profile_incomplete"
	AccessRoleUnknown       AccessKind = "role_unknown"
	AccessCustomer          AccessKind = "customer"
	AccessOwner             AccessKind = "owner"
	AccessAdmin             AccessKind = "admin"
)

// Landing pages per access kind.
const (
	PathLogin           = "/login"
	PathCompleteProfile = "/complete-profile"
	PathHome            = "/"
	PathBooking         = "/booking"
	PathOwnerDashboard  = "/owner/dashboard"
	PathAdmin           = "/admin"
)

// Access is the resolved {identity, role} pair of a request.
type Access struct {
	Kind     AccessKind   `json:"kind"`
	Identity *Identity    `json:"identity,omitempty"`
	Profile  *UserProfile `json:"profile,omitempty"`
}

// Anonymous is the Access of a request without a usable session.
func Anonymous() Access {
	return Access{Kind: AccessUnauthenticated}
}

// AccessFor derives the Access of an identity from its profile row. A nil
// profile means the row does not exist yet; a row whose role is empty or
// outside the enumeration yields AccessRoleUnknown.
func AccessFor(id Identity, profile *UserProfile) Access {
	a := Access{Identity: &id, Profile: profile}
	if profile == nil {
		a.Kind = AccessProfileIncomplete
		return a
	}

	role, ok := ParseRole(profile.Role)
	if !ok {
		a.Kind = AccessRoleUnknown
		return a
	}
	switch role {
	case RoleOwner:
		a.Kind = AccessOwner
	case RoleAdmin:
		a.Kind = AccessAdmin
	default:
		a.Kind = AccessCustomer
	}
	return a
}

// Authenticated reports whether an identity is attached.
func (a Access) Authenticated() bool {
	return a.Kind != AccessUnauthenticated && a.Identity != nil
}

// Role returns the recognised role, if any.
func (a Access) Role() (Role, bool) {
	switch a.Kind {
	case AccessCustomer:
		return RoleCustomer, true
	case AccessOwner:
		return RoleOwner, true
	case AccessAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Allows reports whether the access carries one of roles.
func (a Access) Allows(roles ...Role) bool {
	role, ok := a.Role()
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserID returns the identity id or "".
func (a Access) UserID() string {
	if a.Identity == nil {
		return ""
	}
	return a.Identity.ID
}

// DisplayName prefers the profile name over the identity email.
func (a Access) DisplayName() string {
	if a.Profile != nil && a.Profile.Name != "" {
		return a.Profile.Name
	}
	if a.Identity != nil {
		return a.Identity.Email
	}
	return ""
}

// Landing is the default page for this access kind.
func (a Access) Landing() string {
	switch a.Kind {
	case AccessOwner:
		return PathOwnerDashboard
	case AccessCustomer:
		return PathBooking
	case AccessAdmin:
		return PathAdmin
	case AccessProfileIncomplete:
		return PathCompleteProfile
	case AccessRoleUnknown:
		return PathHome
	default:
		return PathLogin
	}
}
