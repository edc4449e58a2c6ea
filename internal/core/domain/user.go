package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role is the access level stored on the application's own users table.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ParseRole reports the Role named by s. Anything outside the enumeration
// is rejected so that callers can treat it as "role unknown".
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleOwner, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// SelfAssignable reports whether a user may pick this role at sign-up or
// profile completion. Admins are provisioned out of band.
func (r Role) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleOwner
}

// ValidPhone reports whether s is exactly ten digits.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// Identity is the authenticated end-user record issued by the hosted auth
// service. It is never written by this application.
type Identity struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// UserProfile is the application's row for an identity; ID equals Identity.ID.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthSession is the token pair handed out by the auth service.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}

// SignUpResult carries the created identity and, when the auth service
// confirms accounts immediately, the session it issued.
type SignUpResult struct {
	Identity Identity
	Session  *AuthSession
}

// Session is the server-side session referenced by the browser cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NeedsRefresh reports whether the access token expires within skew of now.
func (s *Session) NeedsRefresh(now time.Time, skew time.Duration) bool {
	return !s.ExpiresAt.IsZero() && now.Add(skew).After(s.ExpiresAt)
}
