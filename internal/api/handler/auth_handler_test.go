package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

func newAuthHandler(auth *stubAuth, profiles *stubProfiles, resolved domain.Access) *AuthHandler {
	resolver := &stubResolver{access: resolved}
	return NewAuthHandler(auth, profiles, resolver, newSessions(resolver), zerolog.Nop())
}

func TestAuthHandler_Login_RedirectsToLanding(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signInFn: func(_ context.Context, email, password string) (*domain.Session, error) {
		if email != "owner@example.com" || password != "secret1" {
			t.Fatalf("unexpected credentials %s/%s", email, password)
		}
		return &domain.Session{ID: "s-1", UserID: "u-1", AccessToken: "tok"}, nil
	}}
	h := newAuthHandler(auth, &stubProfiles{}, accessAs("u-1", "owner"))

	rec := httptest.NewRecorder()
	c := e.NewContext(postForm("/login", url.Values{"email": {"owner@example.com"}, "password": {"secret1"}}), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/owner/dashboard" {
		t.Fatalf("unexpected location %q", loc)
	}
	if cookieNamed(rec, middleware.SessionCookie) == nil {
		t.Fatalf("session cookie not issued")
	}
}

func TestAuthHandler_Login_HonoursLocalNext(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signInFn: func(context.Context, string, string) (*domain.Session, error) {
		return &domain.Session{ID: "s-1", AccessToken: "tok"}, nil
	}}
	h := newAuthHandler(auth, &stubProfiles{}, accessAs("u-1", "customer"))

	for next, want := range map[string]string{
		"/my-bookings":         "/my-bookings",
		"https://evil.example": "/booking",
	} {
		rec := httptest.NewRecorder()
		form := url.Values{"email": {"c@example.com"}, "password": {"secret1"}, "next": {next}}
		if err := h.Login(e.NewContext(postForm("/login", form), rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != want {
			t.Errorf("next=%q: location %q, want %q", next, loc, want)
		}
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signInFn: func(context.Context, string, string) (*domain.Session, error) {
		return nil, fmt.Errorf("sign in: %w", domain.ErrInvalidCredentials)
	}}
	h := newAuthHandler(auth, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	c := e.NewContext(postForm("/login", url.Values{"email": {"a@example.com"}, "password": {"wrong"}}), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Email or password is incorrect.") {
		t.Fatalf("expected localized error in page")
	}
	if !strings.Contains(rec.Body.String(), `value="a@example.com"`) {
		t.Fatalf("expected email to be kept in the form")
	}
}

func TestAuthHandler_Signup_ShortPasswordNeverReachesBackend(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signUpFn: func(context.Context, ports.SignUpInput) (*ports.SignUpOutcome, error) {
		t.Fatalf("SignUp must not be called")
		return nil, nil
	}}
	h := newAuthHandler(auth, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	form := url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "password": {"123"}, "phone": {"5512345678"}, "role": {"customer"}}
	if err := h.Signup(e.NewContext(postForm("/signup", form), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if auth.signUps != 0 {
		t.Fatalf("expected no remote call, got %d", auth.signUps)
	}
	if !strings.Contains(rec.Body.String(), "Password must be at least 6 characters.") {
		t.Fatalf("expected inline password error")
	}
}

func TestAuthHandler_Signup_ConfirmationRequired(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signUpFn: func(_ context.Context, in ports.SignUpInput) (*ports.SignUpOutcome, error) {
		if in.Role != "owner" || in.Phone != "5512345678" {
			t.Fatalf("unexpected input %+v", in)
		}
		return &ports.SignUpOutcome{ConfirmationRequired: true}, nil
	}}
	h := newAuthHandler(auth, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	form := url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "password": {"secret1"}, "phone": {"5512345678"}, "role": {"owner"}}
	if err := h.Signup(e.NewContext(postForm("/signup", form), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Check your inbox") {
		t.Fatalf("expected confirmation page")
	}
	if cookieNamed(rec, middleware.SessionCookie) != nil {
		t.Fatalf("no session should be issued before confirmation")
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{signUpFn: func(context.Context, ports.SignUpInput) (*ports.SignUpOutcome, error) {
		return nil, fmt.Errorf("sign up: %w", domain.ErrUserExists)
	}}
	h := newAuthHandler(auth, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	form := url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "password": {"secret1"}, "phone": {"5512345678"}, "role": {"customer"}}
	if err := h.Signup(e.NewContext(postForm("/signup", form), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "An account with this email already exists.") {
		t.Fatalf("expected user-exists message")
	}
}

func TestAuthHandler_CompleteProfile(t *testing.T) {
	e := newEcho(t)

	t.Run("bad phone is rejected locally", func(t *testing.T) {
		profiles := &stubProfiles{}
		h := newAuthHandler(&stubAuth{}, profiles, domain.Anonymous())
		rec := httptest.NewRecorder()
		c := withAccess(e.NewContext(postForm("/complete-profile", url.Values{"name": {"Ana"}, "phone": {"12345"}, "role": {"customer"}}), rec), accessAs("u-1", ""))

		if err := h.CompleteProfile(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity || profiles.calls != 0 {
			t.Fatalf("expected local rejection, got %d with %d calls", rec.Code, profiles.calls)
		}
		if !strings.Contains(rec.Body.String(), "Phone must be exactly 10 digits.") {
			t.Fatalf("expected phone error")
		}
	})

	t.Run("missing name is rejected locally", func(t *testing.T) {
		profiles := &stubProfiles{}
		h := newAuthHandler(&stubAuth{}, profiles, domain.Anonymous())
		rec := httptest.NewRecorder()
		c := withAccess(e.NewContext(postForm("/complete-profile", url.Values{"phone": {"5512345678"}, "role": {"customer"}}), rec), accessAs("u-1", ""))

		_ = h.CompleteProfile(c)
		if profiles.calls != 0 {
			t.Fatalf("expected no remote call")
		}
	})

	t.Run("owner lands on dashboard", func(t *testing.T) {
		profiles := &stubProfiles{}
		h := newAuthHandler(&stubAuth{}, profiles, domain.Anonymous())
		rec := httptest.NewRecorder()
		c := withAccess(e.NewContext(postForm("/complete-profile", url.Values{"name": {"Ana"}, "phone": {"5512345678"}, "role": {"owner"}}), rec), accessAs("u-1", ""))

		if err := h.CompleteProfile(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != "/owner/dashboard" {
			t.Fatalf("unexpected location %q", loc)
		}
	})
}

func TestAuthHandler_CompleteProfileForm_RoleUnknownMayFixRole(t *testing.T) {
	e := newEcho(t)
	h := newAuthHandler(&stubAuth{}, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	c := withAccess(e.NewContext(httptest.NewRequest(http.MethodGet, "/complete-profile", nil), rec), accessAs("u-1", "manager"))
	if err := h.CompleteProfileForm(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected the form, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="Name u-1"`) {
		t.Fatalf("expected existing name to be prefilled")
	}

	rec = httptest.NewRecorder()
	c = withAccess(e.NewContext(httptest.NewRequest(http.MethodGet, "/complete-profile", nil), rec), accessAs("u-2", "customer"))
	_ = h.CompleteProfileForm(c)
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/booking" {
		t.Fatalf("complete profiles should be sent to their landing, got %q", loc)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{}
	h := newAuthHandler(auth, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	c := e.NewContext(postForm("/logout", url.Values{}), rec)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("unexpected location %q", loc)
	}
	if ck := cookieNamed(rec, middleware.SessionCookie); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared")
	}
}

func TestAuthHandler_OAuth(t *testing.T) {
	e := newEcho(t)
	auth := &stubAuth{completeFn: func(_ context.Context, flowID, code string) (*domain.Session, error) {
		if flowID != "flow-1" || code != "abc" {
			return nil, domain.ErrOAuthFlowExpired
		}
		return &domain.Session{ID: "s-1", AccessToken: "tok"}, nil
	}}
	h := newAuthHandler(auth, &stubProfiles{}, accessAs("u-1", ""))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil), rec)
	c.SetParamNames("provider")
	c.SetParamValues("google")
	if err := h.OAuthStart(c); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	flow := cookieNamed(rec, middleware.OAuthCookie)
	if flow == nil || flow.Value != "flow-1" {
		t.Fatalf("expected flow cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil)
	req.AddCookie(flow)
	rec = httptest.NewRecorder()
	if err := h.OAuthCallback(e.NewContext(req, rec)); err != nil {
		t.Fatalf("callback error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/complete-profile" {
		t.Fatalf("new OAuth identity should complete its profile, got %q", loc)
	}

	// Without the flow cookie the callback cannot be completed.
	rec = httptest.NewRecorder()
	if err := h.OAuthCallback(e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil), rec)); err != nil {
		t.Fatalf("callback error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", rec.Code)
	}
}

func TestAuthHandler_OAuthStart_UnknownProvider(t *testing.T) {
	e := newEcho(t)
	h := newAuthHandler(&stubAuth{}, &stubProfiles{}, domain.Anonymous())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/oauth/myspace", nil), rec)
	c.SetParamNames("provider")
	c.SetParamValues("myspace")
	if err := h.OAuthStart(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAuthHandler_SetLanguage(t *testing.T) {
	e := newEcho(t)
	h := newAuthHandler(&stubAuth{}, &stubProfiles{}, domain.Anonymous())

	req := httptest.NewRequest(http.MethodGet, "/lang/es", nil)
	req.Header.Set("Referer", "http://"+req.Host+"/services")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues("es")

	if err := h.SetLanguage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ck := cookieNamed(rec, middleware.LangCookie); ck == nil || ck.Value != "es" {
		t.Fatalf("expected lang cookie")
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/services" {
		t.Fatalf("unexpected location %q", loc)
	}
}
