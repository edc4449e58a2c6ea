package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
	"github.com/washhub/carwash-web/pkg/i18n"
)

// oauthFlowTTL matches how long the service keeps the PKCE verifier.
const oauthFlowTTL = 10 * time.Minute

// AuthHandler serves sign-in, sign-up, sign-out, the OAuth redirect flow and
// profile completion.
type AuthHandler struct {
	auth     ports.AuthService
	profiles ports.ProfileService
	resolver ports.SessionResolver
	sessions *middleware.SessionManager
	log      zerolog.Logger
}

func NewAuthHandler(
	auth ports.AuthService,
	profiles ports.ProfileService,
	resolver ports.SessionResolver,
	sessions *middleware.SessionManager,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles, resolver: resolver, sessions: sessions, log: log}
}

type loginRequest struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type signupRequest struct {
	Name     string `form:"name"     validate:"required"`
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Phone    string `form:"phone"    validate:"required,phone"`
	Role     string `form:"role"     validate:"required,oneof=customer owner"`
}

type profileRequest struct {
	Name  string `form:"name"  validate:"required"`
	Phone string `form:"phone" validate:"required,phone"`
	Role  string `form:"role"  validate:"required,oneof=customer owner"`
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	p := newPage(c, "auth.loginTitle")
	p.Form["next"] = middleware.SafeNext(c.QueryParam("next"))
	return render(c, "login", p)
}

// Login opens a session and sends the user to the page they asked for, or to
// their role's landing page.
func (h *AuthHandler) Login(c echo.Context) error {
	p := newPage(c, "auth.loginTitle")
	fill(c, p, "email", "next")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "login", p, err)
	}

	sess, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return renderForm(c, http.StatusUnauthorized, "login", p, err)
	}
	return h.enter(c, sess, middleware.SafeNext(req.Next))
}

func (h *AuthHandler) SignupForm(c echo.Context) error {
	p := newPage(c, "auth.signupTitle")
	p.Form["role"] = string(domain.RoleCustomer)
	return render(c, "signup", p)
}

// Signup validates locally before anything reaches the auth service.
func (h *AuthHandler) Signup(c echo.Context) error {
	p := newPage(c, "auth.signupTitle")
	fill(c, p, "name", "email", "phone", "role")

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "signup", p, err)
	}

	out, err := h.auth.SignUp(c.Request().Context(), ports.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "signup", p, err)
	}
	if out.ConfirmationRequired {
		return render(c, "signup_confirm", newPage(c, "auth.confirmTitle"))
	}
	return h.enter(c, out.Session, "")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := h.sessions.SessionID(c); sid != "" {
		if err := h.auth.SignOut(c.Request().Context(), sid); err != nil {
			h.log.Warn().Err(err).Msg("sign-out failed")
		}
	}
	h.sessions.Clear(c)
	return redirectWithFlash(c, domain.PathLogin, "auth.loggedOut")
}

// OAuthStart redirects the browser to the provider's consent screen.
func (h *AuthHandler) OAuthStart(c echo.Context) error {
	target, flowID, err := h.auth.BeginOAuth(c.Request().Context(), c.Param("provider"))
	if err != nil {
		if domain.IsValidation(err) {
			return redirectWithFlash(c, domain.PathLogin, "validation.provider")
		}
		return err
	}
	h.sessions.SetFlowCookie(c, flowID, oauthFlowTTL)
	return c.Redirect(http.StatusFound, target)
}

// OAuthCallback completes the flow started by OAuthStart. A flow can only be
// completed once.
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	flowID := h.sessions.TakeFlowCookie(c)
	if c.QueryParam("error") != "" {
		h.log.Info().Str("error", c.QueryParam("error_description")).Msg("oauth denied by provider")
		return redirectWithFlash(c, domain.PathLogin, "auth.oauthExpired")
	}

	sess, err := h.auth.CompleteOAuth(c.Request().Context(), flowID, c.QueryParam("code"))
	if err != nil {
		p := newPage(c, "auth.loginTitle")
		return renderForm(c, http.StatusUnauthorized, "login", p, err)
	}
	return h.enter(c, sess, "")
}

// CompleteProfileForm is shown to signed-in identities without a usable
// profile row. Users with a complete profile are sent to their landing page.
func (h *AuthHandler) CompleteProfileForm(c echo.Context) error {
	a := access(c)
	if _, ok := a.Role(); ok {
		return c.Redirect(http.StatusSeeOther, a.Landing())
	}

	p := newPage(c, "profile.title")
	p.Form["role"] = string(domain.RoleCustomer)
	if a.Profile != nil {
		p.Form["name"] = a.Profile.Name
		p.Form["phone"] = a.Profile.Phone
	}
	return render(c, "complete_profile", p)
}

func (h *AuthHandler) CompleteProfile(c echo.Context) error {
	a := access(c)
	p := newPage(c, "profile.title")
	fill(c, p, "name", "phone", "role")

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "complete_profile", p, err)
	}

	saved, err := h.profiles.Complete(c.Request().Context(), *a.Identity, ports.ProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "complete_profile", p, err)
	}
	return redirectWithFlash(c, domain.AccessFor(*a.Identity, saved).Landing(), "profile.saved")
}

// SetLanguage stores the chosen language and returns to the previous page.
func (h *AuthHandler) SetLanguage(c echo.Context) error {
	lang := c.Param("code")
	if i18n.IsSupported(lang) {
		c.SetCookie(&http.Cookie{
			Name:     middleware.LangCookie,
			Value:    lang,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
	}

	target := domain.PathHome
	if ref, err := url.Parse(c.Request().Referer()); err == nil && ref.Host == c.Request().Host {
		if next := middleware.SafeNext(ref.RequestURI()); next != "" {
			target = next
		}
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// enter sets the session cookie and redirects to next, or to the landing page
// of the freshly resolved access.
func (h *AuthHandler) enter(c echo.Context, sess *domain.Session, next string) error {
	if err := h.sessions.Issue(c, sess); err != nil {
		return err
	}

	a, err := h.resolver.Resolve(c.Request().Context(), sess.AccessToken)
	if err != nil {
		return err
	}
	if next != "" && a.Kind != domain.AccessProfileIncomplete {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return c.Redirect(http.StatusSeeOther, a.Landing())
}
