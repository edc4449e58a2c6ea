package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/washhub/carwash-web/docs"
	"github.com/washhub/carwash-web/internal/api/handler"
	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
	"github.com/washhub/carwash-web/pkg/i18n"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log      zerolog.Logger
	Renderer *view.Renderer
	Catalog  *i18n.Catalog
	Sessions *middleware.SessionManager
	Resolver ports.SessionResolver

	Auth      ports.AuthService
	Profiles  ports.ProfileService
	Laundries ports.LaundryService
	Services  ports.CatalogService
	Bookings  ports.BookingService
	Contact   ports.ContactService

	BookingRedirectDelay time.Duration
	CookieSecure         bool

	// Readiness checks; nil entries are skipped.
	Mongo   *mongo.Database
	Redis   *redis.Client
	Backend handler.Pinger

	// Registerer receives the HTTP metrics; defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "carwash",
		Subsystem:  "http",
		Skipper:    isOpsRequest,
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Localize(d.Catalog))
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper:        skipCSRF,
		TokenLookup:    "form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(skip(isOpsRequest, d.Sessions.Middleware()))

	// --- Handlers ---
	pages := handler.NewPagesHandler(d.Contact, d.Log)
	auth := handler.NewAuthHandler(d.Auth, d.Profiles, d.Resolver, d.Sessions, d.Log)
	booking := handler.NewBookingHandler(d.Laundries, d.Services, d.Bookings, d.BookingRedirectDelay)
	owner := handler.NewOwnerHandler(d.Laundries, d.Services, d.Bookings)
	admin := handler.NewAdminHandler(d.Laundries, d.Bookings)
	api := handler.NewAPIHandler(d.Laundries, d.Services, d.Bookings)

	guest := middleware.GuestOnly()
	customerOnly := middleware.RequireRole(domain.RoleCustomer)

	// --- Public pages ---
	e.GET("/", pages.Home)
	e.GET("/about", pages.About)
	e.GET("/services", pages.Services)
	e.GET("/contact", pages.ContactForm)
	e.POST("/contact", pages.SubmitContact)
	e.GET("/lang/:code", auth.SetLanguage)

	// --- Auth ---
	e.GET("/login", auth.LoginForm, guest)
	e.POST("/login", auth.Login, guest)
	e.GET("/signup", auth.SignupForm, guest)
	e.POST("/signup", auth.Signup, guest)
	e.POST("/logout", auth.Logout)
	e.GET("/auth/oauth/:provider", auth.OAuthStart, guest)
	e.GET("/auth/callback", auth.OAuthCallback)
	e.GET("/complete-profile", auth.CompleteProfileForm, middleware.RequireIdentity())
	e.POST("/complete-profile", auth.CompleteProfile, middleware.RequireIdentity())

	// --- Customer ---
	e.GET("/booking", booking.Laundries, customerOnly)
	e.GET("/booking/:laundryID", booking.Form, customerOnly)
	e.POST("/booking/:laundryID", booking.Create, customerOnly)
	e.GET("/my-bookings", booking.Mine, customerOnly)

	// --- Owner ---
	og := e.Group("/owner", middleware.RequireRole(domain.RoleOwner))
	og.GET("/dashboard", owner.Dashboard)
	og.GET("/laundries/new", owner.NewLaundry)
	og.POST("/laundries", owner.CreateLaundry)
	og.GET("/laundries/:id/edit", owner.EditLaundry)
	og.POST("/laundries/:id", owner.UpdateLaundry)
	og.GET("/laundries/:id/services", owner.Services)
	og.POST("/laundries/:id/services", owner.AddService)
	og.POST("/laundries/:id/services/:serviceID", owner.UpdateService)
	og.GET("/bookings", owner.Bookings)
	og.POST("/bookings/:id/status", owner.UpdateStatus)
	og.GET("/bookings/:id/history", owner.History)

	// --- Admin ---
	e.GET("/admin", admin.Dashboard, middleware.RequireRole(domain.RoleAdmin))

	// --- JSON API ---
	v1 := e.Group("/api/v1")
	v1.GET("/session", api.Session)
	v1.GET("/laundries", api.Laundries)
	v1.GET("/laundries/:id", api.Laundry)
	v1.GET("/laundries/:id/services", api.LaundryServices)
	v1.GET("/bookings", api.Bookings, middleware.RBAC(domain.RoleOwner, domain.RoleAdmin))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health checks and metrics (no session) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis, d.Backend)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

func isOpsRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/swagger")
}

// skipCSRF exempts the read-only JSON API and the ops endpoints, which never
// accept form posts.
func skipCSRF(c echo.Context) bool {
	return isOpsRequest(c) || strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func skip(skipper echomiddleware.Skipper, mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			return wrapped(c)
		}
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
