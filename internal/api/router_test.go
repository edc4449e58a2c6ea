package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/pkg/i18n"
)

type missingSessions struct{}

func (missingSessions) LoadSession(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (missingSessions) DropSession(context.Context, string) error { return nil }

type anonymousResolver struct{}

func (anonymousResolver) Resolve(context.Context, string) (domain.Access, error) {
	return domain.Anonymous(), nil
}

func TestRouter_GuardsAndHealthChecks(t *testing.T) {
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	catalog, err := i18n.Load(i18n.EmbeddedLocales)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	sessions := middleware.NewSessionManager(middleware.SessionOptions{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    time.Hour,
	}, missingSessions{}, anonymousResolver{}, zerolog.Nop())

	e := NewRouter(Deps{
		Log:        zerolog.Nop(),
		Renderer:   renderer,
		Catalog:    catalog,
		Sessions:   sessions,
		Resolver:   anonymousResolver{},
		Registerer: prometheus.NewRegistry(),
	})

	tests := []struct {
		method string
		target string
		code   int
		loc    string
	}{
		{http.MethodGet, "/", http.StatusOK, ""},
		{http.MethodGet, "/about", http.StatusOK, ""},
		{http.MethodGet, "/login", http.StatusOK, ""},
		{http.MethodGet, "/owner/dashboard", http.StatusSeeOther, "/login?next=%2Fowner%2Fdashboard"},
		{http.MethodGet, "/booking", http.StatusSeeOther, "/login?next=%2Fbooking"},
		{http.MethodGet, "/admin", http.StatusSeeOther, "/login?next=%2Fadmin"},
		{http.MethodGet, "/complete-profile", http.StatusSeeOther, "/login?next=%2Fcomplete-profile"},
		{http.MethodGet, "/api/v1/bookings", http.StatusUnauthorized, ""},
		{http.MethodGet, "/health", http.StatusOK, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

		if rec.Code != tt.code {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.target, tt.code, rec.Code)
		}
		if tt.loc != "" && rec.Header().Get("Location") != tt.loc {
			t.Errorf("%s %s: location %q, want %q", tt.method, tt.target, rec.Header().Get("Location"), tt.loc)
		}
	}
}
