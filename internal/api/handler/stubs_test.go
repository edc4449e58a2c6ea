package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// newEcho returns an echo instance with the real renderer and validator.
func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func accessAs(id, role string) domain.Access {
	identity := domain.Identity{ID: id, Email: id + "@example.com"}
	if role == "" {
		return domain.AccessFor(identity, nil)
	}
	return domain.AccessFor(identity, &domain.UserProfile{ID: id, Name: "Name " + id, Role: role})
}

func withAccess(c echo.Context, a domain.Access) echo.Context {
	middleware.SetAccess(c, a)
	return c
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// --- service stubs ---

type stubAuth struct {
	signInFn   func(ctx context.Context, email, password string) (*domain.Session, error)
	signUpFn   func(ctx context.Context, in ports.SignUpInput) (*ports.SignUpOutcome, error)
	completeFn func(ctx context.Context, flowID, code string) (*domain.Session, error)
	signUps    int
	signOuts   []string
}

func (s *stubAuth) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuth) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.SignUpOutcome, error) {
	s.signUps++
	return s.signUpFn(ctx, in)
}

func (s *stubAuth) SignOut(_ context.Context, sessionID string) error {
	s.signOuts = append(s.signOuts, sessionID)
	return nil
}

func (s *stubAuth) BeginOAuth(_ context.Context, provider string) (string, string, error) {
	if provider != "google" {
		return "", "", domain.Invalid("provider", "validation.provider")
	}
	return "https://backend.example/auth/v1/authorize?provider=google", "flow-1", nil
}

func (s *stubAuth) CompleteOAuth(ctx context.Context, flowID, code string) (*domain.Session, error) {
	return s.completeFn(ctx, flowID, code)
}

func (s *stubAuth) LoadSession(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuth) DropSession(context.Context, string) error { return nil }

type stubResolver struct {
	access domain.Access
}

func (s *stubResolver) Resolve(context.Context, string) (domain.Access, error) {
	return s.access, nil
}

type stubProfiles struct {
	calls int
	err   error
}

func (s *stubProfiles) Complete(_ context.Context, identity domain.Identity, in ports.ProfileInput) (*domain.UserProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.UserProfile{ID: identity.ID, Name: in.Name, Phone: in.Phone, Role: in.Role}, nil
}

type stubLaundries struct {
	byID map[string]*domain.Laundry
}

func (s *stubLaundries) ListAll(context.Context) ([]*domain.Laundry, error) {
	out := make([]*domain.Laundry, 0, len(s.byID))
	for _, l := range s.byID {
		out = append(out, l)
	}
	return out, nil
}

func (s *stubLaundries) ListOwned(_ context.Context, ownerID string) ([]*domain.Laundry, error) {
	var out []*domain.Laundry
	for _, l := range s.byID {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLaundries) Get(_ context.Context, id string) (*domain.Laundry, error) {
	if l, ok := s.byID[id]; ok {
		return l, nil
	}
	return nil, domain.ErrLaundryNotFound
}

func (s *stubLaundries) GetOwned(ctx context.Context, ownerID, id string) (*domain.Laundry, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func (s *stubLaundries) Create(_ context.Context, ownerID string, in ports.LaundryInput) (*domain.Laundry, error) {
	l := &domain.Laundry{ID: "l-new", OwnerID: ownerID, Name: in.Name, Location: in.Location, Phone: in.Phone, TimeSlots: in.TimeSlots}
	s.byID[l.ID] = l
	return l, nil
}

func (s *stubLaundries) Update(ctx context.Context, ownerID, id string, in ports.LaundryInput) (*domain.Laundry, error) {
	l, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	l.Name, l.Location, l.Phone, l.TimeSlots, l.Description = in.Name, in.Location, in.Phone, in.TimeSlots, in.Description
	return l, nil
}

type stubCatalog struct {
	services []*domain.Service
}

func (s *stubCatalog) List(_ context.Context, laundryID string) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, svc := range s.services {
		if svc.LaundryID == laundryID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *stubCatalog) Add(_ context.Context, _, laundryID string, in ports.ServiceInput) (*domain.Service, error) {
	svc := &domain.Service{ID: "s-new", LaundryID: laundryID, Name: in.Name, Price: in.Price, Duration: in.Duration}
	s.services = append(s.services, svc)
	return svc, nil
}

func (s *stubCatalog) Update(_ context.Context, _, serviceID string, in ports.ServiceInput) (*domain.Service, error) {
	for _, svc := range s.services {
		if svc.ID == serviceID {
			svc.Name, svc.Price, svc.Duration = in.Name, in.Price, in.Duration
			return svc, nil
		}
	}
	return nil, domain.ErrServiceNotFound
}

type stubBookings struct {
	createFn     func(ctx context.Context, customer domain.Access, in ports.CreateBookingInput) (*domain.Booking, error)
	transitionFn func(ctx context.Context, owner domain.Access, id string, to domain.BookingStatus) (*domain.Booking, error)
	owned        []*domain.Booking
	recentLimit  int
	ownerLists   int
}

func (s *stubBookings) Create(ctx context.Context, customer domain.Access, in ports.CreateBookingInput) (*domain.Booking, error) {
	return s.createFn(ctx, customer, in)
}

func (s *stubBookings) ListForUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range s.owned {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubBookings) ListForOwner(context.Context, string) ([]*domain.Booking, error) {
	s.ownerLists++
	return s.owned, nil
}

func (s *stubBookings) ListRecent(_ context.Context, limit int) ([]*domain.Booking, error) {
	s.recentLimit = limit
	return s.owned, nil
}

func (s *stubBookings) Transition(ctx context.Context, owner domain.Access, id string, to domain.BookingStatus) (*domain.Booking, error) {
	return s.transitionFn(ctx, owner, id, to)
}

func (s *stubBookings) History(_ context.Context, _ domain.Access, id string) (*ports.BookingHistory, error) {
	for _, b := range s.owned {
		if b.ID == id {
			return &ports.BookingHistory{
				Booking: b,
				Records: []*domain.AuditRecord{{Kind: domain.AuditBookingStatus, Subject: id, From: "pending", To: "accepted", At: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}},
			}, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

type stubContact struct {
	got []ports.ContactInput
	err error
}

func (s *stubContact) Submit(_ context.Context, in ports.ContactInput) error {
	s.got = append(s.got, in)
	return s.err
}

// newSessions builds a SessionManager whose loader always misses; handler
// tests only exercise issuing and clearing cookies.
func newSessions(resolver ports.SessionResolver) *middleware.SessionManager {
	return middleware.NewSessionManager(middleware.SessionOptions{Secret: testSecret, TTL: time.Hour}, &stubAuth{}, resolver, zerolog.Nop())
}
