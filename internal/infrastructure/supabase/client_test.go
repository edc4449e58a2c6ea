package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const testAnonKey = "anon-key"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, AnonKey: testAnonKey}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(Config{URL: "not a url", AnonKey: "k"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := New(Config{URL: "http://localhost:54321"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing anon key")
	}
}

func TestQuery_SelectSendsFiltersAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rest/v1/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("laundry_id") != "eq.l1" {
			t.Errorf("expected laundry filter, got %q", q.Get("laundry_id"))
		}
		if q.Get("order") != "date.desc,time.desc" {
			t.Errorf("expected composite order, got %q", q.Get("order"))
		}
		if q.Get("select") != "*" {
			t.Errorf("expected select=*, got %q", q.Get("select"))
		}
		if r.Header.Get("apikey") != testAnonKey {
			t.Errorf("expected apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer user-token" {
			t.Errorf("expected caller token, got %q", r.Header.Get("Authorization"))
		}
		_, _ = io.WriteString(w, `[{"id":"b1","laundry_id":"l1","status":"pending","amount":120.5,"date":"2026-06-01","time":"09:00"}]`)
	})

	repo := NewBookingRepository(c)
	ctx := ports.WithAccessToken(context.Background(), "user-token")
	got, err := repo.ListByLaundry(ctx, "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Status != domain.BookingPending || got[0].Amount != 120.5 {
		t.Fatalf("unexpected bookings: %+v", got)
	}
}

func TestQuery_AnonymousRequestsUseAnonKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAnonKey {
			t.Errorf("expected anon bearer, got %q", r.Header.Get("Authorization"))
		}
		_, _ = io.WriteString(w, `[]`)
	})

	got, err := NewLaundryRepository(c).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no laundries, got %d", len(got))
	}
}

func TestQuery_InsertAsksForRepresentation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("unexpected Prefer %q", r.Header.Get("Prefer"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["id"]; ok {
			t.Errorf("expected id to be left to the backend, got %v", body["id"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"l9","owner_id":"o1","name":"Shiny","time_slots":["09:00"]}]`)
	})

	l, err := NewLaundryRepository(c).Create(context.Background(), &domain.Laundry{OwnerID: "o1", Name: "Shiny", TimeSlots: []string{"09:00"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID != "l9" {
		t.Fatalf("expected id from representation, got %q", l.ID)
	}
}

func TestQuery_UpsertMergesDuplicates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Prefer") != "resolution=merge-duplicates,return=representation" {
			t.Errorf("unexpected Prefer %q", r.Header.Get("Prefer"))
		}
		_, _ = io.WriteString(w, `[{"id":"u1","name":"Ana","phone":"5512345678","role":"customer"}]`)
	})

	p, err := NewProfileRepository(c).Upsert(context.Background(), &domain.UserProfile{ID: "u1", Name: "Ana", Phone: "5512345678", Role: "customer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != "customer" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestQuery_UpdateWithoutFilterIsRefused(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	if err := c.From(tableBookings).Update(context.Background(), map[string]string{"status": "x"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRepositories_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	ctx := context.Background()

	if _, err := NewProfileRepository(c).FindByID(ctx, "x"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("profile: expected ErrProfileNotFound, got %v", err)
	}
	if _, err := NewLaundryRepository(c).FindByID(ctx, "x"); !errors.Is(err, domain.ErrLaundryNotFound) {
		t.Errorf("laundry: expected ErrLaundryNotFound, got %v", err)
	}
	if _, err := NewServiceRepository(c).FindByID(ctx, "x"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Errorf("service: expected ErrServiceNotFound, got %v", err)
	}
	if err := NewBookingRepository(c).UpdateStatus(ctx, "x", domain.BookingAccepted); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("booking: expected ErrBookingNotFound, got %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"code":"42501","message":"new row violates row-level security policy"}`)
	})

	_, err := NewBookingRepository(c).Create(context.Background(), &domain.Booking{LaundryID: "l1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Reason() != "42501" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}
