package service

import (
	"context"
	"sync"
	"time"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Auth provider stub
// ---------------------------------------------------------------------------

type stubProvider struct {
	calls int // every remote operation increments this

	identities map[string]*domain.Identity // access token -> identity
	getUserErr error

	signIn    *domain.AuthSession
	signInErr error

	signUp       *domain.SignUpResult
	signUpErr    error
	signUpMeta   map[string]any
	signedOut    []string
	signOutErr   error
	refreshed    *domain.AuthSession
	refreshErr   error
	exchanged    *domain.AuthSession
	lastVerifier string
	lastCode     string
	challenge    string
}

func newStubProvider() *stubProvider {
	return &stubProvider{identities: make(map[string]*domain.Identity)}
}

func (p *stubProvider) SignInWithPassword(_ context.Context, _, _ string) (*domain.AuthSession, error) {
	p.calls++
	return p.signIn, p.signInErr
}

func (p *stubProvider) SignUp(_ context.Context, _, _ string, meta map[string]any) (*domain.SignUpResult, error) {
	p.calls++
	p.signUpMeta = meta
	return p.signUp, p.signUpErr
}

func (p *stubProvider) SignOut(_ context.Context, token string) error {
	p.calls++
	p.signedOut = append(p.signedOut, token)
	return p.signOutErr
}

func (p *stubProvider) GetUser(_ context.Context, token string) (*domain.Identity, error) {
	p.calls++
	if p.getUserErr != nil {
		return nil, p.getUserErr
	}
	id, ok := p.identities[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	clone := *id
	return &clone, nil
}

func (p *stubProvider) RefreshSession(_ context.Context, _ string) (*domain.AuthSession, error) {
	p.calls++
	return p.refreshed, p.refreshErr
}

func (p *stubProvider) AuthorizeURL(provider, redirectTo, challenge string) (string, error) {
	p.challenge = challenge
	return "https://auth.example.com/authorize?provider=" + provider + "&redirect_to=" + redirectTo, nil
}

func (p *stubProvider) ExchangeCode(_ context.Context, code, verifier string) (*domain.AuthSession, error) {
	p.calls++
	p.lastCode = code
	p.lastVerifier = verifier
	if p.exchanged == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p.exchanged, nil
}

func (p *stubProvider) Subscribe(ports.AuthListener) func() { return func() {} }

// ---------------------------------------------------------------------------
// Profile repository stub
// ---------------------------------------------------------------------------

type stubProfiles struct {
	rows      map[string]*domain.UserProfile
	createErr error
	findErr   error
	lastToken string // access token seen on the last call
	creates   int
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{rows: make(map[string]*domain.UserProfile)}
}

func (r *stubProfiles) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	r.lastToken = ports.AccessToken(ctx)
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfiles) Create(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	r.lastToken = ports.AccessToken(ctx)
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *p
	r.rows[p.ID] = &clone
	return &clone, nil
}

func (r *stubProfiles) Upsert(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	r.lastToken = ports.AccessToken(ctx)
	clone := *p
	r.rows[p.ID] = &clone
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Session store stub
// ---------------------------------------------------------------------------

type stubSessions struct {
	sessions  map[string]*domain.Session
	verifiers map[string]string
	lastTTL   time.Duration
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		sessions:  make(map[string]*domain.Session),
		verifiers: make(map[string]string),
	}
}

func (s *stubSessions) Save(_ context.Context, sess *domain.Session, ttl time.Duration) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	s.lastTTL = ttl
	return nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubSessions) SaveVerifier(_ context.Context, flowID, verifier string, _ time.Duration) error {
	s.verifiers[flowID] = verifier
	return nil
}

func (s *stubSessions) TakeVerifier(_ context.Context, flowID string) (string, error) {
	v, ok := s.verifiers[flowID]
	if !ok {
		return "", domain.ErrOAuthFlowExpired
	}
	delete(s.verifiers, flowID)
	return v, nil
}

// ---------------------------------------------------------------------------
// Table stubs
// ---------------------------------------------------------------------------

type stubLaundries struct {
	rows map[string]*domain.Laundry
	seq  int
}

func newStubLaundries(ls ...*domain.Laundry) *stubLaundries {
	r := &stubLaundries{rows: make(map[string]*domain.Laundry)}
	for _, l := range ls {
		r.rows[l.ID] = l
	}
	return r
}

func (r *stubLaundries) List(context.Context) ([]*domain.Laundry, error) {
	var out []*domain.Laundry
	for _, l := range r.rows {
		out = append(out, l)
	}
	return out, nil
}

func (r *stubLaundries) ListByOwner(_ context.Context, ownerID string) ([]*domain.Laundry, error) {
	var out []*domain.Laundry
	for _, l := range r.rows {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubLaundries) FindByID(_ context.Context, id string) (*domain.Laundry, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrLaundryNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubLaundries) Create(_ context.Context, l *domain.Laundry) (*domain.Laundry, error) {
	r.seq++
	clone := *l
	clone.ID = "l-new-" + string(rune('0'+r.seq))
	r.rows[clone.ID] = &clone
	return &clone, nil
}

func (r *stubLaundries) Update(_ context.Context, l *domain.Laundry) (*domain.Laundry, error) {
	clone := *l
	r.rows[l.ID] = &clone
	return &clone, nil
}

type stubServices struct {
	rows map[string]*domain.Service
}

func newStubServices(ss ...*domain.Service) *stubServices {
	r := &stubServices{rows: make(map[string]*domain.Service)}
	for _, s := range ss {
		r.rows[s.ID] = s
	}
	return r
}

func (r *stubServices) ListByLaundry(_ context.Context, laundryID string) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, s := range r.rows {
		if s.LaundryID == laundryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubServices) FindByID(_ context.Context, id string) (*domain.Service, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrServiceNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubServices) Create(_ context.Context, s *domain.Service) (*domain.Service, error) {
	clone := *s
	clone.ID = "s-new"
	r.rows[clone.ID] = &clone
	return &clone, nil
}

func (r *stubServices) Update(_ context.Context, s *domain.Service) (*domain.Service, error) {
	clone := *s
	r.rows[s.ID] = &clone
	return &clone, nil
}

type stubBookings struct {
	rows    map[string]*domain.Booking
	updates int
}

func newStubBookings(bs ...*domain.Booking) *stubBookings {
	r := &stubBookings{rows: make(map[string]*domain.Booking)}
	for _, b := range bs {
		r.rows[b.ID] = b
	}
	return r
}

func (r *stubBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	clone := *b
	clone.ID = "b-new"
	r.rows[clone.ID] = &clone
	return &clone, nil
}

func (r *stubBookings) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookings) ListByLaundry(_ context.Context, laundryID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.rows {
		if b.LaundryID == laundryID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBookings) ListByUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBookings) ListRecent(_ context.Context, limit int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range r.rows {
		if len(out) == limit {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *stubBookings) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) error {
	b, ok := r.rows[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	r.updates++
	b.Status = status
	return nil
}

// ---------------------------------------------------------------------------
// Audit stubs
// ---------------------------------------------------------------------------

type stubAudit struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (a *stubAudit) Record(rec domain.AuditRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

func (a *stubAudit) Insert(_ context.Context, rec *domain.AuditRecord) error {
	a.Record(*rec)
	return nil
}

func (a *stubAudit) ListBySubject(_ context.Context, kind domain.AuditKind, subject string, _ int) ([]*domain.AuditRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.AuditRecord
	for i := range a.records {
		if a.records[i].Kind == kind && a.records[i].Subject == subject {
			rec := a.records[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

type stubInquiries struct {
	saved []*domain.Inquiry
}

func (r *stubInquiries) Create(_ context.Context, inq *domain.Inquiry) error {
	r.saved = append(r.saved, inq)
	return nil
}

type stubMailer struct {
	sent int
	err  error
}

func (m *stubMailer) SendInquiry(context.Context, *domain.Inquiry) error {
	m.sent++
	return m.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func accessAs(id string, role domain.Role) domain.Access {
	return domain.AccessFor(domain.Identity{ID: id, Email: id + "@example.com"}, &domain.UserProfile{ID: id, Name: "User " + id, Role: string(role)})
}
