package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const (
	refreshSkew  = 30 * time.Second
	oauthFlowTTL = 10 * time.Minute
)

var oauthProviders = map[string]struct{}{
	"google": {},
	"github": {},
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	SessionTTL  time.Duration
	CallbackURL string // absolute URL of GET /auth/callback
}

// AuthService implements sign-in, sign-up, sign-out and the OAuth flow on top
// of the hosted auth provider. Tokens stay server-side in the session store.
type AuthService struct {
	provider ports.AuthProvider
	profiles ports.ProfileRepository
	sessions ports.SessionStore
	opts     AuthOptions
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	provider ports.AuthProvider,
	profiles ports.ProfileRepository,
	sessions ports.SessionStore,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		provider: provider,
		profiles: profiles,
		sessions: sessions,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.Invalid("email", "validation.required")
	}
	if password == "" {
		return nil, domain.Invalid("password", "validation.required")
	}

	as, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s.openSession(ctx, as)
}

// SignUp validates the form locally, creates the identity and then inserts
// the profile row. The two remote writes are independent: a failed profile
// insert leaves the identity in place and the user lands on profile
// completion at the next sign-in.
func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.SignUpOutcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	role, err := validateSignUp(in)
	if err != nil {
		return nil, err
	}

	res, err := s.provider.SignUp(ctx, in.Email, in.Password, map[string]any{
		"name":  in.Name,
		"phone": in.Phone,
		"role":  string(role),
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	profileCtx := ctx
	if res.Session != nil {
		profileCtx = ports.WithAccessToken(ctx, res.Session.AccessToken)
	}
	_, err = s.profiles.Create(profileCtx, &domain.UserProfile{
		ID:        res.Identity.ID,
		Name:      in.Name,
		Phone:     in.Phone,
		Role:      string(role),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", res.Identity.ID).Msg("profile insert failed after identity creation")
		return nil, fmt.Errorf("sign up: create profile: %w", err)
	}

	if res.Session == nil {
		s.log.Info().Str("user_id", res.Identity.ID).Msg("sign-up awaiting email confirmation")
		return &ports.SignUpOutcome{ConfirmationRequired: true}, nil
	}

	sess, err := s.openSession(ctx, res.Session)
	if err != nil {
		return nil, err
	}
	return &ports.SignUpOutcome{Session: sess}, nil
}

// SignOut ends the remote session and always drops the local one.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("sign out: %w", err)
	}

	if err := s.provider.SignOut(ctx, sess.AccessToken); err != nil {
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("remote sign-out failed")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("sign out: delete session: %w", err)
	}
	return nil
}

func (s *AuthService) BeginOAuth(ctx context.Context, provider string) (string, string, error) {
	if _, ok := oauthProviders[provider]; !ok {
		return "", "", domain.Invalid("provider", "validation.provider")
	}

	verifier := oauth2.GenerateVerifier()
	flowID := uuid.NewString()
	if err := s.sessions.SaveVerifier(ctx, flowID, verifier, oauthFlowTTL); err != nil {
		return "", "", fmt.Errorf("begin oauth: %w", err)
	}

	url, err := s.provider.AuthorizeURL(provider, s.opts.CallbackURL, oauth2.S256ChallengeFromVerifier(verifier))
	if err != nil {
		return "", "", fmt.Errorf("begin oauth: %w", err)
	}
	return url, flowID, nil
}

func (s *AuthService) CompleteOAuth(ctx context.Context, flowID, code string) (*domain.Session, error) {
	if code == "" || flowID == "" {
		return nil, domain.ErrOAuthFlowExpired
	}

	verifier, err := s.sessions.TakeVerifier(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("complete oauth: %w", err)
	}

	as, err := s.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("complete oauth: %w", err)
	}
	return s.openSession(ctx, as)
}

func (s *AuthService) LoadSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.NeedsRefresh(s.now(), refreshSkew) {
		return sess, nil
	}

	as, err := s.provider.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			_ = s.sessions.Delete(ctx, sessionID)
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	sess.AccessToken = as.AccessToken
	sess.RefreshToken = as.RefreshToken
	sess.ExpiresAt = as.ExpiresAt
	if err := s.sessions.Save(ctx, sess, s.opts.SessionTTL); err != nil {
		return nil, fmt.Errorf("refresh session: save: %w", err)
	}
	return sess, nil
}

// DropSession deletes a session whose backend tokens are no longer accepted.
func (s *AuthService) DropSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("drop session: %w", err)
	}
	s.log.Info().Str("session_id", sessionID).Msg("rejected session dropped")
	return nil
}

func (s *AuthService) openSession(ctx context.Context, as *domain.AuthSession) (*domain.Session, error) {
	sess := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       as.Identity.ID,
		AccessToken:  as.AccessToken,
		RefreshToken: as.RefreshToken,
		ExpiresAt:    as.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, sess, s.opts.SessionTTL); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s.log.Info().Str("user_id", sess.UserID).Msg("session opened")
	return sess, nil
}

func validateSignUp(in ports.SignUpInput) (domain.Role, error) {
	if in.Name == "" {
		return "", domain.Invalid("name", "validation.required")
	}
	if in.Email == "" {
		return "", domain.Invalid("email", "validation.required")
	}
	if utf8.RuneCountInString(in.Password) < domain.MinPasswordLength {
		return "", domain.Invalid("password", "validation.passwordTooShort")
	}
	if in.Phone == "" {
		return "", domain.Invalid("phone", "validation.required")
	}
	if !domain.ValidPhone(in.Phone) {
		return "", domain.Invalid("phone", "validation.phone")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || !role.SelfAssignable() {
		return "", domain.Invalid("role", "validation.role")
	}
	return role, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
