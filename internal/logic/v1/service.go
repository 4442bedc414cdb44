package v1

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/nimsdash/authgate/internal/core/domain"
	"github.com/nimsdash/authgate/middleware"
)

// User-facing failure messages. The invalid-credentials text is identical
// for unknown users and wrong passwords so responses cannot be used to
// enumerate usernames.
const (
	msgMissingCredentials = "Username and password are required."
	msgInvalidCredentials = "Invalid username or password."
)

const defaultSessionTTL = time.Hour

// AuthService orchestrates credential verification against the user
// directory and the session lifecycle in the cache. It depends on injected
// contracts only and MUST NOT reach into a backend directly.
type AuthService struct {
	directory  domain.UserDirectory
	sessions   domain.Cache
	sessionTTL time.Duration
}

// NewAuthService creates an AuthService with the given dependencies.
// A non-positive sessionTTL falls back to one hour.
func NewAuthService(directory domain.UserDirectory, sessions domain.Cache, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		directory:  directory,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Authenticate verifies the submitted credentials and, on success, mints a
// fresh session token bound to a snapshot of the user. Re-authentication
// always creates a new token; existing tokens are never refreshed.
func (s *AuthService) Authenticate(ctx context.Context, req domain.LoginRequest) *domain.AuthResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.authenticate", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if req.Username == "" || req.Password == "" {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return &domain.AuthResponse{Message: msgMissingCredentials}
	}

	rec, err := s.directory.FindUserByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		return &domain.AuthResponse{Message: "Auth error: " + err.Error()}
	}
	if rec == nil || !passwordMatches(rec.Password, req.Password) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return &domain.AuthResponse{Message: msgInvalidCredentials}
	}

	user := rec.View()
	payload, err := json.Marshal(user)
	if err != nil {
		span.RecordError(err)
		return &domain.AuthResponse{Message: "Auth error: " + err.Error()}
	}

	token := uuid.NewString()
	if err := s.sessions.Put(ctx, token, payload, s.sessionTTL); err != nil {
		span.RecordError(err)
		return &domain.AuthResponse{Message: "Auth error: " + err.Error()}
	}

	span.SetAttributes(
		attribute.String("user.id", user.UserID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{OK: true, Token: token, User: &user}
}

// GetSessionUser resolves a token to its session user, or nil when the token
// is empty, unknown, or expired. Reads do not extend the session TTL.
func (s *AuthService) GetSessionUser(ctx context.Context, token string) *domain.UserView {
	if token == "" {
		return nil
	}

	ctx, span := middleware.StartSpan(ctx, "auth.get_session_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	payload, err := s.sessions.Get(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil
	}
	if payload == nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil
	}

	var user domain.UserView
	if err := json.Unmarshal(payload, &user); err != nil {
		span.RecordError(err)
		return nil
	}

	span.SetAttributes(
		attribute.String("user.id", user.UserID),
		attribute.Bool("session.valid", true),
	)
	return &user
}

// Logout removes the session for the given token. Unknown and already
// removed tokens are still a success: logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) *domain.BasicResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if token == "" {
		return &domain.BasicResponse{OK: true}
	}
	if err := s.sessions.Remove(ctx, token); err != nil {
		span.RecordError(err)
		return &domain.BasicResponse{Message: "Logout error: " + err.Error()}
	}
	return &domain.BasicResponse{OK: true}
}

// AdminAction is a level-gated example action open to superusers and admins.
func (s *AuthService) AdminAction(ctx context.Context, token string) (*domain.ActionResponse, error) {
	user := s.GetSessionUser(ctx, token)
	if err := requireLevel(user, []int{domain.LevelSuper, domain.LevelAdmin}); err != nil {
		return nil, err
	}
	return &domain.ActionResponse{
		OK:      true,
		Message: "Admin/Super action at " + time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// SuperAction is a level-gated example action open to superusers only.
func (s *AuthService) SuperAction(ctx context.Context, token string) (*domain.ActionResponse, error) {
	user := s.GetSessionUser(ctx, token)
	if err := requireLevel(user, []int{domain.LevelSuper}); err != nil {
		return nil, err
	}
	return &domain.ActionResponse{
		OK:      true,
		Message: "Super-only action at " + time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// requireLevel short-circuits an action when there is no session user or the
// user's level is outside the allowed set. It runs before any effect of the
// guarded action.
func requireLevel(user *domain.UserView, allowed []int) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	for _, lvl := range allowed {
		if user.UserLevel == lvl {
			return nil
		}
	}
	return ErrForbidden
}

// passwordMatches compares the stored secret with the submitted password.
// Stored bcrypt hashes are verified with bcrypt; anything else keeps the
// legacy exact comparison, done in constant time.
func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
