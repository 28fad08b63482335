package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"blockdocs/internal/apperr"
	"blockdocs/internal/models"
)

const (
	sessionName    = "blockdocs-session"
	sessionAdminID = "admin_id"

	// MinPasswordLength is enforced when an admin is created.
	MinPasswordLength = 8
)

type contextKey struct{}

// NewSessionStore creates the cookie store backing admin sessions.
func NewSessionStore(sessionKey string) (*sessions.CookieStore, error) {
	if len(sessionKey) < 32 {
		return nil, errors.New("session key must be at least 32 characters long")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	store.Options.MaxAge = 7 * 24 * 60 * 60
	store.Options.SameSite = http.SameSiteLaxMode // Protect against CSRF
	return store, nil
}

// Service provides authentication-related services.
type Service struct {
	Repo   *Repository
	Store  sessions.Store
	Logger zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(repo *Repository, store sessions.Store, logger zerolog.Logger) *Service {
	return &Service{Repo: repo, Store: store, Logger: logger}
}

// CreateAdmin registers a new admin with a bcrypt password hash.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	u := &models.AdminUser{Username: username, Email: strings.TrimSpace(email), PasswordHash: string(hash)}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword sets a new password for the named admin.
func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	u, err := s.Repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.Repo.UpdatePassword(ctx, u.ID, string(hash))
}

// Authenticate checks credentials. Unknown users and wrong passwords give
// the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.AdminUser, error) {
	u, err := s.Repo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	return u, nil
}

func secure(r *http.Request) bool {
	// Set Secure flag based on request scheme or X-Forwarded-Proto header
	// This is crucial for correct behavior behind reverse proxies.
	return r.TLS != nil || r.URL.Scheme == "https" || r.Header.Get("X-Forwarded-Proto") == "https"
}

// Login authenticates an admin and starts a session.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, username, password string) (*models.AdminUser, error) {
	u, err := s.Authenticate(r.Context(), username, password)
	if err != nil {
		return nil, err
	}

	session, _ := s.Store.Get(r, sessionName)
	session.Values[sessionAdminID] = u.ID
	session.Options.Secure = secure(r)
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}
	return u, nil
}

// Logout destroys the admin session.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.Store.Get(r, sessionName)
	delete(session.Values, sessionAdminID)
	session.Options.MaxAge = -1
	session.Options.Secure = secure(r)
	if err := session.Save(r, w); err != nil {
		s.Logger.Error().Err(err).Msg("failed to clear session")
	}
}

// CurrentAdmin returns the signed-in admin, or nil.
func (s *Service) CurrentAdmin(r *http.Request) *models.AdminUser {
	session, err := s.Store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	id, ok := session.Values[sessionAdminID].(int64)
	if !ok {
		return nil
	}
	u, err := s.Repo.FindByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.Logger.Error().Err(err).Int64("admin_id", id).Msg("failed to load session admin")
		}
		return nil
	}
	return u
}

// WithAdmin adds the current admin, if any, to the request context.
func (s *Service) WithAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := s.CurrentAdmin(r); u != nil {
			r = r.WithContext(NewContext(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without an admin session. API calls get a
// JSON 401, pages are redirected to the login form.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := FromContext(r.Context())
		if u == nil {
			u = s.CurrentAdmin(r)
		}
		if u == nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), u)))
	})
}

// NewContext returns a copy of ctx carrying the admin.
func NewContext(ctx context.Context, u *models.AdminUser) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the admin stored in ctx, or nil.
func FromContext(ctx context.Context) *models.AdminUser {
	u, _ := ctx.Value(contextKey{}).(*models.AdminUser)
	return u
}
