// Package session holds the client side of the admin session: an
// opaque bearer token under one storage key. Presence of the key is
// the whole contract; the token carries no expiry and is never
// validated here beyond existence.
package session

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/storage"
)

// TokenKey is the storage key the admin token lives under.
const TokenKey = "adminToken"

type Session struct {
	storage storage.Storage
	api     *api.Client
	log     *zap.Logger
}

func New(st storage.Storage, client *api.Client, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{storage: st, api: client, log: log}
}

// Login exchanges credentials with the remote API and persists the
// returned token. On failure nothing is stored.
func (s *Session) Login(ctx context.Context, username, password string) error {
	token, err := s.api.AdminLogin(ctx, username, password)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, TokenKey, token)
}

// Logout removes the token; it is a no-op when no session is active.
func (s *Session) Logout(ctx context.Context) error {
	return s.storage.Remove(ctx, TokenKey)
}

// Token returns the stored token, or empty when no session is active.
func (s *Session) Token(ctx context.Context) string {
	tok, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn("session token read failed", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return tok
}

func (s *Session) Active(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// RequireAdmin guards admin-only views: without an active session the
// request is redirected to the login view instead of rendering.
func (s *Session) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Active(r.Context()) {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
