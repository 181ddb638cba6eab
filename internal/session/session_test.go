package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/storage"
)

// loginStub answers /admin/login with a fixed token for one known
// credential pair and 401 for everything else.
func loginStub(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/login" {
			http.NotFound(w, r)
			return
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "admin" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"jwt-abc"}`))
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL)
}

func TestLogin_StoresToken(t *testing.T) {
	st := storage.NewMemory()
	sess := New(st, loginStub(t), zap.NewNop())
	ctx := context.Background()

	if sess.Active(ctx) {
		t.Fatalf("fresh session must be inactive")
	}

	if err := sess.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if got := sess.Token(ctx); got != "jwt-abc" {
		t.Fatalf("Token = %q, want jwt-abc", got)
	}
	if !sess.Active(ctx) {
		t.Fatalf("session must be active after login")
	}

	stored, ok, err := st.Get(ctx, TokenKey)
	if err != nil || !ok || stored != "jwt-abc" {
		t.Fatalf("stored token = (%q, %v, %v)", stored, ok, err)
	}
}

func TestLogin_FailureStoresNothing(t *testing.T) {
	st := storage.NewMemory()
	sess := New(st, loginStub(t), zap.NewNop())
	ctx := context.Background()

	err := sess.Login(ctx, "admin", "wrong")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	if _, ok, _ := st.Get(ctx, TokenKey); ok {
		t.Fatalf("failed login must not store a token")
	}
	if sess.Active(ctx) {
		t.Fatalf("session must stay inactive after failed login")
	}
}

func TestLogout_RemovesTokenAndIsIdempotent(t *testing.T) {
	st := storage.NewMemory()
	sess := New(st, loginStub(t), zap.NewNop())
	ctx := context.Background()

	if err := sess.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := sess.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.Active(ctx) {
		t.Fatalf("session still active after logout")
	}

	// Logging out without a session is fine.
	if err := sess.Logout(ctx); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	st := storage.NewMemory()
	sess := New(st, loginStub(t), zap.NewNop())
	ctx := context.Background()

	var reached bool
	handler := sess.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products", nil))
	if reached {
		t.Fatalf("handler reached without a session")
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("got %d %q, want 302 to /admin/login", rec.Code, rec.Header().Get("Location"))
	}

	if err := sess.Login(ctx, "admin", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products", nil))
	if !reached || rec.Code != http.StatusOK {
		t.Fatalf("authenticated request blocked: code=%d reached=%v", rec.Code, reached)
	}
}
