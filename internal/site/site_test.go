package site

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/storage"
	"Boutique/internal/stubapi"
)

type fixture struct {
	Site    *httptest.Server
	Server  *Server
	Storage *storage.Memory
}

// newFixture wires the full stack: the in-process API stand-in, a
// memory storage backend, and the site on top of both.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := stubapi.NewServer(stubapi.Config{
		AdminUser:     "admin",
		AdminPassword: "admin123",
		JWTSecret:     "test-secret",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("stub api: %v", err)
	}
	apiSrv := httptest.NewServer(backend.Routes())
	t.Cleanup(apiSrv.Close)

	st := storage.NewMemory()
	client := api.NewClient(apiSrv.URL)
	s, err := NewServer(st, client, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	client.Token = func() string { return s.Session.Token(context.Background()) }

	siteSrv := httptest.NewServer(s.Routes())
	t.Cleanup(siteSrv.Close)

	return &fixture{Site: siteSrv, Server: s, Storage: st}
}

func noRedirect(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func getBody(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(target, form)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func cartCount(t *testing.T, f *fixture) int {
	t.Helper()
	resp, err := http.Get(f.Site.URL + "/cart/count")
	if err != nil {
		t.Fatalf("GET /cart/count: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	return out.Count
}

func TestHome_ListsSeedProducts(t *testing.T) {
	f := newFixture(t)

	code, body := getBody(t, http.DefaultClient, f.Site.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, name := range []string{"Red Silk Saree", "Cotton Kurti", "Mango Pickle 500g"} {
		if !strings.Contains(body, name) {
			t.Fatalf("home page missing %q", name)
		}
	}
}

func TestCategory_SearchFiltersListing(t *testing.T) {
	f := newFixture(t)

	code, body := getBody(t, http.DefaultClient, f.Site.URL+"/category/Salwar%20Kurti?q=under+2000")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, "Cotton Kurti") {
		t.Fatalf("filtered listing missing Cotton Kurti")
	}
	if strings.Contains(body, "Red Silk Saree") {
		t.Fatalf("other category leaked into listing")
	}

	// A ceiling that excludes everything leaves the listing empty.
	_, body = getBody(t, http.DefaultClient, f.Site.URL+"/category/Salwar%20Kurti?q=under+1000")
	if strings.Contains(body, "Cotton Kurti") {
		t.Fatalf("price ceiling not applied")
	}
}

func TestProductDetail(t *testing.T) {
	f := newFixture(t)

	code, body := getBody(t, http.DefaultClient, f.Site.URL+"/product/p_seed_1")
	if code != http.StatusOK || !strings.Contains(body, "Red Silk Saree") {
		t.Fatalf("detail: status=%d", code)
	}

	code, _ = getBody(t, http.DefaultClient, f.Site.URL+"/product/ghost")
	if code != http.StatusNotFound {
		t.Fatalf("missing product: status = %d, want 404", code)
	}
}

func TestCartFlow_AddUpdateRemove(t *testing.T) {
	f := newFixture(t)

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"p_seed_1"},
		"quantity":   {"2"},
	})
	if n := cartCount(t, f); n != 2 {
		t.Fatalf("count after add = %d, want 2", n)
	}

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"p_seed_1"},
	})
	if n := cartCount(t, f); n != 3 {
		t.Fatalf("count after second add = %d, want 3", n)
	}

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/update", url.Values{
		"product_id": {"p_seed_1"},
		"quantity":   {"5"},
	})
	if n := cartCount(t, f); n != 5 {
		t.Fatalf("count after update = %d, want 5", n)
	}

	// A zero quantity leaves the line untouched.
	postForm(t, http.DefaultClient, f.Site.URL+"/cart/update", url.Values{
		"product_id": {"p_seed_1"},
		"quantity":   {"0"},
	})
	if n := cartCount(t, f); n != 5 {
		t.Fatalf("count after zero update = %d, want 5", n)
	}

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/remove", url.Values{
		"product_id": {"p_seed_1"},
	})
	if n := cartCount(t, f); n != 0 {
		t.Fatalf("count after remove = %d, want 0", n)
	}
}

func TestCartAdd_UnknownProductDoesNotMutate(t *testing.T) {
	f := newFixture(t)

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"ghost"},
	})
	if n := cartCount(t, f); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}

func TestCheckout_SuccessClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"p_seed_1"},
		"quantity":   {"2"},
	})

	resp := postForm(t, noRedirect(t), f.Site.URL+"/orders", url.Values{
		"customerName": {"Asha"},
		"phone":        {"9999999999"},
		"address":      {"12 MG Road"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("checkout status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/cart") {
		t.Fatalf("redirect = %q", loc)
	}

	if n := cartCount(t, f); n != 0 {
		t.Fatalf("cart not cleared after checkout: count = %d", n)
	}
	if _, ok, _ := f.Storage.Get(ctx, "cart"); ok {
		t.Fatalf("cart key still present after checkout")
	}
}

func TestCheckout_MissingFieldsKeepsCart(t *testing.T) {
	f := newFixture(t)

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"p_seed_1"},
	})

	resp := postForm(t, http.DefaultClient, f.Site.URL+"/orders", url.Values{
		"customerName": {"Asha"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "All fields are required") {
		t.Fatalf("missing validation message in response")
	}
	if !strings.Contains(string(b), "Asha") {
		t.Fatalf("form values not retained")
	}

	if n := cartCount(t, f); n != 1 {
		t.Fatalf("cart mutated by failed checkout: count = %d", n)
	}
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	f := newFixture(t)

	resp := postForm(t, noRedirect(t), f.Site.URL+"/orders", url.Values{
		"customerName": {"Asha"},
		"phone":        {"9999999999"},
		"address":      {"12 MG Road"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
}

func TestCheckout_APIFailureKeepsCartAndForm(t *testing.T) {
	f := newFixture(t)

	postForm(t, http.DefaultClient, f.Site.URL+"/cart/add", url.Values{
		"product_id": {"p_seed_1"},
	})

	// Swap the API base for a dead endpoint so order submission fails.
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead.Close()
	f.Server.API.BaseURL = dead.URL

	resp := postForm(t, http.DefaultClient, f.Site.URL+"/orders", url.Values{
		"customerName": {"Asha"},
		"phone":        {"9999999999"},
		"address":      {"12 MG Road"},
	})
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "Failed to place order") {
		t.Fatalf("missing failure message")
	}
	if !strings.Contains(string(b), "Asha") {
		t.Fatalf("form values not retained after failure")
	}

	if n := cartCount(t, f); n != 1 {
		t.Fatalf("cart mutated by failed order: count = %d", n)
	}
}

func TestHome_APIDownDegrades(t *testing.T) {
	f := newFixture(t)

	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead.Close()
	f.Server.API.BaseURL = dead.URL

	code, body := getBody(t, http.DefaultClient, f.Site.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d, page must degrade not fail", code)
	}
	if !strings.Contains(body, "Loading failed") {
		t.Fatalf("missing degraded state message")
	}
}

func TestAdminGuard_RedirectsWithoutSession(t *testing.T) {
	f := newFixture(t)
	client := noRedirect(t)

	for _, path := range []string{"/admin/products", "/admin/products/add", "/admin/orders"} {
		resp, err := client.Get(f.Site.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/login" {
			t.Fatalf("%s: got %d %q, want 302 to /admin/login", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)

	resp := postForm(t, http.DefaultClient, f.Site.URL+"/admin/login", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "Invalid username or password") {
		t.Fatalf("missing error message")
	}

	if f.Server.Session.Active(context.Background()) {
		t.Fatalf("session active after failed login")
	}
}

func TestAdminLogin_ThenProductsAndOrders(t *testing.T) {
	f := newFixture(t)

	resp := postForm(t, noRedirect(t), f.Site.URL+"/admin/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/products" {
		t.Fatalf("login: got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if !f.Server.Session.Active(context.Background()) {
		t.Fatalf("session not active after login")
	}

	code, body := getBody(t, http.DefaultClient, f.Site.URL+"/admin/products")
	if code != http.StatusOK || !strings.Contains(body, "Red Silk Saree") {
		t.Fatalf("admin products: status=%d", code)
	}

	// The admin table uses the same free-text filter as the shop.
	_, body = getBody(t, http.DefaultClient, f.Site.URL+"/admin/products?q=saree+under+2000")
	if strings.Contains(body, "Red Silk Saree") {
		t.Fatalf("composite filter not applied on admin table")
	}

	code, _ = getBody(t, http.DefaultClient, f.Site.URL+"/admin/orders")
	if code != http.StatusOK {
		t.Fatalf("admin orders: status = %d", code)
	}

	// Logout drops the session and the guard kicks back in.
	postForm(t, http.DefaultClient, f.Site.URL+"/admin/logout", nil)
	resp, err := noRedirect(t).Get(f.Site.URL + "/admin/products")
	if err != nil {
		t.Fatalf("GET after logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("after logout: status = %d, want 302", resp.StatusCode)
	}
}

func TestCartEvents_StreamsInitialCount(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/cart/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.Server.Routes().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "event: cart\ndata: 0\n\n") {
		t.Fatalf("stream body = %q", rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		code, _ := getBody(t, http.DefaultClient, f.Site.URL+path)
		if code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, code)
		}
	}
}
