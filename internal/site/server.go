// Package site serves the storefront and admin console pages. Pages
// hold no state of their own: they read products from the remote API,
// run the listing filter in memory, and re-read the cart store after
// every mutation. Remote failures degrade to a "loading failed" page
// state with a notice banner; they never take the page down.
package site

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/cart"
	"Boutique/internal/session"
	"Boutique/internal/storage"
	"Boutique/pkg/kit"
)

const (
	loginLimitPerMin = 5
	limitWindow      = 60 * time.Second
)

type Server struct {
	Log     *zap.Logger
	Cart    *cart.Store
	API     *api.Client
	Session *session.Session
	Storage storage.Storage

	uploads http.Handler
}

func NewServer(st storage.Storage, client *api.Client, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	target, err := url.Parse(client.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Server{
		Log:     log,
		Cart:    cart.New(st, log),
		API:     client,
		Session: session.New(st, client, log),
		Storage: st,
		uploads: httputil.NewSingleHostReverseProxy(target),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.handleReady)

	r.Get("/", s.home)
	r.Get("/category/{name}", s.category)
	r.Get("/product/{id}", s.productDetail)

	r.Get("/cart", s.cartPage)
	r.Post("/cart/add", s.cartAdd)
	r.Post("/cart/update", s.cartUpdate)
	r.Post("/cart/remove", s.cartRemove)
	r.Post("/orders", s.checkout)

	r.Get("/cart/count", s.cartCount)
	r.Get("/cart/events", s.cartEvents)

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, int(limitWindow.Seconds()))
	r.Get("/admin/login", s.adminLoginPage)
	r.With(loginLimiter.Middleware).Post("/admin/login", s.adminLogin)
	r.Post("/admin/logout", s.adminLogout)

	r.Group(func(ar chi.Router) {
		ar.Use(s.Session.RequireAdmin)

		ar.Get("/admin/products", s.adminProducts)
		ar.Get("/admin/products/add", s.adminAddPage)
		ar.Post("/admin/products/add", s.adminAdd)
		ar.Get("/admin/products/edit/{id}", s.adminEditPage)
		ar.Post("/admin/products/edit/{id}", s.adminEdit)
		ar.Post("/admin/products/delete/{id}", s.adminDeleteProduct)

		ar.Get("/admin/orders", s.adminOrders)
		ar.Post("/admin/orders/delete/{id}", s.adminDeleteOrder)
	})

	// Product image paths are relative to the API host.
	r.Handle("/uploads/*", s.uploads)

	return r
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Storage.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}
