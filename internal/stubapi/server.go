// Package stubapi is a development stand-in for the remote storefront
// API. It implements the REST contract the client consumes — product
// listing and CRUD, order intake and review, admin login — against
// in-memory state, so the site can run and be tested without the real
// backend. It is not the order-management backend; business rules
// beyond the wire contract are out of scope.
package stubapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"Boutique/internal/catalog"
	"Boutique/pkg/kit"
)

const (
	loginLimitPerMin = 5
	limitWindow      = 60 * time.Second
)

type Config struct {
	AdminUser     string
	AdminPassword string
	JWTSecret     string
}

type Server struct {
	Log *zap.Logger

	mu       sync.RWMutex
	products []catalog.Product
	orders   []storedOrder

	adminUser string
	adminHash []byte
	tokens    *tokenMaker
}

func NewServer(cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Server{
		Log:       log,
		products:  seedProducts(),
		adminUser: cfg.AdminUser,
		adminHash: hash,
		tokens:    newTokenMaker(cfg.JWTSecret),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, int(limitWindow.Seconds()))
	r.With(loginLimiter.Middleware).Post("/admin/login", s.handleLogin)

	r.Get("/products", s.listProducts)
	r.Get("/products/category/{name}", s.listByCategory)
	r.Get("/products/{id}", s.getProduct)

	r.Post("/orders", s.createOrder)

	r.Get("/uploads/*", s.serveUpload)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireToken)

		pr.Post("/products", s.createProduct)
		pr.Put("/products/{id}", s.updateProduct)
		pr.Delete("/products/{id}", s.deleteProduct)

		pr.Get("/orders", s.listOrders)
		pr.Delete("/orders/{id}", s.deleteOrder)
	})

	return r
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Mount("/", s.Routes())
	return r
}

func (s *Server) Ping(context.Context) error { return nil }

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:       "p_seed_1",
			Name:     "Red Silk Saree",
			Price:    3000,
			Category: catalog.CategorySarees,
			Images:   []string{"/uploads/red-silk-saree.jpg"},
		},
		{
			ID:       "p_seed_2",
			Name:     "Cotton Kurti",
			Price:    1200,
			Category: catalog.CategorySalwarKurti,
			Size:     catalog.SizeList{"M", "L", "XL"},
			Images:   []string{"/uploads/cotton-kurti.jpg"},
		},
		{
			ID:       "p_seed_3",
			Name:     "Mango Pickle 500g",
			Price:    250,
			Category: catalog.CategoryPickle,
			Images:   []string{"/uploads/mango-pickle.jpg"},
		},
	}
}
