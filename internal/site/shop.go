package site

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/catalog"
)

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	data := listingData{
		base:    s.base(r, "Baba Boutique"),
		Heading: "Baba Boutique",
	}

	products, err := s.API.ListProducts(r.Context())
	if err != nil {
		s.Log.Warn("list products failed", zap.Error(err))
		data.LoadFailed = true
	}
	data.Products = products

	s.render(w, http.StatusOK, "listing.html", data)
}

// category fetches the category-scoped list from the API and applies
// the free-text filter on every request.
func (s *Server) category(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	query := r.URL.Query().Get("q")

	data := listingData{
		base:     s.base(r, name),
		Heading:  name,
		Category: name,
		Query:    query,
	}

	products, err := s.API.ListByCategory(r.Context(), name)
	if err != nil {
		s.Log.Warn("list category failed", zap.Error(err), zap.String("category", name))
		data.LoadFailed = true
		s.render(w, http.StatusOK, "listing.html", data)
		return
	}

	data.Products = catalog.Filter(products, query)
	s.render(w, http.StatusOK, "listing.html", data)
}

func (s *Server) productDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.API.GetProduct(r.Context(), id)
	if errors.Is(err, api.ErrNotFound) {
		s.render(w, http.StatusNotFound, "message.html", messageData{
			base:    s.base(r, "Not found"),
			Message: "Product not found.",
		})
		return
	}
	if err != nil {
		s.Log.Warn("get product failed", zap.Error(err), zap.String("id", id))
		s.render(w, http.StatusOK, "message.html", messageData{
			base:    s.base(r, "Error"),
			Message: "Loading failed. Please try again.",
		})
		return
	}

	s.render(w, http.StatusOK, "product.html", productData{
		base:    s.base(r, p.Name),
		Product: p,
	})
}
