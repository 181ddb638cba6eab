package stubapi

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Boutique/internal/catalog"
	"Boutique/pkg/kit"
)

const maxProductForm = 32 << 20

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	s.mu.RUnlock()

	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) listByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	all := make([]catalog.Product, len(s.products))
	copy(all, s.products)
	s.mu.RUnlock()

	kit.WriteJSON(w, http.StatusOK, catalog.FilterByCategory(all, name))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	p, ok := s.findProduct(id)
	s.mu.RUnlock()

	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProductForm(w, r, catalog.Product{})
	if !ok {
		return
	}
	p.ID = "p_" + uuid.NewString()

	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	existing, found := s.findProduct(id)
	s.mu.RUnlock()

	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	p, ok := s.decodeProductForm(w, r, existing)
	if !ok {
		return
	}
	p.ID = id

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = p
		}
	}
	s.mu.Unlock()

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()

	kit.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// decodeProductForm parses the multipart add/edit form over base,
// which supplies the retained fields for an update (images are kept
// when no new files are uploaded). Returns false after writing the
// error response.
func (s *Server) decodeProductForm(w http.ResponseWriter, r *http.Request, base catalog.Product) (catalog.Product, bool) {
	if err := r.ParseMultipartForm(maxProductForm); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad multipart form", map[string]any{"cause": err.Error()})
		return catalog.Product{}, false
	}

	p := base
	p.Name = strings.TrimSpace(r.FormValue("name"))
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.Category = strings.TrimSpace(r.FormValue("category"))

	if p.Name == "" || p.Category == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "name/category required", nil)
		return catalog.Product{}, false
	}

	price, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("price")), 10, 64)
	if err != nil || price < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must be a non-negative integer", nil)
		return catalog.Product{}, false
	}
	p.Price = price

	if size := strings.TrimSpace(r.FormValue("size")); size != "" {
		p.Size = catalog.SizeList{size}
	} else {
		p.Size = nil
	}

	if files := formFiles(r); len(files) > 0 {
		p.Images = storeImages(files)
	}
	if len(p.Images) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "at least one image required", nil)
		return catalog.Product{}, false
	}

	if s.Log != nil {
		s.Log.Debug("product form decoded", zap.String("name", p.Name), zap.Int("images", len(p.Images)))
	}
	return p, true
}

func formFiles(r *http.Request) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File["images"]
}

// storeImages assigns served paths for the uploaded parts. Image bytes
// are not retained; upload storage is out of scope and /uploads serves
// a placeholder.
func storeImages(files []*multipart.FileHeader) []string {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		ext := filepath.Ext(fh.Filename)
		paths = append(paths, "/uploads/"+uuid.NewString()+ext)
	}
	return paths
}

// placeholderPNG is a 1x1 transparent PNG.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (s *Server) serveUpload(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(placeholderPNG)
}

// findProduct must be called with mu held.
func (s *Server) findProduct(id string) (catalog.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}
