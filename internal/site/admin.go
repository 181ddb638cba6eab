package site

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/catalog"
)

const maxProductForm = 32 << 20

func (s *Server) adminLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.Session.Active(r.Context()) {
		http.Redirect(w, r, "/admin/products", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "login.html", loginData{base: s.base(r, "Admin Login")})
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := strings.TrimSpace(r.FormValue("password"))

	if username == "" || password == "" {
		s.render(w, http.StatusUnprocessableEntity, "login.html", loginData{
			base:     s.base(r, "Admin Login"),
			Username: username,
			Error:    "Username and password are required",
		})
		return
	}

	err := s.Session.Login(r.Context(), username, password)
	if errors.Is(err, api.ErrUnauthorized) {
		s.render(w, http.StatusUnauthorized, "login.html", loginData{
			base:     s.base(r, "Admin Login"),
			Username: username,
			Error:    "Invalid username or password",
		})
		return
	}
	if err != nil {
		s.Log.Warn("admin login failed", zap.Error(err))
		s.render(w, http.StatusOK, "login.html", loginData{
			base:     s.base(r, "Admin Login"),
			Username: username,
			Error:    "Login failed, please try again",
		})
		return
	}

	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (s *Server) adminLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Logout(r.Context()); err != nil {
		s.Log.Warn("logout failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminProducts renders the product table with the same shared filter
// the category page uses, plus an exact category pre-filter.
func (s *Server) adminProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = catalog.CategoryAll
	}

	data := adminProductsData{
		base:       s.base(r, "Admin Products"),
		Query:      query,
		Category:   category,
		Categories: append([]string{catalog.CategoryAll}, catalog.Categories()...),
	}

	products, err := s.API.ListProducts(r.Context())
	if err != nil {
		s.Log.Warn("admin list products failed", zap.Error(err))
		data.LoadFailed = true
		s.render(w, http.StatusOK, "admin_products.html", data)
		return
	}

	data.Products = catalog.Filter(catalog.FilterByCategory(products, category), query)
	s.render(w, http.StatusOK, "admin_products.html", data)
}

func (s *Server) adminAddPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "product_form.html", productFormData{
		base:       s.base(r, "Add Product"),
		Heading:    "Add Product",
		Action:     "/admin/products/add",
		Categories: catalog.Categories(),
	})
}

func (s *Server) adminAdd(w http.ResponseWriter, r *http.Request) {
	form, values, err := decodeProductForm(r)
	if err != nil {
		s.renderProductForm(w, r, "Add Product", "/admin/products/add", values, err.Error())
		return
	}

	if _, err := s.API.CreateProduct(r.Context(), form); err != nil {
		s.Log.Warn("create product failed", zap.Error(err))
		s.renderProductForm(w, r, "Add Product", "/admin/products/add", values, "Failed to add product")
		return
	}

	redirectNotice(w, r, "/admin/products", "Product added successfully")
}

func (s *Server) adminEditPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.API.GetProduct(r.Context(), id)
	if err != nil {
		s.Log.Warn("edit page: product fetch failed", zap.Error(err), zap.String("id", id))
		redirectNotice(w, r, "/admin/products", "Failed to load product")
		return
	}

	s.render(w, http.StatusOK, "product_form.html", productFormData{
		base:       s.base(r, "Edit Product"),
		Heading:    "Edit Product",
		Action:     "/admin/products/edit/" + p.ID,
		Categories: catalog.Categories(),
		Form: productFormValues{
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       formatPrice(p.Price),
			Size:        strings.Join(p.Size, ", "),
		},
	})
}

func (s *Server) adminEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := "/admin/products/edit/" + id

	form, values, err := decodeProductForm(r)
	if err != nil {
		s.renderProductForm(w, r, "Edit Product", action, values, err.Error())
		return
	}

	if _, err := s.API.UpdateProduct(r.Context(), id, form); err != nil {
		s.Log.Warn("update product failed", zap.Error(err), zap.String("id", id))
		s.renderProductForm(w, r, "Edit Product", action, values, "Failed to update product")
		return
	}

	redirectNotice(w, r, "/admin/products", "Product updated successfully")
}

func (s *Server) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.API.DeleteProduct(r.Context(), id); err != nil {
		s.Log.Warn("delete product failed", zap.Error(err), zap.String("id", id))
		redirectNotice(w, r, "/admin/products", "Failed to delete product")
		return
	}
	redirectNotice(w, r, "/admin/products", "Product deleted successfully")
}

func (s *Server) adminOrders(w http.ResponseWriter, r *http.Request) {
	data := adminOrdersData{base: s.base(r, "Admin Orders")}

	orders, err := s.API.ListOrders(r.Context())
	if err != nil {
		s.Log.Warn("list orders failed", zap.Error(err))
		data.LoadFailed = true
	}
	data.Orders = orders

	s.render(w, http.StatusOK, "admin_orders.html", data)
}

func (s *Server) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.API.DeleteOrder(r.Context(), id); err != nil {
		s.Log.Warn("delete order failed", zap.Error(err), zap.String("id", id))
		redirectNotice(w, r, "/admin/orders", "Failed to delete order")
		return
	}
	redirectNotice(w, r, "/admin/orders", "Order deleted successfully")
}

func (s *Server) renderProductForm(w http.ResponseWriter, r *http.Request, heading, action string, values productFormValues, errMsg string) {
	s.render(w, http.StatusOK, "product_form.html", productFormData{
		base:       s.base(r, heading),
		Heading:    heading,
		Action:     action,
		Categories: catalog.Categories(),
		Form:       values,
		Error:      errMsg,
	})
}

// decodeProductForm reads the multipart form into the API passthrough
// shape; field validation is the API's job, only presence of the
// required fields is checked locally.
func decodeProductForm(r *http.Request) (api.ProductForm, productFormValues, error) {
	values := productFormValues{}

	if err := r.ParseMultipartForm(maxProductForm); err != nil {
		return api.ProductForm{}, values, errors.New("Invalid form submission")
	}

	values = productFormValues{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Size:        strings.TrimSpace(r.FormValue("size")),
	}

	if values.Name == "" || values.Category == "" || values.Price == "" {
		return api.ProductForm{}, values, errors.New("Name, category and price are required")
	}

	form := api.ProductForm{
		Name:        values.Name,
		Description: values.Description,
		Category:    values.Category,
		Price:       values.Price,
		Size:        values.Size,
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			img, err := readImage(fh)
			if err != nil {
				return api.ProductForm{}, values, errors.New("Failed to read image upload")
			}
			form.Images = append(form.Images, img)
		}
	}

	return form, values, nil
}

func readImage(fh *multipart.FileHeader) (api.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return api.ImageFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return api.ImageFile{}, err
	}
	return api.ImageFile{Filename: fh.Filename, Data: data}, nil
}

func formatPrice(p int64) string {
	return strconv.FormatInt(p, 10)
}
