package site

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/cart"
	"Boutique/internal/catalog"
)

//go:embed templates/*.html
var tmplFS embed.FS

var tmpl = template.Must(
	template.New("").Funcs(template.FuncMap{
		"showSize": catalog.ShowSize,
		"join":     func(s catalog.SizeList, sep string) string { return strings.Join(s, sep) },
		"inc":      func(n int) int { return n + 1 },
		"dec":      func(n int) int { return n - 1 },
	}).ParseFS(tmplFS, "templates/*.html"),
)

// base carries what every page needs: the navbar badge count, the
// admin button state, and the transient notice banner.
type base struct {
	Title       string
	CartCount   int
	AdminActive bool
	Notice      string
}

func (s *Server) base(r *http.Request, title string) base {
	ctx := r.Context()
	return base{
		Title:       title,
		CartCount:   cart.ItemCount(s.Cart.Read(ctx)),
		AdminActive: s.Session.Active(ctx),
		Notice:      r.URL.Query().Get("notice"),
	}
}

type listingData struct {
	base
	Heading    string
	Category   string
	Query      string
	Products   []catalog.Product
	LoadFailed bool
}

type productData struct {
	base
	Product catalog.Product
}

type messageData struct {
	base
	Message string
}

type cartData struct {
	base
	Lines      []cart.Line
	Total      int64
	Form       orderForm
	FormError  string
	LoadFailed bool
}

type orderForm struct {
	CustomerName string
	Phone        string
	Address      string
}

type loginData struct {
	base
	Username string
	Error    string
}

type adminProductsData struct {
	base
	Query      string
	Category   string
	Categories []string
	Products   []catalog.Product
	LoadFailed bool
}

type productFormData struct {
	base
	Heading    string
	Action     string
	Categories []string
	Form       productFormValues
	Error      string
}

type productFormValues struct {
	Name        string
	Description string
	Category    string
	Price       string
	Size        string
}

type adminOrdersData struct {
	base
	Orders     []api.Order
	LoadFailed bool
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.Log.Error("template render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirectNotice sends the browser to target with a transient notice
// banner attached.
func redirectNotice(w http.ResponseWriter, r *http.Request, target, notice string) {
	u, err := url.Parse(target)
	if err != nil {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	q := u.Query()
	q.Set("notice", notice)
	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
