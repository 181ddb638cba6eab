package stubapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"Boutique/internal/catalog"
	"Boutique/pkg/kit"
)

const maxOrderBody = 1 << 20

// storedOrder keeps product ids only; the product is populated at read
// time so orders for since-deleted products list a null product.
type storedOrder struct {
	ID           string
	CustomerName string
	Phone        string
	Address      string
	Items        []orderItem
	CreatedAt    time.Time
}

type orderItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Products     []orderItem `json:"products"`
}

type orderView struct {
	ID           string          `json:"_id"`
	CustomerName string          `json:"customerName"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Products     []orderLineView `json:"products"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type orderLineView struct {
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxOrderBody)

	var req createOrderReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if req.CustomerName == "" || req.Phone == "" || req.Address == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "customerName/phone/address required", nil)
		return
	}
	if len(req.Products) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "products required", nil)
		return
	}
	for _, it := range req.Products {
		if it.ProductID == "" || it.Quantity < 1 {
			kit.WriteError(w, r, http.StatusBadRequest, "bad order item", nil)
			return
		}
	}

	o := storedOrder{
		ID:           "o_" + uuid.NewString(),
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
		Items:        req.Products,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()

	kit.WriteJSON(w, http.StatusCreated, map[string]any{"_id": o.ID})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orderView, 0, len(s.orders))
	for _, o := range s.orders {
		lines := make([]orderLineView, 0, len(o.Items))
		for _, it := range o.Items {
			var pp *catalog.Product
			if p, ok := s.findProduct(it.ProductID); ok {
				cp := p
				pp = &cp
			}
			lines = append(lines, orderLineView{Product: pp, Quantity: it.Quantity})
		}
		out = append(out, orderView{
			ID:           o.ID,
			CustomerName: o.CustomerName,
			Phone:        o.Phone,
			Address:      o.Address,
			Products:     lines,
			CreatedAt:    o.CreatedAt,
		})
	}

	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	s.mu.Unlock()

	kit.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
