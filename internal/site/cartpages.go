package site

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"Boutique/internal/api"
	"Boutique/internal/cart"
	"Boutique/pkg/kit"
)

func (s *Server) cartPage(w http.ResponseWriter, r *http.Request) {
	lines := s.Cart.Read(r.Context())

	s.render(w, http.StatusOK, "cart.html", cartData{
		base:  s.base(r, "Your Shopping Cart"),
		Lines: lines,
		Total: cart.Total(lines),
	})
}

func (s *Server) cartAdd(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("product_id")
	if id == "" {
		redirectNotice(w, r, "/cart", "Failed to add to cart")
		return
	}

	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || qty < 1 {
		qty = 1
	}

	p, err := s.API.GetProduct(r.Context(), id)
	if err != nil {
		s.Log.Warn("add to cart: product fetch failed", zap.Error(err), zap.String("id", id))
		redirectNotice(w, r, backTo(r, "/cart"), "Failed to add to cart")
		return
	}

	if err := s.Cart.Add(r.Context(), p, qty); err != nil {
		s.Log.Warn("cart add failed", zap.Error(err))
		redirectNotice(w, r, backTo(r, "/cart"), "Failed to add to cart")
		return
	}

	redirectNotice(w, r, backTo(r, "/cart"), "Added to cart")
}

func (s *Server) cartUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("product_id")
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	// The store treats a non-positive quantity as a no-op; the page
	// simply re-renders unchanged.
	if err := s.Cart.UpdateQuantity(r.Context(), id, qty); err != nil {
		s.Log.Warn("cart update failed", zap.Error(err))
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) cartRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.Cart.Remove(r.Context(), r.FormValue("product_id")); err != nil {
		s.Log.Warn("cart remove failed", zap.Error(err))
		redirectNotice(w, r, "/cart", "Failed to remove item")
		return
	}
	redirectNotice(w, r, "/cart", "Item removed from cart")
}

// checkout derives the order draft from the cart snapshot at
// submission time. On success the cart is cleared; on failure it is
// left untouched and the form values are retained for retry.
func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := orderForm{
		CustomerName: strings.TrimSpace(r.FormValue("customerName")),
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		Address:      strings.TrimSpace(r.FormValue("address")),
	}

	lines := s.Cart.Read(ctx)
	if len(lines) == 0 {
		redirectNotice(w, r, "/cart", "Your cart is empty")
		return
	}

	if form.CustomerName == "" || form.Phone == "" || form.Address == "" {
		s.render(w, http.StatusUnprocessableEntity, "cart.html", cartData{
			base:      s.base(r, "Your Shopping Cart"),
			Lines:     lines,
			Total:     cart.Total(lines),
			Form:      form,
			FormError: "All fields are required",
		})
		return
	}

	draft := api.OrderDraft{
		CustomerName: form.CustomerName,
		Phone:        form.Phone,
		Address:      form.Address,
		Products:     api.DraftFromCart(lines),
	}

	if err := s.API.CreateOrder(ctx, draft); err != nil {
		s.Log.Warn("order submit failed", zap.Error(err))
		s.render(w, http.StatusOK, "cart.html", cartData{
			base:      s.base(r, "Your Shopping Cart"),
			Lines:     lines,
			Total:     cart.Total(lines),
			Form:      form,
			FormError: "Failed to place order",
		})
		return
	}

	if err := s.Cart.Clear(ctx); err != nil {
		s.Log.Warn("cart clear failed", zap.Error(err))
	}

	redirectNotice(w, r, "/cart", "Order placed successfully!")
}

func (s *Server) cartCount(w http.ResponseWriter, r *http.Request) {
	n := cart.ItemCount(s.Cart.Read(r.Context()))
	kit.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

// cartEvents streams badge counts over SSE, driven by the store's
// change notification. This keeps the navbar badge fresh when another
// instance sharing the storage backend mutates the cart. Best-effort
// only; a missed event is corrected on the next page load.
func (s *Server) cartEvents(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	ch := make(chan struct{}, 1)
	cancel, err := s.Cart.Subscribe(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	if err != nil {
		s.Log.Warn("cart subscribe failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "subscribe failed", nil)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func() {
		n := cart.ItemCount(s.Cart.Read(r.Context()))
		fmt.Fprintf(w, "event: cart\ndata: %d\n\n", n)
		fl.Flush()
	}

	send()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			send()
		}
	}
}

// backTo prefers the referring page so add-to-cart keeps the shopper
// where they were. Off-host referrers fall back.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" {
		return fallback
	}
	if ref.Host != "" && ref.Host != r.Host {
		return fallback
	}
	return ref.Path
}
