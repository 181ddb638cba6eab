package api

import (
	"context"
	"net/url"
	"time"

	"Boutique/internal/cart"
	"Boutique/internal/catalog"
)

// OrderDraft is the transient checkout payload. It is never partially
// persisted: either CreateOrder succeeds and the caller clears the
// cart, or it fails and both cart and draft are left intact for retry.
type OrderDraft struct {
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Products     []DraftItem `json:"products"`
}

// DraftItem references a product by id only; the API populates the
// full product when listing orders.
type DraftItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// DraftFromCart derives the order items from a cart snapshot taken at
// submission time.
func DraftFromCart(lines []cart.Line) []DraftItem {
	items := make([]DraftItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, DraftItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return items
}

// Order is the admin view of a placed order. Products carry the full
// product when it still exists, nil when it has since been deleted.
type Order struct {
	ID           string      `json:"_id"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Products     []OrderLine `json:"products"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type OrderLine struct {
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft) error {
	return c.postJSON(ctx, "/orders", draft, nil)
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.getJSON(ctx, "/orders", &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, "DELETE", "/orders/"+url.PathEscape(id), nil, "")
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
