// Package cart is the client-persisted shopping cart: an ordered
// sequence of product/quantity lines serialized as JSON under one
// well-known storage key. Every operation re-reads and rewrites the
// whole sequence, which is what makes two instances sharing a backend
// behave like two browser tabs sharing localStorage: last writer wins,
// no merge, no locking.
package cart

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"Boutique/internal/catalog"
	"Boutique/internal/storage"
)

// Key is the fixed storage key the serialized cart lives under.
const Key = "cart"

// Line pairs a product snapshot with a positive quantity. At most one
// line per product id is ever persisted.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type Store struct {
	storage storage.Storage
	log     *zap.Logger
}

func New(st storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: st, log: log}
}

// Read returns the current lines. It never fails: a missing key, a
// storage error, or an unparseable payload all read as an empty cart.
func (s *Store) Read(ctx context.Context) []Line {
	raw, ok, err := s.storage.Get(ctx, Key)
	if err != nil {
		s.log.Warn("cart read failed, treating as empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.log.Warn("cart payload corrupt, treating as empty", zap.Error(err))
		return nil
	}
	return lines
}

// Add merges quantity into the existing line for p.ID or appends a new
// line. A non-positive quantity is a no-op, keeping every stored
// quantity at least 1.
func (s *Store) Add(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	lines := s.Read(ctx)

	found := false
	for i := range lines {
		if lines[i].Product.ID == p.ID {
			lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{Product: p, Quantity: quantity})
	}

	return s.write(ctx, lines)
}

// UpdateQuantity replaces the quantity of the line for productID.
// A non-positive quantity is a deliberate no-op: the line is neither
// updated nor removed. The full sequence is rewritten even when no
// line matches.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	lines := s.Read(ctx)
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = quantity
		}
	}

	return s.write(ctx, lines)
}

// Remove drops the line for productID. Removing an absent id is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, productID string) error {
	lines := s.Read(ctx)

	kept := lines[:0]
	for _, l := range lines {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}

	return s.write(ctx, kept)
}

// Clear removes the persisted structure entirely; a subsequent Read
// returns empty.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Remove(ctx, Key)
}

// Subscribe registers fn to run when the cart key changes, including
// changes made by another instance sharing the storage backend.
// Best-effort UI freshness only.
func (s *Store) Subscribe(fn func()) (func(), error) {
	return s.storage.Subscribe(Key, fn)
}

func (s *Store) write(ctx context.Context, lines []Line) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, Key, string(raw))
}

// ItemCount sums the quantities across lines (the navbar badge value).
func ItemCount(lines []Line) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Total sums price times quantity across lines.
func Total(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Product.Price * int64(l.Quantity)
	}
	return total
}
