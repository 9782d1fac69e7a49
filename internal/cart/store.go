package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/YadneshBamne/HoLo/internal/domain"
)

var ErrOutOfStock = errors.New("product is out of stock")

// Store owns the line items of a single session's cart. Line items keep
// insertion order and there is at most one per product id; a quantity is
// never kept at zero or below, mutations that would drive it there remove
// the item instead.
//
// The in-memory state is authoritative. Every mutation is written through to
// Storage; a failed write is logged and the mutation still takes effect, so
// store operations themselves never fail (Add excepted, when the stock guard
// is on).
type Store struct {
	mu         sync.Mutex
	sessionID  string
	items      []domain.LineItem
	storage    Storage
	stockGuard bool
	log        *slog.Logger
}

type Option func(*Store)

// WithStockGuard makes Add reject out-of-stock products with ErrOutOfStock
// instead of leaving the check to the caller.
func WithStockGuard() Option {
	return func(s *Store) { s.stockGuard = true }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore loads the persisted cart for sessionID. A missing, unreadable or
// corrupt stored payload yields an empty cart, never an error.
func NewStore(ctx context.Context, storage Storage, sessionID string, opts ...Option) *Store {
	s := &Store{
		sessionID: sessionID,
		storage:   storage,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := storage.Load(ctx, sessionID)
	if err != nil {
		s.log.Warn("cart load failed, starting empty",
			slog.String("session_id", sessionID), slog.Any("err", err))
		items = nil
	}
	s.items = sanitize(items)
	return s
}

// sanitize drops persisted entries that violate the line-item invariants
// (duplicate product ids, non-positive quantities).
func sanitize(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, li := range items {
		if li.Quantity <= 0 || li.Product.ID == "" {
			continue
		}
		if _, dup := seen[li.Product.ID]; dup {
			continue
		}
		seen[li.Product.ID] = struct{}{}
		out = append(out, li)
	}
	return out
}

// Add merges quantity into the line item for product.ID, appending a new
// line item when none exists. With the stock guard enabled an out-of-stock
// product is rejected and nothing changes.
func (s *Store) Add(ctx context.Context, product domain.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stockGuard && !product.InStock() {
		return ErrOutOfStock
	}

	for i := range s.items {
		if s.items[i].Product.ID != product.ID {
			continue
		}
		next := s.items[i].Quantity + quantity
		if next <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = next
		}
		s.persist(ctx)
		return nil
	}

	if quantity <= 0 {
		return nil
	}
	s.items = append(s.items, domain.LineItem{Product: product, Quantity: quantity})
	s.persist(ctx)
	return nil
}

// Remove deletes the line item for productID. Removing an absent product is
// a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID string) {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// SetQuantity replaces the quantity of the line item for productID. A
// quantity of zero or less removes the item. Absent products are a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart and deletes the stored representation.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		s.log.Error("cart delete failed",
			slog.String("session_id", s.sessionID), slog.Any("err", err))
	}
}

// Total is the sum of quantity times price over the current line items,
// recomputed on every call.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, li := range s.items {
		total += li.Subtotal()
	}
	return total
}

// Count is the sum of quantities over the current line items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, li := range s.items {
		count += li.Quantity
	}
	return count
}

func (s *Store) Contains(productID string) bool {
	return s.Quantity(productID) > 0
}

// Quantity returns the quantity for productID, or 0 when absent.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, li := range s.items {
		if li.Product.ID == productID {
			return li.Quantity
		}
	}
	return 0
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persist writes the current items through to storage. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	snapshot := make([]domain.LineItem, len(s.items))
	copy(snapshot, s.items)
	if err := s.storage.Save(ctx, s.sessionID, snapshot); err != nil {
		s.log.Error("cart save failed",
			slog.String("session_id", s.sessionID), slog.Any("err", err))
	}
}
