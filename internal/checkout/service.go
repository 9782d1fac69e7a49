package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/YadneshBamne/HoLo/internal/orders"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Cart is the slice of the cart store the submitter needs.
type Cart interface {
	Items() []domain.LineItem
	Total() float64
	Clear(ctx context.Context)
}

// Service turns a non-empty cart plus a valid checkout form into a persisted
// order. The order and its line items are written as one transaction; on any
// failure the cart is left untouched so the user can retry. On success the
// cart is cleared exactly once.
type Service struct {
	repo orders.Repository
	log  *slog.Logger
}

func NewService(repo orders.Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) Submit(ctx context.Context, cart Cart, form domain.CheckoutForm) (*domain.Order, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	items := cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:              uuid.New(),
		CustomerName:    strings.TrimSpace(form.CustomerName),
		CustomerEmail:   strings.TrimSpace(form.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(form.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(form.DeliveryAddress),
		Notes:           strings.TrimSpace(form.Notes),
		TotalAmount:     cart.Total(),
		Status:          domain.OrderStatusPending,
		Items:           make([]domain.OrderItem, 0, len(items)),
	}
	for _, li := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:       li.Product.ID,
			ProductName:     li.Product.Name,
			Quantity:        li.Quantity,
			PriceAtPurchase: li.Product.Price,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	cart.Clear(ctx)
	s.log.Info("order placed",
		slog.String("order_id", order.ID.String()),
		slog.Float64("total", order.TotalAmount),
		slog.Int("items", len(order.Items)))
	return order, nil
}
