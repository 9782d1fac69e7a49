package orders

import (
	"context"
	"errors"
	"time"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OutboxEvent is a pending domain event written in the same transaction as
// the order it describes.
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type Repository interface {
	// CreateOrder writes the order, its line items and an order-created
	// outbox event as a single transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error
}
