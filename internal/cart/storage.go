package cart

import (
	"context"

	"github.com/YadneshBamne/HoLo/internal/domain"
)

// Storage persists one cart per session id. The store loads once at
// construction and writes back after every mutation, so any backend that can
// round-trip a line-item list works here.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]domain.LineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.LineItem) error
	Delete(ctx context.Context, sessionID string) error
}
