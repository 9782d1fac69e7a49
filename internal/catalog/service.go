package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"golang.org/x/sync/singleflight"
)

const featuredLimit = 6

type Service struct {
	repo  Repository
	cache ProductCache
	sfg   singleflight.Group // Prevents cache stampede
	log   *slog.Logger
}

func NewService(repo Repository, cache ProductCache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetProduct serves a single product, read-through cached. Concurrent misses
// for the same id are coalesced into one repository lookup.
func (s *Service) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(productID, func() (interface{}, error) {
		product, err := s.cache.Get(ctx, productID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("product cache get failed", slog.Any("err", err))
		}

		fresh, errGet := s.repo.GetProduct(ctx, productID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), productID, &fresh); errSet != nil {
				s.log.Warn("product cache set failed", slog.Any("err", errSet))
			}
		}()

		return &fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// FeaturedProducts lists the in-stock items flagged for the landing page.
func (s *Service) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, ListFilter{
		InStockOnly:  true,
		FeaturedOnly: true,
		Limit:        featuredLimit,
	})
}

func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return s.repo.SearchProducts(ctx, query, limit)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// Invalidate drops the cached copy of a product, typically in response to a
// change notification.
func (s *Service) Invalidate(productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, productID); err != nil {
		s.log.Warn("product cache invalidate failed", slog.Any("err", err))
	}
}
