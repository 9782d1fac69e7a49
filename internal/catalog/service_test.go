package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m        sync.Mutex
	products map[string]domain.Product
	err      error
	gets     int
}

func (m *mockRepository) ListProducts(context.Context, ListFilter) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) GetProduct(_ context.Context, id string) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *mockRepository) SearchProducts(context.Context, string, int) ([]domain.Product, error) {
	return nil, nil
}

func (m *mockRepository) ListCategories(context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (m *mockRepository) getCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.gets
}

type mockCache struct {
	m        sync.Mutex
	products map[string]*domain.Product
	getErr   error
}

func (m *mockCache) Get(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (m *mockCache) Set(_ context.Context, id string, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.products == nil {
		m.products = make(map[string]*domain.Product)
	}
	m.products[id] = p
	return nil
}

func (m *mockCache) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.products, id)
	return nil
}

func (m *mockCache) cached(id string) *domain.Product {
	m.m.Lock()
	defer m.m.Unlock()
	return m.products[id]
}

func TestGetProduct_CacheMissFallsBackToRepo(t *testing.T) {
	repo := &mockRepository{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "mug", Price: 12.5, StockStatus: domain.StockStatusInStock},
	}}
	cache := &mockCache{}
	sut := NewService(repo, cache, nil)

	got, err := sut.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "mug", got.Name)

	// cache write is async
	assert.Eventually(t, func() bool {
		return cache.cached("p1") != nil
	}, time.Second, 10*time.Millisecond)
}

func TestGetProduct_CacheHitSkipsRepo(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockCache{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "vase"},
	}}
	sut := NewService(repo, cache, nil)

	got, err := sut.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "vase", got.Name)
	assert.Equal(t, 0, repo.getCount())
}

func TestGetProduct_CacheErrorIsNotFatal(t *testing.T) {
	repo := &mockRepository{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "mug"},
	}}
	cache := &mockCache{getErr: errors.New("redis down")}
	sut := NewService(repo, cache, nil)

	got, err := sut.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "mug", got.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	sut := NewService(&mockRepository{}, &mockCache{}, nil)

	_, err := sut.GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestInvalidate_DropsCachedProduct(t *testing.T) {
	cache := &mockCache{products: map[string]*domain.Product{
		"p1": {ID: "p1"},
	}}
	sut := NewService(&mockRepository{}, cache, nil)

	sut.Invalidate("p1")

	assert.Nil(t, cache.cached("p1"))
}
