package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/YadneshBamne/HoLo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	m       sync.Mutex
	items   []domain.LineItem
	loadErr error
	saveErr error
	saves   int
	deletes int
}

func (m *mockStorage) Load(context.Context, string) ([]domain.LineItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.items, nil
}

func (m *mockStorage) Save(_ context.Context, _ string, items []domain.LineItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = items
	return nil
}

func (m *mockStorage) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	m.items = nil
	return nil
}

func (m *mockStorage) saved() []domain.LineItem {
	m.m.Lock()
	defer m.m.Unlock()
	return m.items
}

func product(id string, price float64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "product " + id,
		Price:       price,
		StockStatus: domain.StockStatusInStock,
	}
}

func newTestStore(t *testing.T, storage Storage, opts ...Option) *Store {
	t.Helper()
	return NewStore(context.Background(), storage, "session-test", opts...)
}

func TestAdd_MergesQuantitiesForSameProduct(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	require.NoError(t, sut.Add(ctx, product("A", 100), 3))

	assert.Equal(t, 1, sut.Len())
	assert.Equal(t, 5, sut.Quantity("A"))
	assert.Equal(t, 5, sut.Count())
	assert.InDelta(t, 500.0, sut.Total(), 1e-9)
}

func TestAdd_DistinctProductsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("B", 50), 1))
	require.NoError(t, sut.Add(ctx, product("C", 25), 4))

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Product.ID)
	assert.Equal(t, "C", items[1].Product.ID)
	assert.Equal(t, 5, sut.Count())
	assert.InDelta(t, 150.0, sut.Total(), 1e-9)
}

func TestAdd_NegativeDeltaDrivingQuantityToZeroRemovesItem(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 10), 2))
	require.NoError(t, sut.Add(ctx, product("A", 10), -2))

	assert.False(t, sut.Contains("A"))
	assert.Equal(t, 0, sut.Len())
}

func TestAdd_NonPositiveQuantityForAbsentProductIsNoop(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{}
	sut := newTestStore(t, storage)

	require.NoError(t, sut.Add(ctx, product("A", 10), 0))
	require.NoError(t, sut.Add(ctx, product("A", 10), -1))

	assert.Equal(t, 0, sut.Len())
	assert.Equal(t, 0, storage.saves)
}

func TestAdd_StockGuardRejectsOutOfStock(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{}
	sut := newTestStore(t, storage, WithStockGuard())

	p := product("A", 10)
	p.StockStatus = domain.StockStatusOutOfStock

	err := sut.Add(ctx, p, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, sut.Len())
	assert.Equal(t, 0, storage.saves)
}

func TestAdd_WithoutStockGuardAcceptsOutOfStock(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	p := product("A", 10)
	p.StockStatus = domain.StockStatusOutOfStock

	require.NoError(t, sut.Add(ctx, p, 1))
	assert.True(t, sut.Contains("A"))
}

func TestSetQuantity_ReplacesInsteadOfAdding(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 100), 5))
	sut.SetQuantity(ctx, "A", 1)

	assert.Equal(t, 1, sut.Quantity("A"))
	assert.Equal(t, 1, sut.Count())
	assert.InDelta(t, 100.0, sut.Total(), 1e-9)
}

func TestSetQuantity_ZeroOrNegativeRemovesItem(t *testing.T) {
	for _, qty := range []int{0, -3} {
		ctx := context.Background()
		sut := newTestStore(t, &mockStorage{})

		require.NoError(t, sut.Add(ctx, product("A", 100), 2))
		sut.SetQuantity(ctx, "A", qty)

		assert.False(t, sut.Contains("A"))
		assert.Equal(t, 0, sut.Count())
		assert.InDelta(t, 0.0, sut.Total(), 1e-9)
	}
}

func TestSetQuantity_AbsentProductIsNoop(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{}
	sut := newTestStore(t, storage)

	sut.SetQuantity(ctx, "missing", 3)

	assert.Equal(t, 0, sut.Len())
	assert.Equal(t, 0, storage.saves)
}

func TestRemove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	sut.Remove(ctx, "A")
	sut.Remove(ctx, "A")

	assert.Equal(t, 0, sut.Len())
	assert.Equal(t, 0, sut.Quantity("A"))
}

func TestClear_EmptiesCartAndDeletesStored(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{}
	sut := newTestStore(t, storage)

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	require.NoError(t, sut.Add(ctx, product("B", 50), 1))
	sut.Clear(ctx)

	assert.Equal(t, 0, sut.Count())
	assert.InDelta(t, 0.0, sut.Total(), 1e-9)
	assert.Empty(t, sut.Items())
	assert.Equal(t, 1, storage.deletes)
}

func TestTotal_TracksQuantityDelta(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	before := sut.Total()

	sut.SetQuantity(ctx, "A", 5)

	assert.InDelta(t, before+100*3, sut.Total(), 1e-9)
}

func TestScenario_SingleProductLifecycle(t *testing.T) {
	ctx := context.Background()
	sut := newTestStore(t, &mockStorage{})

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	assert.Equal(t, 2, sut.Count())
	assert.InDelta(t, 200.0, sut.Total(), 1e-9)

	require.NoError(t, sut.Add(ctx, product("A", 100), 3))
	assert.Equal(t, 5, sut.Count())
	assert.InDelta(t, 500.0, sut.Total(), 1e-9)
	assert.Equal(t, 1, sut.Len())

	sut.SetQuantity(ctx, "A", 1)
	assert.Equal(t, 1, sut.Count())
	assert.InDelta(t, 100.0, sut.Total(), 1e-9)

	sut.SetQuantity(ctx, "A", 0)
	assert.Equal(t, 0, sut.Count())
	assert.InDelta(t, 0.0, sut.Total(), 1e-9)
	assert.Empty(t, sut.Items())
}

func TestNewStore_LoadErrorYieldsEmptyCart(t *testing.T) {
	storage := &mockStorage{loadErr: errors.New("unexpected end of JSON input")}

	sut := newTestStore(t, storage)

	assert.Equal(t, 0, sut.Count())
	assert.Empty(t, sut.Items())
}

func TestNewStore_SanitizesPersistedItems(t *testing.T) {
	storage := &mockStorage{items: []domain.LineItem{
		{Product: product("A", 10), Quantity: 2},
		{Product: product("A", 10), Quantity: 7}, // duplicate id
		{Product: product("B", 5), Quantity: 0},  // dead quantity
		{Product: domain.Product{Price: 1}, Quantity: 1},
	}}

	sut := newTestStore(t, storage)

	require.Equal(t, 1, sut.Len())
	assert.Equal(t, 2, sut.Quantity("A"))
}

func TestMutations_PersistThroughStorage(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{}
	sut := newTestStore(t, storage)

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))
	sut.SetQuantity(ctx, "A", 4)
	sut.Remove(ctx, "A")

	assert.Equal(t, 3, storage.saves)
	assert.Empty(t, storage.saved())
}

func TestSaveFailure_DoesNotLoseInMemoryState(t *testing.T) {
	ctx := context.Background()
	storage := &mockStorage{saveErr: errors.New("backend down")}
	sut := newTestStore(t, storage)

	require.NoError(t, sut.Add(ctx, product("A", 100), 2))

	assert.Equal(t, 2, sut.Quantity("A"))
	assert.InDelta(t, 200.0, sut.Total(), 1e-9)
}

func TestManager_ReturnsSameStorePerSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&mockStorage{})

	a := m.Store(ctx, "s1")
	b := m.Store(ctx, "s1")
	c := m.Store(ctx, "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
