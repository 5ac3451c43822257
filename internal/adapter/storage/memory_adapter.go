package storage

import (
	"context"
	"sync"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

// MemoryAdapter keeps items in process memory. Every primitive runs under one
// mutex, which makes the guarded decrement a single indivisible step.
// Not durable; used for local runs, the stress tool and tests.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string]domain.Item
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{items: make(map[string]domain.Item)}
}

func (m *MemoryAdapter) Get(ctx context.Context, id string) (domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return item, nil
}

func (m *MemoryAdapter) List(ctx context.Context) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

func (m *MemoryAdapter) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item := in.WithID(domain.NewItemID())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return item, nil
}

func (m *MemoryAdapter) ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReserveAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || item.Quantity < amount {
		return domain.NotApplied, nil
	}
	item.Quantity -= amount
	m.items[id] = item
	return domain.Applied, nil
}

func (m *MemoryAdapter) UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error) {
	if err := domain.ValidateReleaseAmount(amount); err != nil {
		return domain.NotApplied, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return domain.NotApplied, nil
	}
	if err := domain.ValidateIncrement(item.Quantity, amount); err != nil {
		return domain.NotApplied, err
	}
	item.Quantity += amount
	m.items[id] = item
	return domain.Applied, nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}
