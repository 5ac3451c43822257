package storage

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/product-inventory/internal/core/domain"
	"github.com/rl1809/product-inventory/internal/port"
)

// runItemStoreContract exercises the behaviour every ItemStore backend must
// share. Each case creates its own item so backends need no cleanup.
func runItemStoreContract(t *testing.T, store port.ItemStore) {
	ctx := context.Background()

	create := func(t *testing.T, quantity int64) domain.Item {
		t.Helper()
		item, err := store.Create(ctx, domain.NewItem{
			Description: "Sunset Orange",
			Price:       1499,
			Quantity:    quantity,
			PictureURL:  "http://fs.local/images/orange.png",
		})
		require.NoError(t, err)
		require.NotEmpty(t, item.ID)
		return item
	}

	quantityOf := func(t *testing.T, id string) int64 {
		t.Helper()
		item, err := store.Get(ctx, id)
		require.NoError(t, err)
		return item.Quantity
	}

	t.Run("create and get", func(t *testing.T) {
		item := create(t, 10)

		got, err := store.Get(ctx, item.ID)
		require.NoError(t, err)
		require.Equal(t, item, got)
		require.Equal(t, "Sunset Orange", got.Description)
		require.Equal(t, int64(1499), got.Price)
		require.Equal(t, "http://fs.local/images/orange.png", got.PictureURL)
	})

	t.Run("create rejects negative values", func(t *testing.T) {
		_, err := store.Create(ctx, domain.NewItem{Price: -1})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = store.Create(ctx, domain.NewItem{Quantity: -1})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := store.Get(ctx, domain.NewItemID())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list contains created", func(t *testing.T) {
		a := create(t, 1)
		b := create(t, 2)

		items, err := store.List(ctx)
		require.NoError(t, err)

		ids := make(map[string]bool, len(items))
		for _, it := range items {
			ids[it.ID] = true
		}
		require.True(t, ids[a.ID])
		require.True(t, ids[b.ID])
	})

	t.Run("decrement applies and guards", func(t *testing.T) {
		item := create(t, 10)

		outcome, err := store.ConditionalDecrement(ctx, item.ID, 7)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(3), quantityOf(t, item.ID))

		outcome, err = store.ConditionalDecrement(ctx, item.ID, 5)
		require.NoError(t, err)
		require.Equal(t, domain.NotApplied, outcome)
		require.Equal(t, int64(3), quantityOf(t, item.ID))

		outcome, err = store.ConditionalDecrement(ctx, item.ID, 3)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(0), quantityOf(t, item.ID))
	})

	t.Run("increment", func(t *testing.T) {
		item := create(t, 3)

		outcome, err := store.UnconditionalIncrement(ctx, item.ID, 7)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(10), quantityOf(t, item.ID))
	})

	t.Run("zero increment reports applied", func(t *testing.T) {
		item := create(t, 4)

		for i := 0; i < 3; i++ {
			outcome, err := store.UnconditionalIncrement(ctx, item.ID, 0)
			require.NoError(t, err)
			require.Equal(t, domain.Applied, outcome)
		}
		require.Equal(t, int64(4), quantityOf(t, item.ID))
	})

	t.Run("unknown id is not applied and not created", func(t *testing.T) {
		id := domain.NewItemID()

		outcome, err := store.ConditionalDecrement(ctx, id, 1)
		require.NoError(t, err)
		require.Equal(t, domain.NotApplied, outcome)

		outcome, err = store.UnconditionalIncrement(ctx, id, 1)
		require.NoError(t, err)
		require.Equal(t, domain.NotApplied, outcome)

		_, err = store.Get(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid amounts", func(t *testing.T) {
		item := create(t, 5)

		_, err := store.ConditionalDecrement(ctx, item.ID, 0)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = store.ConditionalDecrement(ctx, item.ID, -2)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = store.UnconditionalIncrement(ctx, item.ID, -1)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)

		require.Equal(t, int64(5), quantityOf(t, item.ID))
	})

	t.Run("increment past int64 range is rejected", func(t *testing.T) {
		item := create(t, 3)

		outcome, err := store.UnconditionalIncrement(ctx, item.ID, math.MaxInt64)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Equal(t, domain.NotApplied, outcome)
		require.Equal(t, int64(3), quantityOf(t, item.ID))

		outcome, err = store.UnconditionalIncrement(ctx, item.ID, math.MaxInt64-3)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(math.MaxInt64), quantityOf(t, item.ID))

		_, err = store.UnconditionalIncrement(ctx, item.ID, 1)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Equal(t, int64(math.MaxInt64), quantityOf(t, item.ID))
	})

	t.Run("large amounts stay exact", func(t *testing.T) {
		item := create(t, math.MaxInt64)

		outcome, err := store.ConditionalDecrement(ctx, item.ID, math.MaxInt64)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(0), quantityOf(t, item.ID))

		outcome, err = store.UnconditionalIncrement(ctx, item.ID, 1<<53+1)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(1<<53+1), quantityOf(t, item.ID))

		outcome, err = store.ConditionalDecrement(ctx, item.ID, 1<<53+2)
		require.NoError(t, err)
		require.Equal(t, domain.NotApplied, outcome)

		outcome, err = store.ConditionalDecrement(ctx, item.ID, 1<<53)
		require.NoError(t, err)
		require.Equal(t, domain.Applied, outcome)
		require.Equal(t, int64(1), quantityOf(t, item.ID))
	})

	t.Run("concurrent single-unit reservations", func(t *testing.T) {
		initialStock := int64(20)
		totalRequests := 50
		item := create(t, initialStock)

		var successCount atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < totalRequests; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcome, err := store.ConditionalDecrement(ctx, item.ID, 1)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if outcome == domain.Applied {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int32(initialStock), successCount.Load())
		require.Equal(t, int64(0), quantityOf(t, item.ID))
	})

	t.Run("concurrent multi-unit reservations", func(t *testing.T) {
		const n, q = 10, int64(3)
		initial := q*n - 1
		item := create(t, initial)

		var applied atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcome, err := store.ConditionalDecrement(ctx, item.ID, q)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if outcome == domain.Applied {
					applied.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int64(n-1), applied.Load())
		require.Equal(t, initial-q*applied.Load(), quantityOf(t, item.ID))
	})
}
