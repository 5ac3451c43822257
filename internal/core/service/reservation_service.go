package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/product-inventory/internal/core/domain"
	"github.com/rl1809/product-inventory/internal/port"
)

// ReservationService enforces the item lifecycle contract on top of the
// store's atomic primitives. It holds no item state between calls.
type ReservationService struct {
	store  port.ItemStore
	logger *zap.Logger
}

func NewReservationService(store port.ItemStore, logger *zap.Logger) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		store:  store,
		logger: logger.Named("reservation"),
	}
}

func (s *ReservationService) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, storageError("list items", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *ReservationService) GetItem(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Item{}, storageError("get item", err)
	}
	return item, nil
}

// CreateItem persists a new item. Token validation and image upload are the
// caller's job and must have succeeded before this is called.
func (s *ReservationService) CreateItem(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	if err := in.Validate(); err != nil {
		return domain.Item{}, err
	}

	item, err := s.store.Create(ctx, in)
	if err != nil {
		return domain.Item{}, storageError("create item", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID),
		zap.Int64("price", item.Price),
		zap.Int64("quantity", item.Quantity))
	return item, nil
}

// Reserve takes quantity units of stock in one atomic guarded decrement.
// ErrInsufficientQuantity is a normal outcome: the caller should decline the
// order rather than retry.
func (s *ReservationService) Reserve(ctx context.Context, id string, quantity int64) error {
	if err := domain.ValidateReserveAmount(quantity); err != nil {
		return err
	}

	s.logger.Debug("reserve", zap.String("item_id", id), zap.Int64("quantity", quantity))

	outcome, err := s.store.ConditionalDecrement(ctx, id, quantity)
	if err != nil {
		return storageError("reserve", err)
	}
	if outcome != domain.Applied {
		s.logger.Info("reservation declined", zap.String("item_id", id), zap.Int64("quantity", quantity))
		return domain.ErrInsufficientQuantity
	}

	s.logger.Info("reservation applied", zap.String("item_id", id), zap.Int64("quantity", quantity))
	return nil
}

// Release returns quantity units to the pool. Zero is a no-op that still
// succeeds for a known item.
func (s *ReservationService) Release(ctx context.Context, id string, quantity int64) error {
	if err := domain.ValidateReleaseAmount(quantity); err != nil {
		return err
	}

	s.logger.Debug("release", zap.String("item_id", id), zap.Int64("quantity", quantity))

	outcome, err := s.store.UnconditionalIncrement(ctx, id, quantity)
	if err != nil {
		return storageError("release", err)
	}
	if outcome != domain.Applied {
		s.logger.Warn("release for unknown item", zap.String("item_id", id))
		return domain.ErrNotFound
	}

	s.logger.Info("release applied", zap.String("item_id", id), zap.Int64("quantity", quantity))
	return nil
}

func (s *ReservationService) Ready(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

// storageError passes domain and context errors through and tags everything
// else as a transient storage failure, keeping the driver error in the chain.
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
