package port

import (
	"context"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ItemStore --dir=. --output=./mocks --outpkg=mocks

type ItemStore interface {
	// Get returns domain.ErrNotFound when no record has the id.
	Get(ctx context.Context, id string) (domain.Item, error)

	// List returns every item in no particular order.
	List(ctx context.Context) ([]domain.Item, error)

	Create(ctx context.Context, item domain.NewItem) (domain.Item, error)

	// ConditionalDecrement atomically subtracts amount from quantity only if
	// quantity >= amount. amount must be positive.
	ConditionalDecrement(ctx context.Context, id string, amount int64) (domain.Outcome, error)

	// UnconditionalIncrement atomically adds amount to quantity. amount must be
	// non-negative; zero reports Applied when the record exists. A sum past
	// the int64 range fails with domain.ErrInvalidArgument and changes nothing.
	UnconditionalIncrement(ctx context.Context, id string, amount int64) (domain.Outcome, error)

	Ping(ctx context.Context) error
}
