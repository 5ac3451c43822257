package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Item is a reservable inventory record, a "color" of a product.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	PictureURL  string `json:"pictureUrl"`
}

// NewItem is the input for creating an Item. The id is assigned by the store.
type NewItem struct {
	Description string
	Price       int64
	Quantity    int64
	PictureURL  string
}

func (n NewItem) Validate() error {
	if n.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative, got %d", ErrInvalidArgument, n.Price)
	}
	if n.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative, got %d", ErrInvalidArgument, n.Quantity)
	}
	return nil
}

func (n NewItem) WithID(id string) Item {
	return Item{
		ID:          id,
		Description: n.Description,
		Price:       n.Price,
		Quantity:    n.Quantity,
		PictureURL:  n.PictureURL,
	}
}

func NewItemID() string {
	return uuid.NewString()
}

type Outcome int

const (
	// NotApplied means no record matched, or the guard did not hold.
	NotApplied Outcome = iota
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "not_applied"
}

func OutcomeOf(matched int64) Outcome {
	if matched > 0 {
		return Applied
	}
	return NotApplied
}

func ValidateReserveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: reserve amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	return nil
}

// ValidateReleaseAmount rejects negative release amounts. Zero is accepted.
func ValidateReleaseAmount(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: release amount must be non-negative, got %d", ErrInvalidArgument, amount)
	}
	return nil
}

// ValidateIncrement rejects a release that would push quantity past the
// int64 range.
func ValidateIncrement(current, amount int64) error {
	if amount > math.MaxInt64-current {
		return QuantityOverflow(amount)
	}
	return nil
}

// QuantityOverflow is reported by stores that detect the overflow themselves.
func QuantityOverflow(amount int64) error {
	return fmt.Errorf("%w: release of %d overflows quantity", ErrInvalidArgument, amount)
}
