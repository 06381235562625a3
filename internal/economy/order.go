package economy

import (
	"fmt"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
// Unprocessed is the only non-terminal state.
type OrderStatus uint8

const (
	StatusUnprocessed OrderStatus = iota
	StatusBought
	StatusSold
	StatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusUnprocessed:
		return "UNPROCESSED"
	case StatusBought:
		return "BOUGHT"
	case StatusSold:
		return "SOLD"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("STATUS(%d)", uint8(s))
}

// Side says whether an order buys or sells.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// OwnerID identifies the entity that placed an order. It mirrors the
// registry's entity id without importing it.
type OwnerID uint32

// Order is a request (buy) or offer (sell) of one unit of a resource.
// A buy order locks its price out of the owner's wallet; a sell order locks
// one unit out of the owner's storage. Status only changes through Fill
// and Cancel.
type Order struct {
	ID       uuid.UUID
	Seq      uint64 // Creation sequence, the tie-breaker for equal prices
	Owner    OwnerID
	Side     Side
	Resource Resource
	Price    Money

	status OrderStatus
}

// NewBuyOrder creates an unprocessed buy order.
func NewBuyOrder(owner OwnerID, r Resource, price Money) *Order {
	return &Order{ID: uuid.New(), Owner: owner, Side: SideBuy, Resource: r, Price: price}
}

// NewSellOrder creates an unprocessed sell order.
func NewSellOrder(owner OwnerID, r Resource, price Money) *Order {
	return &Order{ID: uuid.New(), Owner: owner, Side: SideSell, Resource: r, Price: price}
}

// Status returns the current status.
func (o *Order) Status() OrderStatus { return o.status }

// IsOpen reports whether the order still awaits matching or cancellation.
func (o *Order) IsOpen() bool { return o.status == StatusUnprocessed }

// Locked returns the money this order still holds out of its owner's wallet.
func (o *Order) Locked() Money {
	if o.Side == SideBuy && o.status == StatusUnprocessed {
		return o.Price
	}
	return Money{}
}

// Fill marks a matched order Bought (buy side) or Sold (sell side).
func (o *Order) Fill() error {
	next := StatusBought
	if o.Side == SideSell {
		next = StatusSold
	}
	return o.transition(next)
}

// Cancel marks an unmatched order Cancelled.
func (o *Order) Cancel() error {
	return o.transition(StatusCancelled)
}

func (o *Order) transition(next OrderStatus) error {
	if o.status != StatusUnprocessed {
		return fmt.Errorf("%w: %s order %s from %s to %s", ErrInvalidTransition, o.Side, o.ID, o.status, next)
	}
	o.status = next
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("%s order for %s at %s (%s)", o.Side, o.Resource, o.Price, o.status)
}
