// Package market implements the per-turn trading phases: ordering, the
// double-auction exchange and order cancellation, plus the money ledger
// that checks every phase conserves money.
package market

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

var (
	// ErrInvariantViolation is wrapped by every InvariantError.
	ErrInvariantViolation = errors.New("money conservation violated")

	// ErrInvalidOrderPairing is returned when settlement is asked to match a
	// buy priced below its sell.
	ErrInvalidOrderPairing = errors.New("buy price below sell price")

	// ErrUnknownTransactionStatus is returned when a wallet's last
	// transaction status has no pricing rule.
	ErrUnknownTransactionStatus = errors.New("unknown transaction status")

	// ErrMissingOwner is returned when an order's owner lacks a wallet or storage.
	ErrMissingOwner = errors.New("order owner missing")
)

// InvariantError reports money appearing or disappearing during a phase.
type InvariantError struct {
	Phase  string
	Before economy.Money
	After  economy.Money
}

func (e *InvariantError) Error() string {
	diff := e.After.Creds() - e.Before.Creds()
	return fmt.Sprintf("%s: total money changed from %s to %s during %s (diff %dcr)",
		ErrInvariantViolation, e.Before, e.After, e.Phase, diff)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// WalletTotal sums every wallet balance.
func WalletTotal(w *world.World) economy.Money {
	var total economy.Money
	w.Wallets.Each(func(_ world.EntityID, wallet *economy.Wallet) {
		total = total.Add(wallet.Balance())
	})
	return total
}

// LockedTotal sums the money held by unprocessed buy orders.
func LockedTotal(w *world.World) economy.Money {
	var total economy.Money
	w.Orders.Each(func(_ world.EntityID, o *economy.Order) {
		total = total.Add(o.Locked())
	})
	return total
}

// TotalMoney is wallet balances plus money locked in orders. It must not
// change while the market runs.
func TotalMoney(w *world.World) economy.Money {
	return WalletTotal(w).Add(LockedTotal(w))
}

// CheckConserved returns an InvariantError when before and after differ.
func CheckConserved(phase string, before, after economy.Money) error {
	if before != after {
		return &InvariantError{Phase: phase, Before: before, After: after}
	}
	return nil
}

// Guard runs fn and verifies it left TotalMoney unchanged.
func Guard(phase string, w *world.World, fn func() error) error {
	before := TotalMoney(w)
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}
	return CheckConserved(phase, before, TotalMoney(w))
}
