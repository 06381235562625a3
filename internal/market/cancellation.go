package market

import (
	"fmt"
	"log/slog"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// OrderCancellation releases the locks of orders the exchange left open and
// marks every order for removal by cleanup.
type OrderCancellation struct {
	World *world.World
}

// NewOrderCancellation creates the cancellation phase.
func NewOrderCancellation(w *world.World) *OrderCancellation {
	return &OrderCancellation{World: w}
}

// Name identifies the phase in logs and invariant errors.
func (c *OrderCancellation) Name() string { return "order cancellation" }

// Process cancels open orders, then terminates all orders.
func (c *OrderCancellation) Process(t *world.Turn) error {
	return Guard(c.Name(), c.World, func() error {
		entries := c.World.AllOrders()
		slog.Debug("releasing order locks", "day", t.Day, "orders", len(entries))

		// Buy orders first, then sells, so refunds never depend on returned goods.
		for _, side := range []economy.Side{economy.SideBuy, economy.SideSell} {
			for _, e := range entries {
				if e.Order.Side != side || !e.Order.IsOpen() {
					continue
				}
				if err := c.cancel(e.Order); err != nil {
					return err
				}
			}
		}

		for _, e := range entries {
			c.World.Terminate(e.ID)
		}
		return nil
	})
}

// cancel returns the order's locked value to its owner: the full bid for a
// buy order, the unit for a sell order.
func (c *OrderCancellation) cancel(o *economy.Order) error {
	owner, ok := c.World.Agent(o.Owner)
	if !ok || owner.Wallet == nil {
		return fmt.Errorf("%w: %d", ErrMissingOwner, o.Owner)
	}

	switch o.Side {
	case economy.SideBuy:
		owner.Wallet.Deposit(o.Price)
		slog.Debug("buy order cancelled, bid returned", "agent", owner.Name, "resource", o.Resource, "amount", o.Price)
	case economy.SideSell:
		if owner.Storage == nil {
			return fmt.Errorf("%w: storage of %d", ErrMissingOwner, o.Owner)
		}
		owner.Storage.Restore(o.Resource)
		slog.Debug("sell order cancelled, unit returned", "agent", owner.Name, "resource", o.Resource, "ask", o.Price)
	}

	if err := o.Cancel(); err != nil {
		return err
	}
	return owner.Wallet.RegisterOrder(o)
}
