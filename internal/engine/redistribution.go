package engine

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/market"
	"github.com/talgya/mini-market/internal/world"
)

// WealthRedistribution taxes every living holder at a flat rate and pays
// the proceeds back out in equal shares. Odd credits go to the last holder.
// The inheritance pool is neither taxed nor paid.
type WealthRedistribution struct {
	World *world.World
	Rate  decimal.Decimal
}

// NewWealthRedistribution creates the redistribution phase. A zero rate
// disables it.
func NewWealthRedistribution(w *world.World, rate decimal.Decimal) *WealthRedistribution {
	return &WealthRedistribution{World: w, Rate: rate}
}

// Name identifies the phase.
func (r *WealthRedistribution) Name() string { return "wealth redistribution" }

// Process collects and pays out the tax.
func (r *WealthRedistribution) Process(t *world.Turn) error {
	if !r.Rate.IsPositive() {
		return nil
	}
	var payers []world.Agent
	for _, a := range r.World.Holders() {
		if r.World.IsTerminated(a.ID) || r.World.Pools.Has(a.ID) {
			continue
		}
		payers = append(payers, a)
	}
	if len(payers) == 0 {
		return nil
	}

	return market.Guard(r.Name(), r.World, func() error {
		var collected economy.Money
		for _, a := range payers {
			tax := a.Wallet.Balance().Scale(r.Rate)
			if err := a.Wallet.Withdraw(tax); err != nil {
				return err
			}
			collected = collected.Add(tax)
		}

		n := int64(len(payers))
		share := economy.Credits(collected.Creds() / n)
		rest := economy.Credits(collected.Creds() % n)
		for _, a := range payers {
			a.Wallet.Deposit(share)
		}
		payers[len(payers)-1].Wallet.Deposit(rest)

		slog.Debug("wealth redistributed", "day", t.Day, "collected", collected, "share", share, "holders", n)
		return nil
	})
}
