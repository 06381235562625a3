package market

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// Pricing constants for surplus sales and producer inputs.
var (
	sellRaise       = decimal.RequireFromString("1.1")
	sellDrop        = decimal.RequireFromString("0.9")
	inputOnBuy      = decimal.RequireFromString("0.9")
	inputOnFailed   = decimal.RequireFromString("1.1")
	exploreFraction = 0.2 // Share of the balance risked on a first bid
)

const (
	sellGuessBase   = 50
	sellGuessSpread = 200
	inputGuessRange = 10
)

var oneCredit = economy.Credits(1)

// Ordering turns unmet needs and production surplus into locked, priced
// orders. Sell orders are placed before buy orders.
type Ordering struct {
	World *world.World
}

// NewOrdering creates the ordering phase.
func NewOrdering(w *world.World) *Ordering {
	return &Ordering{World: w}
}

// Name identifies the phase in logs and invariant errors.
func (o *Ordering) Name() string { return "ordering" }

// Process places this turn's orders.
func (o *Ordering) Process(t *world.Turn) error {
	return Guard(o.Name(), o.World, func() error {
		slog.Debug("ordering phase started", "day", t.Day)
		if err := o.createSellOrders(t); err != nil {
			return err
		}
		return o.createBuyOrders(t)
	})
}

// BuyPrice decides what an agent bids for a need from its last transaction
// in that resource.
func BuyPrice(t *world.Turn, name string, need economy.Need, wallet *economy.Wallet) (economy.Money, error) {
	explore := func() economy.Money {
		return wallet.Balance().Scale(decimal.NewFromFloat(t.Rand.Float64() * exploreFraction))
	}
	return bidFor(t, name, need.Resource(), wallet, need.PriceChangeOnBuy, need.PriceChangeOnFailedBuy, explore)
}

// InputPrice decides what a producer without needs bids for its input.
func InputPrice(t *world.Turn, name string, r economy.Resource, wallet *economy.Wallet) (economy.Money, error) {
	explore := func() economy.Money {
		return economy.Credits(int64(t.Rand.Float64() * inputGuessRange))
	}
	return bidFor(t, name, r, wallet, inputOnBuy, inputOnFailed, explore)
}

func bidFor(t *world.Turn, name string, r economy.Resource, wallet *economy.Wallet,
	onBuy, onFailed decimal.Decimal, explore func() economy.Money) (economy.Money, error) {

	last, ok := wallet.LastTransaction(r)
	if !ok {
		bid := explore()
		slog.Debug("no price knowledge, guessing", "agent", name, "resource", r, "bid", bid)
		return economy.MaxMoney(bid, oneCredit), nil
	}

	var bid economy.Money
	switch last.Status {
	case economy.StatusBought:
		bid = last.Price.Scale(onBuy)
		slog.Debug("bought last time, bidding lower", "agent", name, "resource", r, "last", last.Price, "bid", bid)
	case economy.StatusCancelled:
		bid = economy.MaxMoney(last.Price.Scale(onFailed), last.Price.Add(oneCredit))
		if y, ok := t.Yesterday(r); ok && y.Sell.Count > 0 && bid.Less(y.Sell.Median) {
			// Close half the gap to yesterday's typical ask.
			bid, _ = bid.Add(y.Sell.Median).Split(nil)
		}
		slog.Debug("failed to buy last time, bidding higher", "agent", name, "resource", r, "last", last.Price, "bid", bid)
	default:
		return economy.Money{}, fmt.Errorf("%w: %s for buying %s", ErrUnknownTransactionStatus, last.Status, r)
	}
	return economy.MaxMoney(bid, oneCredit), nil
}

// SellPrice decides the ask for one unit of r from the last transaction.
func SellPrice(t *world.Turn, name string, r economy.Resource, wallet *economy.Wallet) (economy.Money, error) {
	last, ok := wallet.LastTransaction(r)
	if !ok {
		ask := economy.Credits(int64(t.Rand.Float64()*sellGuessSpread + sellGuessBase))
		slog.Debug("no price knowledge, guessing", "agent", name, "resource", r, "ask", ask)
		return economy.MaxMoney(ask, oneCredit), nil
	}

	var ask economy.Money
	switch last.Status {
	case economy.StatusSold:
		ask = economy.MaxMoney(last.Price.Scale(sellRaise), last.Price.Add(oneCredit))
		slog.Debug("sold last time, asking more", "agent", name, "resource", r, "last", last.Price, "ask", ask)
	case economy.StatusCancelled:
		ask = last.Price.Scale(sellDrop)
		slog.Debug("failed to sell last time, asking less", "agent", name, "resource", r, "last", last.Price, "ask", ask)
	default:
		return economy.Money{}, fmt.Errorf("%w: %s for selling %s", ErrUnknownTransactionStatus, last.Status, r)
	}
	return economy.MaxMoney(ask, oneCredit), nil
}

// createSellOrders offers every unit of every producer's output, one order
// per unit. Each unit is removed from storage while the order is open.
func (o *Ordering) createSellOrders(t *world.Turn) error {
	for _, a := range o.World.WithProducer() {
		r := a.Producer.Gives.Resource
		if r == economy.ResourceNothing {
			continue
		}
		for a.Storage.HasOne(r) {
			if err := a.Storage.RemoveOne(r); err != nil {
				return fmt.Errorf("lock %s of %s: %w", r, a.Name, err)
			}
			ask, err := SellPrice(t, a.Name, r, a.Wallet)
			if err != nil {
				return fmt.Errorf("price %s of %s: %w", r, a.Name, err)
			}
			order := economy.NewSellOrder(a.ID, r, ask)
			o.World.PlaceOrder(order)
			slog.Debug("created order", "agent", a.Name, "order", order)
		}
	}
	return nil
}

// createBuyOrders bids for every unmet need in priority order, and for the
// missing inputs of producers that carry no needs.
func (o *Ordering) createBuyOrders(t *world.Turn) error {
	for _, a := range o.World.WithNeeds() {
		pending := make(map[economy.Resource]float64)
		for _, need := range a.Needs.Unmet(a.Storage) {
			slog.Debug("agent has unmet need", "agent", a.Name, "need", need.Name)
			bid, err := BuyPrice(t, a.Name, need, a.Wallet)
			if err != nil {
				return fmt.Errorf("price need %q of %s: %w", need.Name, a.Name, err)
			}
			if err := o.placeBuyOrder(a, need.Resource(), bid, pending); err != nil {
				return err
			}
		}
	}

	for _, a := range o.World.WithProducer() {
		if a.HasNeeds() {
			continue
		}
		input := a.Producer.Needs
		if input.IsNothing() || a.Storage.HasAtLeast(input) {
			continue
		}
		bid, err := InputPrice(t, a.Name, input.Resource, a.Wallet)
		if err != nil {
			return fmt.Errorf("price input of %s: %w", a.Name, err)
		}
		if err := o.placeBuyOrder(a, input.Resource, bid, map[economy.Resource]float64{}); err != nil {
			return err
		}
	}
	return nil
}

// placeBuyOrder locks the bid out of the wallet and places the order.
// pending counts units this agent already ordered this turn so storage
// limits hold once everything is delivered.
func (o *Ordering) placeBuyOrder(a world.Agent, r economy.Resource, desired economy.Money, pending map[economy.Resource]float64) error {
	if r == economy.ResourceNothing {
		slog.Debug("won't buy nothing", "agent", a.Name)
		return nil
	}
	if !a.Storage.WillFit(economy.Pile{Resource: r, Amount: pending[r] + 1}) {
		slog.Debug("no storage space left", "agent", a.Name, "resource", r)
		return nil
	}
	balance := a.Wallet.Balance()
	if balance.IsZero() {
		slog.Debug("no money left to order", "agent", a.Name, "resource", r)
		return nil
	}
	if balance.Less(desired) {
		slog.Debug("cannot afford desired bid, bidding balance", "agent", a.Name, "resource", r, "desired", desired, "balance", balance)
	}

	bid := economy.MinMoney(desired, balance)
	if err := a.Wallet.Withdraw(bid); err != nil {
		return fmt.Errorf("lock bid of %s: %w", a.Name, err)
	}
	order := economy.NewBuyOrder(a.ID, r, bid)
	o.World.PlaceOrder(order)
	pending[r]++
	slog.Debug("created order", "agent", a.Name, "order", order)
	return nil
}
