package market

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/stats"
	"github.com/talgya/mini-market/internal/world"
)

// Pair is a buy order matched with a sell order.
type Pair struct {
	Buy  *economy.Order
	Sell *economy.Order
}

// Valid reports whether the buyer offers at least the seller's ask.
func (p Pair) Valid() bool {
	return !p.Buy.Price.Less(p.Sell.Price)
}

// Exchange is the per-resource double auction. Orders are settled in place
// and left for OrderCancellation and cleanup.
type Exchange struct {
	World *world.World
}

// NewExchange creates the exchange phase.
func NewExchange(w *world.World) *Exchange {
	return &Exchange{World: w}
}

// Name identifies the phase in logs and invariant errors.
func (e *Exchange) Name() string { return "exchange" }

// Process matches and settles open orders resource by resource and records
// the day's statistics.
func (e *Exchange) Process(t *world.Turn) error {
	return Guard(e.Name(), e.World, func() error {
		slog.Debug("exchange phase started", "day", t.Day)
		buys, sells := partition(e.World.AllOrders())

		for _, r := range economy.Resources() {
			if len(buys[r]) == 0 && len(sells[r]) == 0 {
				continue
			}
			pairs, eligibleBuys, eligibleSells := MatchOrders(buys[r], sells[r])

			prices := make([]economy.Money, 0, len(pairs))
			for _, p := range pairs {
				price, err := e.Settle(t, p.Buy, p.Sell)
				if err != nil {
					return fmt.Errorf("settle %s: %w", r, err)
				}
				prices = append(prices, price)
			}

			day := stats.StatsForDay{
				Day:          t.Day,
				Resource:     r,
				Buy:          stats.Summarize(stats.OrderPrices(buys[r])),
				Sell:         stats.Summarize(stats.OrderPrices(sells[r])),
				EligibleBuy:  stats.Summarize(stats.OrderPrices(eligibleBuys)),
				EligibleSell: stats.Summarize(stats.OrderPrices(eligibleSells)),
				Transactions: stats.Summarize(prices),
			}
			t.History.Register(day)
			slog.Debug("resource traded", "resource", r, "buy", day.Buy, "sell", day.Sell, "transactions", day.Transactions)
		}
		return nil
	})
}

// partition splits open orders by side and resource, keeping creation order.
func partition(entries []world.OrderEntry) (buys, sells map[economy.Resource][]*economy.Order) {
	buys = make(map[economy.Resource][]*economy.Order)
	sells = make(map[economy.Resource][]*economy.Order)
	for _, e := range entries {
		o := e.Order
		if !o.IsOpen() {
			continue
		}
		if o.Side == economy.SideBuy {
			buys[o.Resource] = append(buys[o.Resource], o)
		} else {
			sells[o.Resource] = append(sells[o.Resource], o)
		}
	}
	return buys, sells
}

// sortByPrice sorts ascending by price, then by creation sequence.
func sortByPrice(orders []*economy.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if c := orders[i].Price.Cmp(orders[j].Price); c != 0 {
			return c < 0
		}
		return orders[i].Seq < orders[j].Seq
	})
}

// EligibleOrders keeps the buys priced at or above the cheapest sell and the
// sells priced at or below the dearest buy, both sorted ascending. Nothing
// is eligible when either side is empty.
func EligibleOrders(buys, sells []*economy.Order) (eligibleBuys, eligibleSells []*economy.Order) {
	if len(buys) == 0 || len(sells) == 0 {
		return nil, nil
	}
	maxBuy := buys[0].Price
	for _, b := range buys[1:] {
		maxBuy = economy.MaxMoney(maxBuy, b.Price)
	}
	minSell := sells[0].Price
	for _, s := range sells[1:] {
		minSell = economy.MinMoney(minSell, s.Price)
	}

	for _, b := range buys {
		if !b.Price.Less(minSell) {
			eligibleBuys = append(eligibleBuys, b)
		}
	}
	for _, s := range sells {
		if !maxBuy.Less(s.Price) {
			eligibleSells = append(eligibleSells, s)
		}
	}
	sortByPrice(eligibleBuys)
	sortByPrice(eligibleSells)
	return eligibleBuys, eligibleSells
}

// PairOrders matches ascending-sorted buys and sells one to one. The surplus
// side is trimmed first: the cheapest buys or the dearest sells are left out,
// so the k most expensive buys meet the k cheapest sells.
func PairOrders(buys, sells []*economy.Order) []Pair {
	k := min(len(buys), len(sells))
	buys = buys[len(buys)-k:]
	sells = sells[:k]

	pairs := make([]Pair, k)
	for i := 0; i < k; i++ {
		pairs[i] = Pair{Buy: buys[i], Sell: sells[i]}
	}
	return pairs
}

// MatchOrders filters eligible orders and pairs them, dropping the cheapest
// eligible buy until every pair is valid.
func MatchOrders(buys, sells []*economy.Order) (pairs []Pair, eligibleBuys, eligibleSells []*economy.Order) {
	eligibleBuys, eligibleSells = EligibleOrders(buys, sells)
	for {
		pairs = PairOrders(eligibleBuys, eligibleSells)
		if allValid(pairs) {
			return pairs, eligibleBuys, eligibleSells
		}
		slog.Debug("invalid order pair, dropping cheapest buy", "price", eligibleBuys[0].Price)
		eligibleBuys = eligibleBuys[1:]
	}
}

func allValid(pairs []Pair) bool {
	for _, p := range pairs {
		if !p.Valid() {
			return false
		}
	}
	return true
}

// Settle executes one matched pair and returns the transaction price: half
// of buy+sell, the odd credit placed by the turn's random source. The seller
// gets the price, the buyer gets back the rest of the locked bid and one unit
// of the resource.
func (e *Exchange) Settle(t *world.Turn, buy, sell *economy.Order) (economy.Money, error) {
	if buy.Price.Less(sell.Price) {
		return economy.Money{}, fmt.Errorf("%w: buy %s < sell %s", ErrInvalidOrderPairing, buy.Price, sell.Price)
	}
	r := sell.Resource
	buyer, ok := e.World.Agent(buy.Owner)
	if !ok || buyer.Wallet == nil || buyer.Storage == nil {
		return economy.Money{}, fmt.Errorf("%w: buyer %d", ErrMissingOwner, buy.Owner)
	}
	seller, ok := e.World.Agent(sell.Owner)
	if !ok || seller.Wallet == nil {
		return economy.Money{}, fmt.Errorf("%w: seller %d", ErrMissingOwner, sell.Owner)
	}
	if !buyer.Storage.WillFit(economy.One(r)) {
		return economy.Money{}, fmt.Errorf("deliver %s to %s: %w", r, buyer.Name, economy.ErrStorageFull)
	}

	price, _ := buy.Price.Add(sell.Price).Split(t.Rand)
	refund, err := buy.Price.Sub(price)
	if err != nil {
		return economy.Money{}, err
	}

	seller.Wallet.Deposit(price)
	buyer.Wallet.Deposit(refund)
	if err := buyer.Storage.AddOne(r); err != nil {
		return economy.Money{}, err
	}
	if err := sell.Fill(); err != nil {
		return economy.Money{}, err
	}
	if err := buy.Fill(); err != nil {
		return economy.Money{}, err
	}
	if err := seller.Wallet.RegisterTransaction(r, price, economy.StatusSold); err != nil {
		return economy.Money{}, err
	}
	if err := buyer.Wallet.RegisterTransaction(r, price, economy.StatusBought); err != nil {
		return economy.Money{}, err
	}

	slog.Debug("orders fulfilled", "resource", r, "buyer", buyer.Name, "seller", seller.Name,
		"price", price, "refund", refund)
	return price, nil
}
