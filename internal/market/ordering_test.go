package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/entropy"
	"github.com/talgya/mini-market/internal/stats"
	"github.com/talgya/mini-market/internal/world"
)

var foodNeed = economy.Need{
	Name:                   "food",
	Pile:                   economy.Pile{Resource: economy.ResourceFood, Amount: 1},
	PriceChangeOnBuy:       decimal.RequireFromString("0.8"),
	PriceChangeOnFailedBuy: decimal.RequireFromString("1.1"),
}

func walletWith(last *economy.Transaction, balance int64) *economy.Wallet {
	w := economy.NewWallet(economy.Credits(balance))
	if last != nil {
		_ = w.RegisterTransaction(economy.ResourceFood, last.Price, last.Status)
	}
	return w
}

func TestSellPrice(t *testing.T) {
	tests := []struct {
		name string
		last *economy.Transaction
		want int64
	}{
		{"first guess", nil, 150},
		{"sold raises ten percent", &economy.Transaction{Price: economy.Credits(100), Status: economy.StatusSold}, 110},
		{"sold raises at least one", &economy.Transaction{Price: economy.Credits(5), Status: economy.StatusSold}, 6},
		{"unsold drops ten percent", &economy.Transaction{Price: economy.Credits(100), Status: economy.StatusCancelled}, 90},
		{"never below one", &economy.Transaction{Price: economy.Credits(1), Status: economy.StatusCancelled}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := newTurn(&entropy.Script{Floats: []float64{0.5}})
			got, err := SellPrice(turn, "seller", economy.ResourceFood, walletWith(tt.last, 0))
			require.NoError(t, err)
			assert.Equal(t, economy.Credits(tt.want), got)
		})
	}

	_, err := SellPrice(newTurn(nil), "seller", economy.ResourceFood,
		walletWith(&economy.Transaction{Price: economy.Credits(3), Status: economy.StatusBought}, 0))
	assert.ErrorIs(t, err, ErrUnknownTransactionStatus)
}

func TestBuyPrice(t *testing.T) {
	tests := []struct {
		name string
		last *economy.Transaction
		want int64
	}{
		{"explores a fifth of the balance at most", nil, 100},
		{"bought bids lower", &economy.Transaction{Price: economy.Credits(100), Status: economy.StatusBought}, 80},
		{"failed bids higher", &economy.Transaction{Price: economy.Credits(100), Status: economy.StatusCancelled}, 110},
		{"failed bids at least one more", &economy.Transaction{Price: economy.Credits(3), Status: economy.StatusCancelled}, 4},
		{"never below one", &economy.Transaction{Price: economy.Credits(1), Status: economy.StatusBought}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := newTurn(&entropy.Script{Floats: []float64{0.5}})
			got, err := BuyPrice(turn, "buyer", foodNeed, walletWith(tt.last, 1000))
			require.NoError(t, err)
			assert.Equal(t, economy.Credits(tt.want), got)
		})
	}

	_, err := BuyPrice(newTurn(nil), "buyer", foodNeed,
		walletWith(&economy.Transaction{Price: economy.Credits(3), Status: economy.StatusSold}, 10))
	assert.ErrorIs(t, err, ErrUnknownTransactionStatus)
}

func TestBuyPriceMovesTowardYesterdaysAsks(t *testing.T) {
	turn := newTurn(nil)
	turn.History.Register(stats.StatsForDay{
		Day:      turn.Day,
		Resource: economy.ResourceFood,
		Sell:     stats.PriceStats{Count: 3, Median: economy.Credits(200)},
	})
	turn.Advance()

	last := &economy.Transaction{Price: economy.Credits(100), Status: economy.StatusCancelled}
	got, err := BuyPrice(turn, "buyer", foodNeed, walletWith(last, 1000))
	require.NoError(t, err)
	assert.Equal(t, economy.Credits(155), got, "halfway from 110 to 200")
}

func TestInputPrice(t *testing.T) {
	turn := newTurn(&entropy.Script{Floats: []float64{0.55}})
	got, err := InputPrice(turn, "farm", economy.ResourceManDay, economy.NewWallet(economy.Credits(50)))
	require.NoError(t, err)
	assert.Equal(t, economy.Credits(5), got)

	turn = newTurn(&entropy.Script{Floats: []float64{0.01}})
	got, err = InputPrice(turn, "farm", economy.ResourceManDay, economy.NewWallet(economy.Credits(50)))
	require.NoError(t, err)
	assert.Equal(t, economy.Credits(1), got, "bids at least one credit")
}

func TestOrderingPlacesLockedOrders(t *testing.T) {
	w := world.New()

	farm := addTrader(w, "farm", 50)
	w.Producers.Set(farm.ID, world.Producer{
		Needs: economy.One(economy.ResourceManDay),
		Gives: economy.Pile{Resource: economy.ResourceFood, Amount: 2},
	})
	require.NoError(t, farm.Storage.Add(economy.Pile{Resource: economy.ResourceFood, Amount: 2}))

	person := addTrader(w, "person", 1000)
	w.NeedSets.Set(person.ID, economy.NewNeedSet(foodNeed))

	turn := newTurn(&entropy.Script{Floats: []float64{0.5}})
	require.NoError(t, NewOrdering(w).Process(turn))

	var sells, buys []*economy.Order
	for _, e := range w.AllOrders() {
		if e.Order.Side == economy.SideSell {
			sells = append(sells, e.Order)
		} else {
			buys = append(buys, e.Order)
		}
	}

	require.Len(t, sells, 2, "one sell order per unit")
	assert.Equal(t, farm.ID, sells[0].Owner)
	assert.Equal(t, 0.0, farm.Storage.Amount(economy.ResourceFood))
	assert.Less(t, sells[0].Seq, sells[1].Seq)

	// The farm has no needs, so it bids for its missing labor as well.
	require.Len(t, buys, 2)
	assert.Equal(t, economy.ResourceFood, buys[0].Resource)
	assert.Equal(t, economy.Credits(100), buys[0].Price)
	assert.Equal(t, economy.Credits(900), person.Wallet.Balance())
	assert.Equal(t, economy.ResourceManDay, buys[1].Resource)
	assert.Equal(t, farm.ID, buys[1].Owner)
	assert.Equal(t, economy.Credits(5), buys[1].Price)
	assert.Equal(t, economy.Credits(45), farm.Wallet.Balance())
}

func TestOrderingSkipsBrokeAndFullAgents(t *testing.T) {
	w := world.New()

	broke := addTrader(w, "broke", 0)
	w.NeedSets.Set(broke.ID, economy.NewNeedSet(foodNeed))

	// Two unmet water needs but room for only one more unit.
	thirsty := addTrader(w, "thirsty", 100)
	thirsty.Storage.SetLimit(economy.One(economy.ResourceWater))
	w.NeedSets.Set(thirsty.ID, economy.NewNeedSet(
		economy.Need{Name: "water", Priority: 0, Pile: economy.One(economy.ResourceWater),
			PriceChangeOnBuy: decimal.NewFromInt(1), PriceChangeOnFailedBuy: decimal.NewFromInt(1)},
		economy.Need{Name: "more water", Priority: 1, Pile: economy.Pile{Resource: economy.ResourceWater, Amount: 2},
			PriceChangeOnBuy: decimal.NewFromInt(1), PriceChangeOnFailedBuy: decimal.NewFromInt(1)},
	))

	turn := newTurn(&entropy.Script{Floats: []float64{0.5}})
	require.NoError(t, NewOrdering(w).Process(turn))

	entries := w.AllOrders()
	require.Len(t, entries, 1)
	assert.Equal(t, thirsty.ID, entries[0].Order.Owner)
	assert.Equal(t, economy.Credits(10), entries[0].Order.Price)
	assert.Equal(t, economy.Credits(90), thirsty.Wallet.Balance())
}

func TestOrderingBidsBalanceWhenShort(t *testing.T) {
	w := world.New()
	a := addTrader(w, "short", 30)
	w.NeedSets.Set(a.ID, economy.NewNeedSet(foodNeed))
	_ = a.Wallet.RegisterTransaction(economy.ResourceFood, economy.Credits(50), economy.StatusBought)

	require.NoError(t, NewOrdering(w).Process(newTurn(nil)))
	entries := w.AllOrders()
	require.Len(t, entries, 1)
	assert.Equal(t, economy.Credits(30), entries[0].Order.Price, "desired 40, only 30 left")
	assert.True(t, a.Wallet.Balance().IsZero())
}
