package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/entropy"
	"github.com/talgya/mini-market/internal/world"
)

func TestExchangeSettlesCrossingOrders(t *testing.T) {
	w := world.New()
	buyer := addTrader(w, "buyer", 100)
	seller := addTrader(w, "seller", 0)
	require.NoError(t, seller.Storage.AddOne(economy.ResourceFood))

	buy := bid(t, w, buyer, economy.ResourceFood, 15)
	sell := ask(t, w, seller, economy.ResourceFood, 5)

	turn := newTurn(&entropy.Script{Ints: []int{1}})
	require.NoError(t, NewExchange(w).Process(turn))

	assert.Equal(t, economy.StatusBought, buy.Status())
	assert.Equal(t, economy.StatusSold, sell.Status())
	assert.Equal(t, economy.Credits(90), buyer.Wallet.Balance())
	assert.Equal(t, economy.Credits(10), seller.Wallet.Balance())
	assert.Equal(t, 1.0, buyer.Storage.Amount(economy.ResourceFood))
	assert.Equal(t, 0.0, seller.Storage.Amount(economy.ResourceFood))

	tx, ok := buyer.Wallet.LastTransaction(economy.ResourceFood)
	require.True(t, ok)
	assert.Equal(t, economy.Transaction{Price: economy.Credits(10), Status: economy.StatusBought}, tx)
	tx, _ = seller.Wallet.LastTransaction(economy.ResourceFood)
	assert.Equal(t, economy.StatusSold, tx.Status)

	day, ok := turn.History.For(turn.Day, economy.ResourceFood)
	require.True(t, ok)
	assert.Equal(t, 1, day.Transactions.Count)
	assert.Equal(t, economy.Credits(10), day.Transactions.Median)
	assert.Equal(t, 1, day.EligibleBuy.Count)

	// Cancellation leaves filled orders alone and clears the book.
	require.NoError(t, NewOrderCancellation(w).Process(turn))
	assert.Equal(t, economy.StatusBought, buy.Status())
	assert.Equal(t, economy.Credits(90), buyer.Wallet.Balance())
	assert.Equal(t, 2, w.Terminated.Len())
}

func TestExchangeLeavesNonCrossingOrdersForCancellation(t *testing.T) {
	w := world.New()
	buyer := addTrader(w, "buyer", 100)
	seller := addTrader(w, "seller", 0)
	require.NoError(t, seller.Storage.AddOne(economy.ResourceFood))

	buy := bid(t, w, buyer, economy.ResourceFood, 5)
	sell := ask(t, w, seller, economy.ResourceFood, 10)

	turn := newTurn(nil)
	require.NoError(t, NewExchange(w).Process(turn))
	assert.True(t, buy.IsOpen())
	assert.True(t, sell.IsOpen())

	day, ok := turn.History.For(turn.Day, economy.ResourceFood)
	require.True(t, ok)
	assert.Equal(t, 1, day.Buy.Count)
	assert.Equal(t, 1, day.Sell.Count)
	assert.Zero(t, day.Transactions.Count)

	require.NoError(t, NewOrderCancellation(w).Process(turn))
	assert.Equal(t, economy.StatusCancelled, buy.Status())
	assert.Equal(t, economy.StatusCancelled, sell.Status())
	assert.Equal(t, economy.Credits(100), buyer.Wallet.Balance())
	assert.Equal(t, 1.0, seller.Storage.Amount(economy.ResourceFood))

	tx, _ := buyer.Wallet.LastTransaction(economy.ResourceFood)
	assert.Equal(t, economy.Transaction{Price: economy.Credits(5), Status: economy.StatusCancelled}, tx)
	tx, _ = seller.Wallet.LastTransaction(economy.ResourceFood)
	assert.Equal(t, economy.Transaction{Price: economy.Credits(10), Status: economy.StatusCancelled}, tx)

	for _, e := range w.AllOrders() {
		assert.True(t, w.IsTerminated(e.ID))
	}
}

func TestSettleRejectsInvalidPair(t *testing.T) {
	w := world.New()
	buyer := addTrader(w, "buyer", 100)
	seller := addTrader(w, "seller", 0)
	require.NoError(t, seller.Storage.AddOne(economy.ResourceWater))
	buy := bid(t, w, buyer, economy.ResourceWater, 4)
	sell := ask(t, w, seller, economy.ResourceWater, 5)

	_, err := NewExchange(w).Settle(newTurn(nil), buy, sell)
	assert.ErrorIs(t, err, ErrInvalidOrderPairing)
	assert.True(t, buy.IsOpen())
	assert.Equal(t, economy.Credits(96), buyer.Wallet.Balance())
}

func TestSettleOddSumFollowsSource(t *testing.T) {
	for pick, want := range map[int]int64{0: 8, 1: 7} {
		w := world.New()
		buyer := addTrader(w, "buyer", 15)
		seller := addTrader(w, "seller", 0)
		require.NoError(t, seller.Storage.AddOne(economy.ResourceFood))
		buy := bid(t, w, buyer, economy.ResourceFood, 10)
		sell := ask(t, w, seller, economy.ResourceFood, 5)

		price, err := NewExchange(w).Settle(newTurn(&entropy.Script{Ints: []int{pick}}), buy, sell)
		require.NoError(t, err)
		assert.Equal(t, economy.Credits(want), price)
		assert.Equal(t, economy.Credits(want), seller.Wallet.Balance())
		assert.Equal(t, economy.Credits(15-want), buyer.Wallet.Balance())
	}
}

func TestSettleRespectsBuyerStorage(t *testing.T) {
	w := world.New()
	buyer := addTrader(w, "buyer", 20)
	buyer.Storage.SetLimit(economy.Pile{Resource: economy.ResourceWater, Amount: 0})
	seller := addTrader(w, "seller", 0)
	require.NoError(t, seller.Storage.AddOne(economy.ResourceWater))
	buy := bid(t, w, buyer, economy.ResourceWater, 10)
	sell := ask(t, w, seller, economy.ResourceWater, 5)

	_, err := NewExchange(w).Settle(newTurn(nil), buy, sell)
	assert.ErrorIs(t, err, economy.ErrStorageFull)
	assert.True(t, sell.IsOpen())
}

func TestEligibleOrders(t *testing.T) {
	buys, sells := EligibleOrders(orders(economy.SideBuy, 3, 12, 8), orders(economy.SideSell, 15, 5, 6))
	assert.Equal(t, []int64{8, 12}, prices(buys))
	assert.Equal(t, []int64{5, 6}, prices(sells))

	buys, sells = EligibleOrders(nil, orders(economy.SideSell, 1))
	assert.Empty(t, buys)
	assert.Empty(t, sells)
}

func TestPairOrdersDropsSurplus(t *testing.T) {
	pairs := PairOrders(orders(economy.SideBuy, 5, 7, 9), orders(economy.SideSell, 4))
	require.Len(t, pairs, 1)
	assert.Equal(t, int64(9), pairs[0].Buy.Price.Creds(), "most expensive buy is kept")

	pairs = PairOrders(orders(economy.SideBuy, 9), orders(economy.SideSell, 2, 3, 4))
	require.Len(t, pairs, 1)
	assert.Equal(t, int64(2), pairs[0].Sell.Price.Creds(), "cheapest sell is kept")
}

func TestMatchOrdersDropsCheapestBuyUntilValid(t *testing.T) {
	pairs, eligibleBuys, eligibleSells := MatchOrders(
		orders(economy.SideBuy, 5, 6, 10),
		orders(economy.SideSell, 4, 7, 8),
	)
	require.Len(t, pairs, 2)
	assert.Equal(t, int64(6), pairs[0].Buy.Price.Creds())
	assert.Equal(t, int64(4), pairs[0].Sell.Price.Creds())
	assert.Equal(t, int64(10), pairs[1].Buy.Price.Creds())
	assert.Equal(t, int64(7), pairs[1].Sell.Price.Creds())
	assert.Equal(t, []int64{6, 10}, prices(eligibleBuys))
	assert.Equal(t, []int64{4, 7, 8}, prices(eligibleSells))
}

func TestMatchOrdersEqualPricesKeepCreationOrder(t *testing.T) {
	buys := orders(economy.SideBuy, 10, 10)
	pairs, _, _ := MatchOrders(buys, orders(economy.SideSell, 9))
	require.Len(t, pairs, 1)
	assert.Same(t, buys[1], pairs[0].Buy, "later order sorts last and is kept")
}

func TestMatchOrdersNeverSkipsBetterPrices(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buyPrices := rapid.SliceOfN(rapid.Int64Range(1, 50), 0, 12).Draw(t, "buys")
		sellPrices := rapid.SliceOfN(rapid.Int64Range(1, 50), 0, 12).Draw(t, "sells")
		buys := orders(economy.SideBuy, buyPrices...)
		sells := orders(economy.SideSell, sellPrices...)

		pairs, _, _ := MatchOrders(buys, sells)

		matched := make(map[*economy.Order]bool)
		for _, p := range pairs {
			if !p.Valid() {
				t.Fatalf("invalid pair %s / %s", p.Buy.Price, p.Sell.Price)
			}
			if matched[p.Buy] || matched[p.Sell] {
				t.Fatalf("order matched twice")
			}
			matched[p.Buy], matched[p.Sell] = true, true
		}
		for _, p := range pairs {
			for _, u := range buys {
				if !matched[u] && p.Buy.Price.Less(u.Price) {
					t.Fatalf("buy at %s matched while %s was skipped", p.Buy.Price, u.Price)
				}
			}
			for _, u := range sells {
				if !matched[u] && u.Price.Less(p.Sell.Price) {
					t.Fatalf("sell at %s matched while %s was skipped", p.Sell.Price, u.Price)
				}
			}
		}
	})
}

func TestMarketConservesMoneyAndGoods(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := world.New()
		n := rapid.IntRange(2, 6).Draw(t, "traders")
		var traders []world.Agent
		for i := 0; i < n; i++ {
			a := addTrader(w, "trader", rapid.Int64Range(0, 500).Draw(t, "money"))
			require.NoError(t, a.Storage.Add(economy.Pile{
				Resource: economy.ResourceFood,
				Amount:   float64(rapid.IntRange(0, 4).Draw(t, "food")),
			}))
			traders = append(traders, a)
		}
		startMoney := WalletTotal(w)
		startFood := totalFood(traders)

		for i := rapid.IntRange(0, 15).Draw(t, "orders"); i > 0; i-- {
			a := traders[rapid.IntRange(0, n-1).Draw(t, "owner")]
			price := rapid.Int64Range(1, 100).Draw(t, "price")
			if rapid.Bool().Draw(t, "buy") {
				if !a.Wallet.Balance().Less(economy.Credits(price)) {
					bid(t, w, a, economy.ResourceFood, price)
				}
			} else if a.Storage.HasOne(economy.ResourceFood) {
				ask(t, w, a, economy.ResourceFood, price)
			}
		}
		if TotalMoney(w) != startMoney {
			t.Fatalf("placing orders changed total money")
		}

		turn := newTurn(&entropy.Script{Ints: []int{rapid.IntRange(0, 1).Draw(t, "coin")}})
		require.NoError(t, NewExchange(w).Process(turn))
		require.NoError(t, NewOrderCancellation(w).Process(turn))

		for _, e := range w.AllOrders() {
			if e.Order.IsOpen() {
				t.Fatalf("order left open: %s", e.Order)
			}
		}
		if got := WalletTotal(w); got != startMoney {
			t.Fatalf("money %s after market, want %s", got, startMoney)
		}
		if got := totalFood(traders); got != startFood {
			t.Fatalf("food %g after market, want %g", got, startFood)
		}
	})
}

func totalFood(traders []world.Agent) float64 {
	var total float64
	for _, a := range traders {
		total += a.Storage.Amount(economy.ResourceFood)
	}
	return total
}
