package market

import (
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/entropy"
	"github.com/talgya/mini-market/internal/world"
)

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

func newTurn(src entropy.Source) *world.Turn {
	t := world.NewTurn(src)
	t.Advance()
	return t
}

func addTrader(w *world.World, name string, money int64) world.Agent {
	id := w.Create()
	w.Details.Set(id, world.Details{Name: name})
	w.Wallets.Set(id, economy.NewWallet(economy.Credits(money)))
	w.Storages.Set(id, economy.NewStorage())
	a, _ := w.Agent(id)
	return a
}

// bid locks price out of the trader's wallet and places a buy order.
func bid(t tb, w *world.World, a world.Agent, r economy.Resource, price int64) *economy.Order {
	t.Helper()
	require.NoError(t, a.Wallet.Withdraw(economy.Credits(price)))
	o := economy.NewBuyOrder(a.ID, r, economy.Credits(price))
	w.PlaceOrder(o)
	return o
}

// ask locks one unit out of the trader's storage and places a sell order.
func ask(t tb, w *world.World, a world.Agent, r economy.Resource, price int64) *economy.Order {
	t.Helper()
	require.NoError(t, a.Storage.RemoveOne(r))
	o := economy.NewSellOrder(a.ID, r, economy.Credits(price))
	w.PlaceOrder(o)
	return o
}

func orders(side economy.Side, prices ...int64) []*economy.Order {
	out := make([]*economy.Order, len(prices))
	for i, p := range prices {
		if side == economy.SideBuy {
			out[i] = economy.NewBuyOrder(1, economy.ResourceFood, economy.Credits(p))
		} else {
			out[i] = economy.NewSellOrder(2, economy.ResourceFood, economy.Credits(p))
		}
		out[i].Seq = uint64(i + 1)
	}
	return out
}

func prices(orders []*economy.Order) []int64 {
	out := make([]int64, len(orders))
	for i, o := range orders {
		out[i] = o.Price.Creds()
	}
	return out
}
