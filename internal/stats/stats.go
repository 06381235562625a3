// Package stats keeps the per-day, per-resource market statistics and
// writes the ticker.
package stats

import (
	"fmt"
	"sort"

	"github.com/talgya/mini-market/internal/economy"
)

// Day is the simulation date, counted in turns from 1.
type Day uint64

// Yesterday returns the previous day; day 0 has no yesterday.
func (d Day) Yesterday() (Day, bool) {
	if d == 0 {
		return 0, false
	}
	return d - 1, true
}

func (d Day) String() string {
	return fmt.Sprintf("day %d", uint64(d))
}

// PriceStats summarises a set of prices. Min, Median and Max are only
// meaningful when Count > 0.
type PriceStats struct {
	Count  int
	Min    economy.Money
	Median economy.Money
	Max    economy.Money
}

// Summarize computes count and extrema of prices. The median of an even
// count is the truncated mean of the two middle prices.
func Summarize(prices []economy.Money) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	sorted := append([]economy.Money(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		mid := sorted[n/2-1].Creds() + sorted[n/2].Creds()
		median = economy.Credits(mid / 2)
	}
	return PriceStats{Count: n, Min: sorted[0], Median: median, Max: sorted[n-1]}
}

// OrderPrices extracts the prices of orders.
func OrderPrices(orders []*economy.Order) []economy.Money {
	prices := make([]economy.Money, len(orders))
	for i, o := range orders {
		prices[i] = o.Price
	}
	return prices
}

func (p PriceStats) String() string {
	if p.Count == 0 {
		return "none"
	}
	return fmt.Sprintf("%d (min %s, median %s, max %s)", p.Count, p.Min, p.Median, p.Max)
}

// StatsForDay is the market snapshot of one resource on one day.
type StatsForDay struct {
	Day          Day
	Resource     economy.Resource
	Buy          PriceStats // All buy orders
	Sell         PriceStats // All sell orders
	EligibleBuy  PriceStats
	EligibleSell PriceStats
	Transactions PriceStats
}

func (s StatsForDay) String() string {
	return fmt.Sprintf("%s %s: buy %s, sell %s, transactions %s",
		s.Day, s.Resource, s.Buy, s.Sell, s.Transactions)
}

// History indexes StatsForDay by day and resource.
type History struct {
	days map[Day]map[economy.Resource]StatsForDay
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{days: make(map[Day]map[economy.Resource]StatsForDay)}
}

// Register stores (or replaces) the snapshot for its day and resource.
func (h *History) Register(s StatsForDay) {
	byRes, ok := h.days[s.Day]
	if !ok {
		byRes = make(map[economy.Resource]StatsForDay)
		h.days[s.Day] = byRes
	}
	byRes[s.Resource] = s
}

// Has reports whether stats exist for day and r.
func (h *History) Has(day Day, r economy.Resource) bool {
	_, ok := h.For(day, r)
	return ok
}

// For returns the stats of r on day.
func (h *History) For(day Day, r economy.Resource) (StatsForDay, bool) {
	s, ok := h.days[day][r]
	return s, ok
}

// Day returns every snapshot of day in resource order.
func (h *History) Day(day Day) []StatsForDay {
	var out []StatsForDay
	for _, r := range economy.Resources() {
		if s, ok := h.days[day][r]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Forget drops days before keep; the market only ever looks one day back.
func (h *History) Forget(keep Day) {
	for d := range h.days {
		if d < keep {
			delete(h.days, d)
		}
	}
}
