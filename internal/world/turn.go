package world

import (
	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/entropy"
	"github.com/talgya/mini-market/internal/stats"
)

// Turn is the simulation context every phase receives: the current date,
// the market statistics history and the random source.
type Turn struct {
	Day     stats.Day
	History *stats.History
	Rand    entropy.Source
}

// NewTurn returns a context positioned before day 1.
func NewTurn(src entropy.Source) *Turn {
	return &Turn{History: stats.NewHistory(), Rand: src}
}

// Advance moves to the next day.
func (t *Turn) Advance() stats.Day {
	t.Day++
	return t.Day
}

// Yesterday returns yesterday's stats for r, if the market saw any orders.
func (t *Turn) Yesterday(r economy.Resource) (stats.StatsForDay, bool) {
	day, ok := t.Day.Yesterday()
	if !ok {
		return stats.StatsForDay{}, false
	}
	return t.History.For(day, r)
}
