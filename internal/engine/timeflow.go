package engine

import (
	"log/slog"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/market"
	"github.com/talgya/mini-market/internal/world"
)

// Timeflow opens a new day. Between turns no order is alive, so the money
// in the world must equal what the first day started with.
type Timeflow struct {
	World *world.World

	opening economy.Money
	started bool
}

// NewTimeflow creates the timeflow phase.
func NewTimeflow(w *world.World) *Timeflow { return &Timeflow{World: w} }

// Name identifies the phase.
func (f *Timeflow) Name() string { return "timeflow" }

// Process advances the date and audits the money supply.
func (f *Timeflow) Process(t *world.Turn) error {
	day := t.Advance()
	total := market.TotalMoney(f.World)
	if !f.started {
		f.opening, f.started = total, true
		slog.Info("first day", "day", day, "money", total, "entities", f.World.Len())
		return nil
	}
	slog.Debug("new day", "day", day)
	return market.CheckConserved("whole run", f.opening, total)
}
