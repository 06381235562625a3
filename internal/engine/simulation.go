// Simulation ties together all phases and runs them each turn.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/market"
	"github.com/talgya/mini-market/internal/stats"
	"github.com/talgya/mini-market/internal/world"
)

// Phase is one step of a turn. Phases run to completion in a fixed order.
type Phase interface {
	Name() string
	Process(t *world.Turn) error
}

// Recorder persists the outcome of a turn.
type Recorder interface {
	RecordDay(day stats.Day, snapshots []stats.StatsForDay, totalMoney economy.Money, population int) error
}

// Options configures the optional phases of a Simulation.
type Options struct {
	TaxRate  decimal.Decimal // Share of every balance redistributed each turn
	Ticker   *stats.Ticker   // Nil disables the ticker
	Recorder Recorder        // Nil disables persistence
}

// Simulation holds the world, the turn context and the ordered phases.
type Simulation struct {
	World   *world.World
	Turn    *world.Turn
	Spawner *agents.Spawner

	// Phases in turn order. The market phases sit between before and after;
	// money is audited across them as a whole.
	before []Phase
	market []Phase
	after  []Phase

	// Statistics tracked per turn.
	Stats SimStats
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Population int           `json:"population"`
	TotalMoney economy.Money `json:"-"`
	Deaths     int           `json:"deaths"`
	Births     int           `json:"births"`
}

// NewSimulation wires the phases:
// Timeflow → Production → Ordering → Exchange → OrderCancellation →
// Consumption → Maturity → Death → InheritanceLottery →
// WealthRedistribution → TurnSummary → Cleanup.
func NewSimulation(w *world.World, t *world.Turn, spawner *agents.Spawner, opts Options) *Simulation {
	s := &Simulation{World: w, Turn: t, Spawner: spawner}
	s.before = []Phase{
		NewTimeflow(w),
		NewProduction(w),
	}
	s.market = []Phase{
		market.NewOrdering(w),
		market.NewExchange(w),
		market.NewOrderCancellation(w),
	}
	s.after = []Phase{
		NewConsumption(w),
		NewMaturity(w, spawner, &s.Stats),
		NewDeath(w, &s.Stats),
		NewInheritanceLottery(w),
		NewWealthRedistribution(w, opts.TaxRate),
		NewTurnSummary(w, opts.Ticker, opts.Recorder),
		NewCleanup(w),
	}
	s.updateStats()
	return s
}

// Phases returns every phase in the order it runs.
func (s *Simulation) Phases() []Phase {
	all := append([]Phase(nil), s.before...)
	all = append(all, s.market...)
	return append(all, s.after...)
}

// Step runs one complete turn. Any error is fatal for the run.
func (s *Simulation) Step(turn uint64) error {
	if err := s.run(s.before); err != nil {
		return err
	}

	opening := market.TotalMoney(s.World)
	if err := s.run(s.market); err != nil {
		return err
	}
	if err := market.CheckConserved("market", opening, market.TotalMoney(s.World)); err != nil {
		slog.Error("money conservation violated", "day", s.Turn.Day, "error", err)
		return err
	}

	if err := s.run(s.after); err != nil {
		return err
	}
	s.updateStats()
	slog.Debug("turn complete", "turn", turn, "day", s.Turn.Day, "population", s.Stats.Population)
	return nil
}

func (s *Simulation) run(phases []Phase) error {
	for _, p := range phases {
		if err := p.Process(s.Turn); err != nil {
			return fmt.Errorf("%s on %s: %w", p.Name(), s.Turn.Day, err)
		}
	}
	return nil
}

func (s *Simulation) updateStats() {
	s.Stats.Population = s.World.Consumers.Len()
	s.Stats.TotalMoney = market.TotalMoney(s.World)
}
