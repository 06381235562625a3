// Population dynamics: clones maturing, hunger deaths and the inheritance
// lottery.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// Maturity turns a grown human held in storage into a new person.
// At most one per holder per turn.
type Maturity struct {
	World   *world.World
	Spawner *agents.Spawner
	stats   *SimStats
}

// NewMaturity creates the maturity phase.
func NewMaturity(w *world.World, sp *agents.Spawner, st *SimStats) *Maturity {
	return &Maturity{World: w, Spawner: sp, stats: st}
}

// Name identifies the phase.
func (m *Maturity) Name() string { return "maturity" }

// Process births clones.
func (m *Maturity) Process(t *world.Turn) error {
	if m.Spawner == nil {
		return nil
	}
	for _, a := range m.World.Holders() {
		if !a.Storage.HasOne(economy.ResourceGrownHuman) {
			continue
		}
		if err := a.Storage.RemoveOne(economy.ResourceGrownHuman); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		id := m.Spawner.SpawnClone()
		if m.stats != nil {
			m.stats.Births++
		}
		slog.Info("grown human created", "day", t.Day, "by", a.Name, "entity", id)
	}
	return nil
}

// pool returns the inheritance pool, if the world has one.
func pool(w *world.World) (world.Agent, bool) {
	for _, id := range w.Pools.IDs() {
		if a, ok := w.Agent(id); ok && a.Wallet != nil && a.Storage != nil {
			return a, true
		}
	}
	return world.Agent{}, false
}

// Death kills hungry agents. Their soul, goods and money go to the
// inheritance pool and the entity is marked for cleanup.
type Death struct {
	World *world.World
	stats *SimStats
}

// NewDeath creates the death phase.
func NewDeath(w *world.World, st *SimStats) *Death { return &Death{World: w, stats: st} }

// Name identifies the phase.
func (d *Death) Name() string { return "death" }

// Process settles the estates of the hungry.
func (d *Death) Process(t *world.Turn) error {
	estate, ok := pool(d.World)
	if !ok {
		if d.World.Hungry.Len() > 0 {
			slog.Warn("no inheritance pool, the hungry survive", "hungry", d.World.Hungry.Len())
		}
		return nil
	}
	for _, id := range d.World.Hungry.IDs() {
		a, ok := d.World.Agent(id)
		if !ok || a.Wallet == nil || a.Storage == nil || d.World.IsTerminated(id) {
			continue
		}
		slog.Warn("died of hunger", "day", t.Day, "agent", a.Name)
		if err := a.Storage.AddOne(economy.ResourceSoul); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		estate.Storage.AddAll(a.Storage)
		estate.Wallet.Deposit(a.Wallet.Empty())
		d.World.Terminate(id)
		if d.stats != nil {
			d.stats.Deaths++
		}
	}
	slog.Debug("inheritance pool contents", "money", estate.Wallet.Balance(), "storage", estate.Storage)
	return nil
}

// InheritanceLottery hands half of the pool to a random holder each turn.
// A dead winner forfeits; the money stays in the pool.
type InheritanceLottery struct {
	World *world.World
}

// NewInheritanceLottery creates the lottery phase.
func NewInheritanceLottery(w *world.World) *InheritanceLottery { return &InheritanceLottery{World: w} }

// Name identifies the phase.
func (l *InheritanceLottery) Name() string { return "inheritance lottery" }

// Process draws the winner.
func (l *InheritanceLottery) Process(t *world.Turn) error {
	estate, ok := pool(l.World)
	if !ok || estate.Wallet.Balance().IsZero() {
		return nil
	}
	holders := l.World.Holders()
	if len(holders) == 0 {
		return nil
	}
	winner := holders[t.Rand.Intn(len(holders))]
	half, _ := estate.Wallet.Balance().Split(t.Rand)
	if l.World.IsTerminated(winner.ID) {
		slog.Debug("lottery winner already dead", "agent", winner.Name, "prize", half)
		return nil
	}
	if err := estate.Wallet.Withdraw(half); err != nil {
		return err
	}
	winner.Wallet.Deposit(half)
	slog.Debug("inheritance lottery won", "agent", winner.Name, "prize", half, "pool_left", estate.Wallet.Balance())
	return nil
}
