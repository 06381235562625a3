// Production and consumption: the physical side of a turn.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// Production converts inputs into outputs while inputs last and outputs fit.
type Production struct {
	World *world.World
}

// NewProduction creates the production phase.
func NewProduction(w *world.World) *Production { return &Production{World: w} }

// Name identifies the phase.
func (p *Production) Name() string { return "production" }

// Process runs every producer.
func (p *Production) Process(t *world.Turn) error {
	slog.Debug("production phase started", "day", t.Day)
	for _, a := range p.World.WithProducer() {
		in, out := a.Producer.Needs, a.Producer.Gives
		for a.Storage.HasAtLeast(in) && a.Storage.WillFit(out) {
			if err := a.Storage.Remove(in); err != nil {
				return fmt.Errorf("%s: %w", a.Name, err)
			}
			if err := a.Storage.Add(out); err != nil {
				return fmt.Errorf("%s: %w", a.Name, err)
			}
			slog.Debug("produced", "producer", a.Name, "output", out)
			if in.IsNothing() {
				// Output made from nothing is made once per turn.
				break
			}
		}
		if !a.Storage.WillFit(out) {
			slog.Debug("no place to hold output", "producer", a.Name, "output", out)
		}
		if !a.Storage.HasAtLeast(in) {
			slog.Debug("missing input to start production", "producer", a.Name, "input", in)
		}
	}
	return nil
}

// Consumption removes what consumers eat. Going without food marks the
// consumer hungry; the death phase deals with the hungry.
type Consumption struct {
	World *world.World
}

// NewConsumption creates the consumption phase.
func NewConsumption(w *world.World) *Consumption { return &Consumption{World: w} }

// Name identifies the phase.
func (c *Consumption) Name() string { return "consumption" }

// Process feeds every consumer.
func (c *Consumption) Process(t *world.Turn) error {
	slog.Debug("consumption phase started", "day", t.Day)
	for _, a := range c.World.WithConsumer() {
		for _, pile := range a.Consumer.Needs {
			if a.Storage.HasAtLeast(pile) {
				if err := a.Storage.Remove(pile); err != nil {
					return fmt.Errorf("%s: %w", a.Name, err)
				}
				continue
			}
			slog.Debug("consumer went without", "consumer", a.Name, "pile", pile)
			if pile.Resource == economy.ResourceFood {
				c.World.Hungry.Set(a.ID, world.Marker{})
			}
		}
	}
	return nil
}
