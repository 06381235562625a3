package engine

import (
	"log/slog"

	"github.com/talgya/mini-market/internal/world"
)

// Cleanup removes terminated entities, clears hunger marks and drops market
// history the next day no longer needs.
type Cleanup struct {
	World *world.World
}

// NewCleanup creates the cleanup phase.
func NewCleanup(w *world.World) *Cleanup { return &Cleanup{World: w} }

// Name identifies the phase.
func (c *Cleanup) Name() string { return "cleanup" }

// Process ends the day.
func (c *Cleanup) Process(t *world.Turn) error {
	removed := c.World.Terminated.IDs()
	for _, id := range removed {
		c.World.Remove(id)
	}
	for _, id := range c.World.Hungry.IDs() {
		c.World.Hungry.Delete(id)
	}
	t.History.Forget(t.Day)
	slog.Debug("cleanup", "day", t.Day, "removed", len(removed), "entities", c.World.Len())
	return nil
}
