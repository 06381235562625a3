// Package engine provides the turn loop and the non-market phases of the
// simulation, and wires every phase in its fixed order.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// Engine drives the simulation forward one turn at a time.
type Engine struct {
	Turn     uint64        // Last completed turn (monotonic)
	MaxTurns uint64        // Stop after this many turns; 0 runs until cancelled
	Interval time.Duration // Pause between turns; 0 runs flat out

	// OnTurn runs one full turn. An error stops the engine.
	OnTurn func(turn uint64) error
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{}
}

// Run advances turns until ctx is cancelled, MaxTurns is reached or a turn
// fails. The failing turn's error is returned.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "turn", e.Turn, "max_turns", e.MaxTurns, "interval", e.Interval)

	for e.MaxTurns == 0 || e.Turn < e.MaxTurns {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "turn", e.Turn, "reason", ctx.Err())
			return nil
		default:
		}

		start := time.Now()
		if err := e.step(); err != nil {
			slog.Error("turn failed, stopping", "turn", e.Turn+1, "error", err)
			return err
		}

		// Sleep for the remainder of the interval.
		if elapsed := time.Since(start); elapsed < e.Interval {
			select {
			case <-ctx.Done():
			case <-time.After(e.Interval - elapsed):
			}
		}
	}

	slog.Info("simulation engine finished", "turn", e.Turn)
	return nil
}

// step runs one turn.
func (e *Engine) step() error {
	next := e.Turn + 1
	if e.OnTurn != nil {
		if err := e.OnTurn(next); err != nil {
			return err
		}
	}
	e.Turn = next
	return nil
}
