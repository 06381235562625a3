package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/market"
	"github.com/talgya/mini-market/internal/stats"
	"github.com/talgya/mini-market/internal/world"
)

const richestShown = 5

// TurnSummary reports the day: market stats, money distribution and
// population. It also feeds the ticker and the recorder.
type TurnSummary struct {
	World    *world.World
	Ticker   *stats.Ticker
	Recorder Recorder
}

// NewTurnSummary creates the summary phase. Ticker and recorder are optional.
func NewTurnSummary(w *world.World, ticker *stats.Ticker, rec Recorder) *TurnSummary {
	return &TurnSummary{World: w, Ticker: ticker, Recorder: rec}
}

// Name identifies the phase.
func (s *TurnSummary) Name() string { return "turn summary" }

// Process logs and records the day.
func (s *TurnSummary) Process(t *world.Turn) error {
	snapshots := t.History.Day(t.Day)
	for _, snap := range snapshots {
		slog.Debug("market", "day", t.Day, "resource", snap.Resource,
			"buy", snap.Buy, "sell", snap.Sell, "transactions", snap.Transactions)
	}

	total := market.TotalMoney(s.World)
	population := s.World.Consumers.Len()
	richest := Richest(s.World, richestShown)
	var top economy.Money
	for _, a := range richest {
		top = top.Add(a.Wallet.Balance())
	}

	slog.Info("turn summary",
		"day", t.Day,
		"population", population,
		"money", humanize.Comma(total.Creds())+"cr",
		"richest", names(richest),
		"richest_share", share(top, total),
	)

	if s.Ticker != nil {
		if err := s.Ticker.Log(t.History, t.Day); err != nil {
			return fmt.Errorf("ticker: %w", err)
		}
	}
	if s.Recorder != nil {
		if err := s.Recorder.RecordDay(t.Day, snapshots, total, population); err != nil {
			return fmt.Errorf("record: %w", err)
		}
	}
	return nil
}

// Richest returns up to n living holders by balance, richest first.
// Ties keep entity order.
func Richest(w *world.World, n int) []world.Agent {
	var holders []world.Agent
	for _, a := range w.Holders() {
		if !w.IsTerminated(a.ID) && !w.Pools.Has(a.ID) {
			holders = append(holders, a)
		}
	}
	sort.SliceStable(holders, func(i, j int) bool {
		return holders[j].Wallet.Balance().Less(holders[i].Wallet.Balance())
	})
	if len(holders) > n {
		holders = holders[:n]
	}
	return holders
}

func names(agents []world.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = fmt.Sprintf("%s (%s)", a.Name, a.Wallet.Balance())
	}
	return out
}

func share(part, total economy.Money) string {
	if total.IsZero() {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(part.Creds())*100/float64(total.Creds()))
}
