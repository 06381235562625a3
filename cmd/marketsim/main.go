// Command marketsim runs the turn-based market economy simulation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/api"
	"github.com/talgya/mini-market/internal/config"
	"github.com/talgya/mini-market/internal/engine"
	"github.com/talgya/mini-market/internal/entropy"
	"github.com/talgya/mini-market/internal/logging"
	"github.com/talgya/mini-market/internal/market"
	"github.com/talgya/mini-market/internal/persistence"
	"github.com/talgya/mini-market/internal/stats"
	"github.com/talgya/mini-market/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	turns := flag.Uint64("turns", 0, "override the number of turns")
	seed := flag.Int64("seed", 0, "override the random seed")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *turns > 0 {
		cfg.Turns = *turns
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	logger, logFile := logging.New(cfg.Logging)
	slog.SetDefault(logger)
	defer logFile.Close()

	if err := run(cfg); err != nil {
		slog.Error("simulation failed", "error", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	src, seed := entropy.New(cfg.Seed)
	slog.Info("market simulation starting", "seed", seed, "turns", cfg.Turns, "tax_rate", cfg.TaxRate)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DatabasePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
		var err error
		if db, err = persistence.Open(cfg.DatabasePath); err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.StartRun(seed); err != nil {
			return err
		}
		slog.Info("database opened", "path", cfg.DatabasePath)
	}

	// ── Ticker ────────────────────────────────────────────────────────
	var ticker *stats.Ticker
	if cfg.TickerPath != "" {
		f, err := os.Create(cfg.TickerPath)
		if err != nil {
			return fmt.Errorf("create ticker: %w", err)
		}
		defer f.Close()
		ticker = stats.NewTicker(f)
	}

	// ── World ─────────────────────────────────────────────────────────
	w := world.New()
	spawner := agents.NewSpawner(w, cfg.Population, seed)
	created := spawner.SpawnPopulation()
	slog.Info("world ready",
		"entities", created,
		"people", cfg.Population.People,
		"money", humanize.Comma(market.TotalMoney(w).Creds())+"cr",
	)

	opts := engine.Options{TaxRate: cfg.TaxRate, Ticker: ticker}
	if db != nil {
		opts.Recorder = db
	}
	sim := engine.NewSimulation(w, world.NewTurn(src), spawner, opts)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Port > 0 && db != nil {
		apiServer := &api.Server{DB: db, Port: cfg.API.Port, RateLimit: cfg.API.RateLimit}
		apiServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(ctx); err != nil {
				slog.Warn("API shutdown", "error", err)
			}
		}()
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine()
	eng.MaxTurns = cfg.Turns
	eng.Interval = cfg.Interval
	eng.OnTurn = sim.Step

	err := eng.Run(ctx)
	slog.Info("simulation stopped",
		"turns", eng.Turn,
		"population", sim.Stats.Population,
		"births", sim.Stats.Births,
		"deaths", sim.Stats.Deaths,
		"money", humanize.Comma(sim.Stats.TotalMoney.Creds())+"cr",
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
