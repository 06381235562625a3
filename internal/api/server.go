// Package api provides the read-only HTTP API over the recorded market
// history. Every endpoint reads SQLite; the running simulation is never
// touched from a request goroutine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/persistence"
)

const (
	defaultLimit = 30
	maxLimit     = 1000
)

// Server serves market history over HTTP.
type Server struct {
	DB        *persistence.DB
	Port      int
	RateLimit int // Requests per client per minute, 0 = unlimited

	srv     *http.Server
	limiter *RateLimiter
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/money", s.handleMoney)

	var h http.Handler = mux
	if s.RateLimit > 0 {
		if s.limiter == nil {
			s.limiter = NewRateLimiter(s.RateLimit, time.Minute)
		}
		h = RateLimitMiddleware(s.limiter, h)
	}
	return corsMiddleware(h)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "rate_limit", s.RateLimit)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet, http.MethodHead:
			next.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

type statusResponse struct {
	Run        persistence.Run `json:"run"`
	Day        uint64          `json:"day"`
	TotalMoney int64           `json:"total_money"`
	Population int             `json:"population"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.CurrentRun()
	if err != nil {
		http.Error(w, "no run recorded", http.StatusServiceUnavailable)
		return
	}
	resp := statusResponse{Run: run}
	if rows, err := s.DB.Money(1); err == nil && len(rows) == 1 {
		resp.Day = rows[0].Day
		resp.TotalMoney = rows[0].Total
		resp.Population = rows[0].Population
	}
	writeJSON(w, resp)
}

// priceResponse flattens nullable prices; missing prices are omitted.
type priceResponse struct {
	Day           uint64 `json:"day"`
	Resource      string `json:"resource"`
	BuyOrders     int    `json:"buy_orders"`
	SellOrders    int    `json:"sell_orders"`
	EligibleBuys  int    `json:"eligible_buys"`
	EligibleSells int    `json:"eligible_sells"`
	Transactions  int    `json:"transactions"`
	Min           *int64 `json:"min,omitempty"`
	Median        *int64 `json:"median,omitempty"`
	Max           *int64 `json:"max,omitempty"`
	SellMedian    *int64 `json:"sell_median,omitempty"`
	BuyMedian     *int64 `json:"buy_median,omitempty"`
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("resource")
	res, ok := economy.ParseResource(strings.ToUpper(name))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown resource %q", name), http.StatusBadRequest)
		return
	}

	rows, err := s.DB.Prices(res, queryLimit(r))
	if err != nil {
		slog.Error("price history query failed", "resource", res, "error", err)
		// Return empty array instead of error; the run may not have data yet.
		writeJSON(w, []priceResponse{})
		return
	}
	out := make([]priceResponse, len(rows))
	for i, row := range rows {
		out[i] = priceResponse{
			Day:           row.Day,
			Resource:      row.Resource,
			BuyOrders:     row.BuyOrders,
			SellOrders:    row.SellOrders,
			EligibleBuys:  row.EligibleBuys,
			EligibleSells: row.EligibleSells,
			Transactions:  row.Transactions,
			Min:           nullable(row.MinPrice.Int64, row.MinPrice.Valid),
			Median:        nullable(row.MedianPrice.Int64, row.MedianPrice.Valid),
			Max:           nullable(row.MaxPrice.Int64, row.MaxPrice.Valid),
			SellMedian:    nullable(row.SellMedian.Int64, row.SellMedian.Valid),
			BuyMedian:     nullable(row.BuyMedian.Int64, row.BuyMedian.Valid),
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleMoney(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.Money(queryLimit(r))
	if err != nil {
		slog.Error("money history query failed", "error", err)
		writeJSON(w, []persistence.MoneyRow{})
		return
	}
	if rows == nil {
		rows = []persistence.MoneyRow{}
	}
	writeJSON(w, rows)
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= maxLimit {
			return v
		}
	}
	return defaultLimit
}

func nullable(v int64, valid bool) *int64 {
	if !valid {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
