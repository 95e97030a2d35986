// Package api provides the HTTP handlers for running simulations and
// querying archived run reports, plus the WebSocket hub that announces
// completed runs.
//
// All monetary values use shopspring/decimal, never float64 for money.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/metrics"
	"github.com/atmx/fib-dozens/internal/model"
	"github.com/atmx/fib-dozens/internal/params"
	"github.com/atmx/fib-dozens/internal/simulation"
	"github.com/atmx/fib-dozens/internal/store"
)

// Service handles simulation requests. Each request owns its session, so
// handlers need no locking of their own.
type Service struct {
	store     store.Store
	validator *params.Validator
	opts      simulation.Options
	wsHub     *WSHub // optional
}

// NewService creates a simulation service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, v *params.Validator, opts simulation.Options, hub *WSHub) *Service {
	if v == nil {
		v = params.NewValidator(opts.MaxIterations)
	}
	return &Service{
		store:     st,
		validator: v,
		opts:      opts,
		wsHub:     hub,
	}
}

// SimulationRequest is the JSON body for POST /simulations.
type SimulationRequest struct {
	StartBalance decimal.Decimal `json:"start_balance"`
	UnitBet      decimal.Decimal `json:"unit_bet"`
	MaxBet       decimal.Decimal `json:"max_bet"` // 0 or omitted = no ceiling
	TargetProfit decimal.Decimal `json:"target_profit"`
	MaxSpins     *int            `json:"max_spins,omitempty"`
}

func (req SimulationRequest) params() model.Params {
	return model.Params{
		StartBalance: req.StartBalance,
		UnitBet:      req.UnitBet,
		MaxBet:       req.MaxBet,
		TargetProfit: req.TargetProfit,
		MaxSpins:     req.MaxSpins,
	}
}

// CreateSimulation handles POST /api/v1/simulations
// Runs a session to completion, archives the report and returns it with
// every spin row.
func (s *Service) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p := req.params()
	if err := s.validator.Validate(p); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	started := time.Now()

	res, err := simulation.Run(ctx, p, s.opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("simulation aborted", "err", err)
			writeError(w, "simulation aborted", http.StatusServiceUnavailable)
			return
		}
		slog.Error("simulation failed", "err", err)
		writeError(w, "simulation failed", http.StatusInternalServerError)
		return
	}
	elapsed := time.Since(started)

	run := &model.Run{
		ID:           uuid.New().String(),
		Params:       p,
		Outcome:      res.Outcome,
		FinalBalance: res.Snapshot.Balance,
		Summary:      res.Summary,
		Spins:        res.Spins,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.SaveRun(ctx, run); err != nil {
		slog.Error("failed to archive run", "run_id", run.ID, "err", err)
		writeError(w, "failed to archive run", http.StatusInternalServerError)
		return
	}

	metrics.ObserveSimulation(run.Outcome, run.Summary.Luck, run.Summary.TotalSpins, run.Summary.LargestFibIndex, elapsed)

	slog.Info("simulation completed",
		"run_id", run.ID,
		"outcome", run.Outcome,
		"spins", run.Summary.TotalSpins,
		"final_balance", run.FinalBalance.String(),
		"largest_fib_index", run.Summary.LargestFibIndex,
		"luck", run.Summary.Luck,
		"elapsed", elapsed,
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(RunMessage{
			Type:         "simulation_completed",
			RunID:        run.ID,
			Outcome:      run.Outcome,
			TotalSpins:   run.Summary.TotalSpins,
			FinalBalance: run.FinalBalance.String(),
			Profit:       run.Summary.Result.Amount.String(),
			Luck:         run.Summary.Luck,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(run)
}

// ListSimulations handles GET /api/v1/simulations
func (s *Service) ListSimulations(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		slog.Error("failed to list runs", "err", err)
		writeError(w, "failed to list simulations", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}

	// Optional filter by ?outcome=<outcome>.
	if outcome := r.URL.Query().Get("outcome"); outcome != "" {
		filtered := []model.Run{}
		for _, run := range runs {
			if run.Outcome == outcome {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetSimulation handles GET /api/v1/simulations/{runID}
func (s *Service) GetSimulation(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetSpins handles GET /api/v1/simulations/{runID}/spins
func (s *Service) GetSpins(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.GetSpins(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if rows == nil {
		rows = []model.SpinResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// GetProfit handles GET /api/v1/simulations/{runID}/profit
// Returns the profit-over-time series used to draw the profit chart.
func (s *Service) GetProfit(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.GetSpins(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(simulation.ProfitSeries(rows))
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "simulation not found", http.StatusNotFound)
		return
	}
	slog.Error("store read failed", "err", err)
	writeError(w, "failed to load simulation", http.StatusInternalServerError)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
