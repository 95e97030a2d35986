package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/model"
)

// spinBatchSize is the number of spin rows sent per pgx batch.
const spinBatchSize = 1000

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id            TEXT PRIMARY KEY,
		start_balance NUMERIC NOT NULL,
		unit_bet      NUMERIC NOT NULL,
		max_bet       NUMERIC NOT NULL DEFAULT 0,
		target_profit NUMERIC NOT NULL,
		max_spins     INTEGER,
		outcome       TEXT NOT NULL,
		final_balance NUMERIC NOT NULL,
		summary       JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS spin_results (
		run_id         TEXT NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
		spin           INTEGER NOT NULL,
		balance_pre    NUMERIC NOT NULL,
		cycle          INTEGER NOT NULL,
		fib_index      INTEGER NOT NULL,
		fib_multiplier BIGINT NOT NULL,
		bet            NUMERIC NOT NULL,
		number         SMALLINT NOT NULL,
		won            BOOLEAN NOT NULL,
		winnings       NUMERIC NOT NULL,
		balance_post   NUMERIC NOT NULL,
		profit         NUMERIC NOT NULL,
		profit_pct     NUMERIC NOT NULL,
		wins           INTEGER NOT NULL,
		losses         INTEGER NOT NULL,
		win_pct        NUMERIC NOT NULL,
		loss_pct       NUMERIC NOT NULL,
		PRIMARY KEY (run_id, spin)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_simulation_runs_created_at ON simulation_runs (created_at DESC)`,
}

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun writes the run and its spin rows in one transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p := run.Params
	_, err = tx.Exec(ctx,
		`INSERT INTO simulation_runs (id, start_balance, unit_bet, max_bet, target_profit, max_spins,
		                              outcome, final_balance, summary, created_at)
		 VALUES ($1, $2::NUMERIC, $3::NUMERIC, $4::NUMERIC, $5::NUMERIC, $6, $7, $8::NUMERIC, $9::JSONB, $10)`,
		run.ID, p.StartBalance.String(), p.UnitBet.String(), p.MaxBet.String(), p.TargetProfit.String(),
		p.MaxSpins, run.Outcome, run.FinalBalance.String(), string(summary), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for start := 0; start < len(run.Spins); start += spinBatchSize {
		end := min(start+spinBatchSize, len(run.Spins))
		batch := &pgx.Batch{}
		for _, r := range run.Spins[start:end] {
			batch.Queue(
				`INSERT INTO spin_results (run_id, spin, balance_pre, cycle, fib_index, fib_multiplier, bet,
				                           number, won, winnings, balance_post, profit, profit_pct,
				                           wins, losses, win_pct, loss_pct)
				 VALUES ($1, $2, $3::NUMERIC, $4, $5, $6, $7::NUMERIC, $8, $9, $10::NUMERIC, $11::NUMERIC,
				         $12::NUMERIC, $13::NUMERIC, $14, $15, $16::NUMERIC, $17::NUMERIC)`,
				run.ID, r.Spin, r.BalancePreSpin.String(), r.Cycle, r.FibIndex, r.FibMultiplier, r.Bet.String(),
				r.Number, r.Won, r.Winnings.String(), r.BalancePost.String(), r.Profit.String(), r.ProfitPct.String(),
				r.Wins, r.Losses, r.WinPct.String(), r.LossPct.String(),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert spins for run %s: %w", run.ID, err)
		}
	}

	return tx.Commit(ctx)
}

const selectRun = `SELECT id, start_balance::TEXT, unit_bet::TEXT, max_bet::TEXT, target_profit::TEXT,
                          max_spins, outcome, final_balance::TEXT, summary::TEXT, created_at
                   FROM simulation_runs`

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, selectRun+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context) ([]model.Run, error) {
	rows, err := s.pool.Query(ctx, selectRun+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) GetSpins(ctx context.Context, id string) ([]model.SpinResult, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM simulation_runs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("get spins %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT spin, balance_pre::TEXT, cycle, fib_index, fib_multiplier, bet::TEXT, number, won,
		        winnings::TEXT, balance_post::TEXT, profit::TEXT, profit_pct::TEXT,
		        wins, losses, win_pct::TEXT, loss_pct::TEXT
		 FROM spin_results WHERE run_id = $1 ORDER BY spin`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSpins(rows)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var r model.Run
	var startS, unitS, maxBetS, targetS, finalS, summaryS string

	if err := row.Scan(&r.ID, &startS, &unitS, &maxBetS, &targetS,
		&r.Params.MaxSpins, &r.Outcome, &finalS, &summaryS, &r.CreatedAt); err != nil {
		return nil, err
	}

	r.Params.StartBalance = dec(startS)
	r.Params.UnitBet = dec(unitS)
	r.Params.MaxBet = dec(maxBetS)
	r.Params.TargetProfit = dec(targetS)
	r.FinalBalance = dec(finalS)
	if err := json.Unmarshal([]byte(summaryS), &r.Summary); err != nil {
		return nil, fmt.Errorf("decode summary of run %s: %w", r.ID, err)
	}
	return &r, nil
}

// scanSpins reads pgx rows into SpinResult slices.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanSpins(rows pgxRows) ([]model.SpinResult, error) {
	spins := []model.SpinResult{}
	for rows.Next() {
		var r model.SpinResult
		var preS, betS, winningsS, postS, profitS, profitPctS, winPctS, lossPctS string

		if err := rows.Scan(&r.Spin, &preS, &r.Cycle, &r.FibIndex, &r.FibMultiplier, &betS, &r.Number, &r.Won,
			&winningsS, &postS, &profitS, &profitPctS,
			&r.Wins, &r.Losses, &winPctS, &lossPctS); err != nil {
			return nil, err
		}

		r.BalancePreSpin = dec(preS)
		r.Bet = dec(betS)
		r.Winnings = dec(winningsS)
		r.BalancePost = dec(postS)
		r.Profit = dec(profitS)
		r.ProfitPct = dec(profitPctS)
		r.WinPct = dec(winPctS)
		r.LossPct = dec(lossPctS)

		spins = append(spins, r)
	}
	return spins, rows.Err()
}

func dec(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}
