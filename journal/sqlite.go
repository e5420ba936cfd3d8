package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the Journal implementation backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordRun writes the run summary with its trades and equity curve in one
// transaction.
func (j *SQLite) RecordRun(run RunRecord, trades []TradeRecord, equity []EquityRecord) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO runs
		(run_id, created, start, end, initial_capital, final_capital,
		 total_return, sharpe, max_drawdown, win_rate, num_trades, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.Start, run.End,
		run.InitialCapital, run.FinalCapital, run.TotalReturn,
		run.Sharpe, run.MaxDrawdown, run.WinRate, run.NumTrades, run.ConfigJSON,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, t := range trades {
		if _, err := tx.Exec(`
			INSERT INTO trades
			(trade_id, run_id, ticker, entry_time, exit_time, entry_price,
			 exit_price, quantity, pnl, pnl_pct, exit_reason, s_final_entry)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TradeID, run.RunID, t.Ticker, t.EntryTime, t.ExitTime,
			t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.PnLPct,
			t.ExitReason, t.SFinalEntry,
		); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	for _, e := range equity {
		if _, err := tx.Exec(`
			INSERT INTO equity (run_id, time, equity) VALUES (?, ?, ?)`,
			run.RunID, e.Time, e.Equity,
		); err != nil {
			return fmt.Errorf("insert equity point: %w", err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
