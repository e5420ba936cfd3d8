// Package journal persists backtest runs so results can be compared across
// parameter changes. One run row per backtest, with its trades and equity
// curve keyed by run id.
package journal

import (
	"time"
)

// RunRecord summarizes one completed backtest.
type RunRecord struct {
	RunID          string
	Created        time.Time
	Start          time.Time
	End            time.Time
	InitialCapital float64
	FinalCapital   float64
	TotalReturn    float64
	Sharpe         float64
	MaxDrawdown    float64
	WinRate        float64
	NumTrades      int
	ConfigJSON     []byte
}

// TradeRecord is one closed trade within a run.
type TradeRecord struct {
	TradeID     string
	RunID       string
	Ticker      string
	EntryTime   time.Time
	ExitTime    time.Time
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	PnL         float64
	PnLPct      float64
	ExitReason  string
	SFinalEntry float64
}

// EquityRecord is one equity-curve point within a run.
type EquityRecord struct {
	RunID  string
	Time   time.Time
	Equity float64
}

type Journal interface {
	RecordRun(RunRecord, []TradeRecord, []EquityRecord) error
	GetRun(runID string) (RunRecord, error)
	ListRuns() ([]RunRecord, error)
	ListTradesByRun(runID string) ([]TradeRecord, error)
	ListEquityByRun(runID string) ([]EquityRecord, error)
	Close() error
}
