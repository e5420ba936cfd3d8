package journal

import (
	"time"

	"github.com/valuecell/trader/backtest"
)

// FromReport flattens a backtest report into journal rows under one run id.
func FromReport(runID string, created time.Time, rep *backtest.Report, configJSON []byte) (RunRecord, []TradeRecord, []EquityRecord) {
	run := RunRecord{
		RunID:          runID,
		Created:        created,
		Start:          rep.StartTime,
		End:            rep.EndTime,
		InitialCapital: rep.InitialCapital,
		FinalCapital:   rep.FinalCapital,
		TotalReturn:    rep.TotalReturn,
		Sharpe:         rep.Sharpe,
		MaxDrawdown:    rep.MaxDrawdown,
		WinRate:        rep.WinRate,
		NumTrades:      rep.NumTrades,
		ConfigJSON:     configJSON,
	}

	trades := make([]TradeRecord, 0, len(rep.Trades))
	for _, t := range rep.Trades {
		trades = append(trades, TradeRecord{
			TradeID:     t.TradeID,
			RunID:       runID,
			Ticker:      t.Ticker,
			EntryTime:   t.EntryTime,
			ExitTime:    t.ExitTime,
			EntryPrice:  t.EntryPrice,
			ExitPrice:   t.ExitPrice,
			Quantity:    t.Quantity,
			PnL:         t.PnL,
			PnLPct:      t.PnLPct,
			ExitReason:  t.ExitReason,
			SFinalEntry: t.SFinalEntry,
		})
	}

	equity := make([]EquityRecord, 0, len(rep.EquityCurve))
	for _, p := range rep.EquityCurve {
		equity = append(equity, EquityRecord{RunID: runID, Time: p.Timestamp, Equity: p.Equity})
	}

	return run, trades, equity
}
