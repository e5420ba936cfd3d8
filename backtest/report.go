package backtest

import (
	"math"
	"time"
)

// Trade is a closed-trade record, created when a position is fully exited and
// immutable afterward.
type Trade struct {
	TradeID     string    `json:"trade_id"`
	Ticker      string    `json:"ticker"`
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	Quantity    float64   `json:"quantity"`
	PnL         float64   `json:"pnl"`
	PnLPct      float64   `json:"pnl_pct"`
	ExitReason  string    `json:"exit_reason"`
	SFinalEntry float64   `json:"s_final_entry"`
}

// EquityPoint is one mark-to-market observation on the equity curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// Report is the aggregate result of one backtest run. Percent-valued fields
// (TotalReturn, CAGR, MaxDrawdown, WinRate, PnLPct on trades) are expressed in
// percent, not fractions.
type Report struct {
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	InitialCapital float64       `json:"initial_capital"`
	FinalCapital   float64       `json:"final_capital"`
	TotalReturn    float64       `json:"total_return"`
	CAGR           float64       `json:"cagr"`
	Sharpe         float64       `json:"sharpe"`
	Sortino        float64       `json:"sortino"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	WinRate        float64       `json:"win_rate"`
	AvgWin         float64       `json:"avg_win"`
	AvgLoss        float64       `json:"avg_loss"`
	NumTrades      int           `json:"num_trades"`
	Turnover       int           `json:"turnover"`
	Trades         []Trade       `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}

// emptyReport is the all-zero report for a window with no data. Final capital
// equals initial: nothing happened.
func emptyReport(initialCapital float64, start, end time.Time) *Report {
	return &Report{
		StartTime:      start,
		EndTime:        end,
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		Trades:         []Trade{},
		EquityCurve:    []EquityPoint{},
	}
}

// annualization factor for per-step return ratios.
const tradingDaysPerYear = 252

func calculateReport(initialCapital float64, curve []EquityPoint, trades []Trade, start, end time.Time) *Report {
	if len(curve) == 0 {
		return emptyReport(initialCapital, start, end)
	}

	finalCapital := curve[len(curve)-1].Equity
	totalReturn := (finalCapital/initialCapital - 1) * 100

	days := int(end.Sub(start).Hours() / 24)
	years := float64(days) / 365.25
	cagr := 0.0
	if years > 0 && finalCapital > 0 {
		cagr = (math.Pow(finalCapital/initialCapital, 1/years) - 1) * 100
	}

	// Per-step returns off the equity curve.
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}

	mean := meanOf(returns)
	std := sampleStd(returns, mean)

	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std * math.Sqrt(tradingDaysPerYear)
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideStd := sampleStd(downside, meanOf(downside))

	sortino := 0.0
	if len(downside) > 0 && downsideStd > 0 {
		sortino = mean / downsideStd * math.Sqrt(tradingDaysPerYear)
	}

	// Max drawdown against the running equity peak.
	maxDD := 0.0
	peak := curve[0].Equity
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (p.Equity - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	winRate, avgWin, avgLoss := 0.0, 0.0, 0.0
	if len(trades) > 0 {
		var wins, losses []float64
		for _, t := range trades {
			if t.PnL > 0 {
				wins = append(wins, t.PnL)
			} else if t.PnL < 0 {
				losses = append(losses, t.PnL)
			}
		}
		winRate = float64(len(wins)) / float64(len(trades)) * 100
		avgWin = meanOf(wins)
		avgLoss = meanOf(losses)
	}

	return &Report{
		StartTime:      start,
		EndTime:        end,
		InitialCapital: initialCapital,
		FinalCapital:   finalCapital,
		TotalReturn:    totalReturn,
		CAGR:           cagr,
		Sharpe:         sharpe,
		Sortino:        sortino,
		MaxDrawdown:    maxDD * 100,
		WinRate:        winRate,
		AvgWin:         avgWin,
		AvgLoss:        avgLoss,
		NumTrades:      len(trades),
		Turnover:       len(trades),
		Trades:         trades,
		EquityCurve:    curve,
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
