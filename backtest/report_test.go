package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curveOf(start time.Time, step time.Duration, equities ...float64) []EquityPoint {
	curve := make([]EquityPoint, len(equities))
	for i, eq := range equities {
		curve[i] = EquityPoint{Timestamp: start.Add(time.Duration(i) * step), Equity: eq}
	}
	return curve
}

func TestReportEmptyWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(30 * 24 * time.Hour)

	rep := calculateReport(10000, nil, nil, start, end)
	require.NotNil(t, rep)

	assert.Equal(t, 10000.0, rep.InitialCapital)
	assert.Equal(t, 10000.0, rep.FinalCapital)
	assert.Zero(t, rep.TotalReturn)
	assert.Zero(t, rep.Sharpe)
	assert.Zero(t, rep.Sortino)
	assert.Zero(t, rep.MaxDrawdown)
	assert.Zero(t, rep.NumTrades)
	assert.NotNil(t, rep.Trades)
	assert.Empty(t, rep.Trades)
	assert.Empty(t, rep.EquityCurve)
}

func TestReportTotalReturnAndCAGR(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0) // 366 days, 2024 is a leap year

	curve := curveOf(start, 24*time.Hour, 10000, 10500, 11000)
	rep := calculateReport(10000, curve, nil, start, end)

	assert.InDelta(t, 10.0, rep.TotalReturn, 1e-9)
	// One year and a fraction: CAGR just under the total return.
	assert.InDelta(t, 9.98, rep.CAGR, 0.05)
	assert.Equal(t, 11000.0, rep.FinalCapital)
}

func TestReportSharpeZeroOnFlatCurve(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 24*time.Hour, 10000, 10000, 10000, 10000)

	rep := calculateReport(10000, curve, nil, start, start.AddDate(0, 0, 4))
	assert.Zero(t, rep.Sharpe)
	assert.Zero(t, rep.Sortino)
	assert.Zero(t, rep.MaxDrawdown)
}

func TestReportMaxDrawdown(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Peak 12000, trough 9000 afterward: drawdown 25%.
	curve := curveOf(start, 24*time.Hour, 10000, 12000, 9000, 11000)

	rep := calculateReport(10000, curve, nil, start, start.AddDate(0, 0, 4))
	assert.InDelta(t, -25.0, rep.MaxDrawdown, 1e-9)
}

func TestReportTradeStats(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 24*time.Hour, 10000, 10100)
	trades := []Trade{
		{TradeID: "t1", PnL: 100},
		{TradeID: "t2", PnL: 60},
		{TradeID: "t3", PnL: -40},
		{TradeID: "t4", PnL: 0}, // breakeven counts as a non-win
	}

	rep := calculateReport(10000, curve, trades, start, start.AddDate(0, 0, 2))
	assert.Equal(t, 4, rep.NumTrades)
	assert.Equal(t, 4, rep.Turnover)
	assert.InDelta(t, 50.0, rep.WinRate, 1e-9)
	assert.InDelta(t, 80.0, rep.AvgWin, 1e-9)
	assert.InDelta(t, -40.0, rep.AvgLoss, 1e-9)
}
