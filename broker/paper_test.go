package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuecell/trader/market"
)

func bar(close float64) market.PriceBar {
	return market.PriceBar{
		Ticker: "TEST",
		TS:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Open:   close, High: close, Low: close, Close: close,
		Volume: 1000,
	}
}

func TestFillDirection(t *testing.T) {
	t.Parallel()

	b := NewPaper(10_000)

	buy := b.SubmitOrder(Order{OrderID: "o1", Side: SideBuy, Quantity: 1}, bar(100), 10, 0)
	assert.InDelta(t, 100.10, buy.FilledPrice, 1e-9)
	assert.Equal(t, StatusFilled, buy.Status)

	sell := b.SubmitOrder(Order{OrderID: "o2", Side: SideSell, Quantity: 1}, bar(100), 10, 0)
	assert.InDelta(t, 99.90, sell.FilledPrice, 1e-9)
}

func TestCapitalUpdates(t *testing.T) {
	t.Parallel()

	b := NewPaper(1_000)

	// Buy 2 @ close=100 with 0 slippage and 2bps fee: notional 200,
	// commission 0.04.
	rep := b.SubmitOrder(Order{OrderID: "o1", Side: SideBuy, Quantity: 2}, bar(100), 0, 2)
	assert.InDelta(t, 0.04, rep.Commission, 1e-9)
	assert.InDelta(t, 1000-200.04, b.Capital(), 1e-9)

	// Sell the same quantity back at the same price: commission charged again.
	b.SubmitOrder(Order{OrderID: "o2", Side: SideSell, Quantity: 2}, bar(100), 0, 2)
	assert.InDelta(t, 1000-0.08, b.Capital(), 1e-9)
}

func TestPositionSlots(t *testing.T) {
	t.Parallel()

	b := NewPaper(10_000)
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	b.AddPosition(Position{Ticker: "AAPL", EntryPrice: 100, Quantity: 5, EntryTime: entry})
	b.AddPosition(Position{Ticker: "MSFT", EntryPrice: 200, Quantity: 1, EntryTime: entry})

	assert.InDelta(t, 700, b.TotalExposure(), 1e-9)

	p, ok := b.Position("AAPL")
	require.True(t, ok)
	assert.InDelta(t, 500, p.Notional(), 1e-9)

	removed, ok := b.RemovePosition("AAPL")
	require.True(t, ok)
	assert.Equal(t, "AAPL", removed.Ticker)
	_, ok = b.Position("AAPL")
	assert.False(t, ok)
	assert.InDelta(t, 200, b.TotalExposure(), 1e-9)

	_, ok = b.RemovePosition("AAPL")
	assert.False(t, ok)
}

func TestNewEntryOrder(t *testing.T) {
	t.Parallel()

	pb := bar(100)
	o := NewEntryOrder("AAPL", 500, pb, DefaultMaxSpreadBps)
	require.NotNil(t, o)
	assert.Equal(t, SideBuy, o.Side)
	assert.Equal(t, TypeLimit, o.OrderType)
	assert.InDelta(t, 5.0, o.Quantity, 1e-9)
	assert.InDelta(t, 100.1, o.LimitPrice, 1e-9)
	assert.Equal(t, StatusPending, o.Status)
	assert.NotEmpty(t, o.OrderID)

	// Wide spread rejects before any order exists.
	wide := pb
	wide.SpreadBps = 40
	assert.Nil(t, NewEntryOrder("AAPL", 500, wide, DefaultMaxSpreadBps))

	// Non-positive notional never reaches the broker.
	assert.Nil(t, NewEntryOrder("AAPL", 0, pb, DefaultMaxSpreadBps))
}

func TestNewExitOrder(t *testing.T) {
	t.Parallel()

	o := NewExitOrder("AAPL", 3)
	assert.Equal(t, SideSell, o.Side)
	assert.Equal(t, TypeMarket, o.OrderType)
	assert.InDelta(t, 3.0, o.Quantity, 1e-9)
	assert.NotEmpty(t, o.OrderID)
}
