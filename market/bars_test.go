package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(min int) time.Time {
	return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
}

func TestValidateBars(t *testing.T) {
	t.Parallel()

	good := []PriceBar{
		{Ticker: "AAPL", TS: ts(0)},
		{Ticker: "AAPL", TS: ts(5)},
		{Ticker: "AAPL", TS: ts(10)},
	}
	assert.NoError(t, ValidateBars(good))

	dup := []PriceBar{
		{Ticker: "AAPL", TS: ts(0)},
		{Ticker: "AAPL", TS: ts(0)},
	}
	assert.Error(t, ValidateBars(dup))

	unordered := []PriceBar{
		{Ticker: "AAPL", TS: ts(5)},
		{Ticker: "AAPL", TS: ts(0)},
	}
	assert.Error(t, ValidateBars(unordered))
}

func TestBarsUpTo(t *testing.T) {
	t.Parallel()

	bars := []PriceBar{
		{TS: ts(0)}, {TS: ts(5)}, {TS: ts(10)}, {TS: ts(15)},
	}

	got := BarsUpTo(bars, ts(10))
	require.Len(t, got, 3)
	assert.Equal(t, ts(10), got[2].TS)

	assert.Len(t, BarsUpTo(bars, ts(-1)), 0)
	assert.Len(t, BarsUpTo(bars, ts(7)), 2)
	assert.Len(t, BarsUpTo(bars, ts(100)), 4)
}

func TestEventMentionsAndWellFormed(t *testing.T) {
	t.Parallel()

	e := TextEvent{
		EventID:     "ev-1",
		Tickers:     []string{"AAPL", "MSFT"},
		PublishedAt: ts(0),
		FirstSeenAt: ts(1),
	}
	assert.True(t, e.Mentions("MSFT"))
	assert.False(t, e.Mentions("NVDA"))
	assert.True(t, e.WellFormed())

	missing := TextEvent{Tickers: []string{"AAPL"}, PublishedAt: ts(0), FirstSeenAt: ts(0)}
	assert.False(t, missing.WellFormed())

	noTime := TextEvent{EventID: "ev-2", Tickers: []string{"AAPL"}}
	assert.False(t, noTime.WellFormed())
}
