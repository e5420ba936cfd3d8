package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuecell/trader/market"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBarsCSV(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "bars.csv", `time,ticker,open,high,low,close,volume,vwap,spread_bps
2024-06-03T09:35:00Z,AAPL,100.2,100.6,99.9,100.4,1500,100.3,4
2024-06-03T09:30:00Z,AAPL,100,100.5,99.5,100.2,1200,100.1,5
2024-06-03T09:30:00Z,MSFT,420,421,419,420.5,800,,
`)

	bars, err := LoadBarsCSV(path)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	// Sorted by time regardless of input order.
	assert.True(t, !bars[0].TS.After(bars[1].TS) && !bars[1].TS.After(bars[2].TS))

	grouped, err := GroupByTicker(bars)
	require.NoError(t, err)
	require.Len(t, grouped["AAPL"], 2)
	assert.Equal(t, 100.2, grouped["AAPL"][0].Close)
	assert.Equal(t, 100.4, grouped["AAPL"][1].Close)
	assert.Equal(t, 5.0, grouped["AAPL"][0].SpreadBps)
	assert.Zero(t, grouped["MSFT"][0].SpreadBps)
}

func TestLoadBarsCSVRejectsBadValue(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "bars.csv", `2024-06-03T09:30:00Z,AAPL,100,100.5,99.5,not-a-number,1200
`)
	_, err := LoadBarsCSV(path)
	assert.Error(t, err)
}

func TestLoadBarsCSVSkipsShortRows(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "bars.csv", `time,ticker,open,high,low,close,volume
2024-06-03T09:30:00Z,AAPL,100,100.5,99.5,100.2,1200
2024-06-03T09:35:00Z,AAPL
`)
	bars, err := LoadBarsCSV(path)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestGroupByTickerRejectsDuplicateTimestamps(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	bars := []market.PriceBar{
		{Ticker: "AAPL", TS: ts, Close: 100},
		{Ticker: "AAPL", TS: ts, Close: 101},
	}

	_, err := GroupByTicker(bars)
	assert.Error(t, err)
}

func TestLoadEventsCSV(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "events.csv", `event_id,tickers,published_at,first_seen_at,source,headline,body_excerpt,event_type,sentiment_raw,confidence,novelty
ev-1,AAPL;MSFT,2024-06-03T09:00:00Z,2024-06-03T09:05:00Z,wire,Company raises guidance,Strong quarter ahead,guidance,0.8,0.9,0.5
`)

	events, err := LoadEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "ev-1", e.EventID)
	assert.Equal(t, []string{"AAPL", "MSFT"}, e.Tickers)
	assert.True(t, e.Mentions("MSFT"))
	assert.Equal(t, 0.8, e.SentimentRaw)
	assert.True(t, e.FirstSeenAt.After(e.PublishedAt))
	assert.True(t, e.WellFormed())
}

func TestBarsParquetRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.parquet")
	want := []market.PriceBar{
		{
			Ticker: "AAPL",
			TS:     time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
			Open:   100, High: 100.5, Low: 99.5, Close: 100.2,
			Volume: 1200, VWAP: 100.1, SpreadBps: 5,
		},
		{
			Ticker: "AAPL",
			TS:     time.Date(2024, 6, 3, 9, 35, 0, 0, time.UTC),
			Open:   100.2, High: 100.6, Low: 99.9, Close: 100.4,
			Volume: 1500, VWAP: 100.3, SpreadBps: 4,
		},
	}

	require.NoError(t, WriteBarsParquet(path, want))

	got, err := LoadBarsParquet(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEventsParquetRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.parquet")
	want := []market.TextEvent{{
		EventID:      "ev-1",
		Tickers:      []string{"AAPL"},
		PublishedAt:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		FirstSeenAt:  time.Date(2024, 6, 3, 9, 5, 0, 0, time.UTC),
		Source:       "wire",
		Headline:     "Company raises guidance",
		EventType:    "guidance",
		SentimentRaw: 0.8,
		Confidence:   0.9,
		Novelty:      0.5,
	}}

	require.NoError(t, WriteEventsParquet(path, want))

	got, err := LoadEventsParquet(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pq := filepath.Join(dir, "bars.parquet")
	bars := []market.PriceBar{{
		Ticker: "AAPL",
		TS:     time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
		Open:   100, High: 100.5, Low: 99.5, Close: 100.2, Volume: 1200,
	}}
	require.NoError(t, WriteBarsParquet(pq, bars))

	got, err := LoadBars(pq)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = LoadBars(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
