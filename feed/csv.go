// Package feed loads historical price bars and text events from disk. CSV is
// the interchange format; Parquet is the compact archival format. Loaders are
// tolerant of header rows and skip blank lines, but a malformed value in a
// data row is an error, not a skip.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/valuecell/trader/market"
)

// Bar CSV columns:
//
//	time,ticker,open,high,low,close,volume[,vwap[,spread_bps]]
//
// where time is RFC3339. A header row starting with "time" is allowed.

// LoadBarsCSV reads price bars from path, sorted ascending per ticker.
func LoadBarsCSV(path string) ([]market.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.PriceBar
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars csv: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		bar, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}

	market.SortBars(bars)
	return bars, nil
}

func parseBarRow(row []string) (market.PriceBar, bool, error) {
	if len(row) < 7 {
		return market.PriceBar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.PriceBar{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return market.PriceBar{}, false, fmt.Errorf("bad bar time %q: %w", ts, err)
	}

	ticker := strings.TrimSpace(row[1])
	if ticker == "" {
		return market.PriceBar{}, false, nil
	}

	vals := make([]float64, 5)
	for i, col := range row[2:7] {
		v, err := strconv.ParseFloat(strings.TrimSpace(col), 64)
		if err != nil {
			return market.PriceBar{}, false, fmt.Errorf("bad bar value %q: %w", col, err)
		}
		vals[i] = v
	}

	bar := market.PriceBar{
		Ticker: ticker,
		TS:     t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}

	if len(row) > 7 {
		if bar.VWAP, err = parseOptionalFloat(row[7]); err != nil {
			return market.PriceBar{}, false, fmt.Errorf("bad vwap %q: %w", row[7], err)
		}
	}
	if len(row) > 8 {
		if bar.SpreadBps, err = parseOptionalFloat(row[8]); err != nil {
			return market.PriceBar{}, false, fmt.Errorf("bad spread_bps %q: %w", row[8], err)
		}
	}

	return bar, true, nil
}

func parseOptionalFloat(col string) (float64, error) {
	col = strings.TrimSpace(col)
	if col == "" {
		return 0, nil
	}
	return strconv.ParseFloat(col, 64)
}

// Event CSV columns:
//
//	event_id,tickers,published_at,first_seen_at,source,headline,body_excerpt,event_type,sentiment_raw,confidence,novelty
//
// where tickers is semicolon separated and times are RFC3339. A header row
// starting with "event_id" is allowed.

// LoadEventsCSV reads text events from path. No ordering is imposed; the
// visibility gate handles that downstream.
func LoadEventsCSV(path string) ([]market.TextEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var events []market.TextEvent
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read events csv: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "event_id") {
				continue
			}
		}

		e, ok, err := parseEventRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		events = append(events, e)
	}

	return events, nil
}

func parseEventRow(row []string) (market.TextEvent, bool, error) {
	if len(row) < 11 {
		return market.TextEvent{}, false, nil
	}

	id := strings.TrimSpace(row[0])
	if id == "" {
		return market.TextEvent{}, false, nil
	}

	var tickers []string
	for _, t := range strings.Split(row[1], ";") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}

	published, err := time.Parse(time.RFC3339, strings.TrimSpace(row[2]))
	if err != nil {
		return market.TextEvent{}, false, fmt.Errorf("bad published_at %q: %w", row[2], err)
	}
	firstSeen, err := time.Parse(time.RFC3339, strings.TrimSpace(row[3]))
	if err != nil {
		return market.TextEvent{}, false, fmt.Errorf("bad first_seen_at %q: %w", row[3], err)
	}

	sentiment, err := strconv.ParseFloat(strings.TrimSpace(row[8]), 64)
	if err != nil {
		return market.TextEvent{}, false, fmt.Errorf("bad sentiment_raw %q: %w", row[8], err)
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(row[9]), 64)
	if err != nil {
		return market.TextEvent{}, false, fmt.Errorf("bad confidence %q: %w", row[9], err)
	}
	novelty, err := strconv.ParseFloat(strings.TrimSpace(row[10]), 64)
	if err != nil {
		return market.TextEvent{}, false, fmt.Errorf("bad novelty %q: %w", row[10], err)
	}

	return market.TextEvent{
		EventID:      id,
		Tickers:      tickers,
		PublishedAt:  published,
		FirstSeenAt:  firstSeen,
		Source:       strings.TrimSpace(row[4]),
		Headline:     row[5],
		BodyExcerpt:  row[6],
		EventType:    strings.TrimSpace(row[7]),
		SentimentRaw: sentiment,
		Confidence:   confidence,
		Novelty:      novelty,
	}, true, nil
}

// GroupByTicker buckets bars per ticker, each bucket sorted and validated.
func GroupByTicker(bars []market.PriceBar) (map[string][]market.PriceBar, error) {
	grouped := make(map[string][]market.PriceBar)
	for _, b := range bars {
		grouped[b.Ticker] = append(grouped[b.Ticker], b)
	}

	for ticker, series := range grouped {
		market.SortBars(series)
		if err := market.ValidateBars(series); err != nil {
			return nil, fmt.Errorf("bars for %s: %w", ticker, err)
		}
	}
	return grouped, nil
}
