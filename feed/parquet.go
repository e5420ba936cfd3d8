package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/valuecell/trader/market"
)

// BarRecord is the Parquet on-disk schema for price bars.
type BarRecord struct {
	Ticker    string  `parquet:"ticker"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
	VWAP      float64 `parquet:"vwap"`
	SpreadBps float64 `parquet:"spread_bps"`
}

// EventRecord is the Parquet on-disk schema for text events. Tickers is
// semicolon joined, matching the CSV convention.
type EventRecord struct {
	EventID      string  `parquet:"event_id"`
	Tickers      string  `parquet:"tickers"`
	PublishedAt  int64   `parquet:"published_at,timestamp(millisecond)"`
	FirstSeenAt  int64   `parquet:"first_seen_at,timestamp(millisecond)"`
	Source       string  `parquet:"source"`
	URL          string  `parquet:"url"`
	Headline     string  `parquet:"headline"`
	BodyExcerpt  string  `parquet:"body_excerpt"`
	EventType    string  `parquet:"event_type"`
	SentimentRaw float64 `parquet:"sentiment_raw"`
	Confidence   float64 `parquet:"confidence"`
	Novelty      float64 `parquet:"novelty"`
}

// WriteBarsParquet writes bars to a single Parquet file, creating parent
// directories as needed.
func WriteBarsParquet(path string, bars []market.PriceBar) error {
	records := make([]BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, BarRecord{
			Ticker:    b.Ticker,
			Timestamp: b.TS.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			VWAP:      b.VWAP,
			SpreadBps: b.SpreadBps,
		})
	}
	return writeParquet(path, records)
}

// LoadBarsParquet reads bars from a Parquet file, sorted ascending.
func LoadBarsParquet(path string) ([]market.PriceBar, error) {
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read bars parquet: %w", err)
	}

	bars := make([]market.PriceBar, 0, len(records))
	for _, r := range records {
		bars = append(bars, market.PriceBar{
			Ticker:    r.Ticker,
			TS:        time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
			VWAP:      r.VWAP,
			SpreadBps: r.SpreadBps,
		})
	}

	market.SortBars(bars)
	return bars, nil
}

// WriteEventsParquet writes events to a single Parquet file.
func WriteEventsParquet(path string, events []market.TextEvent) error {
	records := make([]EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, EventRecord{
			EventID:      e.EventID,
			Tickers:      strings.Join(e.Tickers, ";"),
			PublishedAt:  e.PublishedAt.UnixMilli(),
			FirstSeenAt:  e.FirstSeenAt.UnixMilli(),
			Source:       e.Source,
			URL:          e.URL,
			Headline:     e.Headline,
			BodyExcerpt:  e.BodyExcerpt,
			EventType:    e.EventType,
			SentimentRaw: e.SentimentRaw,
			Confidence:   e.Confidence,
			Novelty:      e.Novelty,
		})
	}
	return writeParquet(path, records)
}

// LoadEventsParquet reads events from a Parquet file.
func LoadEventsParquet(path string) ([]market.TextEvent, error) {
	records, err := parquet.ReadFile[EventRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read events parquet: %w", err)
	}

	events := make([]market.TextEvent, 0, len(records))
	for _, r := range records {
		var tickers []string
		for _, t := range strings.Split(r.Tickers, ";") {
			if t != "" {
				tickers = append(tickers, t)
			}
		}
		events = append(events, market.TextEvent{
			EventID:      r.EventID,
			Tickers:      tickers,
			PublishedAt:  time.UnixMilli(r.PublishedAt).UTC(),
			FirstSeenAt:  time.UnixMilli(r.FirstSeenAt).UTC(),
			Source:       r.Source,
			URL:          r.URL,
			Headline:     r.Headline,
			BodyExcerpt:  r.BodyExcerpt,
			EventType:    r.EventType,
			SentimentRaw: r.SentimentRaw,
			Confidence:   r.Confidence,
			Novelty:      r.Novelty,
		})
	}
	return events, nil
}

// LoadBars dispatches on extension: .parquet or CSV.
func LoadBars(path string) ([]market.PriceBar, error) {
	if strings.HasSuffix(path, ".parquet") {
		return LoadBarsParquet(path)
	}
	return LoadBarsCSV(path)
}

// LoadEvents dispatches on extension: .parquet or CSV.
func LoadEvents(path string) ([]market.TextEvent, error) {
	if strings.HasSuffix(path, ".parquet") {
		return LoadEventsParquet(path)
	}
	return LoadEventsCSV(path)
}

func writeParquet[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
