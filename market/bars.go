// Package market defines the price-bar and text-event data model consumed by
// the backtest engine. Bars and events are loaded wholesale before a run; the
// engine never mutates them.
package market

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is one OHLCV bar for a ticker. VWAP and SpreadBps are optional;
// zero means the source did not provide them.
type PriceBar struct {
	Ticker    string
	TS        time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	VWAP      float64
	SpreadBps float64
}

// SortBars orders bars by timestamp ascending, in place.
func SortBars(bars []PriceBar) {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].TS.Before(bars[j].TS)
	})
}

// ValidateBars checks the per-ticker ordering contract: ascending timestamps
// with no duplicates.
func ValidateBars(bars []PriceBar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].TS.After(bars[i-1].TS) {
			return fmt.Errorf("bars for %s not strictly ascending at index %d (%s vs %s)",
				bars[i].Ticker, i, bars[i-1].TS, bars[i].TS)
		}
	}
	return nil
}

// BarsUpTo returns the prefix of bars with TS <= ts. Bars must be sorted
// ascending; the result shares the backing array.
func BarsUpTo(bars []PriceBar, ts time.Time) []PriceBar {
	n := sort.Search(len(bars), func(i int) bool {
		return bars[i].TS.After(ts)
	})
	return bars[:n]
}
