// Package features derives fixed-shape feature vectors from price bars and
// text events as of a simulated decision time. Builders are pure: same inputs,
// same outputs, no state carried between calls.
package features

import (
	"math"

	"github.com/valuecell/trader/market"
)

// minHistoryBars is the minimum number of historical bars (excluding the
// current bar) required before market features are computed. Below this the
// builder returns DefaultMarketFeatures, which keeps early-window bars from
// producing spurious scores.
const minHistoryBars = 30

// MarketFeatures is the technical feature vector for one ticker at one time.
type MarketFeatures struct {
	ReturnZScore float64
	RSI          float64
	ATR          float64
	VolumeRatio  float64
	SpreadBps    float64
}

// DefaultMarketFeatures is the neutral fallback used when history is too
// short: RSI at midpoint, unit volume ratio, 5bps assumed spread.
func DefaultMarketFeatures() MarketFeatures {
	return MarketFeatures{
		ReturnZScore: 0,
		RSI:          50,
		ATR:          0,
		VolumeRatio:  1,
		SpreadBps:    5,
	}
}

// MarketBuilder computes MarketFeatures from historical bars plus the current
// bar. bars must hold history strictly before current, sorted ascending.
type MarketBuilder struct{}

// Build returns the feature vector for current given its history. Fewer than
// 30 historical bars yields DefaultMarketFeatures.
func (MarketBuilder) Build(bars []market.PriceBar, current market.PriceBar) MarketFeatures {
	if len(bars) < minHistoryBars {
		return DefaultMarketFeatures()
	}

	f := MarketFeatures{
		ReturnZScore: returnZScore(bars, current),
		RSI:          rsi(bars, 14),
		ATR:          atr(bars, 14),
		VolumeRatio:  volumeRatio(bars, current),
		SpreadBps:    current.SpreadBps,
	}
	if f.SpreadBps == 0 {
		f.SpreadBps = 5
	}
	return f
}

// returnZScore standardizes the latest return against the trailing 20-bar
// return distribution. The reference close is two historical bars back,
// matching the engine's convention of handing the builder history that
// excludes the current bar.
func returnZScore(bars []market.PriceBar, current market.PriceBar) float64 {
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}

	window := returns
	if len(window) > 20 {
		window = window[len(window)-20:]
	}

	mean := meanOf(window)
	std := sampleStd(window, mean)
	if std <= 0 {
		return 0
	}

	ref := bars[len(bars)-2].Close
	if ref == 0 {
		return 0
	}
	currentReturn := (current.Close - ref) / ref

	return (currentReturn - mean) / std
}

// rsi is the mean-gain/mean-loss form over the last period deltas, with the
// convention RSI=100 when the average loss is exactly zero.
func rsi(bars []market.PriceBar, period int) float64 {
	if len(bars) < period+1 {
		return 50
	}

	gains := make([]float64, 0, len(bars)-1)
	losses := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		d := bars[i].Close - bars[i-1].Close
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}

	avgGain := meanOf(gains[len(gains)-period:])
	avgLoss := meanOf(losses[len(losses)-period:])

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// atr is the simple mean of the last period true-range values, where true
// range = max(high-low, |high-prevClose|, |low-prevClose|).
func atr(bars []market.PriceBar, period int) float64 {
	if len(bars) < period+1 {
		return 0
	}

	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		trs = append(trs, math.Max(hl, math.Max(hc, lc)))
	}

	return meanOf(trs[len(trs)-period:])
}

// volumeRatio compares the current bar's volume to the trailing 30-bar average
// volume, defaulting to 1.0 when the average is zero.
func volumeRatio(bars []market.PriceBar, current market.PriceBar) float64 {
	window := bars
	if len(window) > 30 {
		window = window[len(window)-30:]
	}

	sum := 0.0
	for _, b := range window {
		sum += b.Volume
	}
	avg := sum / float64(len(window))
	if avg <= 0 {
		return 1
	}
	return current.Volume / avg
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

// sampleStd is the ddof=1 standard deviation, matching the trailing-return
// statistic used for the z-score.
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
