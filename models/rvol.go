package models

import "github.com/valuecell/trader/features"

// RVolModel estimates the probability of a volatility spike. It is not part
// of the composite score; runs report it so stretched regimes are visible in
// the ledger.
type RVolModel struct{}

func (RVolModel) Predict(f features.Features) float64 {
	p := 0.1

	switch {
	case f.Text.EventCount1h >= 5:
		p += 0.3
	case f.Text.EventCount1h >= 3:
		p += 0.2
	}

	if abs(f.Text.SentimentWeighted) > 0.5 {
		p += 0.2
	}
	if abs(f.Text.SentimentDelta) > 0.3 {
		p += 0.15
	}

	switch {
	case f.Market.VolumeRatio > 3.0:
		p += 0.25
	case f.Market.VolumeRatio > 2.0:
		p += 0.15
	}

	if f.Market.RSI > 75 || f.Market.RSI < 25 {
		p += 0.15
	}

	switch z := abs(f.Market.ReturnZScore); {
	case z > 2.0:
		p += 0.2
	case z > 1.5:
		p += 0.1
	}

	if f.Text.Tags.Earnings > 0 {
		p += 0.2
	}
	if f.Text.Tags.MNA > 0 {
		p += 0.25
	}
	if f.Text.Tags.Lawsuit > 0 {
		p += 0.15
	}

	return clamp01(p)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
