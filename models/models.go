// Package models holds the scoring models that turn a feature vector into the
// composite investment score. The three roles are deliberately distinct types:
// upward probability and downward probability live in [0,1], the extension
// dampener in (0,1], and they combine multiplicatively so any single weak
// signal suppresses the final score.
package models

import (
	"math"

	"github.com/valuecell/trader/features"
)

// Upside predicts the probability of a near-term upward move.
type Upside interface {
	Predict(f features.Features) float64
}

// Dampener scales conviction down when the market looks extended.
type Dampener interface {
	Compute(f features.Features) float64
}

// Downside predicts the probability of a near-term adverse move.
type Downside interface {
	Predict(f features.Features) float64
}

// Combine applies the fixed composite formula
// s_raw = pUp * dExt * (1 - pDrop).
func Combine(pUp, dExt, pDrop float64) float64 {
	return pUp * dExt * (1 - pDrop)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// PUpModel is a heuristic upward-probability model driven mostly by text
// sentiment, with a small momentum term.
type PUpModel struct{}

func (PUpModel) Predict(f features.Features) float64 {
	p := 0.5

	p += 0.20 * f.Text.SentimentWeighted
	p += 0.10 * f.Text.SentimentDelta

	if f.Text.EventCount1h >= 3 {
		p += 0.05
	}

	if f.Text.Tags.GuidanceUp > 0 {
		p += 0.10
	}
	if f.Text.Tags.GuidanceDown > 0 {
		p -= 0.10
	}
	if f.Text.Tags.MNA > 0 {
		p += 0.05
	}
	if f.Text.Tags.CapexUp > 0 {
		p += 0.05
	}

	if f.Market.ReturnZScore > 0.5 {
		p += 0.05
	} else if f.Market.ReturnZScore < -0.5 {
		p -= 0.05
	}

	return clamp01(p)
}

// DExtModel dampens conviction when the name is statistically stretched:
// outsized return z-score, overbought RSI, or a volume blow-off. The penalty
// is exponential, so the output stays in (0,1] and compounds smoothly.
type DExtModel struct {
	Alpha           float64 // penalty steepness
	ZThreshold      float64 // |z| above this is "stretched"
	RSIOverbought   float64
	VolumeSpikeMult float64
}

// NewDExtModel returns the dampener with the standard parameters.
func NewDExtModel(alpha, zThreshold, rsiOverbought, volumeSpikeMult float64) DExtModel {
	return DExtModel{
		Alpha:           alpha,
		ZThreshold:      zThreshold,
		RSIOverbought:   rsiOverbought,
		VolumeSpikeMult: volumeSpikeMult,
	}
}

func (m DExtModel) Compute(f features.Features) float64 {
	penalty := 0.0

	if z := math.Abs(f.Market.ReturnZScore); z > m.ZThreshold {
		penalty += z - m.ZThreshold
	}
	if f.Market.RSI > m.RSIOverbought && m.RSIOverbought < 100 {
		penalty += (f.Market.RSI - m.RSIOverbought) / (100 - m.RSIOverbought)
	}
	if m.VolumeSpikeMult > 0 && f.Market.VolumeRatio > m.VolumeSpikeMult {
		penalty += f.Market.VolumeRatio/m.VolumeSpikeMult - 1
	}

	return math.Exp(-m.Alpha * penalty)
}

// PDropModel is a heuristic knee-jerk downside model: negative sentiment,
// adverse event tags, and extension all raise the probability of a drop.
type PDropModel struct{}

func (PDropModel) Predict(f features.Features) float64 {
	p := 0.1

	if f.Text.SentimentWeighted < 0 {
		p += 0.30 * -f.Text.SentimentWeighted
	}
	if f.Text.SentimentDelta < 0 {
		p += 0.20 * -f.Text.SentimentDelta
	}

	if f.Text.Tags.Lawsuit > 0 {
		p += 0.15
	}
	if f.Text.Tags.GuidanceDown > 0 {
		p += 0.20
	}
	if f.Text.Tags.ExecChange > 0 {
		p += 0.05
	}

	if f.Market.ReturnZScore < -1.5 {
		p += 0.15
	}
	if f.Market.RSI > 75 {
		p += 0.10
	}
	if f.Market.VolumeRatio > 3 {
		p += 0.10
	}

	return clamp01(p)
}
