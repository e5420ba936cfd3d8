package features

import (
	"math"
	"strings"
	"time"

	"github.com/valuecell/trader/market"
)

// EventTags counts keyword-matched event categories over the lookback window.
type EventTags struct {
	Earnings     int
	GuidanceUp   int
	GuidanceDown int
	CapexUp      int
	MNA          int
	Lawsuit      int
	ExecChange   int
}

// TextFeatures is the sentiment/novelty feature vector for one ticker at one
// time.
type TextFeatures struct {
	SentimentWeighted float64
	EventCount1h      int
	SentimentDelta    float64
	Tags              EventTags
}

// DefaultTextFeatures is the zero vector returned when no events fall inside
// the lookback window.
func DefaultTextFeatures() TextFeatures {
	return TextFeatures{}
}

// TextBuilder computes TextFeatures from visible events. DecayLambda controls
// the exponential time decay of event weights (per hour); Lookback bounds how
// far back events are considered.
type TextBuilder struct {
	DecayLambda float64
	Lookback    time.Duration
}

// NewTextBuilder returns a builder with the given decay constant and the
// standard 24h lookback.
func NewTextBuilder(decayLambda float64) TextBuilder {
	return TextBuilder{DecayLambda: decayLambda, Lookback: 24 * time.Hour}
}

// Build filters events to those mentioning ticker with PublishedAt inside
// [now-Lookback, now] and aggregates them.
func (b TextBuilder) Build(ticker string, now time.Time, events []market.TextEvent) TextFeatures {
	cutoff := now.Add(-b.Lookback)

	var windowed []market.TextEvent
	for _, e := range events {
		if !e.Mentions(ticker) {
			continue
		}
		if e.PublishedAt.After(now) || e.PublishedAt.Before(cutoff) {
			continue
		}
		windowed = append(windowed, e)
	}

	if len(windowed) == 0 {
		return DefaultTextFeatures()
	}

	oneHourAgo := now.Add(-time.Hour)
	count1h := 0
	for _, e := range windowed {
		if !e.PublishedAt.Before(oneHourAgo) {
			count1h++
		}
	}

	// Sentiment acceleration: recent (<=6h, weighted as of now) minus older
	// (>6h, weighted as of the 6h boundary so decay does not double-penalize).
	sixHoursAgo := now.Add(-6 * time.Hour)
	var recent, older []market.TextEvent
	for _, e := range windowed {
		if !e.PublishedAt.Before(sixHoursAgo) {
			recent = append(recent, e)
		} else {
			older = append(older, e)
		}
	}

	recentSentiment := b.weightedSentiment(recent, now)
	olderSentiment := b.weightedSentiment(older, sixHoursAgo)

	return TextFeatures{
		SentimentWeighted: b.weightedSentiment(windowed, now),
		EventCount1h:      count1h,
		SentimentDelta:    recentSentiment - olderSentiment,
		Tags:              extractTags(windowed),
	}
}

// weightedSentiment aggregates sentiment with weight
// confidence * exp(-lambda * ageHours) * (1 + novelty).
func (b TextBuilder) weightedSentiment(events []market.TextEvent, ref time.Time) float64 {
	if len(events) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for _, e := range events {
		ageHours := ref.Sub(e.PublishedAt).Hours()
		w := e.Confidence * math.Exp(-b.DecayLambda*ageHours) * (1 + e.Novelty)
		weightedSum += w * e.SentimentRaw
		totalWeight += w
	}

	if totalWeight <= 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// extractTags runs case-insensitive substring matching of curated keyword
// lists against headline+body. Each matching event increments its tag count.
func extractTags(events []market.TextEvent) EventTags {
	var tags EventTags
	for _, e := range events {
		text := strings.ToLower(e.Headline + " " + e.BodyExcerpt)

		if containsAny(text, "earnings", "quarter") {
			tags.Earnings++
		}
		if strings.Contains(text, "guidance") && containsAny(text, "raise", "increase", "upgrade") {
			tags.GuidanceUp++
		}
		if strings.Contains(text, "guidance") && containsAny(text, "lower", "decrease", "downgrade") {
			tags.GuidanceDown++
		}
		if containsAny(text, "capex", "capital expenditure", "investment") && strings.Contains(text, "increase") {
			tags.CapexUp++
		}
		if containsAny(text, "acquisition", "merger", "m&a", "buyout") {
			tags.MNA++
		}
		if containsAny(text, "lawsuit", "litigation", "legal action") {
			tags.Lawsuit++
		}
		if containsAny(text, "ceo", "cfo", "executive", "resignation", "appointment") {
			tags.ExecChange++
		}
	}
	return tags
}

// Features bundles both builders' outputs for the scoring models.
type Features struct {
	Market MarketFeatures
	Text   TextFeatures
}
