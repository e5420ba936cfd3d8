package market

import "time"

// TextEvent is a time-stamped news or filing record. PublishedAt is the
// source's claimed publication time; FirstSeenAt is when our ingestion first
// observed it. Both feed the visibility gate, so neither may be trusted alone.
type TextEvent struct {
	EventID      string
	Tickers      []string
	Source       string
	URL          string
	Headline     string
	BodyExcerpt  string
	EventType    string
	PublishedAt  time.Time
	FirstSeenAt  time.Time
	SentimentRaw float64 // [-1, 1]
	Confidence   float64 // [0, 1]
	Novelty      float64 // [0, 1]
}

// Mentions reports whether the event references ticker.
func (e *TextEvent) Mentions(ticker string) bool {
	for _, t := range e.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// WellFormed reports whether the event carries the fields the engine needs.
// Malformed events are excluded from visibility, never a run-level error.
func (e *TextEvent) WellFormed() bool {
	return e.EventID != "" && len(e.Tickers) > 0 && !e.PublishedAt.IsZero() && !e.FirstSeenAt.IsZero()
}
