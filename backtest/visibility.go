// Package backtest replays historical bars and text events through the
// scoring pipeline in strict time order. The visibility gate is the look-ahead
// guard: no event can influence a decision before it could realistically have
// been seen.
package backtest

import (
	"time"

	"github.com/valuecell/trader/market"
)

// VisibleEvents returns the subset of events visible at now. An event becomes
// visible at max(PublishedAt, FirstSeenAt) + latency: if the source claims a
// publish time after we first saw it (or vice versa), the later of the two
// gates — conservative on purpose. Malformed events are excluded outright.
// Visibility is monotonic: once visible at T, visible at every later T.
func VisibleEvents(events []market.TextEvent, now time.Time, latency time.Duration) []market.TextEvent {
	visible := make([]market.TextEvent, 0, len(events))
	for _, e := range events {
		if !e.WellFormed() {
			continue
		}

		basis := e.PublishedAt
		if e.FirstSeenAt.After(basis) {
			basis = e.FirstSeenAt
		}

		if !basis.Add(latency).After(now) {
			visible = append(visible, e)
		}
	}
	return visible
}
