package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuecell/trader/market"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func visEvent(id string, published, firstSeen time.Time) market.TextEvent {
	return market.TextEvent{
		EventID:     id,
		Tickers:     []string{"AAPL"},
		PublishedAt: published,
		FirstSeenAt: firstSeen,
	}
}

func TestVisibilityGate(t *testing.T) {
	t.Parallel()

	latency := 600 * time.Second
	e := visEvent("ev-1", t0, t0)

	// Before published+latency: not visible.
	assert.Empty(t, VisibleEvents([]market.TextEvent{e}, t0, latency))
	assert.Empty(t, VisibleEvents([]market.TextEvent{e}, t0.Add(599*time.Second), latency))

	// Exactly at the visibility time and after: visible.
	assert.Len(t, VisibleEvents([]market.TextEvent{e}, t0.Add(600*time.Second), latency), 1)
	assert.Len(t, VisibleEvents([]market.TextEvent{e}, t0.Add(time.Hour), latency), 1)
}

func TestVisibilityGatesOnLaterTimestamp(t *testing.T) {
	t.Parallel()

	latency := 600 * time.Second

	// Ingestion lag: first seen an hour after publish. Visibility keys off
	// first_seen_at.
	lagged := visEvent("ev-lag", t0, t0.Add(time.Hour))
	assert.Empty(t, VisibleEvents([]market.TextEvent{lagged}, t0.Add(30*time.Minute), latency))
	assert.Len(t, VisibleEvents([]market.TextEvent{lagged}, t0.Add(time.Hour+latency), latency), 1)

	// The reverse: source claims a publish date AFTER we first saw it. The
	// later of the two still gates — conservative.
	postdated := visEvent("ev-post", t0.Add(time.Hour), t0)
	assert.Empty(t, VisibleEvents([]market.TextEvent{postdated}, t0.Add(30*time.Minute), latency))
	assert.Len(t, VisibleEvents([]market.TextEvent{postdated}, t0.Add(time.Hour+latency), latency), 1)
}

func TestVisibilityIsMonotonic(t *testing.T) {
	t.Parallel()

	latency := 600 * time.Second
	events := []market.TextEvent{
		visEvent("a", t0, t0),
		visEvent("b", t0.Add(10*time.Minute), t0.Add(20*time.Minute)),
		visEvent("c", t0.Add(2*time.Hour), t0.Add(2*time.Hour)),
	}

	prev := 0
	for _, offset := range []time.Duration{0, 10 * time.Minute, 30 * time.Minute, time.Hour, 3 * time.Hour} {
		n := len(VisibleEvents(events, t0.Add(offset), latency))
		require.GreaterOrEqual(t, n, prev, "visible set must never shrink")
		prev = n
	}
	assert.Equal(t, 3, prev)
}

func TestVisibilityExcludesMalformed(t *testing.T) {
	t.Parallel()

	missing := market.TextEvent{
		// No EventID.
		Tickers:     []string{"AAPL"},
		PublishedAt: t0,
		FirstSeenAt: t0,
	}
	noTickers := market.TextEvent{
		EventID:     "ev-2",
		PublishedAt: t0,
		FirstSeenAt: t0,
	}
	ok := visEvent("ev-3", t0, t0)

	got := VisibleEvents([]market.TextEvent{missing, noTickers, ok}, t0.Add(time.Hour), 0)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-3", got[0].EventID)
}
