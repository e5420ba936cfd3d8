// Package broker simulates order execution against historical bars. The paper
// broker always fills, applies slippage against the taker and commission on
// both sides, and tracks capital plus one open position per ticker. It does
// NOT verify affordability: callers size orders before submitting, and a fill
// that drives capital negative is a caller bug, not a broker state.
package broker

import (
	"time"

	"github.com/valuecell/trader/market"
)

// Order sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order types.
const (
	TypeMarket = "market"
	TypeLimit  = "limit"
)

// Order statuses.
const (
	StatusPending = "pending"
	StatusFilled  = "filled"
)

// Order is a transient request: created, submitted, and resolved within one
// simulation step.
type Order struct {
	OrderID    string
	Ticker     string
	Side       string
	Quantity   float64
	OrderType  string
	LimitPrice float64 // 0 for market orders
	Status     string
}

// ExecutionReport is the broker's record of one resolved order.
type ExecutionReport struct {
	OrderID        string
	Status         string
	FilledQuantity float64
	FilledPrice    float64
	Commission     float64
	Timestamp      time.Time
}

// Position is an open long holding. It is created on a filled entry and
// removed whole on exit; the engine never resizes it.
type Position struct {
	Ticker      string
	EntryPrice  float64
	Quantity    float64
	EntryTime   time.Time
	StopPrice   float64
	TPPrice     float64
	TimeoutTime time.Time
	SFinalEntry float64
}

// Notional is the position's exposure at entry.
func (p Position) Notional() float64 {
	return p.Quantity * p.EntryPrice
}

// Paper is the simulated broker.
type Paper struct {
	capital   float64
	positions map[string]Position
	history   []ExecutionReport
}

// NewPaper creates a paper broker with the given starting capital.
func NewPaper(initialCapital float64) *Paper {
	return &Paper{
		capital:   initialCapital,
		positions: make(map[string]Position),
	}
}

// SubmitOrder fills the order at the bar close adjusted for slippage and
// updates capital. Buys fill above close, sells below: slippage always moves
// against the taker.
func (b *Paper) SubmitOrder(order Order, bar market.PriceBar, slippageBps, feeBps float64) ExecutionReport {
	var fillPrice float64
	if order.Side == SideBuy {
		fillPrice = bar.Close * (1 + slippageBps/10000)
	} else {
		fillPrice = bar.Close * (1 - slippageBps/10000)
	}

	notional := order.Quantity * fillPrice
	commission := notional * (feeBps / 10000)

	if order.Side == SideBuy {
		b.capital -= notional + commission
	} else {
		b.capital += notional - commission
	}

	report := ExecutionReport{
		OrderID:        order.OrderID,
		Status:         StatusFilled,
		FilledQuantity: order.Quantity,
		FilledPrice:    fillPrice,
		Commission:     commission,
		Timestamp:      bar.TS,
	}
	b.history = append(b.history, report)
	return report
}

// Capital returns free cash.
func (b *Paper) Capital() float64 {
	return b.capital
}

// Position returns the open position for ticker, if any.
func (b *Paper) Position(ticker string) (Position, bool) {
	p, ok := b.positions[ticker]
	return p, ok
}

// Positions returns all open positions.
func (b *Paper) Positions() []Position {
	out := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out
}

// AddPosition records a newly opened position. One slot per ticker.
func (b *Paper) AddPosition(p Position) {
	b.positions[p.Ticker] = p
}

// RemovePosition frees the ticker's slot and returns the position that was
// there.
func (b *Paper) RemovePosition(ticker string) (Position, bool) {
	p, ok := b.positions[ticker]
	if ok {
		delete(b.positions, ticker)
	}
	return p, ok
}

// TotalExposure is the sum of entry notionals across open positions.
func (b *Paper) TotalExposure() float64 {
	total := 0.0
	for _, p := range b.positions {
		total += p.Notional()
	}
	return total
}

// History returns all execution reports in submission order.
func (b *Paper) History() []ExecutionReport {
	return b.history
}
