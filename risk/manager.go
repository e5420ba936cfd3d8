package risk

import (
	"time"

	"github.com/valuecell/trader/broker"
	"github.com/valuecell/trader/market"
)

// Exit reasons, in check priority order.
const (
	ExitStopLoss   = "stop_loss"
	ExitTakeProfit = "take_profit"
	ExitTimeout    = "timeout"
	ExitKneejerk   = "kneejerk"
)

// ManagerConfig carries the stop/target/timeout policy.
type ManagerConfig struct {
	StopPct     float64
	TPPct       float64
	TimeoutDays int
	KneejerkCut float64 // pDrop above this forces an exit
}

// Manager computes protective levels at entry and evaluates exits each step.
type Manager struct {
	cfg ManagerConfig
}

// NewManager creates a Manager with the given policy.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{cfg: cfg}
}

// CalculateStops returns (stop, takeProfit) for an entry. The hard stop is
// entry*(1-stopPct); when ATR is available an ATR stop at entry-1.2*ATR is
// also computed and the HIGHER of the two prices wins. The ATR stop therefore
// only replaces the hard stop when it is less aggressive — protection is never
// loosened below the hard stop.
func (m *Manager) CalculateStops(entryPrice, atr float64) (stopPrice, tpPrice float64) {
	stopPrice = entryPrice * (1 - m.cfg.StopPct)

	if atr > 0 {
		atrStop := entryPrice - 1.2*atr
		if atrStop > stopPrice {
			stopPrice = atrStop
		}
	}

	tpPrice = entryPrice * (1 + m.cfg.TPPct)
	return stopPrice, tpPrice
}

// Timeout returns the position's expiry given its entry time.
func (m *Manager) Timeout(entryTime time.Time) time.Time {
	return entryTime.Add(time.Duration(m.cfg.TimeoutDays) * 24 * time.Hour)
}

// CheckExits returns the exit reason for the position at this bar, or "" to
// hold. Checks run in fixed priority: stop, target, timeout, kneejerk — when a
// bar hits both the stop and the timeout, the reported reason is stop_loss.
func (m *Manager) CheckExits(pos broker.Position, bar market.PriceBar, now time.Time, pDrop float64) string {
	price := bar.Close

	if price <= pos.StopPrice {
		return ExitStopLoss
	}
	if price >= pos.TPPrice {
		return ExitTakeProfit
	}
	if !now.Before(pos.TimeoutTime) {
		return ExitTimeout
	}
	if pDrop > m.cfg.KneejerkCut {
		return ExitKneejerk
	}
	return ""
}
