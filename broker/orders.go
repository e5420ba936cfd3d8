package broker

import (
	"github.com/valuecell/trader/market"
	"github.com/valuecell/trader/pkg/id"
)

// DefaultMaxSpreadBps rejects entries when the quoted spread is wider than
// this; crossing a wide spread eats the edge before the trade starts.
const DefaultMaxSpreadBps = 15

// NewEntryOrder builds a limit buy for the target notional at the current bar,
// or nil when the spread is too wide or the implied quantity is not positive.
// The limit sits 0.1% above close so the simulated fill is realistic for a
// marketable limit.
func NewEntryOrder(ticker string, targetNotional float64, bar market.PriceBar, maxSpreadBps float64) *Order {
	if bar.SpreadBps > 0 && bar.SpreadBps > maxSpreadBps {
		return nil
	}
	if bar.Close <= 0 {
		return nil
	}

	quantity := targetNotional / bar.Close
	if quantity <= 0 {
		return nil
	}

	return &Order{
		OrderID:    id.New(),
		Ticker:     ticker,
		Side:       SideBuy,
		Quantity:   quantity,
		OrderType:  TypeLimit,
		LimitPrice: bar.Close * 1.001,
		Status:     StatusPending,
	}
}

// NewExitOrder builds a market sell for the full position quantity.
func NewExitOrder(ticker string, quantity float64) Order {
	return Order{
		OrderID:   id.New(),
		Ticker:    ticker,
		Side:      SideSell,
		Quantity:  quantity,
		OrderType: TypeMarket,
		Status:    StatusPending,
	}
}
