package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/valuecell/trader/broker"
	"github.com/valuecell/trader/config"
	"github.com/valuecell/trader/features"
	"github.com/valuecell/trader/market"
	"github.com/valuecell/trader/models"
	"github.com/valuecell/trader/pkg/id"
	"github.com/valuecell/trader/risk"
)

// minHistory is the bar count a ticker needs before it participates in a
// timestamp. Shorter histories are skipped for that step, never an error.
const minHistory = 30

// Engine drives the time-capsule simulation: a single-threaded, deterministic
// replay over the union of bar timestamps. All mutable run state (broker,
// smoother, ledger) is created inside Run, so concurrent runs of the same
// Engine value over different windows never share anything.
type Engine struct {
	cfg *config.Config

	marketBuilder features.MarketBuilder
	textBuilder   features.TextBuilder

	pUp   models.Upside
	dExt  models.Dampener
	pDrop models.Downside
	rVol  models.RVolModel

	sizer   *risk.Sizer
	riskMgr *risk.Manager
}

// New wires an Engine from configuration. The config is validated eagerly;
// nothing else can fail before Run.
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest config: %w", err)
	}

	return &Engine{
		cfg:           cfg,
		marketBuilder: features.MarketBuilder{},
		textBuilder:   features.NewTextBuilder(cfg.Scoring.DecayLambda),
		pUp:           models.PUpModel{},
		dExt: models.NewDExtModel(
			cfg.Scoring.AlphaExt,
			cfg.Scoring.ZThreshold,
			cfg.Scoring.RSIOverbought,
			cfg.Scoring.VolumeSpikeMult,
		),
		pDrop: models.PDropModel{},
		rVol:  models.RVolModel{},
		sizer: risk.NewSizer(risk.SizerConfig{
			KellyScale:       cfg.Risk.KellyScale,
			MaxPerName:       cfg.Risk.MaxPerName,
			MaxTotalExposure: cfg.Risk.MaxTotalExposure,
		}),
		riskMgr: risk.NewManager(risk.ManagerConfig{
			StopPct:     cfg.Risk.StopPct,
			TPPct:       cfg.Risk.TPPct,
			TimeoutDays: cfg.Risk.TimeoutDays,
			KneejerkCut: cfg.Scoring.KneejerkCut,
		}),
	}, nil
}

// runState is the mutable state threaded through one run.
type runState struct {
	broker   *broker.Paper
	smoother *models.Smoother
	trades   []Trade
	curve    []EquityPoint
}

// Run replays [start, end] over the supplied bars and events and returns the
// aggregate report. Bars must be sorted ascending per ticker; events need no
// ordering. Cancelling ctx stops the replay at the next timestamp boundary and
// reports whatever was simulated up to that point.
func (e *Engine) Run(
	ctx context.Context,
	start, end time.Time,
	barsData map[string][]market.PriceBar,
	events []market.TextEvent,
) (*Report, error) {
	timestamps := collectTimestamps(barsData, start, end)
	initialCapital := e.cfg.Simulation.InitialCapital

	if len(timestamps) == 0 {
		log.Warn().Time("start", start).Time("end", end).
			Msg("backtest window contains no bars")
		return emptyReport(initialCapital, start, end), nil
	}

	log.Info().Time("start", start).Time("end", end).
		Int("timestamps", len(timestamps)).
		Int("tickers", len(e.cfg.Universe.Tickers)).
		Float64("initial_capital", initialCapital).
		Msg("starting backtest")

	st := &runState{
		broker:   broker.NewPaper(initialCapital),
		smoother: models.NewSmoother(e.cfg.Scoring.Beta),
		trades:   []Trade{},
		curve:    make([]EquityPoint, 0, len(timestamps)),
	}

	latency := time.Duration(e.cfg.Simulation.SimLatencySeconds) * time.Second
	tickers := sortedTickers(e.cfg.Universe.Tickers)

	for _, now := range timestamps {
		if ctx.Err() != nil {
			log.Warn().Time("at", now).Msg("backtest cancelled")
			break
		}

		visible := VisibleEvents(events, now, latency)

		for _, ticker := range tickers {
			bars, ok := barsData[ticker]
			if !ok {
				continue
			}

			hist := market.BarsUpTo(bars, now)
			if len(hist) < minHistory {
				continue
			}
			current := hist[len(hist)-1]

			if pos, ok := st.broker.Position(ticker); ok {
				e.managePosition(st, pos, current, now, hist, visible)
			} else if err := e.evaluateEntry(st, ticker, current, now, hist, visible); err != nil {
				return nil, err
			}
		}

		st.curve = append(st.curve, EquityPoint{
			Timestamp: now,
			Equity:    e.markToMarket(st, barsData, now),
		})
	}

	report := calculateReport(initialCapital, st.curve, st.trades, start, end)

	log.Info().Float64("final_capital", report.FinalCapital).
		Int("trades", report.NumTrades).
		Float64("total_return_pct", report.TotalReturn).
		Msg("backtest complete")

	return report, nil
}

// evaluateEntry scores the ticker and opens a position when the smoothed
// score clears the entry threshold and the sizer grants notional. The
// smoother is updated on every evaluation, entered or not: skipped scores
// still shape the EMA.
func (e *Engine) evaluateEntry(
	st *runState,
	ticker string,
	current market.PriceBar,
	now time.Time,
	hist []market.PriceBar,
	visible []market.TextEvent,
) error {
	f := e.buildFeatures(ticker, current, now, hist, visible)

	pUp := e.pUp.Predict(f)
	dExt := e.dExt.Compute(f)
	pDrop := e.pDrop.Predict(f)

	sRaw := models.Combine(pUp, dExt, pDrop)
	sFinal := st.smoother.Smooth(ticker, sRaw)

	if sFinal < e.cfg.Scoring.EnterThreshold {
		return nil
	}

	exposures := make(map[string]float64)
	for _, p := range st.broker.Positions() {
		exposures[p.Ticker] = p.Notional()
	}
	totalCapital := st.broker.Capital() + st.broker.TotalExposure()

	alloc := e.sizer.Size(ticker, sFinal, totalCapital, exposures)
	if alloc == nil || alloc.TargetNotional <= 0 {
		if alloc != nil && alloc.Reason == risk.ReasonMaxTotalExposure {
			log.Debug().Str("ticker", ticker).Msg("entry blocked: portfolio exposure cap reached")
		}
		return nil
	}

	// Affordability pre-check: the broker never verifies it, and a fill that
	// drives cash negative is a defect here, not there.
	estimatedCost := alloc.TargetNotional * (1 + (e.cfg.Simulation.SlippageBps+e.cfg.Simulation.FeeBps)/10000)
	if estimatedCost > st.broker.Capital() {
		log.Debug().Str("ticker", ticker).
			Float64("notional", alloc.TargetNotional).
			Float64("cash", st.broker.Capital()).
			Msg("entry skipped: insufficient cash")
		return nil
	}

	order := broker.NewEntryOrder(ticker, alloc.TargetNotional, current, broker.DefaultMaxSpreadBps)
	if order == nil {
		return nil
	}

	rep := st.broker.SubmitOrder(*order, current, e.cfg.Simulation.SlippageBps, e.cfg.Simulation.FeeBps)
	if rep.Status != broker.StatusFilled {
		return nil
	}
	if st.broker.Capital() < 0 {
		return fmt.Errorf("negative capital %.4f after buy of %s: sizing pre-check failed",
			st.broker.Capital(), ticker)
	}

	stopPrice, tpPrice := e.riskMgr.CalculateStops(rep.FilledPrice, f.Market.ATR)

	st.broker.AddPosition(broker.Position{
		Ticker:      ticker,
		EntryPrice:  rep.FilledPrice,
		Quantity:    rep.FilledQuantity,
		EntryTime:   now,
		StopPrice:   stopPrice,
		TPPrice:     tpPrice,
		TimeoutTime: e.riskMgr.Timeout(now),
		SFinalEntry: sFinal,
	})

	log.Debug().Str("ticker", ticker).
		Float64("s_final", sFinal).
		Float64("fill", rep.FilledPrice).
		Float64("qty", rep.FilledQuantity).
		Float64("stop", stopPrice).
		Float64("tp", tpPrice).
		Float64("r_vol", e.rVol.Predict(f)).
		Msg("position opened")

	return nil
}

// managePosition re-scores downside risk and closes the position when any
// exit condition fires.
func (e *Engine) managePosition(
	st *runState,
	pos broker.Position,
	current market.PriceBar,
	now time.Time,
	hist []market.PriceBar,
	visible []market.TextEvent,
) {
	f := e.buildFeatures(pos.Ticker, current, now, hist, visible)
	pDrop := e.pDrop.Predict(f)

	reason := e.riskMgr.CheckExits(pos, current, now, pDrop)
	if reason == "" {
		return
	}

	order := broker.NewExitOrder(pos.Ticker, pos.Quantity)
	rep := st.broker.SubmitOrder(order, current, e.cfg.Simulation.SlippageBps, e.cfg.Simulation.FeeBps)
	if rep.Status != broker.StatusFilled {
		return
	}

	pnl := (rep.FilledPrice - pos.EntryPrice) * pos.Quantity
	pnlPct := (rep.FilledPrice/pos.EntryPrice - 1) * 100

	st.trades = append(st.trades, Trade{
		TradeID:     id.New(),
		Ticker:      pos.Ticker,
		EntryTime:   pos.EntryTime,
		ExitTime:    now,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   rep.FilledPrice,
		Quantity:    pos.Quantity,
		PnL:         pnl,
		PnLPct:      pnlPct,
		ExitReason:  reason,
		SFinalEntry: pos.SFinalEntry,
	})
	st.broker.RemovePosition(pos.Ticker)

	log.Debug().Str("ticker", pos.Ticker).
		Str("reason", reason).
		Float64("pnl", pnl).
		Float64("pnl_pct", pnlPct).
		Msg("position closed")
}

// buildFeatures combines market and text features as of now. The market
// builder receives history excluding the current bar.
func (e *Engine) buildFeatures(
	ticker string,
	current market.PriceBar,
	now time.Time,
	hist []market.PriceBar,
	visible []market.TextEvent,
) features.Features {
	return features.Features{
		Market: e.marketBuilder.Build(hist[:len(hist)-1], current),
		Text:   e.textBuilder.Build(ticker, now, visible),
	}
}

// markToMarket values open positions at each ticker's latest bar at or before
// now and returns cash plus that value.
func (e *Engine) markToMarket(st *runState, barsData map[string][]market.PriceBar, now time.Time) float64 {
	equity := st.broker.Capital()
	for _, pos := range st.broker.Positions() {
		hist := market.BarsUpTo(barsData[pos.Ticker], now)
		if len(hist) == 0 {
			// No bar yet: carry at entry.
			equity += pos.Notional()
			continue
		}
		equity += pos.Quantity * hist[len(hist)-1].Close
	}
	return equity
}

// collectTimestamps builds the sorted union of all tickers' bar timestamps
// inside [start, end].
func collectTimestamps(barsData map[string][]market.PriceBar, start, end time.Time) []time.Time {
	seen := make(map[int64]time.Time)
	for _, bars := range barsData {
		for _, b := range bars {
			if b.TS.Before(start) || b.TS.After(end) {
				continue
			}
			seen[b.TS.UnixNano()] = b.TS
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, ts := range seen {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// sortedTickers returns a sorted copy so per-timestamp iteration order is
// deterministic: ordering decides who consumes shared exposure headroom first.
func sortedTickers(tickers []string) []string {
	out := make([]string, len(tickers))
	copy(out, tickers)
	sort.Strings(out)
	return out
}
