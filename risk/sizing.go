// Package risk sizes entries and decides exits. The sizer enforces the
// per-name and portfolio exposure caps before an order is ever created; the
// paper broker trusts it and never re-checks affordability.
package risk

// Allocation reasons.
const (
	ReasonNormalEntry      = "normal_entry"
	ReasonMaxTotalExposure = "max_total_exposure_reached"
)

// Allocation is an ephemeral sizing decision, consumed immediately by order
// creation. A zero-notional allocation with ReasonMaxTotalExposure is distinct
// from a nil reject: callers must check both.
type Allocation struct {
	Ticker         string
	TargetNotional float64
	TargetQuantity float64
	SFinal         float64
	Reason         string
}

// SizerConfig carries the exposure policy.
type SizerConfig struct {
	KellyScale       float64
	MaxPerName       float64
	MaxTotalExposure float64
}

// Sizer maps a smoothed score and current exposure state to a target notional.
type Sizer struct {
	cfg SizerConfig
}

// NewSizer creates a Sizer with the given policy.
func NewSizer(cfg SizerConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// Size returns the allocation for a prospective entry, nil when there is no
// edge (sFinal below neutral or Kelly fraction non-positive). capital is total
// equity (cash plus open exposure); exposures maps ticker to current entry
// notional.
func (s *Sizer) Size(ticker string, sFinal, capital float64, exposures map[string]float64) *Allocation {
	if sFinal < 0.5 {
		return nil
	}

	// Kelly-lite: f = k * (2s-1)+, a scaled, clamped approximation of the
	// optimal bet fraction.
	kellyFraction := s.cfg.KellyScale * max0(2*sFinal-1)
	if kellyFraction <= 0 {
		return nil
	}

	targetNotional := kellyFraction * capital

	if perNameCap := s.cfg.MaxPerName * capital; targetNotional > perNameCap {
		targetNotional = perNameCap
	}

	totalExposure := 0.0
	for _, e := range exposures {
		totalExposure += e
	}
	headroom := s.cfg.MaxTotalExposure*capital - totalExposure

	if headroom <= 0 {
		return &Allocation{
			Ticker: ticker,
			SFinal: sFinal,
			Reason: ReasonMaxTotalExposure,
		}
	}

	if targetNotional > headroom {
		targetNotional = headroom
	}

	// Sector caps are configured but not enforced here: there is no sector
	// taxonomy wired in. Extension point.

	return &Allocation{
		Ticker:         ticker,
		TargetNotional: targetNotional,
		SFinal:         sFinal,
		Reason:         ReasonNormalEntry,
	}
}

func max0(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
