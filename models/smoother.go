package models

// Smoother applies per-ticker exponential smoothing to raw composite scores.
// Each backtest run owns its own Smoother so runs never share state; the same
// goes for independent tickers within a run.
type Smoother struct {
	beta float64
	prev map[string]float64
}

// NewSmoother returns a Smoother with the given EMA weight on the new
// observation.
func NewSmoother(beta float64) *Smoother {
	return &Smoother{
		beta: beta,
		prev: make(map[string]float64),
	}
}

// Smooth folds raw into the ticker's running score and returns the result.
// A ticker seen for the first time starts from the neutral 0.5.
func (s *Smoother) Smooth(ticker string, raw float64) float64 {
	prev, ok := s.prev[ticker]
	if !ok {
		prev = 0.5
	}
	out := (1-s.beta)*prev + s.beta*raw
	s.prev[ticker] = out
	return out
}

// Last returns the ticker's current smoothed score and whether it has one.
func (s *Smoother) Last(ticker string) (float64, bool) {
	v, ok := s.prev[ticker]
	return v, ok
}

// Reset forgets the ticker's running score.
func (s *Smoother) Reset(ticker string) {
	delete(s.prev, ticker)
}

// ResetAll forgets every ticker.
func (s *Smoother) ResetAll() {
	s.prev = make(map[string]float64)
}
