package strategy

import (
	"fmt"

	"Wayne/internal/model"
)

// TrailingStopParams configures the trailing-stop strategies.
type TrailingStopParams struct {
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TrailingStopPct float64 `yaml:"trailing_stop_pct"`
	// Secure re-raises the trigger on every ratchet.
	Secure bool `yaml:"secure"`
	// BreachOnClose evaluates the stop and the trigger against the close
	// instead of the bar's low and high.
	BreachOnClose bool `yaml:"breach_on_close"`
}

// DefaultTrailingStopParams returns the production parameter set.
func DefaultTrailingStopParams() TrailingStopParams {
	return TrailingStopParams{StopLossPct: 0.2, TrailingStopPct: 0.001}
}

// Validate checks that both percentages lie in [0,1].
func (p TrailingStopParams) Validate() error {
	if p.StopLossPct < 0 || p.StopLossPct > 1 {
		return fmt.Errorf("%w: stop_loss_pct %.4f outside [0,1]", model.ErrInvalidInput, p.StopLossPct)
	}
	if p.TrailingStopPct < 0 || p.TrailingStopPct > 1 {
		return fmt.Errorf("%w: trailing_stop_pct %.4f outside [0,1]", model.ErrInvalidInput, p.TrailingStopPct)
	}
	return nil
}

// arm sets the stop and trigger levels after an entry at price.
func (p TrailingStopParams) arm(l *ledger, price float64) {
	l.stopLoss = price * (1 - p.StopLossPct)
	l.trigger = price * (1 + p.TrailingStopPct)
}

// step runs the stop-loss check, or the ratchet when the stop holds, for
// one bar of an open position.
func (p TrailingStopParams) step(l *ledger, bar model.OHLCV) {
	low, high := bar.Low, bar.High
	if p.BreachOnClose {
		low, high = bar.Close, bar.Close
	}
	if low < l.stopLoss {
		l.exit(l.stopLoss)
		return
	}
	if high > l.trigger {
		if stop := high * (1 - p.StopLossPct); stop > l.stopLoss {
			l.stopLoss = stop
		}
		if p.Secure {
			l.trigger = high * (1 + p.TrailingStopPct)
		}
	}
}

// TrailingStopStrategy enters on Buy and only leaves through its trailing stop.
type TrailingStopStrategy struct {
	capital float64
	params  TrailingStopParams
}

// NewTrailingStop validates capital and params.
func NewTrailingStop(capital float64, params TrailingStopParams) (*TrailingStopStrategy, error) {
	if err := checkCapital(capital); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &TrailingStopStrategy{capital: capital, params: params}, nil
}

func (s *TrailingStopStrategy) Name() string { return NameTrailingStop }

func (s *TrailingStopStrategy) Apply(signals *model.SignaledSeries) (*model.InvestResult, error) {
	if err := checkSignals(signals); err != nil {
		return nil, err
	}
	bars := signals.Series.Bars
	l := newLedger(s.capital, len(bars))
	for i, b := range bars {
		if l.long() {
			s.params.step(l, b)
		} else if signals.Buy[i] && l.cash > 0 {
			l.enter(b.Close)
			s.params.arm(l, b.Close)
		}
		l.mark(b.Close)
	}
	return l.result(l.value(bars[len(bars)-1].Close)), nil
}
