package strategy

import (
	"fmt"

	"Wayne/internal/model"
)

// FeeRate is the proportional platform fee charged on every fill.
const FeeRate = 0.001

// Strategy names as they appear in reports.
const (
	NameNoStrategy       = "No strat"
	NameSimple           = "Simple strat"
	NameTrailingStop     = "Trailing strat"
	NameDualTrailingStop = "TS strat"
)

// Strategy replays a signaled series and reports the resulting capital.
type Strategy interface {
	Name() string
	Apply(signals *model.SignaledSeries) (*model.InvestResult, error)
}

func checkCapital(capital float64) error {
	if capital <= 0 {
		return fmt.Errorf("%w: starting capital %.2f must be positive", model.ErrInvalidInput, capital)
	}
	return nil
}

func checkSignals(signals *model.SignaledSeries) error {
	if signals.Len() == 0 {
		return fmt.Errorf("%w: empty signaled series", model.ErrInvalidInput)
	}
	if len(signals.Buy) != signals.Len() || len(signals.Sell) != signals.Len() {
		return fmt.Errorf("%w: signal columns do not match %d bars", model.ErrInvalidInput, signals.Len())
	}
	return nil
}

// ledger is the mutable simulation state of a single Apply call.
type ledger struct {
	capitalStart float64
	cash         float64
	positions    float64
	stopLoss     float64
	trigger      float64
	fees         float64
	peak         float64
	drawdown     float64
	curve        []float64
}

func newLedger(capital float64, size int) *ledger {
	return &ledger{
		capitalStart: capital,
		cash:         capital,
		peak:         capital,
		curve:        make([]float64, 0, size),
	}
}

func (l *ledger) long() bool { return l.positions > 0 }

// enter converts all cash into units at price, net of fee.
func (l *ledger) enter(price float64) {
	units := l.cash / price
	l.fees += units * price * FeeRate
	l.positions = units * (1 - FeeRate)
	l.cash = 0
}

// exit converts all units into cash at price, net of fee.
func (l *ledger) exit(price float64) {
	gross := l.positions * price
	l.fees += gross * FeeRate
	l.cash = gross * (1 - FeeRate)
	l.positions = 0
}

func (l *ledger) value(price float64) float64 {
	if !l.long() {
		return l.cash
	}
	return l.positions * price
}

// mark records one mark-to-market point and updates peak and drawdown.
func (l *ledger) mark(price float64) {
	v := l.value(price)
	if v > l.peak {
		l.peak = v
	}
	if dd := (l.peak - v) / l.peak; dd > l.drawdown {
		l.drawdown = dd
	}
	l.curve = append(l.curve, v)
}

func (l *ledger) result(capitalEnd float64) *model.InvestResult {
	return &model.InvestResult{
		CapitalStart: l.capitalStart,
		CapitalEnd:   capitalEnd,
		PositionsEnd: l.positions,
		Drawdown:     l.drawdown,
		PlatformFees: l.fees,
		CapitalCurve: l.curve,
	}
}
