package strategy

import "Wayne/internal/model"

// SimpleStrategy enters on Buy and exits on Sell, both at the bar close.
type SimpleStrategy struct {
	capital float64
}

// NewSimpleStrategy returns a signal-driven strategy.
func NewSimpleStrategy(capital float64) (*SimpleStrategy, error) {
	if err := checkCapital(capital); err != nil {
		return nil, err
	}
	return &SimpleStrategy{capital: capital}, nil
}

func (s *SimpleStrategy) Name() string { return NameSimple }

func (s *SimpleStrategy) Apply(signals *model.SignaledSeries) (*model.InvestResult, error) {
	if err := checkSignals(signals); err != nil {
		return nil, err
	}
	bars := signals.Series.Bars
	l := newLedger(s.capital, len(bars))
	for i, b := range bars {
		if !l.long() {
			if signals.Buy[i] && l.cash > 0 {
				l.enter(b.Close)
			}
		} else if signals.Sell[i] {
			l.exit(b.Close)
		}
		l.mark(b.Close)
	}
	return l.result(l.value(bars[len(bars)-1].Close)), nil
}
