package strategy

import "Wayne/internal/model"

// NoStrategy buys at the first close and sells at the last one.
type NoStrategy struct {
	capital float64
}

// NewNoStrategy returns a buy-and-hold benchmark.
func NewNoStrategy(capital float64) (*NoStrategy, error) {
	if err := checkCapital(capital); err != nil {
		return nil, err
	}
	return &NoStrategy{capital: capital}, nil
}

func (s *NoStrategy) Name() string { return NameNoStrategy }

// Apply ignores the signal columns.
func (s *NoStrategy) Apply(signals *model.SignaledSeries) (*model.InvestResult, error) {
	if err := checkSignals(signals); err != nil {
		return nil, err
	}
	bars := signals.Series.Bars
	l := newLedger(s.capital, len(bars))
	l.enter(bars[0].Close)
	for _, b := range bars {
		l.mark(b.Close)
	}
	l.exit(bars[len(bars)-1].Close)
	return l.result(l.cash), nil
}
