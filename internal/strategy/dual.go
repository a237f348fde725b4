package strategy

import (
	"fmt"
	"time"

	"Wayne/internal/model"
)

// DualTrailingStopStrategy takes entries from a coarse signaled series and
// checks its stop on a finer execution series. One capital point is recorded
// per coarse bar.
type DualTrailingStopStrategy struct {
	capital float64
	fine    *model.PriceSeries
	params  TrailingStopParams
}

// NewDualTrailingStop validates its inputs. fine must contain a bar at
// every coarse open time passed to Apply.
func NewDualTrailingStop(capital float64, fine *model.PriceSeries, params TrailingStopParams) (*DualTrailingStopStrategy, error) {
	if err := checkCapital(capital); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if fine == nil || fine.Len() == 0 {
		return nil, fmt.Errorf("%w: empty execution series", model.ErrInvalidInput)
	}
	return &DualTrailingStopStrategy{capital: capital, fine: fine.Clone(), params: params}, nil
}

func (s *DualTrailingStopStrategy) Name() string { return NameDualTrailingStop }

func (s *DualTrailingStopStrategy) Apply(signals *model.SignaledSeries) (*model.InvestResult, error) {
	if err := checkSignals(signals); err != nil {
		return nil, err
	}
	coarse := signals.Series.Bars
	last := coarse[len(coarse)-1]
	step, err := model.IntervalDuration(signals.Series.Interval)
	if err != nil {
		return nil, err
	}
	// Fine bars past the last coarse period are not simulated.
	end := last.OpenTime.Add(step)
	l := newLedger(s.capital, len(coarse))

	cursor := 0
	for _, b := range s.fine.Bars {
		if cursor == len(coarse) {
			if !b.OpenTime.Before(end) {
				break
			}
		} else if b.OpenTime.After(coarse[cursor].OpenTime) {
			return nil, fmt.Errorf("%w: no %s bar at %s for %s",
				model.ErrAlignment, s.fine.Interval, coarse[cursor].OpenTime.Format(time.RFC3339), signals.Series.Symbol)
		}

		if l.long() {
			s.params.step(l, b)
		}

		if cursor < len(coarse) && b.OpenTime.Equal(coarse[cursor].OpenTime) {
			c := coarse[cursor]
			if !l.long() && signals.Buy[cursor] && l.cash > 0 {
				l.enter(c.Close)
				s.params.arm(l, c.Close)
			}
			l.mark(c.Close)
			cursor++
		}
	}
	if cursor < len(coarse) {
		return nil, fmt.Errorf("%w: %s series ends before %s bar at %s",
			model.ErrAlignment, s.fine.Interval, signals.Series.Interval, coarse[cursor].OpenTime.Format(time.RFC3339))
	}
	return l.result(l.value(last.Close)), nil
}
