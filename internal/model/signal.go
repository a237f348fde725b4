package model

import "fmt"

// Indicator column names.
const (
	ColumnEMA      = "EMA"
	ColumnRSI      = "RSI"
	ColumnMACDDiff = "MACD_DIFF"
)

// SignaledSeries is a PriceSeries augmented with indicator columns and
// aligned Buy/Sell flags. It is read-only once built.
type SignaledSeries struct {
	Series     *PriceSeries
	Indicators map[string][]float64
	Buy        []bool
	Sell       []bool
}

// NewSignaledSeries copies series and attaches the given signal columns.
func NewSignaledSeries(series *PriceSeries, buy, sell []bool) (*SignaledSeries, error) {
	if series == nil {
		return nil, fmt.Errorf("%w: nil series", ErrInvalidInput)
	}
	n := series.Len()
	if len(buy) != n || len(sell) != n {
		return nil, fmt.Errorf("%w: signal columns (%d buy, %d sell) do not match %d bars",
			ErrInvalidInput, len(buy), len(sell), n)
	}
	return &SignaledSeries{
		Series:     series.Clone(),
		Indicators: make(map[string][]float64),
		Buy:        append([]bool(nil), buy...),
		Sell:       append([]bool(nil), sell...),
	}, nil
}

// Len returns the number of bars.
func (s *SignaledSeries) Len() int {
	if s == nil || s.Series == nil {
		return 0
	}
	return s.Series.Len()
}

// Indicator returns the named column, or nil when absent.
func (s *SignaledSeries) Indicator(name string) []float64 {
	return s.Indicators[name]
}
