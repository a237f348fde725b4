package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"
)

// CalculateRSI computes the Wilder-smoothed RSI of closes, scaled to [0,100].
// Requires window+1 closes for the first value; earlier values are NaN.
// RSI is 100 while no close has fallen yet, including on a flat series.
func CalculateRSI(closes []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, errors.New("rsi window must be at least 2")
	}
	if len(closes) <= window {
		return nanSeries(len(closes)), nil
	}
	out := talib.Rsi(copyCloses(closes), window)

	// talib reports 0 when both averages are 0. The loss average stays 0
	// until the first down move.
	for i := 1; i < len(closes) && closes[i] >= closes[i-1]; i++ {
		out[i] = 100
	}
	return maskWarmup(out, window), nil
}
