package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateEMA computes the exponential moving average of closes with
// smoothing 2/(window+1), seeded with the mean of the first window closes.
// The first window-1 values are NaN.
func CalculateEMA(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("ema window must be positive")
	}
	lookback := window - 1
	if len(closes) <= lookback {
		return nanSeries(len(closes)), nil
	}
	out := talib.Ema(copyCloses(closes), window)
	return maskWarmup(out, lookback), nil
}

// copyCloses keeps talib away from the caller's slice.
func copyCloses(closes []float64) []float64 {
	return append([]float64(nil), closes...)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func maskWarmup(values []float64, lookback int) []float64 {
	for i := 0; i < lookback && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}
