package calculator

import "github.com/markcheno/go-talib"

// Standard MACD periods.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACDLookback is the number of leading bars without a MACD diff value.
const MACDLookback = (MACDSlow - 1) + (MACDSignal - 1)

// CalculateMACDDiff returns MACD(12,26) minus its 9-period signal line.
// The first MACDLookback values are NaN.
func CalculateMACDDiff(closes []float64) []float64 {
	if len(closes) <= MACDLookback {
		return nanSeries(len(closes))
	}
	_, _, hist := talib.Macd(copyCloses(closes), MACDFast, MACDSlow, MACDSignal)
	return maskWarmup(hist, MACDLookback)
}
