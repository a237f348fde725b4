package signal

import (
	"fmt"

	"Wayne/internal/model"
)

// Generator turns a price series into a series carrying Buy/Sell flags.
type Generator interface {
	Name() string
	Generate(series *model.PriceSeries) (*model.SignaledSeries, error)
}

// Generator names accepted by New.
const (
	KindEMARSI = "ema_rsi"
	KindMACD   = "macd"
)

// New builds the generator registered under kind.
func New(kind string, emaRSI EMARSIParams, macd MACDParams) (Generator, error) {
	switch kind {
	case KindEMARSI:
		return NewEMARSI(emaRSI)
	case KindMACD:
		return NewMACD(macd)
	default:
		return nil, fmt.Errorf("%w: unknown signal generator %q", model.ErrInvalidInput, kind)
	}
}

func checkSeries(series *model.PriceSeries) error {
	if series == nil || series.Len() == 0 {
		return fmt.Errorf("%w: empty price series", model.ErrInvalidInput)
	}
	return nil
}
