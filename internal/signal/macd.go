package signal

import (
	"fmt"

	"Wayne/internal/calculator"
	"Wayne/internal/model"
)

// MACDParams configures the MACD generator.
type MACDParams struct {
	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`
}

// DefaultMACDParams returns the production parameter set.
func DefaultMACDParams() MACDParams {
	return MACDParams{BuyThreshold: 0, SellThreshold: -1}
}

// Validate rejects a sell threshold above the buy threshold.
func (p MACDParams) Validate() error {
	if p.SellThreshold > p.BuyThreshold {
		return fmt.Errorf("%w: macd sell_threshold %.4f above buy_threshold %.4f",
			model.ErrInvalidInput, p.SellThreshold, p.BuyThreshold)
	}
	return nil
}

// MACDGenerator buys when the MACD diff is above the buy threshold and sells
// when it drops below the sell threshold.
type MACDGenerator struct {
	params MACDParams
}

// NewMACD validates params and returns the generator.
func NewMACD(params MACDParams) (*MACDGenerator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &MACDGenerator{params: params}, nil
}

func (g *MACDGenerator) Name() string { return KindMACD }

// Generate computes the MACD diff column and the derived signals.
func (g *MACDGenerator) Generate(series *model.PriceSeries) (*model.SignaledSeries, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	diff := calculator.CalculateMACDDiff(series.Closes())

	buy := make([]bool, len(diff))
	sell := make([]bool, len(diff))
	for i, d := range diff {
		buy[i] = d > g.params.BuyThreshold
		sell[i] = d < g.params.SellThreshold
	}

	out, err := model.NewSignaledSeries(series, buy, sell)
	if err != nil {
		return nil, err
	}
	out.Indicators[model.ColumnMACDDiff] = diff
	return out, nil
}
