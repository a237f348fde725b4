package signal

import (
	"fmt"
	"math"

	"Wayne/internal/calculator"
	"Wayne/internal/model"
)

// EMARSIParams configures the EMA/RSI generator.
// A nil RSISellThreshold selects the one-threshold form where Sell is the
// negation of Buy once both indicators are defined.
type EMARSIParams struct {
	EMAWindow        int      `yaml:"ema_window"`
	RSIWindow        int      `yaml:"rsi_window"`
	RSIBuyThreshold  float64  `yaml:"rsi_buy_threshold"`
	RSISellThreshold *float64 `yaml:"rsi_sell_threshold"`
}

// DefaultEMARSIParams returns the production parameter set.
func DefaultEMARSIParams() EMARSIParams {
	sell := 20.0
	return EMARSIParams{
		EMAWindow:        25,
		RSIWindow:        3,
		RSIBuyThreshold:  82,
		RSISellThreshold: &sell,
	}
}

// Validate checks windows and threshold ranges.
func (p EMARSIParams) Validate() error {
	if p.EMAWindow < 1 {
		return fmt.Errorf("%w: ema_window must be at least 1, got %d", model.ErrInvalidInput, p.EMAWindow)
	}
	if p.RSIWindow < 2 {
		return fmt.Errorf("%w: rsi_window must be at least 2, got %d", model.ErrInvalidInput, p.RSIWindow)
	}
	if p.RSIBuyThreshold < 0 || p.RSIBuyThreshold > 100 {
		return fmt.Errorf("%w: rsi_buy_threshold %.2f outside [0,100]", model.ErrInvalidInput, p.RSIBuyThreshold)
	}
	if p.RSISellThreshold != nil && (*p.RSISellThreshold < 0 || *p.RSISellThreshold > 100) {
		return fmt.Errorf("%w: rsi_sell_threshold %.2f outside [0,100]", model.ErrInvalidInput, *p.RSISellThreshold)
	}
	return nil
}

// EMARSIGenerator buys when the close is above its EMA and RSI is above
// the buy threshold.
type EMARSIGenerator struct {
	params EMARSIParams
}

// NewEMARSI validates params and returns the generator.
func NewEMARSI(params EMARSIParams) (*EMARSIGenerator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &EMARSIGenerator{params: params}, nil
}

func (g *EMARSIGenerator) Name() string { return KindEMARSI }

// Generate computes EMA and RSI columns and the derived signals.
func (g *EMARSIGenerator) Generate(series *model.PriceSeries) (*model.SignaledSeries, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	closes := series.Closes()
	ema, err := calculator.CalculateEMA(closes, g.params.EMAWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	rsi, err := calculator.CalculateRSI(closes, g.params.RSIWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	buy := make([]bool, len(closes))
	sell := make([]bool, len(closes))
	for i, c := range closes {
		buy[i] = c > ema[i] && rsi[i] > g.params.RSIBuyThreshold
		if g.params.RSISellThreshold != nil {
			sell[i] = rsi[i] < *g.params.RSISellThreshold
		} else {
			sell[i] = !math.IsNaN(ema[i]) && !math.IsNaN(rsi[i]) && !buy[i]
		}
	}

	out, err := model.NewSignaledSeries(series, buy, sell)
	if err != nil {
		return nil, err
	}
	out.Indicators[model.ColumnEMA] = ema
	out.Indicators[model.ColumnRSI] = rsi
	return out, nil
}
