package model

import (
	"fmt"

	"github.com/samber/lo"
)

// InvestResult is the outcome of one simulation run.
type InvestResult struct {
	CapitalStart float64   `json:"capital_start"`
	CapitalEnd   float64   `json:"capital_end"`
	PositionsEnd float64   `json:"positions_end"`
	Drawdown     float64   `json:"drawdown"` // 0.0 ~ 1.0
	PlatformFees float64   `json:"platform_fees"`
	CapitalCurve []float64 `json:"capital_curve"`
}

// Validate checks the result invariants.
func (r *InvestResult) Validate() error {
	if r.CapitalStart <= 0 {
		return fmt.Errorf("%w: capital start %.2f must be positive", ErrInvalidInput, r.CapitalStart)
	}
	if r.PositionsEnd < 0 {
		return fmt.Errorf("%w: negative positions %.4f", ErrInvalidInput, r.PositionsEnd)
	}
	if r.Drawdown < 0 || r.Drawdown > 1 {
		return fmt.Errorf("%w: drawdown %.4f outside [0,1]", ErrInvalidInput, r.Drawdown)
	}
	return nil
}

// Profit is the absolute gain over the period.
func (r *InvestResult) Profit() float64 { return r.CapitalEnd - r.CapitalStart }

// ProfitPercentage is the gain relative to starting capital, in percent.
func (r *InvestResult) ProfitPercentage() float64 {
	return r.Profit() / r.CapitalStart * 100
}

// Min returns the lowest point of the capital curve.
func (r *InvestResult) Min() float64 { return lo.Min(r.CapitalCurve) }

// Max returns the highest point of the capital curve.
func (r *InvestResult) Max() float64 { return lo.Max(r.CapitalCurve) }

// CapitalStructure describes what the final capital is made of.
func (r *InvestResult) CapitalStructure() string {
	if r.PositionsEnd == 0 {
		return "liquidity"
	}
	return fmt.Sprintf("%.2f x %.2f", r.PositionsEnd, r.CapitalEnd/r.PositionsEnd)
}

// InvestmentEvaluation ties a simulation result to the symbol and strategy that produced it.
type InvestmentEvaluation struct {
	Symbol   string        `json:"symbol"`
	Strategy string        `json:"strategy"`
	Result   *InvestResult `json:"result"`
}

// Profit delegates to the underlying result.
func (e InvestmentEvaluation) Profit() float64 { return e.Result.Profit() }
