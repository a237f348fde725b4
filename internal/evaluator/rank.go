package evaluator

import (
	"sort"

	"Wayne/internal/model"
)

// Rank returns evaluations ordered by profit, highest first. Equal profits
// are ordered by symbol. The input slice is left untouched.
func Rank(evals []model.InvestmentEvaluation) []model.InvestmentEvaluation {
	out := append([]model.InvestmentEvaluation(nil), evals...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Profit(), out[j].Profit()
		if pi != pj {
			return pi > pj
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Top returns at most n leading evaluations of a ranking.
func Top(ranked []model.InvestmentEvaluation, n int) []model.InvestmentEvaluation {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
