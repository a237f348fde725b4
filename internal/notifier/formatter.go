package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"Wayne/internal/evaluator"
	"Wayne/internal/model"
)

// FormatReport formats the strategy comparison of one symbol into a Telegram message.
func FormatReport(r *evaluator.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n", html.EscapeString(r.Symbol), r.Signal, time.Now().Format("2006-01-02")))

	evals := r.Evaluations
	b.WriteString("<pre>")
	b.WriteString(fmt.Sprintf("%-17s", ""))
	for _, ev := range evals {
		b.WriteString(fmt.Sprintf("%16s", ev.Strategy))
	}
	b.WriteString("\n")

	row := func(label string, cell func(*model.InvestResult) string) {
		b.WriteString(fmt.Sprintf("%-17s", label))
		for _, ev := range evals {
			b.WriteString(fmt.Sprintf("%16s", cell(ev.Result)))
		}
		b.WriteString("\n")
	}
	row("Capital initial", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f", res.CapitalStart) })
	row("Duration", func(res *model.InvestResult) string { return fmt.Sprintf("%d x 1d", len(res.CapitalCurve)) })
	row("Capital final", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f", res.CapitalEnd) })
	row("Structure", func(res *model.InvestResult) string { return res.CapitalStructure() })
	row("Profit", func(res *model.InvestResult) string { return fmt.Sprintf("%+.2f", res.Profit()) })
	row("Profitability", func(res *model.InvestResult) string { return fmt.Sprintf("%+.2f%%", res.ProfitPercentage()) })
	row("Max drawdown", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f%%", res.Drawdown*100) })
	row("Platform fees", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f", res.PlatformFees) })
	row("Capital min", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f", res.Min()) })
	row("Capital max", func(res *model.InvestResult) string { return fmt.Sprintf("%.2f", res.Max()) })
	b.WriteString("</pre>\n")

	if len(r.Latest) > 0 {
		b.WriteString("\n🔔 <b>Last bar:</b>")
		for _, s := range r.Latest {
			b.WriteString(fmt.Sprintf(" %s %s", s.Generator, signalLabel(s)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func signalLabel(s evaluator.SignalState) string {
	switch {
	case s.Buy:
		return "BUY"
	case s.Sell:
		return "SELL"
	default:
		return "-"
	}
}

// FormatRanking formats the leading evaluations of a batch. total is the
// number of symbols that were evaluated.
func FormatRanking(evals []model.InvestmentEvaluation, total int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>Top %d of %d symbols</b> | %s\n\n", len(evals), total, time.Now().Format("2006-01-02")))
	if len(evals) == 0 {
		b.WriteString("No symbol could be evaluated.")
		return b.String()
	}
	for i, ev := range evals {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> %+.2f%% (%.2f → %.2f, dd %.1f%%)\n",
			i+1, html.EscapeString(ev.Symbol), ev.Result.ProfitPercentage(),
			ev.Result.CapitalStart, ev.Result.CapitalEnd, ev.Result.Drawdown*100))
	}
	b.WriteString(fmt.Sprintf("\nStrategy: %s", evals[0].Strategy))
	return b.String()
}

// FormatCatalogStatus formats the state of the coin catalog.
func FormatCatalogStatus(symbols int, updatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("📦 <b>Coin catalog</b>\n\n")
	b.WriteString(fmt.Sprintf("Tradable symbols: %d\n", symbols))
	if updatedAt.IsZero() {
		b.WriteString("Updated: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Updated: %s\n", updatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Wayne commands</b>\n\n")
	b.WriteString("/evaluate SYMBOL - backtest one symbol\n")
	b.WriteString("/rank - last batch ranking\n")
	b.WriteString("/catalog - coin catalog status\n")
	return b.String()
}
