package analytics

import (
	"strconv"
	"strings"

	"financas/internal/core"
)

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

const (
	concentrationLimit = 40.0
	savingsTarget      = 20.0
)

type (
	Severity string

	Insight struct {
		Severity       Severity
		Title          string
		Message        string
		Recommendation string
	}
)

// GenerateInsights applies the fixed rule set to aggregated totals. categories
// must be ordered as AggregateByCategory returns them. The deficit and savings
// rules are mutually exclusive.
func GenerateInsights(categories []CategoryTotal, totalIncome, totalExpense int64) []Insight {
	var out []Insight

	if len(categories) > 0 {
		top := categories[0]
		pct := percent(top.Total, totalExpense)
		sev := SeverityWarning
		if pct > concentrationLimit {
			sev = SeverityDanger
		}
		out = append(out, Insight{
			Severity:       sev,
			Title:          "Maior categoria de gastos",
			Message:        top.Name + " representa " + formatPercent(pct) + "% das suas despesas.",
			Recommendation: "Revise os gastos em " + top.Name + " e veja onde é possível economizar.",
		})
	}

	balance := totalIncome - totalExpense
	switch {
	case totalExpense > totalIncome && totalIncome > 0:
		out = append(out, Insight{
			Severity:       SeverityDanger,
			Title:          "Gastos acima da renda",
			Message:        "Suas despesas superam a renda em " + core.FormatBRL(totalExpense-totalIncome) + ".",
			Recommendation: "Corte despesas não essenciais para equilibrar o orçamento.",
		})
	case balance > 0 && totalIncome > 0:
		rate := percent(balance, totalIncome)
		rec := "Tente guardar pelo menos 20% da sua renda todo mês."
		if rate >= savingsTarget {
			rec = "Ótimo ritmo! Considere investir o valor economizado."
		}
		out = append(out, Insight{
			Severity:       SeveritySuccess,
			Title:          "Taxa de economia",
			Message:        "Você está economizando " + formatPercent(rate) + "% da sua renda.",
			Recommendation: rec,
		})
	}
	return out
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// formatPercent renders one decimal with a comma separator, e.g. 45,5.
func formatPercent(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 1, 64), ".", ",", 1)
}
