package analytics

import "financas/internal/core"

// Dashboard bundles every derived view for one render.
type Dashboard struct {
	Transactions []core.Transaction
	Summary      Summary
	Months       []MonthBucket
	Categories   []CategoryTotal
	Insights     []Insight
	Chart        ChartSeries
	Warnings     []Warning
}

// BuildDashboard runs the whole pipeline in one call: normalize, filter,
// aggregate, then derive insights and chart series from the filtered set.
func BuildDashboard(raws []RawTransaction, categories []core.Category, c Criteria, today core.Date) Dashboard {
	all, warnings := NormalizeAll(raws, today)
	txs := Filter(all, c)
	idx := core.IndexCategories(categories)

	summary := Totals(txs)
	months := AggregateByMonth(txs)
	byCat := AggregateByCategory(txs, idx)

	return Dashboard{
		Transactions: txs,
		Summary:      summary,
		Months:       months,
		Categories:   byCat,
		Insights:     GenerateInsights(byCat, summary.Income, summary.Expense),
		Chart:        BuildChart(months),
		Warnings:     warnings,
	}
}
