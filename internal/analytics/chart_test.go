package analytics

import (
	"reflect"
	"testing"

	"financas/internal/core"
)

func TestBuildChart(t *testing.T) {
	cs := BuildChart([]MonthBucket{
		{Key: "2023-12", Income: 150000, Expense: 45050},
		{Key: "2024-01", Income: 0, Expense: 99},
	})
	if !reflect.DeepEqual(cs.Labels, []string{"Dez", "Jan"}) {
		t.Fatalf("unexpected labels %v", cs.Labels)
	}
	if !reflect.DeepEqual(cs.Income, []float64{1500, 0}) || !reflect.DeepEqual(cs.Expense, []float64{450.5, 0.99}) {
		t.Fatalf("unexpected series %v / %v", cs.Income, cs.Expense)
	}
}

func TestBuildChart_Empty(t *testing.T) {
	cs := BuildChart(nil)
	if cs.Labels == nil || len(cs.Labels) != 0 {
		t.Fatal("expected empty, non-nil series for JSON encoding")
	}
}

func TestBuildDashboard(t *testing.T) {
	raws := []RawTransaction{
		{"id": "1", "tipo": "entrada", "valor": "1000.00", "data": "2024-05-05", "descricao": "Salário", "categoria": float64(1)},
		{"id": "2", "tipo": "saida", "valor": "-250.00", "data": "2024-05-10", "descricao": "Mercado", "categoria": float64(2)},
		{"id": "3", "tipo": "saida", "valor": 50.0, "data": "2024-06-01", "descricao": "Cinema", "categoria": float64(3)},
	}
	cats := []core.Category{{ID: 2, Name: "Alimentação", Kind: core.Expense}}

	d := BuildDashboard(raws, cats, Criteria{Kind: MatchAll}, today)
	if d.Summary != (Summary{Income: 100000, Expense: 30000, Balance: 70000}) {
		t.Fatalf("unexpected summary %+v", d.Summary)
	}
	if len(d.Months) != 2 || d.Chart.Labels[0] != "Mai" || d.Chart.Labels[1] != "Jun" {
		t.Fatalf("unexpected months %+v / %v", d.Months, d.Chart.Labels)
	}
	if d.Categories[0].Name != "Alimentação" || d.Categories[1].Name != "Category 3" {
		t.Fatalf("unexpected categories %+v", d.Categories)
	}
	if len(d.Insights) != 2 || d.Insights[1].Severity != SeveritySuccess {
		t.Fatalf("unexpected insights %+v", d.Insights)
	}

	filtered := BuildDashboard(raws, cats, Criteria{Kind: "expense"}, today)
	if filtered.Summary.Income != 0 || len(filtered.Transactions) != 2 {
		t.Fatalf("filter not applied: %+v", filtered.Summary)
	}
}
