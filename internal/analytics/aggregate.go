package analytics

import (
	"sort"

	"financas/internal/core"
)

// MonthWindow is the number of trailing months kept for charting.
const MonthWindow = 6

type (
	MonthBucket struct {
		Key     string // YYYY-MM
		Income  int64
		Expense int64
	}

	CategoryTotal struct {
		CategoryID int64
		Name       string
		Total      int64
		Count      int
	}

	Summary struct {
		Income  int64
		Expense int64
		Balance int64
	}
)

// AggregateByMonth sums income and expense per calendar month, ascending by key,
// keeping only the last MonthWindow buckets. Transactions without a valid date
// are skipped.
func AggregateByMonth(txs []core.Transaction) []MonthBucket {
	byKey := make(map[string]*MonthBucket)
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		key := tx.Date.MonthKey()
		b, ok := byKey[key]
		if !ok {
			b = &MonthBucket{Key: key}
			byKey[key] = b
		}
		if tx.Kind == core.Income {
			b.Income += tx.Amount.Cents
		} else {
			b.Expense += tx.Amount.Cents
		}
	}

	out := make([]MonthBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > MonthWindow {
		out = out[len(out)-MonthWindow:]
	}
	return out
}

// AggregateByCategory totals expenses per category, largest total first.
// Equal totals are ordered by category id.
func AggregateByCategory(txs []core.Transaction, categories map[int64]core.Category) []CategoryTotal {
	byID := make(map[int64]*CategoryTotal)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		ct, ok := byID[tx.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: tx.CategoryID, Name: core.CategoryLabel(tx.CategoryID, categories)}
			byID[tx.CategoryID] = ct
		}
		ct.Total += tx.Amount.Cents
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// Totals sums every transaction into income, expense and balance.
func Totals(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		if tx.Kind == core.Income {
			s.Income += tx.Amount.Cents
		} else {
			s.Expense += tx.Amount.Cents
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}
