package analytics

import (
	"strconv"
	"strings"

	"financas/internal/core"
)

// MatchAll is the selector value that disables the kind or category predicate.
const MatchAll = "all"

// Criteria holds the list-view filters. Empty values behave like MatchAll.
type Criteria struct {
	SearchText string
	Kind       string
	CategoryID string
}

// Filter returns the transactions matching every predicate, in their original order.
// Search text is compared against the title and the numeric category id, not the
// category name.
func Filter(txs []core.Transaction, c Criteria) []core.Transaction {
	search := strings.ToLower(strings.TrimSpace(c.SearchText))
	kind := strings.TrimSpace(c.Kind)
	category := strings.TrimSpace(c.CategoryID)

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		catID := strconv.FormatInt(tx.CategoryID, 10)
		if search != "" &&
			!strings.Contains(strings.ToLower(tx.Title), search) &&
			!strings.Contains(catID, search) {
			continue
		}
		if kind != "" && kind != MatchAll && string(tx.Kind) != kind {
			continue
		}
		if category != "" && category != MatchAll && catID != category {
			continue
		}
		out = append(out, tx)
	}
	return out
}
