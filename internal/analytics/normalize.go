// Package analytics turns raw remote transaction records into the derived
// views shown by the client: filtered lists, monthly and per-category
// aggregates, rule-based insights and chart series.
//
// Every function in this package is pure. The current date is always passed
// in by the caller so results are reproducible.
package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"financas/internal/core"
)

// RawTransaction is a transaction record as decoded from the remote JSON payload.
type RawTransaction map[string]any

// WarningKind tells a missing field apart from one whose value had to be coerced.
type WarningKind string

const (
	WarnDefaulted WarningKind = "defaulted"
	WarnCoerced   WarningKind = "coerced"
)

// Warning reports a field the normalizer substituted. Normalization never fails;
// warnings are the only signal that a record was malformed.
type Warning struct {
	RecordID string
	Field    string
	Kind     WarningKind
	Reason   string
}

const incomeType = "entrada"

var (
	dateFields  = []string{"data_movimentacao", "data"}
	titleFields = []string{"descricao", "titulo"}
	catFields   = []string{"categoria", "categoria_id"}
)

// Normalize maps a raw record onto the canonical transaction shape.
func Normalize(raw RawTransaction, today core.Date) (core.Transaction, []Warning) {
	n := normalizer{raw: raw}
	n.tx.ID = idString(raw["id"])

	n.kind()
	n.amount()
	n.date(today)
	n.title()
	n.category()
	n.plan()
	if notes, ok := raw["observacoes"].(string); ok {
		n.tx.Notes = strings.TrimSpace(notes)
	}
	return n.tx, n.warnings
}

// NormalizeAll normalizes records in order and concatenates their warnings.
func NormalizeAll(raws []RawTransaction, today core.Date) ([]core.Transaction, []Warning) {
	txs := make([]core.Transaction, 0, len(raws))
	var warnings []Warning
	for _, raw := range raws {
		tx, w := Normalize(raw, today)
		txs = append(txs, tx)
		warnings = append(warnings, w...)
	}
	return txs, warnings
}

type normalizer struct {
	raw      RawTransaction
	tx       core.Transaction
	warnings []Warning
}

func (n *normalizer) warn(field string, kind WarningKind, reason string) {
	n.warnings = append(n.warnings, Warning{RecordID: n.tx.ID, Field: field, Kind: kind, Reason: reason})
}

func (n *normalizer) kind() {
	n.tx.Kind = core.Expense
	v, present := n.raw["tipo"]
	if !present || v == nil {
		n.warn("tipo", WarnDefaulted, "missing type, assuming expense")
		return
	}
	s, ok := v.(string)
	if !ok {
		n.warn("tipo", WarnCoerced, "non-string type, assuming expense")
		return
	}
	if strings.ToLower(strings.TrimSpace(s)) == incomeType {
		n.tx.Kind = core.Income
	}
}

func (n *normalizer) amount() {
	v, present := n.raw["valor"]
	if !present || v == nil {
		n.warn("valor", WarnDefaulted, "missing amount, using 0")
		return
	}
	cents, ok := toCents(v)
	if !ok {
		n.warn("valor", WarnCoerced, "non-numeric amount, using 0")
		return
	}
	n.tx.Amount = core.Money{Cents: cents}
}

func (n *normalizer) date(today core.Date) {
	s, field := firstString(n.raw, dateFields)
	if s == "" {
		n.tx.Date = today
		n.warn("data", WarnDefaulted, "missing date, using today")
		return
	}
	d, err := core.ParseDate(s)
	if err != nil {
		n.warn(field, WarnCoerced, "unparseable date "+strconv.Quote(s))
		return
	}
	n.tx.Date = d
}

func (n *normalizer) title() {
	s, _ := firstString(n.raw, titleFields)
	if s == "" {
		n.tx.Title = core.DefaultTitle
		n.warn("descricao", WarnDefaulted, "missing description")
		return
	}
	n.tx.Title = s
}

func (n *normalizer) category() {
	for _, f := range catFields {
		v, present := n.raw[f]
		if !present || v == nil {
			continue
		}
		if id, ok := toInt(v); ok {
			n.tx.CategoryID = id
			return
		}
		n.warn(f, WarnCoerced, "invalid category id")
		return
	}
	n.warn("categoria", WarnDefaulted, "missing category")
}

func (n *normalizer) plan() {
	method, _ := n.raw["forma_pagamento"].(string)
	if strings.ToLower(strings.TrimSpace(method)) != "parcelado" {
		n.tx.Plan = core.SinglePayment()
		return
	}
	count, ok := toInt(n.raw["quantidade_parcelas"])
	if !ok || count < 2 {
		n.warn("quantidade_parcelas", WarnCoerced, "installment plan without a valid count")
		n.tx.Plan = core.SinglePayment()
		return
	}
	n.tx.Plan = core.Installment(int(count))
}

// firstString returns the first non-blank string among fields and the field it came from.
func firstString(raw RawTransaction, fields []string) (string, string) {
	for _, f := range fields {
		if s, ok := raw[f].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, f
			}
		}
	}
	return "", ""
}

func toCents(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		c, err := core.FloatToCents(x)
		return c, err == nil
	case int:
		return absInt(int64(x)) * 100, true
	case int64:
		return absInt(x) * 100, true
	case json.Number:
		return toCents(string(x))
	case string:
		c, _, err := core.ParseSignedDecimalToCents(x)
		return c, err == nil
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
