package http

// This file implements utilities for parsing and validating HTTP request data
// into the domain inputs the services accept.

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"financas/internal/analytics"
	"financas/internal/core"
)

const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from the query, falling back to
// today's month for missing or out-of-range values.
func ParseMonthParams(query url.Values, today core.Date) MonthParams {
	params := MonthParams{Year: today.Year(), Month: int(today.Month())}
	if y, err := strconv.Atoi(strings.TrimSpace(query.Get("year"))); err == nil && y >= 2000 && y <= 2100 {
		params.Year = y
	}
	if m, err := strconv.Atoi(strings.TrimSpace(query.Get("month"))); err == nil && m >= 1 && m <= 12 {
		params.Month = m
	}
	return params
}

// Prev returns the month before p.
func (p MonthParams) Prev() MonthParams {
	if p.Month == 1 {
		return MonthParams{Year: p.Year - 1, Month: 12}
	}
	return MonthParams{Year: p.Year, Month: p.Month - 1}
}

// Next returns the month after p.
func (p MonthParams) Next() MonthParams {
	if p.Month == 12 {
		return MonthParams{Year: p.Year + 1, Month: 1}
	}
	return MonthParams{Year: p.Year, Month: p.Month + 1}
}

// CriteriaFromQuery maps the list filters q, kind and category.
func CriteriaFromQuery(query url.Values) analytics.Criteria {
	return analytics.Criteria{
		SearchText: sanitizeInput(query.Get("q")),
		Kind:       sanitizeInput(query.Get("kind")),
		CategoryID: sanitizeInput(query.Get("category")),
	}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of the body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal([]byte(trimmed), &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Raw returns the value without trimming. Used for passwords.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	return p.formData.Get(key)
}

// Values returns every field as strings, for re-rendering a rejected form.
func (p *RequestBodyParser) Values() map[string]string {
	out := make(map[string]string)
	for k, v := range p.jsonData {
		out[k] = sanitizeInput(stringValue(v))
	}
	for k := range p.formData {
		out[k] = sanitizeInput(p.formData.Get(k))
	}
	delete(out, "password")
	delete(out, "confirm_password")
	return out
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// money parses a positive amount field; problems are recorded in fe.
func (p *RequestBodyParser) money(fe core.FieldErrors, key string, optional bool) core.Money {
	raw := p.Get(key)
	if raw == "" {
		if !optional {
			fe[key] = "Valor é obrigatório"
		}
		return core.Money{}
	}
	cents, negative, err := core.ParseSignedDecimalToCents(raw)
	if err != nil || negative {
		fe[key] = "Valor inválido"
		return core.Money{}
	}
	return core.Money{Cents: cents}
}

func (p *RequestBodyParser) date(fe core.FieldErrors, key string) core.Date {
	raw := p.Get(key)
	if raw == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		fe[key] = "Data inválida"
		return core.Date{}
	}
	return d
}

func (p *RequestBodyParser) int64Field(key string) int64 {
	v, err := strconv.ParseInt(p.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// TransactionInput builds the create-transaction input. Parse errors are
// merged with the domain validation so the form shows every problem at once.
func (p *RequestBodyParser) TransactionInput() (core.TransactionInput, error) {
	fe := core.FieldErrors{}
	in := core.TransactionInput{
		Date:       p.date(fe, "date"),
		Title:      p.Get("title"),
		CategoryID: p.int64Field("category"),
		Amount:     p.money(fe, "amount", false),
		Kind:       core.ParseKind(p.Get("kind")),
		Notes:      p.Get("notes"),
	}
	if p.Get("payment") == "parcelado" {
		n, err := strconv.Atoi(p.Get("installments"))
		if err != nil || n < 1 {
			fe["installments"] = "Número de parcelas inválido"
		} else {
			in.Plan = core.Installment(n)
		}
	} else {
		in.Plan = core.SinglePayment()
	}
	return in, mergeErrors(fe, in.Validate())
}

// GoalInput builds the create or update goal input.
func (p *RequestBodyParser) GoalInput() (core.GoalInput, error) {
	fe := core.FieldErrors{}
	in := core.GoalInput{
		Title:         p.Get("title"),
		Description:   p.Get("description"),
		Target:        p.money(fe, "target", false),
		Current:       p.money(fe, "current", true),
		DueDate:       p.date(fe, "due_date"),
		CategoryLabel: p.Get("category"),
	}
	return in, mergeErrors(fe, in.Validate())
}

// Amount parses one required, positive amount field.
func (p *RequestBodyParser) Amount(key string) (core.Money, error) {
	fe := core.FieldErrors{}
	m := p.money(fe, key, false)
	if len(fe) == 0 && m.Cents == 0 {
		fe[key] = "Valor deve ser maior que zero"
	}
	return m, mergeErrors(fe, nil)
}

// mergeErrors adds validation errors to parse errors; parse messages win.
func mergeErrors(fe core.FieldErrors, err error) error {
	if other, ok := err.(core.FieldErrors); ok {
		for k, v := range other {
			if _, exists := fe[k]; !exists {
				fe[k] = v
			}
		}
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
