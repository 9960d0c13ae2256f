package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// UnassignedCategory is the category id used when a record carries none.
const UnassignedCategory int64 = 0

// DefaultTitle is shown for transactions without a description.
const DefaultTitle = "Sem descrição"

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentPlan is nil-able on Transaction; Installments == 0 means single payment.
	PaymentPlan struct {
		Installments int
	}

	Transaction struct {
		ID         string
		Date       Date
		Title      string
		CategoryID int64
		Amount     Money // always non-negative; direction is carried by Kind
		Kind       Kind
		Notes      string
		Plan       *PaymentPlan
	}

	Category struct {
		ID   int64
		Name string
		Kind Kind
	}
)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ParseKind maps a form or query value onto a Kind. Unknown values are expense.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(Income)) {
		return Income
	}
	return Expense
}

// RemoteType returns the type value the remote API expects for this kind.
func (k Kind) RemoteType() string {
	if k == Income {
		return "entrada"
	}
	return "saida"
}

// Validate rejects the zero date. Any other value came through time.Date or
// ParseDate and is already a real calendar day.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp; only the date part is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// ISO formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MonthKey returns the "YYYY-MM" bucket key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// DaysUntil returns the whole number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// SinglePayment returns the plan of an upfront ("à vista") payment.
func SinglePayment() *PaymentPlan {
	return &PaymentPlan{}
}

// Installment returns a plan split into count payments.
func Installment(count int) *PaymentPlan {
	if count < 2 {
		return SinglePayment()
	}
	return &PaymentPlan{Installments: count}
}

func (p *PaymentPlan) IsInstallment() bool {
	return p != nil && p.Installments > 1
}

// CategoryLabel resolves a category name, falling back to a synthetic label.
func CategoryLabel(id int64, categories map[int64]Category) string {
	if c, ok := categories[id]; ok && strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return "Category " + strconv.FormatInt(id, 10)
}

// IndexCategories builds the id lookup used by CategoryLabel.
func IndexCategories(categories []Category) map[int64]Category {
	out := make(map[int64]Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out
}
