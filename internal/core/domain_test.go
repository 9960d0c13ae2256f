package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{" 2024-03-15 ", "2024-03-15", true},
		{"2024-03-15T10:30:00Z", "2024-03-15", true},
		{"2024-03-15T23:59:59-03:00", "2024-03-15", true},
		{"15/03/2024", "", false},
		{"", "", false},
		{"2024-13-01", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("%q: expected ErrInvalidDate, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got.ISO() != tc.want {
			t.Fatalf("%q: expected %s, got %s (err=%v)", tc.in, tc.want, got.ISO(), err)
		}
	}
}

func TestDate_MonthKeyAndDaysUntil(t *testing.T) {
	d := NewDate(2024, 1, 31)
	if d.MonthKey() != "2024-01" {
		t.Fatalf("unexpected month key %s", d.MonthKey())
	}
	if n := d.DaysUntil(NewDate(2024, 2, 7)); n != 7 {
		t.Fatalf("expected 7 days, got %d", n)
	}
	if n := d.DaysUntil(NewDate(2024, 1, 30)); n != -1 {
		t.Fatalf("expected -1 days, got %d", n)
	}
	if (Date{}).ISO() != "" {
		t.Fatal("zero date should format as empty string")
	}
}

func TestDate_Validate(t *testing.T) {
	if err := NewDate(2024, 2, 29).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Date{}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	// time.Date normalizes overflow, so Feb 30 is already Mar 1.
	if d := NewDate(2023, 2, 30); d.Validate() != nil || d.ISO() != "2023-03-01" {
		t.Fatalf("overflowing date = %s, err %v", d.ISO(), d.Validate())
	}
}

func TestParseKind(t *testing.T) {
	if ParseKind("income") != Income || ParseKind(" INCOME ") != Income {
		t.Fatal("expected income")
	}
	for _, in := range []string{"expense", "", "entrada", "other"} {
		if ParseKind(in) != Expense {
			t.Fatalf("%q: expected expense", in)
		}
	}
	if Income.RemoteType() != "entrada" || Expense.RemoteType() != "saida" {
		t.Fatal("unexpected remote type mapping")
	}
}

func TestPaymentPlan(t *testing.T) {
	if SinglePayment().IsInstallment() {
		t.Fatal("single payment is not an installment plan")
	}
	if Installment(1).IsInstallment() {
		t.Fatal("one installment collapses to single payment")
	}
	p := Installment(3)
	if !p.IsInstallment() || p.Installments != 3 {
		t.Fatalf("unexpected plan %+v", p)
	}
	var nilPlan *PaymentPlan
	if nilPlan.IsInstallment() {
		t.Fatal("nil plan is not an installment plan")
	}
}

func TestCategoryLabel(t *testing.T) {
	cats := IndexCategories([]Category{
		{ID: 1, Name: "Alimentação", Kind: Expense},
		{ID: 2, Name: "  ", Kind: Expense},
	})
	if got := CategoryLabel(1, cats); got != "Alimentação" {
		t.Fatalf("got %q", got)
	}
	if got := CategoryLabel(2, cats); got != "Category 2" {
		t.Fatalf("blank name should fall back, got %q", got)
	}
	if got := CategoryLabel(99, cats); got != "Category 99" {
		t.Fatalf("got %q", got)
	}
}

func TestGoal_Status(t *testing.T) {
	today := NewDate(2024, 6, 10)
	yesterday := NewDate(2024, 6, 9)
	tomorrow := NewDate(2024, 6, 11)

	tests := []struct {
		name string
		goal Goal
		want GoalStatus
	}{
		{"funded after deadline", Goal{Target: Money{100000}, Current: Money{100000}, DueDate: yesterday}, GoalCompleted},
		{"overfunded", Goal{Target: Money{100000}, Current: Money{150000}, DueDate: tomorrow}, GoalCompleted},
		{"past deadline", Goal{Target: Money{100000}, Current: Money{50000}, DueDate: yesterday}, GoalOverdue},
		{"due today", Goal{Target: Money{100000}, Current: Money{50000}, DueDate: today}, GoalActive},
		{"no deadline", Goal{Target: Money{100000}, Current: Money{0}}, GoalActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.Status(today); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGoal_ProgressAndRemaining(t *testing.T) {
	g := Goal{Target: Money{100000}, Current: Money{25000}}
	if g.Progress() != 25 {
		t.Fatalf("expected 25%%, got %v", g.Progress())
	}
	if g.Remaining().Cents != 75000 {
		t.Fatalf("expected 75000 remaining, got %d", g.Remaining().Cents)
	}

	over := Goal{Target: Money{100000}, Current: Money{250000}}
	if over.Progress() != 100 || over.Remaining().Cents != 0 {
		t.Fatalf("overfunded goal: progress=%v remaining=%d", over.Progress(), over.Remaining().Cents)
	}

	if (Goal{}).Progress() != 0 {
		t.Fatal("zero target must report 0 progress")
	}
}

func TestReminder_Urgency(t *testing.T) {
	today := NewDate(2024, 6, 10)
	tests := []struct {
		due  Date
		want Urgency
	}{
		{NewDate(2024, 6, 9), Overdue},
		{today, DueSoon},
		{NewDate(2024, 6, 17), DueSoon},
		{NewDate(2024, 6, 18), Upcoming},
	}
	for _, tt := range tests {
		r := Reminder{DueDate: tt.due}
		if got := r.Urgency(today); got != tt.want {
			t.Errorf("due %s: got %s, want %s", tt.due.ISO(), got, tt.want)
		}
	}
	if Overdue.Label() != "Atrasado" || GoalCompleted.Label() != "CONCLUÍDO" {
		t.Fatal("unexpected labels")
	}
}
