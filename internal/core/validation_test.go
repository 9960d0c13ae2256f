package core

import (
	"errors"
	"strings"
	"testing"
)

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T (%v)", err, err)
	}
	return fe
}

func TestCredentials_Validate(t *testing.T) {
	if err := (Credentials{Email: "ana@example.com", Password: "segredo"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fe := fieldErrors(t, Credentials{Email: "", Password: "123"}.Validate())
	if fe["email"] == "" || fe["password"] == "" {
		t.Fatalf("expected email and password errors, got %v", fe)
	}
	fe = fieldErrors(t, Credentials{Email: "not-an-email", Password: "segredo"}.Validate())
	if fe["email"] != "Email inválido" {
		t.Fatalf("got %v", fe)
	}
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name   string
		in     Registration
		fields []string
	}{
		{"valid", Registration{Name: "Ana", Email: "ana@example.com", Password: "123456", ConfirmPassword: "123456"}, nil},
		{"short name after trim", Registration{Name: " A ", Email: "ana@example.com", Password: "123456", ConfirmPassword: "123456"}, []string{"name"}},
		{"short password", Registration{Name: "Ana", Email: "ana@example.com", Password: "12345", ConfirmPassword: "12345"}, []string{"password"}},
		{"mismatch", Registration{Name: "Ana", Email: "ana@example.com", Password: "123456", ConfirmPassword: "654321"}, []string{"confirm_password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fe := fieldErrors(t, err)
			if len(fe) != len(tt.fields) {
				t.Fatalf("expected %v, got %v", tt.fields, fe)
			}
			for _, f := range tt.fields {
				if fe[f] == "" {
					t.Errorf("missing error for %s", f)
				}
			}
		})
	}
}

func TestPasswordReset_Validate(t *testing.T) {
	fe := fieldErrors(t, PasswordReset{Email: "ana@example.com", Password: "123456", ConfirmPassword: "123456"}.Validate())
	if _, ok := fe["code"]; !ok || len(fe) != 1 {
		t.Fatalf("expected only code error, got %v", fe)
	}
}

func TestGoalInput_Validate(t *testing.T) {
	valid := GoalInput{Title: "Viagem", Target: Money{500000}, DueDate: NewDate(2025, 1, 1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fe := fieldErrors(t, GoalInput{Title: strings.Repeat("x", 101), Current: Money{-1}}.Validate())
	for _, f := range []string{"title", "target", "current", "due_date"} {
		if fe[f] == "" {
			t.Errorf("missing error for %s", f)
		}
	}
}

func TestTransactionInput_Validate(t *testing.T) {
	valid := TransactionInput{
		Date:       NewDate(2024, 3, 1),
		Title:      "Mercado",
		CategoryID: 3,
		Amount:     Money{4590},
		Kind:       Expense,
		Plan:       Installment(3),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := valid
	bad.Amount = Money{}
	bad.CategoryID = UnassignedCategory
	bad.Kind = Kind("other")
	bad.Plan = &PaymentPlan{Installments: 1}
	fe := fieldErrors(t, bad.Validate())
	for _, f := range []string{"amount", "category", "kind", "installments"} {
		if fe[f] == "" {
			t.Errorf("missing error for %s", f)
		}
	}
	if !strings.HasPrefix(fe.Error(), "validation failed: amount:") {
		t.Errorf("errors should be listed in field order, got %q", fe.Error())
	}
}
