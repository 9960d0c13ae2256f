package core

import (
	"net/mail"
	"sort"
	"strings"
)

// MinPasswordLength mirrors the backend's password rule.
const MinPasswordLength = 6

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

type (
	Credentials struct {
		Email    string
		Password string
	}

	Registration struct {
		Name            string
		Email           string
		Password        string
		ConfirmPassword string
	}

	PasswordReset struct {
		Email           string
		Code            string
		Password        string
		ConfirmPassword string
	}

	GoalInput struct {
		Title         string
		Description   string
		Target        Money
		Current       Money
		DueDate       Date
		CategoryLabel string
	}

	TransactionInput struct {
		Date       Date
		Title      string
		CategoryID int64
		Amount     Money
		Kind       Kind
		Notes      string
		Plan       *PaymentPlan
	}
)

func validateEmail(fe FieldErrors, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		fe.add("email", "Email é obrigatório")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fe.add("email", "Email inválido")
	}
}

func validatePassword(fe FieldErrors, password, confirm string, checkConfirm bool) {
	if len(password) < MinPasswordLength {
		fe.add("password", "Senha deve ter pelo menos 6 caracteres")
	}
	if checkConfirm && password != confirm {
		fe.add("confirm_password", "As senhas não coincidem")
	}
}

func (c Credentials) Validate() error {
	fe := FieldErrors{}
	validateEmail(fe, c.Email)
	validatePassword(fe, c.Password, "", false)
	return fe.orNil()
}

func (r Registration) Validate() error {
	fe := FieldErrors{}
	if len([]rune(strings.TrimSpace(r.Name))) < 2 {
		fe.add("name", "Nome deve ter pelo menos 2 caracteres")
	}
	validateEmail(fe, r.Email)
	validatePassword(fe, r.Password, r.ConfirmPassword, true)
	return fe.orNil()
}

func (p PasswordReset) Validate() error {
	fe := FieldErrors{}
	validateEmail(fe, p.Email)
	if strings.TrimSpace(p.Code) == "" {
		fe.add("code", "Código é obrigatório")
	}
	validatePassword(fe, p.Password, p.ConfirmPassword, true)
	return fe.orNil()
}

func (g GoalInput) Validate() error {
	fe := FieldErrors{}
	if strings.TrimSpace(g.Title) == "" {
		fe.add("title", "Título é obrigatório")
	} else if len(g.Title) > 100 {
		fe.add("title", "Título muito longo (máx. 100 caracteres)")
	}
	if g.Target.Cents <= 0 {
		fe.add("target", "Valor da meta deve ser maior que zero")
	}
	if g.Current.Cents < 0 {
		fe.add("current", "Valor atual não pode ser negativo")
	}
	if g.DueDate.IsZero() {
		fe.add("due_date", "Data limite é obrigatória")
	}
	return fe.orNil()
}

func (t TransactionInput) Validate() error {
	fe := FieldErrors{}
	if err := t.Date.Validate(); err != nil {
		fe.add("date", "Data inválida")
	}
	if strings.TrimSpace(t.Title) == "" {
		fe.add("title", "Descrição é obrigatória")
	} else if len(t.Title) > 255 {
		fe.add("title", "Descrição muito longa (máx. 255 caracteres)")
	}
	if t.Amount.Cents <= 0 {
		fe.add("amount", "Valor deve ser maior que zero")
	}
	if t.CategoryID == UnassignedCategory {
		fe.add("category", "Selecione uma categoria")
	}
	if t.Kind != Income && t.Kind != Expense {
		fe.add("kind", "Tipo inválido")
	}
	if t.Plan != nil && t.Plan.Installments == 1 {
		fe.add("installments", "Parcelamento precisa de pelo menos 2 parcelas")
	}
	return fe.orNil()
}
