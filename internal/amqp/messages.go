package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"financas/internal/core"
)

// ReminderNotice announces that an installment reminder became due soon or
// overdue, or that an announced reminder was paid. It carries everything a
// consumer needs, so no callback to the remote API is required.
type ReminderNotice struct {
	ReminderID  int64        `json:"reminder_id"`
	SessionID   string       `json:"session_id"`
	Email       string       `json:"email"`
	Title       string       `json:"title"`
	AmountCents int64        `json:"amount_cents"`
	DueDate     string       `json:"due_date"` // YYYY-MM-DD
	Installment int          `json:"installment"`
	Total       int          `json:"total"`
	Urgency     core.Urgency `json:"urgency"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewReminderNotice builds the notice for r as classified at today.
func NewReminderNotice(sessionID, email string, r core.Reminder, urgency core.Urgency) *ReminderNotice {
	return &ReminderNotice{
		ReminderID:  r.ID,
		SessionID:   sessionID,
		Email:       email,
		Title:       r.Title,
		AmountCents: r.Amount.Cents,
		DueDate:     r.DueDate.ISO(),
		Installment: r.InstallmentIndex,
		Total:       r.InstallmentTotal,
		Urgency:     urgency,
		Timestamp:   time.Now().UTC(),
	}
}

// Due parses DueDate.
func (m *ReminderNotice) Due() (core.Date, error) {
	return core.ParseDate(m.DueDate)
}

func (m *ReminderNotice) Validate() error {
	if m.ReminderID <= 0 {
		return errors.New("missing reminder id")
	}
	if _, err := m.Due(); err != nil {
		return fmt.Errorf("due date %q: %w", m.DueDate, err)
	}
	switch m.Urgency {
	case core.DueSoon, core.Overdue, core.Paid:
	default:
		return fmt.Errorf("unexpected urgency %q", m.Urgency)
	}
	return nil
}

func (m *ReminderNotice) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderNoticeFromJSON decodes and validates a notice body.
func ReminderNoticeFromJSON(data []byte) (*ReminderNotice, error) {
	var msg ReminderNotice
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
