package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"financas/internal/amqp"
	"financas/internal/calendar"
	"financas/internal/calendar/memory"
	"financas/internal/core"
)

type failingCalendar struct{ err error }

func (f failingCalendar) UpsertReminder(context.Context, calendar.Event) error { return f.err }
func (f failingCalendar) DeleteReminder(context.Context, int64) error          { return f.err }

func notice(urgency core.Urgency) *amqp.ReminderNotice {
	r := core.Reminder{
		ID:               42,
		Title:            "Notebook",
		Amount:           core.Money{Cents: 35000},
		DueDate:          core.NewDate(2024, 6, 12),
		InstallmentIndex: 3,
		InstallmentTotal: 10,
	}
	return amqp.NewReminderNotice("sid-1", "ana@example.com", r, urgency)
}

func TestCalendarWorker_HandleReminderNotice(t *testing.T) {
	cal := memory.New()
	w := NewCalendarWorker(cal)

	if err := w.HandleReminderNotice(context.Background(), notice(core.DueSoon)); err != nil {
		t.Fatalf("HandleReminderNotice() error: %v", err)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.ID != calendar.EventID(42) {
		t.Errorf("ID = %q, want %q", got.ID, calendar.EventID(42))
	}
	if got.Summary != "Notebook (3/10): R$ 350,00" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Date.ISO() != "2024-06-12" {
		t.Errorf("Date = %s, want 2024-06-12", got.Date.ISO())
	}
	if synced, removed, failed := w.Stats(); synced != 1 || removed != 0 || failed != 0 {
		t.Errorf("Stats() = %d, %d, %d; want 1, 0, 0", synced, removed, failed)
	}
}

func TestCalendarWorker_EscalationOverwritesEvent(t *testing.T) {
	cal := memory.New()
	w := NewCalendarWorker(cal)
	ctx := context.Background()

	for _, u := range []core.Urgency{core.DueSoon, core.Overdue, core.Overdue} {
		if err := w.HandleReminderNotice(ctx, notice(u)); err != nil {
			t.Fatalf("HandleReminderNotice(%s) error: %v", u, err)
		}
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Urgency != core.Overdue {
		t.Errorf("Urgency = %s, want overdue", events[0].Urgency)
	}
	if cal.Writes() != 3 {
		t.Errorf("Writes() = %d, want 3", cal.Writes())
	}
}

func TestCalendarWorker_PaidNoticeRemovesEvent(t *testing.T) {
	cal := memory.New()
	w := NewCalendarWorker(cal)
	ctx := context.Background()

	if err := w.HandleReminderNotice(ctx, notice(core.Overdue)); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleReminderNotice(ctx, notice(core.Paid)); err != nil {
		t.Fatalf("paid notice: %v", err)
	}
	if events := cal.Events(); len(events) != 0 {
		t.Errorf("events after payment = %+v, want none", events)
	}
	// A redelivered paid notice finds nothing to remove and still succeeds.
	if err := w.HandleReminderNotice(ctx, notice(core.Paid)); err != nil {
		t.Fatalf("redelivered paid notice: %v", err)
	}
	if synced, removed, failed := w.Stats(); synced != 1 || removed != 2 || failed != 0 {
		t.Errorf("Stats() = %d, %d, %d; want 1, 2, 0", synced, removed, failed)
	}
}

func TestCalendarWorker_WriterError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewCalendarWorker(failingCalendar{err: boom})

	err := w.HandleReminderNotice(context.Background(), notice(core.Overdue))
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapping %v", err, boom)
	}
	if synced, _, failed := w.Stats(); synced != 0 || failed != 1 {
		t.Errorf("Stats() = %d, %d; want 0, 1", synced, failed)
	}
}

func TestCalendarWorker_RejectionIsPermanent(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantPermanent bool
	}{
		{"rejected", fmt.Errorf("%w: 403 forbidden", calendar.ErrRejected), true},
		{"transient", errors.New("503 backend error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewCalendarWorker(failingCalendar{err: tt.err})
			for _, u := range []core.Urgency{core.DueSoon, core.Paid} {
				err := w.HandleReminderNotice(context.Background(), notice(u))
				if got := errors.Is(err, amqp.ErrPermanent); got != tt.wantPermanent {
					t.Errorf("%s: permanent = %v, want %v (err %v)", u, got, tt.wantPermanent, err)
				}
			}
		})
	}
}

func TestCalendarWorker_BadDueDate(t *testing.T) {
	w := NewCalendarWorker(memory.New())
	msg := notice(core.DueSoon)
	msg.DueDate = "12/06/2024"

	err := w.HandleReminderNotice(context.Background(), msg)
	if !errors.Is(err, amqp.ErrPermanent) {
		t.Fatalf("error = %v, want a permanent failure for an unparseable due date", err)
	}
}
