// Package worker turns reminder notices consumed from AMQP into calendar events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"financas/internal/amqp"
	"financas/internal/calendar"
	"financas/internal/core"
)

// Calendar is the calendar the worker keeps in step with the notices.
type Calendar interface {
	calendar.EventWriter
	calendar.EventDeleter
}

// CalendarWorker keeps one calendar event per announced reminder. Redelivered
// or escalated notices overwrite the existing event; a paid notice removes it.
type CalendarWorker struct {
	cal Calendar

	synced  atomic.Int64
	removed atomic.Int64
	failed  atomic.Int64
}

func NewCalendarWorker(cal Calendar) *CalendarWorker {
	return &CalendarWorker{cal: cal}
}

// HandleReminderNotice processes a single notice from AMQP. A returned error
// makes the consumer requeue the delivery unless it is permanent.
func (w *CalendarWorker) HandleReminderNotice(ctx context.Context, msg *amqp.ReminderNotice) error {
	slog.InfoContext(ctx, "Processing reminder notice",
		"component", "calendar",
		"reminder_id", msg.ReminderID,
		"urgency", msg.Urgency,
		"due_date", msg.DueDate)

	if msg.Urgency == core.Paid {
		if err := w.cal.DeleteReminder(ctx, msg.ReminderID); err != nil {
			return w.fail(fmt.Errorf("remove calendar event %s: %w", calendar.EventID(msg.ReminderID), err))
		}
		w.removed.Add(1)
		slog.InfoContext(ctx, "Removed paid reminder from calendar",
			"component", "calendar",
			"reminder_id", msg.ReminderID)
		return nil
	}

	event, err := calendar.EventFromNotice(msg)
	if err != nil {
		return w.fail(fmt.Errorf("%w: build event: %w", amqp.ErrPermanent, err))
	}

	if err := w.cal.UpsertReminder(ctx, event); err != nil {
		return w.fail(fmt.Errorf("upsert calendar event %s: %w", event.ID, err))
	}
	w.synced.Add(1)

	slog.InfoContext(ctx, "Successfully synced reminder",
		"component", "calendar",
		"reminder_id", msg.ReminderID,
		"event_id", event.ID,
		"amount_cents", msg.AmountCents)
	return nil
}

// fail counts err and marks calendar rejections permanent so the notice is
// not redelivered.
func (w *CalendarWorker) fail(err error) error {
	w.failed.Add(1)
	if errors.Is(err, calendar.ErrRejected) && !errors.Is(err, amqp.ErrPermanent) {
		return fmt.Errorf("%w: %w", amqp.ErrPermanent, err)
	}
	return err
}

// Stats reports how many events were written, removed and failed.
func (w *CalendarWorker) Stats() (synced, removed, failed int64) {
	return w.synced.Load(), w.removed.Load(), w.failed.Load()
}
