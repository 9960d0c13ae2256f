package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/core"
)

// ErrSuperseded is returned when a newer fetch for the same view started
// before this one finished. Its result must not be shown.
var ErrSuperseded = errors.New("superseded by a newer request")

type ReminderSource interface {
	ListReminders(ctx context.Context, year, month int) ([]core.Reminder, error)
	MarkReminderPaid(ctx context.Context, id int64) error
}

type ReminderView struct {
	core.Reminder
	Urgency core.Urgency
}

// ReminderMonth is the reminder calendar for one month.
type ReminderMonth struct {
	Year      int
	Month     int
	Reminders []ReminderView
	Pending   core.Money // sum of unpaid installments
}

type ReminderService struct {
	src   ReminderSource
	guard *FetchGuard
	clock Clock
}

func NewReminderService(src ReminderSource, guard *FetchGuard, clock Clock) *ReminderService {
	return &ReminderService{src: src, guard: guard, clock: clock}
}

// Month fetches the reminders for year/month. When the user navigates to
// another month before the answer arrives, the older answer yields ErrSuperseded.
func (s *ReminderService) Month(ctx context.Context, year, month int) (ReminderMonth, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return ReminderMonth{}, err
	}
	key := cacheKey(sess.ID, "reminders")
	token := s.guard.Begin(key)

	reminders, err := s.src.ListReminders(ctx, year, month)
	if !s.guard.Accept(key, token) {
		slog.DebugContext(ctx, "Discarding superseded reminder fetch",
			"component", "services", "year", year, "month", month)
		return ReminderMonth{}, ErrSuperseded
	}
	if err != nil {
		return ReminderMonth{}, fmt.Errorf("list reminders %04d-%02d: %w", year, month, err)
	}
	return s.classify(year, month, reminders), nil
}

func (s *ReminderService) classify(year, month int, reminders []core.Reminder) ReminderMonth {
	today := s.clock.Today()
	out := ReminderMonth{Year: year, Month: month, Reminders: make([]ReminderView, len(reminders))}
	for i, r := range reminders {
		out.Reminders[i] = ReminderView{Reminder: r, Urgency: r.Urgency(today)}
		if !r.Paid {
			out.Pending.Cents += r.Amount.Cents
		}
	}
	return out
}

func (s *ReminderService) MarkPaid(ctx context.Context, id int64) error {
	if err := s.src.MarkReminderPaid(ctx, id); err != nil {
		return fmt.Errorf("mark reminder %d paid: %w", id, err)
	}
	slog.InfoContext(ctx, "Reminder marked paid", "component", "services", "reminder_id", id)
	return nil
}

// Forget drops the fetch tokens of a session that ended.
func (s *ReminderService) Forget(sessionID string) {
	s.guard.Forget(sessionID + ":")
}
