package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/session"
	"financas/internal/storage"
)

// NoticeLedger remembers which reminder notices were already published.
type NoticeLedger interface {
	RecordNotice(ctx context.Context, n storage.Notice, at time.Time) (bool, error)
	ForgetNotice(ctx context.Context, reminderID int64, urgency core.Urgency) error
	Announced(ctx context.Context, reminderID int64) (bool, error)
	PurgeNotices(ctx context.Context, before time.Time) (int64, error)
}

type NoticePublisher interface {
	PublishReminderNotice(ctx context.Context, msg *amqp.ReminderNotice) error
}

// SessionDirectory lists the sessions the worker may act for and ends the
// ones the remote API no longer accepts.
type SessionDirectory interface {
	Active(ctx context.Context) ([]session.Session, error)
	End(ctx context.Context, id string) error
}

// ScanResult counts what one scan did.
type ScanResult struct {
	Sessions  int
	Checked   int
	Published int
	Skipped   int
	Failed    int
}

// NoticeService announces reminders that became due soon or overdue, and
// retracts the announcement once such a reminder is paid.
type NoticeService struct {
	sessions  SessionDirectory
	reminders ReminderSource
	ledger    NoticeLedger
	publisher NoticePublisher
	window    int
	location  *time.Location
}

func NewNoticeService(
	sessions SessionDirectory,
	reminders ReminderSource,
	ledger NoticeLedger,
	publisher NoticePublisher,
	dueSoonDays int,
	loc *time.Location,
) *NoticeService {
	if dueSoonDays < 0 {
		dueSoonDays = core.DueSoonDays
	}
	if loc == nil {
		loc = time.Local
	}
	return &NoticeService{
		sessions:  sessions,
		reminders: reminders,
		ledger:    ledger,
		publisher: publisher,
		window:    dueSoonDays,
		location:  loc,
	}
}

// scanMonths covers overdue installments from last month and the due-soon
// window spilling into next month.
func scanMonths(today core.Date) [][2]int {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([][2]int, 0, 3)
	for _, offset := range []int{-1, 0, 1} {
		m := first.AddDate(0, offset, 0)
		out = append(out, [2]int{m.Year(), int(m.Month())})
	}
	return out
}

// ScanAndPublish classifies every unpaid reminder of every active session at
// now and publishes one notice per reminder and urgency. A paid reminder that
// was announced before gets a single paid notice.
func (s *NoticeService) ScanAndPublish(ctx context.Context, now time.Time) (ScanResult, error) {
	var res ScanResult
	sessions, err := s.sessions.Active(ctx)
	if err != nil {
		return res, fmt.Errorf("list sessions: %w", err)
	}
	today := core.DateOf(now.In(s.location))

	for i := range sessions {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sess := sessions[i]
		res.Sessions++
		if err := s.scanSession(session.WithSession(ctx, &sess), sess, today, now, &res); err != nil {
			if errors.Is(err, api.ErrNotAuthenticated) {
				slog.InfoContext(ctx, "Session rejected by remote API, ending it",
					"component", "services", "session_id", sess.ID)
				if err := s.sessions.End(ctx, sess.ID); err != nil {
					slog.WarnContext(ctx, "Failed to end session", "component", "services", "error", err)
				}
				continue
			}
			slog.ErrorContext(ctx, "Reminder scan failed for session",
				"component", "services", "session_id", sess.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Reminder scan finished",
		"component", "services",
		"sessions", res.Sessions,
		"checked", res.Checked,
		"published", res.Published,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

func (s *NoticeService) scanSession(ctx context.Context, sess session.Session, today core.Date, now time.Time, res *ScanResult) error {
	seen := make(map[int64]bool)
	for _, ym := range scanMonths(today) {
		reminders, err := s.reminders.ListReminders(ctx, ym[0], ym[1])
		if err != nil {
			return err
		}
		for _, r := range reminders {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			if r.Paid {
				s.retract(ctx, sess, r, now, res)
				continue
			}
			res.Checked++
			urgency := core.ClassifyDue(r.DueDate, today, s.window)
			if urgency == core.Upcoming {
				continue
			}
			s.announce(ctx, sess, r, urgency, now, res)
		}
	}
	return nil
}

func (s *NoticeService) announce(ctx context.Context, sess session.Session, r core.Reminder, urgency core.Urgency, now time.Time, res *ScanResult) {
	fresh, err := s.ledger.RecordNotice(ctx, storage.Notice{
		ReminderID: r.ID,
		Urgency:    urgency,
		SessionID:  sess.ID,
		DueDate:    r.DueDate,
	}, now)
	if err != nil {
		res.Failed++
		slog.ErrorContext(ctx, "Failed to record notice", "component", "services", "reminder_id", r.ID, "error", err)
		return
	}
	if !fresh {
		res.Skipped++
		return
	}

	if err := s.publisher.PublishReminderNotice(ctx, amqp.NewReminderNotice(sess.ID, sess.Email, r, urgency)); err != nil {
		res.Failed++
		slog.ErrorContext(ctx, "Failed to publish notice",
			"component", "services", "reminder_id", r.ID, "urgency", urgency, "error", err)
		// Unrecord so the next scan retries.
		if err := s.ledger.ForgetNotice(ctx, r.ID, urgency); err != nil {
			slog.ErrorContext(ctx, "Failed to forget notice", "component", "services", "reminder_id", r.ID, "error", err)
		}
		return
	}
	res.Published++
}

func (s *NoticeService) retract(ctx context.Context, sess session.Session, r core.Reminder, now time.Time, res *ScanResult) {
	announced, err := s.ledger.Announced(ctx, r.ID)
	if err != nil {
		res.Failed++
		slog.ErrorContext(ctx, "Failed to look up notice", "component", "services", "reminder_id", r.ID, "error", err)
		return
	}
	if announced {
		s.announce(ctx, sess, r, core.Paid, now, res)
	}
}

// Purge drops ledger entries older than retention.
func (s *NoticeService) Purge(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	return s.ledger.PurgeNotices(ctx, now.Add(-retention))
}
