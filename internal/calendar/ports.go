// Package calendar pushes installment reminders to an external calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"

	"financas/internal/amqp"
	"financas/internal/core"
)

// Event is the calendar entry for one installment reminder.
type Event struct {
	ID          string
	ReminderID  int64
	Summary     string
	Description string
	Date        core.Date
	Urgency     core.Urgency
	Attendee    string
}

// Ports for outbound adapters.
type (
	EventWriter interface {
		// UpsertReminder creates the event or overwrites the one already stored
		// under the same id, so redelivered notices are harmless.
		UpsertReminder(ctx context.Context, e Event) error
	}

	EventDeleter interface {
		// DeleteReminder removes the reminder's event. A missing event is not
		// an error.
		DeleteReminder(ctx context.Context, reminderID int64) error
	}
)

// ErrRejected wraps calendar failures that a retry of the same request cannot
// fix, such as a forbidden calendar or a malformed event.
var ErrRejected = errors.New("calendar rejected the request")

// EventID derives the calendar event id from the reminder id. Google Calendar
// accepts lowercase base32hex characters only (a-v, 0-9).
func EventID(reminderID int64) string {
	return fmt.Sprintf("financas%010d", reminderID)
}

// EventFromNotice renders a reminder notice as a calendar event.
func EventFromNotice(n *amqp.ReminderNotice) (Event, error) {
	due, err := n.Due()
	if err != nil {
		return Event{}, fmt.Errorf("notice %d: %w", n.ReminderID, err)
	}
	summary := fmt.Sprintf("%s: %s", n.Title, core.FormatBRL(n.AmountCents))
	if n.Total > 1 {
		summary = fmt.Sprintf("%s (%d/%d): %s", n.Title, n.Installment, n.Total, core.FormatBRL(n.AmountCents))
	}
	return Event{
		ID:          EventID(n.ReminderID),
		ReminderID:  n.ReminderID,
		Summary:     summary,
		Description: fmt.Sprintf("Situação: %s. Vencimento em %s.", n.Urgency.Label(), due.Format("02/01/2006")),
		Date:        due,
		Urgency:     n.Urgency,
		Attendee:    n.Email,
	}, nil
}
