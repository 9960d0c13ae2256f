package http

import (
	"errors"
	"net/http"

	"financas/internal/api"
	ilog "financas/internal/log"
	"financas/internal/services"
)

type remindersView struct {
	services.ReminderMonth
	Prev, Next MonthParams
	Error      string
}

// handleReminders serves the reminder calendar of one month. htmx requests
// get the list partial; a response that lost the race to a newer month
// selection is dropped with 204.
func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	mp := ParseMonthParams(r.URL.Query(), s.deps.Clock.Today())
	v := remindersView{Prev: mp.Prev(), Next: mp.Next()}

	month, err := s.deps.Reminders.Month(r.Context(), mp.Year, mp.Month)
	if err != nil {
		if isHTMX(r) || errors.Is(err, api.ErrNotAuthenticated) {
			s.fail(w, r, err)
			return
		}
		s.events.LogError(r.Context(), "Reminder list failed", err, ilog.ComponentServices, ilog.OpRender,
			ilog.NewFields().WithSession(sessionID(r)))
		v.Error = api.UserMessage(err)
	}
	v.ReminderMonth = month
	v.Year, v.Month = mp.Year, mp.Month

	if isHTMX(r) {
		s.render(w, r, "reminder_list", v)
		return
	}
	s.render(w, r, "reminders.html", s.page(r, "Lembretes", "reminders", v))
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		BadRequestError("Lembrete inválido").Write(w)
		return
	}
	if err := s.deps.Reminders.MarkPaid(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.events.LogReminderPaid(r.Context(), sessionID(r), id)

	mp := ParseMonthParams(r.URL.Query(), s.deps.Clock.Today())
	NewHTMXResponse().
		TriggerRemindersChanged(mp.Year, mp.Month).
		TriggerSuccessNotification("Parcela marcada como paga").
		Write(w)
}
