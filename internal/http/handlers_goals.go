package http

import (
	"errors"
	"net/http"

	"financas/internal/api"
	"financas/internal/core"
	ilog "financas/internal/log"
	"financas/internal/services"
)

type goalsView struct {
	Goals []services.GoalView
	Today core.Date
	Error string
}

func (s *Server) handleGoalsPage(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Goals.List(r.Context())
	v := goalsView{Goals: goals, Today: s.deps.Clock.Today()}
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			s.expire(w, r)
			return
		}
		s.events.LogError(r.Context(), "Goal list failed", err, ilog.ComponentServices, ilog.OpRender, nil)
		v.Error = api.UserMessage(err)
	}
	s.render(w, r, "goals.html", s.page(r, "Metas", "goals", v))
}

func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Goals.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, "goal_list", goalsView{Goals: goals, Today: s.deps.Clock.Today()})
}

func (s *Server) goalInput(w http.ResponseWriter, r *http.Request) (core.GoalInput, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return core.GoalInput{}, false
	}
	in, err := p.GoalInput()
	if err != nil {
		s.fail(w, r, err)
		return core.GoalInput{}, false
	}
	return in, true
}

// goalChanged answers a successful mutation: the goal list reloads itself and
// the form errors are cleared.
func (s *Server) goalChanged(w http.ResponseWriter, r *http.Request, goalID int64, op, msg string) {
	s.events.LogGoalChanged(r.Context(), sessionID(r), goalID, op)
	s.respond(w, r, NewHTMXResponse().
		TriggerGoalsChanged().
		TriggerFormReset().
		TriggerSuccessNotification(msg), "form_errors", core.FieldErrors(nil))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	in, ok := s.goalInput(w, r)
	if !ok {
		return
	}
	g, err := s.deps.Goals.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.goalChanged(w, r, g.ID, ilog.OpCreate, "Meta criada")
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		BadRequestError("Meta inválida").Write(w)
		return
	}
	in, ok := s.goalInput(w, r)
	if !ok {
		return
	}
	if _, err := s.deps.Goals.Update(r.Context(), id, in); err != nil {
		s.fail(w, r, err)
		return
	}
	s.goalChanged(w, r, id, ilog.OpUpdate, "Meta atualizada")
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		BadRequestError("Meta inválida").Write(w)
		return
	}
	if err := s.deps.Goals.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.events.LogGoalChanged(r.Context(), sessionID(r), id, ilog.OpDelete)
	NewHTMXResponse().
		TriggerGoalsChanged().
		TriggerSuccessNotification("Meta excluída").
		Write(w)
}

// handleContribute adds an amount to a goal and answers with the updated card.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		BadRequestError("Meta inválida").Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	amount, err := p.Amount("amount")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.deps.Goals.Contribute(r.Context(), id, amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.events.LogGoalChanged(r.Context(), sessionID(r), id, ilog.OpContribute)

	msg := "Contribuição registrada"
	if g.Status == core.GoalCompleted {
		msg = "Meta concluída!"
	}
	s.respond(w, r, NewHTMXResponse().TriggerSuccessNotification(msg), "goal_card", g)
}
