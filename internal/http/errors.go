package http

import (
	"context"
	"errors"
	"net/http"

	"financas/internal/api"
	"financas/internal/core"
	ilog "financas/internal/log"
	"financas/internal/services"
)

// fail renders err for the view that issued the request. Remote failures
// become a view-level message; nothing is retried.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fe      core.FieldErrors
		httpErr *api.HTTPError
	)
	switch {
	case errors.Is(err, api.ErrNotAuthenticated):
		s.expire(w, r)
	case errors.As(err, &fe):
		s.respond(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), "form_errors", fe)
	case errors.Is(err, services.ErrSuperseded):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrGoalNotFound):
		NotFoundError("Meta não encontrada").Write(w)
	case errors.Is(err, context.Canceled):
		ilog.FromContext(r.Context()).DebugContext(r.Context(), "Request cancelled by client", "path", r.URL.Path)
	case errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError:
		ilog.FromContext(r.Context()).WarnContext(r.Context(), "Remote API rejected request",
			"status_code", httpErr.StatusCode, "op", httpErr.Op)
		UnprocessableEntityError(api.UserMessage(err)).Write(w)
	default:
		s.events.LogError(r.Context(), "Remote API call failed", err, ilog.ComponentAPI, r.Method+" "+r.URL.Path, nil)
		BadGatewayError(api.UserMessage(err)).Write(w)
	}
}
