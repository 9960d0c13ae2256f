package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"financas/internal/session"
)

// isHTMX reports whether the request was issued by htmx rather than a full navigation.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to url: through HX-Redirect for htmx requests,
// with a 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// idParam reads a positive numeric path parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Aguarde um instante e tente novamente.").
		TriggerErrorNotification("Muitas requisições. Aguarde um instante.").
		Write(w)
}

// sessionID is the id of the request's session, or "" outside the
// authenticated routes.
func sessionID(r *http.Request) string {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess.ID
	}
	return ""
}
