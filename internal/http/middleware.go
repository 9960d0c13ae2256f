package http

import (
	"errors"
	"net/http"

	ilog "financas/internal/log"
	"financas/internal/session"
)

const (
	loginPath        = "/login"
	expiredLoginPath = "/login?expired=1"
)

// requireSession resolves the session cookie and stores the session in the
// request context. Requests without a usable session go back to the login page.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := session.IDFromRequest(r)
		if id == "" {
			s.toLogin(w, r, false)
			return
		}
		sess, err := s.deps.Sessions.Resolve(r.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
				s.events.LogError(r.Context(), "Session lookup failed", err, ilog.ComponentSession, "resolve", nil)
			}
			s.expire(w, r)
			return
		}
		ctx := session.WithSession(r.Context(), sess)
		ctx = ilog.WithLogger(ctx, ilog.FromContext(ctx).With(ilog.FieldSessionID, sess.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// expire ends the request's session, clears the cookie and asks the user to
// log in again.
func (s *Server) expire(w http.ResponseWriter, r *http.Request) {
	if id := session.IDFromRequest(r); id != "" {
		s.endSession(r, id)
		s.events.LogSession(r.Context(), id, "expired")
	}
	s.toLogin(w, r, true)
}

func (s *Server) endSession(r *http.Request, id string) {
	if err := s.deps.Sessions.End(r.Context(), id); err != nil {
		s.events.LogError(r.Context(), "Failed to end session", err, ilog.ComponentSession, ilog.OpLogout,
			ilog.NewFields().WithSession(id))
	}
	if s.deps.Dashboard != nil {
		s.deps.Dashboard.Forget(id)
	}
	if s.deps.Reminders != nil {
		s.deps.Reminders.Forget(id)
	}
}

func (s *Server) toLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	http.SetCookie(w, session.ClearCookie(s.opts.CookieSecure))
	target := loginPath
	if expired {
		target = expiredLoginPath
	}
	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusUnauthorized).
			Redirect(target).
			Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
