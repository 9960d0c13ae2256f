package http

import (
	"errors"
	"net/http"

	"financas/internal/api"
	"financas/internal/core"
	ilog "financas/internal/log"
	"financas/internal/session"
)

const (
	msgBadCredentials = "Email ou senha incorretos"
	msgBadRequest     = "Requisição inválida"
	msgSessionFailed  = "Não foi possível iniciar a sessão. Tente novamente."
	msgSessionExpired = "Sessão expirada, faça login novamente"
)

// Steps of the password reset flow.
const (
	stepEmail    = "email"
	stepCode     = "code"
	stepPassword = "password"
)

type authForm struct {
	page    string
	partial string
	title   string
}

var (
	loginForm    = authForm{page: "login.html", partial: "login_form", title: "Entrar"}
	registerForm = authForm{page: "register.html", partial: "register_form", title: "Criar conta"}
	resetForm    = authForm{page: "forgot_password.html", partial: "reset_flow", title: "Recuperar senha"}
)

// showForm renders only the form for htmx requests and the whole page otherwise.
func (s *Server) showForm(w http.ResponseWriter, r *http.Request, f authForm, status int, state formState) {
	b := NewHTMXResponse().Status(status)
	if isHTMX(r) {
		s.respond(w, r, b, f.partial, state)
		return
	}
	s.respond(w, r, b, f.page, s.page(r, f.title, "", state))
}

// authFailure maps an auth call error onto the form. fallback is used for
// rejections the API did not explain.
func (s *Server) authFailure(w http.ResponseWriter, r *http.Request, f authForm, state formState, err error, fallback string) {
	var (
		fe      core.FieldErrors
		httpErr *api.HTTPError
	)
	status := http.StatusUnprocessableEntity
	switch {
	case errors.As(err, &fe):
		state.Errors = fe
	case errors.Is(err, api.ErrNotAuthenticated):
		state.Message = fallback
	case errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError:
		state.Message = httpErr.Message
		if state.Message == "" {
			state.Message = fallback
		}
	default:
		s.events.LogError(r.Context(), "Auth request failed", err, ilog.ComponentAPI, f.partial, nil)
		state.Message = api.UserMessage(err)
		status = http.StatusBadGateway
	}
	s.showForm(w, r, f, status, state)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, f authForm, step string) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.showForm(w, r, f, http.StatusBadRequest, formState{Message: msgBadRequest, Step: step})
		return nil, false
	}
	return p, true
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	state := formState{}
	q := r.URL.Query()
	switch {
	case q.Get("expired") != "":
		state.Message = msgSessionExpired
	case q.Get("reset") != "":
		state.Notice = "Senha redefinida. Entre com a nova senha."
	case q.Get("registered") != "":
		state.Notice = "Conta criada. Entre para continuar."
	}
	s.render(w, r, loginForm.page, s.page(r, loginForm.title, "", state))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseForm(w, r, loginForm, "")
	if !ok {
		return
	}
	state := formState{Values: p.Values()}
	res, err := s.deps.Auth.Login(r.Context(), core.Credentials{Email: p.Get("email"), Password: p.Raw("password")})
	if err != nil {
		s.authFailure(w, r, loginForm, state, err, msgBadCredentials)
		return
	}
	if !s.beginSession(w, r, res) {
		state.Message = msgSessionFailed
		s.showForm(w, r, loginForm, http.StatusInternalServerError, state)
		return
	}
	redirect(w, r, "/")
}

// beginSession stores the new session and sets its cookie.
func (s *Server) beginSession(w http.ResponseWriter, r *http.Request, res api.AuthResult) bool {
	sess, err := s.deps.Sessions.Begin(r.Context(), session.Identity{
		Token:  res.Token,
		UserID: res.User.ID,
		Email:  res.User.Email,
		Name:   res.User.Name,
	})
	if err != nil {
		s.events.LogError(r.Context(), "Failed to begin session", err, ilog.ComponentSession, ilog.OpLogin, nil)
		return false
	}
	http.SetCookie(w, session.Cookie(sess, s.opts.CookieSecure))
	s.events.LogSession(r.Context(), sess.ID, ilog.OpLogin)
	return true
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, registerForm.page, s.page(r, registerForm.title, "", formState{}))
}

// handleRegister creates the account. When the API answers with a token the
// user is logged in right away.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseForm(w, r, registerForm, "")
	if !ok {
		return
	}
	state := formState{Values: p.Values()}
	res, err := s.deps.Auth.Register(r.Context(), core.Registration{
		Name:            p.Get("name"),
		Email:           p.Get("email"),
		Password:        p.Raw("password"),
		ConfirmPassword: p.Raw("confirm_password"),
	})
	if err != nil {
		s.authFailure(w, r, registerForm, state, err, "Não foi possível criar a conta")
		return
	}
	if res.Token != "" && s.beginSession(w, r, res) {
		redirect(w, r, "/")
		return
	}
	redirect(w, r, "/login?registered=1")
}

func (s *Server) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, resetForm.page, s.page(r, resetForm.title, "", formState{Step: stepEmail}))
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseForm(w, r, resetForm, stepEmail)
	if !ok {
		return
	}
	state := formState{Values: p.Values(), Step: stepEmail}
	msg, err := s.deps.Auth.ForgotPassword(r.Context(), p.Get("email"))
	if err != nil {
		s.authFailure(w, r, resetForm, state, err, "Não foi possível enviar o código")
		return
	}
	if msg == "" {
		msg = "Se o email estiver cadastrado, você receberá um código."
	}
	state.Step, state.Notice = stepCode, msg
	s.showForm(w, r, resetForm, http.StatusOK, state)
}

func (s *Server) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseForm(w, r, resetForm, stepCode)
	if !ok {
		return
	}
	state := formState{Values: p.Values(), Step: stepCode}
	if err := s.deps.Auth.VerifyResetCode(r.Context(), p.Get("email"), p.Get("code")); err != nil {
		s.authFailure(w, r, resetForm, state, err, "Código inválido ou expirado")
		return
	}
	state.Step = stepPassword
	s.showForm(w, r, resetForm, http.StatusOK, state)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseForm(w, r, resetForm, stepPassword)
	if !ok {
		return
	}
	state := formState{Values: p.Values(), Step: stepPassword}
	err := s.deps.Auth.ResetPassword(r.Context(), core.PasswordReset{
		Email:           p.Get("email"),
		Code:            p.Get("code"),
		Password:        p.Raw("password"),
		ConfirmPassword: p.Raw("confirm_password"),
	})
	if err != nil {
		s.authFailure(w, r, resetForm, state, err, "Não foi possível redefinir a senha")
		return
	}
	redirect(w, r, "/login?reset=1")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		s.endSession(r, sess.ID)
		s.events.LogSession(r.Context(), sess.ID, ilog.OpLogout)
	}
	http.SetCookie(w, session.ClearCookie(s.opts.CookieSecure))
	redirect(w, r, loginPath)
}
