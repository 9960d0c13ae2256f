package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"financas/internal/core"
	ilog "financas/internal/log"
	"financas/internal/session"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var templateFuncs = template.FuncMap{
	"brl": func(v any) string {
		switch c := v.(type) {
		case core.Money:
			return core.FormatBRL(c.Cents)
		case int64:
			return core.FormatBRL(c)
		default:
			return ""
		}
	},
	"decimal": func(m core.Money) string {
		return strings.Replace(core.DecimalString(m.Cents), ".", ",", 1)
	},
	"date": func(d core.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("02/01/2006")
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"kindLabel": func(k core.Kind) string {
		if k == core.Income {
			return "Receita"
		}
		return "Despesa"
	},
	"catLabel": core.CategoryLabel,
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return monthNames[m-1]
	},
}

// parseTemplates loads every page and partial into one set. Pages are
// executed by file name, partials by their defined name.
func parseTemplates(fsys fs.FS) (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// pageData is the root value of every full page.
type pageData struct {
	Title  string
	Active string
	User   *session.Session
	Data   any
}

// formState carries submitted values and inline messages back into a form.
type formState struct {
	Values  map[string]string
	Errors  core.FieldErrors
	Message string
	Notice  string
	Step    string
}

func (s *Server) page(r *http.Request, title, active string, data any) pageData {
	sess, _ := session.FromContext(r.Context())
	return pageData{Title: title, Active: active, User: sess, Data: data}
}

// render writes a page or partial with status 200.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.respond(w, r, NewHTMXResponse(), name, data)
}

// respond executes name into b's body before anything is written, so a
// template error still yields a clean 500.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, ilog.ComponentTemplate, ilog.OpRender,
			ilog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		InternalServerError("Erro ao exibir a página").Write(w)
		return
	}
	b.BodyHTML(buf.String()).Write(w)
}
