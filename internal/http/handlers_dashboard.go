package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"financas/internal/analytics"
	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/export"
	ilog "financas/internal/log"
)

// dashboardView feeds the dashboard page and its partials.
type dashboardView struct {
	Dash       analytics.Dashboard
	Categories []core.Category
	Index      map[int64]core.Category
	Criteria   analytics.Criteria
	Today      core.Date
	Error      string
}

func (s *Server) loadDashboard(r *http.Request) (dashboardView, error) {
	c := CriteriaFromQuery(r.URL.Query())
	d, err := s.deps.Dashboard.Load(r.Context(), c)
	if err != nil {
		return dashboardView{}, err
	}
	cats, err := s.deps.Dashboard.Categories(r.Context())
	if err != nil {
		return dashboardView{}, err
	}
	return dashboardView{
		Dash:       d,
		Categories: cats,
		Index:      core.IndexCategories(cats),
		Criteria:   c,
		Today:      s.deps.Clock.Today(),
	}, nil
}

// handleDashboard renders the full page. A failing remote API still yields
// the page, with the message in place of the data.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, err := s.loadDashboard(r)
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			s.expire(w, r)
			return
		}
		s.events.LogError(r.Context(), "Dashboard load failed", err, ilog.ComponentServices, ilog.OpRender, nil)
		v = dashboardView{Today: s.deps.Clock.Today(), Error: api.UserMessage(err)}
		s.respond(w, r, NewHTMXResponse().Status(http.StatusBadGateway), "dashboard.html", s.page(r, "Painel", "dashboard", v))
		return
	}
	s.render(w, r, "dashboard.html", s.page(r, "Painel", "dashboard", v))
}

func (s *Server) dashboardPartial(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.loadDashboard(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, r, name, v)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.dashboardPartial("summary")(w, r)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.dashboardPartial("transaction_list")(w, r)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	s.dashboardPartial("insights")(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	in, err := p.TransactionInput()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Dashboard.CreateTransaction(r.Context(), in); err != nil {
		s.fail(w, r, err)
		return
	}

	s.events.LogTransactionCreated(r.Context(), sessionID(r), "", string(in.Kind), in.Amount.Cents, in.CategoryID)

	msg := "Despesa registrada"
	if in.Kind == core.Income {
		msg = "Receita registrada"
	}
	s.respond(w, r, NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerFormReset().
		TriggerSuccessNotification(msg), "form_errors", core.FieldErrors(nil))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequestError("Transação inválida").Write(w)
		return
	}
	if err := s.deps.Dashboard.DeleteTransaction(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerSuccessNotification("Transação excluída").
		Write(w)
}

// handleExport downloads the filtered list. The file is built in memory first
// so a failure never leaves a truncated download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError("Formato de exportação inválido").Write(w)
		return
	}
	v, err := s.loadDashboard(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, v.Dash.Transactions, v.Categories); err != nil {
		s.events.LogError(r.Context(), "Export failed", err, ilog.ComponentExport, ilog.OpExport,
			ilog.NewFields().WithOperation(ilog.OpExport))
		InternalServerError("Não foi possível gerar o arquivo").Write(w)
		return
	}
	ilog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		ilog.FieldOperation, ilog.OpExport,
		ilog.FieldFormat, string(format),
		ilog.FieldRows, len(v.Dash.Transactions))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(v.Today)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChartsPage(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Dashboard.Categories(r.Context())
	if err != nil && errors.Is(err, api.ErrNotAuthenticated) {
		s.expire(w, r)
		return
	}
	v := dashboardView{Categories: cats, Criteria: CriteriaFromQuery(r.URL.Query()), Today: s.deps.Clock.Today()}
	if err != nil {
		v.Error = api.UserMessage(err)
	}
	s.render(w, r, "charts.html", s.page(r, "Gráficos", "charts", v))
}

type categorySlice struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type monthlyChart struct {
	analytics.ChartSeries
	Categories []categorySlice `json:"categories"`
	Income     float64         `json:"total_income"`
	Expense    float64         `json:"total_expense"`
}

// handleMonthlyChart serves the chart series for the filtered transactions.
func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Dashboard.Load(r.Context(), CriteriaFromQuery(r.URL.Query()))
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			s.expire(w, r)
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": api.UserMessage(err)})
		return
	}
	out := monthlyChart{
		ChartSeries: d.Chart,
		Categories:  make([]categorySlice, 0, len(d.Categories)),
		Income:      core.Money{Cents: d.Summary.Income}.Major(),
		Expense:     core.Money{Cents: d.Summary.Expense}.Major(),
	}
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, categorySlice{Name: c.Name, Total: core.Money{Cents: c.Total}.Major()})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
