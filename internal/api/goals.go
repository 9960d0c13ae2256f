package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"financas/internal/core"
)

type goalRecord struct {
	ID         int64     `json:"id"`
	Titulo     string    `json:"titulo"`
	Descricao  *string   `json:"descricao"`
	Valor      decimal   `json:"valor"`
	ValorAtual decimal   `json:"valor_atual"`
	DataLimite dateField `json:"data_limite"`
	Categoria  *string   `json:"categoria"`
	CriadoEm   dateField `json:"criado_em"`
}

func (r goalRecord) goal() core.Goal {
	g := core.Goal{
		ID:        r.ID,
		Title:     r.Titulo,
		Target:    core.Money{Cents: int64(r.Valor)},
		Current:   core.Money{Cents: int64(r.ValorAtual)},
		DueDate:   core.Date(r.DataLimite),
		CreatedAt: core.Date(r.CriadoEm),
	}
	if r.Descricao != nil {
		g.Description = *r.Descricao
	}
	if r.Categoria != nil {
		g.CategoryLabel = *r.Categoria
	}
	return g
}

type goalPayload struct {
	Titulo     string  `json:"titulo"`
	Descricao  string  `json:"descricao"`
	Valor      string  `json:"valor"`
	ValorAtual string  `json:"valor_atual"`
	DataLimite *string `json:"data_limite"`
	Categoria  string  `json:"categoria"`
}

func newGoalPayload(in core.GoalInput) goalPayload {
	p := goalPayload{
		Titulo:     strings.TrimSpace(in.Title),
		Descricao:  strings.TrimSpace(in.Description),
		Valor:      core.DecimalString(in.Target.Cents),
		ValorAtual: core.DecimalString(in.Current.Cents),
		Categoria:  strings.TrimSpace(in.CategoryLabel),
	}
	if p.Categoria == "" {
		p.Categoria = "outro"
	}
	if !in.DueDate.IsZero() {
		s := in.DueDate.ISO()
		p.DataLimite = &s
	}
	return p
}

func goalPath(id int64) string {
	return "objetivos/" + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{op: "list goals", method: http.MethodGet, path: "objetivos/", out: &raw, authed: true}); err != nil {
		return nil, err
	}
	records, err := decodeList[goalRecord](raw)
	if err != nil {
		return nil, fmt.Errorf("list goals: decode: %w", err)
	}
	out := make([]core.Goal, 0, len(records))
	for _, r := range records {
		out = append(out, r.goal())
	}
	return out, nil
}

func (c *Client) CreateGoal(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	var r goalRecord
	if err := c.do(ctx, call{op: "create goal", method: http.MethodPost, path: "objetivos/", body: newGoalPayload(in), out: &r, authed: true}); err != nil {
		return core.Goal{}, err
	}
	return r.goal(), nil
}

func (c *Client) UpdateGoal(ctx context.Context, id int64, in core.GoalInput) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	var r goalRecord
	if err := c.do(ctx, call{op: "update goal", method: http.MethodPut, path: goalPath(id), body: newGoalPayload(in), out: &r, authed: true}); err != nil {
		return core.Goal{}, err
	}
	return r.goal(), nil
}

// SetGoalProgress updates only the saved amount of a goal.
func (c *Client) SetGoalProgress(ctx context.Context, id int64, current core.Money) (core.Goal, error) {
	if current.Cents < 0 {
		return core.Goal{}, core.FieldErrors{"current": "Valor atual não pode ser negativo"}
	}
	body := map[string]string{"valor_atual": core.DecimalString(current.Cents)}
	var r goalRecord
	if err := c.do(ctx, call{op: "update goal progress", method: http.MethodPatch, path: goalPath(id), body: body, out: &r, authed: true}); err != nil {
		return core.Goal{}, err
	}
	return r.goal(), nil
}

func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete goal", method: http.MethodDelete, path: goalPath(id), authed: true})
}
