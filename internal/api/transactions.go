package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"financas/internal/analytics"
	"financas/internal/core"
)

type transactionPayload struct {
	Tipo               string `json:"tipo"`
	Descricao          string `json:"descricao"`
	Valor              string `json:"valor"`
	Categoria          int64  `json:"categoria"`
	DataMovimentacao   string `json:"data_movimentacao"`
	Observacoes        string `json:"observacoes,omitempty"`
	FormaPagamento     string `json:"forma_pagamento"`
	QuantidadeParcelas *int   `json:"quantidade_parcelas,omitempty"`
}

type categoryPayload struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
	Tipo string `json:"tipo"`
}

// ListTransactions returns the user's records exactly as the API sent them;
// normalization belongs to the analytics pipeline.
func (c *Client) ListTransactions(ctx context.Context) ([]analytics.RawTransaction, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{op: "list transactions", method: http.MethodGet, path: "transacoes/", out: &raw, authed: true}); err != nil {
		return nil, err
	}
	list, err := decodeList[analytics.RawTransaction](raw)
	if err != nil {
		return nil, fmt.Errorf("list transactions: decode: %w", err)
	}
	return list, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{op: "list categories", method: http.MethodGet, path: "categorias/", out: &raw, authed: true}); err != nil {
		return nil, err
	}
	list, err := decodeList[categoryPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("list categories: decode: %w", err)
	}
	out := make([]core.Category, 0, len(list))
	for _, p := range list {
		kind := core.Expense
		if strings.EqualFold(strings.TrimSpace(p.Tipo), "entrada") {
			kind = core.Income
		}
		out = append(out, core.Category{ID: p.ID, Name: p.Nome, Kind: kind})
	}
	return out, nil
}

// CreateTransaction posts a validated input and returns the stored record.
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) (analytics.RawTransaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := transactionPayload{
		Tipo:             in.Kind.RemoteType(),
		Descricao:        strings.TrimSpace(in.Title),
		Valor:            core.DecimalString(in.Amount.Cents),
		Categoria:        in.CategoryID,
		DataMovimentacao: in.Date.ISO(),
		Observacoes:      strings.TrimSpace(in.Notes),
		FormaPagamento:   "avista",
	}
	if in.Plan.IsInstallment() {
		n := in.Plan.Installments
		p.FormaPagamento = "parcelado"
		p.QuantidadeParcelas = &n
	}
	var out analytics.RawTransaction
	if err := c.do(ctx, call{op: "create transaction", method: http.MethodPost, path: "transacoes/", body: p, out: &out, authed: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("delete transaction: empty id")
	}
	return c.do(ctx, call{op: "delete transaction", method: http.MethodDelete, path: "transacoes/" + url.PathEscape(id) + "/", authed: true})
}
