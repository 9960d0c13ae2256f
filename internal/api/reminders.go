package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"financas/internal/core"
)

type reminderRecord struct {
	ID             int64     `json:"id"`
	Titulo         string    `json:"titulo"`
	ValorParcela   decimal   `json:"valor_parcela"`
	DataVencimento dateField `json:"data_vencimento"`
	NumeroParcela  int       `json:"numero_parcela"`
	TotalParcelas  int       `json:"total_parcelas"`
	Pago           bool      `json:"pago"`
}

func (r reminderRecord) reminder() core.Reminder {
	return core.Reminder{
		ID:               r.ID,
		Title:            r.Titulo,
		Amount:           core.Money{Cents: int64(r.ValorParcela)},
		DueDate:          core.Date(r.DataVencimento),
		InstallmentIndex: r.NumeroParcela,
		InstallmentTotal: r.TotalParcelas,
		Paid:             r.Pago,
	}
}

// ListReminders returns the installment reminders due in the given month.
func (c *Client) ListReminders(ctx context.Context, year, month int) ([]core.Reminder, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	q := url.Values{}
	q.Set("mes", strconv.Itoa(month))
	q.Set("ano", strconv.Itoa(year))

	var raw json.RawMessage
	if err := c.do(ctx, call{op: "list reminders", method: http.MethodGet, path: "lembretes/", query: q, out: &raw, authed: true}); err != nil {
		return nil, err
	}
	records, err := decodeList[reminderRecord](raw)
	if err != nil {
		return nil, fmt.Errorf("list reminders: decode: %w", err)
	}
	out := make([]core.Reminder, 0, len(records))
	for _, r := range records {
		out = append(out, r.reminder())
	}
	return out, nil
}

func (c *Client) MarkReminderPaid(ctx context.Context, id int64) error {
	path := "lembretes/" + strconv.FormatInt(id, 10) + "/marcar_pago/"
	return c.do(ctx, call{op: "mark reminder paid", method: http.MethodPost, path: path, authed: true})
}
