package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"financas/internal/core"
)

// decimal decodes the API's money fields, which arrive either as JSON numbers
// or as decimal strings ("1500.00"), into cents. null decodes to zero.
type decimal int64

func (d *decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*d = 0
			return nil
		}
		cents, neg, err := core.ParseSignedDecimalToCents(s)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		if neg {
			cents = -cents
		}
		*d = decimal(cents)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	cents, err := core.FloatToCents(f)
	if err != nil {
		return err
	}
	if f < 0 {
		cents = -cents
	}
	*d = decimal(cents)
	return nil
}

// dateField decodes a YYYY-MM-DD or datetime string. null and "" decode to the zero date.
type dateField core.Date

func (d *dateField) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = dateField{}
		return nil
	}
	parsed, err := core.ParseDate(*s)
	if err != nil {
		return fmt.Errorf("date %q: %w", *s, err)
	}
	*d = dateField(parsed)
	return nil
}

// decodeList accepts either a bare JSON array or a paginated {"results": [...]} envelope.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
