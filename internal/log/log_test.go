package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentScanner})

	l.Debug("scan finished", "published", 2)
	l.WithComponent(ComponentCalendar).Info("event written")

	out := buf.String()
	if !strings.Contains(out, "component=scanner") || !strings.Contains(out, "published=2") {
		t.Errorf("missing scanner fields in %q", out)
	}
	if !strings.Contains(out, "component=calendar") {
		t.Errorf("missing calendar component in %q", out)
	}
}

func TestMiddleware_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})
	idFrom := func(context.Context) string { return "req-123" }

	h := Middleware(base, idFrom)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-123") {
		t.Errorf("request id not logged: %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != ComponentApp {
		t.Errorf("FromContext() = %+v", l)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodPost, "/transactions?kind=expense", nil)

	sl.LogHTTPEnd(ctx, req, http.StatusBadGateway, 12, "10.0.0.1", "req-1")
	sl.LogTransactionCreated(ctx, "sid", "tx-7", "expense", 15000, 3)
	sl.LogError(ctx, "render failed", errors.New("boom"), ComponentTemplate, OpRender, nil)

	out := buf.String()
	for _, want := range []string{
		"level=ERROR msg=\"HTTP request completed\"",
		"status_code=502",
		"transaction_id=tx-7",
		"amount_cents=15000",
		"error=boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
