package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

// Middleware stores logger, enriched with the request id, in the request context.
func Middleware(logger *Logger, requestID func(context.Context) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				if id := requestID(r.Context()); id != "" {
					l = logger.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}

// StructuredLogger records the domain events of the web client.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a completed request at a level derived from the status.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP, requestID string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP).
		WithRequestID(requestID).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, sessionID, id, kind string, amountCents, categoryID int64) {
	fields := NewFields().
		WithSession(sessionID).
		WithTransaction(id, kind, amountCents, categoryID).
		WithOperation(OpCreate).
		WithComponent(ComponentServices)
	sl.logger.Logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogGoalChanged(ctx context.Context, sessionID string, goalID int64, op string) {
	fields := NewFields().
		WithSession(sessionID).
		WithGoal(goalID).
		WithOperation(op).
		WithComponent(ComponentServices)
	sl.logger.Logger.InfoContext(ctx, "Goal changed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogReminderPaid(ctx context.Context, sessionID string, reminderID int64) {
	fields := NewFields().
		WithSession(sessionID).
		WithReminder(reminderID, "").
		WithOperation(OpMarkPaid).
		WithComponent(ComponentServices)
	sl.logger.Logger.InfoContext(ctx, "Reminder marked as paid", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogSession(ctx context.Context, sessionID, op string) {
	fields := NewFields().
		WithSession(sessionID).
		WithOperation(op).
		WithComponent(ComponentSession)
	sl.logger.Logger.InfoContext(ctx, "Session "+op, fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.logger.Logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
