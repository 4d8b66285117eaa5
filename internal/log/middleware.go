package log

import (
	"context"
	"log/slog"
	"net/http"

	"presupuesto/internal/core"
)

// Middleware puts logger into every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger emits the fixed set of application events.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = Default()
	}
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	f := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithClientIP(clientIP).
		WithRequestID(RequestIDFromContext(ctx))
	sl.logger.DebugContext(ctx, "HTTP request started", f.Args()...)
}

// LogHTTPEnd picks the level from the status class.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, status int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	f := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(status, durationMs).
		WithClientIP(clientIP).
		WithRequestID(RequestIDFromContext(ctx))
	sl.logger.Log(ctx, level, "HTTP request completed", f.Args()...)
}

func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, t core.Transaction) {
	f := NewFields().WithTransaction(t).WithOperation(OpCreate).WithRequestID(RequestIDFromContext(ctx))
	sl.logger.InfoContext(ctx, "Transaction created", f.Args()...)
}

func (sl *StructuredLogger) LogTransactionDeleted(ctx context.Context, id int64) {
	f := NewFields().With(FieldID, id).WithOperation(OpDelete).WithRequestID(RequestIDFromContext(ctx))
	sl.logger.InfoContext(ctx, "Transaction deleted", f.Args()...)
}

// LogError logs err under operation with any extra fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, extra *Fields) {
	f := NewFields().WithRequestID(RequestIDFromContext(ctx))
	if extra != nil {
		f.With(extra.Args()...)
	}
	f.WithError(err).WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, f.Args()...)
}
