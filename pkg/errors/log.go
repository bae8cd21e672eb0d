package errors

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
)

// LogHandler is a Handler that writes reports through slog.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs an Error at error level.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
	}
	if err.ViewModel != "" {
		attrs = append(attrs, slog.String("view_model", err.ViewModel))
	}
	if err.Property != "" {
		attrs = append(attrs, slog.String("property", err.Property))
	}
	if err.Err != nil {
		attrs = append(attrs, slog.String("error", err.Err.Error()))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "mvvm error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", err.Op),
		slog.String("kind", KindPanic.String()),
		slog.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "mvvm panic", attrs...)
}

// ZapHandler is a Handler that writes reports to a zap logger.
type ZapHandler struct {
	Logger  *zap.Logger
	Verbose bool
}

// NewZapHandler returns a ZapHandler. A nil logger is replaced by zap.NewNop().
func NewZapHandler(logger *zap.Logger, verbose bool) *ZapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapHandler{Logger: logger, Verbose: verbose}
}

// HandleError logs an Error at error level.
func (h *ZapHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.String("kind", err.Kind.String()),
		zap.Time("timestamp", err.Timestamp),
	}
	if err.ViewModel != "" {
		fields = append(fields, zap.String("view_model", err.ViewModel))
	}
	if err.Property != "" {
		fields = append(fields, zap.String("property", err.Property))
	}
	if err.Err != nil {
		fields = append(fields, zap.Error(err.Err))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.Logger.Error("mvvm error", fields...)
}

// HandlePanic logs a PanicError at error level.
func (h *ZapHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.String("kind", KindPanic.String()),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.Logger.Error("mvvm panic", fields...)
}
