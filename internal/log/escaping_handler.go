package log

import (
	"context"
	"io"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/xorcrack/internal/model"
)

// EscapingHandler wraps an slog.Handler to escape binary attribute values.
// It intercepts log records and rewrites byte slices and strings that are
// not plain printable text before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Callers can log keys and plaintext fragments without remembering to
//     escape them first
type EscapingHandler struct {
	// handler is the underlying slog handler that receives escaped records.
	handler slog.Handler
}

// NewEscapingHandler creates a new EscapingHandler wrapping the given handler.
// If handler is nil, the returned EscapingHandler will use slog.Default().Handler().
func NewEscapingHandler(handler slog.Handler) *EscapingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &EscapingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *EscapingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle escapes the record's attributes and passes it to the underlying handler.
func (h *EscapingHandler) Handle(ctx context.Context, r slog.Record) error {
	escaped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		escaped.AddAttrs(escapeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, escaped)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are escaped before being added.
func (h *EscapingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	escapedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		escapedAttrs[i] = escapeAttr(a)
	}
	return &EscapingHandler{handler: h.handler.WithAttrs(escapedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *EscapingHandler) WithGroup(name string) slog.Handler {
	return &EscapingHandler{handler: h.handler.WithGroup(name)}
}

// escapeAttr escapes a single attribute, recursively handling groups.
func escapeAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		escapedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			escapedAttrs[i] = escapeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(escapedAttrs...)}

	case slog.KindString:
		if s := v.String(); !isPlainText(s) {
			return slog.String(a.Key, model.HexBytes(s).Repr())
		}

	case slog.KindAny:
		switch b := v.Any().(type) {
		case []byte:
			return slog.String(a.Key, model.HexBytes(b).Repr())
		case model.HexBytes:
			return slog.String(a.Key, b.Repr())
		}
	}

	return slog.Attr{Key: a.Key, Value: v}
}

// isPlainText reports whether s is valid UTF-8 without control characters.
func isPlainText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// NewLogger creates a new slog.Logger with escaping.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	textHandler := slog.NewTextHandler(w, handlerOptions(verbose))
	return slog.New(NewEscapingHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with escaping that outputs JSON
// format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, handlerOptions(verbose))
	return slog.New(NewEscapingHandler(jsonHandler))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{
		Level: level,
	}
}
