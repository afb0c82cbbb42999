package observe

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// structuredLogger is a JSON logger backed by zap.
type structuredLogger struct {
	z *zap.Logger
}

// NewLogger creates a new structured logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a new structured logger with a custom writer.
// Each entry is one JSON object per line with timestamp, level and msg keys.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), ParseLogLevel(level).zapLevel())
	return &structuredLogger{z: zap.New(core)}
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

// WithProduct returns a logger that tags every entry with the product key.
func (l *structuredLogger) WithProduct(product string) Logger {
	if product == "" {
		return l
	}
	return &structuredLogger{z: l.z.With(zap.String("product", product))}
}

// With returns a logger carrying the given fields on every entry.
func (l *structuredLogger) With(fields ...Field) Logger {
	return &structuredLogger{z: l.z.With(zapFields(fields)...)}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.z.Info(msg, zapFields(fields)...)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.z.Warn(msg, zapFields(fields)...)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.z.Error(msg, zapFields(fields)...)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.z.Debug(msg, zapFields(fields)...)
}

// Sync flushes buffered entries.
func (l *structuredLogger) Sync() error {
	return l.z.Sync()
}

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if isRedactedField(f.Key) {
			out = append(out, zap.String(f.Key, "[REDACTED]"))
			continue
		}
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.String(f.Key, err.Error()))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	for _, k := range RedactedFields {
		if k == key {
			return true
		}
	}
	return false
}

var _ Logger = (*structuredLogger)(nil)
