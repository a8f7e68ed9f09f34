package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/litcafe/backoffice/pkg/env"
	"github.com/rs/zerolog"
)

// EnvLogFormat switches every binary between json lines and the console
// writer. It is read before config loads so bootstrap errors are readable.
const EnvLogFormat = "LITCAFE_LOG_FORMAT"

const (
	formatJSON    = "json"
	formatConsole = "console"
)

// Options configures the structured logger.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
	// Fields are stamped on every entry, e.g. the deployment env.
	Fields map[string]any
}

type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	var output io.Writer = opts.Output
	if output == nil {
		output = os.Stdout
	}
	if env.OneOf(EnvLogFormat, formatJSON, formatJSON, formatConsole) == formatConsole {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	// zerolog writes map fields in sorted key order
	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Fields(opts.Fields).
		Logger().
		Level(opts.Level)

	return &Logger{
		base:      &logger,
		warnStack: opts.WarnStack,
	}
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{base: &logger}
}

// ParseLevel maps LITCAFE_LOG_LEVEL to a zerolog level; blank or unknown
// values mean info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// from returns the entry attached to ctx by the With* helpers, falling back
// to the base logger.
func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	if ctx != nil {
		if entry := zerolog.Ctx(ctx); entry.GetLevel() != zerolog.Disabled {
			return entry
		}
	}
	return l.base
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	entry := build(l.from(ctx).With()).Logger()
	return entry.WithContext(ctx)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
}

// WithEmployee tags entries with the authenticated employee and position.
func (l *Logger) WithEmployee(ctx context.Context, employeeID, role string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("employee_id", employeeID).Str("role", role)
	})
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.from(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.from(ctx).Info().Msg(msg)
}

// Warn attaches a stack only when LITCAFE_LOG_WARN_STACK is on.
func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.from(ctx).Warn()
	if l != nil && l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

// Error always carries a stack; err may be nil.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.from(ctx).Error().Err(err).Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
