package db

import (
	"context"
	"errors"
	"time"

	"github.com/litcafe/backoffice/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// queryLogger forwards slow statements and failed statements to the service
// logger. Missing rows are expected and never logged.
type queryLogger struct {
	logg  *logger.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

func newQueryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, slow: slow, level: gormlogger.Warn}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *queryLogger) Info(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Info {
		q.logg.Debug(ctx, msg)
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Warn {
		q.logg.Warn(ctx, msg)
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	if q.level >= gormlogger.Error {
		q.logg.Warn(ctx, msg)
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= gormlogger.Silent {
		return
	}
	took := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := q.slow > 0 && took > q.slow
	if !failed && !slow {
		return
	}
	query, rows := fc()
	fields := map[string]any{
		"sql":         query,
		"rows":        rows,
		"duration_ms": took.Milliseconds(),
	}
	if failed {
		fields["error"] = err.Error()
		q.logg.Debug(q.logg.WithFields(ctx, fields), "db.query_failed")
		return
	}
	q.logg.Warn(q.logg.WithFields(ctx, fields), "db.slow_query")
}
