package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's log output through the service logger so SQL
// errors and slow queries end up in the same JSON stream as everything else.
type gormLogger struct {
	log   logging.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l logging.Logger, level logger.LogLevel) logger.Interface {
	return &gormLogger{log: l, level: level, slow: slowQueryThreshold}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.log.Info(ctx, fmt.Sprintf(msg, data...), "component", "gorm")
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.log.Warn(ctx, fmt.Sprintf(msg, data...), "component", "gorm")
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.log.Error(ctx, fmt.Sprintf(msg, data...), "component", "gorm")
	}
}

// Trace logs failed statements at error level, slow ones at warn and the
// rest at info. Missing records are not errors.
func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Error(ctx, "query failed", "component", "gorm",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds(), "error", err)
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.log.Warn(ctx, "slow query", "component", "gorm",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case g.level >= logger.Info:
		sql, rows := fc()
		g.log.Info(ctx, "query", "component", "gorm",
			"sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}
