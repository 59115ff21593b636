package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bandly-go/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLog routes gorm's output through the app logger. Record-not-found is
// expected on reads of missing keys and is not reported.
type gormLog struct {
	log   logger.Logger
	level gormlogger.LogLevel
}

func newGormLog(log logger.Logger) gormlogger.Interface {
	return &gormLog{log: log.With("component", "gorm"), level: gormlogger.Warn}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *g
	next.level = level
	return &next
}

func (g *gormLog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.InternalError("db: query failed", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("db: slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("db: query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
