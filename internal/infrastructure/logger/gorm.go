package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm output to zap
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a gorm logger at level, warning on queries slower than slowThreshold
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{logger: l.Named("gorm"), level: level, slowThreshold: slowThreshold}
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

// Info implements gormlogger.Interface
func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		g.logger.Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		g.logger.Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		g.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.logger.Error("SQL error", g.fields(ctx, elapsed, sql, rows, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.logger.Warn("Slow SQL", g.fields(ctx, elapsed, sql, rows, zap.Duration("threshold", g.slowThreshold))...)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.logger.Debug("SQL", g.fields(ctx, elapsed, sql, rows)...)
	}
}

func (g *GormLogger) fields(ctx context.Context, elapsed time.Duration, sql string, rows int64, extra ...zap.Field) []zap.Field {
	fields := append([]zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}, extra...)
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}

// GormLevel maps a zap level name to the gorm level that logs the same events
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
