package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing adds otelgorm spans to db and flags slow or failed
// statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.SlowQueryThresh
	if thresh <= 0 {
		thresh = 200 * time.Millisecond
	}
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateQuerySpan(tx, thresh) }

	cb := db.Callback()
	for _, reg := range []error{
		cb.Create().Before("gorm:create").Register("comfund:start_create", before),
		cb.Query().Before("gorm:query").Register("comfund:start_query", before),
		cb.Update().Before("gorm:update").Register("comfund:start_update", before),
		cb.Delete().Before("gorm:delete").Register("comfund:start_delete", before),
		cb.Raw().Before("gorm:raw").Register("comfund:start_raw", before),
		cb.Create().After("gorm:create").Register("comfund:end_create", after),
		cb.Query().After("gorm:query").Register("comfund:end_query", after),
		cb.Update().After("gorm:update").Register("comfund:end_update", after),
		cb.Delete().After("gorm:delete").Register("comfund:end_delete", after),
		cb.Raw().After("gorm:raw").Register("comfund:end_raw", after),
	} {
		if reg != nil {
			return reg
		}
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", thresh))
	return nil
}

func annotateQuerySpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
