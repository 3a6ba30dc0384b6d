package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracingConfig controls the spans recorded for SQL statements
type DBTracingConfig struct {
	DBSystem   string // reported as db.system
	LogFullSQL bool   // keep query variables in db.statement; never in production
}

// RegisterDBTracing installs the otelgorm plugin on db so every statement
// becomes a child span of the request that issued it.
func RegisterDBTracing(db *gorm.DB, provider trace.TracerProvider, cfg DBTracingConfig) error {
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	opts := []otelgorm.Option{
		otelgorm.WithTracerProvider(provider),
		otelgorm.WithDBName(cfg.DBSystem),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	return nil
}
