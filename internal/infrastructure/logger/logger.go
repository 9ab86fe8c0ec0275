// Package logger builds the service-wide kratos logger.
package logger

import (
	"context"
	"os"
	"strings"

	gclog "github.com/bionicotaku/lingo-utils/gclog"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	HostID  string
	Env     string
	// Level is the minimum level emitted; empty means debug outside production and info in it.
	Level string
}

// NewLogger builds a Kratos-compatible logger with trace/span enrichment.
func NewLogger(cfg Config) (log.Logger, error) {
	labels := map[string]string{}
	if cfg.HostID != "" {
		labels["service.id"] = cfg.HostID
	}
	baseLogger, err := gclog.NewLogger(
		gclog.WithService(cfg.Service),
		gclog.WithVersion(cfg.Version),
		gclog.WithEnvironment(cfg.Env),
		gclog.WithStaticLabels(labels),
		gclog.EnableSourceLocation(),
	)
	if err != nil {
		return nil, err
	}
	enriched := log.With(
		baseLogger,
		"trace_id", traceIDValuer(),
		"span_id", spanIDValuer(),
	)
	return log.NewFilter(enriched, log.FilterLevel(cfg.level())), nil
}

func (c Config) level() log.Level {
	if c.Level != "" {
		return log.ParseLevel(c.Level)
	}
	if strings.EqualFold(c.Env, "production") {
		return log.LevelInfo
	}
	return log.LevelDebug
}

func traceIDValuer() log.Valuer {
	return func(ctx context.Context) interface{} {
		sc := trace.SpanContextFromContext(ctx)
		if sc.HasTraceID() {
			return sc.TraceID().String()
		}
		return ""
	}
}

func spanIDValuer() log.Valuer {
	return func(ctx context.Context) interface{} {
		sc := trace.SpanContextFromContext(ctx)
		if sc.HasSpanID() {
			return sc.SpanID().String()
		}
		return ""
	}
}

// DefaultConfig builds Config from environment defaults.
func DefaultConfig(service, version string) Config {
	if service == "" {
		service = "lingo-services-greeter"
	}
	if version == "" {
		version = "dev"
	}
	host, _ := os.Hostname()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	return Config{Service: service, Version: version, HostID: host, Env: env, Level: os.Getenv("LOG_LEVEL")}
}
