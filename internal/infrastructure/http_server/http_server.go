// Package httpserver wires the inbound HTTP server and its middleware stack.
package httpserver

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/controllers"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"

	obsTrace "github.com/bionicotaku/lingo-utils/observability/tracing"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 2 * time.Second

// ReadinessChecker 报告下游依赖（数据库等）是否可用，供 /readyz 使用。
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *configloader.Server,
	greeter *controllers.GreeterHandler,
	tel *Telemetry,
	ready ReadinessChecker,
	logger log.Logger,
) *http.Server {
	prefixes := []string{"x-md-"}
	if c != nil && len(c.MetadataPrefixes) > 0 {
		prefixes = c.MetadataPrefixes
	}

	mws := []middleware.Middleware{
		obsTrace.Server(),
		recovery.Recovery(),
		metadata.Server(
			metadata.WithPropagatedPrefix(prefixes...),
		),
		ratelimit.Server(),
	}
	if tel != nil {
		mws = append(mws, kmetrics.Server(
			kmetrics.WithRequests(tel.RequestCounter),
			kmetrics.WithSeconds(tel.SecondsHistogram),
		))
	}
	mws = append(mws, logging.Server(logger))

	opts := []http.ServerOption{http.Middleware(mws...)}
	if c != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, http.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.HTTP.Addr))
		}
		if c.HTTP.Timeout > 0 {
			opts = append(opts, http.Timeout(c.HTTP.Timeout.Std()))
		}
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))

	helper := log.NewHelper(logger)
	srv.Handle("/readyz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if ready == nil {
			w.WriteHeader(stdhttp.StatusOK)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := ready.Ready(ctx); err != nil {
			helper.WithContext(ctx).Warnf("readiness check failed: %v", err)
			w.WriteHeader(stdhttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(stdhttp.StatusOK)
	}))

	if tel != nil && tel.PrometheusRegistry != nil {
		srv.Handle("/metrics", promhttp.HandlerFor(tel.PrometheusRegistry, promhttp.HandlerOpts{}))
	}

	if greeter != nil {
		greeter.RegisterRoutes(srv)
	}
	return srv
}
