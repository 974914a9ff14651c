// Package api assembles the link-tracker HTTP server.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	infragin "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/gin"
	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	inframetrics "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/config"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// HealthChecks are the dependency checks reported by /health. A nil check is
// left out.
type HealthChecks struct {
	Database func() error
	Redis    func() error
}

// Observability carries the Prometheus wiring.
type Observability struct {
	HTTP     *inframetrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

// NewServer creates a new HTTP server.
func NewServer(
	h Handlers,
	cfg *config.Config,
	log infralogger.Logger,
	checks HealthChecks,
	obs Observability,
	done <-chan struct{},
) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout)

	if checks.Database != nil {
		builder = builder.WithDatabaseHealthCheck(checks.Database)
	}
	if checks.Redis != nil {
		builder = builder.WithRedisHealthCheck(checks.Redis)
	}
	if obs.HTTP != nil {
		builder = builder.WithMiddleware(obs.HTTP.Middleware())
	}

	limit := RateLimit{
		MaxRequests: cfg.RateLimit.MaxRequestsPerMinute,
		Window:      cfg.RateLimit.Window(),
		Done:        done,
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			if obs.Gatherer != nil {
				router.GET("/metrics", inframetrics.Handler(obs.Gatherer))
			}
			SetupRoutes(router, h, limit)
		}).
		Build()
}
