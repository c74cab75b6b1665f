package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// InteractionToggles counts toggle operations by kind, action, and outcome.
	// Outcome is "changed" when the join row was inserted/deleted and "noop"
	// for the idempotent already-on/already-off cases.
	InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_interaction_toggles_total",
		Help: "Total number of like/scrap toggle operations",
	}, []string{"kind", "action", "outcome"})

	// WebhookEvents counts identity-provider webhook deliveries by event type and result.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusboard_webhook_events_total",
		Help: "Total number of identity webhook events processed",
	}, []string{"event_type", "result"})
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The HTTP collectors live on the default registry, so the instance is
// created once per process and shared by subsequent callers.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
