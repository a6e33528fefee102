package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name. The cache
	// layer increments this from its client hook.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis command errors by command",
	}, []string{"command"})

	// MailerFailures counts notification emails that could not be delivered.
	// Email is best effort so failures only surface here and in the logs.
	MailerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_mailer_failures_total",
		Help: "Total number of failed notification email deliveries by kind",
	}, []string{"kind"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the Prometheus middleware as a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
