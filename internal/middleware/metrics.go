package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FriendshipTransitions counts friendship state transitions by kind.
	FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_friendship_transitions_total",
		Help: "Total number of friendship edge transitions by transition kind",
	}, []string{"transition"})

	// UsersCreated counts successful user registrations.
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circles_users_created_total",
		Help: "Total number of users created",
	})
)

// Friendship transition label values.
const (
	TransitionRequested = "requested"
	TransitionConfirmed = "confirmed"
	TransitionRemoved   = "removed"
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
