package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler handles GET /health, the liveness check.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Pinger reports whether a remote dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessHandler handles GET /health/ready. The hosted backend, MongoDB and
// Redis must all answer before the instance takes traffic.
type ReadinessHandler struct {
	mongo   *mongo.Database
	redis   *redis.Client
	backend Pinger
	timeout time.Duration
}

func NewReadinessHandler(db *mongo.Database, rdb *redis.Client, backend Pinger) *ReadinessHandler {
	return &ReadinessHandler{mongo: db, redis: rdb, backend: backend, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	checks := map[string]func(context.Context) error{}
	if h.mongo != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return h.mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		}
	}
	if h.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		}
	}
	if h.backend != nil {
		checks["backend"] = h.backend.Ping
	}

	deps := make(map[string]dependencyStatus, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
