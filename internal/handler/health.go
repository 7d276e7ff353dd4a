package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/InternLink/portal-service/internal/client"
)

var startTime = time.Now()

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// CheckResult represents an individual dependency check
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency"`
}

// HealthHandler handles /health requests
type HealthHandler struct {
	db      *sql.DB
	redis   *client.RedisClient
	version string
}

func NewHealthHandler(db *sql.DB, redis *client.RedisClient, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]CheckResult{}
	overall := HealthStatusHealthy

	if h.db != nil {
		checks["database"] = timeCheck(func() error { return h.db.PingContext(ctx) })
	}
	if h.redis != nil {
		checks["redis"] = timeCheck(func() error { return h.redis.HealthCheck(ctx) })
	}
	for _, c := range checks {
		if c.Status == HealthStatusUnhealthy {
			overall = HealthStatusDegraded
		}
	}

	status := http.StatusOK
	if overall != HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status":    overall,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(startTime).Round(time.Second).String(),
		"checks":    checks,
	})
}

func timeCheck(fn func() error) CheckResult {
	start := time.Now()
	err := fn()
	res := CheckResult{Status: HealthStatusHealthy, Latency: time.Since(start).String()}
	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Error = err.Error()
	}
	return res
}
