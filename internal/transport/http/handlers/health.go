package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one dependency.
type ReadinessCheck func(ctx context.Context) error

// Prober runs a trivial query against the database and returns its scalar result.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// HealthOption configures HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck adds a named dependency probe to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if check != nil {
			h.names = append(h.names, name)
			h.checks = append(h.checks, check)
		}
	}
}

// WithDatabaseProber backs /api/health_checker.
func WithDatabaseProber(p Prober) HealthOption {
	return func(h *HealthHandler) {
		h.db = p
	}
}

// DatabaseHealthResponse is the /api/health_checker body.
type DatabaseHealthResponse struct {
	Message string `json:"message"`
	Result  int    `json:"result"`
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	names     []string
	checks    []ReadinessCheck
	db        Prober
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{startedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status godoc
// @Summary Service health check
// @Description Returns the status and start time of the service.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness godoc
// @Summary Dependency readiness
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for i, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[h.names[i]] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[h.names[i]] = "ok"
	}
	c.JSON(status, resp)
}

// Database godoc
// @Summary Database connectivity
// @Description Runs SELECT 1 against the database.
// @Tags Health
// @Produce json
// @Success 200 {object} DatabaseHealthResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/health_checker [get]
func (h *HealthHandler) Database(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Database is not configured correctly"))
		return
	}

	result, err := h.db.Probe(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error connecting to the database"))
		return
	}
	c.JSON(http.StatusOK, DatabaseHealthResponse{Message: "Database is connected and healthy", Result: result})
}
