package handler

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	service string
	version string
	checker *health.Checker
	log     *zap.Logger
}

func NewHealthHandler(service, version string, checker *health.Checker, log *zap.Logger) *HealthHandler {
	return &HealthHandler{service: service, version: version, checker: checker, log: log}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.service, "version": h.version})
}

func (h *HealthHandler) Detailed(c *gin.Context) {
	results, ok := h.checker.Run(c.Request.Context())

	status, code := "healthy", http.StatusOK
	if !ok {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	body := gin.H{"status": status, "service": h.service, "version": h.version}
	for name, err := range results {
		if err != nil {
			h.log.Warn("health check failed", zap.String("check", name), zap.Error(err))
			body[name] = gin.H{"status": "unhealthy", "error": err.Error()}
			continue
		}
		body[name] = gin.H{"status": "healthy"}
	}
	c.JSON(code, body)
}
