package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SandboxFS/internal/logging"
	"github.com/GriffinCanCode/SandboxFS/internal/monitoring"
	"github.com/GriffinCanCode/SandboxFS/internal/providers/filesystem"
	"github.com/GriffinCanCode/SandboxFS/internal/types"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	provider *filesystem.Provider
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(provider *filesystem.Provider, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	return &Handlers{provider: provider, metrics: metrics, logger: logger}
}

// Root handles the health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "SandboxFS",
		"version": "0.2.0",
	})
}

// Services returns the service definition for discovery.
func (h *Handlers) Services(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": []types.Service{h.provider.Definition()},
	})
}

// Execute runs one tool call.
func (h *Handlers) Execute(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Result{
			Success: false,
			Error: &types.ErrorDetail{
				Kind:    "invalid_arguments",
				Message: "malformed request: " + err.Error(),
			},
		})
		return
	}

	timer := monitoring.NewTimer(h.metrics, req.ToolID)
	result, err := h.provider.Execute(c.Request.Context(), req.ToolID, req.Params)
	if err != nil {
		timer.Stop("error")
		h.logger.Error("tool execution error", zap.String("tool", req.ToolID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.Result{
			Success: false,
			Error:   &types.ErrorDetail{Kind: "io_error", Message: "internal error"},
		})
		return
	}

	if result.Success {
		timer.Stop("ok")
	} else {
		timer.Stop("failed")
		if result.Error != nil {
			h.metrics.RecordToolError(req.ToolID, result.Error.Kind)
		}
	}
	c.JSON(http.StatusOK, result)
}
