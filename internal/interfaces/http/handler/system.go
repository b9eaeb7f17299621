package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health and readiness probes
type SystemHandler struct {
	BaseHandler
	db        Pinger
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, name, version string) *SystemHandler {
	return &SystemHandler{db: db, name: name, version: version, startTime: time.Now()}
}

// HealthResponse reports the service and database state
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Name      string `json:"name" example:"comfund"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"goVersion" example:"go1.25.5"`
	Database  string `json:"database" example:"up"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports whether the service can reach its database
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Database:  "up",
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.Error(c, dto.ErrCodeServiceUnhealthy, "Database is unreachable")
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Ready godoc
// @ID           getReady
// @Summary      Readiness probe
// @Description  Answers once the server accepts requests
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[MessageData]
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	h.Success(c, MessageData{Message: "ready"})
}
