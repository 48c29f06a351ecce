package handler

import (
	"context"
	"net/http"

	"salescrm_backend/internal/analytics/service"
	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// DigestEnqueuer queues an immediate digest run on the background worker.
// Nil when the job queue is not configured.
type DigestEnqueuer interface {
	EnqueueDailyDigest(ctx context.Context) error
}

type Handler struct {
	svc      *service.Service
	enqueuer DigestEnqueuer
}

func New(svc *service.Service, enqueuer DigestEnqueuer) *Handler {
	return &Handler{svc: svc, enqueuer: enqueuer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.POST("/digest/run", h.RunDigest)
}

func (h *Handler) Dashboard(c *gin.Context) {
	var req transport.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	resp, err := h.svc.Dashboard(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// RunDigest queues an immediate digest run instead of waiting for the
// nightly cron. The worker picks the task up from Redis.
func (h *Handler) RunDigest(c *gin.Context) {
	if h.enqueuer == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "digest queue is not configured", nil)
		return
	}
	if err := h.enqueuer.EnqueueDailyDigest(c.Request.Context()); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not queue digest run", nil)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
}
