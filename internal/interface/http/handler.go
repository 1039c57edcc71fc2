package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/surf-report/internal/domain/report"
	"github.com/yanqian/surf-report/internal/domain/spots"
	"github.com/yanqian/surf-report/internal/domain/surfreport"
)

// Handler wires the HTTP transport to the surf report pipeline.
type Handler struct {
	svc      surfreport.Service
	defaults surfreport.Config
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc surfreport.Service, defaults surfreport.Config, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		defaults: defaults,
		logger:   logger.With("component", "http.handler"),
	}
}

// GenerateReport handles the weekend report endpoint.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req surfreport.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchSpots runs retrieval only.
func (h *Handler) SearchSpots(c *gin.Context) {
	var q spots.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	records, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	if records == nil {
		records = []spots.SpotRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"spots": records})
}

// WeekendForecast returns whichever forecast days could be fetched.
func (h *Handler) WeekendForecast(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"days": h.svc.Forecast(c.Request.Context())})
}

// Options lists accepted categorical values and generation defaults.
func (h *Handler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"directions": spots.Directions(),
		"bottoms":    spots.Bottoms(),
		"models":     report.Models(),
		"defaults": gin.H{
			"topK":        h.defaults.DefaultTopK,
			"maxTopK":     spots.MaxTopK,
			"model":       h.defaults.DefaultModel,
			"temperature": h.defaults.DefaultTemperature,
		},
	})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
