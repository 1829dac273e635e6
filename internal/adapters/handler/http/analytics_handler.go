package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexmoretti/habitgrid/internal/adapters/handler/http/middleware"
	"github.com/alexmoretti/habitgrid/internal/core/analytics"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/services"
)

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	analyticsGroup := r.Group("/analytics")
	{
		analyticsGroup.GET("/snapshot", h.Snapshot)
		analyticsGroup.GET("/heatmap", h.GetHeatmap)
	}
}

func parseWeekStart(value string) (time.Weekday, error) {
	if value == "" {
		return time.Monday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == value {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid week_starts_on, expected a weekday name")
}

// Snapshot serves the dashboard aggregate. The window defaults to the week
// containing ref (Monday start); range=month or range=custom with explicit
// start/end selects the other windows.
func (h *AnalyticsHandler) Snapshot(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	ref := time.Now().UTC()
	if refStr := c.Query("ref"); refStr != "" {
		var err error
		if ref, err = parseDateParam(refStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ref format, expected YYYY-MM-DD"})
			return
		}
	}

	weekStartsOn, err := parseWeekStart(c.Query("week_starts_on"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := analytics.RangeOptions{
		Kind:         c.DefaultQuery("range", analytics.RangeWeek),
		WeekStartsOn: &weekStartsOn,
	}

	if opts.Kind == analytics.RangeCustom {
		start, err := parseDateParam(c.Query("start"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start format, expected YYYY-MM-DD"})
			return
		}
		end, err := parseDateParam(c.Query("end"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end format, expected YYYY-MM-DD"})
			return
		}
		opts.Start, opts.End = start, end
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID, opts, ref)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end cannot be before start"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build analytics snapshot"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *AnalyticsHandler) GetHeatmap(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	heatmap, err := h.svc.Heatmap(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build heatmap"})
		return
	}

	c.JSON(http.StatusOK, heatmap)
}
