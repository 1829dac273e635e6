package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/alexmoretti/habitgrid/internal/adapters/handler/http/middleware"
	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/services"
	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	svc          *services.HabitService
	analyticsSvc *services.AnalyticsService
}

func NewHabitHandler(svc *services.HabitService, analyticsSvc *services.AnalyticsService) *HabitHandler {
	return &HabitHandler{
		svc:          svc,
		analyticsSvc: analyticsSvc,
	}
}

type createHabitRequest struct {
	Name       string   `json:"name" binding:"required"`
	StartDate  string   `json:"start_date" binding:"required"`
	TargetDays []string `json:"target_days" binding:"required"`
}

type updateHabitRequest struct {
	Name       string   `json:"name" binding:"required"`
	StartDate  string   `json:"start_date" binding:"required"`
	TargetDays []string `json:"target_days" binding:"required"`
	Version    int      `json:"version"`
}

type toggleRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/toggle", h.Toggle)
		habits.GET("/:id/week", h.Week)
	}
}

func parseDateParam(value string) (time.Time, error) {
	return time.Parse(domain.DateLayout, value)
}

func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := parseDateParam(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:     userID,
		Name:       req.Name,
		StartDate:  startDate,
		TargetDays: req.TargetDays,
	})
	if err != nil {
		if isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := parseDateParam(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:         c.Param("id"),
		UserID:     userID,
		Name:       req.Name,
		StartDate:  startDate,
		TargetDays: req.TargetDays,
		Version:    req.Version,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "Data has been modified elsewhere. Please refresh.",
			})
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case isHabitValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	result, err := h.svc.ToggleCompletion(c.Request.Context(), c.Param("id"), userID, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDate):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "date is outside the trackable window"})
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HabitHandler) Week(c *gin.Context) {
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

	cells, err := h.analyticsSvc.WeekView(c.Request.Context(), c.Param("id"), userID, ref, weekStartsOn)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": cells})
}

func isHabitValidationError(err error) bool {
	return errors.Is(err, domain.ErrHabitNameEmpty) ||
		errors.Is(err, domain.ErrHabitNameTooLong) ||
		errors.Is(err, domain.ErrNoTargetDays) ||
		errors.Is(err, domain.ErrInvalidWeekday) ||
		errors.Is(err, domain.ErrInvalidStartDate)
}
