package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
)

type TrackerHandler struct {
	svc *services.TrackerService
}

func NewTrackerHandler(svc *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{svc: svc}
}

type goalRequest struct {
	Goal *float64 `json:"goal" binding:"required"`
}

type progressRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type categoryView struct {
	Category   domain.Category `json:"category"`
	Unit       string          `json:"unit"`
	Progress   float64         `json:"progress"`
	Goal       float64         `json:"goal"`
	Completion float64         `json:"completion"`
}

type todayResponse struct {
	Record     domain.DailyRecord `json:"record"`
	Categories []categoryView     `json:"categories"`
}

func newTodayResponse(rec domain.DailyRecord) todayResponse {
	resp := todayResponse{Record: rec}
	for _, c := range domain.QuantitativeCategories {
		progress, goal, _ := rec.Progress(c)
		resp.Categories = append(resp.Categories, categoryView{
			Category:   c,
			Unit:       c.Unit(),
			Progress:   progress,
			Goal:       goal,
			Completion: domain.Completion(rec, c),
		})
	}
	return resp
}

func (h *TrackerHandler) RegisterRoutes(r *gin.RouterGroup) {
	tracker := r.Group("/tracker")
	{
		tracker.GET("/today", h.Today)
		tracker.PUT("/goals/:category", h.SetGoal)
		tracker.POST("/progress/:category", h.AddProgress)
		tracker.POST("/social-check/toggle", h.ToggleSocialCheck)
		tracker.POST("/mindset/toggle", h.ToggleMindset)
		tracker.POST("/reset", h.Reset)
		tracker.GET("/notices", h.Notices)
	}
	r.GET("/history", h.History)
}

// Today godoc
// @Summary   Today's record with per-category completion
// @Tags      tracker
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} todayResponse
// @Router    /tracker/today [get]
func (h *TrackerHandler) Today(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rec, err := h.svc.Today(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTodayResponse(rec))
}

// SetGoal godoc
// @Summary   Set today's goal of a quantitative category
// @Tags      tracker
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     category path string true "academic, physical or character"
// @Param     body body goalRequest true "new goal"
// @Success   200 {object} services.MutationResult
// @Failure   400 {object} errorResponse
// @Router    /tracker/goals/{category} [put]
func (h *TrackerHandler) SetGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		handleError(c, err)
		return
	}

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.SetGoal(c.Request.Context(), userID, category, *req.Goal)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddProgress godoc
// @Summary   Add progress to today's record
// @Tags      tracker
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     category path string true "academic, physical or character"
// @Param     body body progressRequest true "amount to add"
// @Success   200 {object} services.MutationResult
// @Failure   400 {object} errorResponse
// @Router    /tracker/progress/{category} [post]
func (h *TrackerHandler) AddProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		handleError(c, err)
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.AddProgress(c.Request.Context(), userID, category, *req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TrackerHandler) ToggleSocialCheck(c *gin.Context) {
	h.simpleMutation(c, h.svc.ToggleSocialCheck)
}

func (h *TrackerHandler) ToggleMindset(c *gin.Context) {
	h.simpleMutation(c, h.svc.ToggleMindset)
}

// Reset godoc
// @Summary   Zero today's progress, keep goals
// @Tags      tracker
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} services.MutationResult
// @Router    /tracker/reset [post]
func (h *TrackerHandler) Reset(c *gin.Context) {
	h.simpleMutation(c, h.svc.Reset)
}

type mutationFunc func(ctx context.Context, userID string) (*services.MutationResult, error)

func (h *TrackerHandler) simpleMutation(c *gin.Context, fn mutationFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Notices godoc
// @Summary   Drain pending status notices such as failed saves
// @Tags      tracker
// @Security  BearerAuth
// @Produce   json
// @Success   200 {array} services.Notice
// @Router    /tracker/notices [get]
func (h *TrackerHandler) Notices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	notices, err := h.svc.Notices(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, notices)
}

// History godoc
// @Summary   The full history document as stored
// @Tags      tracker
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} domain.Document
// @Router    /history [get]
func (h *TrackerHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	history, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Document{History: history})
}
