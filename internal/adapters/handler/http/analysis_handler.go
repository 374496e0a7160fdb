package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/presenter"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
)

type AnalysisHandler struct {
	svc *services.TrackerService
}

func NewAnalysisHandler(svc *services.TrackerService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

func (h *AnalysisHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/analysis", h.Chart)
	r.GET("/analysis/raw", h.Raw)
}

func (h *AnalysisHandler) analyze(c *gin.Context) (domain.Analysis, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return domain.Analysis{}, false
	}

	period, err := domain.ParsePeriod(c.DefaultQuery("period", string(domain.PeriodWeek)))
	if err != nil {
		handleError(c, err)
		return domain.Analysis{}, false
	}

	analysis, err := h.svc.Analyze(c.Request.Context(), userID, period)
	if err != nil {
		handleError(c, err)
		return domain.Analysis{}, false
	}

	return analysis, true
}

// Chart godoc
// @Summary   Current vs previous window, ready for a chart
// @Tags      analysis
// @Security  BearerAuth
// @Produce   json
// @Param     period query string false "week, month, year or all" default(week)
// @Success   200 {object} presenter.ChartView
// @Failure   400 {object} errorResponse
// @Router    /analysis [get]
func (h *AnalysisHandler) Chart(c *gin.Context) {
	analysis, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, presenter.NewChartView(analysis))
}

// Raw godoc
// @Summary   Engine output with per-day completions
// @Tags      analysis
// @Security  BearerAuth
// @Produce   json
// @Param     period query string false "week, month, year or all" default(week)
// @Success   200 {object} domain.Analysis
// @Failure   400 {object} errorResponse
// @Router    /analysis/raw [get]
func (h *AnalysisHandler) Raw(c *gin.Context) {
	analysis, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis)
}
