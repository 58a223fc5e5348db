package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/finance"
	"finboard/internal/services"
)

// DashboardHandler serves the aggregated dashboard figures.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// GetSummary returns the headline totals
// @Summary     Financial summary
// @Description Salary, account balances, recurring and one-off expenses and the resulting balance
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} finance.Summary
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetExpenses returns expenses grouped by category
// @Summary     Expense breakdown
// @Description Per-category expense totals. period is "all" (default, includes recurring), "current" or YYYY-MM (one-off transactions of that month).
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "all, current or YYYY-MM"
// @Success     200 {object} services.ExpenseBreakdown
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/expenses [get]
func (h *DashboardHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := finance.ParsePeriod(c.Query("period"), h.now())
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	breakdown, err := h.dashboardService.GetExpenseBreakdown(userID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
