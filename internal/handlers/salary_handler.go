package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finboard/internal/services"
)

// SalaryHandler handles the salary figure stored on the user.
type SalaryHandler struct {
	salaryService services.SalaryServicer
	auditService  services.AuditServicer
}

// NewSalaryHandler creates a new SalaryHandler.
func NewSalaryHandler(salaryService services.SalaryServicer, auditService services.AuditServicer) *SalaryHandler {
	return &SalaryHandler{salaryService: salaryService, auditService: auditService}
}

// SetSalaryRequest represents the salary update payload
type SetSalaryRequest struct {
	Salary *decimal.Decimal `json:"salary" binding:"required" swaggertype:"string" example:"2500.00"`
}

// AddIncomeRequest represents an income addition
type AddIncomeRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"150.00"`
}

// SalaryResponse carries the current salary
type SalaryResponse struct {
	Salary decimal.Decimal `json:"salary" swaggertype:"string"`
}

// GetSalary returns the salary
// @Summary     Get salary
// @Tags        salary
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SalaryResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salary [get]
func (h *SalaryHandler) GetSalary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	salary, err := h.salaryService.GetSalary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SalaryResponse{Salary: salary})
}

// SetSalary overwrites the salary
// @Summary     Set salary
// @Description Overwrite the salary. Percentage budgets follow the new value.
// @Tags        salary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetSalaryRequest true "New salary"
// @Success     200 {object} SalaryResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salary [put]
func (h *SalaryHandler) SetSalary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetSalaryRequest
	if !bindJSON(c, &req) {
		return
	}

	salary, err := h.salaryService.SetSalary(userID, *req.Salary)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_SALARY", "salary", userID, c.ClientIP(),
		map[string]interface{}{"salary": salary.String()})

	c.JSON(http.StatusOK, SalaryResponse{Salary: salary})
}

// AddIncome adds an income amount to the salary
// @Summary     Add income
// @Tags        salary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddIncomeRequest true "Income amount"
// @Success     200 {object} SalaryResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salary/income [post]
func (h *SalaryHandler) AddIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddIncomeRequest
	if !bindJSON(c, &req) {
		return
	}

	salary, err := h.salaryService.AddIncome(userID, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_INCOME", "salary", userID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String()})

	c.JSON(http.StatusOK, SalaryResponse{Salary: salary})
}
