package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/gin-gonic/gin"
)

type financialHandler struct {
	financialService portssvc.FinancialSvc
}

// registerFinancialRoutes registers the report route behind the client access check.
func registerFinancialRoutes(rg *gin.RouterGroup, financialService portssvc.FinancialSvc, access portssvc.AccessPolicy) {
	h := &financialHandler{financialService: financialService}
	rg.GET("/financial-data", middleware.CheckClientAccess(access), h.getFinancialData)
}

// getFinancialData godoc
// @Summary Get the P&L report of a client
// @Description Aggregates actuals and budget per account with the newest comment of each line.
// @Description An unparseable month is ignored and the full history is returned.
// @Tags financial
// @Produce json
// @Param client query string true "Client name"
// @Param month query string false "Month filter (YYYY-MM)"
// @Success 200 {object} dto.FinancialReportResponse
// @Failure 400 {object} dto.ErrorResponse "Client name is required"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Client not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to fetch financial data"
// @Security BearerAuth
// @Router /financial-data [get]
func (h *financialHandler) getFinancialData(c *gin.Context) {
	var params dto.FinancialDataParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Client name is required"})
		return
	}

	report, err := h.financialService.GetFinancialReport(c.Request.Context(), params.Client, params.Month)
	if err != nil {
		respondError(c, err, "Failed to fetch financial data")
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialReportResponse(report))
}
