package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the report routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/account-balance", h.accountBalanceReport)
	}

	rg.GET("/accounts/:accountID/statement", h.accountStatement)
}

// accountBalanceReport godoc
// @Summary Monthly balance report
// @Description Folds the flow history into per-account and per-currency opening/income/expense/closing sums for the month containing asOf
// @Tags reports
// @Produce  json
// @Param   asOf query string true "Any date inside the reporting month (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceReportResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/account-balance [get]
func (h *reportingHandler) accountBalanceReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.AccountBalanceReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	asOf, err := time.Parse("2006-01-02", params.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be YYYY-MM-DD"})
		return
	}

	logger.Info("Received request for balance report", slog.String("as_of", params.AsOf))

	report, err := h.reportingService.AccountBalanceReport(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err, "Failed to build balance report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// accountStatement godoc
// @Summary Account statement
// @Description Retrieves an account's flow sequence with running balances between two business dates
// @Tags reports
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string true "Inclusive start (YYYY-MM-DD)"
// @Param   to query string true "Inclusive end (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.AccountStatementResponse
// @Failure 400 {object} map[string]string "Invalid date range or token"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/statement [get]
func (h *reportingHandler) accountStatement(c *gin.Context) {
	accountID := c.Param("accountID")

	var params dto.AccountStatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	statement, err := h.reportingService.AccountStatement(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, err, "Failed to build account statement")
		return
	}

	c.JSON(http.StatusOK, statement)
}
