package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// flowHandler handles HTTP requests related to ledger entries.
type flowHandler struct {
	flowService portssvc.FlowSvcFacade
}

// newFlowHandler creates a new flowHandler.
func newFlowHandler(fs portssvc.FlowSvcFacade) *flowHandler {
	return &flowHandler{
		flowService: fs,
	}
}

// registerFlowRoutes registers routes related to ledger entries.
func registerFlowRoutes(rg *gin.RouterGroup, flowService portssvc.FlowSvcFacade) {
	h := newFlowHandler(flowService)

	flows := rg.Group("/flows")
	{
		flows.POST("", middleware.RequireActor(), h.postFlow)
		flows.GET("/:flowID", h.getFlowByID)
		flows.POST("/:flowID/reverse", middleware.RequireActor(), h.reverseFlow)
		flows.PUT("/:flowID/vouchers", middleware.RequireActor(), h.attachVoucher)
	}

	// Flow history hangs off the owning account.
	rg.GET("/accounts/:accountID/transactions", h.listFlowsByAccount)
}

// postFlow godoc
// @Summary Post a ledger entry
// @Description Posts an income, expense or adjustment entry and atomically moves the account balance
// @Tags flows
// @Accept  json
// @Produce  json
// @Param   flow body dto.PostFlowRequest true "Flow details"
// @Success 201 {object} dto.FlowResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 503 {object} map[string]string "Account busy, retry"
// @Router /flows [post]
func (h *flowHandler) postFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostFlow", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("actor_id", actorID), slog.String("account_id", req.AccountID))
	logger.Info("Received request to post flow", slog.String("flow_type", string(req.TransactionType)))

	postedFlow, err := h.flowService.PostFlow(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to post flow")
		return
	}

	logger.Info("Flow posted successfully",
		slog.String("flow_id", postedFlow.FlowID),
		slog.Int64("flow_seq", postedFlow.FlowSeq))
	c.JSON(http.StatusCreated, dto.ToFlowResponse(postedFlow))
}

// getFlowByID godoc
// @Summary Get a flow by ID
// @Description Retrieves a single ledger entry including its balance snapshot
// @Tags flows
// @Produce  json
// @Param   flowID path string true "Flow ID"
// @Success 200 {object} dto.FlowResponse
// @Failure 404 {object} map[string]string "Flow not found"
// @Failure 500 {object} map[string]string "Failed to retrieve flow"
// @Router /flows/{flowID} [get]
func (h *flowHandler) getFlowByID(c *gin.Context) {
	flowID := c.Param("flowID")

	flow, err := h.flowService.GetFlowByID(c.Request.Context(), flowID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve flow")
		return
	}

	c.JSON(http.StatusOK, dto.ToFlowResponse(flow))
}

// reverseFlow godoc
// @Summary Reverse a flow
// @Description Posts an offsetting entry referencing the original; posted flows are never edited
// @Tags flows
// @Accept  json
// @Produce  json
// @Param   flowID path string true "Flow ID"
// @Param   reversal body dto.ReverseFlowRequest false "Optional memo"
// @Success 201 {object} dto.FlowResponse
// @Failure 404 {object} map[string]string "Flow not found"
// @Failure 409 {object} map[string]string "Flow is itself a reversal"
// @Failure 422 {object} map[string]string "Reversal would overdraw the account"
// @Router /flows/{flowID}/reverse [post]
func (h *flowHandler) reverseFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	flowID := c.Param("flowID")

	var req dto.ReverseFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	reversalFlow, err := h.flowService.ReverseFlow(c.Request.Context(), flowID, req.Memo, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to reverse flow")
		return
	}

	logger.Info("Flow reversed successfully",
		slog.String("flow_id", flowID),
		slog.String("reversal_flow_id", reversalFlow.FlowID))
	c.JSON(http.StatusCreated, dto.ToFlowResponse(reversalFlow))
}

// attachVoucher godoc
// @Summary Attach a voucher to a flow
// @Description Appends a voucher URL to a posted flow, its only permitted mutation
// @Tags flows
// @Accept  json
// @Produce  json
// @Param   flowID path string true "Flow ID"
// @Param   voucher body dto.AttachVoucherRequest true "Voucher URL"
// @Success 204 "Attached"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Flow not found"
// @Router /flows/{flowID}/vouchers [put]
func (h *flowHandler) attachVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	flowID := c.Param("flowID")

	var req dto.AttachVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.flowService.AttachVoucher(c.Request.Context(), flowID, req.VoucherURL, actorID); err != nil {
		respondWithError(c, err, "Failed to attach voucher")
		return
	}

	logger.Info("Voucher attached successfully", slog.String("flow_id", flowID))
	c.Status(http.StatusNoContent)
}

// listFlowsByAccount godoc
// @Summary List an account's flows
// @Description Retrieves the account's flow history in posting order, newest first
// @Tags flows
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Inclusive business date lower bound (YYYY-MM-DD)"
// @Param   to query string false "Inclusive business date upper bound (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListFlowsResponse
// @Failure 400 {object} map[string]string "Invalid date range or token"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/transactions [get]
func (h *flowHandler) listFlowsByAccount(c *gin.Context) {
	accountID := c.Param("accountID")

	var params dto.ListFlowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.flowService.ListFlowsByAccount(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list flows")
		return
	}

	c.JSON(http.StatusOK, resp)
}
