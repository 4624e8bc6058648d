package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests related to settlements.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// newSettlementHandler creates a new settlementHandler.
func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{
		settlementService: ss,
	}
}

// registerSettlementRoutes registers routes related to settlements.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/ar-ap/settlements")
	{
		settlements.POST("", middleware.RequireActor(), h.createSettlement)
		settlements.GET("/:settlementID", h.getSettlementByID)
		settlements.POST("/:settlementID/reverse", middleware.RequireActor(), h.reverseSettlement)
	}

	// Settlement views hang off the owning document.
	rg.GET("/ar-ap/docs/:docID/settlements", h.listSettlementsByDoc)
	rg.GET("/ar-ap/docs/:docID/settlement-candidates", h.listSettlementCandidates)
}

// createSettlement godoc
// @Summary Create a settlement
// @Description Allocates part of a flow's value against a document's outstanding amount
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   settlement body dto.CreateSettlementRequest true "Settlement details"
// @Success 201 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 404 {object} map[string]string "Document or flow not found"
// @Failure 409 {object} map[string]string "Document cannot be settled or amount exceeds remaining capacity"
// @Router /ar-ap/settlements [post]
func (h *settlementHandler) createSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(
		slog.String("actor_id", actorID),
		slog.String("doc_id", req.DocID),
		slog.String("flow_id", req.FlowID))
	logger.Info("Received request to create settlement", slog.Int64("amount_cents", req.SettleAmountCents))

	settlement, err := h.settlementService.Settle(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create settlement")
		return
	}

	logger.Info("Settlement created successfully", slog.String("settlement_id", settlement.SettlementID))
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}

// reverseSettlement godoc
// @Summary Reverse a settlement
// @Description Records an explicit compensating entry and restores the document's capacity
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   settlementID path string true "Settlement ID"
// @Param   reversal body dto.ReverseSettlementRequest false "Optional reason"
// @Success 201 {object} dto.SettlementReversalResponse
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 409 {object} map[string]string "Settlement already reversed"
// @Router /ar-ap/settlements/{settlementID}/reverse [post]
func (h *settlementHandler) reverseSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	settlementID := c.Param("settlementID")

	var req dto.ReverseSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	reversal, err := h.settlementService.ReverseSettlement(c.Request.Context(), settlementID, req.Reason, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to reverse settlement")
		return
	}

	logger.Info("Settlement reversed successfully",
		slog.String("settlement_id", settlementID),
		slog.String("reversal_id", reversal.ReversalID))
	c.JSON(http.StatusCreated, dto.ToSettlementReversalResponse(reversal))
}

// getSettlementByID godoc
// @Summary Get a settlement by ID
// @Description Retrieves a single settlement record
// @Tags settlements
// @Produce  json
// @Param   settlementID path string true "Settlement ID"
// @Success 200 {object} dto.SettlementResponse
// @Failure 404 {object} map[string]string "Settlement not found"
// @Failure 500 {object} map[string]string "Failed to retrieve settlement"
// @Router /ar-ap/settlements/{settlementID} [get]
func (h *settlementHandler) getSettlementByID(c *gin.Context) {
	settlementID := c.Param("settlementID")

	settlement, err := h.settlementService.GetSettlementByID(c.Request.Context(), settlementID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve settlement")
		return
	}

	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// listSettlementsByDoc godoc
// @Summary List a document's settlements
// @Description Retrieves all settlements applied to a document, reversed rows included
// @Tags settlements
// @Produce  json
// @Param   docID path string true "Document ID"
// @Success 200 {object} dto.ListSettlementsResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to list settlements"
// @Router /ar-ap/docs/{docID}/settlements [get]
func (h *settlementHandler) listSettlementsByDoc(c *gin.Context) {
	docID := c.Param("docID")

	settlements, err := h.settlementService.ListSettlementsByDoc(c.Request.Context(), docID)
	if err != nil {
		respondWithError(c, err, "Failed to list settlements")
		return
	}

	c.JSON(http.StatusOK, dto.ListSettlementsResponse{
		Settlements: dto.ToSettlementResponses(settlements),
	})
}

// listSettlementCandidates godoc
// @Summary List settlement candidates for a document
// @Description Retrieves flows that can back a settlement of the document, with their unallocated remainders
// @Tags settlements
// @Produce  json
// @Param   docID path string true "Document ID"
// @Param   counterparty query string false "Counterparty filter"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListSettlementCandidatesResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document cannot be settled"
// @Router /ar-ap/docs/{docID}/settlement-candidates [get]
func (h *settlementHandler) listSettlementCandidates(c *gin.Context) {
	docID := c.Param("docID")

	var params dto.ListSettlementCandidatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.settlementService.ListSettlementCandidates(c.Request.Context(), docID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list settlement candidates")
		return
	}

	c.JSON(http.StatusOK, resp)
}
