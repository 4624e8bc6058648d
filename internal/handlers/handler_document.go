package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentHandler handles HTTP requests related to AR/AP documents.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{
		documentService: ds,
	}
}

// registerDocumentRoutes registers routes related to AR/AP documents.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	documents := rg.Group("/ar-ap/docs")
	{
		documents.POST("", middleware.RequireActor(), h.createDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:docID", h.getDocumentByID)
		documents.POST("/:docID/confirm", middleware.RequireActor(), h.confirmDocument)
		documents.POST("/:docID/reverse", middleware.RequireActor(), h.reverseDocument)
	}
}

// createDocument godoc
// @Summary Create a draft document
// @Description Creates a receivable or payable in DRAFT with no ledger effect
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document body dto.CreateDocumentRequest true "Document details"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create document"
// @Router /ar-ap/docs [post]
func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("actor_id", actorID))
	logger.Info("Received request to create document", slog.String("kind", string(req.Kind)))

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create document")
		return
	}

	logger.Info("Document created successfully", slog.String("doc_id", doc.DocID))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// confirmDocument godoc
// @Summary Confirm a draft document
// @Description Posts the recognition flow on the given account and moves the document to CONFIRMED
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   docID path string true "Document ID"
// @Param   confirmation body dto.ConfirmDocumentRequest true "Confirmation details"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 404 {object} map[string]string "Document or account not found"
// @Failure 409 {object} map[string]string "Document is not DRAFT"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Router /ar-ap/docs/{docID}/confirm [post]
func (h *documentHandler) confirmDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docID := c.Param("docID")

	var req dto.ConfirmDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConfirmDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("doc_id", docID), slog.String("actor_id", actorID))
	logger.Info("Received request to confirm document")

	doc, err := h.documentService.ConfirmDocument(c.Request.Context(), docID, req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to confirm document")
		return
	}

	logger.Info("Document confirmed successfully", slog.String("status", string(doc.Status)))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// reverseDocument godoc
// @Summary Reverse a document
// @Description Posts a compensating flow for the unsettled remainder and freezes the document at REVERSED
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   docID path string true "Document ID"
// @Param   reversal body dto.ReverseDocumentRequest false "Optional memo"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is already terminal"
// @Router /ar-ap/docs/{docID}/reverse [post]
func (h *documentHandler) reverseDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	docID := c.Param("docID")

	var req dto.ReverseDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := requireActor(c)
	if !ok {
		return
	}

	doc, err := h.documentService.ReverseDocument(c.Request.Context(), docID, req.Memo, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to reverse document")
		return
	}

	logger.Info("Document reversed successfully", slog.String("doc_id", docID))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// getDocumentByID godoc
// @Summary Get a document by ID
// @Description Retrieves a document including its settlement progress
// @Tags documents
// @Produce  json
// @Param   docID path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to retrieve document"
// @Router /ar-ap/docs/{docID} [get]
func (h *documentHandler) getDocumentByID(c *gin.Context) {
	docID := c.Param("docID")

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), docID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve document")
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents
// @Description Retrieves a paginated list of documents filtered by kind, status, party or site
// @Tags documents
// @Produce  json
// @Param   kind query string false "AR or AP"
// @Param   status query string false "Document status"
// @Param   partyId query string false "Party filter"
// @Param   siteId query string false "Site filter"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 400 {object} map[string]string "Invalid filter or token"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Router /ar-ap/docs [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, resp)
}
