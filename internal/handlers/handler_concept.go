package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/formagest/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// conceptHandler handles HTTP requests for the payment concept catalog.
type conceptHandler struct {
	conceptService portssvc.ConceptSvcFacade
}

// newConceptHandler creates a new conceptHandler.
func newConceptHandler(conceptService portssvc.ConceptSvcFacade) *conceptHandler {
	return &conceptHandler{
		conceptService: conceptService,
	}
}

// registerConceptRoutes registers the payment concept catalog routes.
func registerConceptRoutes(rg *gin.RouterGroup, conceptService portssvc.ConceptSvcFacade) {
	h := newConceptHandler(conceptService)

	concepts := rg.Group("/concepts")
	{
		concepts.POST("", h.createConcept)
		concepts.GET("", h.listConcepts)
		concepts.GET("/:conceptID", h.getConcept)
		concepts.PUT("/:conceptID", h.updateConcept)
		concepts.DELETE("/:conceptID", h.deactivateConcept)
	}
}

// createConcept adds a new catalog entry.
func (h *conceptHandler) createConcept(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createConcept", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	concept, err := h.conceptService.CreateConcept(c.Request.Context(), req, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToConceptResponse(concept))
}

// listConcepts returns the catalog; "active=true" narrows it to active entries.
func (h *conceptHandler) listConcepts(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "false") == "true"

	concepts, err := h.conceptService.ListConcepts(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concepts": dto.ToConceptResponses(concepts)})
}

// getConcept returns a single catalog entry.
func (h *conceptHandler) getConcept(c *gin.Context) {
	concept, err := h.conceptService.GetConceptByID(c.Request.Context(), c.Param("conceptID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToConceptResponse(concept))
}

// updateConcept applies a partial update to a catalog entry.
func (h *conceptHandler) updateConcept(c *gin.Context) {
	var req dto.UpdateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	concept, err := h.conceptService.UpdateConcept(c.Request.Context(), c.Param("conceptID"), req, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToConceptResponse(concept))
}

// deactivateConcept marks a catalog entry inactive.
func (h *conceptHandler) deactivateConcept(c *gin.Context) {
	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	if err := h.conceptService.DeactivateConcept(c.Request.Context(), c.Param("conceptID"), registrar); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
