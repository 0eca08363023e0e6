package handlers

import (
	"errors"
	"net/http"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/services"
	"github.com/formagest/ledger_backend/internal/utils/amounts"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Validation problems are
// 400, missing rows 404, business-rule conflicts 409, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, amounts.ErrInconsistent),
		errors.Is(err, amounts.ErrLineItemsInconsistent),
		errors.Is(err, services.ErrMissingBankName),
		errors.Is(err, services.ErrMissingReceiptNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrDuplicateReceipt),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrImmutableState),
		errors.Is(err, services.ErrDuplicateReceiptNumber),
		errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrVoucherGeneration):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
