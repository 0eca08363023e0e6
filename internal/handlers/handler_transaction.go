package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/formagest/ledger_backend/internal/core/domain"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/formagest/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to ledger transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(transactionService portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{
		transactionService: transactionService,
	}
}

// registerTransactionRoutes registers the ledger transaction routes.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/search", h.searchTransactions)
		transactions.GET("/voucher/:voucherNumber", h.getTransactionByVoucher)
		transactions.GET("/summary/daily", h.getDailySummary)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.PUT("/:transactionID", h.updateTransaction)
		transactions.DELETE("/:transactionID", h.deleteTransaction)
		transactions.POST("/:transactionID/status", h.changeStatus)
		transactions.POST("/:transactionID/confirm", h.confirmTransaction)
		transactions.POST("/:transactionID/void", h.voidTransaction)
		transactions.POST("/:transactionID/reject", h.rejectTransaction)
		transactions.POST("/:transactionID/pending", h.markTransactionPending)
	}

	students := rg.Group("/students/:studentID")
	{
		students.GET("/transactions", h.listStudentTransactions)
		students.GET("/summary", h.getStudentSummary)
	}

	rg.GET("/programs/:programID/transactions", h.listProgramTransactions)
}

// registrarID extracts the acting operator from the request context; every
// mutating endpoint requires it.
func registrarID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetRegistrarIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + middleware.RegistrarIDHeader + " header"})
		return "", false
	}
	return id, true
}

// createTransaction registers a new ledger transaction.
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, registrar)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction returns a transaction by ID.
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getTransactionByVoucher returns a transaction by voucher number.
func (h *transactionHandler) getTransactionByVoucher(c *gin.Context) {
	txn, err := h.transactionService.GetTransactionByVoucherNumber(c.Request.Context(), c.Param("voucherNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactions returns a filtered, paginated list of transactions.
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// searchTransactions returns transactions matching a free-text query.
func (h *transactionHandler) searchTransactions(c *gin.Context) {
	var params dto.SearchTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.SearchTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listStudentTransactions returns the transactions of one student.
func (h *transactionHandler) listStudentTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	studentID := c.Param("studentID")
	params.StudentID = &studentID

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listProgramTransactions returns the transactions of one program.
func (h *transactionHandler) listProgramTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	programID := c.Param("programID")
	params.ProgramID = &programID

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateTransaction applies a partial update to a transaction.
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), c.Param("transactionID"), req, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// changeStatus moves a transaction to an arbitrary allowed status.
func (h *transactionHandler) changeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.ChangeStatus(c.Request.Context(), c.Param("transactionID"), domain.TransactionStatus(req.Status), req.Reason, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// confirmTransaction moves a transaction to CONFIRMED.
func (h *transactionHandler) confirmTransaction(c *gin.Context) {
	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.ConfirmTransaction(c.Request.Context(), c.Param("transactionID"), registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// voidTransaction moves a transaction to VOID with a mandatory reason.
func (h *transactionHandler) voidTransaction(c *gin.Context) {
	var req dto.VoidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.VoidTransaction(c.Request.Context(), c.Param("transactionID"), req.Reason, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// rejectTransaction moves a transaction to REJECTED.
func (h *transactionHandler) rejectTransaction(c *gin.Context) {
	var req dto.ChangeStatusRequest
	// The body is optional; an empty one means no reason.
	_ = c.ShouldBindJSON(&req)

	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.RejectTransaction(c.Request.Context(), c.Param("transactionID"), req.Reason, registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// markTransactionPending moves a transaction to PENDING.
func (h *transactionHandler) markTransactionPending(c *gin.Context) {
	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.MarkTransactionPending(c.Request.Context(), c.Param("transactionID"), registrar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction removes a transaction while its status allows it.
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	registrar, ok := registrarID(c)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("transactionID"), registrar); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getStudentSummary returns the payment aggregates of one student.
func (h *transactionHandler) getStudentSummary(c *gin.Context) {
	summary, err := h.transactionService.GetStudentSummary(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToStudentSummaryResponse(summary))
}

// getDailySummary returns the confirmed aggregates of one day. The day comes
// from the "date" query parameter and defaults to today.
func (h *transactionHandler) getDailySummary(c *gin.Context) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dto.PaymentDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := h.transactionService.GetDailySummary(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDailySummaryResponse(summary))
}
