package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/dto"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransaction handles the creation of a new transaction.
// @Summary     Create a transaction
// @Description Record a transaction against an account, category and currency
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body dto.CreateTransactionCommand true "Transaction details"
// @Success     201 {object} dto.TransactionDTO "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req dto.CreateTransactionCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	ctx := c.Request.Context()
	tx, err := h.transactionService.CreateTransaction(ctx, userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ctx, userID, services.AuditActionCreate, services.AuditResourceTransaction, tx.ID, c.ClientIP(),
		map[string]any{"account_id": tx.AccountID, "category_id": tx.CategoryID, "amount": tx.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetUserTransactions handles listing the user's transactions.
// @Summary     Get transactions
// @Description Get a filtered, sorted and paginated list of the user's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       date_from        query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       date_to          query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       account_id       query int    false "Filter by account"
// @Param       category_id      query int    false "Filter by category"
// @Param       search           query string false "Case-insensitive comment search (min 2 chars)"
// @Param       sort             query string false "transaction_date|amount with :asc or :desc"
// @Param       page             query int    false "Page number (default 1)"
// @Param       limit            query int    false "Items per page (default 20, max 100)"
// @Param       include_inactive query bool   false "Include deleted transactions"
// @Success     200 {object} pagination.PageResponse[dto.TransactionDTO] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query dto.GetTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles the retrieval of a specific transaction.
// @Summary     Get transaction by ID
// @Description Get an active transaction with its account, category and currency names
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} dto.TransactionDTO "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if tx == nil {
		respondWithError(c, apperrors.ErrTransactionNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction handles updating a transaction.
// @Summary     Update transaction
// @Description Change any subset of an active transaction's fields
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                          true "Transaction ID"
// @Param       request body dto.UpdateTransactionCommand true "Fields to change"
// @Success     200 {object} dto.TransactionDTO "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req dto.UpdateTransactionCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	ctx := c.Request.Context()
	tx, err := h.transactionService.UpdateTransaction(ctx, userID, transactionID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{
		"transaction_date": req.TransactionDate,
		"account_id":       req.AccountID,
		"category_id":      req.CategoryID,
		"currency_id":      req.CurrencyID,
	}
	if req.Amount != nil {
		changes["amount"] = req.Amount.StringFixed(2)
	}
	h.auditService.Log(ctx, userID, services.AuditActionUpdate, services.AuditResourceTransaction, tx.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction handles soft-deleting a transaction.
// @Summary     Delete transaction
// @Description Deactivate a transaction; it no longer counts towards the account balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.transactionService.DeleteTransaction(ctx, userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ctx, userID, services.AuditActionDelete, services.AuditResourceTransaction, transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
