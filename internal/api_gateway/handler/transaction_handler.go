package handler

import (
	"errors"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/api_gateway/service"
	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles HTTP requests for bank transactions
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List returns the transactions of a bank account, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	dateRange := banktxn.DateRange{From: parseDate(query.From, false), To: parseDate(query.To, true)}
	txns, err := h.transactionService.ListTransactions(c.Request.Context(), query.BankAccount, dateRange)
	if err != nil {
		h.logger.Error("Failed to list transactions", "bank_account", query.BankAccount, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}
	RespondOK(c, responses)
}

// GetByID retrieves a transaction, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}
	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

func (h *TransactionHandler) GetProposals(c *gin.Context) {
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	set, err := h.transactionService.GetProposals(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get proposals", "transaction_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := ProposalListResponse{TransactionID: id.String(), Proposals: set.Proposals}
	if set.PassID != uuid.Nil {
		response.PassID = set.PassID.String()
	}
	RespondOK(c, response)
}

// Reconcile accepts one stored proposal on behalf of a human reviewer
func (h *TransactionHandler) Reconcile(c *gin.Context) {
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.transactionService.AcceptProposal(c.Request.Context(), id, req.DocumentID)
	switch {
	case err == nil:
		RespondOK(c, mapTransactionToResponse(txn))
	case errors.Is(err, banktxn.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	case errors.Is(err, service.ErrProposalConflict{}):
		RespondConflict(c, err.Error())
	default:
		h.logger.Error("Failed to reconcile transaction", "transaction_id", id.String(), "document_id", req.DocumentID, "error", err)
		RespondInternalError(c)
	}
}

// Categorize previews the current rules against a transaction
func (h *TransactionHandler) Categorize(c *gin.Context) {
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	result, err := h.transactionService.PreviewCategorization(c.Request.Context(), id)
	switch {
	case err == nil:
		RespondOK(c, mapCategorizationToResponse(result))
	case errors.Is(err, banktxn.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	default:
		h.logger.Error("Failed to preview categorization", "transaction_id", id.String(), "error", err)
		RespondInternalError(c)
	}
}

func (h *TransactionHandler) transactionID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return uuid.Nil, false
	}
	return id, true
}
