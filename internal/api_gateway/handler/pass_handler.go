package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/api_gateway/middleware"
	"github.com/bank-reconciliation-engine/internal/api_gateway/service"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PassHandler handles HTTP requests for bulk reconciliation passes
type PassHandler struct {
	passService service.PassService
	logger      *slog.Logger
}

func NewPassHandler(logger *slog.Logger, passService service.PassService) *PassHandler {
	return &PassHandler{
		passService: passService,
		logger:      logger,
	}
}

// Create requests a pass and returns 202 with the pass id to poll
func (h *PassHandler) Create(c *gin.Context) {
	var req CreatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	passRequest := &shared.PassRequest{
		PassID:        uuid.New(),
		BankAccount:   req.BankAccount,
		From:          parseDate(req.From, false),
		To:            parseDate(req.To, true),
		CorrelationID: middleware.GetCorrelationID(c),
		RequestedAt:   time.Now().UTC(),
	}
	if err := passRequest.Validate(); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	pass, err := h.passService.RequestPass(c.Request.Context(), passRequest)
	if err != nil {
		if errors.Is(err, reconciliation.ErrPassAlreadyExists) {
			RespondConflict(c, "Pass already exists")
			return
		}
		h.logger.Error("Failed to request pass", "bank_account", req.BankAccount, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"pass_id": pass.ID.String(),
		"status":  string(pass.Status),
	})
}

// GetByID returns the pass record and its result, 404 if unknown
func (h *PassHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid pass ID")
		return
	}

	pass, err := h.passService.GetPass(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get pass", "pass_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}
	if pass == nil {
		RespondNotFound(c, "Pass not found")
		return
	}

	RespondOK(c, mapPassToResponse(pass))
}

// List returns the passes of a bank account, newest first
func (h *PassHandler) List(c *gin.Context) {
	bankAccount := c.Query("bank_account")
	if bankAccount == "" {
		RespondBadRequest(c, "bank_account is required")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	passes, err := h.passService.ListPasses(c.Request.Context(), bankAccount, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list passes", "bank_account", bankAccount, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PassResponse, 0, len(passes))
	for _, pass := range passes {
		responses = append(responses, mapPassToResponse(pass))
	}
	RespondPage(c, responses, pagination.Page, pagination.PerPage, len(responses))
}
