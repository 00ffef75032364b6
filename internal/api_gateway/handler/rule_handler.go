package handler

import (
	"errors"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/api_gateway/service"
	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RuleHandler handles HTTP requests for bank rule maintenance
type RuleHandler struct {
	ruleService service.RuleService
	logger      *slog.Logger
}

func NewRuleHandler(logger *slog.Logger, ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{
		ruleService: ruleService,
		logger:      logger,
	}
}

func (h *RuleHandler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	r, err := h.ruleService.CreateRule(c.Request.Context(), req.params())
	if err != nil {
		var conflict rule.RuleConflictError
		if errors.As(err, &conflict) {
			RespondBadRequest(c, conflict.Error())
			return
		}
		h.logger.Error("Failed to create rule", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapRuleToResponse(r))
}

// List returns rules in evaluation order
func (h *RuleHandler) List(c *gin.Context) {
	rules, err := h.ruleService.ListRules(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list rules", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		responses = append(responses, mapRuleToResponse(r))
	}
	RespondOK(c, responses)
}

func (h *RuleHandler) GetByID(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	r, err := h.ruleService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get rule", "rule_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}
	if r == nil {
		RespondNotFound(c, "Rule not found")
		return
	}

	RespondOK(c, mapRuleToResponse(r))
}

func (h *RuleHandler) Delete(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	err := h.ruleService.DeleteRule(c.Request.Context(), id)
	switch {
	case err == nil:
		RespondNoContent(c)
	case errors.Is(err, rule.ErrRuleNotFound{}):
		RespondNotFound(c, "Rule not found")
	default:
		h.logger.Error("Failed to delete rule", "rule_id", id.String(), "error", err)
		RespondInternalError(c)
	}
}

// Suggest drafts a rule from a transaction description; nothing is stored
func (h *RuleHandler) Suggest(c *gin.Context) {
	var req SuggestRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	transactionID := uuid.MustParse(req.TransactionID)

	params, err := h.ruleService.SuggestRule(c.Request.Context(), transactionID)
	switch {
	case err == nil:
		RespondOK(c, mapParamsToResponse(params))
	case errors.Is(err, banktxn.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	case errors.Is(err, shared.InvalidTransactionError{}), errors.Is(err, rule.RuleConflictError{}):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Failed to suggest rule", "transaction_id", req.TransactionID, "error", err)
		RespondInternalError(c)
	}
}

func (h *RuleHandler) ruleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid rule ID")
		return uuid.Nil, false
	}
	return id, true
}
