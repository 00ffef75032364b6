package handler

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/reconciliation_processor/engine"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreatePassRequest asks for a bulk reconciliation pass over one bank account
type CreatePassRequest struct {
	BankAccount string `json:"bank_account" binding:"required"`
	From        string `json:"from,omitempty" binding:"omitempty,datetime=2006-01-02"`
	To          string `json:"to,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// PassResponse represents a pass record in API responses
type PassResponse struct {
	PassID      string                     `json:"pass_id"`
	BankAccount string                     `json:"bank_account"`
	Status      string                     `json:"status"`
	From        string                     `json:"from,omitempty"`
	To          string                     `json:"to,omitempty"`
	Result      *reconciliation.BulkResult `json:"result,omitempty"`
	Error       string                     `json:"error,omitempty"`
	RequestedAt string                     `json:"requested_at"`
	StartedAt   string                     `json:"started_at,omitempty"`
	CompletedAt string                     `json:"completed_at,omitempty"`
}

// TransactionQuery filters the transaction listing
type TransactionQuery struct {
	BankAccount string `form:"bank_account" binding:"required"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// TransactionResponse represents a bank transaction in API responses
type TransactionResponse struct {
	ID              string                  `json:"id"`
	BankAccount     string                  `json:"bank_account"`
	Date            string                  `json:"date"`
	Description     string                  `json:"description"`
	Deposit         decimal.Decimal         `json:"deposit"`
	Withdrawal      decimal.Decimal         `json:"withdrawal"`
	PartyType       string                  `json:"party_type,omitempty"`
	PartyID         string                  `json:"party_id,omitempty"`
	ReferenceNumber string                  `json:"reference_number,omitempty"`
	Status          string                  `json:"status"`
	Voucher         *banktxn.Voucher        `json:"voucher,omitempty"`
	Categorization  *banktxn.Categorization `json:"categorization,omitempty"`
}

// ProposalListResponse represents the stored proposals of a transaction
type ProposalListResponse struct {
	TransactionID string                         `json:"transaction_id"`
	PassID        string                         `json:"pass_id,omitempty"`
	Proposals     []reconciliation.MatchProposal `json:"proposals"`
}

// ReconcileRequest selects one stored proposal
type ReconcileRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
}

// CategorizationResponse represents a categorization preview
type CategorizationResponse struct {
	Matched             bool   `json:"matched"`
	RuleID              string `json:"rule_id,omitempty"`
	RuleName            string `json:"rule_name,omitempty"`
	ProposedAccount     string `json:"proposed_account,omitempty"`
	ProposedPartyType   string `json:"proposed_party_type,omitempty"`
	ProposedParty       string `json:"proposed_party,omitempty"`
	ShouldAutoReconcile bool   `json:"should_auto_reconcile"`
}

// CreateRuleRequest represents a request to create a bank rule
type CreateRuleRequest struct {
	Name            string           `json:"name"`
	Pattern         string           `json:"pattern" binding:"required,rule_pattern"`
	MatchField      string           `json:"match_field" binding:"omitempty,oneof=DESCRIPTION REFERENCE_NUMBER PARTY"`
	MatchType       string           `json:"match_type" binding:"omitempty,oneof=CONTAINS STARTS_WITH ENDS_WITH EXACT REGEX"`
	Direction       string           `json:"direction" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	BankAccount     string           `json:"bank_account" binding:"omitempty,max=140"`
	MinAmount       *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount       *decimal.Decimal `json:"max_amount,omitempty"`
	TargetAccount   string           `json:"target_account" binding:"required"`
	TargetPartyType string           `json:"target_party_type"`
	TargetParty     string           `json:"target_party"`
	AutoReconcile   bool             `json:"auto_reconcile"`
	Active          *bool            `json:"active"`
}

// SuggestRuleRequest asks for draft rule params derived from a transaction
type SuggestRuleRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
}

// RuleResponse represents a bank rule in API responses
type RuleResponse struct {
	ID                 string              `json:"id,omitempty"`
	Name               string              `json:"name"`
	Pattern            string              `json:"pattern"`
	MatchField         string              `json:"match_field"`
	MatchType          string              `json:"match_type"`
	Direction          string              `json:"direction,omitempty"`
	BankAccount        string              `json:"bank_account,omitempty"`
	MinAmount          decimal.NullDecimal `json:"min_amount"`
	MaxAmount          decimal.NullDecimal `json:"max_amount"`
	TargetAccount      string              `json:"target_account"`
	TargetPartyType    string              `json:"target_party_type,omitempty"`
	TargetParty        string              `json:"target_party,omitempty"`
	AutoReconcile      bool                `json:"auto_reconcile"`
	Active             bool                `json:"active"`
	TimesMatched       int64               `json:"times_matched"`
	TotalAmountMatched decimal.Decimal     `json:"total_amount_matched"`
	LastMatchedAt      string              `json:"last_matched_at,omitempty"`
	CreatedAt          string              `json:"created_at,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func (r CreateRuleRequest) params() rule.Params {
	p := rule.Params{
		Name:            r.Name,
		Pattern:         r.Pattern,
		MatchField:      rule.MatchField(r.MatchField),
		MatchType:       rule.MatchType(r.MatchType),
		TargetAccount:   r.TargetAccount,
		TargetPartyType: r.TargetPartyType,
		TargetParty:     r.TargetParty,
		AutoReconcile:   r.AutoReconcile,
		Direction:       shared.TransactionType(r.Direction),
		BankAccount:     r.BankAccount,
		Active:          r.Active == nil || *r.Active,
	}
	if r.MinAmount != nil {
		p.MinAmount = decimal.NewNullDecimal(*r.MinAmount)
	}
	if r.MaxAmount != nil {
		p.MaxAmount = decimal.NewNullDecimal(*r.MaxAmount)
	}
	return p
}

// parseDate returns the zero time for an empty value; binding has already checked the layout
func parseDate(value string, endOfDay bool) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func mapPassToResponse(pass *reconciliation.Pass) PassResponse {
	return PassResponse{
		PassID:      pass.ID.String(),
		BankAccount: pass.BankAccount,
		Status:      string(pass.Status),
		From:        formatDate(pass.From),
		To:          formatDate(pass.To),
		Result:      pass.Result,
		Error:       pass.Error,
		RequestedAt: formatTime(&pass.RequestedAt),
		StartedAt:   formatTime(pass.StartedAt),
		CompletedAt: formatTime(pass.CompletedAt),
	}
}

func mapTransactionToResponse(txn *banktxn.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID.String(),
		BankAccount:     txn.BankAccount,
		Date:            formatDate(txn.Date),
		Description:     txn.Description,
		Deposit:         txn.Deposit,
		Withdrawal:      txn.Withdrawal,
		PartyType:       txn.PartyType,
		PartyID:         txn.PartyID,
		ReferenceNumber: txn.ReferenceNumber,
		Status:          string(txn.Status),
		Voucher:         txn.Voucher,
		Categorization:  txn.Categorization,
	}
}

func mapCategorizationToResponse(result *engine.CategorizationResult) CategorizationResponse {
	response := CategorizationResponse{
		Matched:             result.Matched(),
		ProposedAccount:     result.ProposedAccount,
		ProposedPartyType:   result.ProposedPartyType,
		ProposedParty:       result.ProposedParty,
		ShouldAutoReconcile: result.ShouldAutoReconcile,
	}
	if result.MatchedRule != nil {
		response.RuleID = result.MatchedRule.ID.String()
		response.RuleName = result.MatchedRule.Name
	}
	return response
}

func mapRuleToResponse(r *rule.Rule) RuleResponse {
	return RuleResponse{
		ID:                 r.ID.String(),
		Name:               r.Name,
		Pattern:            r.Pattern,
		MatchField:         string(r.MatchField),
		MatchType:          string(r.MatchType),
		Direction:          string(r.Direction),
		BankAccount:        r.BankAccount,
		MinAmount:          r.MinAmount,
		MaxAmount:          r.MaxAmount,
		TargetAccount:      r.TargetAccount,
		TargetPartyType:    r.TargetPartyType,
		TargetParty:        r.TargetParty,
		AutoReconcile:      r.AutoReconcile,
		Active:             r.Active,
		TimesMatched:       r.TimesMatched,
		TotalAmountMatched: r.TotalAmountMatched,
		LastMatchedAt:      formatTime(r.LastMatchedAt),
		CreatedAt:          formatTime(&r.CreatedAt),
	}
}

func mapParamsToResponse(p rule.Params) RuleResponse {
	return RuleResponse{
		Name:               p.Name,
		Pattern:            p.Pattern,
		MatchField:         string(p.MatchField),
		MatchType:          string(p.MatchType),
		Direction:          string(p.Direction),
		BankAccount:        p.BankAccount,
		MinAmount:          p.MinAmount,
		MaxAmount:          p.MaxAmount,
		TargetAccount:      p.TargetAccount,
		AutoReconcile:      p.AutoReconcile,
		Active:             p.Active,
		TotalAmountMatched: decimal.Zero,
	}
}
