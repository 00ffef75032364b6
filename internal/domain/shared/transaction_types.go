package shared

// TransactionType is the direction of a bank transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is a known direction
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// ReconciliationStatus defines bank transaction reconciliation states
type ReconciliationStatus string

const (
	StatusUnreconciled ReconciliationStatus = "UNRECONCILED"
	StatusSuggested    ReconciliationStatus = "SUGGESTED"
	StatusReconciled   ReconciliationStatus = "RECONCILED"
)

// DocumentType defines candidate document kinds
type DocumentType string

const (
	DocumentTypeReceivable DocumentType = "RECEIVABLE"
	DocumentTypePayable    DocumentType = "PAYABLE"
)

// DocumentTypeFor returns the candidate document kind that can settle a transaction of the given direction
func DocumentTypeFor(direction TransactionType) DocumentType {
	if direction == TransactionTypeDeposit {
		return DocumentTypeReceivable
	}
	return DocumentTypePayable
}

// VoucherTypeBankRule marks a reconciliation produced by a bank rule rather than a document
const VoucherTypeBankRule = "BANK_RULE"

// FailureReason defines per-transaction failure categories reported by a bulk pass
type FailureReason string

const (
	FailureReasonInvalidAmounts          FailureReason = "INVALID_AMOUNTS"
	FailureReasonCollaboratorUnavailable FailureReason = "COLLABORATOR_UNAVAILABLE"
	FailureReasonDocumentSettled         FailureReason = "DOCUMENT_ALREADY_SETTLED"
	FailureReasonUnknownError            FailureReason = "UNKNOWN_ERROR"
)

// PassStatus defines bulk pass lifecycle states
type PassStatus string

const (
	PassStatusPending   PassStatus = "PENDING"
	PassStatusRunning   PassStatus = "RUNNING"
	PassStatusCompleted PassStatus = "COMPLETED"
	PassStatusCancelled PassStatus = "CANCELLED"
	PassStatusFailed    PassStatus = "FAILED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
