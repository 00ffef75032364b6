package reconciliation

import (
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// Failure records why one transaction could not be processed in a pass
type Failure struct {
	TransactionID uuid.UUID            `json:"transaction_id" bson:"transaction_id"`
	Reason        shared.FailureReason `json:"reason" bson:"reason"`
	Error         string               `json:"error" bson:"error"`
}

// BulkResult aggregates the outcome of one bulk reconciliation pass
type BulkResult struct {
	Processed    int       `json:"processed" bson:"processed"`
	Matched      int       `json:"matched" bson:"matched"`
	Reconciled   int       `json:"reconciled" bson:"reconciled"`
	Suggested    int       `json:"suggested" bson:"suggested"`
	Unreconciled int       `json:"unreconciled" bson:"unreconciled"`
	Failed       int       `json:"failed" bson:"failed"`
	Skipped      int       `json:"skipped" bson:"skipped"`
	Categorized  int       `json:"categorized" bson:"categorized"`
	Deposits     int       `json:"deposits" bson:"deposits"`
	Withdrawals  int       `json:"withdrawals" bson:"withdrawals"`
	Cancelled    bool      `json:"cancelled" bson:"cancelled"`
	Failures     []Failure `json:"failures,omitempty" bson:"failures,omitempty"`
}

// RecordFailure counts a failed transaction and retains its reason
func (r *BulkResult) RecordFailure(id uuid.UUID, reason shared.FailureReason, err error) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{TransactionID: id, Reason: reason, Error: err.Error()})
}

// Finalize derives the matched count
func (r *BulkResult) Finalize() {
	r.Matched = r.Reconciled + r.Suggested
}
