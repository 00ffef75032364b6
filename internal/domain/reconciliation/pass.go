package reconciliation

import (
	"errors"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
)

var ErrPassAlreadyExists = errors.New("reconciliation pass already exists")

// Pass is the persisted record of a bulk reconciliation pass
type Pass struct {
	ID            uuid.UUID         `json:"id" bson:"_id"`
	BankAccount   string            `json:"bank_account" bson:"bank_account"`
	From          time.Time         `json:"from" bson:"from"`
	To            time.Time         `json:"to" bson:"to"`
	Status        shared.PassStatus `json:"status" bson:"status"`
	CorrelationID string            `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Result        *BulkResult       `json:"result,omitempty" bson:"result,omitempty"`
	Error         string            `json:"error,omitempty" bson:"error,omitempty"`
	RequestedAt   time.Time         `json:"requested_at" bson:"requested_at"`
	StartedAt     *time.Time        `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// NewPass builds a running pass record from a request
func NewPass(req *shared.PassRequest) *Pass {
	now := time.Now()
	return &Pass{
		ID:            req.PassID,
		BankAccount:   req.BankAccount,
		From:          req.From,
		To:            req.To,
		Status:        shared.PassStatusRunning,
		CorrelationID: req.CorrelationID,
		RequestedAt:   req.RequestedAt,
		StartedAt:     &now,
	}
}

// IsFinished reports whether the pass reached a terminal state that must not be re-run
func (p *Pass) IsFinished() bool {
	return p.Status == shared.PassStatusCompleted || p.Status == shared.PassStatusCancelled
}

// ErrPassNotFound indicates a missing pass record
type ErrPassNotFound struct {
	PassID uuid.UUID
}

func (e ErrPassNotFound) Error() string {
	return "reconciliation pass not found: " + e.PassID.String()
}

// Is implements the errors.Is interface for ErrPassNotFound
func (e ErrPassNotFound) Is(target error) bool {
	t, ok := target.(ErrPassNotFound)
	if !ok {
		return false
	}
	if t.PassID == uuid.Nil {
		return true
	}
	return e.PassID == t.PassID
}
