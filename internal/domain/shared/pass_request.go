package shared

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PassRequest defines a Kafka message asking for a bulk reconciliation pass over one bank account
type PassRequest struct {
	PassID        uuid.UUID `json:"pass_id"`
	BankAccount   string    `json:"bank_account"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	CorrelationID string    `json:"correlation_id"`
	RequestedAt   time.Time `json:"requested_at"`
}

// Validate checks the fields a pass cannot run without
func (r *PassRequest) Validate() error {
	switch {
	case r.PassID == uuid.Nil:
		return errors.New("pass_id is required")
	case strings.TrimSpace(r.BankAccount) == "":
		return errors.New("bank_account is required")
	case !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From):
		return errors.New("to must not be before from")
	}
	return nil
}
