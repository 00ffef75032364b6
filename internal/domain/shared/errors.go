package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// InvalidTransactionError indicates malformed amount fields on a bank transaction
type InvalidTransactionError struct {
	TransactionID uuid.UUID
	Reason        string
}

func (e InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction %s: %s", e.TransactionID, e.Reason)
}

// Is matches any InvalidTransactionError when the target has no TransactionID
func (e InvalidTransactionError) Is(target error) bool {
	t, ok := target.(InvalidTransactionError)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// CollaboratorUnavailableError indicates a store or lookup call failed after retries
type CollaboratorUnavailableError struct {
	Collaborator string
	Operation    string
	Err          error
}

func (e CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable during %s: %v", e.Collaborator, e.Operation, e.Err)
}

func (e CollaboratorUnavailableError) Unwrap() error {
	return e.Err
}

// Is matches any CollaboratorUnavailableError when the target has no Collaborator
func (e CollaboratorUnavailableError) Is(target error) bool {
	t, ok := target.(CollaboratorUnavailableError)
	if !ok {
		return false
	}
	if t.Collaborator == "" {
		return true
	}
	return e.Collaborator == t.Collaborator
}
