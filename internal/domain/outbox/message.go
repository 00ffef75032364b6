package outbox

import (
	"encoding/json"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// Message stores a reconciliation event for reliable publishing
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	BankAccount   string              `json:"bank_account"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *reconciliation.Event) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: event.TransactionID,
		BankAccount:   event.BankAccount,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEvent decodes the reconciliation event carried in the payload
func (m *Message) GetEvent() (*reconciliation.Event, error) {
	var event reconciliation.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
