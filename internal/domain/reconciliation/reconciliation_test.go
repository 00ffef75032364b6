package reconciliation

import (
	"errors"
	"testing"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkResult_RecordFailureAndFinalize(t *testing.T) {
	id := uuid.New()
	result := &BulkResult{Reconciled: 2, Suggested: 3}

	result.RecordFailure(id, shared.FailureReasonInvalidAmounts, errors.New("both deposit and withdrawal are zero"))
	result.Finalize()

	assert.Equal(t, 5, result.Matched)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, id, result.Failures[0].TransactionID)
	assert.Equal(t, shared.FailureReasonInvalidAmounts, result.Failures[0].Reason)
}

func TestProposalSet_Find(t *testing.T) {
	set := &ProposalSet{Proposals: []MatchProposal{
		{DocumentID: "PINV-1", Difference: decimal.Zero},
		{DocumentID: "PINV-2", Difference: decimal.RequireFromString("5")},
	}}

	p, ok := set.Find("PINV-2")
	assert.True(t, ok)
	assert.False(t, p.IsExact())

	_, ok = set.Find("PINV-3")
	assert.False(t, ok)
}

func TestNewPass(t *testing.T) {
	req := &shared.PassRequest{
		PassID:        uuid.New(),
		BankAccount:   "DE-MAIN",
		From:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		CorrelationID: "corr-1",
		RequestedAt:   time.Now(),
	}

	pass := NewPass(req)

	assert.Equal(t, req.PassID, pass.ID)
	assert.Equal(t, shared.PassStatusRunning, pass.Status)
	assert.NotNil(t, pass.StartedAt)
	assert.False(t, pass.IsFinished())

	pass.Status = shared.PassStatusCompleted
	assert.True(t, pass.IsFinished())

	pass.Status = shared.PassStatusFailed
	assert.False(t, pass.IsFinished(), "failed passes may be retried")
}

func TestErrPassNotFound_Is(t *testing.T) {
	id := uuid.New()
	assert.True(t, errors.Is(ErrPassNotFound{PassID: id}, ErrPassNotFound{}))
	assert.False(t, errors.Is(ErrPassNotFound{PassID: id}, ErrPassNotFound{PassID: uuid.New()}))
}
