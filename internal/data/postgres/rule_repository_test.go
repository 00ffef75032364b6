package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ruleColumnNames = []string{
	"id", "seq", "name", "pattern", "match_field", "match_type", "direction", "bank_account", "min_amount", "max_amount",
	"target_account", "target_party_type", "target_party", "auto_reconcile", "active",
	"times_matched", "last_matched_at", "total_amount_matched", "created_at",
}

func TestRuleRepository_ListRules(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RuleRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()
	lastMatched := now.Add(-time.Hour)
	first, second := uuid.New(), uuid.New()

	rows := pgxmock.NewRows(ruleColumnNames).
		AddRow(first, int64(1), "Uber", "UBER", rule.MatchFieldDescription, rule.MatchTypeContains, shared.TransactionType(""), "",
			decimal.NullDecimal{}, decimal.NullDecimal{}, "Travel Expenses", "", "", true, true,
			int64(4), &lastMatched, decimal.RequireFromString("93.60"), now).
		AddRow(second, int64(2), "Fees", `^FEE \d+`, rule.MatchFieldDescription, rule.MatchTypeRegex, shared.TransactionTypeWithdrawal, "DE-MAIN",
			decimal.NewNullDecimal(decimal.RequireFromString("1")), decimal.NewNullDecimal(decimal.RequireFromString("50")),
			"Bank Charges", "Supplier", "BANK", false, true, int64(0), nil, decimal.Zero, now)

	mock.ExpectQuery(`SELECT (.+) FROM bank_rules ORDER BY seq ASC`).WillReturnRows(rows)

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, first, rules[0].ID)
	assert.Equal(t, int64(1), rules[0].Sequence)
	assert.True(t, rules[0].AutoReconcile)
	require.NotNil(t, rules[0].LastMatchedAt)
	assert.False(t, rules[0].MinAmount.Valid)
	assert.Empty(t, rules[0].BankAccount)

	assert.Equal(t, second, rules[1].ID)
	assert.True(t, rules[1].MaxAmount.Valid)
	assert.Equal(t, "DE-MAIN", rules[1].BankAccount)
	assert.False(t, rules[1].CoversAccount("DE-SAVINGS"))
	assert.True(t, rules[1].MatchesText("FEE 12"))
	assert.Nil(t, rules[1].LastMatchedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RuleRepository{querier: mock, logger: newTestLogger()}
	rl, err := rule.NewRule(rule.Params{Pattern: "UBER", TargetAccount: "Travel Expenses", BankAccount: "DE-MAIN", AutoReconcile: true, Active: true})
	require.NoError(t, err)

	query := `INSERT INTO bank_rules (.+) RETURNING seq`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(rl.ID, rl.Name, rl.Pattern, rl.MatchField, rl.MatchType, rl.Direction, "DE-MAIN", rl.MinAmount, rl.MaxAmount,
				rl.TargetAccount, rl.TargetPartyType, rl.TargetParty, rl.AutoReconcile, rl.Active, rl.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(7)))

		require.NoError(t, repo.Create(ctx, rl))
		assert.Equal(t, int64(7), rl.Sequence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("unique violation")
		mock.ExpectQuery(query).WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).WillReturnError(expectedErr)

		err := repo.Create(ctx, rl)
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to create bank rule")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRuleRepository_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RuleRepository{querier: mock, logger: newTestLogger()}
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bank_rules WHERE id = \$1`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	rl, err := repo.GetByID(ctx, id)
	assert.Nil(t, rl)
	assert.True(t, errors.Is(err, rule.ErrRuleNotFound{RuleID: id}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepository_Delete(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RuleRepository{querier: mock, logger: newTestLogger()}
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM bank_rules WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM bank_rules WHERE id = \$1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(ctx, id))
	assert.True(t, errors.Is(repo.Delete(ctx, id), rule.ErrRuleNotFound{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRuleRepository_RecordMatch(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RuleRepository{querier: mock, logger: newTestLogger()}
	id := uuid.New()
	amount := decimal.RequireFromString("23.40")

	mock.ExpectExec(`UPDATE bank_rules SET times_matched = times_matched \+ 1`).
		WithArgs(pgxmock.AnyArg(), amount, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.RecordMatch(ctx, id, amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}
