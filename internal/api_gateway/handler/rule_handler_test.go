package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/banktxn"
	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRuleRouter(svc *MockRuleService) *gin.Engine {
	h := NewRuleHandler(testLogger(), svc)
	router := gin.New()
	router.POST("/rules", h.Create)
	router.GET("/rules", h.List)
	router.POST("/rules/suggest", h.Suggest)
	router.GET("/rules/:id", h.GetByID)
	router.DELETE("/rules/:id", h.Delete)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRuleHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(svc *MockRuleService)
		expectedStatus int
	}{
		{
			name: "created with defaults",
			body: `{"pattern":"uber","target_account":"Travel Expenses","auto_reconcile":true,"min_amount":"5"}`,
			setupMock: func(svc *MockRuleService) {
				svc.On("CreateRule", mock.Anything, mock.MatchedBy(func(p rule.Params) bool {
					return p.Pattern == "uber" && p.Active && p.AutoReconcile &&
						p.MinAmount.Valid && p.MinAmount.Decimal.Equal(decimal.NewFromInt(5)) && !p.MaxAmount.Valid
				})).Return(&rule.Rule{
					ID:            uuid.New(),
					Pattern:       "uber",
					MatchField:    rule.MatchFieldDescription,
					MatchType:     rule.MatchTypeContains,
					TargetAccount: "Travel Expenses",
					AutoReconcile: true,
					Active:        true,
					CreatedAt:     time.Now(),
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "scoped to a bank account",
			body: `{"pattern":"fee","target_account":"Bank Charges","bank_account":"DE-SAVINGS"}`,
			setupMock: func(svc *MockRuleService) {
				svc.On("CreateRule", mock.Anything, mock.MatchedBy(func(p rule.Params) bool {
					return p.BankAccount == "DE-SAVINGS"
				})).Return(&rule.Rule{
					ID:            uuid.New(),
					Pattern:       "fee",
					MatchField:    rule.MatchFieldDescription,
					MatchType:     rule.MatchTypeContains,
					BankAccount:   "DE-SAVINGS",
					TargetAccount: "Bank Charges",
					Active:        true,
					CreatedAt:     time.Now(),
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid regex rejected by binding",
			body:           `{"pattern":"([","match_type":"REGEX","target_account":"Misc"}`,
			setupMock:      func(*MockRuleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown match type",
			body:           `{"pattern":"uber","match_type":"FUZZY","target_account":"Misc"}`,
			setupMock:      func(*MockRuleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing target account",
			body:           `{"pattern":"uber"}`,
			setupMock:      func(*MockRuleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "domain validation error",
			body: `{"pattern":"uber","target_account":"Misc","min_amount":"10","max_amount":"5"}`,
			setupMock: func(svc *MockRuleService) {
				svc.On("CreateRule", mock.Anything, mock.Anything).
					Return(nil, rule.RuleConflictError{Field: "max_amount", Reason: "must not be less than min_amount"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockRuleService{}
			tt.setupMock(svc)

			rr := postJSON(newRuleRouter(svc), "/rules", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestRuleHandler_RegexPatternAccepted(t *testing.T) {
	svc := &MockRuleService{}
	svc.On("CreateRule", mock.Anything, mock.MatchedBy(func(p rule.Params) bool {
		return p.MatchType == rule.MatchTypeRegex
	})).Return(&rule.Rule{ID: uuid.New(), Pattern: `^amzn\s+mktp`, MatchType: rule.MatchTypeRegex}, nil).Once()

	rr := postJSON(newRuleRouter(svc), "/rules", `{"pattern":"^amzn\\s+mktp","match_type":"REGEX","target_account":"Office Supplies"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRuleHandler_List(t *testing.T) {
	svc := &MockRuleService{}
	first := &rule.Rule{ID: uuid.New(), Sequence: 1, Name: "first"}
	second := &rule.Rule{ID: uuid.New(), Sequence: 2, Name: "second"}
	svc.On("ListRules", mock.Anything).Return([]*rule.Rule{first, second}, nil).Once()

	rr := httptest.NewRecorder()
	newRuleRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rules", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[[]RuleResponse](t, rr.Body.Bytes())
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "first", resp.Data[0].Name)
	assert.Equal(t, "second", resp.Data[1].Name)
}

func TestRuleHandler_GetAndDelete(t *testing.T) {
	id := uuid.New()

	t.Run("GetNotFound", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("GetRule", mock.Anything, id).Return(nil, nil).Once()

		rr := httptest.NewRecorder()
		newRuleRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rules/"+id.String(), nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("DeleteRule", mock.Anything, id).Return(nil).Once()

		rr := httptest.NewRecorder()
		newRuleRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/rules/"+id.String(), nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("DeleteRule", mock.Anything, id).Return(rule.ErrRuleNotFound{RuleID: id}).Once()

		rr := httptest.NewRecorder()
		newRuleRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/rules/"+id.String(), nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRuleHandler_Suggest(t *testing.T) {
	txnID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("SuggestRule", mock.Anything, txnID).Return(rule.Params{
			Name:       "Rule for Amazon",
			Pattern:    "Amazon",
			MatchField: rule.MatchFieldDescription,
			MatchType:  rule.MatchTypeContains,
			Direction:  shared.TransactionTypeWithdrawal,
			Active:     true,
		}, nil).Once()

		rr := postJSON(newRuleRouter(svc), "/rules/suggest", `{"transaction_id":"`+txnID.String()+`"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[RuleResponse](t, rr.Body.Bytes())
		assert.Equal(t, "Amazon", resp.Data.Pattern)
		assert.Equal(t, "WITHDRAWAL", resp.Data.Direction)
		assert.Empty(t, resp.Data.ID)
	})

	t.Run("UnknownTransaction", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("SuggestRule", mock.Anything, txnID).Return(rule.Params{}, banktxn.ErrTransactionNotFound{TransactionID: txnID}).Once()

		rr := postJSON(newRuleRouter(svc), "/rules/suggest", `{"transaction_id":"`+txnID.String()+`"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidTransaction", func(t *testing.T) {
		svc := &MockRuleService{}
		svc.On("SuggestRule", mock.Anything, txnID).
			Return(rule.Params{}, shared.InvalidTransactionError{TransactionID: txnID, Reason: "both deposit and withdrawal are zero"}).Once()

		rr := postJSON(newRuleRouter(svc), "/rules/suggest", `{"transaction_id":"`+txnID.String()+`"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		rr := postJSON(newRuleRouter(&MockRuleService{}), "/rules/suggest", `{"transaction_id":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
