package borica

import (
	"testing"

	pkgerrors "github.com/kevin07696/borica-gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageEN, ParseLanguage("EN"))
	assert.Equal(t, LanguageEN, ParseLanguage(" en "))
	assert.Equal(t, LanguageBG, ParseLanguage("BG"))
	assert.Equal(t, LanguageBG, ParseLanguage(""))
	assert.Equal(t, LanguageBG, ParseLanguage("DE"))
}

func TestGetResponseCodeInfo(t *testing.T) {
	tests := []struct {
		rc        string
		category  pkgerrors.ErrorCategory
		approved  bool
		retriable bool
	}{
		{"00", pkgerrors.CategoryApproved, true, false},
		{"05", pkgerrors.CategoryDeclined, false, false},
		{"54", pkgerrors.CategoryExpiredCard, false, false},
		{"59", pkgerrors.CategoryFraud, false, false},
		{"85", pkgerrors.CategoryDeclined, false, false},
		{"91", pkgerrors.CategoryNetworkError, false, true},
		{"-17", pkgerrors.CategoryInvalidRequest, false, false},
		{"-4", pkgerrors.CategoryNetworkError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.rc, func(t *testing.T) {
			info, ok := GetResponseCodeInfo(tt.rc)
			assert.True(t, ok)
			assert.Equal(t, tt.rc, info.Code)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, tt.approved, info.IsApproved)
			assert.Equal(t, tt.retriable, info.IsRetriable)
		})
	}

	info, ok := GetResponseCodeInfo("77")
	assert.False(t, ok)
	assert.Equal(t, pkgerrors.CategoryUnknown, info.Category)
}

func TestDescribeResponseCode(t *testing.T) {
	assert.Equal(t, "Successfully completed", DescribeResponseCode("00", LanguageEN))
	assert.Equal(t, "Успешно завършена трансакция", DescribeResponseCode("00", LanguageBG))
	assert.Equal(t, "Invalid merchant identifier", DescribeResponseCode("-12", LanguageEN))
	assert.Empty(t, DescribeResponseCode("77", LanguageEN))
}

func TestDescribeAction(t *testing.T) {
	assert.Equal(t, "Transaction declined", DescribeAction("2", LanguageEN))
	assert.Equal(t, "Дублирана трансакция", DescribeAction("1", LanguageBG))
	assert.Empty(t, DescribeAction("9", LanguageEN))
}

func TestTransactionResponse_Descriptions(t *testing.T) {
	resp := &TransactionResponse{ResponseCode: "05", Action: "2"}

	assert.Equal(t, "Do not Honour", resp.DescribeResponseCode(LanguageEN))
	assert.Equal(t, "Отказана трансакция", resp.ActionDescription(LanguageBG))
	assert.Equal(t, pkgerrors.CategoryDeclined, resp.CodeInfo().Category)
}
