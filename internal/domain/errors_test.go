package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_ErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "without wrapped error",
			err:  NewDomainError(ErrorCodeUnknownTransactionType, "unknown transaction type \"7\""),
			want: "UNKNOWN_TRANSACTION_TYPE: unknown transaction type \"7\"",
		},
		{
			name: "with wrapped error",
			err:  WrapError(ErrorCodeSigningFailed, "sign canonical message", errors.New("no private key")),
			want: "SIGNING_FAILED: sign canonical message: no private key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDomainError_UnwrapAndAs(t *testing.T) {
	root := errors.New("bad PEM")
	err := fmt.Errorf("load engine: %w", KeyError("parse certificate", root))

	assert.True(t, errors.Is(err, root))
	assert.True(t, IsKeyError(err))
	assert.False(t, IsSigningError(err))
	assert.Equal(t, ErrorCodeKeyInvalid, GetErrorCode(err))
}

func TestGetErrorCode_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodeValidationFailed, "request validation failed").
		WithDetail("fields", 3)

	require.Contains(t, err.Details, "fields")
	assert.Equal(t, 3, err.Details["fields"])
	assert.True(t, IsValidationError(err))
}

func TestIsGatewayError(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrorCodeGatewayError, true},
		{ErrorCodeGatewayTimeout, true},
		{ErrorCodeResponseInvalid, true},
		{ErrorCodeSigningFailed, false},
		{ErrorCodeUnknownTransactionType, false},
	}

	for _, tt := range tests {
		t.Run(strings.ToLower(string(tt.code)), func(t *testing.T) {
			assert.Equal(t, tt.want, IsGatewayError(NewDomainError(tt.code, "x")))
		})
	}
}
