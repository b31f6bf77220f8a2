package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TransactionType is the BORICA TRTYPE value of a transaction
type TransactionType int

const (
	TransactionTypeSale                          TransactionType = 1  // Плащане
	TransactionTypeDeferredAuthorization         TransactionType = 12 // Първоначална авторизация
	TransactionTypeCompleteDeferredAuthorization TransactionType = 21 // Завършване на първоначална авторизация
	TransactionTypeReverseDeferredAuthorization  TransactionType = 22 // Отмяна на първоначална авторизация
	TransactionTypeReversal                      TransactionType = 24 // Отмяна на плащане
	TransactionTypeStatusCheck                   TransactionType = 90 // Проверка за статус на трансакция
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeSale:                          "sale",
	TransactionTypeDeferredAuthorization:         "deferred_authorization",
	TransactionTypeCompleteDeferredAuthorization: "complete_deferred_authorization",
	TransactionTypeReverseDeferredAuthorization:  "reverse_deferred_authorization",
	TransactionTypeReversal:                      "reversal",
	TransactionTypeStatusCheck:                   "status_check",
}

// AllTransactionTypes returns every declared transaction type in ascending TRTYPE order
func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeSale,
		TransactionTypeDeferredAuthorization,
		TransactionTypeCompleteDeferredAuthorization,
		TransactionTypeReverseDeferredAuthorization,
		TransactionTypeReversal,
		TransactionTypeStatusCheck,
	}
}

// IsValid reports whether t is one of the declared transaction types
func (t TransactionType) IsValid() bool {
	_, ok := transactionTypeNames[t]
	return ok
}

// Wire returns the TRTYPE wire value (e.g. "1", "90")
func (t TransactionType) Wire() string {
	return strconv.Itoa(int(t))
}

// String returns a readable name, used in logs and metric labels
func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// ParseTransactionType parses a TRTYPE wire value.
// Returns an UNKNOWN_TRANSACTION_TYPE domain error for values outside the enumeration.
func ParseTransactionType(value string) (TransactionType, error) {
	trimmed := strings.TrimSpace(value)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, UnknownTransactionTypeError(value)
	}

	t := TransactionType(n)
	if !t.IsValid() {
		return 0, UnknownTransactionTypeError(value)
	}
	return t, nil
}

// UnknownTransactionTypeError builds the error returned for unregistered TRTYPE values
func UnknownTransactionTypeError(value string) *DomainError {
	return NewDomainError(ErrorCodeUnknownTransactionType,
		fmt.Sprintf("unknown transaction type %q", value)).
		WithDetail("trtype", value)
}
