package borica

import (
	"github.com/kevin07696/borica-gateway/internal/domain"
)

// direction separates outbound request tables from inbound response tables
type direction int

const (
	directionRequest direction = iota
	directionResponse
)

func directionOf(isResponse bool) direction {
	if isResponse {
		return directionResponse
	}
	return directionRequest
}

var (
	requestGeneralFinancial = []string{
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldAmount,
		domain.FieldCurrency,
		domain.FieldOrder,
		domain.FieldTimestamp,
		domain.FieldNonce,
		domain.FieldReserved,
	}

	requestExtendedFinancial = []string{
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldAmount,
		domain.FieldCurrency,
		domain.FieldOrder,
		domain.FieldMerchant,
		domain.FieldTimestamp,
		domain.FieldNonce,
	}

	requestStatusCheck = []string{
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldOrder,
		domain.FieldNonce,
	}

	responseGeneralShort = []string{
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldAmount,
		domain.FieldTimestamp,
	}

	responseGeneralWithOrder = []string{
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldAmount,
		domain.FieldOrder,
		domain.FieldTimestamp,
	}

	responseExtended = []string{
		domain.FieldAction,
		domain.FieldResponseCode,
		domain.FieldApproval,
		domain.FieldTerminal,
		domain.FieldTransactionType,
		domain.FieldAmount,
		domain.FieldCurrency,
		domain.FieldOrder,
		domain.FieldRetrievalReference,
		domain.FieldInternalReference,
		domain.FieldParesStatus,
		domain.FieldECI,
		domain.FieldTimestamp,
		domain.FieldNonce,
	}
)

// macSchemas is built once and never mutated; Schema hands out copies.
var macSchemas = map[domain.MacVariant]map[direction]map[domain.TransactionType][]string{
	domain.MacVariantGeneral: {
		directionRequest: {
			domain.TransactionTypeSale:                          requestGeneralFinancial,
			domain.TransactionTypeDeferredAuthorization:         requestGeneralFinancial,
			domain.TransactionTypeCompleteDeferredAuthorization: requestGeneralFinancial,
			domain.TransactionTypeReverseDeferredAuthorization:  requestGeneralFinancial,
			domain.TransactionTypeReversal:                      requestGeneralFinancial,
			domain.TransactionTypeStatusCheck:                   requestStatusCheck,
		},
		directionResponse: {
			domain.TransactionTypeSale:                          responseGeneralShort,
			domain.TransactionTypeDeferredAuthorization:         responseGeneralWithOrder,
			domain.TransactionTypeCompleteDeferredAuthorization: responseGeneralWithOrder,
			domain.TransactionTypeReverseDeferredAuthorization:  responseGeneralWithOrder,
			domain.TransactionTypeReversal:                      responseGeneralWithOrder,
			domain.TransactionTypeStatusCheck:                   responseGeneralShort,
		},
	},
	domain.MacVariantExtended: {
		directionRequest: {
			domain.TransactionTypeSale:                          requestExtendedFinancial,
			domain.TransactionTypeDeferredAuthorization:         requestExtendedFinancial,
			domain.TransactionTypeCompleteDeferredAuthorization: requestExtendedFinancial,
			domain.TransactionTypeReverseDeferredAuthorization:  requestExtendedFinancial,
			domain.TransactionTypeReversal:                      requestExtendedFinancial,
			domain.TransactionTypeStatusCheck:                   requestStatusCheck,
		},
		directionResponse: {
			domain.TransactionTypeSale:                          responseExtended,
			domain.TransactionTypeDeferredAuthorization:         responseExtended,
			domain.TransactionTypeCompleteDeferredAuthorization: responseExtended,
			domain.TransactionTypeReverseDeferredAuthorization:  responseExtended,
			domain.TransactionTypeReversal:                      responseExtended,
			domain.TransactionTypeStatusCheck:                   responseExtended,
		},
	},
}

// Schema returns the ordered list of field names whose values form the MAC for
// the given transaction type, direction and variant. The returned slice is a copy.
func Schema(t domain.TransactionType, isResponse bool, variant domain.MacVariant) ([]string, error) {
	byDirection, ok := macSchemas[variant]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed,
			"unsupported MAC variant "+variant.String())
	}

	fields, ok := byDirection[directionOf(isResponse)][t]
	if !ok {
		return nil, domain.UnknownTransactionTypeError(t.Wire())
	}

	out := make([]string, len(fields))
	copy(out, fields)
	return out, nil
}
