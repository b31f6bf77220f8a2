package borica

import (
	"fmt"
	"strings"
	"time"

	"github.com/kevin07696/borica-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/borica-gateway/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// TimestampLayout is the gateway TIMESTAMP format, always UTC
	TimestampLayout = "20060102150405"

	DefaultCurrency         = "BGN"
	DefaultCountry          = "BG"
	DefaultMerchantTimezone = "+03"
	DefaultLanguage         = "BG"
	DefaultAddendum         = "AD,TD"

	maxOrder = 999999
)

// Signer produces a hex signature over a canonical message
type Signer interface {
	Sign(message []byte) (string, error)
}

// Verifier checks a hex signature over a canonical message
type Verifier interface {
	Verify(message []byte, hexSignature string) (bool, error)
}

// TransactionRequest is an outbound gateway request. Populate it field by
// field, then Validate, Sign and encode it with ToWireFields. Do not mutate a
// request after signing.
type TransactionRequest struct {
	TransactionType          domain.TransactionType
	Amount                   decimal.NullDecimal
	Currency                 string
	Order                    *int
	Description              string
	MerchantName             string
	MerchantURL              string
	Merchant                 string
	Terminal                 string
	Email                    string
	Country                  string
	MerchantTimezone         string
	OriginalTransactionType  domain.TransactionType
	Timestamp                time.Time
	Nonce                    string
	Signature                string
	RetrievalReferenceNumber string
	InternalReference        string
	MInfo                    string
	Language                 string
	OrderIdentifier          string
	Addendum                 string
	BackRef                  string
}

// NewRequest returns a request of type t with the protocol defaults applied
func NewRequest(t domain.TransactionType) *TransactionRequest {
	return &TransactionRequest{
		TransactionType:  t,
		Currency:         DefaultCurrency,
		Country:          DefaultCountry,
		MerchantTimezone: DefaultMerchantTimezone,
		Language:         DefaultLanguage,
		Addendum:         DefaultAddendum,
	}
}

// SetAmount stores a monetary amount
func (r *TransactionRequest) SetAmount(amount decimal.Decimal) *TransactionRequest {
	r.Amount = decimal.NewNullDecimal(amount)
	return r
}

// SetOrder stores the numeric order number
func (r *TransactionRequest) SetOrder(order int) *TransactionRequest {
	r.Order = &order
	return r
}

// SetOrderIdentifier stores the merchant order id; ';' is not allowed by the
// gateway and is replaced by '-'.
func (r *TransactionRequest) SetOrderIdentifier(id string) *TransactionRequest {
	r.OrderIdentifier = strings.ReplaceAll(id, ";", "-")
	return r
}

// Stamp fills a missing timestamp with now and a missing nonce with fresh randomness
func (r *TransactionRequest) Stamp(now time.Time) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	if r.Nonce == "" {
		nonce, err := GenerateNonce()
		if err != nil {
			return err
		}
		r.Nonce = nonce
	}
	return nil
}

// AmountString renders the amount with exactly two decimals, rounding half
// away from zero. Empty when no amount is set.
func (r *TransactionRequest) AmountString() string {
	if !r.Amount.Valid {
		return ""
	}
	return r.Amount.Decimal.StringFixed(2)
}

// OrderString renders the order left-padded with zeros to six digits.
// Orders above 999999 are rendered in full and rejected by Validate.
func (r *TransactionRequest) OrderString() string {
	if r.Order == nil {
		return ""
	}
	return fmt.Sprintf("%06d", *r.Order)
}

// TimestampString renders the timestamp in UTC, or "" when unset
func (r *TransactionRequest) TimestampString() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.UTC().Format(TimestampLayout)
}

func (r *TransactionRequest) transactionTypeWire() string {
	if !r.TransactionType.IsValid() {
		return ""
	}
	return r.TransactionType.Wire()
}

func (r *TransactionRequest) originalTransactionTypeWire() string {
	if r.OriginalTransactionType == 0 {
		return ""
	}
	return r.OriginalTransactionType.Wire()
}

type projectedField struct {
	name  string
	value func(r *TransactionRequest) string
}

var (
	fieldAmount      = projectedField{domain.FieldAmount, (*TransactionRequest).AmountString}
	fieldCurrency    = projectedField{domain.FieldCurrency, func(r *TransactionRequest) string { return r.Currency }}
	fieldDescription = projectedField{domain.FieldDescription, func(r *TransactionRequest) string { return r.Description }}
	fieldTerminal    = projectedField{domain.FieldTerminal, func(r *TransactionRequest) string { return r.Terminal }}
	fieldMerchName   = projectedField{domain.FieldMerchantName, func(r *TransactionRequest) string { return r.MerchantName }}
	fieldMerchURL    = projectedField{domain.FieldMerchantURL, func(r *TransactionRequest) string { return r.MerchantURL }}
	fieldMerchant    = projectedField{domain.FieldMerchant, func(r *TransactionRequest) string { return r.Merchant }}
	fieldTrType      = projectedField{domain.FieldTransactionType, (*TransactionRequest).transactionTypeWire}
	fieldOrder       = projectedField{domain.FieldOrder, (*TransactionRequest).OrderString}
	fieldCountry     = projectedField{domain.FieldCountry, func(r *TransactionRequest) string { return r.Country }}
	fieldTimestamp   = projectedField{domain.FieldTimestamp, (*TransactionRequest).TimestampString}
	fieldMerchGMT    = projectedField{domain.FieldMerchantTimezone, func(r *TransactionRequest) string { return r.MerchantTimezone }}
	fieldNonce       = projectedField{domain.FieldNonce, func(r *TransactionRequest) string { return r.Nonce }}
	fieldSignature   = projectedField{domain.FieldSignature, func(r *TransactionRequest) string { return r.Signature }}
	fieldBackRef     = projectedField{domain.FieldBackRef, func(r *TransactionRequest) string { return r.BackRef }}
	fieldEmail       = projectedField{domain.FieldEmail, func(r *TransactionRequest) string { return r.Email }}
	fieldMInfo       = projectedField{domain.FieldMInfo, func(r *TransactionRequest) string { return r.MInfo }}
	fieldRRN         = projectedField{domain.FieldRetrievalReference, func(r *TransactionRequest) string { return r.RetrievalReferenceNumber }}
	fieldIntRef      = projectedField{domain.FieldInternalReference, func(r *TransactionRequest) string { return r.InternalReference }}
	fieldLanguage    = projectedField{domain.FieldLanguage, func(r *TransactionRequest) string { return r.Language }}
	fieldTranTrType  = projectedField{domain.FieldOriginalTransactionType, (*TransactionRequest).originalTransactionTypeWire}
)

var (
	saleProjection = []projectedField{
		fieldAmount, fieldCurrency, fieldDescription, fieldTerminal, fieldMerchName,
		fieldMerchURL, fieldMerchant, fieldTrType, fieldOrder, fieldCountry,
		fieldTimestamp, fieldMerchGMT, fieldNonce, fieldSignature, fieldBackRef,
		fieldEmail, fieldMInfo,
	}

	reversalProjection = []projectedField{
		fieldAmount, fieldCurrency, fieldTerminal, fieldMerchant, fieldTrType,
		fieldOrder, fieldTimestamp, fieldRRN, fieldIntRef, fieldNonce,
		fieldSignature, fieldDescription, fieldMerchName, fieldMerchURL, fieldEmail,
		fieldCountry, fieldMerchGMT, fieldLanguage,
	}

	statusCheckProjection = []projectedField{
		fieldNonce, fieldOrder, fieldSignature, fieldTerminal, fieldTranTrType, fieldTrType,
	}
)

type requestShape struct {
	projection []projectedField
	// withAddendum emits AD.CUST_BOR_ORDER_ID and ADDENDUM together when an order identifier is set
	withAddendum bool
	mandatory    []string
}

var requestShapes = map[domain.TransactionType]requestShape{
	domain.TransactionTypeSale:                          saleShape,
	domain.TransactionTypeDeferredAuthorization:         saleShape,
	domain.TransactionTypeReversal:                      reversalShape,
	domain.TransactionTypeCompleteDeferredAuthorization: reversalShape,
	domain.TransactionTypeReverseDeferredAuthorization:  reversalShape,
	domain.TransactionTypeStatusCheck: {
		projection: statusCheckProjection,
		mandatory: []string{
			"nonce", "order", "originalTransactionType", "signature", "terminal", "transactionType",
		},
	},
}

var saleShape = requestShape{
	projection:   saleProjection,
	withAddendum: true,
	mandatory: []string{
		"amount", "currency", "description", "terminal", "merchant",
		"transactionType", "order", "timestamp", "nonce", "signature",
	},
}

var reversalShape = requestShape{
	projection:   reversalProjection,
	withAddendum: true,
	mandatory: []string{
		"amount", "currency", "terminal", "merchant", "transactionType", "order",
		"timestamp", "retrievalReferenceNumber", "internalReference", "nonce", "signature",
	},
}

// property values used by Validate, keyed by the names in the mandatory lists
func (r *TransactionRequest) property(name string) string {
	switch name {
	case "amount":
		return r.AmountString()
	case "currency":
		return r.Currency
	case "description":
		return r.Description
	case "terminal":
		return r.Terminal
	case "merchant":
		return r.Merchant
	case "transactionType":
		return r.transactionTypeWire()
	case "order":
		return r.OrderString()
	case "timestamp":
		return r.TimestampString()
	case "nonce":
		return r.Nonce
	case "signature":
		return r.Signature
	case "retrievalReferenceNumber":
		return r.RetrievalReferenceNumber
	case "internalReference":
		return r.InternalReference
	case "originalTransactionType":
		return r.originalTransactionTypeWire()
	}
	return ""
}

// ToWireFields projects the request onto the gateway field names of its type.
// Empty values are omitted. An unknown type yields an empty mapping.
func (r *TransactionRequest) ToWireFields() domain.FieldMapping {
	fields := domain.FieldMapping{}
	shape, ok := requestShapes[r.TransactionType]
	if !ok {
		return fields
	}

	for _, f := range shape.projection {
		fields.Set(f.name, f.value(r))
	}
	if shape.withAddendum && r.OrderIdentifier != "" {
		fields.Set(domain.FieldOrderIdentifier, r.OrderIdentifier)
		fields.Set(domain.FieldAddendum, r.Addendum)
	}
	return fields
}

// Validate reports every missing mandatory property of the request's type plus
// range violations. An empty result means the request is complete.
func (r *TransactionRequest) Validate() pkgerrors.ValidationErrors {
	var errs pkgerrors.ValidationErrors

	shape, ok := requestShapes[r.TransactionType]
	if !ok {
		errs.Add("transactionType", "is not a supported transaction type")
		return errs
	}

	for _, name := range shape.mandatory {
		if r.property(name) == "" {
			errs.Add(name, name+" is required")
		}
	}

	if r.Order != nil && (*r.Order < 0 || *r.Order > maxOrder) {
		errs.Add("order", "must be between 0 and 999999")
	}
	if r.TransactionType == domain.TransactionTypeStatusCheck &&
		r.OriginalTransactionType != 0 && !r.OriginalTransactionType.IsValid() {
		errs.Add("originalTransactionType", "is not a supported transaction type")
	}
	return errs
}

// MAC returns the canonical request message for variant
func (r *TransactionRequest) MAC(variant domain.MacVariant) (string, error) {
	return BuildMAC(r.ToWireFields(), false, variant)
}

// Sign computes the MAC for variant and stores the signature on the request
func (r *TransactionRequest) Sign(signer Signer, variant domain.MacVariant) error {
	mac, err := r.MAC(variant)
	if err != nil {
		return err
	}

	sig, err := signer.Sign([]byte(mac))
	if err != nil {
		return domain.SigningError("failed to sign request", err)
	}

	r.Signature = sig
	return nil
}
