package borica

import (
	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// ResponseCodeApproved is the only RC value that means the transaction succeeded
const ResponseCodeApproved = "00"

// TransactionResponse is a parsed gateway response or callback
type TransactionResponse struct {
	Terminal                 string
	TransactionType          domain.TransactionType
	Order                    string
	Amount                   string
	Currency                 string
	Action                   string
	ResponseCode             string
	Approval                 string
	RetrievalReferenceNumber string
	InternalReference        string
	OriginalTransactionType  string
	StatusMessage            string
	CardNumber               string
	OriginalTransactionDate  string
	Timestamp                string
	ParesStatus              string
	ECI                      string
	Nonce                    string
	Signature                string
	Language                 string

	// SignatureVerified is set by Verify
	SignatureVerified bool

	raw domain.FieldMapping
}

type responseField struct {
	name   string
	assign func(r *TransactionResponse, value string)
}

var commonResponseFields = []responseField{
	{domain.FieldTerminal, func(r *TransactionResponse, v string) { r.Terminal = v }},
	{domain.FieldOrder, func(r *TransactionResponse, v string) { r.Order = v }},
	{domain.FieldAmount, func(r *TransactionResponse, v string) { r.Amount = v }},
	{domain.FieldCurrency, func(r *TransactionResponse, v string) { r.Currency = v }},
	{domain.FieldAction, func(r *TransactionResponse, v string) { r.Action = v }},
	{domain.FieldResponseCode, func(r *TransactionResponse, v string) { r.ResponseCode = v }},
	{domain.FieldApproval, func(r *TransactionResponse, v string) { r.Approval = v }},
	{domain.FieldRetrievalReference, func(r *TransactionResponse, v string) { r.RetrievalReferenceNumber = v }},
	{domain.FieldInternalReference, func(r *TransactionResponse, v string) { r.InternalReference = v }},
	{domain.FieldStatusMessage, func(r *TransactionResponse, v string) { r.StatusMessage = v }},
	{domain.FieldCard, func(r *TransactionResponse, v string) { r.CardNumber = v }},
	{domain.FieldTransactionDate, func(r *TransactionResponse, v string) { r.OriginalTransactionDate = v }},
	{domain.FieldTimestamp, func(r *TransactionResponse, v string) { r.Timestamp = v }},
	{domain.FieldParesStatus, func(r *TransactionResponse, v string) { r.ParesStatus = v }},
	{domain.FieldECI, func(r *TransactionResponse, v string) { r.ECI = v }},
	{domain.FieldNonce, func(r *TransactionResponse, v string) { r.Nonce = v }},
	{domain.FieldSignature, func(r *TransactionResponse, v string) { r.Signature = v }},
	{domain.FieldLanguage, func(r *TransactionResponse, v string) { r.Language = v }},
}

var statusCheckResponseFields = append(append([]responseField{}, commonResponseFields...),
	responseField{domain.FieldOriginalTransactionType, func(r *TransactionResponse, v string) { r.OriginalTransactionType = v }},
)

var responseProjections = map[domain.TransactionType][]responseField{
	domain.TransactionTypeSale:                          commonResponseFields,
	domain.TransactionTypeDeferredAuthorization:         commonResponseFields,
	domain.TransactionTypeCompleteDeferredAuthorization: commonResponseFields,
	domain.TransactionTypeReverseDeferredAuthorization:  commonResponseFields,
	domain.TransactionTypeReversal:                      commonResponseFields,
	domain.TransactionTypeStatusCheck:                   statusCheckResponseFields,
}

// ParseResponse builds a response from inbound fields. The mapping is cloned
// and kept for signature verification. An unknown TRTYPE yields an
// UNKNOWN_TRANSACTION_TYPE error and no response.
func ParseResponse(fields domain.FieldMapping) (*TransactionResponse, error) {
	t, err := domain.ParseTransactionType(fields.Get(domain.FieldTransactionType))
	if err != nil {
		return nil, err
	}

	projection, ok := responseProjections[t]
	if !ok {
		return nil, domain.UnknownTransactionTypeError(t.Wire())
	}

	resp := &TransactionResponse{
		TransactionType: t,
		raw:             fields.Clone(),
	}
	for _, f := range projection {
		f.assign(resp, fields.Get(f.name))
	}
	return resp, nil
}

// Fields returns a copy of the inbound mapping
func (r *TransactionResponse) Fields() domain.FieldMapping {
	return r.raw.Clone()
}

// MAC returns the canonical response message for variant
func (r *TransactionResponse) MAC(variant domain.MacVariant) (string, error) {
	return BuildMAC(r.raw, true, variant)
}

// Verify checks P_SIGN against the canonical response message and records the
// outcome in SignatureVerified. A mismatch is (false, nil); a key problem is
// returned as a KEY_INVALID error.
func (r *TransactionResponse) Verify(verifier Verifier, variant domain.MacVariant) (bool, error) {
	r.SignatureVerified = false

	mac, err := r.MAC(variant)
	if err != nil {
		return false, err
	}
	ok, err := verifier.Verify([]byte(mac), r.Signature)
	if err != nil {
		return false, domain.KeyError("failed to verify response", err)
	}

	r.SignatureVerified = ok
	return ok, nil
}

// IsSuccessful reports whether the gateway approved the transaction
func (r *TransactionResponse) IsSuccessful() bool {
	return r.ResponseCode == ResponseCodeApproved
}

// AmountDecimal parses the AMOUNT field
func (r *TransactionResponse) AmountDecimal() (decimal.NullDecimal, error) {
	if r.Amount == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.NullDecimal{}, domain.WrapError(domain.ErrorCodeResponseInvalid, "invalid AMOUNT", err)
	}
	return decimal.NewNullDecimal(d), nil
}
