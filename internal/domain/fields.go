package domain

// Wire field names dictated by the BORICA e-Gateway protocol
const (
	FieldTerminal                = "TERMINAL"
	FieldTransactionType         = "TRTYPE"
	FieldAmount                  = "AMOUNT"
	FieldCurrency                = "CURRENCY"
	FieldOrder                   = "ORDER"
	FieldDescription             = "DESC"
	FieldMerchant                = "MERCHANT"
	FieldMerchantName            = "MERCH_NAME"
	FieldMerchantURL             = "MERCH_URL"
	FieldTimestamp               = "TIMESTAMP"
	FieldNonce                   = "NONCE"
	FieldSignature               = "P_SIGN"
	FieldRetrievalReference      = "RRN"
	FieldInternalReference       = "INT_REF"
	FieldOrderIdentifier         = "AD.CUST_BOR_ORDER_ID"
	FieldAddendum                = "ADDENDUM"
	FieldEmail                   = "EMAIL"
	FieldCountry                 = "COUNTRY"
	FieldMerchantTimezone        = "MERCH_GMT"
	FieldLanguage                = "LANG"
	FieldOriginalTransactionType = "TRAN_TRTYPE"
	FieldAction                  = "ACTION"
	FieldResponseCode            = "RC"
	FieldApproval                = "APPROVAL"
	FieldStatusMessage           = "STATUSMSG"
	FieldCard                    = "CARD"
	FieldTransactionDate         = "TRAN_DATE"
	FieldParesStatus             = "PARES_STATUS"
	FieldECI                     = "ECI"
	FieldBackRef                 = "BACKREF"
	FieldMInfo                   = "M_INFO"
	FieldReserved                = "RFU"
)

// FieldMapping maps wire field names to string values.
// Key order is irrelevant; canonical ordering comes from the MAC schema.
type FieldMapping map[string]string

// Get returns the value of a field, or "" when absent
func (m FieldMapping) Get(name string) string {
	return m[name]
}

// Has reports whether a field is present with a non-empty value
func (m FieldMapping) Has(name string) bool {
	return m[name] != ""
}

// Set stores value under name only when value is non-empty.
// Empty values stay absent from the mapping (sparse encoding).
func (m FieldMapping) Set(name, value string) {
	if value == "" {
		return
	}
	m[name] = value
}

// Clone returns an independent copy of the mapping
func (m FieldMapping) Clone() FieldMapping {
	out := make(FieldMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
