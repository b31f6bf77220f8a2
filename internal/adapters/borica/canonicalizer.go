package borica

import (
	"strconv"
	"strings"

	"github.com/kevin07696/borica-gateway/internal/domain"
)

// MissingFieldPolicy decides how an absent or empty field contributes to the MAC
type MissingFieldPolicy int

const (
	// MissingAsDash renders a missing field as "-"
	MissingAsDash MissingFieldPolicy = iota
	// MissingAsZeroLength renders a missing field as its length prefix "0"
	MissingAsZeroLength
)

func (p MissingFieldPolicy) String() string {
	if p == MissingAsZeroLength {
		return "zero_length"
	}
	return "dash"
}

// PolicyFor returns the missing-field rule of a variant and direction.
// The extended variant dashes missing response fields but length-prefixes
// missing request fields with "0"; gateways expect exactly that.
func PolicyFor(variant domain.MacVariant, isResponse bool) MissingFieldPolicy {
	if variant == domain.MacVariantExtended && !isResponse {
		return MissingAsZeroLength
	}
	return MissingAsDash
}

// Canonicalize concatenates the schema fields in order. A present value becomes
// its decimal byte length followed by the value; a missing one follows policy.
// Fields outside the schema are ignored.
func Canonicalize(fields domain.FieldMapping, schema []string, policy MissingFieldPolicy) string {
	var b strings.Builder
	for _, name := range schema {
		value := fields.Get(name)
		if value == "" {
			if policy == MissingAsZeroLength {
				b.WriteString("0")
			} else {
				b.WriteString("-")
			}
			continue
		}
		b.WriteString(strconv.Itoa(len(value)))
		b.WriteString(value)
	}
	return b.String()
}

// BuildMAC resolves the schema from the TRTYPE field of fields and returns the
// canonical message to sign or verify.
func BuildMAC(fields domain.FieldMapping, isResponse bool, variant domain.MacVariant) (string, error) {
	t, err := domain.ParseTransactionType(fields.Get(domain.FieldTransactionType))
	if err != nil {
		return "", err
	}

	schema, err := Schema(t, isResponse, variant)
	if err != nil {
		return "", err
	}
	return Canonicalize(fields, schema, PolicyFor(variant, isResponse)), nil
}
