package borica

import (
	"testing"

	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	schema := []string{"A", "B", "C"}

	tests := []struct {
		name   string
		fields domain.FieldMapping
		policy MissingFieldPolicy
		want   string
	}{
		{
			name:   "all present",
			fields: domain.FieldMapping{"A": "x", "B": "hello", "C": "0123456789"},
			policy: MissingAsDash,
			want:   "1x5hello100123456789",
		},
		{
			name:   "missing as dash",
			fields: domain.FieldMapping{"A": "x"},
			policy: MissingAsDash,
			want:   "1x--",
		},
		{
			name:   "missing as zero length",
			fields: domain.FieldMapping{"A": "x"},
			policy: MissingAsZeroLength,
			want:   "1x00",
		},
		{
			name:   "empty value counts as missing",
			fields: domain.FieldMapping{"A": "", "B": "y"},
			policy: MissingAsDash,
			want:   "-1y-",
		},
		{
			name:   "extra fields ignored",
			fields: domain.FieldMapping{"A": "1", "B": "2", "C": "3", "D": "ignored"},
			policy: MissingAsDash,
			want:   "111213",
		},
		{
			name:   "multi-byte value uses byte length",
			fields: domain.FieldMapping{"A": "Тест", "B": "a", "C": "b"},
			policy: MissingAsDash,
			want:   "8Тест1a1b",
		},
		{
			name:   "empty mapping",
			fields: domain.FieldMapping{},
			policy: MissingAsZeroLength,
			want:   "000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.fields, schema, tt.policy))
		})
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, MissingAsZeroLength, PolicyFor(domain.MacVariantExtended, false))
	assert.Equal(t, MissingAsDash, PolicyFor(domain.MacVariantExtended, true))
	assert.Equal(t, MissingAsDash, PolicyFor(domain.MacVariantGeneral, false))
	assert.Equal(t, MissingAsDash, PolicyFor(domain.MacVariantGeneral, true))
}

func TestBuildMAC(t *testing.T) {
	fields := domain.FieldMapping{
		"TERMINAL":  testTerminal,
		"TRTYPE":    "1",
		"AMOUNT":    "10.00",
		"CURRENCY":  "BGN",
		"ORDER":     "001337",
		"MERCHANT":  testMerchant,
		"TIMESTAMP": "20201013115715",
		"NONCE":     testNonce,
	}

	t.Run("extended request", func(t *testing.T) {
		mac, err := BuildMAC(fields, false, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.Equal(t, "8V180000111510.003BGN600133710160000000114202010131157153222E6A4E2B8FD1A4D22E6A4E2B8FD1A4D", mac)
	})

	t.Run("general request dashes missing RFU", func(t *testing.T) {
		mac, err := BuildMAC(fields, false, domain.MacVariantGeneral)
		require.NoError(t, err)
		assert.Equal(t, "8V180000111510.003BGN600133714202010131157153222E6A4E2B8FD1A4D22E6A4E2B8FD1A4D-", mac)
	})

	t.Run("extended response dashes missing fields", func(t *testing.T) {
		mac, err := BuildMAC(fields, true, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.Equal(t, "---8V180000111510.003BGN6001337----14202010131157153222E6A4E2B8FD1A4D22E6A4E2B8FD1A4D", mac)
	})

	t.Run("unknown TRTYPE", func(t *testing.T) {
		bad := fields.Clone()
		bad["TRTYPE"] = "7"
		_, err := BuildMAC(bad, false, domain.MacVariantExtended)
		assert.True(t, domain.IsUnknownTransactionType(err))
	})

	t.Run("missing TRTYPE", func(t *testing.T) {
		bad := fields.Clone()
		delete(bad, "TRTYPE")
		_, err := BuildMAC(bad, true, domain.MacVariantGeneral)
		assert.True(t, domain.IsUnknownTransactionType(err))
	})
}
