package borica

import (
	"sync"
	"testing"

	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
	"github.com/stretchr/testify/require"
)

const (
	testTerminal = "V1800001"
	testMerchant = "1600000001"
	testNonce    = "22E6A4E2B8FD1A4D22E6A4E2B8FD1A4D"
)

var (
	engineOnce sync.Once
	engineVal  *crypto.SignatureEngine
	engineErr  error
)

// testEngine shares one 2048-bit key across the package tests
func testEngine(t *testing.T) *crypto.SignatureEngine {
	t.Helper()
	engineOnce.Do(func() {
		var kp *crypto.KeyPair
		kp, engineErr = crypto.GenerateTestKeyPair(2048)
		if engineErr != nil {
			return
		}
		engineVal, engineErr = crypto.NewSignatureEngine(crypto.KeyMaterial{
			PrivateKeyPEM:  []byte(kp.PrivateKeyPEM),
			CertificatePEM: []byte(kp.CertificatePEM),
		})
	})
	require.NoError(t, engineErr)
	return engineVal
}

// signedResponse returns fields with P_SIGN computed over the response MAC
func signedResponse(t *testing.T, fields domain.FieldMapping, variant domain.MacVariant) domain.FieldMapping {
	t.Helper()
	mac, err := BuildMAC(fields, true, variant)
	require.NoError(t, err)
	sig, err := testEngine(t).Sign([]byte(mac))
	require.NoError(t, err)

	out := fields.Clone()
	out.Set(domain.FieldSignature, sig)
	return out
}

func approvedSaleFields() domain.FieldMapping {
	return domain.FieldMapping{
		domain.FieldAction:             "0",
		domain.FieldResponseCode:       "00",
		domain.FieldApproval:           "S78952",
		domain.FieldTerminal:           testTerminal,
		domain.FieldTransactionType:    "1",
		domain.FieldAmount:             "10.00",
		domain.FieldCurrency:           "BGN",
		domain.FieldOrder:              "001337",
		domain.FieldRetrievalReference: "028701253157",
		domain.FieldInternalReference:  "F1E0C24D6A8F4A1F",
		domain.FieldParesStatus:        "Y",
		domain.FieldECI:                "05",
		domain.FieldTimestamp:          "20201013115715",
		domain.FieldNonce:              testNonce,
	}
}

type failingSigner struct{ err error }

func (s failingSigner) Sign([]byte) (string, error) { return "", s.err }

type failingVerifier struct{ err error }

func (v failingVerifier) Verify([]byte, string) (bool, error) { return false, v.err }
