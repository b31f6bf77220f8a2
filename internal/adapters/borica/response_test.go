package borica

import (
	"errors"
	"testing"

	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	fields := approvedSaleFields()
	fields["CARD"] = "5100XXXXXXXX0022"
	fields["STATUSMSG"] = "Approved"

	resp, err := ParseResponse(fields)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeSale, resp.TransactionType)
	assert.Equal(t, testTerminal, resp.Terminal)
	assert.Equal(t, "001337", resp.Order)
	assert.Equal(t, "10.00", resp.Amount)
	assert.Equal(t, "00", resp.ResponseCode)
	assert.Equal(t, "0", resp.Action)
	assert.Equal(t, "S78952", resp.Approval)
	assert.Equal(t, "028701253157", resp.RetrievalReferenceNumber)
	assert.Equal(t, "F1E0C24D6A8F4A1F", resp.InternalReference)
	assert.Equal(t, "5100XXXXXXXX0022", resp.CardNumber)
	assert.Equal(t, "Approved", resp.StatusMessage)
	assert.Empty(t, resp.OriginalTransactionType, "only status check responses carry TRAN_TRTYPE")
	assert.False(t, resp.SignatureVerified)
	assert.True(t, resp.IsSuccessful())
}

func TestParseResponse_StatusCheck(t *testing.T) {
	fields := approvedSaleFields()
	fields["TRTYPE"] = "90"
	fields["TRAN_TRTYPE"] = "1"

	resp, err := ParseResponse(fields)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeStatusCheck, resp.TransactionType)
	assert.Equal(t, "1", resp.OriginalTransactionType)
}

func TestParseResponse_UnknownType(t *testing.T) {
	for _, trtype := range []string{"", "3", "abc"} {
		fields := approvedSaleFields()
		fields["TRTYPE"] = trtype

		resp, err := ParseResponse(fields)
		assert.Nil(t, resp)
		assert.True(t, domain.IsUnknownTransactionType(err), "TRTYPE=%q", trtype)
	}
}

func TestParseResponse_ClonesInput(t *testing.T) {
	fields := approvedSaleFields()
	resp, err := ParseResponse(fields)
	require.NoError(t, err)

	fields["AMOUNT"] = "99.00"
	assert.Equal(t, "10.00", resp.Fields()["AMOUNT"])

	out := resp.Fields()
	out["AMOUNT"] = "1.00"
	assert.Equal(t, "10.00", resp.Fields()["AMOUNT"])
}

func TestTransactionResponse_IsSuccessful(t *testing.T) {
	for rc, want := range map[string]bool{"00": true, "0": false, "05": false, "-17": false, "": false} {
		resp := &TransactionResponse{ResponseCode: rc}
		assert.Equal(t, want, resp.IsSuccessful(), "RC=%q", rc)
	}
}

func TestTransactionResponse_Verify(t *testing.T) {
	engine := testEngine(t)

	t.Run("valid signature", func(t *testing.T) {
		resp, err := ParseResponse(signedResponse(t, approvedSaleFields(), domain.MacVariantExtended))
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, resp.SignatureVerified)
	})

	t.Run("general variant", func(t *testing.T) {
		resp, err := ParseResponse(signedResponse(t, approvedSaleFields(), domain.MacVariantGeneral))
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantGeneral)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered amount", func(t *testing.T) {
		fields := signedResponse(t, approvedSaleFields(), domain.MacVariantExtended)
		fields["AMOUNT"] = "100.00"
		resp, err := ParseResponse(fields)
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, resp.SignatureVerified)
	})

	t.Run("field outside the MAC does not matter", func(t *testing.T) {
		fields := signedResponse(t, approvedSaleFields(), domain.MacVariantExtended)
		fields["STATUSMSG"] = "changed"
		resp, err := ParseResponse(fields)
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing signature", func(t *testing.T) {
		resp, err := ParseResponse(approvedSaleFields())
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantExtended)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong variant", func(t *testing.T) {
		resp, err := ParseResponse(signedResponse(t, approvedSaleFields(), domain.MacVariantExtended))
		require.NoError(t, err)

		ok, err := resp.Verify(engine, domain.MacVariantGeneral)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("verifier without key", func(t *testing.T) {
		resp, err := ParseResponse(approvedSaleFields())
		require.NoError(t, err)

		ok, err := resp.Verify(failingVerifier{err: crypto.ErrKey}, domain.MacVariantExtended)
		assert.False(t, ok)
		assert.True(t, domain.IsKeyError(err))
		assert.True(t, errors.Is(err, crypto.ErrKey))
	})
}

func TestTransactionResponse_AmountDecimal(t *testing.T) {
	resp := &TransactionResponse{Amount: "10.50"}
	amount, err := resp.AmountDecimal()
	require.NoError(t, err)
	assert.True(t, amount.Valid)
	assert.Equal(t, "10.5", amount.Decimal.String())

	empty, err := (&TransactionResponse{}).AmountDecimal()
	require.NoError(t, err)
	assert.False(t, empty.Valid)

	_, err = (&TransactionResponse{Amount: "ten"}).AmountDecimal()
	assert.Equal(t, domain.ErrorCodeResponseInvalid, domain.GetErrorCode(err))
}
