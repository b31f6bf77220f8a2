package callback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kevin07696/borica-gateway/internal/adapters/borica"
	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type keylessVerifier struct{}

func (keylessVerifier) Verify([]byte, string) (bool, error) {
	return false, crypto.ErrKey
}

func newEngine(t *testing.T) *crypto.SignatureEngine {
	t.Helper()
	kp, err := crypto.GenerateTestKeyPair(2048)
	require.NoError(t, err)
	engine, err := crypto.NewSignatureEngine(crypto.KeyMaterial{
		PrivateKeyPEM:  []byte(kp.PrivateKeyPEM),
		CertificatePEM: []byte(kp.CertificatePEM),
	})
	require.NoError(t, err)
	return engine
}

func newRequestFactory(t domain.TransactionType) *borica.TransactionRequest {
	req := borica.NewRequest(t)
	req.Terminal = "V1800001"
	req.Merchant = "1600000001"
	return req
}

func newTestHandler(t *testing.T, engine *crypto.SignatureEngine, verifier borica.Verifier) *Handler {
	config := borica.DefaultGatewayConfig("sandbox")
	client := borica.NewGatewayClient(config, engine, zap.NewNop())
	return NewHandler(verifier, domain.MacVariantExtended, client, newRequestFactory, zap.NewNop())
}

func callbackFields() domain.FieldMapping {
	return domain.FieldMapping{
		"ACTION":    "0",
		"RC":        "00",
		"APPROVAL":  "S78952",
		"TERMINAL":  "V1800001",
		"TRTYPE":    "1",
		"AMOUNT":    "10.00",
		"CURRENCY":  "BGN",
		"ORDER":     "001337",
		"RRN":       "028701253157",
		"INT_REF":   "F1E0C24D6A8F4A1F",
		"TIMESTAMP": "20201013115715",
		"NONCE":     "22E6A4E2B8FD1A4D22E6A4E2B8FD1A4D",
		"LANG":      "EN",
	}
}

func sign(t *testing.T, engine *crypto.SignatureEngine, fields domain.FieldMapping) domain.FieldMapping {
	t.Helper()
	mac, err := borica.BuildMAC(fields, true, domain.MacVariantExtended)
	require.NoError(t, err)
	sig, err := engine.Sign([]byte(mac))
	require.NoError(t, err)
	out := fields.Clone()
	out["P_SIGN"] = sig
	return out
}

func postCallback(h *Handler, fields domain.FieldMapping) *httptest.ResponseRecorder {
	return postCallbackTo(h, "/callback", fields)
}

func postCallbackTo(h *Handler, target string, fields domain.FieldMapping) *httptest.ResponseRecorder {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleCallback(rec, req)
	return rec
}

func TestHandleCallback(t *testing.T) {
	engine := newEngine(t)
	h := newTestHandler(t, engine, engine)

	t.Run("verified approval", func(t *testing.T) {
		rec := postCallback(h, sign(t, engine, callbackFields()))
		require.Equal(t, http.StatusOK, rec.Code)

		var summary Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, Summary{
			TransactionType:   "1",
			Order:             "001337",
			Amount:            "10.00",
			ResponseCode:      "00",
			Action:            "0",
			Successful:        true,
			SignatureVerified: true,
			Description:       "Successfully completed",
		}, summary)
	})

	t.Run("tampered callback is reported, not rejected", func(t *testing.T) {
		fields := sign(t, engine, callbackFields())
		fields["AMOUNT"] = "0.01"
		rec := postCallback(h, fields)
		require.Equal(t, http.StatusOK, rec.Code)

		var summary Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.False(t, summary.SignatureVerified)
		assert.True(t, summary.Successful)
	})

	t.Run("declined", func(t *testing.T) {
		fields := callbackFields()
		fields["RC"] = "05"
		fields["ACTION"] = "2"
		rec := postCallback(h, sign(t, engine, fields))

		var summary Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.False(t, summary.Successful)
		assert.True(t, summary.SignatureVerified)
		assert.Equal(t, "Do not Honour", summary.Description)
	})

	t.Run("query parameters are ignored", func(t *testing.T) {
		fields := callbackFields()
		delete(fields, "LANG")
		rec := postCallbackTo(h, "/callback?LANG=EN&RC=05&STATUSMSG=injected", sign(t, engine, fields))
		require.Equal(t, http.StatusOK, rec.Code)

		var summary Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.True(t, summary.SignatureVerified)
		assert.Equal(t, "00", summary.ResponseCode)
		assert.Equal(t, "Успешно завършена трансакция", summary.Description)
	})

	t.Run("query cannot supply a missing TRTYPE", func(t *testing.T) {
		fields := sign(t, engine, callbackFields())
		delete(fields, "TRTYPE")
		rec := postCallbackTo(h, "/callback?TRTYPE=1", fields)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid amount", func(t *testing.T) {
		fields := callbackFields()
		fields["AMOUNT"] = "ten"
		rec := postCallback(h, sign(t, engine, fields))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(domain.ErrorCodeResponseInvalid), body.Code)
	})

	t.Run("unknown transaction type", func(t *testing.T) {
		fields := callbackFields()
		fields["TRTYPE"] = "3"
		rec := postCallback(h, fields)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(domain.ErrorCodeUnknownTransactionType), body.Code)
	})
}

func TestHandleCallback_KeyError(t *testing.T) {
	h := newTestHandler(t, newEngine(t), keylessVerifier{})

	rec := postCallback(h, callbackFields())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.ErrorCodeKeyInvalid), body.Code)
}

func TestGetPaymentForm(t *testing.T) {
	engine := newEngine(t)
	h := newTestHandler(t, engine, engine)

	req := httptest.NewRequest(http.MethodGet, "/form?amount=10&order=1337&description=Order+1337&order_id=INV%3B1", nil)
	rec := httptest.NewRecorder()
	h.GetPaymentForm(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	assert.Contains(t, html, `action="`+borica.SandboxURL+`"`)
	assert.Contains(t, html, `name="AMOUNT" value="10.00"`)
	assert.Contains(t, html, `name="ORDER" value="001337"`)
	assert.Contains(t, html, `name="AD.CUST_BOR_ORDER_ID" value="INV-1"`)
	assert.Contains(t, html, `name="P_SIGN"`)
}

func TestGetPaymentForm_BadInput(t *testing.T) {
	engine := newEngine(t)
	h := newTestHandler(t, engine, engine)

	tests := []struct {
		name  string
		query string
	}{
		{"missing amount", "order=1&description=x"},
		{"negative amount", "amount=-1&order=1&description=x"},
		{"bad order", "amount=1&order=abc&description=x"},
		{"missing description", "amount=1&order=1"},
		{"order too large", "amount=1&order=1000000&description=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.GetPaymentForm(rec, httptest.NewRequest(http.MethodGet, "/form?"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetPaymentForm_SigningFailure(t *testing.T) {
	kp, err := crypto.GenerateTestKeyPair(2048)
	require.NoError(t, err)
	verifyOnly, err := crypto.NewSignatureEngine(crypto.KeyMaterial{CertificatePEM: []byte(kp.CertificatePEM)})
	require.NoError(t, err)
	h := newTestHandler(t, verifyOnly, verifyOnly)

	rec := httptest.NewRecorder()
	h.GetPaymentForm(rec, httptest.NewRequest(http.MethodGet, "/form?amount=1&order=1&description=x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
