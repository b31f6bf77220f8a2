// Package callback serves the gateway's BACKREF notifications and the
// browser-redirect payment form.
package callback

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kevin07696/borica-gateway/internal/adapters/borica"
	"github.com/kevin07696/borica-gateway/internal/domain"
	"github.com/kevin07696/borica-gateway/pkg/observability"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FormPreparer stamps, signs and validates requests for the payment form.
// *borica.GatewayClient satisfies it.
type FormPreparer interface {
	Prepare(req *borica.TransactionRequest) error
	URL() string
}

// RequestFactory returns a request pre-filled with the terminal identity
type RequestFactory func(t domain.TransactionType) *borica.TransactionRequest

// Summary is the JSON body returned for a processed callback
type Summary struct {
	TransactionType   string `json:"trtype"`
	Order             string `json:"order"`
	Amount            string `json:"amount,omitempty"`
	ResponseCode      string `json:"rc"`
	Action            string `json:"action"`
	Successful        bool   `json:"successful"`
	SignatureVerified bool   `json:"signature_verified"`
	Description       string `json:"description,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler handles gateway callbacks and form generation
type Handler struct {
	verifier   borica.Verifier
	variant    domain.MacVariant
	preparer   FormPreparer
	newRequest RequestFactory
	logger     *zap.Logger
}

// NewHandler creates a callback handler
func NewHandler(verifier borica.Verifier, variant domain.MacVariant, preparer FormPreparer, newRequest RequestFactory, logger *zap.Logger) *Handler {
	return &Handler{
		verifier:   verifier,
		variant:    variant,
		preparer:   preparer,
		newRequest: newRequest,
		logger:     logger,
	}
}

// HandleCallback processes the gateway's POST to BACKREF. Only body fields
// are read; query parameters are not covered by P_SIGN.
// Unknown TRTYPE is a 400, a key problem a 500. A signature mismatch is
// reported in the summary with signature_verified=false.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Failed to parse callback form", zap.Error(err))
		writeError(w, http.StatusBadRequest, domain.ErrorCodeResponseInvalid, "invalid form data")
		return
	}

	fields := borica.FieldsFromValues(r.PostForm)
	resp, err := borica.ParseResponse(fields)
	if err != nil {
		h.logger.Warn("Rejected callback",
			zap.String("trtype", fields.Get(domain.FieldTransactionType)),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, domain.GetErrorCode(err), err.Error())
		return
	}

	logger := h.logger.With(
		zap.String("trtype", resp.TransactionType.Wire()),
		zap.String("terminal", resp.Terminal),
		zap.String("order", resp.Order),
		zap.String("rc", resp.ResponseCode),
	)
	observability.RecordResponse(resp.TransactionType.Wire(), resp.ResponseCode, "callback")

	if _, err := borica.VerifyAndRecord(resp, h.verifier, h.variant, logger); err != nil {
		writeError(w, http.StatusInternalServerError, domain.ErrorCodeKeyInvalid, "signature verification unavailable")
		return
	}

	amount, err := resp.AmountDecimal()
	if err != nil {
		logger.Warn("Callback carries an invalid amount", zap.String("amount", resp.Amount), zap.Error(err))
		writeError(w, http.StatusBadRequest, domain.ErrorCodeResponseInvalid, "invalid AMOUNT")
		return
	}

	logger.Info("Processed gateway callback",
		zap.String("action", resp.Action),
		zap.Bool("signature_verified", resp.SignatureVerified),
	)

	writeJSON(w, http.StatusOK, Summary{
		TransactionType:   resp.TransactionType.Wire(),
		Order:             resp.Order,
		Amount:            formatAmount(amount),
		ResponseCode:      resp.ResponseCode,
		Action:            resp.Action,
		Successful:        resp.IsSuccessful(),
		SignatureVerified: resp.SignatureVerified,
		Description:       resp.DescribeResponseCode(borica.ParseLanguage(resp.Language)),
	})
}

// GetPaymentForm builds, signs and renders a Sale form.
// GET /form?amount=10.00&order=1337&description=Order+1337[&order_id=INV-1]
func (h *Handler) GetPaymentForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, "amount must be a positive number")
		return
	}
	order, err := strconv.Atoi(query.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, "order must be an integer")
		return
	}

	req := h.newRequest(domain.TransactionTypeSale)
	req.SetAmount(amount).SetOrder(order)
	req.Description = query.Get("description")
	if id := query.Get("order_id"); id != "" {
		req.SetOrderIdentifier(id)
	}

	if err := h.preparer.Prepare(req); err != nil {
		if domain.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, err.Error())
			return
		}
		h.logger.Error("Failed to prepare payment form",
			zap.String("order", req.OrderString()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, domain.GetErrorCode(err), "failed to sign request")
		return
	}

	h.logger.Info("Rendering payment form",
		zap.String("order", req.OrderString()),
		zap.String("amount", req.AmountString()),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := borica.RenderForm(w, h.preparer.URL(), req.ToWireFields()); err != nil {
		h.logger.Error("Failed to render payment form", zap.Error(err))
	}
}

func formatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return ""
	}
	return amount.Decimal.StringFixed(2)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	writeJSON(w, status, errorBody{Code: string(code), Message: message})
}
