package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"driveease/config"
	"driveease/infras/otel"
	"driveease/shared/constant"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	ordersPath          = "/v1/orders"
	maxErrorBodyBytes   = 4 << 10
	otelAttrReceipt     = "payment.receipt"
	otelAttrStatusCode  = "payment.status_code"
	signaturePayloadSep = "|"
)

// ErrGateway marks failures of the payment provider itself.
var ErrGateway = errors.New("payment gateway error")

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type razorpayImpl struct {
	client    *http.Client
	limiter   *rate.Limiter
	baseURL   string
	keyID     string
	keySecret string
	otel      otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Gateway {
	payment := cfg.External.Payment

	return &razorpayImpl{
		client:    &http.Client{Timeout: time.Duration(payment.TimeoutSeconds) * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(payment.MaxRPS), max(1, int(payment.MaxRPS))),
		baseURL:   strings.TrimRight(payment.BaseURL, "/"),
		keyID:     payment.KeyID,
		keySecret: payment.KeySecret,
		otel:      otl,
	}
}

func (g *razorpayImpl) KeyID() string {
	return g.keyID
}

// CreateOrder registers an order for amount minor units with the provider.
func (g *razorpayImpl) CreateOrder(ctx context.Context, req OrderRequest) (order Order, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelPaymentScopeName, constant.OtelPaymentScopeName+".CreateOrder")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelAttrReceipt, req.Receipt)

	if err = g.limiter.Wait(ctx); err != nil {
		return order, fmt.Errorf("payment gateway rate limit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return order, fmt.Errorf("failed to marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return order, fmt.Errorf("failed to build order request: %w", err)
	}

	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	res, err := g.client.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("receipt", req.Receipt).Msg("failed to call payment gateway")

		return order, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer res.Body.Close()

	scope.SetAttribute(otelAttrStatusCode, res.StatusCode)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		var gatewayErr gatewayError

		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		_ = json.Unmarshal(raw, &gatewayErr)

		log.Error().
			Int("status", res.StatusCode).
			Str("code", gatewayErr.Error.Code).
			Str("description", gatewayErr.Error.Description).
			Msg("payment gateway rejected order")

		return order, fmt.Errorf("%w: status %d: %s", ErrGateway, res.StatusCode, gatewayErr.Error.Description)
	}

	if err = json.NewDecoder(res.Body).Decode(&order); err != nil {
		return order, fmt.Errorf("%w: failed to decode order: %w", ErrGateway, err)
	}

	return order, nil
}

// VerifySignature checks the hex HMAC-SHA256 of "orderID|paymentID" in constant time.
func (g *razorpayImpl) VerifySignature(orderID, paymentID, signature string) bool {
	expected, err := hex.DecodeString(Sign(g.keySecret, orderID, paymentID))
	if err != nil {
		return false
	}

	given, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, given)
}

// Sign returns the signature the provider attaches to a captured payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + signaturePayloadSep + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}
