package toss

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
)

const defaultBaseURL = "https://api.tosspayments.com"

// Factory creates Toss Payments adapters
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "toss"
}

func (f *Factory) NewAdapter(cfg billingdomain.AdapterConfig) (billingdomain.Gateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, billingdomain.ErrInvalidConfig
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Adapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: 12 * time.Second},
	}, nil
}

// Adapter implements billingdomain.Gateway for Toss Payments
type Adapter struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

type tossError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tossBillingKey struct {
	BillingKey      string `json:"billingKey"`
	CustomerKey     string `json:"customerKey"`
	AuthenticatedAt string `json:"authenticatedAt"`
}

type tossCard struct {
	Company string `json:"company"`
	Number  string `json:"number"`
}

type tossPayment struct {
	PaymentKey  string    `json:"paymentKey"`
	OrderID     string    `json:"orderId"`
	TotalAmount int64     `json:"totalAmount"`
	ApprovedAt  string    `json:"approvedAt"`
	Card        *tossCard `json:"card"`
}

// IssueCredential exchanges a single-use auth key for a reusable
// billing key. The auth key is consumed by the gateway whether or not
// this call succeeds, so callers restart authorization on failure
// instead of retrying with the same key.
func (a *Adapter) IssueCredential(ctx context.Context, customerKey, authKey string) (*billingdomain.BillingCredential, error) {
	reqBody := map[string]string{
		"authKey":     authKey,
		"customerKey": customerKey,
	}

	var out tossBillingKey
	if err := a.doRequest(ctx, "/v1/billing/authorizations/issue", reqBody, "", &out); err != nil {
		return nil, fmt.Errorf("%w: %v", billingdomain.ErrCredentialIssuanceFailed, err)
	}
	if strings.TrimSpace(out.BillingKey) == "" {
		return nil, fmt.Errorf("%w: empty billing key", billingdomain.ErrCredentialIssuanceFailed)
	}

	issuedAt, _ := time.Parse(time.RFC3339, out.AuthenticatedAt)
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}

	return &billingdomain.BillingCredential{
		CredentialID: out.BillingKey,
		CustomerKey:  out.CustomerKey,
		IssuedAt:     issuedAt,
	}, nil
}

// ChargeByCredential charges a previously issued billing key. The
// order id doubles as the gateway idempotency key; this method never
// retries on its own.
func (a *Adapter) ChargeByCredential(ctx context.Context, req billingdomain.ChargeRequest) (*billingdomain.ChargeResult, error) {
	reqBody := map[string]any{
		"customerKey": req.CustomerKey,
		"amount":      req.Amount,
		"orderId":     req.OrderID,
		"orderName":   req.OrderName,
	}

	var out tossPayment
	if err := a.doRequest(ctx, "/v1/billing/"+req.CredentialID, reqBody, req.OrderID, &out); err != nil {
		if gwErr, ok := err.(*gatewayError); ok && gwErr.declined() {
			return nil, fmt.Errorf("%w: %s", billingdomain.ErrChargeDeclined, gwErr.code)
		}
		return nil, fmt.Errorf("%w: %v", billingdomain.ErrChargeGatewayError, err)
	}

	return paymentToResult(out), nil
}

// ConfirmPayment confirms a one-shot payment the browser SDK already
// authorized. Any gateway rejection, including an amount mismatch with
// the gateway's own record, is a hard confirmation failure.
func (a *Adapter) ConfirmPayment(ctx context.Context, orderID string, amount int64, paymentReference string) (*billingdomain.ChargeResult, error) {
	reqBody := map[string]any{
		"paymentKey": paymentReference,
		"orderId":    orderID,
		"amount":     amount,
	}

	var out tossPayment
	if err := a.doRequest(ctx, "/v1/payments/confirm", reqBody, orderID, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", billingdomain.ErrPaymentConfirmationFailed, err)
	}

	return paymentToResult(out), nil
}

func (a *Adapter) doRequest(ctx context.Context, path string, body any, idempotencyKey string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(a.secretKey, "")
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var gwErr tossError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gwErr); decodeErr != nil {
			return &gatewayError{status: resp.StatusCode}
		}
		return &gatewayError{status: resp.StatusCode, code: gwErr.Code, message: gwErr.Message}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func paymentToResult(p tossPayment) *billingdomain.ChargeResult {
	approvedAt, _ := time.Parse(time.RFC3339, p.ApprovedAt)
	if approvedAt.IsZero() {
		approvedAt = time.Now().UTC()
	}

	cardSummary := ""
	if p.Card != nil {
		cardSummary = strings.TrimSpace(p.Card.Company + " " + p.Card.Number)
	}

	return &billingdomain.ChargeResult{
		GatewayChargeReference: p.PaymentKey,
		CardSummary:            cardSummary,
		ApprovedAt:             approvedAt,
	}
}

type gatewayError struct {
	status  int
	code    string
	message string
}

func (e *gatewayError) Error() string {
	if e.code == "" {
		return fmt.Sprintf("gateway status %d", e.status)
	}
	return fmt.Sprintf("%s (%s)", e.code, e.message)
}

// declined reports whether the failure means the card itself was
// refused, as opposed to a transient gateway problem.
func (e *gatewayError) declined() bool {
	if e.status >= http.StatusInternalServerError {
		return false
	}
	switch e.code {
	case "REJECT_CARD_COMPANY",
		"REJECT_CARD_PAYMENT",
		"INVALID_STOPPED_CARD",
		"INVALID_CARD_EXPIRATION",
		"EXCEED_MAX_PAYMENT_AMOUNT",
		"EXCEED_MAX_DAILY_PAYMENT_COUNT",
		"NOT_SUPPORTED_INSTALLMENT_PLAN_CARD_OR_MERCHANT",
		"NOT_ENOUGH_BALANCE":
		return true
	}
	return false
}
