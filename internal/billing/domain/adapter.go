package domain

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidConfig = errors.New("invalid_config")

// BillingCredential is the gateway-issued token authorizing future
// charges. Only the opaque CredentialID is ever stored; raw card data
// stays with the gateway.
type BillingCredential struct {
	CredentialID string
	CustomerKey  string
	IssuedAt     time.Time
}

type ChargeRequest struct {
	CredentialID string
	CustomerKey  string
	Amount       int64
	OrderID      string
	OrderName    string
}

type ChargeResult struct {
	GatewayChargeReference string
	CardSummary            string
	ApprovedAt             time.Time
}

// Gateway abstracts the card gateway's server API. Implementations
// classify provider failures into the billing error taxonomy; they
// never retry a charge on their own.
type Gateway interface {
	IssueCredential(ctx context.Context, customerKey, authKey string) (*BillingCredential, error)
	ChargeByCredential(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	ConfirmPayment(ctx context.Context, orderID string, amount int64, paymentReference string) (*ChargeResult, error)
}

type AdapterConfig struct {
	BaseURL   string
	SecretKey string
	ClientKey string
}
