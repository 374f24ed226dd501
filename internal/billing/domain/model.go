package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidPlan                = errors.New("invalid_plan")
	ErrCredentialIssuanceFailed   = errors.New("credential_issuance_failed")
	ErrChargeDeclined             = errors.New("charge_declined")
	ErrChargeGatewayError         = errors.New("charge_gateway_error")
	ErrPaymentConfirmationFailed  = errors.New("payment_confirmation_failed")
	ErrRecordingFailedAfterCharge = errors.New("recording_failed_after_charge")
	ErrDuplicateOrder             = errors.New("duplicate_order")
	ErrRecordNotFound             = errors.New("subscription_record_not_found")
)

type SubscriptionStatus string

const (
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusFailed    SubscriptionStatus = "failed"
)

// SubscriptionRecord is the ledger's unit of storage: one row per
// successful charge, keyed by order_id and never updated in place.
// The order_id unique index is what makes insert-if-absent correct
// under recording retries.
type SubscriptionRecord struct {
	ID                     snowflake.ID               `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID                string                     `json:"order_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	UserID                 string                     `json:"user_id" gorm:"type:varchar(64);not null;index"`
	PlanID                 string                     `json:"plan_id" gorm:"type:varchar(32);not null"`
	BillingCycle           catalogdomain.BillingCycle `json:"billing_cycle" gorm:"type:varchar(10);not null"`
	Amount                 int64                      `json:"amount" gorm:"not null"`
	GatewayChargeReference string                     `json:"gateway_charge_reference" gorm:"type:varchar(255)"`
	Status                 SubscriptionStatus         `json:"status" gorm:"type:varchar(20);not null"`
	CardSummary            string                     `json:"card_summary" gorm:"type:varchar(64)"`
	Metadata               datatypes.JSONMap          `json:"metadata" gorm:"type:jsonb"`
	ApprovedAt             time.Time                  `json:"approved_at" gorm:"not null;index"`
	PeriodStart            time.Time                  `json:"period_start" gorm:"not null"`
	PeriodEnd              time.Time                  `json:"period_end" gorm:"not null"`
	CreatedAt              time.Time                  `json:"created_at" gorm:"not null"`
}

func (SubscriptionRecord) TableName() string { return "subscription_records" }

// RedirectDirective tells the browser shell how to launch the gateway
// authorization redirect. The failure URL carries no payment-identifying
// parameters.
type RedirectDirective struct {
	ClientKey     string                     `json:"client_key"`
	CustomerKey   string                     `json:"customer_key"`
	PlanID        string                     `json:"plan_id"`
	BillingCycle  catalogdomain.BillingCycle `json:"billing_cycle"`
	Amount        int64                      `json:"amount"`
	OrderName     string                     `json:"order_name"`
	CustomerEmail string                     `json:"customer_email"`
	CustomerName  string                     `json:"customer_name"`
	SuccessURL    string                     `json:"success_url"`
	FailURL       string                     `json:"fail_url"`
}

type BeginCheckoutRequest struct {
	PlanID       string
	BillingCycle catalogdomain.BillingCycle
	UserID       string
	Email        string
	DisplayName  string
}

type ResumeRequest struct {
	CustomerKey  string
	AuthKey      string
	PlanID       string
	BillingCycle catalogdomain.BillingCycle
	UserID       string
}

type ConfirmPaymentRequest struct {
	OrderID          string
	Amount           int64
	PaymentReference string
	PlanID           string
	BillingCycle     catalogdomain.BillingCycle
	UserID           string
}

type Service interface {
	BeginCheckout(ctx context.Context, req BeginCheckoutRequest) (*RedirectDirective, error)
	ResumeAfterAuthorization(ctx context.Context, req ResumeRequest) (*SubscriptionRecord, error)
	ConfirmOneTimePayment(ctx context.Context, req ConfirmPaymentRequest) (*SubscriptionRecord, error)
	GetByOrderID(ctx context.Context, orderID string) (*SubscriptionRecord, error)
	ListForUser(ctx context.Context, userID string) ([]SubscriptionRecord, error)
}

type LedgerRepository interface {
	InsertIfAbsent(ctx context.Context, db *gorm.DB, record *SubscriptionRecord) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*SubscriptionRecord, error)
	ListByUserID(ctx context.Context, db *gorm.DB, userID string) ([]SubscriptionRecord, error)
}
