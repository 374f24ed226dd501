package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/reconcile"
	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/clock"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// customerKeyNamespace fixes the UUIDv5 namespace so a user always maps
// to the same gateway customer key across sessions.
var customerKeyNamespace = uuid.MustParse("8fbd7a73-20c4-4f36-9e1d-3c52a0f6b1d9")

const recordInsertAttempts = 3

var chargeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "billing_charge_attempts_total",
	Help: "Charge attempts by outcome.",
}, []string{"outcome"})

type OrchestratorParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Gateway    domain.Gateway
	Repo       domain.LedgerRepository
	CatalogSvc catalogdomain.Service
	Reconciler reconcile.Queue
}

type Orchestrator struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	cfg        config.Config
	gateway    domain.Gateway
	repo       domain.LedgerRepository
	catalogSvc catalogdomain.Service
	reconciler reconcile.Queue
}

func NewOrchestrator(p OrchestratorParams) domain.Service {
	return &Orchestrator{
		db:         p.DB,
		log:        p.Log.Named("billing.orchestrator"),
		genID:      p.GenID,
		clock:      p.Clock,
		cfg:        p.Cfg,
		gateway:    p.Gateway,
		repo:       p.Repo,
		catalogSvc: p.CatalogSvc,
		reconciler: p.Reconciler,
	}
}

// CustomerKeyForUser derives the stable per-user identifier sent to the
// gateway, so repeat visits look like the same payer.
func CustomerKeyForUser(userID string) string {
	return uuid.NewSHA1(customerKeyNamespace, []byte(userID)).String()
}

// BeginCheckout validates the plan, computes the due amount from the
// catalog (never from caller input) and describes the authorization
// redirect for the browser shell.
func (o *Orchestrator) BeginCheckout(ctx context.Context, req domain.BeginCheckoutRequest) (*domain.RedirectDirective, error) {
	plan, err := o.catalogSvc.Get(req.PlanID)
	if err != nil {
		return nil, domain.ErrInvalidPlan
	}

	amount, err := o.catalogSvc.Price(req.PlanID, req.BillingCycle)
	if err != nil {
		return nil, domain.ErrInvalidPlan
	}

	base := o.cfg.App.BaseURL
	directive := &domain.RedirectDirective{
		ClientKey:     o.cfg.Gateway.ClientKey,
		CustomerKey:   CustomerKeyForUser(req.UserID),
		PlanID:        plan.ID,
		BillingCycle:  req.BillingCycle,
		Amount:        amount,
		OrderName:     orderName(plan, req.BillingCycle),
		CustomerEmail: req.Email,
		CustomerName:  req.DisplayName,
		SuccessURL: fmt.Sprintf("%s/billing/callback?plan_id=%s&billing_cycle=%s",
			base, plan.ID, req.BillingCycle),
		FailURL: base + "/billing/fail",
	}

	o.log.Info("checkout started",
		zap.String("user_id", req.UserID),
		zap.String("plan_id", plan.ID),
		zap.String("billing_cycle", string(req.BillingCycle)),
		zap.Int64("amount", amount))

	return directive, nil
}

// ResumeAfterAuthorization runs the credential, charge and record steps
// after the gateway redirect returns. Each step fails with its own
// error kind; the charge step is never retried here because a repeat
// call with a used order id risks a double charge.
func (o *Orchestrator) ResumeAfterAuthorization(ctx context.Context, req domain.ResumeRequest) (*domain.SubscriptionRecord, error) {
	plan, err := o.catalogSvc.Get(req.PlanID)
	if err != nil {
		return nil, domain.ErrInvalidPlan
	}
	amount, err := o.catalogSvc.Price(req.PlanID, req.BillingCycle)
	if err != nil {
		return nil, domain.ErrInvalidPlan
	}

	credential, err := o.gateway.IssueCredential(ctx, req.CustomerKey, req.AuthKey)
	if err != nil {
		o.log.Warn("credential issuance failed",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		if errors.Is(err, domain.ErrCredentialIssuanceFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialIssuanceFailed, err)
	}

	orderID := uuid.NewString()
	result, err := o.gateway.ChargeByCredential(ctx, domain.ChargeRequest{
		CredentialID: credential.CredentialID,
		CustomerKey:  req.CustomerKey,
		Amount:       amount,
		OrderID:      orderID,
		OrderName:    orderName(plan, req.BillingCycle),
	})
	if err != nil {
		outcome := "gateway_error"
		if errors.Is(err, domain.ErrChargeDeclined) {
			outcome = "declined"
		}
		chargeAttempts.WithLabelValues(outcome).Inc()
		o.log.Warn("charge failed",
			zap.String("user_id", req.UserID),
			zap.String("order_id", orderID),
			zap.Error(err))
		if errors.Is(err, domain.ErrChargeDeclined) || errors.Is(err, domain.ErrChargeGatewayError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrChargeGatewayError, err)
	}
	chargeAttempts.WithLabelValues("succeeded").Inc()

	return o.recordCharge(ctx, recordChargeInput{
		OrderID:      orderID,
		UserID:       req.UserID,
		PlanID:       plan.ID,
		BillingCycle: req.BillingCycle,
		Amount:       amount,
		Result:       result,
		Metadata: datatypes.JSONMap{
			"customer_key":  req.CustomerKey,
			"credential_id": credential.CredentialID,
		},
	})
}

// ConfirmOneTimePayment finalizes a payment the browser SDK already
// authorized through the gateway's one-shot flow. The caller-supplied
// amount is checked against the catalog before the gateway sees it; the
// gateway then rejects any mismatch with its own record of the charge.
func (o *Orchestrator) ConfirmOneTimePayment(ctx context.Context, req domain.ConfirmPaymentRequest) (*domain.SubscriptionRecord, error) {
	if _, err := o.catalogSvc.Get(req.PlanID); err != nil {
		return nil, domain.ErrInvalidPlan
	}
	amount, err := o.catalogSvc.Price(req.PlanID, req.BillingCycle)
	if err != nil {
		return nil, domain.ErrInvalidPlan
	}
	if req.Amount != amount {
		o.log.Warn("confirm amount does not match catalog price",
			zap.String("order_id", req.OrderID),
			zap.Int64("claimed", req.Amount),
			zap.Int64("catalog", amount))
		return nil, domain.ErrPaymentConfirmationFailed
	}

	result, err := o.gateway.ConfirmPayment(ctx, req.OrderID, amount, req.PaymentReference)
	if err != nil {
		chargeAttempts.WithLabelValues("confirmation_failed").Inc()
		o.log.Warn("payment confirmation failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		if errors.Is(err, domain.ErrPaymentConfirmationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentConfirmationFailed, err)
	}
	chargeAttempts.WithLabelValues("succeeded").Inc()

	return o.recordCharge(ctx, recordChargeInput{
		OrderID:      req.OrderID,
		UserID:       req.UserID,
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
		Amount:       amount,
		Result:       result,
		Metadata: datatypes.JSONMap{
			"payment_reference": req.PaymentReference,
		},
	})
}

func (o *Orchestrator) GetByOrderID(ctx context.Context, orderID string) (*domain.SubscriptionRecord, error) {
	record, err := o.repo.FindByOrderID(ctx, o.db, orderID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrRecordNotFound
	}
	return record, nil
}

func (o *Orchestrator) ListForUser(ctx context.Context, userID string) ([]domain.SubscriptionRecord, error) {
	return o.repo.ListByUserID(ctx, o.db, userID)
}

type recordChargeInput struct {
	OrderID      string
	UserID       string
	PlanID       string
	BillingCycle catalogdomain.BillingCycle
	Amount       int64
	Result       *domain.ChargeResult
	Metadata     datatypes.JSONMap
}

// recordCharge durably writes the ledger row for a charge that already
// succeeded at the gateway. The insert is idempotent on order_id, so it
// retries a bounded number of times; if every attempt fails the charge
// is queued for out-of-band reconciliation and the distinct
// recording-failed error is surfaced so the caller never renders it as
// "nothing happened".
func (o *Orchestrator) recordCharge(ctx context.Context, in recordChargeInput) (*domain.SubscriptionRecord, error) {
	now := o.clock.Now(ctx)
	record := &domain.SubscriptionRecord{
		ID:                     o.genID.Generate(),
		OrderID:                in.OrderID,
		UserID:                 in.UserID,
		PlanID:                 in.PlanID,
		BillingCycle:           in.BillingCycle,
		Amount:                 in.Amount,
		GatewayChargeReference: in.Result.GatewayChargeReference,
		Status:                 domain.SubscriptionStatusCompleted,
		CardSummary:            in.Result.CardSummary,
		Metadata:               in.Metadata,
		ApprovedAt:             in.Result.ApprovedAt,
		PeriodStart:            now,
		PeriodEnd:              domain.AddBillingPeriod(now, in.BillingCycle),
		CreatedAt:              now,
	}

	var lastErr error
	for attempt := 1; attempt <= recordInsertAttempts; attempt++ {
		err := o.repo.InsertIfAbsent(ctx, o.db, record)
		if err == nil {
			o.log.Info("subscription recorded",
				zap.String("order_id", record.OrderID),
				zap.String("plan_id", record.PlanID),
				zap.Time("period_end", record.PeriodEnd))
			return record, nil
		}
		if errors.Is(err, domain.ErrDuplicateOrder) {
			// A previous attempt landed; the stored row is authoritative.
			stored, findErr := o.repo.FindByOrderID(ctx, o.db, record.OrderID)
			if findErr == nil && stored != nil {
				return stored, nil
			}
			return record, nil
		}

		lastErr = err
		o.log.Warn("ledger write failed",
			zap.String("order_id", record.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}

	entry := reconcile.Entry{
		OrderID:                record.OrderID,
		UserID:                 record.UserID,
		PlanID:                 record.PlanID,
		BillingCycle:           record.BillingCycle,
		Amount:                 record.Amount,
		GatewayChargeReference: record.GatewayChargeReference,
		ApprovedAt:             record.ApprovedAt,
		FailedAt:               now,
		Reason:                 lastErr.Error(),
	}
	if err := o.reconciler.Enqueue(ctx, entry); err != nil {
		o.log.Error("failed to queue reconciliation entry",
			zap.String("order_id", record.OrderID),
			zap.Error(err))
	}

	o.log.Error("charge succeeded but recording failed",
		zap.String("order_id", record.OrderID),
		zap.String("gateway_charge_reference", record.GatewayChargeReference),
		zap.Error(lastErr))
	return nil, domain.ErrRecordingFailedAfterCharge
}

func orderName(plan catalogdomain.Plan, cycle catalogdomain.BillingCycle) string {
	return fmt.Sprintf("Keasy %s (%s)", plan.DisplayName, cycle)
}
