package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/reconcile"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/repository"
	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
	catalogservice "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/service"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now(ctx context.Context) time.Time { return c.t }

type fakeGateway struct {
	issueErr   error
	chargeErr  error
	confirmErr error

	issuedAuthKeys []string
	chargedOrders  []string

	credentialID string
	chargeRef    string
	cardSummary  string
	approvedAt   time.Time
}

func (g *fakeGateway) IssueCredential(ctx context.Context, customerKey, authKey string) (*domain.BillingCredential, error) {
	g.issuedAuthKeys = append(g.issuedAuthKeys, authKey)
	if g.issueErr != nil {
		return nil, g.issueErr
	}
	return &domain.BillingCredential{
		CredentialID: g.credentialID,
		CustomerKey:  customerKey,
		IssuedAt:     g.approvedAt,
	}, nil
}

func (g *fakeGateway) ChargeByCredential(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	g.chargedOrders = append(g.chargedOrders, req.OrderID)
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return &domain.ChargeResult{
		GatewayChargeReference: g.chargeRef,
		CardSummary:            g.cardSummary,
		ApprovedAt:             g.approvedAt,
	}, nil
}

func (g *fakeGateway) ConfirmPayment(ctx context.Context, orderID string, amount int64, paymentReference string) (*domain.ChargeResult, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return &domain.ChargeResult{
		GatewayChargeReference: g.chargeRef,
		CardSummary:            g.cardSummary,
		ApprovedAt:             g.approvedAt,
	}, nil
}

type failingRepo struct{}

func (failingRepo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *domain.SubscriptionRecord) error {
	return errors.New("disk on fire")
}

func (failingRepo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.SubscriptionRecord, error) {
	return nil, nil
}

func (failingRepo) ListByUserID(ctx context.Context, db *gorm.DB, userID string) ([]domain.SubscriptionRecord, error) {
	return nil, nil
}

type harness struct {
	svc     domain.Service
	db      *gorm.DB
	gateway *fakeGateway
	queue   *reconcile.MemoryQueue
	now     time.Time
}

func newHarness(t *testing.T, mutate func(*OrchestratorParams)) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SubscriptionRecord{}))

	node, _ := snowflake.NewNode(1)
	now := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
	gateway := &fakeGateway{
		credentialID: "billing-key-1",
		chargeRef:    "pay_abc123",
		cardSummary:  "visa **** 4242",
		approvedAt:   now,
	}
	queue := reconcile.NewMemoryQueue()

	params := OrchestratorParams{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fixedClock{t: now},
		Cfg: config.Config{
			App:     config.AppConfig{BaseURL: "https://keasy.example"},
			Gateway: config.GatewayConfig{ClientKey: "test_ck_1234"},
		},
		Gateway:    gateway,
		Repo:       repository.Provide(db),
		CatalogSvc: catalogservice.New(),
		Reconciler: queue,
	}
	if mutate != nil {
		mutate(&params)
	}

	return &harness{
		svc:     NewOrchestrator(params),
		db:      db,
		gateway: gateway,
		queue:   queue,
		now:     now,
	}
}

func TestBeginCheckoutComputesAmountFromCatalog(t *testing.T) {
	h := newHarness(t, nil)
	catalog := catalogservice.New()
	ctx := context.Background()

	for _, plan := range catalog.List() {
		for _, cycle := range []catalogdomain.BillingCycle{catalogdomain.BillingCycleMonthly, catalogdomain.BillingCycleAnnual} {
			want, priceErr := catalog.Price(plan.ID, cycle)

			directive, err := h.svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
				PlanID:       plan.ID,
				BillingCycle: cycle,
				UserID:       "user-1",
				Email:        "user@keasy.example",
			})

			if priceErr != nil {
				require.ErrorIs(t, err, domain.ErrInvalidPlan)
				continue
			}
			require.NoError(t, err)
			require.Equal(t, want, directive.Amount)
		}
	}
}

func TestBeginCheckoutStableCustomerKey(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	req := domain.BeginCheckoutRequest{
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	}
	first, err := h.svc.BeginCheckout(ctx, req)
	require.NoError(t, err)
	second, err := h.svc.BeginCheckout(ctx, req)
	require.NoError(t, err)

	require.Equal(t, first.CustomerKey, second.CustomerKey)
	require.NotEmpty(t, first.CustomerKey)

	other, err := h.svc.BeginCheckout(ctx, domain.BeginCheckoutRequest{
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-2",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.CustomerKey, other.CustomerKey)
}

func TestBeginCheckoutUnknownPlan(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.BeginCheckout(context.Background(), domain.BeginCheckoutRequest{
		PlanID:       "platinum",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestResumeAfterAuthorizationHappyPath(t *testing.T) {
	h := newHarness(t, nil)

	record, err := h.svc.ResumeAfterAuthorization(context.Background(), domain.ResumeRequest{
		CustomerKey:  CustomerKeyForUser("user-1"),
		AuthKey:      "abc",
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	})
	require.NoError(t, err)

	require.Equal(t, int64(9999), record.Amount)
	require.Equal(t, domain.SubscriptionStatusCompleted, record.Status)
	require.Equal(t, "pay_abc123", record.GatewayChargeReference)
	require.Equal(t, h.now, record.PeriodStart)
	// Jan 31 + one month clamps to the last day of February.
	require.Equal(t, time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC), record.PeriodEnd)

	stored, err := h.svc.GetByOrderID(context.Background(), record.OrderID)
	require.NoError(t, err)
	require.Equal(t, record.OrderID, stored.OrderID)

	// One charge, one order id.
	require.Len(t, h.gateway.chargedOrders, 1)
	require.Equal(t, record.OrderID, h.gateway.chargedOrders[0])
}

func TestResumeAfterAuthorizationCredentialFailure(t *testing.T) {
	h := newHarness(t, func(p *OrchestratorParams) {
		p.Gateway.(*fakeGateway).issueErr = domain.ErrCredentialIssuanceFailed
	})

	_, err := h.svc.ResumeAfterAuthorization(context.Background(), domain.ResumeRequest{
		CustomerKey:  "ck",
		AuthKey:      "abc",
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	})
	require.ErrorIs(t, err, domain.ErrCredentialIssuanceFailed)
	require.Empty(t, h.gateway.chargedOrders)
}

func TestResumeAfterAuthorizationChargeDeclined(t *testing.T) {
	h := newHarness(t, func(p *OrchestratorParams) {
		p.Gateway.(*fakeGateway).chargeErr = domain.ErrChargeDeclined
	})

	_, err := h.svc.ResumeAfterAuthorization(context.Background(), domain.ResumeRequest{
		CustomerKey:  "ck",
		AuthKey:      "abc",
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	})
	require.ErrorIs(t, err, domain.ErrChargeDeclined)

	// Declined charge leaves no ledger row behind.
	var count int64
	require.NoError(t, h.db.Model(&domain.SubscriptionRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestResumeAfterAuthorizationRecordingFailure(t *testing.T) {
	h := newHarness(t, func(p *OrchestratorParams) {
		p.Repo = failingRepo{}
	})

	_, err := h.svc.ResumeAfterAuthorization(context.Background(), domain.ResumeRequest{
		CustomerKey:  "ck",
		AuthKey:      "abc",
		PlanID:       "creator",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		UserID:       "user-1",
	})
	require.ErrorIs(t, err, domain.ErrRecordingFailedAfterCharge)

	// The charge happened; the failure must reach reconciliation.
	require.Len(t, h.gateway.chargedOrders, 1)
	entries := h.queue.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, h.gateway.chargedOrders[0], entries[0].OrderID)
	require.Equal(t, "pay_abc123", entries[0].GatewayChargeReference)
	require.Equal(t, int64(9999), entries[0].Amount)
}

func TestConfirmOneTimePaymentHappyPath(t *testing.T) {
	h := newHarness(t, nil)

	record, err := h.svc.ConfirmOneTimePayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderID:          "order-42",
		Amount:           9999,
		PaymentReference: "pay_abc123",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, "order-42", record.OrderID)
	require.Equal(t, domain.SubscriptionStatusCompleted, record.Status)
	require.True(t, record.PeriodEnd.After(record.PeriodStart))
}

func TestConfirmOneTimePaymentAmountMismatch(t *testing.T) {
	h := newHarness(t, nil)

	// Caller claims a different amount than the catalog price.
	_, err := h.svc.ConfirmOneTimePayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderID:          "order-42",
		Amount:           100,
		PaymentReference: "pay_abc123",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.ErrorIs(t, err, domain.ErrPaymentConfirmationFailed)

	var count int64
	require.NoError(t, h.db.Model(&domain.SubscriptionRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestConfirmOneTimePaymentGatewayRejection(t *testing.T) {
	h := newHarness(t, func(p *OrchestratorParams) {
		p.Gateway.(*fakeGateway).confirmErr = domain.ErrPaymentConfirmationFailed
	})

	_, err := h.svc.ConfirmOneTimePayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderID:          "order-42",
		Amount:           9999,
		PaymentReference: "pay_tampered",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.ErrorIs(t, err, domain.ErrPaymentConfirmationFailed)

	var count int64
	require.NoError(t, h.db.Model(&domain.SubscriptionRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordChargeDuplicateOrderReturnsStoredRow(t *testing.T) {
	h := newHarness(t, nil)

	first, err := h.svc.ConfirmOneTimePayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderID:          "order-dup",
		Amount:           9999,
		PaymentReference: "pay_abc123",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.NoError(t, err)

	// A replayed confirmation with the same order id must not create a
	// second row.
	second, err := h.svc.ConfirmOneTimePayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderID:          "order-dup",
		Amount:           9999,
		PaymentReference: "pay_abc123",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, h.db.Model(&domain.SubscriptionRecord{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestListForUser(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.ConfirmOneTimePayment(ctx, domain.ConfirmPaymentRequest{
		OrderID:          "order-1",
		Amount:           9999,
		PaymentReference: "pay_abc123",
		PlanID:           "creator",
		BillingCycle:     catalogdomain.BillingCycleMonthly,
		UserID:           "user-1",
	})
	require.NoError(t, err)

	records, err := h.svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = h.svc.ListForUser(ctx, "user-2")
	require.NoError(t, err)
	require.Empty(t, records)
}
