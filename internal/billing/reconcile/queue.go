package reconcile

import (
	"context"
	"time"

	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
)

// Entry describes a charge whose ledger write failed: money moved but
// bookkeeping did not. A reconciliation worker (outside this service)
// drains the queue and writes the missing record.
type Entry struct {
	OrderID                string                     `json:"order_id"`
	UserID                 string                     `json:"user_id"`
	PlanID                 string                     `json:"plan_id"`
	BillingCycle           catalogdomain.BillingCycle `json:"billing_cycle"`
	Amount                 int64                      `json:"amount"`
	GatewayChargeReference string                     `json:"gateway_charge_reference"`
	ApprovedAt             time.Time                  `json:"approved_at"`
	FailedAt               time.Time                  `json:"failed_at"`
	Reason                 string                     `json:"reason"`
}

type Queue interface {
	Enqueue(ctx context.Context, entry Entry) error
}
