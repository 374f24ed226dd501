package domain

import "errors"

var (
	ErrInvalidPlan = errors.New("invalid_plan")
)

// Plan is a static catalog entry. Prices are integer amounts in the
// smallest currency unit; the orchestrator always charges the catalog
// price, never a caller-supplied amount.
type Plan struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	MonthlyPrice int64    `json:"monthly_price"`
	AnnualPrice  int64    `json:"annual_price"`
	Features     []string `json:"features"`
}

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case BillingCycleMonthly:
		return BillingCycleMonthly, nil
	case BillingCycleAnnual:
		return BillingCycleAnnual, nil
	default:
		return "", ErrInvalidPlan
	}
}

type Service interface {
	Get(planID string) (Plan, error)
	Price(planID string, cycle BillingCycle) (int64, error)
	List() []Plan
}
