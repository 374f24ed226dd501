package service

import (
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
)

// Plans are fixed product configuration, not rows the service manages.
var plans = []domain.Plan{
	{
		ID:           "free",
		DisplayName:  "Free",
		MonthlyPrice: 0,
		AnnualPrice:  0,
		Features: []string{
			"basic_listings",
			"community_access",
		},
	},
	{
		ID:           "creator",
		DisplayName:  "Creator",
		MonthlyPrice: 9999,
		AnnualPrice:  99990,
		Features: []string{
			"basic_listings",
			"community_access",
			"featured_listings",
			"guide_publishing",
			"event_hosting",
		},
	},
	{
		ID:           "pro",
		DisplayName:  "Pro",
		MonthlyPrice: 19999,
		AnnualPrice:  199990,
		Features: []string{
			"basic_listings",
			"community_access",
			"featured_listings",
			"guide_publishing",
			"event_hosting",
			"job_board_posting",
			"priority_support",
		},
	},
}

type Service struct {
	byID map[string]domain.Plan
}

func New() domain.Service {
	byID := make(map[string]domain.Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}
	return &Service{byID: byID}
}

func (s *Service) Get(planID string) (domain.Plan, error) {
	plan, ok := s.byID[planID]
	if !ok {
		return domain.Plan{}, domain.ErrInvalidPlan
	}
	return plan, nil
}

// Price returns the catalog price for a plan and cycle. Plans without a
// purchasable price for the cycle report ErrInvalidPlan.
func (s *Service) Price(planID string, cycle domain.BillingCycle) (int64, error) {
	plan, ok := s.byID[planID]
	if !ok {
		return 0, domain.ErrInvalidPlan
	}

	var price int64
	switch cycle {
	case domain.BillingCycleMonthly:
		price = plan.MonthlyPrice
	case domain.BillingCycleAnnual:
		price = plan.AnnualPrice
	default:
		return 0, domain.ErrInvalidPlan
	}

	if price <= 0 {
		return 0, domain.ErrInvalidPlan
	}
	return price, nil
}

func (s *Service) List() []domain.Plan {
	out := make([]domain.Plan, len(plans))
	copy(out, plans)
	return out
}
