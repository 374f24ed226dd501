package domain

import (
	"testing"
	"time"

	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestAddBillingPeriodMonthly(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"plain month", date(2025, time.March, 15), date(2025, time.April, 15)},
		{"jan 31 clamps to feb 28", date(2025, time.January, 31), date(2025, time.February, 28)},
		{"jan 31 clamps to feb 29 in leap year", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"march 31 clamps to april 30", date(2025, time.March, 31), date(2025, time.April, 30)},
		{"december rolls into next year", date(2025, time.December, 31), date(2026, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AddBillingPeriod(tt.start, catalogdomain.BillingCycleMonthly))
		})
	}
}

func TestAddBillingPeriodAnnual(t *testing.T) {
	require.Equal(t,
		date(2026, time.June, 1),
		AddBillingPeriod(date(2025, time.June, 1), catalogdomain.BillingCycleAnnual))

	// Leap-day anniversary clamps to Feb 28 in a non-leap target year.
	require.Equal(t,
		date(2025, time.February, 28),
		AddBillingPeriod(date(2024, time.February, 29), catalogdomain.BillingCycleAnnual))
}

func TestAddBillingPeriodAlwaysAdvances(t *testing.T) {
	start := date(2025, time.January, 31)
	for _, cycle := range []catalogdomain.BillingCycle{catalogdomain.BillingCycleMonthly, catalogdomain.BillingCycleAnnual} {
		next := AddBillingPeriod(start, cycle)
		require.True(t, next.After(start))
	}
}

func TestAddBillingPeriodNoDrift(t *testing.T) {
	// Chaining from a clamped date keeps advancing exactly one period.
	cur := date(2025, time.January, 31)
	cur = AddBillingPeriod(cur, catalogdomain.BillingCycleMonthly)
	require.Equal(t, date(2025, time.February, 28), cur)
	cur = AddBillingPeriod(cur, catalogdomain.BillingCycleMonthly)
	require.Equal(t, date(2025, time.March, 28), cur)
	cur = AddBillingPeriod(cur, catalogdomain.BillingCycleMonthly)
	require.Equal(t, date(2025, time.April, 28), cur)
}

func TestAddBillingPeriodPreservesTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.May, 12, 23, 59, 59, 123, time.UTC)
	got := AddBillingPeriod(start, catalogdomain.BillingCycleMonthly)
	require.Equal(t, time.Date(2025, time.June, 12, 23, 59, 59, 123, time.UTC), got)
}
