package domain

import (
	"time"

	catalogdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/catalog/domain"
)

// AddBillingPeriod advances start by one billing period. A day-of-month
// with no equivalent in the target month clamps to that month's last
// day (Jan 31 + monthly = Feb 28/29), per the published billing policy.
// time.AddDate is avoided here because it normalizes overflow days into
// the following month.
func AddBillingPeriod(start time.Time, cycle catalogdomain.BillingCycle) time.Time {
	year, month, day := start.Date()

	switch cycle {
	case catalogdomain.BillingCycleAnnual:
		year++
	default:
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	if last := lastDayOfMonth(year, month, start.Location()); day > last {
		day = last
	}

	return time.Date(year, month, day,
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(),
		start.Location())
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
