package balance

import "time"

// Pro-rata entitlement tables, indexed by joining month (1-12). The values
// are fixed HR-provided day counts, not a computed accrual: an employee
// joining anywhere in March gets the month-3 figure.
var (
	proRataEarned = [13]float64{0, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	proRataSick   = [13]float64{0, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	proRataCasual = [13]float64{0, 6, 6, 5, 5, 4, 4, 3, 3, 2, 2, 1, 1}
)

// CarryForwardCap limits how many unused earned-leave days roll into the
// following year.
const CarryForwardCap = 5.0

func ProRataEarned(joiningDate time.Time) float64 {
	return proRataEarned[int(joiningDate.Month())]
}

func ProRataSick(joiningDate time.Time) float64 {
	return proRataSick[int(joiningDate.Month())]
}

func ProRataCasual(joiningDate time.Time) float64 {
	return proRataCasual[int(joiningDate.Month())]
}

func ProRataForType(leaveType string, joiningDate time.Time) float64 {
	switch leaveType {
	case LeaveTypeEarned:
		return ProRataEarned(joiningDate)
	case LeaveTypeSick:
		return ProRataSick(joiningDate)
	case LeaveTypeCasual:
		return ProRataCasual(joiningDate)
	}
	return 0
}

// DateKey is the map key format used for holiday lookups.
const DateKey = "2006-01-02"

// WorkingDays counts the days in [start, end] that are neither a weekend nor
// present in the holiday set. Keys in holidays use the DateKey format.
// Returns 0 when end precedes start.
func WorkingDays(start, end time.Time, holidays map[string]struct{}) int {
	start = truncateToDay(start)
	end = truncateToDay(end)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidays[d.Format(DateKey)]; ok {
			continue
		}
		count++
	}
	return count
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
