package balance

import (
	"time"

	balanceDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/balance"
)

const (
	LeaveTypeEarned       = "earned"
	LeaveTypeSick         = "sick"
	LeaveTypeCasual       = "casual"
	LeaveTypeCompensation = "compensation"
)

// TrackedLeaveTypes are the types that own a balance row. Compensation leave
// is always available and never tracked.
var TrackedLeaveTypes = []string{LeaveTypeEarned, LeaveTypeSick, LeaveTypeCasual}

func IsValidLeaveType(t string) bool {
	switch t {
	case LeaveTypeEarned, LeaveTypeSick, LeaveTypeCasual, LeaveTypeCompensation:
		return true
	}
	return false
}

func IsTracked(t string) bool {
	return t != LeaveTypeCompensation && IsValidLeaveType(t)
}

type Balance struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	Year           int       `json:"year"`
	LeaveType      string    `json:"leave_type"`
	TotalAllocated float64   `json:"total_allocated"`
	UsedDays       float64   `json:"used_days"`
	AvailableDays  float64   `json:"available_days"`
	CarryForward   float64   `json:"carry_forward"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Recompute restores the balance invariant:
// available = allocated + carry forward - used.
func (b *Balance) Recompute() {
	b.AvailableDays = b.TotalAllocated + b.CarryForward - b.UsedDays
}

// Overrides carries manual per-type entitlements supplied at employee
// creation or bulk import. Nil fields fall back to the pro-rata table.
type Overrides struct {
	Earned *float64
	Sick   *float64
	Casual *float64
}

func (o Overrides) forType(leaveType string) *float64 {
	switch leaveType {
	case LeaveTypeEarned:
		return o.Earned
	case LeaveTypeSick:
		return o.Sick
	case LeaveTypeCasual:
		return o.Casual
	}
	return nil
}

func ToDataModel(b *Balance) *balanceDatamodel.LeaveBalance {
	return &balanceDatamodel.LeaveBalance{
		ID:             b.ID,
		EmployeeID:     b.EmployeeID,
		Year:           b.Year,
		LeaveType:      b.LeaveType,
		TotalAllocated: b.TotalAllocated,
		UsedDays:       b.UsedDays,
		AvailableDays:  b.AvailableDays,
		CarryForward:   b.CarryForward,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func FromDataModel(b *balanceDatamodel.LeaveBalance) *Balance {
	return &Balance{
		ID:             b.ID,
		EmployeeID:     b.EmployeeID,
		Year:           b.Year,
		LeaveType:      b.LeaveType,
		TotalAllocated: b.TotalAllocated,
		UsedDays:       b.UsedDays,
		AvailableDays:  b.AvailableDays,
		CarryForward:   b.CarryForward,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func FromDataModelSlice(balances []*balanceDatamodel.LeaveBalance) []*Balance {
	result := make([]*Balance, len(balances))
	for i, b := range balances {
		result[i] = FromDataModel(b)
	}
	return result
}
