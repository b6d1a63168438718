package balance

import "time"

// LeaveBalance holds one row per (employee, year, leave type).
// AvailableDays is always recomputed as TotalAllocated + CarryForward - UsedDays.
type LeaveBalance struct {
	ID             int64     `gorm:"primaryKey"`
	EmployeeID     int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_balances_employee_year_type"`
	Year           int       `gorm:"column:year;not null;uniqueIndex:idx_balances_employee_year_type"`
	LeaveType      string    `gorm:"column:leave_type;not null;uniqueIndex:idx_balances_employee_year_type"`
	TotalAllocated float64   `gorm:"column:total_allocated;not null"`
	UsedDays       float64   `gorm:"column:used_days;not null;default:0"`
	AvailableDays  float64   `gorm:"column:available_days;not null"`
	CarryForward   float64   `gorm:"column:carry_forward;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}
