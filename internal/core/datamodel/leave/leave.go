package leave

import "time"

type LeaveRequest struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index:idx_leave_requests_employee_dates"`
	LeaveType       string     `gorm:"column:leave_type;not null"`
	StartDate       time.Time  `gorm:"column:start_date;type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate         time.Time  `gorm:"column:end_date;type:date;not null"`
	DaysCount       float64    `gorm:"column:days_count;not null"`
	Reason          string     `gorm:"column:reason"`
	Status          string     `gorm:"column:status;not null;default:pending;index"`
	ApproverID      *int64     `gorm:"column:approver_id"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
