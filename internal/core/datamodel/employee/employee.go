package employee

import "time"

type Employee struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;uniqueIndex;not null"`
	EmployeeCode string     `gorm:"column:employee_code;uniqueIndex;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name"`
	Phone        string     `gorm:"column:phone"`
	Designation  string     `gorm:"column:designation"`
	DepartmentID *int64     `gorm:"column:department_id;index"`
	ManagerID    *int64     `gorm:"column:manager_id;index"`
	JoiningDate  time.Time  `gorm:"column:joining_date;type:date;not null"`
	ProbationEnd *time.Time `gorm:"column:probation_end;type:date"`

	// Per-type annual entitlement overrides. Nil means the pro-rata table
	// decides at balance initialization.
	EarnedEntitlement *float64 `gorm:"column:earned_entitlement"`
	SickEntitlement   *float64 `gorm:"column:sick_entitlement"`
	CasualEntitlement *float64 `gorm:"column:casual_entitlement"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
