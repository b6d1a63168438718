package employee

import (
	"errors"
	"time"

	employeeDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/employee"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateCode     = errors.New("employee code already in use")
	ErrManagerNotFound   = errors.New("manager not found")
	ErrSelfManager       = errors.New("employee cannot be their own manager")
	ErrUnauthorizedAccess = errors.New("unauthorized access to employee")
)

// Employee is the domain view: the employee row joined with the account
// fields callers actually want in responses.
type Employee struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	InviteStatus string     `json:"invite_status"`
	EmployeeCode string     `json:"employee_code"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Designation  string     `json:"designation,omitempty"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	ManagerID    *int64     `json:"manager_id,omitempty"`
	JoiningDate  time.Time  `json:"joining_date"`
	ProbationEnd *time.Time `json:"probation_end,omitempty"`

	EarnedEntitlement *float64 `json:"earned_entitlement,omitempty"`
	SickEntitlement   *float64 `json:"sick_entitlement,omitempty"`
	CasualEntitlement *float64 `json:"casual_entitlement,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) ToDataModel() *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:                e.ID,
		UserID:            e.UserID,
		EmployeeCode:      e.EmployeeCode,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Phone:             e.Phone,
		Designation:       e.Designation,
		DepartmentID:      e.DepartmentID,
		ManagerID:         e.ManagerID,
		JoiningDate:       e.JoiningDate,
		ProbationEnd:      e.ProbationEnd,
		EarnedEntitlement: e.EarnedEntitlement,
		SickEntitlement:   e.SickEntitlement,
		CasualEntitlement: e.CasualEntitlement,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func FromDataModel(row *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:                row.ID,
		UserID:            row.UserID,
		EmployeeCode:      row.EmployeeCode,
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		Phone:             row.Phone,
		Designation:       row.Designation,
		DepartmentID:      row.DepartmentID,
		ManagerID:         row.ManagerID,
		JoiningDate:       row.JoiningDate,
		ProbationEnd:      row.ProbationEnd,
		EarnedEntitlement: row.EarnedEntitlement,
		SickEntitlement:   row.SickEntitlement,
		CasualEntitlement: row.CasualEntitlement,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
