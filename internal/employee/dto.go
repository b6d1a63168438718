package employee

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type CreateEmployeeDTO struct {
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	EmployeeCode string   `json:"employee_code"`
	Phone        string   `json:"phone"`
	Designation  string   `json:"designation"`
	DepartmentID *int64   `json:"department_id"`
	ManagerID    *int64   `json:"manager_id"`
	JoiningDate  string   `json:"joining_date"`
	ProbationEnd string   `json:"probation_end"`
	Role         string   `json:"role"`

	EarnedEntitlement *float64 `json:"earned_entitlement"`
	SickEntitlement   *float64 `json:"sick_entitlement"`
	CasualEntitlement *float64 `json:"casual_entitlement"`

	joiningDate  time.Time
	probationEnd *time.Time
}

func (d *CreateEmployeeDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.EmployeeCode = strings.TrimSpace(d.EmployeeCode)

	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.EmployeeCode == "" {
		return fmt.Errorf("employee_code is required")
	}
	if d.JoiningDate == "" {
		return fmt.Errorf("joining_date is required")
	}

	joining, err := time.Parse(dateLayout, d.JoiningDate)
	if err != nil {
		return fmt.Errorf("joining_date must be in YYYY-MM-DD format")
	}
	d.joiningDate = joining

	if d.ProbationEnd != "" {
		probation, err := time.Parse(dateLayout, d.ProbationEnd)
		if err != nil {
			return fmt.Errorf("probation_end must be in YYYY-MM-DD format")
		}
		if probation.Before(joining) {
			return fmt.Errorf("probation_end cannot be before joining_date")
		}
		d.probationEnd = &probation
	}

	if d.Role == "" {
		d.Role = "employee"
	}
	switch d.Role {
	case "employee", "manager", "admin":
	default:
		return fmt.Errorf("role must be one of employee, manager, admin")
	}

	for _, override := range []*float64{d.EarnedEntitlement, d.SickEntitlement, d.CasualEntitlement} {
		if override != nil && *override < 0 {
			return fmt.Errorf("entitlement overrides cannot be negative")
		}
	}
	return nil
}

func (d *CreateEmployeeDTO) ParsedJoiningDate() time.Time   { return d.joiningDate }
func (d *CreateEmployeeDTO) ParsedProbationEnd() *time.Time { return d.probationEnd }

func (d *CreateEmployeeDTO) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

type UpdateEmployeeDTO struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `json:"phone"`
	Designation  string  `json:"designation"`
	DepartmentID *int64  `json:"department_id"`
	ManagerID    *int64  `json:"manager_id"`
	ProbationEnd string  `json:"probation_end"`

	probationEnd *time.Time
}

func (d *UpdateEmployeeDTO) Validate() error {
	d.FirstName = strings.TrimSpace(d.FirstName)
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}

	if d.ProbationEnd != "" {
		probation, err := time.Parse(dateLayout, d.ProbationEnd)
		if err != nil {
			return fmt.Errorf("probation_end must be in YYYY-MM-DD format")
		}
		d.probationEnd = &probation
	}
	return nil
}

func (d *UpdateEmployeeDTO) ParsedProbationEnd() *time.Time { return d.probationEnd }

type ListEmployeesQuery struct {
	DepartmentID *int64
	ManagerID    *int64
	Limit        int
	Offset       int
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Total     int64       `json:"total"`
}
