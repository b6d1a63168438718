package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	balanceDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/balance"
	employeeDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// employeeRow carries the employee columns plus the joined account fields.
type employeeRow struct {
	employeeDatamodel.Employee
	Email        string `gorm:"column:email"`
	Name         string `gorm:"column:name"`
	Role         string `gorm:"column:role"`
	InviteStatus string `gorm:"column:invite_status"`
}

const joinedSelect = "employees.*, users.email AS email, users.name AS name, users.role AS role, users.invite_status AS invite_status"

func (r *EmployeeRepository) CreateWithUser(ctx context.Context, email, name, role string, emp *employee.Employee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return employee.ErrDuplicateEmail
		}

		if err := tx.Model(&employeeDatamodel.Employee{}).
			Where("employee_code = ?", emp.EmployeeCode).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return employee.ErrDuplicateCode
		}

		now := time.Now()
		user := userDatamodel.User{
			Email:        email,
			Name:         name,
			Role:         role,
			IsActive:     false,
			InviteStatus: userDatamodel.InviteStatusInvited,
			InvitedAt:    &now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		emp.UserID = user.ID
		row := emp.ToDataModel()
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		emp.ID = row.ID
		emp.Email = email
		emp.Name = name
		emp.Role = role
		emp.InviteStatus = userDatamodel.InviteStatusInvited
		return nil
	})
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var row employeeRow
	err := r.db.WithContext(ctx).
		Table("employees").
		Select(joinedSelect).
		Joins("JOIN users ON users.id = employees.user_id").
		Where("employees.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return fromRow(&row), nil
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error) {
	var row employeeRow
	err := r.db.WithContext(ctx).
		Table("employees").
		Select(joinedSelect).
		Joins("JOIN users ON users.id = employees.user_id").
		Where("employees.user_id = ?", userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return fromRow(&row), nil
}

func (r *EmployeeRepository) List(ctx context.Context, q employee.ListEmployeesQuery) ([]*employee.Employee, int64, error) {
	base := r.db.WithContext(ctx).
		Table("employees").
		Joins("JOIN users ON users.id = employees.user_id")

	if q.DepartmentID != nil {
		base = base.Where("employees.department_id = ?", *q.DepartmentID)
	}
	if q.ManagerID != nil {
		base = base.Where("employees.manager_id = ?", *q.ManagerID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*employeeRow
	err := base.
		Select(joinedSelect).
		Order("employees.employee_code ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	employees := make([]*employee.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, fromRow(row))
	}
	return employees, total, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, emp *employee.Employee) error {
	return r.db.WithContext(ctx).Save(emp.ToDataModel()).Error
}

// DeleteCascade removes the employee and everything that references them.
// Reports keep their rows; their manager_id is cleared.
func (r *EmployeeRepository) DeleteCascade(ctx context.Context, employeeID, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employeeID).
			Delete(&leaveDatamodel.LeaveRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", employeeID).
			Delete(&balanceDatamodel.LeaveBalance{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&employeeDatamodel.Employee{}).
			Where("manager_id = ?", employeeID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", employeeID).
			Delete(&employeeDatamodel.Employee{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&userDatamodel.User{}).Error
	})
}

func (r *EmployeeRepository) CountManagedBy(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("manager_id = ?", employeeID).
		Count(&count).Error
	return count, err
}

func (r *EmployeeRepository) SetUserRole(ctx context.Context, userID int64, role string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		}).Error
}

func fromRow(row *employeeRow) *employee.Employee {
	emp := employee.FromDataModel(&row.Employee)
	emp.Email = row.Email
	emp.Name = row.Name
	emp.Role = row.Role
	emp.InviteStatus = row.InviteStatus
	return emp
}
