package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/balance"
	"github.com/hrplatform/leave-management/internal/employee"
)

type EmployeeSource interface {
	GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error)
}

type BalanceSource interface {
	ListForEmployee(employeeID int64, year int) ([]*balance.Balance, error)
}

type Service struct {
	employees EmployeeSource
	balances  BalanceSource
	logger    *slog.Logger
}

func NewService(employees EmployeeSource, balances BalanceSource, logger *slog.Logger) *Service {
	return &Service{
		employees: employees,
		balances:  balances,
		logger:    logger.With("component", "user_service"),
	}
}

// Profile assembles the current-user view. Accounts without an employee
// profile (bootstrap admins) get account fields only.
func (s *Service) Profile(ctx context.Context, principal *auth.User) (*Profile, error) {
	p := &Profile{
		ID:                 principal.ID,
		Email:              principal.Email,
		Name:               principal.Name,
		Role:               principal.Role,
		MustChangePassword: principal.MustChangePassword,
		Permissions:        principal.Permissions,
	}

	emp, err := s.employees.GetByUserID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return p, nil
		}
		return nil, err
	}
	p.Employee = emp

	balances, err := s.balances.ListForEmployee(emp.ID, time.Now().Year())
	if err != nil {
		s.logger.Warn("failed to load balances for profile",
			"error", err, "employee_id", emp.ID)
		return p, nil
	}
	p.Balances = balances

	return p, nil
}
