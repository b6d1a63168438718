package user

import (
	"errors"

	"github.com/hrplatform/leave-management/internal/balance"
	"github.com/hrplatform/leave-management/internal/employee"
)

var ErrNotFound = errors.New("user not found")

// Profile is the /me payload: the account, the employee record when one
// exists, and the current year's leave balances.
type Profile struct {
	ID                 int64              `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Role               string             `json:"role"`
	MustChangePassword bool               `json:"must_change_password"`
	Permissions        []string           `json:"permissions"`
	Employee           *employee.Employee `json:"employee,omitempty"`
	Balances           []*balance.Balance `json:"balances,omitempty"`
}
