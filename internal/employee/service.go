package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrplatform/leave-management/internal/balance"
	userdm "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/core/events"
)

type Repository interface {
	// CreateWithUser provisions the account row and the employee row in one
	// transaction. The user starts invited and inactive.
	CreateWithUser(ctx context.Context, email, name, role string, emp *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context, q ListEmployeesQuery) ([]*Employee, int64, error)
	Update(ctx context.Context, emp *Employee) error
	// DeleteCascade removes the employee, their balances, their leave
	// requests and the account row in one transaction.
	DeleteCascade(ctx context.Context, employeeID, userID int64) error
	CountManagedBy(ctx context.Context, employeeID int64) (int64, error)
	SetUserRole(ctx context.Context, userID int64, role string) error
}

type BalanceInitializer interface {
	Initialize(employeeID int64, joiningDate time.Time, overrides balance.Overrides) error
}

type InviteIssuer interface {
	IssueInviteToken(ctx context.Context, userID int64) (string, time.Time, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	balances BalanceInitializer
	invites  InviteIssuer
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, balances BalanceInitializer, invites InviteIssuer, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		invites:  invites,
		eventBus: eventBus,
		logger:   logger.With("component", "employee_service"),
	}
}

// Create provisions the account, the employee profile and the first-year
// leave balances, then emails the activation invite. Referencing a manager
// auto-promotes that manager's account.
func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.ManagerID != nil {
		if _, err := s.repo.GetByID(ctx, *dto.ManagerID); err != nil {
			return nil, ErrManagerNotFound
		}
	}

	emp := &Employee{
		EmployeeCode: dto.EmployeeCode,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Phone:        dto.Phone,
		Designation:  dto.Designation,
		DepartmentID: dto.DepartmentID,
		ManagerID:    dto.ManagerID,
		JoiningDate:  dto.ParsedJoiningDate(),
		ProbationEnd: dto.ParsedProbationEnd(),

		EarnedEntitlement: dto.EarnedEntitlement,
		SickEntitlement:   dto.SickEntitlement,
		CasualEntitlement: dto.CasualEntitlement,
	}

	if err := s.repo.CreateWithUser(ctx, dto.Email, dto.FullName(), dto.Role, emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "email", dto.Email)
		return nil, err
	}

	overrides := balance.Overrides{
		Earned: dto.EarnedEntitlement,
		Sick:   dto.SickEntitlement,
		Casual: dto.CasualEntitlement,
	}
	if err := s.balances.Initialize(emp.ID, emp.JoiningDate, overrides); err != nil {
		s.logger.Error("failed to initialize balances for new employee",
			"error", err, "employee_id", emp.ID)
		return nil, err
	}

	s.sendInvite(ctx, emp)

	if emp.ManagerID != nil {
		s.promoteManager(ctx, *emp.ManagerID)
	}

	s.logger.Info("employee created",
		"employee_id", emp.ID,
		"user_id", emp.UserID,
		"employee_code", emp.EmployeeCode)

	return emp, nil
}

// ResendInvite issues a fresh activation token for an employee whose invite
// lapsed or never arrived.
func (s *Service) ResendInvite(ctx context.Context, employeeID int64) error {
	emp, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.InviteStatus == userdm.InviteStatusActive {
		return nil
	}
	s.sendInvite(ctx, emp)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Employee, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, q ListEmployeesQuery) ([]*Employee, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	return s.repo.List(ctx, q)
}

// Update applies profile changes. Changing the manager promotes the new one
// and demotes the old one if nobody reports to them anymore.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.ManagerID != nil {
		if *dto.ManagerID == id {
			return nil, ErrSelfManager
		}
		if _, err := s.repo.GetByID(ctx, *dto.ManagerID); err != nil {
			return nil, ErrManagerNotFound
		}
	}

	oldManagerID := emp.ManagerID

	emp.FirstName = dto.FirstName
	emp.LastName = dto.LastName
	emp.Phone = dto.Phone
	emp.Designation = dto.Designation
	emp.DepartmentID = dto.DepartmentID
	emp.ManagerID = dto.ManagerID
	if dto.ParsedProbationEnd() != nil {
		emp.ProbationEnd = dto.ParsedProbationEnd()
	}
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	if emp.ManagerID != nil {
		s.promoteManager(ctx, *emp.ManagerID)
	}
	if oldManagerID != nil && (emp.ManagerID == nil || *oldManagerID != *emp.ManagerID) {
		s.maybeDemoteManager(ctx, *oldManagerID)
	}

	return emp, nil
}

// Delete removes the employee and everything hanging off them: balances,
// leave requests and the account row.
func (s *Service) Delete(ctx context.Context, id int64) error {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCascade(ctx, emp.ID, emp.UserID); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	if emp.ManagerID != nil {
		s.maybeDemoteManager(ctx, *emp.ManagerID)
	}

	s.logger.Info("employee deleted", "employee_id", id, "user_id", emp.UserID)
	return nil
}

// Team lists the direct reports of a manager.
func (s *Service) Team(ctx context.Context, managerEmployeeID int64) ([]*Employee, error) {
	reports, _, err := s.repo.List(ctx, ListEmployeesQuery{
		ManagerID: &managerEmployeeID,
		Limit:     100,
	})
	return reports, err
}

func (s *Service) sendInvite(ctx context.Context, emp *Employee) {
	token, _, err := s.invites.IssueInviteToken(ctx, emp.UserID)
	if err != nil {
		s.logger.Error("failed to issue invite token",
			"error", err, "employee_id", emp.ID)
		return
	}

	event := events.NewEmployeeInvitedEvent(emp.ID, emp.UserID, emp.Email, emp.Name, token)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish invite event",
			"error", err, "employee_id", emp.ID)
	}
}

// promoteManager bumps an employee-role account to manager. Failures are
// logged, not returned: the employee write already succeeded.
func (s *Service) promoteManager(ctx context.Context, managerEmployeeID int64) {
	mgr, err := s.repo.GetByID(ctx, managerEmployeeID)
	if err != nil {
		s.logger.Warn("cannot promote manager: lookup failed",
			"error", err, "manager_employee_id", managerEmployeeID)
		return
	}
	if mgr.Role != userdm.RoleEmployee {
		return
	}

	if err := s.repo.SetUserRole(ctx, mgr.UserID, userdm.RoleManager); err != nil {
		s.logger.Warn("failed to promote manager",
			"error", err, "manager_employee_id", managerEmployeeID)
		return
	}
	s.logger.Info("promoted to manager", "employee_id", managerEmployeeID)
}

// maybeDemoteManager drops a manager back to employee once nobody reports to
// them. Admin accounts are never touched.
func (s *Service) maybeDemoteManager(ctx context.Context, managerEmployeeID int64) {
	count, err := s.repo.CountManagedBy(ctx, managerEmployeeID)
	if err != nil {
		s.logger.Warn("cannot check reports for demotion",
			"error", err, "manager_employee_id", managerEmployeeID)
		return
	}
	if count > 0 {
		return
	}

	mgr, err := s.repo.GetByID(ctx, managerEmployeeID)
	if err != nil {
		return
	}
	if mgr.Role != userdm.RoleManager {
		return
	}

	if err := s.repo.SetUserRole(ctx, mgr.UserID, userdm.RoleEmployee); err != nil {
		s.logger.Warn("failed to demote manager",
			"error", err, "manager_employee_id", managerEmployeeID)
		return
	}
	s.logger.Info("demoted to employee", "employee_id", managerEmployeeID)
}
