package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrplatform/leave-management/internal/core/events"
)

// BalanceService is the slice of the balance package the state machine needs.
type BalanceService interface {
	CheckAvailable(employeeID int64, year int, leaveType string, days float64) error
	Apply(employeeID int64, year int, leaveType string, delta float64) error
	WorkingDaysBetween(start, end time.Time) (int, error)
}

// EventPublisher dispatches side-effect events (email, calendar sync).
// Publication is best-effort: the state transition has already committed.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Repository interface defines the data access methods for leave requests
type Repository interface {
	Create(lr *LeaveRequest) error
	GetByID(id int64) (*LeaveRequest, error)
	GetByEmployeeID(employeeID int64, limit, offset int) ([]*LeaveRequest, error)
	GetAll(limit, offset int, status string) ([]*LeaveRequest, error)
	ListForReport(filter ReportFilter) ([]*ReportRow, error)
	Update(lr *LeaveRequest) error
	DeleteCancelledBefore(cutoff time.Time) (int64, error)
}

// Service handles the leave request lifecycle
type Service struct {
	repo     Repository
	balances BalanceService
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, balances BalanceService, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		bus:      bus,
		logger:   logger,
	}
}

// Create validates the range, computes the working-day count, checks balance
// availability and persists the request as pending. The manager notification
// goes through the event bus after the row is committed.
func (s *Service) Create(employeeID int64, dto *CreateLeaveDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("leave request validation failed", "error", err, "employee_id", employeeID)
		return nil, err
	}

	days, err := s.balances.WorkingDaysBetween(dto.Start(), dto.End())
	if err != nil {
		s.logger.Error("working day computation failed", "error", err, "employee_id", employeeID)
		return nil, err
	}
	if days == 0 {
		return nil, ErrNoWorkingDays
	}

	year := dto.Start().Year()
	if err := s.balances.CheckAvailable(employeeID, year, dto.LeaveType, float64(days)); err != nil {
		s.logger.Warn("leave request blocked by balance check",
			"error", err,
			"employee_id", employeeID,
			"leave_type", dto.LeaveType,
			"days", days)
		return nil, err
	}

	now := time.Now()
	lr := &LeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  dto.LeaveType,
		StartDate:  dto.Start(),
		EndDate:    dto.End(),
		DaysCount:  float64(days),
		Reason:     dto.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(lr); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("leave request created",
		"request_id", lr.ID,
		"employee_id", employeeID,
		"leave_type", lr.LeaveType,
		"days", days)

	s.publish(events.NewLeaveRequestedEvent(lr.ID, employeeID, lr.LeaveType, lr.StartDate, lr.EndDate, days))

	return lr, nil
}

// GetByID retrieves a leave request with access control: employees see only
// their own requests, managers see all.
func (s *Service) GetByID(id, employeeID int64, isManager bool) (*LeaveRequest, error) {
	lr, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get leave request", "error", err, "request_id", id)
		return nil, ErrLeaveNotFound
	}

	if !isManager && lr.EmployeeID != employeeID {
		s.logger.Warn("unauthorized access to leave request",
			"request_id", id,
			"employee_id", employeeID,
			"owner_id", lr.EmployeeID)
		return nil, ErrUnauthorizedAccess
	}

	return lr, nil
}

func (s *Service) ListForEmployee(employeeID int64, limit, offset int) ([]*LeaveRequest, error) {
	requests, err := s.repo.GetByEmployeeID(employeeID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return requests, nil
}

// ListEmployeeLeaves exposes another employee's requests to approvers.
// Manager permission required.
func (s *Service) ListEmployeeLeaves(employeeID int64, limit, offset int, userPermissions []string) ([]*LeaveRequest, error) {
	if !s.hasManagerPermissions(userPermissions) {
		s.logger.Warn("list employee leave requests denied: insufficient permissions",
			"employee_id", employeeID,
			"permissions", userPermissions)
		return nil, ErrUnauthorizedAccess
	}
	return s.ListForEmployee(employeeID, limit, offset)
}

func (s *Service) ListAll(limit, offset int, status string, userPermissions []string) ([]*LeaveRequest, error) {
	if !s.hasManagerPermissions(userPermissions) {
		s.logger.Warn("list all leave requests denied: insufficient permissions", "permissions", userPermissions)
		return nil, ErrUnauthorizedAccess
	}

	requests, err := s.repo.GetAll(limit, offset, status)
	if err != nil {
		s.logger.Error("failed to list all leave requests", "error", err)
		return nil, err
	}
	return requests, nil
}

// Report returns leave rows joined with the requester's identity for the
// CSV report. Manager permission required.
func (s *Service) Report(filter ReportFilter, userPermissions []string) ([]*ReportRow, error) {
	if !s.hasManagerPermissions(userPermissions) {
		s.logger.Warn("leave report denied: insufficient permissions", "permissions", userPermissions)
		return nil, ErrUnauthorizedAccess
	}

	rows, err := s.repo.ListForReport(filter)
	if err != nil {
		s.logger.Error("failed to build leave report", "error", err)
		return nil, err
	}
	return rows, nil
}

// Approve moves a pending request to approved. The balance is debited first
// under a row lock; an insufficient balance blocks the transition.
func (s *Service) Approve(requestID, approverID int64, userPermissions []string) error {
	if !s.hasManagerPermissions(userPermissions) {
		s.logger.Warn("approve leave denied: insufficient permissions",
			"request_id", requestID,
			"approver_id", approverID,
			"permissions", userPermissions)
		return ErrUnauthorizedAccess
	}

	lr, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("leave request not found for approval", "error", err, "request_id", requestID)
		return ErrLeaveNotFound
	}

	if !lr.CanBeApproved() {
		s.logger.Warn("cannot approve leave request in current status",
			"request_id", requestID,
			"current_status", lr.Status)
		return ErrInvalidLeaveStatus
	}

	year := lr.StartDate.Year()
	if err := s.balances.Apply(lr.EmployeeID, year, lr.LeaveType, lr.DaysCount); err != nil {
		s.logger.Error("balance debit failed on approval",
			"error", err,
			"request_id", requestID,
			"employee_id", lr.EmployeeID)
		return err
	}

	lr.Approve(approverID)
	if err := s.repo.Update(lr); err != nil {
		// Put the days back; the request stays pending.
		if creditErr := s.balances.Apply(lr.EmployeeID, year, lr.LeaveType, -lr.DaysCount); creditErr != nil {
			s.logger.Error("failed to revert balance debit after update failure",
				"error", creditErr,
				"request_id", requestID)
		}
		s.logger.Error("failed to persist approval", "error", err, "request_id", requestID)
		return err
	}

	s.logger.Info("leave request approved",
		"request_id", requestID,
		"approver_id", approverID,
		"employee_id", lr.EmployeeID,
		"days", lr.DaysCount)

	s.publish(events.NewLeaveApprovedEvent(lr.ID, lr.EmployeeID, lr.LeaveType, lr.StartDate, lr.EndDate, int(lr.DaysCount), approverID))

	return nil
}

// Reject moves a pending request to rejected. No balance mutation.
func (s *Service) Reject(requestID, approverID int64, reason string, userPermissions []string) error {
	if !s.hasManagerPermissions(userPermissions) {
		s.logger.Warn("reject leave denied: insufficient permissions",
			"request_id", requestID,
			"approver_id", approverID,
			"permissions", userPermissions)
		return ErrUnauthorizedAccess
	}

	lr, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("leave request not found for rejection", "error", err, "request_id", requestID)
		return ErrLeaveNotFound
	}

	if !lr.CanBeRejected() {
		s.logger.Warn("cannot reject leave request in current status",
			"request_id", requestID,
			"current_status", lr.Status)
		return ErrInvalidLeaveStatus
	}

	lr.Reject(approverID, reason)
	if err := s.repo.Update(lr); err != nil {
		s.logger.Error("failed to persist rejection", "error", err, "request_id", requestID)
		return err
	}

	s.logger.Info("leave request rejected",
		"request_id", requestID,
		"approver_id", approverID,
		"reason", reason)

	s.publish(events.NewLeaveRejectedEvent(lr.ID, lr.EmployeeID, lr.LeaveType, lr.StartDate, lr.EndDate, int(lr.DaysCount), approverID, reason))

	return nil
}

// Cancel is owner-only and allowed from pending or approved. Cancelling an
// approved request credits the debited days back.
func (s *Service) Cancel(requestID, employeeID int64) error {
	lr, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("leave request not found for cancellation", "error", err, "request_id", requestID)
		return ErrLeaveNotFound
	}

	if lr.EmployeeID != employeeID {
		s.logger.Warn("cancel denied: not the request owner",
			"request_id", requestID,
			"employee_id", employeeID,
			"owner_id", lr.EmployeeID)
		return ErrNotRequestOwner
	}

	if !lr.CanBeCancelled() {
		s.logger.Warn("cannot cancel leave request in current status",
			"request_id", requestID,
			"current_status", lr.Status)
		return ErrInvalidLeaveStatus
	}

	wasApproved := lr.Status == StatusApproved
	year := lr.StartDate.Year()

	// Credit before persisting: cancelled is terminal, so persisting first
	// would strand the debited days if the credit then failed.
	if wasApproved {
		if err := s.balances.Apply(lr.EmployeeID, year, lr.LeaveType, -lr.DaysCount); err != nil {
			s.logger.Error("failed to restore balance for cancellation",
				"error", err,
				"request_id", requestID,
				"employee_id", lr.EmployeeID)
			return err
		}
	}

	lr.Cancel()
	if err := s.repo.Update(lr); err != nil {
		// Re-debit; the request stays approved.
		if wasApproved {
			if debitErr := s.balances.Apply(lr.EmployeeID, year, lr.LeaveType, lr.DaysCount); debitErr != nil {
				s.logger.Error("failed to revert balance credit after update failure",
					"error", debitErr,
					"request_id", requestID)
			}
		}
		s.logger.Error("failed to persist cancellation", "error", err, "request_id", requestID)
		return err
	}

	s.logger.Info("leave request cancelled",
		"request_id", requestID,
		"employee_id", employeeID,
		"was_approved", wasApproved)

	s.publish(events.NewLeaveCancelledEvent(lr.ID, lr.EmployeeID, lr.LeaveType, lr.StartDate, lr.EndDate, int(lr.DaysCount), wasApproved))

	return nil
}

// PurgeCancelled deletes cancelled requests older than the cutoff. Run
// monthly by the scheduler.
func (s *Service) PurgeCancelled(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.repo.DeleteCancelledBefore(cutoff)
	if err != nil {
		s.logger.Error("purge of cancelled leave requests failed", "error", err)
		return 0, err
	}
	s.logger.Info("purged cancelled leave requests", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

func (s *Service) hasManagerPermissions(userPermissions []string) bool {
	managerPerms := []string{"approve_leaves", "reject_leaves", "admin", "manager"}
	for _, requiredPerm := range managerPerms {
		for _, userPerm := range userPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish leave event", "error", err, "event_type", event.EventType())
	}
}
