package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrplatform/leave-management/internal/core/events"
	"github.com/hrplatform/leave-management/internal/employee"
)

// Directory resolves employee ids to contact details.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

// Subscriber listens for domain events and sends the matching emails.
// Handlers run on the event bus goroutines; failures are logged by the bus.
type Subscriber struct {
	mailer    Mailer
	directory Directory
	baseURL   string
	logger    *slog.Logger
}

func NewSubscriber(mailer Mailer, directory Directory, baseURL string, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		mailer:    mailer,
		directory: directory,
		baseURL:   baseURL,
		logger:    logger.With("component", "notification_subscriber"),
	}
}

// Register wires the subscriber onto the bus.
func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveRequested, s.handleLeaveRequested)
	bus.Subscribe(events.EventTypeLeaveApproved, s.handleLeaveDecision)
	bus.Subscribe(events.EventTypeLeaveRejected, s.handleLeaveDecision)
	bus.Subscribe(events.EventTypeLeaveCancelled, s.handleLeaveCancelled)
	bus.Subscribe(events.EventTypeEmployeeInvited, s.handleEmployeeInvited)
	bus.Subscribe(events.EventTypePasswordResetRequested, s.handlePasswordReset)
}

// handleLeaveRequested notifies the requesting employee's manager.
func (s *Subscriber) handleLeaveRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	emp, err := s.directory.GetByID(ctx, e.EmployeeID)
	if err != nil {
		return fmt.Errorf("resolve employee %d: %w", e.EmployeeID, err)
	}
	if emp.ManagerID == nil {
		s.logger.Info("leave request has no manager to notify", "request_id", e.RequestID)
		return nil
	}

	manager, err := s.directory.GetByID(ctx, *emp.ManagerID)
	if err != nil {
		return fmt.Errorf("resolve manager %d: %w", *emp.ManagerID, err)
	}

	subject := fmt.Sprintf("Leave request from %s", emp.Name)
	body := fmt.Sprintf(
		"<p>%s has requested %s leave from <b>%s</b> to <b>%s</b> (%d days).</p>"+
			"<p><a href=%q>Review the request</a></p>",
		emp.Name, e.LeaveType,
		e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"), e.DaysCount,
		fmt.Sprintf("%s/leaves/%d", s.baseURL, e.RequestID),
	)
	return s.mailer.Send(manager.Email, subject, body)
}

// handleLeaveDecision notifies the employee about an approval or rejection.
func (s *Subscriber) handleLeaveDecision(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	emp, err := s.directory.GetByID(ctx, e.EmployeeID)
	if err != nil {
		return fmt.Errorf("resolve employee %d: %w", e.EmployeeID, err)
	}

	var subject, body string
	if event.EventType() == events.EventTypeLeaveApproved {
		subject = "Your leave request was approved"
		body = fmt.Sprintf(
			"<p>Your %s leave from <b>%s</b> to <b>%s</b> (%d days) has been approved.</p>",
			e.LeaveType, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"), e.DaysCount)
	} else {
		subject = "Your leave request was rejected"
		body = fmt.Sprintf(
			"<p>Your %s leave from <b>%s</b> to <b>%s</b> was rejected.</p><p>Reason: %s</p>",
			e.LeaveType, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"), e.Reason)
	}
	return s.mailer.Send(emp.Email, subject, body)
}

// handleLeaveCancelled tells the manager an approved absence no longer
// happens. Cancellations of pending requests are quiet.
func (s *Subscriber) handleLeaveCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if !e.WasApproved {
		return nil
	}

	emp, err := s.directory.GetByID(ctx, e.EmployeeID)
	if err != nil {
		return fmt.Errorf("resolve employee %d: %w", e.EmployeeID, err)
	}
	if emp.ManagerID == nil {
		return nil
	}
	manager, err := s.directory.GetByID(ctx, *emp.ManagerID)
	if err != nil {
		return fmt.Errorf("resolve manager %d: %w", *emp.ManagerID, err)
	}

	subject := fmt.Sprintf("%s cancelled an approved leave", emp.Name)
	body := fmt.Sprintf(
		"<p>%s cancelled their approved %s leave from <b>%s</b> to <b>%s</b>. The days were credited back.</p>",
		emp.Name, e.LeaveType, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	return s.mailer.Send(manager.Email, subject, body)
}

// handleEmployeeInvited sends the activation link to a freshly provisioned
// account.
func (s *Subscriber) handleEmployeeInvited(_ context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeInvitedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	subject := "You're invited to the leave management portal"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>An account has been created for you. "+
			"<a href=%q>Set your password</a> to activate it. The link expires in 7 days.</p>",
		e.Name,
		fmt.Sprintf("%s/activate?token=%s", s.baseURL, e.InviteToken),
	)
	return s.mailer.Send(e.Email, subject, body)
}

func (s *Subscriber) handlePasswordReset(_ context.Context, event events.Event) error {
	e, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	subject := "Password reset"
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account. "+
			"<a href=%q>Choose a new password</a>. If this wasn't you, ignore this email.</p>",
		fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, e.Token),
	)
	return s.mailer.Send(e.Email, subject, body)
}
