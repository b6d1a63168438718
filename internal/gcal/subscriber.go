package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrplatform/leave-management/internal/core/events"
	"github.com/hrplatform/leave-management/internal/employee"
)

// Directory resolves employee ids so the subscriber can find the account
// whose calendar receives the event.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

// CalendarClient is the slice of Service the subscriber needs.
type CalendarClient interface {
	CreateLeaveEvent(ctx context.Context, userID int64, summary string, start, end time.Time) (string, error)
	DeleteLeaveEvent(ctx context.Context, userID int64, eventID string) error
}

// EventLinkStore keeps the leave request -> calendar event mapping.
type EventLinkStore interface {
	SaveLink(ctx context.Context, leaveRequestID, userID int64, eventID string) error
	GetLink(ctx context.Context, leaveRequestID int64) (userID int64, eventID string, err error)
	DeleteLink(ctx context.Context, leaveRequestID int64) error
}

var ErrLinkNotFound = errors.New("calendar event link not found")

// Subscriber mirrors approved leave onto the employee's calendar and
// removes the event again when an approved leave is cancelled. Employees
// without a connected calendar are skipped silently.
type Subscriber struct {
	service   CalendarClient
	directory Directory
	links     EventLinkStore
	logger    *slog.Logger
}

func NewSubscriber(service CalendarClient, directory Directory, links EventLinkStore, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		service:   service,
		directory: directory,
		links:     links,
		logger:    logger.With("component", "gcal_subscriber"),
	}
}

func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveApproved, s.handleLeaveApproved)
	bus.Subscribe(events.EventTypeLeaveCancelled, s.handleLeaveCancelled)
}

func (s *Subscriber) handleLeaveApproved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	emp, err := s.directory.GetByID(ctx, e.EmployeeID)
	if err != nil {
		return fmt.Errorf("resolve employee %d: %w", e.EmployeeID, err)
	}

	summary := eventSummary(emp.Name, e.LeaveType)
	eventID, err := s.service.CreateLeaveEvent(ctx, emp.UserID, summary, e.StartDate, e.EndDate)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			s.logger.Debug("calendar not connected, skipping sync",
				"employee_id", e.EmployeeID, "request_id", e.RequestID)
			return nil
		}
		return fmt.Errorf("create calendar event for request %d: %w", e.RequestID, err)
	}

	if err := s.links.SaveLink(ctx, e.RequestID, emp.UserID, eventID); err != nil {
		return fmt.Errorf("save calendar event link for request %d: %w", e.RequestID, err)
	}
	return nil
}

func (s *Subscriber) handleLeaveCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	if !e.WasApproved {
		return nil
	}

	userID, eventID, err := s.links.GetLink(ctx, e.RequestID)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return nil
		}
		return fmt.Errorf("look up calendar event link for request %d: %w", e.RequestID, err)
	}

	if err := s.service.DeleteLeaveEvent(ctx, userID, eventID); err != nil && !errors.Is(err, ErrNotConnected) {
		return fmt.Errorf("delete calendar event for request %d: %w", e.RequestID, err)
	}
	return s.links.DeleteLink(ctx, e.RequestID)
}

func eventSummary(name, leaveType string) string {
	label := strings.ReplaceAll(leaveType, "_", " ")
	return fmt.Sprintf("%s - %s leave", name, label)
}
