package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveRequested = "leave.requested"
	EventTypeLeaveApproved  = "leave.approved"
	EventTypeLeaveRejected  = "leave.rejected"
	EventTypeLeaveCancelled = "leave.cancelled"

	EventTypeEmployeeInvited       = "employee.invited"
	EventTypePasswordResetRequested = "user.password_reset_requested"
)

type LeaveEvent struct {
	BaseEvent
	RequestID    int64     `json:"request_id"`
	EmployeeID   int64     `json:"employee_id"`
	LeaveType    string    `json:"leave_type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DaysCount    int       `json:"days_count"`
	ApproverID   *int64    `json:"approver_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	WasApproved  bool      `json:"was_approved,omitempty"`
}

func newLeaveEvent(eventType string, requestID, employeeID int64, leaveType string, start, end time.Time, days int) *LeaveEvent {
	return &LeaveEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"employee_id": employeeID,
				"leave_type":  leaveType,
				"start_date":  start,
				"end_date":    end,
				"days_count":  days,
			},
		},
		RequestID:  requestID,
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		DaysCount:  days,
	}
}

func NewLeaveRequestedEvent(requestID, employeeID int64, leaveType string, start, end time.Time, days int) *LeaveEvent {
	return newLeaveEvent(EventTypeLeaveRequested, requestID, employeeID, leaveType, start, end, days)
}

func NewLeaveApprovedEvent(requestID, employeeID int64, leaveType string, start, end time.Time, days int, approverID int64) *LeaveEvent {
	e := newLeaveEvent(EventTypeLeaveApproved, requestID, employeeID, leaveType, start, end, days)
	e.ApproverID = &approverID
	return e
}

func NewLeaveRejectedEvent(requestID, employeeID int64, leaveType string, start, end time.Time, days int, approverID int64, reason string) *LeaveEvent {
	e := newLeaveEvent(EventTypeLeaveRejected, requestID, employeeID, leaveType, start, end, days)
	e.ApproverID = &approverID
	e.Reason = reason
	return e
}

func NewLeaveCancelledEvent(requestID, employeeID int64, leaveType string, start, end time.Time, days int, wasApproved bool) *LeaveEvent {
	e := newLeaveEvent(EventTypeLeaveCancelled, requestID, employeeID, leaveType, start, end, days)
	e.WasApproved = wasApproved
	return e
}

type EmployeeInvitedEvent struct {
	BaseEvent
	EmployeeID  int64  `json:"employee_id"`
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	InviteToken string `json:"-"`
}

func NewEmployeeInvitedEvent(employeeID, userID int64, email, name, inviteToken string) *EmployeeInvitedEvent {
	return &EmployeeInvitedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeInvited,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"user_id":     userID,
				"email":       email,
				"name":        name,
			},
		},
		EmployeeID:  employeeID,
		UserID:      userID,
		Email:       email,
		Name:        name,
		InviteToken: inviteToken,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func NewPasswordResetRequestedEvent(userID int64, email, token string) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePasswordResetRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID: userID,
		Email:  email,
		Token:  token,
	}
}
