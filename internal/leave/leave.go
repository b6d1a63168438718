package leave

import (
	"time"

	leaveDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/leave"
)

type LeaveRequest struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employee_id"`
	LeaveType       string     `json:"leave_type"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	DaysCount       float64    `json:"days_count"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status"`
	ApproverID      *int64     `json:"approver_id,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// ReportFilter narrows the leave report. Zero values mean no filter.
type ReportFilter struct {
	Year         int
	DepartmentID int64
	Status       string
}

// ReportRow is a leave request joined with the requester's identity for
// CSV reporting.
type ReportRow struct {
	LeaveRequest
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department,omitempty"`
}

// State machine: pending -> approved | rejected | cancelled,
// approved -> cancelled. Rejected and cancelled are terminal.

func (lr *LeaveRequest) CanBeApproved() bool {
	return lr.Status == StatusPending
}

func (lr *LeaveRequest) CanBeRejected() bool {
	return lr.Status == StatusPending
}

func (lr *LeaveRequest) CanBeCancelled() bool {
	return lr.Status == StatusPending || lr.Status == StatusApproved
}

func (lr *LeaveRequest) Approve(approverID int64) {
	now := time.Now()
	lr.Status = StatusApproved
	lr.ApproverID = &approverID
	lr.ProcessedAt = &now
	lr.UpdatedAt = now
}

func (lr *LeaveRequest) Reject(approverID int64, reason string) {
	now := time.Now()
	lr.Status = StatusRejected
	lr.ApproverID = &approverID
	lr.RejectionReason = &reason
	lr.ProcessedAt = &now
	lr.UpdatedAt = now
}

func (lr *LeaveRequest) Cancel() {
	now := time.Now()
	lr.Status = StatusCancelled
	lr.CancelledAt = &now
	lr.UpdatedAt = now
}

func ToDataModel(lr *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:              lr.ID,
		EmployeeID:      lr.EmployeeID,
		LeaveType:       lr.LeaveType,
		StartDate:       lr.StartDate,
		EndDate:         lr.EndDate,
		DaysCount:       lr.DaysCount,
		Reason:          lr.Reason,
		Status:          lr.Status,
		ApproverID:      lr.ApproverID,
		RejectionReason: lr.RejectionReason,
		ProcessedAt:     lr.ProcessedAt,
		CancelledAt:     lr.CancelledAt,
		CreatedAt:       lr.CreatedAt,
		UpdatedAt:       lr.UpdatedAt,
	}
}

func FromDataModel(lr *leaveDatamodel.LeaveRequest) *LeaveRequest {
	return &LeaveRequest{
		ID:              lr.ID,
		EmployeeID:      lr.EmployeeID,
		LeaveType:       lr.LeaveType,
		StartDate:       lr.StartDate,
		EndDate:         lr.EndDate,
		DaysCount:       lr.DaysCount,
		Reason:          lr.Reason,
		Status:          lr.Status,
		ApproverID:      lr.ApproverID,
		RejectionReason: lr.RejectionReason,
		ProcessedAt:     lr.ProcessedAt,
		CancelledAt:     lr.CancelledAt,
		CreatedAt:       lr.CreatedAt,
		UpdatedAt:       lr.UpdatedAt,
	}
}

func FromDataModelSlice(requests []*leaveDatamodel.LeaveRequest) []*LeaveRequest {
	result := make([]*LeaveRequest, len(requests))
	for i, lr := range requests {
		result[i] = FromDataModel(lr)
	}
	return result
}
