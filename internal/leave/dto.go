package leave

import (
	"errors"
	"time"

	"github.com/hrplatform/leave-management/internal/balance"
)

// CreateLeaveDTO represents the request payload for creating a leave request
type CreateLeaveDTO struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason,omitempty"`

	start time.Time
	end   time.Time
}

// Validate checks field presence, date parsing, ordering, and qualifies the
// start date against today. Parsed dates are cached for the service.
func (dto *CreateLeaveDTO) Validate() error {
	if !balance.IsValidLeaveType(dto.LeaveType) {
		return errors.New("leave_type must be one of earned, sick, casual, compensation")
	}
	if dto.StartDate == "" || dto.EndDate == "" {
		return errors.New("start_date and end_date are required")
	}

	var err error
	dto.start, err = time.Parse("2006-01-02", dto.StartDate)
	if err != nil {
		return errors.New("start_date must be in YYYY-MM-DD format")
	}
	dto.end, err = time.Parse("2006-01-02", dto.EndDate)
	if err != nil {
		return errors.New("end_date must be in YYYY-MM-DD format")
	}

	if dto.end.Before(dto.start) {
		return errors.New("end_date cannot be before start_date")
	}

	// Parsed dates are UTC midnights, so compare against the local calendar
	// day rendered the same way. Truncate would give UTC midnight and reject
	// same-day requests from timezones west of UTC.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dto.start.Before(today) {
		return errors.New("start_date cannot be in the past")
	}

	if len(dto.Reason) > 500 {
		return errors.New("reason must be less than 500 characters")
	}

	return nil
}

func (dto *CreateLeaveDTO) Start() time.Time { return dto.start }
func (dto *CreateLeaveDTO) End() time.Time   { return dto.end }

// RejectLeaveDTO represents the request for rejecting a leave request
type RejectLeaveDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectLeaveDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting a leave request")
	}
	return nil
}

// Domain errors
var (
	ErrLeaveNotFound      = errors.New("leave request not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to leave request")
	ErrInvalidLeaveStatus = errors.New("invalid leave status for this operation")
	ErrNoWorkingDays      = errors.New("requested range contains no working days")
	ErrNotRequestOwner    = errors.New("only the owning employee can cancel a leave request")
)
