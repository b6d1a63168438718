package holiday

import (
	"errors"
	"time"

	holidayDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/holiday"
)

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrDuplicateDate   = errors.New("holiday already exists for this date")
)

type Holiday struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Recurring bool      `json:"recurring"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateInYear projects the holiday onto a calendar year. Non-recurring
// holidays only exist in their own year.
func (h *Holiday) DateInYear(year int) (time.Time, bool) {
	if h.Recurring {
		return time.Date(year, h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if h.Date.Year() != year {
		return time.Time{}, false
	}
	return h.Date, true
}

func NewHoliday(name string, date time.Time, recurring bool) *Holiday {
	now := time.Now()
	return &Holiday{
		Name:      name,
		Date:      date,
		Recurring: recurring,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(h *Holiday) *holidayDatamodel.Holiday {
	return &holidayDatamodel.Holiday{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date,
		Recurring: h.Recurring,
		IsActive:  h.IsActive,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func FromDataModel(h *holidayDatamodel.Holiday) *Holiday {
	return &Holiday{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date,
		Recurring: h.Recurring,
		IsActive:  h.IsActive,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}
