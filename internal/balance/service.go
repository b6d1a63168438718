package balance

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrUnknownLeaveType    = errors.New("unknown leave type")
)

// Repository defines the data access methods for leave balances.
type Repository interface {
	Create(b *Balance) error
	GetByEmployeeYearType(employeeID int64, year int, leaveType string) (*Balance, error)
	ListByEmployee(employeeID int64, year int) ([]*Balance, error)
	ListByYear(year int) ([]*Balance, error)
	// WithLock runs fn against the balance row under a row-level write lock
	// and persists the mutated row when fn returns nil.
	WithLock(employeeID int64, year int, leaveType string, fn func(*Balance) error) error
}

// HolidaySource supplies the non-working dates for a year, keyed by DateKey.
type HolidaySource interface {
	ActiveDates(year int) (map[string]struct{}, error)
}

// Service owns the leave arithmetic: pro-rata initialization, working-day
// counting, debit/credit, and year-end carry-forward.
type Service struct {
	repo     Repository
	holidays HolidaySource
	logger   *slog.Logger
}

func NewService(repo Repository, holidays HolidaySource, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		holidays: holidays,
		logger:   logger,
	}
}

// Initialize creates the three tracked balance rows for a new employee.
// Manual overrides win over the pro-rata table when provided.
func (s *Service) Initialize(employeeID int64, joiningDate time.Time, overrides Overrides) error {
	year := joiningDate.Year()

	for _, leaveType := range TrackedLeaveTypes {
		allocated := ProRataForType(leaveType, joiningDate)
		if manual := overrides.forType(leaveType); manual != nil {
			allocated = *manual
		}

		b := &Balance{
			EmployeeID:     employeeID,
			Year:           year,
			LeaveType:      leaveType,
			TotalAllocated: allocated,
			UsedDays:       0,
			CarryForward:   0,
		}
		b.Recompute()

		if err := s.repo.Create(b); err != nil {
			return fmt.Errorf("initialize %s balance: %w", leaveType, err)
		}
	}

	s.logger.Info("leave balances initialized",
		"employee_id", employeeID,
		"year", year,
		"joining_month", int(joiningDate.Month()))

	return nil
}

// Apply debits (positive delta) or credits (negative delta) used days on the
// balance row. The mutation happens under a row lock so concurrent approvals
// against the same row cannot both pass the availability check.
// Compensation leave is untracked and a no-op.
func (s *Service) Apply(employeeID int64, year int, leaveType string, delta float64) error {
	if leaveType == LeaveTypeCompensation {
		return nil
	}
	if !IsTracked(leaveType) {
		return ErrUnknownLeaveType
	}

	err := s.repo.WithLock(employeeID, year, leaveType, func(b *Balance) error {
		b.UsedDays += delta
		if b.UsedDays < 0 {
			b.UsedDays = 0
		}
		b.Recompute()
		if b.AvailableDays < 0 {
			return ErrInsufficientBalance
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("leave balance updated",
		"employee_id", employeeID,
		"year", year,
		"leave_type", leaveType,
		"delta", delta)

	return nil
}

// CheckAvailable returns ErrInsufficientBalance when the employee does not
// have enough available days of the given type. Compensation always passes.
func (s *Service) CheckAvailable(employeeID int64, year int, leaveType string, days float64) error {
	if leaveType == LeaveTypeCompensation {
		return nil
	}
	if !IsTracked(leaveType) {
		return ErrUnknownLeaveType
	}

	b, err := s.repo.GetByEmployeeYearType(employeeID, year, leaveType)
	if err != nil {
		return err
	}
	if b.AvailableDays < days {
		return ErrInsufficientBalance
	}
	return nil
}

// WorkingDaysBetween counts working days in [start, end], excluding weekends
// and active holidays. The holiday set is fetched per spanned year.
func (s *Service) WorkingDaysBetween(start, end time.Time) (int, error) {
	holidays := make(map[string]struct{})
	for year := start.Year(); year <= end.Year(); year++ {
		dates, err := s.holidays.ActiveDates(year)
		if err != nil {
			return 0, fmt.Errorf("fetch holidays for %d: %w", year, err)
		}
		for d := range dates {
			holidays[d] = struct{}{}
		}
	}
	return WorkingDays(start, end, holidays), nil
}

func (s *Service) ListForEmployee(employeeID int64, year int) ([]*Balance, error) {
	balances, err := s.repo.ListByEmployee(employeeID, year)
	if err != nil {
		s.logger.Error("failed to list balances", "error", err, "employee_id", employeeID, "year", year)
		return nil, err
	}
	return balances, nil
}

// ProcessYearEnd creates next year's balance rows from this year's. Earned
// leave carries available days forward up to CarryForwardCap; sick and
// casual reset to a fresh full-year allocation with zero carry-forward.
func (s *Service) ProcessYearEnd(year int) error {
	balances, err := s.repo.ListByYear(year)
	if err != nil {
		return fmt.Errorf("list balances for %d: %w", year, err)
	}

	var processed, failed int
	for _, b := range balances {
		next := &Balance{
			EmployeeID: b.EmployeeID,
			Year:       year + 1,
			LeaveType:  b.LeaveType,
			UsedDays:   0,
		}

		// Full-year allocation: the month-1 pro-rata figure.
		fullYear := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		next.TotalAllocated = ProRataForType(b.LeaveType, fullYear)

		if b.LeaveType == LeaveTypeEarned {
			carry := b.AvailableDays
			if carry > CarryForwardCap {
				carry = CarryForwardCap
			}
			if carry < 0 {
				carry = 0
			}
			next.CarryForward = carry
		}
		next.Recompute()

		if err := s.repo.Create(next); err != nil {
			s.logger.Error("year-end rollover failed for balance",
				"error", err,
				"employee_id", b.EmployeeID,
				"leave_type", b.LeaveType,
				"year", year)
			failed++
			continue
		}
		processed++
	}

	s.logger.Info("year-end balance rollover complete",
		"year", year,
		"processed", processed,
		"failed", failed)

	return nil
}
