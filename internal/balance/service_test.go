package balance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockBalanceRepository struct {
	balances map[string]*Balance
}

func newMockBalanceRepository() *mockBalanceRepository {
	return &mockBalanceRepository{balances: make(map[string]*Balance)}
}

func balanceKey(employeeID int64, year int, leaveType string) string {
	return fmt.Sprintf("%d-%d-%s", employeeID, year, leaveType)
}

func (m *mockBalanceRepository) Create(b *Balance) error {
	key := balanceKey(b.EmployeeID, b.Year, b.LeaveType)
	if _, exists := m.balances[key]; exists {
		return fmt.Errorf("duplicate balance row: %s", key)
	}
	m.balances[key] = b
	return nil
}

func (m *mockBalanceRepository) GetByEmployeeYearType(employeeID int64, year int, leaveType string) (*Balance, error) {
	if b, ok := m.balances[balanceKey(employeeID, year, leaveType)]; ok {
		return b, nil
	}
	return nil, ErrBalanceNotFound
}

func (m *mockBalanceRepository) ListByEmployee(employeeID int64, year int) ([]*Balance, error) {
	var out []*Balance
	for _, b := range m.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBalanceRepository) ListByYear(year int) ([]*Balance, error) {
	var out []*Balance
	for _, b := range m.balances {
		if b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBalanceRepository) WithLock(employeeID int64, year int, leaveType string, fn func(*Balance) error) error {
	b, ok := m.balances[balanceKey(employeeID, year, leaveType)]
	if !ok {
		return ErrBalanceNotFound
	}
	copied := *b
	if err := fn(&copied); err != nil {
		return err
	}
	m.balances[balanceKey(employeeID, year, leaveType)] = &copied
	return nil
}

type fixedHolidaySource struct {
	dates map[int]map[string]struct{}
}

func (s *fixedHolidaySource) ActiveDates(year int) (map[string]struct{}, error) {
	if d, ok := s.dates[year]; ok {
		return d, nil
	}
	return map[string]struct{}{}, nil
}

var _ = ginkgo.Describe("BalanceService", func() {
	var (
		service  *Service
		mockRepo *mockBalanceRepository
		holidays *fixedHolidaySource
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockBalanceRepository()
		holidays = &fixedHolidaySource{dates: map[int]map[string]struct{}{}}
		service = NewService(mockRepo, holidays, slog.Default())
	})

	ginkgo.Describe("Initialize", func() {
		ginkgo.It("should create the three tracked rows from the pro-rata tables", func() {
			joining := day(2026, time.March, 15)
			err := service.Initialize(1, joining, Overrides{})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.balances).To(gomega.HaveLen(3))

			earned, err := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeEarned)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(earned.TotalAllocated).To(gomega.Equal(10.0))
			gomega.Expect(earned.AvailableDays).To(gomega.Equal(10.0))

			casual, err := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeCasual)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(casual.TotalAllocated).To(gomega.Equal(5.0))
		})

		ginkgo.It("should let manual overrides win over the table", func() {
			earned := 20.0
			err := service.Initialize(1, day(2026, time.March, 15), Overrides{Earned: &earned})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			row, err := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeEarned)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(row.TotalAllocated).To(gomega.Equal(20.0))

			sick, err := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeSick)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sick.TotalAllocated).To(gomega.Equal(10.0))
		})

		ginkgo.It("should not create a compensation row", func() {
			err := service.Initialize(1, day(2026, time.January, 5), Overrides{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeCompensation)
			gomega.Expect(err).To(gomega.Equal(ErrBalanceNotFound))
		})
	})

	ginkgo.Describe("Apply", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(service.Initialize(1, day(2026, time.January, 5), Overrides{})).To(gomega.Succeed())
		})

		ginkgo.It("should debit used days and recompute available", func() {
			err := service.Apply(1, 2026, LeaveTypeEarned, 3)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			b, _ := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeEarned)
			gomega.Expect(b.UsedDays).To(gomega.Equal(3.0))
			gomega.Expect(b.AvailableDays).To(gomega.Equal(9.0))
		})

		ginkgo.It("should refuse a debit past the available days", func() {
			err := service.Apply(1, 2026, LeaveTypeCasual, 7)
			gomega.Expect(err).To(gomega.Equal(ErrInsufficientBalance))

			b, _ := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeCasual)
			gomega.Expect(b.UsedDays).To(gomega.Equal(0.0))
		})

		ginkgo.It("should credit days back on a negative delta", func() {
			gomega.Expect(service.Apply(1, 2026, LeaveTypeEarned, 5)).To(gomega.Succeed())

			err := service.Apply(1, 2026, LeaveTypeEarned, -5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			b, _ := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeEarned)
			gomega.Expect(b.AvailableDays).To(gomega.Equal(12.0))
		})

		ginkgo.It("should clamp used days at zero on over-credit", func() {
			err := service.Apply(1, 2026, LeaveTypeEarned, -4)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			b, _ := mockRepo.GetByEmployeeYearType(1, 2026, LeaveTypeEarned)
			gomega.Expect(b.UsedDays).To(gomega.Equal(0.0))
			gomega.Expect(b.AvailableDays).To(gomega.Equal(12.0))
		})

		ginkgo.It("should treat compensation as a no-op", func() {
			err := service.Apply(1, 2026, LeaveTypeCompensation, 10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an unknown type", func() {
			err := service.Apply(1, 2026, "sabbatical", 1)
			gomega.Expect(err).To(gomega.Equal(ErrUnknownLeaveType))
		})
	})

	ginkgo.Describe("CheckAvailable", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(service.Initialize(1, day(2026, time.January, 5), Overrides{})).To(gomega.Succeed())
		})

		ginkgo.It("should pass when enough days remain", func() {
			gomega.Expect(service.CheckAvailable(1, 2026, LeaveTypeEarned, 12)).To(gomega.Succeed())
		})

		ginkgo.It("should fail when the request exceeds the balance", func() {
			err := service.CheckAvailable(1, 2026, LeaveTypeEarned, 13)
			gomega.Expect(err).To(gomega.Equal(ErrInsufficientBalance))
		})

		ginkgo.It("should always pass for compensation", func() {
			gomega.Expect(service.CheckAvailable(1, 2026, LeaveTypeCompensation, 100)).To(gomega.Succeed())
		})

		ginkgo.It("should report a missing balance row", func() {
			err := service.CheckAvailable(2, 2026, LeaveTypeEarned, 1)
			gomega.Expect(err).To(gomega.Equal(ErrBalanceNotFound))
		})
	})

	ginkgo.Describe("WorkingDaysBetween", func() {
		ginkgo.It("should merge holiday sets across spanned years", func() {
			holidays.dates[2026] = map[string]struct{}{"2026-12-25": {}}
			holidays.dates[2027] = map[string]struct{}{"2027-01-01": {}}

			days, err := service.WorkingDaysBetween(day(2026, time.December, 21), day(2027, time.January, 8))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(days).To(gomega.Equal(13))
		})
	})

	ginkgo.Describe("ProcessYearEnd", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(service.Initialize(1, day(2026, time.January, 5), Overrides{})).To(gomega.Succeed())
		})

		ginkgo.It("should carry unused earned days up to the cap", func() {
			// 12 allocated, 4 used -> 8 available, capped at 5
			gomega.Expect(service.Apply(1, 2026, LeaveTypeEarned, 4)).To(gomega.Succeed())

			gomega.Expect(service.ProcessYearEnd(2026)).To(gomega.Succeed())

			next, err := mockRepo.GetByEmployeeYearType(1, 2027, LeaveTypeEarned)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(next.CarryForward).To(gomega.Equal(5.0))
			gomega.Expect(next.TotalAllocated).To(gomega.Equal(12.0))
			gomega.Expect(next.AvailableDays).To(gomega.Equal(17.0))
			gomega.Expect(next.UsedDays).To(gomega.Equal(0.0))
		})

		ginkgo.It("should carry the exact remainder when under the cap", func() {
			gomega.Expect(service.Apply(1, 2026, LeaveTypeEarned, 9)).To(gomega.Succeed())

			gomega.Expect(service.ProcessYearEnd(2026)).To(gomega.Succeed())

			next, _ := mockRepo.GetByEmployeeYearType(1, 2027, LeaveTypeEarned)
			gomega.Expect(next.CarryForward).To(gomega.Equal(3.0))
		})

		ginkgo.It("should reset sick and casual with no carry", func() {
			gomega.Expect(service.Apply(1, 2026, LeaveTypeSick, 2)).To(gomega.Succeed())

			gomega.Expect(service.ProcessYearEnd(2026)).To(gomega.Succeed())

			sick, _ := mockRepo.GetByEmployeeYearType(1, 2027, LeaveTypeSick)
			gomega.Expect(sick.CarryForward).To(gomega.Equal(0.0))
			gomega.Expect(sick.TotalAllocated).To(gomega.Equal(12.0))

			casual, _ := mockRepo.GetByEmployeeYearType(1, 2027, LeaveTypeCasual)
			gomega.Expect(casual.CarryForward).To(gomega.Equal(0.0))
			gomega.Expect(casual.TotalAllocated).To(gomega.Equal(6.0))
		})

		ginkgo.It("should give mid-year joiners a full allocation next year", func() {
			gomega.Expect(service.Initialize(2, day(2026, time.October, 1), Overrides{})).To(gomega.Succeed())

			gomega.Expect(service.ProcessYearEnd(2026)).To(gomega.Succeed())

			next, err := mockRepo.GetByEmployeeYearType(2, 2027, LeaveTypeEarned)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(next.TotalAllocated).To(gomega.Equal(12.0))
		})
	})
})
