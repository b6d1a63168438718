package holiday

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestHoliday(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Holiday Module Suite")
}

type mockHolidayRepository struct {
	holidays map[int64]*Holiday
	nextID   int64
}

func newMockHolidayRepository() *mockHolidayRepository {
	return &mockHolidayRepository{
		holidays: map[int64]*Holiday{
			1: {ID: 1, Name: "New Year", Date: date(2025, 1, 1), Recurring: true, IsActive: true},
			2: {ID: 2, Name: "Company Day", Date: date(2025, 6, 18), Recurring: false, IsActive: true},
			3: {ID: 3, Name: "Old Holiday", Date: date(2025, 3, 3), Recurring: false, IsActive: false},
		},
		nextID: 4,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *mockHolidayRepository) GetAll(_ context.Context) ([]*Holiday, error) {
	var out []*Holiday
	for _, h := range r.holidays {
		out = append(out, h)
	}
	return out, nil
}

func (r *mockHolidayRepository) GetActive(_ context.Context) ([]*Holiday, error) {
	var out []*Holiday
	for _, h := range r.holidays {
		if h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *mockHolidayRepository) GetByID(_ context.Context, id int64) (*Holiday, error) {
	if h, ok := r.holidays[id]; ok {
		return h, nil
	}
	return nil, ErrHolidayNotFound
}

func (r *mockHolidayRepository) Create(_ context.Context, h *Holiday) error {
	h.ID = r.nextID
	r.nextID++
	r.holidays[h.ID] = h
	return nil
}

func (r *mockHolidayRepository) Update(_ context.Context, h *Holiday) error {
	r.holidays[h.ID] = h
	return nil
}

func (r *mockHolidayRepository) Delete(_ context.Context, id int64) error {
	delete(r.holidays, id)
	return nil
}

var _ = ginkgo.Describe("HolidayService", func() {
	var (
		service  *Service
		mockRepo *mockHolidayRepository
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockHolidayRepository()
		service = NewService(mockRepo, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should parse the date and store the holiday", func() {
			h, err := service.Create(ctx, CreateHolidayDTO{
				Name:      "Independence Day",
				Date:      "2026-08-15",
				Recurring: true,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(h.Date).To(gomega.Equal(date(2026, 8, 15)))
			gomega.Expect(h.IsActive).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a malformed date", func() {
			_, err := service.Create(ctx, CreateHolidayDTO{Name: "Bad", Date: "15/08/2026"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ActiveDates", func() {
		ginkgo.It("should project recurring holidays onto the requested year", func() {
			dates, err := service.ActiveDates(2027)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dates).To(gomega.HaveKey("2027-01-01"))
		})

		ginkgo.It("should keep non-recurring holidays in their own year only", func() {
			dates2025, err := service.ActiveDates(2025)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dates2025).To(gomega.HaveKey("2025-06-18"))

			dates2026, err := service.ActiveDates(2026)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dates2026).ToNot(gomega.HaveKey("2026-06-18"))
		})

		ginkgo.It("should skip inactive holidays", func() {
			dates, err := service.ActiveDates(2025)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dates).ToNot(gomega.HaveKey("2025-03-03"))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should deactivate a holiday via the is_active flag", func() {
			inactive := false
			h, err := service.Update(ctx, 2, UpdateHolidayDTO{
				Name:     "Company Day",
				Date:     "2025-06-18",
				IsActive: &inactive,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(h.IsActive).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should return not found for an unknown id", func() {
			err := service.Delete(ctx, 99)
			gomega.Expect(err).To(gomega.Equal(ErrHolidayNotFound))
		})
	})
})
