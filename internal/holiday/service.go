package holiday

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	GetAll(ctx context.Context) ([]*Holiday, error)
	GetByID(ctx context.Context, id int64) (*Holiday, error)
	GetActive(ctx context.Context) ([]*Holiday, error)
	Create(ctx context.Context, h *Holiday) error
	Update(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("component", "holiday_service"),
	}
}

func (s *Service) GetAll(ctx context.Context) ([]*Holiday, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Holiday, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto CreateHolidayDTO) (*Holiday, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	h := NewHoliday(dto.Name, dto.ParsedDate(), dto.Recurring)
	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("failed to create holiday", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("holiday created", "holiday_id", h.ID, "name", h.Name, "recurring", h.Recurring)
	return h, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateHolidayDTO) (*Holiday, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h.Name = dto.Name
	h.Date = dto.ParsedDate()
	h.Recurring = dto.Recurring
	if dto.IsActive != nil {
		h.IsActive = *dto.IsActive
	}
	h.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, h); err != nil {
		s.logger.Error("failed to update holiday", "error", err, "holiday_id", id)
		return nil, err
	}
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ActiveDates resolves all active holidays for a year into a date-keyed set,
// projecting recurring holidays onto that year. The keys use YYYY-MM-DD, the
// same format the working-day calculator expects.
func (s *Service) ActiveDates(year int) (map[string]struct{}, error) {
	holidays, err := s.repo.GetActive(context.Background())
	if err != nil {
		return nil, err
	}

	dates := make(map[string]struct{})
	for _, h := range holidays {
		if date, ok := h.DateInYear(year); ok {
			dates[date.Format(dateLayout)] = struct{}{}
		}
	}
	return dates, nil
}

// ListForYear returns the holidays observed in a given year, recurring ones
// projected onto that year's date.
func (s *Service) ListForYear(ctx context.Context, year int) ([]*Holiday, error) {
	holidays, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	var out []*Holiday
	for _, h := range holidays {
		if date, ok := h.DateInYear(year); ok {
			projected := *h
			projected.Date = date
			out = append(out, &projected)
		}
	}
	return out, nil
}
