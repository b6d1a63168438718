package department

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	GetAll(ctx context.Context) ([]*Department, error)
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	Create(ctx context.Context, dept *Department) error
	Update(ctx context.Context, dept *Department) error
	Delete(ctx context.Context, id int64) error
	CountEmployees(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("component", "department_service"),
	}
}

func (s *Service) GetAll(ctx context.Context) ([]*Department, error) {
	depts, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}
	return depts, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, dto.Name); err == nil && existing != nil {
		return nil, ErrDuplicateName
	}

	dept := NewDepartment(dto.Name, dto.Description)
	if err := s.repo.Create(ctx, dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, dto.Name); err == nil && existing != nil && existing.ID != id {
		return nil, ErrDuplicateName
	}

	dept.Name = dto.Name
	dept.Description = dto.Description
	dept.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return dept, nil
}

// Delete refuses to remove a department that still has employees assigned.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountEmployees(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}
