package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	departmentDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/employee"
	"github.com/hrplatform/leave-management/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*department.Department, error) {
	var rows []*departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	depts := make([]*department.Department, 0, len(rows))
	for _, row := range rows {
		depts = append(depts, department.FromDataModel(row))
	}
	return depts, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	var row departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&row), nil
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*department.Department, error) {
	var row departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&row), nil
}

func (r *DepartmentRepository) Create(ctx context.Context, dept *department.Department) error {
	row := department.ToDataModel(dept)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	dept.ID = row.ID
	return nil
}

func (r *DepartmentRepository) Update(ctx context.Context, dept *department.Department) error {
	return r.db.WithContext(ctx).Save(department.ToDataModel(dept)).Error
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&departmentDatamodel.Department{}).Error
}

func (r *DepartmentRepository) CountEmployees(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("department_id = ?", id).
		Count(&count).Error
	return count, err
}
