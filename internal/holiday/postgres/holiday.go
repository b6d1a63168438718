package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	holidayDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/holiday"
	"github.com/hrplatform/leave-management/internal/holiday"
)

type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) GetAll(ctx context.Context) ([]*holiday.Holiday, error) {
	var rows []*holidayDatamodel.Holiday
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *HolidayRepository) GetActive(ctx context.Context) ([]*holiday.Holiday, error) {
	var rows []*holidayDatamodel.Holiday
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *HolidayRepository) GetByID(ctx context.Context, id int64) (*holiday.Holiday, error) {
	var row holidayDatamodel.Holiday
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, holiday.ErrHolidayNotFound
		}
		return nil, err
	}
	return holiday.FromDataModel(&row), nil
}

func (r *HolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	row := holiday.ToDataModel(h)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	h.ID = row.ID
	return nil
}

func (r *HolidayRepository) Update(ctx context.Context, h *holiday.Holiday) error {
	return r.db.WithContext(ctx).Save(holiday.ToDataModel(h)).Error
}

func (r *HolidayRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&holidayDatamodel.Holiday{}).Error
}

func fromRows(rows []*holidayDatamodel.Holiday) []*holiday.Holiday {
	out := make([]*holiday.Holiday, 0, len(rows))
	for _, row := range rows {
		out = append(out, holiday.FromDataModel(row))
	}
	return out
}
