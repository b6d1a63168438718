package postgres

import (
	"time"

	"github.com/hrplatform/leave-management/internal/balance"
	balanceDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/balance"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceRepository implements the balance.Repository interface using GORM
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) balance.Repository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Create(b *balance.Balance) error {
	dm := balance.ToDataModel(b)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	b.ID = dm.ID
	return nil
}

func (r *BalanceRepository) GetByEmployeeYearType(employeeID int64, year int, leaveType string) (*balance.Balance, error) {
	var dm balanceDatamodel.LeaveBalance
	err := r.db.Where("employee_id = ? AND year = ? AND leave_type = ?", employeeID, year, leaveType).
		First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, balance.ErrBalanceNotFound
		}
		return nil, err
	}
	return balance.FromDataModel(&dm), nil
}

func (r *BalanceRepository) ListByEmployee(employeeID int64, year int) ([]*balance.Balance, error) {
	var dms []*balanceDatamodel.LeaveBalance
	err := r.db.Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return balance.FromDataModelSlice(dms), nil
}

func (r *BalanceRepository) ListByYear(year int) ([]*balance.Balance, error) {
	var dms []*balanceDatamodel.LeaveBalance
	err := r.db.Where("year = ?", year).
		Order("employee_id ASC, leave_type ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return balance.FromDataModelSlice(dms), nil
}

// WithLock loads the row with SELECT ... FOR UPDATE inside a transaction so
// concurrent read-modify-write cycles on the same balance serialize.
func (r *BalanceRepository) WithLock(employeeID int64, year int, leaveType string, fn func(*balance.Balance) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var dm balanceDatamodel.LeaveBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND year = ? AND leave_type = ?", employeeID, year, leaveType).
			First(&dm).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return balance.ErrBalanceNotFound
			}
			return err
		}

		b := balance.FromDataModel(&dm)
		if err := fn(b); err != nil {
			return err
		}

		return tx.Model(&balanceDatamodel.LeaveBalance{}).
			Where("id = ?", dm.ID).
			Updates(map[string]interface{}{
				"total_allocated": b.TotalAllocated,
				"used_days":       b.UsedDays,
				"available_days":  b.AvailableDays,
				"carry_forward":   b.CarryForward,
				"updated_at":      time.Now(),
			}).Error
	})
}
