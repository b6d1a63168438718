package postgres

import (
	"time"

	leaveDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/leave"
	"github.com/hrplatform/leave-management/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(lr *leave.LeaveRequest) error {
	dm := leave.ToDataModel(lr)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	lr.ID = dm.ID
	return nil
}

func (r *LeaveRepository) GetByID(id int64) (*leave.LeaveRequest, error) {
	var dm leaveDatamodel.LeaveRequest
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, err
	}
	return leave.FromDataModel(&dm), nil
}

func (r *LeaveRepository) GetByEmployeeID(employeeID int64, limit, offset int) ([]*leave.LeaveRequest, error) {
	var dms []*leaveDatamodel.LeaveRequest
	err := r.db.Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return leave.FromDataModelSlice(dms), nil
}

func (r *LeaveRepository) GetAll(limit, offset int, status string) ([]*leave.LeaveRequest, error) {
	query := r.db.Model(&leaveDatamodel.LeaveRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var dms []*leaveDatamodel.LeaveRequest
	err := query.
		Order("created_at ASC"). // FIFO for approvals
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return leave.FromDataModelSlice(dms), nil
}

type reportRow struct {
	leaveDatamodel.LeaveRequest
	EmployeeCode string `gorm:"column:employee_code"`
	EmployeeName string `gorm:"column:employee_name"`
	Department   string `gorm:"column:department"`
}

func (r *LeaveRepository) ListForReport(filter leave.ReportFilter) ([]*leave.ReportRow, error) {
	query := r.db.Table("leave_requests").
		Select("leave_requests.*, employees.employee_code, users.name AS employee_name, COALESCE(departments.name, '') AS department").
		Joins("JOIN employees ON employees.id = leave_requests.employee_id").
		Joins("JOIN users ON users.id = employees.user_id").
		Joins("LEFT JOIN departments ON departments.id = employees.department_id")

	if filter.Year != 0 {
		query = query.Where("EXTRACT(YEAR FROM leave_requests.start_date) = ?", filter.Year)
	}
	if filter.DepartmentID != 0 {
		query = query.Where("employees.department_id = ?", filter.DepartmentID)
	}
	if filter.Status != "" {
		query = query.Where("leave_requests.status = ?", filter.Status)
	}

	var dms []*reportRow
	if err := query.Order("leave_requests.start_date ASC").Scan(&dms).Error; err != nil {
		return nil, err
	}

	rows := make([]*leave.ReportRow, 0, len(dms))
	for _, dm := range dms {
		rows = append(rows, &leave.ReportRow{
			LeaveRequest: *leave.FromDataModel(&dm.LeaveRequest),
			EmployeeCode: dm.EmployeeCode,
			EmployeeName: dm.EmployeeName,
			Department:   dm.Department,
		})
	}
	return rows, nil
}

func (r *LeaveRepository) Update(lr *leave.LeaveRequest) error {
	lr.UpdatedAt = time.Now()
	return r.db.Save(leave.ToDataModel(lr)).Error
}

func (r *LeaveRepository) DeleteCancelledBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("status = ? AND cancelled_at < ?", leave.StatusCancelled, cutoff).
		Delete(&leaveDatamodel.LeaveRequest{})
	return result.RowsAffected, result.Error
}
