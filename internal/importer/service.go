package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/hrplatform/leave-management/internal/department"
	"github.com/hrplatform/leave-management/internal/employee"
	"github.com/hrplatform/leave-management/internal/leave"
)

type EmployeeService interface {
	Create(ctx context.Context, dto employee.CreateEmployeeDTO) (*employee.Employee, error)
	List(ctx context.Context, q employee.ListEmployeesQuery) ([]*employee.Employee, int64, error)
}

type DepartmentService interface {
	GetAll(ctx context.Context) ([]*department.Department, error)
	Create(ctx context.Context, dto department.CreateDepartmentDTO) (*department.Department, error)
}

type LeaveReportSource interface {
	Report(filter leave.ReportFilter, userPermissions []string) ([]*leave.ReportRow, error)
}

type Service struct {
	employees   EmployeeService
	departments DepartmentService
	leaves      LeaveReportSource
	logger      *slog.Logger
}

func NewService(employees EmployeeService, departments DepartmentService, leaves LeaveReportSource, logger *slog.Logger) *Service {
	return &Service{
		employees:   employees,
		departments: departments,
		leaves:      leaves,
		logger:      logger.With("component", "importer_service"),
	}
}

// Import reads employee rows from CSV and provisions them one by one.
// A failing row is reported and skipped; the rest of the file still imports.
// Unknown department names are created on the fly. manager_code may reference
// an employee created earlier in the same file.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	deptByName, err := s.departmentIndex(ctx)
	if err != nil {
		return nil, err
	}

	codeToID, err := s.employeeCodeIndex(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Total++
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: rowNum, Message: "malformed csv row"})
			continue
		}

		report.Total++
		rec := toRecord(idx, row)

		emp, err := s.importRow(ctx, rec, deptByName, codeToID)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		codeToID[emp.EmployeeCode] = emp.ID
		report.Imported++
	}

	s.logger.Info("csv import finished",
		"total", report.Total,
		"imported", report.Imported,
		"failed", report.Failed)

	return report, nil
}

func (s *Service) importRow(ctx context.Context, rec record, deptByName map[string]int64, codeToID map[string]int64) (*employee.Employee, error) {
	dto := employee.CreateEmployeeDTO{
		Email:        rec.get("email"),
		FirstName:    rec.get("first_name"),
		LastName:     rec.get("last_name"),
		EmployeeCode: rec.get("employee_code"),
		Designation:  rec.get("designation"),
		Phone:        rec.get("phone"),
		JoiningDate:  rec.get("joining_date"),
		Role:         rec.get("role"),
	}

	var err error
	if dto.EarnedEntitlement, err = rec.getFloat("earned_entitlement"); err != nil {
		return nil, err
	}
	if dto.SickEntitlement, err = rec.getFloat("sick_entitlement"); err != nil {
		return nil, err
	}
	if dto.CasualEntitlement, err = rec.getFloat("casual_entitlement"); err != nil {
		return nil, err
	}

	if deptName := rec.get("department"); deptName != "" {
		deptID, err := s.resolveDepartment(ctx, deptName, deptByName)
		if err != nil {
			return nil, err
		}
		dto.DepartmentID = &deptID
	}

	if managerCode := rec.get("manager_code"); managerCode != "" {
		managerID, ok := codeToID[managerCode]
		if !ok {
			return nil, fmt.Errorf("manager_code %q does not match any employee", managerCode)
		}
		dto.ManagerID = &managerID
	}

	return s.employees.Create(ctx, dto)
}

func (s *Service) resolveDepartment(ctx context.Context, name string, deptByName map[string]int64) (int64, error) {
	if id, ok := deptByName[name]; ok {
		return id, nil
	}

	dept, err := s.departments.Create(ctx, department.CreateDepartmentDTO{Name: name})
	if err != nil {
		return 0, fmt.Errorf("create department %q: %w", name, err)
	}
	deptByName[name] = dept.ID
	s.logger.Info("department created during import", "name", name, "department_id", dept.ID)
	return dept.ID, nil
}

func (s *Service) departmentIndex(ctx context.Context) (map[string]int64, error) {
	depts, err := s.departments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	byName := make(map[string]int64, len(depts))
	for _, d := range depts {
		byName[d.Name] = d.ID
	}
	return byName, nil
}

func (s *Service) employeeCodeIndex(ctx context.Context) (map[string]int64, error) {
	var byCode = make(map[string]int64)
	offset := 0
	for {
		batch, total, err := s.employees.List(ctx, employee.ListEmployeesQuery{Limit: 100, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		for _, e := range batch {
			byCode[e.EmployeeCode] = e.ID
		}
		offset += len(batch)
		if len(batch) == 0 || int64(offset) >= total {
			break
		}
	}
	return byCode, nil
}

// Export writes all employees as CSV in the same column layout Import reads.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	byID := make(map[int64]string)
	var all []*employee.Employee
	offset := 0
	for {
		batch, total, err := s.employees.List(ctx, employee.ListEmployeesQuery{Limit: 100, Offset: offset})
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		for _, e := range batch {
			byID[e.ID] = e.EmployeeCode
		}
		all = append(all, batch...)
		offset += len(batch)
		if len(batch) == 0 || int64(offset) >= total {
			break
		}
	}

	deptNames, err := s.departmentNameIndex(ctx)
	if err != nil {
		return err
	}

	for _, e := range all {
		row := []string{
			e.Email,
			e.FirstName,
			e.LastName,
			e.EmployeeCode,
			"",
			e.Designation,
			e.Phone,
			e.JoiningDate.Format("2006-01-02"),
			e.Role,
			"",
			formatFloat(e.EarnedEntitlement),
			formatFloat(e.SickEntitlement),
			formatFloat(e.CasualEntitlement),
		}
		if e.DepartmentID != nil {
			row[4] = deptNames[*e.DepartmentID]
		}
		if e.ManagerID != nil {
			row[9] = byID[*e.ManagerID]
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

var reportColumns = []string{
	"employee_code", "employee_name", "department", "leave_type",
	"start_date", "end_date", "days", "status", "reason", "rejection_reason",
}

// ExportLeaveReport writes the filtered leave requests as CSV.
func (s *Service) ExportLeaveReport(w io.Writer, filter leave.ReportFilter, userPermissions []string) error {
	rows, err := s.leaves.Report(filter, userPermissions)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(reportColumns); err != nil {
		return err
	}

	for _, r := range rows {
		rejection := ""
		if r.RejectionReason != nil {
			rejection = *r.RejectionReason
		}
		row := []string{
			r.EmployeeCode,
			r.EmployeeName,
			r.Department,
			r.LeaveType,
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			strconv.FormatFloat(r.DaysCount, 'f', -1, 64),
			r.Status,
			r.Reason,
			rejection,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *Service) departmentNameIndex(ctx context.Context) (map[int64]string, error) {
	depts, err := s.departments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(depts))
	for _, d := range depts {
		names[d.ID] = d.Name
	}
	return names, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
