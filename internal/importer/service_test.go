package importer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/hrplatform/leave-management/internal/department"
	"github.com/hrplatform/leave-management/internal/employee"
	"github.com/hrplatform/leave-management/internal/leave"
)

func TestImporter(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Importer Module Suite")
}

type mockEmployeeService struct {
	employees []*employee.Employee
	nextID    int64
}

func (m *mockEmployeeService) Create(_ context.Context, dto employee.CreateEmployeeDTO) (*employee.Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	for _, e := range m.employees {
		if e.Email == dto.Email {
			return nil, employee.ErrDuplicateEmail
		}
	}
	m.nextID++
	emp := &employee.Employee{
		ID:           m.nextID,
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		EmployeeCode: dto.EmployeeCode,
		DepartmentID: dto.DepartmentID,
		ManagerID:    dto.ManagerID,
		JoiningDate:  dto.ParsedJoiningDate(),
		Role:         dto.Role,
	}
	m.employees = append(m.employees, emp)
	return emp, nil
}

func (m *mockEmployeeService) List(_ context.Context, _ employee.ListEmployeesQuery) ([]*employee.Employee, int64, error) {
	return m.employees, int64(len(m.employees)), nil
}

type mockDepartmentService struct {
	departments map[string]*department.Department
	nextID      int64
}

func newMockDepartmentService() *mockDepartmentService {
	return &mockDepartmentService{
		departments: map[string]*department.Department{
			"Engineering": {ID: 1, Name: "Engineering"},
		},
		nextID: 1,
	}
}

func (m *mockDepartmentService) GetAll(_ context.Context) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDepartmentService) Create(_ context.Context, dto department.CreateDepartmentDTO) (*department.Department, error) {
	m.nextID++
	d := &department.Department{ID: m.nextID, Name: dto.Name}
	m.departments[dto.Name] = d
	return d, nil
}

type mockLeaveReportSource struct {
	rows       []*leave.ReportRow
	err        error
	lastFilter leave.ReportFilter
}

func (m *mockLeaveReportSource) Report(filter leave.ReportFilter, _ []string) ([]*leave.ReportRow, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

var _ = ginkgo.Describe("ImporterService", func() {
	var (
		service     *Service
		employees   *mockEmployeeService
		departments *mockDepartmentService
		reports     *mockLeaveReportSource
		ctx         context.Context
	)

	ginkgo.BeforeEach(func() {
		employees = &mockEmployeeService{}
		departments = newMockDepartmentService()
		reports = &mockLeaveReportSource{}
		service = NewService(employees, departments, reports, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Import", func() {
		ginkgo.It("should import well-formed rows", func() {
			csv := strings.Join([]string{
				"email,first_name,last_name,employee_code,department,joining_date,role",
				"a@acme.test,Ann,Able,E001,Engineering,2026-02-01,employee",
				"b@acme.test,Bob,Baker,E002,Engineering,2026-03-01,employee",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Total).To(gomega.Equal(2))
			gomega.Expect(report.Imported).To(gomega.Equal(2))
			gomega.Expect(report.Failed).To(gomega.Equal(0))
			gomega.Expect(employees.employees).To(gomega.HaveLen(2))
		})

		ginkgo.It("should continue past bad rows and report them", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,joining_date",
				"good@acme.test,Gina,E001,2026-02-01",
				"no-at-sign,Bad,E002,2026-02-01",
				"late@acme.test,Lana,E003,not-a-date",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Imported).To(gomega.Equal(1))
			gomega.Expect(report.Failed).To(gomega.Equal(2))
			gomega.Expect(report.Errors).To(gomega.HaveLen(2))
			gomega.Expect(report.Errors[0].Row).To(gomega.Equal(2))
			gomega.Expect(report.Errors[1].Row).To(gomega.Equal(3))
		})

		ginkgo.It("should create unknown departments on the fly", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,department,joining_date",
				"a@acme.test,Ann,E001,Skunkworks,2026-02-01",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Imported).To(gomega.Equal(1))
			gomega.Expect(departments.departments).To(gomega.HaveKey("Skunkworks"))
		})

		ginkgo.It("should link managers created earlier in the same file", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,joining_date,manager_code",
				"mgr@acme.test,Mara,M001,2025-01-01,",
				"rep@acme.test,Remy,E001,2026-02-01,M001",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Imported).To(gomega.Equal(2))
			gomega.Expect(employees.employees[1].ManagerID).ToNot(gomega.BeNil())
			gomega.Expect(*employees.employees[1].ManagerID).To(gomega.Equal(employees.employees[0].ID))
		})

		ginkgo.It("should fail a row referencing an unknown manager code", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,joining_date,manager_code",
				"rep@acme.test,Remy,E001,2026-02-01,NOPE",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Failed).To(gomega.Equal(1))
		})

		ginkgo.It("should reject a file missing required header columns", func() {
			csv := "first_name,last_name\nAnn,Able"
			_, err := service.Import(ctx, strings.NewReader(csv))
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("required columns")))
		})

		ginkgo.It("should pass entitlement overrides through", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,joining_date,earned_entitlement",
				"a@acme.test,Ann,E001,2026-06-01,15",
			}, "\n")

			report, err := service.Import(ctx, strings.NewReader(csv))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(report.Imported).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("Export", func() {
		ginkgo.It("should produce a header plus one row per employee", func() {
			csv := strings.Join([]string{
				"email,first_name,employee_code,department,joining_date",
				"a@acme.test,Ann,E001,Engineering,2026-02-01",
			}, "\n")
			_, err := service.Import(ctx, strings.NewReader(csv))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			var buf bytes.Buffer
			gomega.Expect(service.Export(ctx, &buf)).To(gomega.Succeed())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			gomega.Expect(lines).To(gomega.HaveLen(2))
			gomega.Expect(lines[0]).To(gomega.ContainSubstring("email,first_name"))
			gomega.Expect(lines[1]).To(gomega.ContainSubstring("a@acme.test"))
			gomega.Expect(lines[1]).To(gomega.ContainSubstring("Engineering"))
		})
	})

	ginkgo.Describe("ExportLeaveReport", func() {
		ginkgo.It("should write one row per leave request", func() {
			rejection := "overlaps sprint review"
			reports.rows = []*leave.ReportRow{
				{
					LeaveRequest: leave.LeaveRequest{
						LeaveType: "earned",
						StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
						EndDate:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
						DaysCount: 3,
						Status:    leave.StatusApproved,
						Reason:    "family trip",
					},
					EmployeeCode: "E001",
					EmployeeName: "Ann Able",
					Department:   "Engineering",
				},
				{
					LeaveRequest: leave.LeaveRequest{
						LeaveType:       "casual",
						StartDate:       time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
						EndDate:         time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
						DaysCount:       0.5,
						Status:          leave.StatusRejected,
						RejectionReason: &rejection,
					},
					EmployeeCode: "E002",
					EmployeeName: "Bob Baker",
					Department:   "Engineering",
				},
			}

			var buf bytes.Buffer
			filter := leave.ReportFilter{Year: 2026}
			err := service.ExportLeaveReport(&buf, filter, []string{"approve_leaves"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(reports.lastFilter.Year).To(gomega.Equal(2026))

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			gomega.Expect(lines).To(gomega.HaveLen(3))
			gomega.Expect(lines[0]).To(gomega.Equal("employee_code,employee_name,department,leave_type,start_date,end_date,days,status,reason,rejection_reason"))
			gomega.Expect(lines[1]).To(gomega.ContainSubstring("E001,Ann Able,Engineering,earned,2026-03-02,2026-03-04,3,approved,family trip"))
			gomega.Expect(lines[2]).To(gomega.ContainSubstring("0.5,rejected,,overlaps sprint review"))
		})

		ginkgo.It("should propagate authorization failures", func() {
			reports.err = leave.ErrUnauthorizedAccess

			var buf bytes.Buffer
			err := service.ExportLeaveReport(&buf, leave.ReportFilter{}, nil)

			gomega.Expect(err).To(gomega.MatchError(leave.ErrUnauthorizedAccess))
			gomega.Expect(buf.Len()).To(gomega.BeZero())
		})
	})
})
