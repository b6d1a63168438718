package employee

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/hrplatform/leave-management/internal/balance"
	userdm "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/core/events"
)

func TestEmployee(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Employee Module Suite")
}

type mockEmployeeRepository struct {
	employees  map[int64]*Employee
	roles      map[int64]string // userID -> role
	nextEmpID  int64
	nextUserID int64
	deleted    []int64
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	mgrDeptID := int64(1)
	return &mockEmployeeRepository{
		employees: map[int64]*Employee{
			1: {
				ID: 1, UserID: 101, Email: "mgr@acme.test", Name: "Mara Manager",
				Role: userdm.RoleEmployee, EmployeeCode: "E001",
				FirstName: "Mara", DepartmentID: &mgrDeptID,
				JoiningDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			},
		},
		roles:      map[int64]string{101: userdm.RoleEmployee},
		nextEmpID:  2,
		nextUserID: 102,
	}
}

func (m *mockEmployeeRepository) CreateWithUser(_ context.Context, email, name, role string, emp *Employee) error {
	for _, e := range m.employees {
		if e.Email == email {
			return ErrDuplicateEmail
		}
		if e.EmployeeCode == emp.EmployeeCode {
			return ErrDuplicateCode
		}
	}
	emp.ID = m.nextEmpID
	emp.UserID = m.nextUserID
	emp.Email = email
	emp.Name = name
	emp.Role = role
	emp.InviteStatus = userdm.InviteStatusInvited
	m.nextEmpID++
	m.nextUserID++
	m.employees[emp.ID] = emp
	m.roles[emp.UserID] = role
	return nil
}

func (m *mockEmployeeRepository) GetByID(_ context.Context, id int64) (*Employee, error) {
	if e, ok := m.employees[id]; ok {
		e.Role = m.roles[e.UserID]
		return e, nil
	}
	return nil, ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) GetByUserID(_ context.Context, userID int64) (*Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) List(_ context.Context, q ListEmployeesQuery) ([]*Employee, int64, error) {
	var out []*Employee
	for _, e := range m.employees {
		if q.ManagerID != nil && (e.ManagerID == nil || *e.ManagerID != *q.ManagerID) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *mockEmployeeRepository) Update(_ context.Context, emp *Employee) error {
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepository) DeleteCascade(_ context.Context, employeeID, _ int64) error {
	delete(m.employees, employeeID)
	m.deleted = append(m.deleted, employeeID)
	return nil
}

func (m *mockEmployeeRepository) CountManagedBy(_ context.Context, employeeID int64) (int64, error) {
	var count int64
	for _, e := range m.employees {
		if e.ManagerID != nil && *e.ManagerID == employeeID {
			count++
		}
	}
	return count, nil
}

func (m *mockEmployeeRepository) SetUserRole(_ context.Context, userID int64, role string) error {
	m.roles[userID] = role
	return nil
}

type mockBalanceInitializer struct {
	initialized map[int64]time.Time
	failWith    error
}

func (m *mockBalanceInitializer) Initialize(employeeID int64, joiningDate time.Time, _ balance.Overrides) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.initialized == nil {
		m.initialized = make(map[int64]time.Time)
	}
	m.initialized[employeeID] = joiningDate
	return nil
}

type mockInviteIssuer struct {
	issued []int64
}

func (m *mockInviteIssuer) IssueInviteToken(_ context.Context, userID int64) (string, time.Time, error) {
	m.issued = append(m.issued, userID)
	return "invite-token", time.Now().Add(7 * 24 * time.Hour), nil
}

type capturingEventBus struct {
	published []events.Event
}

func (b *capturingEventBus) Publish(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

var _ = ginkgo.Describe("EmployeeService", func() {
	var (
		service  *Service
		mockRepo *mockEmployeeRepository
		balances *mockBalanceInitializer
		invites  *mockInviteIssuer
		eventBus *capturingEventBus
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockEmployeeRepository()
		balances = &mockBalanceInitializer{}
		invites = &mockInviteIssuer{}
		eventBus = &capturingEventBus{}
		service = NewService(mockRepo, balances, invites, eventBus, slog.Default())
		ctx = context.Background()
	})

	validDTO := func() CreateEmployeeDTO {
		return CreateEmployeeDTO{
			Email:        "new@acme.test",
			FirstName:    "Nina",
			LastName:     "Newhire",
			EmployeeCode: "E002",
			JoiningDate:  "2026-03-10",
		}
	}

	ginkgo.Describe("Create", func() {
		ginkgo.It("should provision the account, balances and invite", func() {
			emp, err := service.Create(ctx, validDTO())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(emp.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(emp.InviteStatus).To(gomega.Equal(userdm.InviteStatusInvited))
			gomega.Expect(balances.initialized).To(gomega.HaveKey(emp.ID))
			gomega.Expect(invites.issued).To(gomega.ContainElement(emp.UserID))
			gomega.Expect(eventBus.published).To(gomega.HaveLen(1))
			gomega.Expect(eventBus.published[0].EventType()).To(gomega.Equal(events.EventTypeEmployeeInvited))
		})

		ginkgo.It("should pass the joining date through to balance initialization", func() {
			emp, err := service.Create(ctx, validDTO())

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(balances.initialized[emp.ID].Month()).To(gomega.Equal(time.March))
		})

		ginkgo.It("should reject a duplicate email", func() {
			dto := validDTO()
			dto.Email = "mgr@acme.test"
			_, err := service.Create(ctx, dto)
			gomega.Expect(err).To(gomega.Equal(ErrDuplicateEmail))
		})

		ginkgo.It("should reject a duplicate employee code", func() {
			dto := validDTO()
			dto.EmployeeCode = "E001"
			_, err := service.Create(ctx, dto)
			gomega.Expect(err).To(gomega.Equal(ErrDuplicateCode))
		})

		ginkgo.It("should reject an unknown manager", func() {
			dto := validDTO()
			missing := int64(99)
			dto.ManagerID = &missing
			_, err := service.Create(ctx, dto)
			gomega.Expect(err).To(gomega.Equal(ErrManagerNotFound))
		})

		ginkgo.It("should promote the referenced manager to the manager role", func() {
			dto := validDTO()
			mgrID := int64(1)
			dto.ManagerID = &mgrID

			_, err := service.Create(ctx, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.roles[101]).To(gomega.Equal(userdm.RoleManager))
		})
	})

	ginkgo.Describe("Update", func() {
		var reportID int64

		ginkgo.BeforeEach(func() {
			dto := validDTO()
			mgrID := int64(1)
			dto.ManagerID = &mgrID
			emp, err := service.Create(ctx, dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			reportID = emp.ID
		})

		ginkgo.It("should demote the old manager once nobody reports to them", func() {
			gomega.Expect(mockRepo.roles[101]).To(gomega.Equal(userdm.RoleManager))

			_, err := service.Update(ctx, reportID, UpdateEmployeeDTO{FirstName: "Nina"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.roles[101]).To(gomega.Equal(userdm.RoleEmployee))
		})

		ginkgo.It("should reject self-management", func() {
			_, err := service.Update(ctx, reportID, UpdateEmployeeDTO{
				FirstName: "Nina",
				ManagerID: &reportID,
			})
			gomega.Expect(err).To(gomega.Equal(ErrSelfManager))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should cascade and demote the orphaned manager", func() {
			dto := validDTO()
			mgrID := int64(1)
			dto.ManagerID = &mgrID
			emp, err := service.Create(ctx, dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.roles[101]).To(gomega.Equal(userdm.RoleManager))

			err = service.Delete(ctx, emp.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.deleted).To(gomega.ContainElement(emp.ID))
			gomega.Expect(mockRepo.roles[101]).To(gomega.Equal(userdm.RoleEmployee))
		})

		ginkgo.It("should return not found for an unknown employee", func() {
			err := service.Delete(ctx, 99)
			gomega.Expect(err).To(gomega.Equal(ErrEmployeeNotFound))
		})
	})

	ginkgo.Describe("ResendInvite", func() {
		ginkgo.It("should issue a fresh token for a still-invited account", func() {
			emp, err := service.Create(ctx, validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.ResendInvite(ctx, emp.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(invites.issued).To(gomega.HaveLen(2))
		})

		ginkgo.It("should be a no-op for an already active account", func() {
			emp, err := service.Create(ctx, validDTO())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			emp.InviteStatus = userdm.InviteStatusActive

			err = service.ResendInvite(ctx, emp.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(invites.issued).To(gomega.HaveLen(1))
		})
	})
})
