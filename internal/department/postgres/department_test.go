package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	balanceDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/balance"
	departmentDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/employee"
	holidayDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/holiday"
	leaveDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/leave"
	settingDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/setting"
	tokenDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/token"
	userDatamodel "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/department"
)

func TestDepartmentRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Department Repository Suite")
}

var _ = ginkgo.Describe("DepartmentRepository", func() {
	var (
		repo *DepartmentRepository
		db   *gorm.DB
		ctx  context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		// Migrate the full schema so every datamodel's tags stay
		// sqlite-compatible, not just the ones this repo touches.
		err = db.AutoMigrate(
			&userDatamodel.User{},
			&departmentDatamodel.Department{},
			&employeeDatamodel.Employee{},
			&leaveDatamodel.LeaveRequest{},
			&balanceDatamodel.LeaveBalance{},
			&holidayDatamodel.Holiday{},
			&tokenDatamodel.PasswordResetToken{},
			&tokenDatamodel.CalendarToken{},
			&tokenDatamodel.CalendarEventLink{},
			&settingDatamodel.Setting{},
		)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		repo = NewDepartmentRepository(db)
		ctx = context.Background()
	})

	ginkgo.It("creates and reads back a department", func() {
		dept := &department.Department{Name: "Engineering", Description: "builds the product"}
		gomega.Expect(repo.Create(ctx, dept)).To(gomega.Succeed())
		gomega.Expect(dept.ID).NotTo(gomega.BeZero())

		loaded, err := repo.GetByID(ctx, dept.ID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(loaded.Name).To(gomega.Equal("Engineering"))
	})

	ginkgo.It("finds departments by name", func() {
		gomega.Expect(repo.Create(ctx, &department.Department{Name: "Finance"})).To(gomega.Succeed())

		loaded, err := repo.GetByName(ctx, "Finance")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(loaded.Name).To(gomega.Equal("Finance"))

		_, err = repo.GetByName(ctx, "Nonexistent")
		gomega.Expect(err).To(gomega.MatchError(department.ErrDepartmentNotFound))
	})

	ginkgo.It("lists departments ordered by name", func() {
		gomega.Expect(repo.Create(ctx, &department.Department{Name: "Sales"})).To(gomega.Succeed())
		gomega.Expect(repo.Create(ctx, &department.Department{Name: "Engineering"})).To(gomega.Succeed())

		all, err := repo.GetAll(ctx)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(all).To(gomega.HaveLen(2))
		gomega.Expect(all[0].Name).To(gomega.Equal("Engineering"))
		gomega.Expect(all[1].Name).To(gomega.Equal("Sales"))
	})

	ginkgo.It("deletes departments", func() {
		dept := &department.Department{Name: "Temp"}
		gomega.Expect(repo.Create(ctx, dept)).To(gomega.Succeed())
		gomega.Expect(repo.Delete(ctx, dept.ID)).To(gomega.Succeed())

		_, err := repo.GetByID(ctx, dept.ID)
		gomega.Expect(err).To(gomega.MatchError(department.ErrDepartmentNotFound))
	})

	ginkgo.It("counts assigned employees", func() {
		dept := &department.Department{Name: "Support"}
		gomega.Expect(repo.Create(ctx, dept)).To(gomega.Succeed())

		user := userDatamodel.User{Email: "a@example.com", Name: "A", Role: "employee"}
		gomega.Expect(db.Create(&user).Error).To(gomega.Succeed())
		emp := employeeDatamodel.Employee{
			UserID:       user.ID,
			EmployeeCode: "EMP001",
			FirstName:    "A",
			DepartmentID: &dept.ID,
			JoiningDate:  time.Now(),
		}
		gomega.Expect(db.Create(&emp).Error).To(gomega.Succeed())

		count, err := repo.CountEmployees(ctx, dept.ID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(count).To(gomega.Equal(int64(1)))
	})
})
