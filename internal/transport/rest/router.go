package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/hrplatform/leave-management/internal/auth"
	"github.com/hrplatform/leave-management/internal/department"
	"github.com/hrplatform/leave-management/internal/employee"
	"github.com/hrplatform/leave-management/internal/gcal"
	"github.com/hrplatform/leave-management/internal/holiday"
	"github.com/hrplatform/leave-management/internal/importer"
	"github.com/hrplatform/leave-management/internal/leave"
	"github.com/hrplatform/leave-management/internal/settings"
	"github.com/hrplatform/leave-management/internal/transport/middleware"
	"github.com/hrplatform/leave-management/internal/transport/swagger"
	"github.com/hrplatform/leave-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts. Nil entries are
// skipped so partial wiring (tests, disabled integrations) stays possible.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Leave      *leave.Handler
	Employee   *employee.Handler
	Department *department.Handler
	Holiday    *holiday.Handler
	Importer   *importer.Handler
	Calendar   *gcal.Handler
	Settings   *settings.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, uploadsDir string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Uploaded branding assets (logo, favicon)
	if uploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
		router.Handle("/uploads/*", fs)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
				sr.Post("/forgot-password", h.Auth.ForgotPassword)
				sr.Post("/reset-password", h.Auth.ResetPassword)
				sr.Post("/activate", h.Auth.ActivateInvite)
			})

			// OAuth redirect target carries no bearer token
			if h.Calendar != nil {
				r.Get("/calendar/callback", h.Calendar.Callback)
			}

			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)

				pr.Post("/auth/change-password", h.Auth.ChangePassword)

				if h.User != nil {
					pr.Get("/users/me", h.User.Me)
				}

				if h.Leave != nil {
					pr.Route("/leaves", func(lr chi.Router) {
						lr.Post("/", h.Leave.CreateLeave)
						lr.Get("/", h.Leave.ListMyLeaves)
						lr.Get("/{id}", h.Leave.GetLeave)
						lr.Patch("/{id}/cancel", h.Leave.CancelLeave)

						lr.Group(func(mr chi.Router) {
							mr.Use(auth.RequireApproveLeave())
							mr.Patch("/{id}/approve", h.Leave.ApproveLeave)
						})
						lr.Group(func(mr chi.Router) {
							mr.Use(auth.RequireRejectLeave())
							mr.Patch("/{id}/reject", h.Leave.RejectLeave)
						})
						lr.Group(func(mr chi.Router) {
							mr.Use(auth.RequireManager())
							mr.Get("/all", h.Leave.ListLeaves)
							mr.Get("/employee/{id}", h.Leave.ListEmployeeLeaves)
							if h.Importer != nil {
								mr.Get("/report", h.Importer.ExportLeaveReport)
							}
						})
					})

					pr.Get("/balances", h.Leave.GetMyBalances)
					pr.Group(func(mr chi.Router) {
						mr.Use(auth.RequireManager())
						mr.Get("/balances/{id}", h.Leave.GetEmployeeBalances)
					})
				}

				if h.Employee != nil {
					pr.Get("/team", h.Employee.GetTeam)

					pr.Route("/employees", func(er chi.Router) {
						er.Use(auth.RequireAdmin())
						er.Get("/", h.Employee.ListEmployees)
						er.Post("/", h.Employee.CreateEmployee)
						er.Get("/{id}", h.Employee.GetEmployee)
						er.Put("/{id}", h.Employee.UpdateEmployee)
						er.Delete("/{id}", h.Employee.DeleteEmployee)
						er.Post("/{id}/resend-invite", h.Employee.ResendInvite)

						if h.Importer != nil {
							er.Post("/import", h.Importer.ImportEmployees)
							er.Get("/export", h.Importer.ExportEmployees)
						}
					})
				}

				if h.Department != nil {
					pr.Route("/departments", func(dr chi.Router) {
						dr.Get("/", h.Department.GetDepartments)
						dr.Get("/{id}", h.Department.GetDepartment)

						dr.Group(func(ar chi.Router) {
							ar.Use(auth.RequireAdmin())
							ar.Post("/", h.Department.CreateDepartment)
							ar.Put("/{id}", h.Department.UpdateDepartment)
							ar.Delete("/{id}", h.Department.DeleteDepartment)
						})
					})
				}

				if h.Holiday != nil {
					pr.Route("/holidays", func(hr chi.Router) {
						hr.Get("/", h.Holiday.GetHolidays)

						hr.Group(func(ar chi.Router) {
							ar.Use(auth.RequireAdmin())
							ar.Post("/", h.Holiday.CreateHoliday)
							ar.Put("/{id}", h.Holiday.UpdateHoliday)
							ar.Delete("/{id}", h.Holiday.DeleteHoliday)
						})
					})
				}

				if h.Calendar != nil {
					pr.Route("/calendar", func(cr chi.Router) {
						cr.Post("/connect", h.Calendar.Connect)
						cr.Get("/status", h.Calendar.Status)
						cr.Delete("/disconnect", h.Calendar.Disconnect)
					})
				}

				if h.Settings != nil {
					pr.Get("/settings", h.Settings.GetSettings)

					pr.Group(func(ar chi.Router) {
						ar.Use(auth.RequireAdmin())
						ar.Put("/settings", h.Settings.UpdateSettings)
						ar.Post("/settings/logo", h.Settings.UploadLogo)
						ar.Post("/settings/favicon", h.Settings.UploadFavicon)
					})
				}
			})
		}
	})
}
