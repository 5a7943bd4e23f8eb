package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/analytics"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/department"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	"github.com/frahmantamala/timesheet-management/internal/report"
	"github.com/frahmantamala/timesheet-management/internal/settings"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Department   *department.Handler
	Timesheet    *timesheet.Handler
	Analytics    *analytics.Handler
	Settings     *settings.Handler
	Report       *report.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	roles := auth.NewRoleAuthorization(logger)

	// Apply global middleware
	router.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowedOrigins: allowedOrigins}))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)
			pr.Post("/auth/change-password", h.Auth.ChangePassword)
			pr.Group(func(ar chi.Router) {
				ar.Use(roles.RequireAdmin())
				ar.Post("/auth/reset-password", h.Auth.ResetPassword)
			})

			// User routes. The service also scopes by role; the gates
			// here keep staff requests from reaching it at all.
			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(mr chi.Router) {
					mr.Use(roles.RequireManager())
					mr.Get("/", h.User.ListUsers)
					mr.Get("/compliance", h.User.GetCompliance)
				})
				ur.Get("/{id}", h.User.GetUser)

				ur.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Post("/", h.User.CreateUser)
					ar.Patch("/{id}", h.User.UpdateUser)
					ar.Delete("/{id}", h.User.DeactivateUser)
				})
			})

			// Department and task routes
			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.ListDepartments)
				dr.Get("/{id}", h.Department.GetDepartment)
				dr.Get("/{id}/tasks", h.Department.ListTasks)

				dr.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Post("/", h.Department.CreateDepartment)
					ar.Patch("/{id}", h.Department.UpdateDepartment)
					ar.Delete("/{id}", h.Department.DeleteDepartment)
				})

				// Task management is open to supervisors of the owning
				// department; the service checks the boundary.
				dr.Group(func(mr chi.Router) {
					mr.Use(roles.RequireManager())
					mr.Post("/{id}/tasks", h.Department.CreateTask)
					mr.Patch("/{id}/tasks/{taskID}", h.Department.UpdateTask)
					mr.Delete("/{id}/tasks/{taskID}", h.Department.DeleteTask)
				})
			})

			// Timesheet entry routes
			pr.Route("/entries", func(er chi.Router) {
				er.Get("/", h.Timesheet.ListEntries)
				er.Post("/", h.Timesheet.CreateEntry)
				er.Get("/{id}", h.Timesheet.GetEntry)
				er.Patch("/{id}", h.Timesheet.UpdateEntry)
				er.Delete("/{id}", h.Timesheet.DeleteEntry)
			})

			// Analytics routes. Staff get their own numbers through the
			// same endpoints via scope resolution.
			pr.Route("/analytics", func(ar chi.Router) {
				ar.Get("/summary", h.Analytics.GetSummary)
				ar.Get("/departments", h.Analytics.GetDepartments)
				ar.Get("/users", h.Analytics.GetUsers)
				ar.Get("/trends", h.Analytics.GetTrends)
				ar.Get("/export", h.Analytics.Export)
			})

			// Per-user settings
			pr.Route("/settings", func(sr chi.Router) {
				sr.Get("/", h.Settings.GetSettings)
				sr.Put("/", h.Settings.UpdateSettings)
				sr.Delete("/", h.Settings.ResetSettings)
			})

			// Custom report routes
			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/", h.Report.ListReports)
				rr.Post("/", h.Report.CreateReport)
				rr.Get("/{id}", h.Report.GetReport)
				rr.Patch("/{id}", h.Report.UpdateReport)
				rr.Delete("/{id}", h.Report.DeleteReport)
				rr.Put("/{id}/schedule", h.Report.ScheduleReport)
				rr.Post("/{id}/generate", h.Report.GenerateReport)
				rr.Get("/{id}/export", h.Report.ExportReport)
			})

			// Notifications
			pr.Group(func(ar chi.Router) {
				ar.Use(roles.RequireAdmin())
				ar.Post("/notifications/compliance", h.Notification.SendComplianceNotice)
			})
		})
	})
}
