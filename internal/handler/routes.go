package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plant-attendance-api/internal/middleware"
	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Workers    *WorkerHandler
	Attendance *AttendanceHandler
	Directory  *DirectoryHandler
	Users      *UserHandler
	Sync       *SyncHandler
	Exports    *ExportHandler
	Dashboard  *DashboardHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes wires the full API surface under the prefix. Reads are
// open to every role; roster management belongs to Admin and HR, daily
// marking to Admin and Supervisor, and account or directory changes to
// Admin alone.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor, models.RoleHR)
	roster := middleware.RequireRoles(models.RoleAdmin, models.RoleHR)
	marking := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor)
	admin := middleware.RequireRoles(models.RoleAdmin)

	secured.GET("/auth/me", anyRole, h.Auth.Me)

	secured.GET("/workers", anyRole, h.Workers.List)
	secured.POST("/workers", roster, h.Workers.Add)
	secured.DELETE("/workers", roster, h.Workers.DeleteByName)
	secured.GET("/workers/bulk/template", roster, h.Workers.Template)
	secured.POST("/workers/bulk", roster, h.Workers.BulkUpload)
	secured.GET("/workers/:id", anyRole, h.Workers.Get)
	secured.DELETE("/workers/:id", roster, h.Workers.Delete)
	secured.POST("/workers/:id/transfer", roster, h.Workers.Transfer)
	secured.POST("/workers/:id/activate", roster, h.Workers.Activate)
	secured.POST("/workers/:id/deactivate", roster, h.Workers.Deactivate)

	secured.GET("/attendance", anyRole, h.Attendance.Register)
	secured.POST("/attendance", marking, h.Attendance.Mark)
	secured.POST("/attendance/batch", marking, h.Attendance.BatchMark)
	secured.DELETE("/attendance", admin, h.Attendance.Clear)
	secured.GET("/attendance/monthly", anyRole, h.Attendance.MonthlyStats)
	secured.GET("/attendance/grid", anyRole, h.Attendance.Grid)

	secured.GET("/sections", anyRole, h.Directory.ListSections)
	secured.POST("/sections", admin, h.Directory.AddSection)
	secured.DELETE("/sections/:id", admin, h.Directory.DeleteSection)
	secured.GET("/departments", anyRole, h.Directory.ListDepartments)
	secured.POST("/departments", admin, h.Directory.AddDepartment)
	secured.DELETE("/departments/:id", admin, h.Directory.DeleteDepartment)
	secured.GET("/shifts", anyRole, h.Directory.ListShifts)
	secured.POST("/shifts", admin, h.Directory.AddShift)
	secured.DELETE("/shifts/:id", admin, h.Directory.DeleteShift)
	secured.DELETE("/admin/tables/:table", admin, h.Directory.ClearTable)

	secured.GET("/users", admin, h.Users.List)
	secured.POST("/users", admin, h.Users.Create)
	secured.POST("/users/:id/activate", admin, h.Users.Activate)
	secured.POST("/users/:id/deactivate", admin, h.Users.Deactivate)
	secured.POST("/users/:id/password", admin, h.Users.ChangePassword)

	secured.GET("/sync/status", anyRole, h.Sync.Status)
	secured.POST("/sync/run", marking, h.Sync.Run)

	secured.GET("/exports/daily", anyRole, h.Exports.Daily)
	secured.GET("/exports/monthly", anyRole, h.Exports.Monthly)
	secured.GET("/exports/grid", anyRole, h.Exports.Grid)
	secured.GET("/exports/roster", anyRole, h.Exports.Roster)

	secured.GET("/dashboard", anyRole, h.Dashboard.Summary)
}
