package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batchplan-api/internal/middleware"
	"github.com/noah-isme/batchplan-api/internal/models"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Tokens        middleware.TokenValidator
	Batches       *BatchHandler
	Applications  *ApplicationHandler
	Attendance    *AttendanceHandler
	Stats         *StatsHandler
	Students      *StudentHandler
	Notifications *NotificationHandler
}

// Register mounts every endpoint on api with its role requirements.
func (r Routes) Register(api *gin.RouterGroup) {
	api.POST("/applications", r.Applications.Submit)

	auth := middleware.JWT(r.Tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	facultyOnly := middleware.RequireRoles(models.RoleFaculty)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)
	studentOnly := middleware.RequireRoles(models.RoleStudent)

	admin := api.Group("/admin", auth, adminOnly)
	admin.POST("/batches/create", r.Batches.CreateBatches)
	admin.POST("/faculty-assignments", r.Batches.AssignFaculty)
	admin.GET("/students/pending/:year", r.Batches.PendingPool)
	admin.GET("/stats", r.Stats.Get)
	admin.GET("/applications", r.Applications.ListPending)
	admin.POST("/applications/:id/approve", r.Applications.Approve)
	admin.POST("/applications/:id/reject", r.Applications.Reject)
	admin.POST("/notifications", r.Notifications.Publish)

	batches := api.Group("/batches", auth, staff)
	batches.GET("", r.Batches.List)
	batches.GET("/:id", r.Batches.Get)
	batches.GET("/:id/roster.pdf", r.Batches.RosterPDF)
	batches.GET("/:id/roster.csv", r.Batches.RosterCSV)

	faculty := api.Group("/faculty", auth, facultyOnly)
	faculty.GET("/assignments", r.Batches.FacultyAssignments)
	faculty.POST("/attendance", r.Attendance.Submit)
	faculty.POST("/marks", r.Students.SubmitMarks)

	api.GET("/students/me", auth, studentOnly, r.Students.Dashboard)

	notifications := api.Group("/notifications", auth)
	notifications.GET("", r.Notifications.Feed)
	notifications.POST("/:id/read", r.Notifications.MarkRead)
}
