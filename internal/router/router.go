package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/handler"
	"github.com/noah-isme/escola-api/internal/middleware"
	"github.com/noah-isme/escola-api/internal/models"
)

// Handlers are the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Auth          *handler.AuthHandler
	Settings      *handler.SettingsHandler
	Students      *handler.StudentHandler
	Classes       *handler.ClassOfferingHandler
	Enrollments   *handler.EnrollmentHandler
	Installments  *handler.InstallmentHandler
	Schedule      *handler.ScheduleHandler
	Announcements *handler.AnnouncementHandler
	Exports       *handler.ExportHandler
	Me            *handler.MeHandler
}

// Deps carries the cross cutting collaborators of the route table.
type Deps struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditWriter
	Logger *zap.Logger
}

// Register mounts every API route on r under prefix.
func Register(r gin.IRouter, prefix string, h Handlers, d Deps) {
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.Audit, d.Logger, action, resource)
	}

	auth := api.Group("/auth")
	auth.POST("/admin/login", h.Auth.AdminLogin)
	auth.POST("/student/login", h.Auth.StudentLogin)
	auth.POST("/refresh", h.Auth.Refresh)

	api.GET("/settings", h.Settings.Get)
	api.GET("/exports/download/:token", h.Exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.Tokens))
	secured.POST("/auth/logout", h.Auth.Logout)
	secured.PUT("/auth/password", h.Auth.ChangePassword)

	admin := secured.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.PUT("/settings", h.Settings.Save)

	students := admin.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/cpf/:cpf", h.Students.CheckCPF)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.POST("/:id/account", audit(models.AuditActionAccountCreate, "student"), h.Students.RegisterAccount)

	classes := admin.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.PUT("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)

	enrollments := admin.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", audit(models.AuditActionEnroll, "enrollment"), h.Enrollments.Enroll)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.POST("/:id/cancel", audit(models.AuditActionEnrollmentCancel, "enrollment"), h.Enrollments.Cancel)
	enrollments.GET("/:id/installments", h.Enrollments.Installments)

	installments := admin.Group("/installments")
	installments.GET("", h.Installments.List)
	installments.POST("/:id/pay", audit(models.AuditActionPaymentRecord, "installment"), h.Installments.Pay)
	installments.POST("/:id/cancel", audit(models.AuditActionInstallmentVoid, "installment"), h.Installments.Cancel)
	installments.POST("/:id/overdue", audit(models.AuditActionInstallmentLate, "installment"), h.Installments.MarkOverdue)
	installments.PATCH("/:id/amount", audit(models.AuditActionInstallmentEdit, "installment"), h.Installments.EditAmount)

	schedule := admin.Group("/schedule/slots")
	schedule.GET("", h.Schedule.Grid)
	schedule.POST("", h.Schedule.AddSlot)
	schedule.DELETE("/:id", h.Schedule.RemoveSlot)

	announcements := admin.Group("/announcements")
	announcements.GET("", h.Announcements.List)
	announcements.POST("", h.Announcements.Create)
	announcements.GET("/:id", h.Announcements.Get)
	announcements.PUT("/:id", h.Announcements.Update)
	announcements.DELETE("/:id", h.Announcements.Delete)
	announcements.POST("/:id/publish", h.Announcements.TogglePublished)

	exports := admin.Group("/exports/ledger")
	exports.POST("", h.Exports.RequestLedger)
	exports.GET("/:id", h.Exports.Status)

	me := secured.Group("/me")
	me.Use(middleware.RequireStudent())
	me.GET("/profile", h.Me.Profile)
	me.GET("/enrollments", h.Me.Enrollments)
	me.GET("/installments", h.Me.Installments)
	me.GET("/schedule", h.Me.Schedule)
	me.GET("/announcements", h.Me.Announcements)
}
