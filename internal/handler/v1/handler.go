// Package v1 is the JSON API of the clinic, mounted under /api/v1.
package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Services struct {
	Auth       *service.AuthService
	Patients   *service.PatientService
	Doctors    *service.DoctorService
	Scheduling *service.SchedulingService
	Visits     *service.VisitService
	Pharmacy   *service.PharmacyService
	Billing    *service.BillingService
	Reports    *service.ReportService
}

type Handler struct {
	svc      Services
	validate *validator.CustomValidator
	reports  config.ReportsConfig
	log      *zap.Logger
}

func NewHandler(svc Services, reports config.ReportsConfig, log *zap.Logger) *Handler {
	return &Handler{svc: svc, validate: validator.NewValidator(), reports: reports, log: log}
}

// Register mounts every route. authenticate guards everything except login
// and refresh, which go through authLimit instead.
func (h *Handler) Register(api *gin.RouterGroup, authenticate, authLimit gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authLimit, h.login)
	authGroup.POST("/refresh", authLimit, h.refresh)
	authGroup.POST("/logout", authenticate, h.logout)
	authGroup.POST("/change-password", authenticate, h.changePassword)

	r := api.Group("", authenticate)

	r.POST("/patients", h.createPatient)
	r.GET("/patients", h.listPatients)
	r.GET("/patients/:id", h.getPatient)

	r.POST("/doctors", h.createDoctor)
	r.GET("/doctors", h.listDoctors)
	r.GET("/doctors/:id", h.getDoctor)

	r.POST("/rooms", h.createRoom)
	r.GET("/rooms", h.listRooms)

	r.POST("/appointments", h.scheduleAppointment)
	r.GET("/appointments", h.listAppointments)
	r.GET("/appointments/:id", h.getAppointment)
	r.POST("/appointments/:id/cancel", h.cancelAppointment)
	r.POST("/appointments/:id/complete", h.completeAppointment)

	r.GET("/visits", h.listVisits)
	r.GET("/visits/:id", h.getVisit)

	r.POST("/medications", h.createMedication)
	r.GET("/medications", h.listMedications)
	r.POST("/medications/:id/restock", h.restockMedication)

	r.POST("/prescriptions", h.prescribe)
	r.GET("/prescriptions", h.listPrescriptions)

	r.POST("/invoices", h.generateInvoice)
	r.GET("/invoices", h.listInvoices)
	r.GET("/invoices/uninvoiced-visits", h.listUninvoicedVisits)
	r.GET("/invoices/:id", h.getInvoice)
	r.POST("/invoices/:id/payments", h.recordPayment)
	r.GET("/payments", h.listPayments)

	r.GET("/reports/upcoming-appointments", h.upcomingAppointments)
	r.GET("/reports/low-stock", h.lowStock)
}

// bind decodes the JSON body into obj and runs its validate tags.
func (h *Handler) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	if err := h.validate.Validate(obj); err != nil {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: h.validate.FormatValidationErrors(err),
		})
		return false
	}
	return true
}

// bindOptional is bind for endpoints whose body may be empty.
func (h *Handler) bindOptional(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bind(c, obj)
}
