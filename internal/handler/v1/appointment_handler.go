package v1

import (
	"net/http"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func (h *Handler) scheduleAppointment(c *gin.Context) {
	var req ScheduleAppointmentRequest
	if !h.bind(c, &req) {
		return
	}

	a, err := h.svc.Scheduling.ScheduleAppointment(c.Request.Context(), req.toCommand(), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *Handler) listAppointments(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{}
	var ok bool
	if q.PatientID, ok = parseQueryUUID(c, "patient_id"); !ok {
		return
	}
	if q.DoctorID, ok = parseQueryUUID(c, "doctor_id"); !ok {
		return
	}
	if q.RoomID, ok = parseQueryUUID(c, "room_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := appointment.Status(strings.ToUpper(raw))
		q.Status = &status
	}
	if q.DateFrom, ok = parseQueryDate(c, "date_from"); !ok {
		return
	}
	if q.DateTo, ok = parseQueryDate(c, "date_to"); !ok {
		return
	}
	q.Page, q.PageSize = pageParams(c)

	out, err := h.svc.Scheduling.ListAppointments(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Appointments, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}

func (h *Handler) getAppointment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Scheduling.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req CancelAppointmentRequest
	if !h.bindOptional(c, &req) {
		return
	}

	a, err := h.svc.Scheduling.CancelAppointment(c.Request.Context(), id,
		&appointment.CancelAppointmentCommand{Reason: req.Reason}, middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) completeAppointment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req CompleteAppointmentRequest
	if !h.bindOptional(c, &req) {
		return
	}

	v, err := h.svc.Visits.CompleteAppointment(c.Request.Context(), id, &visit.CompleteAppointmentCommand{
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
		Vitals:    req.Vitals,
	}, middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, v)
}

func (h *Handler) listVisits(c *gin.Context) {
	q := &visit.ListVisitsQuery{}
	var ok bool
	if q.PatientID, ok = parseQueryUUID(c, "patient_id"); !ok {
		return
	}
	if q.DoctorID, ok = parseQueryUUID(c, "doctor_id"); !ok {
		return
	}
	q.Page, q.PageSize = pageParams(c)

	out, err := h.svc.Visits.ListVisits(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Visits, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}

func (h *Handler) getVisit(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Visits.GetVisit(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, v)
}

func parseQueryDate(c *gin.Context, key string) (*datatypes.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := appointment.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}
