package v1

import (
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) createPatient(c *gin.Context) {
	var req CreatePatientRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.svc.Patients.CreatePatient(c.Request.Context(), req.toCommand(), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *Handler) listPatients(c *gin.Context) {
	page, pageSize := pageParams(c)
	out, err := h.svc.Patients.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Patients, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}

func (h *Handler) getPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) createDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !h.bind(c, &req) {
		return
	}

	d, err := h.svc.Doctors.CreateDoctor(c.Request.Context(), req.toCommand(), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *Handler) listDoctors(c *gin.Context) {
	out, err := h.svc.Doctors.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *Handler) getDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Doctors.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if !h.bind(c, &req) {
		return
	}

	r, err := h.svc.Doctors.CreateRoom(c.Request.Context(), req.Name, middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, r)
}

func (h *Handler) listRooms(c *gin.Context) {
	out, err := h.svc.Doctors.ListRooms(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}
