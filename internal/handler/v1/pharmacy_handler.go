package v1

import (
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) createMedication(c *gin.Context) {
	var req CreateMedicationRequest
	if !h.bind(c, &req) {
		return
	}

	m, err := h.svc.Pharmacy.CreateMedication(c.Request.Context(), req.toCommand(), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, m)
}

func (h *Handler) listMedications(c *gin.Context) {
	out, err := h.svc.Pharmacy.ListMedications(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *Handler) restockMedication(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req RestockRequest
	if !h.bind(c, &req) {
		return
	}

	m, err := h.svc.Pharmacy.RestockMedication(c.Request.Context(), id, req.Quantity, middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}

func (h *Handler) prescribe(c *gin.Context) {
	var req PrescribeRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.svc.Pharmacy.Prescribe(c.Request.Context(), req.toCommand(), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *Handler) listPrescriptions(c *gin.Context) {
	q := &prescription.ListPrescriptionsQuery{}
	var ok bool
	if q.VisitID, ok = parseQueryUUID(c, "visit_id"); !ok {
		return
	}
	q.Page, q.PageSize = pageParams(c)

	out, err := h.svc.Pharmacy.ListPrescriptions(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Prescriptions, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}
