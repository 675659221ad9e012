package v1

import (
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) generateInvoice(c *gin.Context) {
	var req GenerateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}

	inv, err := h.svc.Billing.GenerateInvoice(c.Request.Context(),
		&invoice.GenerateInvoiceCommand{VisitID: uuid.MustParse(req.VisitID)}, middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, inv)
}

func (h *Handler) listInvoices(c *gin.Context) {
	q := &invoice.ListInvoicesQuery{}
	var ok bool
	if q.PatientID, ok = parseQueryUUID(c, "patient_id"); !ok {
		return
	}
	if raw := c.Query("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid paid: must be true or false")
			return
		}
		q.Paid = &paid
	}
	q.Page, q.PageSize = pageParams(c)

	out, err := h.svc.Billing.ListInvoices(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Invoices, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}

func (h *Handler) listUninvoicedVisits(c *gin.Context) {
	page, pageSize := pageParams(c)
	out, err := h.svc.Billing.ListUninvoicedVisits(c.Request.Context(), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Visits, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	st, err := h.svc.Billing.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, st)
}

func (h *Handler) recordPayment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bind(c, &req) {
		return
	}

	r, err := h.svc.Billing.RecordPayment(c.Request.Context(), req.toCommand(id), middleware.CallerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, r)
}

func (h *Handler) listPayments(c *gin.Context) {
	page, pageSize := pageParams(c)
	out, err := h.svc.Billing.ListPayments(c.Request.Context(), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondPaged(c, out.Payments, out.TotalCount, out.Page, out.PageSize, out.TotalPages)
}
