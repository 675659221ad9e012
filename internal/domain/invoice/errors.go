package invoice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrDuplicateInvoice = errors.New("visit already has an invoice")

type DuplicateInvoiceError struct {
	VisitID   uuid.UUID
	InvoiceID uuid.UUID // zero when the existing invoice id is unknown
}

func (e *DuplicateInvoiceError) Error() string {
	if e.InvoiceID == uuid.Nil {
		return fmt.Sprintf("visit %s already has an invoice", e.VisitID)
	}
	return fmt.Sprintf("visit %s already has invoice %s", e.VisitID, e.InvoiceID)
}

func (e *DuplicateInvoiceError) Is(target error) bool {
	return target == ErrDuplicateInvoice
}
