package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=12"`
}

type CreatePatientRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"required,isodate"`
	Sex         string `json:"sex" validate:"required,oneof=F M O"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func (r CreatePatientRequest) toCommand() *patient.CreatePatientCommand {
	dob, _ := time.Parse("2006-01-02", r.DateOfBirth)
	return &patient.CreatePatientCommand{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: dob,
		Sex:         patient.Sex(r.Sex),
		Phone:       r.Phone,
		Email:       r.Email,
	}
}

type CreateDoctorRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	Email          string `json:"email" validate:"omitempty,email"`
}

func (r CreateDoctorRequest) toCommand() *doctor.CreateDoctorCommand {
	return &doctor.CreateDoctorCommand{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Specialization: r.Specialization,
		Phone:          r.Phone,
		Email:          r.Email,
	}
}

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ScheduleAppointmentRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	RoomID    string `json:"room_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,isodate"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// toCommand assumes the request passed validation.
func (r ScheduleAppointmentRequest) toCommand() *appointment.CreateAppointmentCommand {
	date, _ := appointment.ParseDate(r.Date)
	start, _ := appointment.ParseClock(r.StartTime)
	end, _ := appointment.ParseClock(r.EndTime)
	return &appointment.CreateAppointmentCommand{
		PatientID: uuid.MustParse(r.PatientID),
		DoctorID:  uuid.MustParse(r.DoctorID),
		RoomID:    uuid.MustParse(r.RoomID),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Notes:     r.Notes,
	}
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CompleteAppointmentRequest struct {
	Diagnosis string        `json:"diagnosis" validate:"max=5000"`
	Notes     string        `json:"notes" validate:"max=5000"`
	Vitals    *visit.Vitals `json:"vitals"`
}

type CreateMedicationRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	StockQty  int             `json:"stock_qty" validate:"gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (r CreateMedicationRequest) toCommand() *medication.CreateMedicationCommand {
	return &medication.CreateMedicationCommand{Name: r.Name, StockQty: r.StockQty, UnitPrice: r.UnitPrice}
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type PrescribeRequest struct {
	VisitID      string `json:"visit_id" validate:"required,uuid"`
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	Dosage       string `json:"dosage" validate:"max=200"`
}

func (r PrescribeRequest) toCommand() *prescription.CreatePrescriptionCommand {
	return &prescription.CreatePrescriptionCommand{
		VisitID:      uuid.MustParse(r.VisitID),
		MedicationID: uuid.MustParse(r.MedicationID),
		Quantity:     r.Quantity,
		Dosage:       r.Dosage,
	}
}

type GenerateInvoiceRequest struct {
	VisitID string `json:"visit_id" validate:"required,uuid"`
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=CASH CARD UPI"`
	Reference string          `json:"reference" validate:"max=100"`
}

func (r RecordPaymentRequest) toCommand(invoiceID uuid.UUID) *invoice.RecordPaymentCommand {
	return &invoice.RecordPaymentCommand{
		InvoiceID: invoiceID,
		Amount:    r.Amount,
		Method:    invoice.Method(r.Method),
		Reference: r.Reference,
	}
}
