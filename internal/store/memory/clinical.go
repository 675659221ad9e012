package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type patientRepo struct{ t *tables }

func (r patientRepo) Create(_ context.Context, p *patient.Patient) error {
	ensureID(&p.ID)
	p.CreatedAt = r.t.stamp()
	p.UpdatedAt = p.CreatedAt
	r.t.patients[p.ID] = copyOf(p)
	return nil
}

func (r patientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	return get(r.t.patients, "patient", id)
}

func (r patientRepo) List(_ context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	var matched []*patient.Patient
	for _, p := range r.t.patients {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LastName != matched[j].LastName {
			return matched[i].LastName < matched[j].LastName
		}
		return matched[i].FirstName < matched[j].FirstName
	})

	items, total := paginate(matched, q.Page, q.PageSize)
	return &patient.PagedPatients{
		Patients:   items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}

type doctorRepo struct{ t *tables }

func (r doctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	ensureID(&d.ID)
	d.CreatedAt = r.t.stamp()
	d.UpdatedAt = d.CreatedAt
	r.t.doctors[d.ID] = copyOf(d)
	return nil
}

func (r doctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return get(r.t.doctors, "doctor", id)
}

// GetForUpdate needs no lock of its own: the store mutex is held for the
// whole transaction.
func (r doctorRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return r.GetByID(ctx, id)
}

func (r doctorRepo) List(_ context.Context) ([]*doctor.Doctor, error) {
	out := make([]*doctor.Doctor, 0, len(r.t.doctors))
	for _, d := range r.t.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return copies(out), nil
}

type roomRepo struct{ t *tables }

func (r roomRepo) Create(_ context.Context, rm *room.Room) error {
	for _, existing := range r.t.rooms {
		if existing.Name == rm.Name {
			return room.ErrRoomNameTaken
		}
	}
	ensureID(&rm.ID)
	rm.CreatedAt = r.t.stamp()
	r.t.rooms[rm.ID] = copyOf(rm)
	return nil
}

func (r roomRepo) GetByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	return get(r.t.rooms, "room", id)
}

func (r roomRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return r.GetByID(ctx, id)
}

func (r roomRepo) List(_ context.Context) ([]*room.Room, error) {
	out := make([]*room.Room, 0, len(r.t.rooms))
	for _, rm := range r.t.rooms {
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return copies(out), nil
}

type appointmentRepo struct{ t *tables }

func (r appointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	ensureID(&a.ID)
	a.CreatedAt = r.t.stamp()
	a.UpdatedAt = a.CreatedAt
	r.t.appointments[a.ID] = copyOf(a)
	return nil
}

func (r appointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return get(r.t.appointments, "appointment", id)
}

func (r appointmentRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r appointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	existing, ok := r.t.appointments[a.ID]
	if !ok {
		return fmt.Errorf("updating appointment %s: no such row", a.ID)
	}
	updated := copyOf(existing)
	updated.Status = a.Status
	updated.CancelledAt = a.CancelledAt
	updated.CancellationReason = a.CancellationReason
	updated.CompletedAt = a.CompletedAt
	updated.UpdatedAt = r.t.stamp()
	r.t.appointments[a.ID] = updated
	a.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r appointmentRepo) FindOverlapping(_ context.Context, q appointment.OverlapQuery) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.t.appointments {
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.RoomID != nil && a.RoomID != *q.RoomID {
			continue
		}
		if a.Blocks() && a.Slot().Overlaps(q.Slot) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return copies(out), nil
}

func (r appointmentRepo) List(_ context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	var matched []*appointment.Appointment
	for _, a := range r.t.appointments {
		switch {
		case q.PatientID != nil && a.PatientID != *q.PatientID,
			q.DoctorID != nil && a.DoctorID != *q.DoctorID,
			q.RoomID != nil && a.RoomID != *q.RoomID,
			q.Status != nil && a.Status != *q.Status,
			q.DateFrom != nil && appointment.CompareDates(a.Date, *q.DateFrom) < 0,
			q.DateTo != nil && appointment.CompareDates(a.Date, *q.DateTo) > 0:
			continue
		}
		matched = append(matched, a)
	}
	// newest day first, earliest slot first within a day
	sort.Slice(matched, func(i, j int) bool {
		if c := appointment.CompareDates(matched[i].Date, matched[j].Date); c != 0 {
			return c > 0
		}
		return matched[i].StartTime < matched[j].StartTime
	})

	items, total := paginate(matched, q.Page, q.PageSize)
	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   store.TotalPages(total, q.PageSize),
	}, nil
}

func (r appointmentRepo) ListScheduledBetween(_ context.Context, from, to datatypes.Date) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range r.t.appointments {
		if a.Status != appointment.StatusScheduled ||
			appointment.CompareDates(a.Date, from) < 0 ||
			appointment.CompareDates(a.Date, to) > 0 {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := appointment.CompareDates(out[i].Date, out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].StartTime < out[j].StartTime
	})
	return copies(out), nil
}

type visitRepo struct{ t *tables }

func (r visitRepo) Create(_ context.Context, v *visit.Visit) error {
	for _, existing := range r.t.visits {
		if existing.AppointmentID == v.AppointmentID {
			return fmt.Errorf("appointment %s already has visit %s", v.AppointmentID, existing.ID)
		}
	}
	ensureID(&v.ID)
	v.CreatedAt = r.t.stamp()
	r.t.visits[v.ID] = copyOf(v)
	return nil
}

func (r visitRepo) GetByID(_ context.Context, id uuid.UUID) (*visit.Visit, error) {
	return get(r.t.visits, "visit", id)
}

func (r visitRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	return r.GetByID(ctx, id)
}

func (r visitRepo) GetByAppointmentID(_ context.Context, appointmentID uuid.UUID) (*visit.Visit, error) {
	for _, v := range r.t.visits {
		if v.AppointmentID == appointmentID {
			return copyOf(v), nil
		}
	}
	return nil, domain.NewNotFound("visit for appointment", appointmentID)
}

func (r visitRepo) List(_ context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	invoiced := make(map[uuid.UUID]bool, len(r.t.invoices))
	for _, inv := range r.t.invoices {
		invoiced[inv.VisitID] = true
	}

	var matched []*visit.Visit
	for _, v := range r.t.visits {
		switch {
		case q.PatientID != nil && v.PatientID != *q.PatientID,
			q.DoctorID != nil && v.DoctorID != *q.DoctorID,
			q.Uninvoiced && invoiced[v.ID]:
			continue
		}
		matched = append(matched, v)
	}
	sort.Slice(matched, func(i, j int) bool {
		if c := appointment.CompareDates(matched[i].VisitDate, matched[j].VisitDate); c != 0 {
			return c > 0
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	items, total := paginate(matched, q.Page, q.PageSize)
	return &visit.PagedVisits{
		Visits:     items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	}, nil
}
