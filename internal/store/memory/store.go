// Package memory is an in-process implementation of store.Store. A single
// mutex serialises transactions and a rollback restores the snapshot taken
// when the transaction began, so every transaction is serializable.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/room"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/google/uuid"
)

var ErrClosed = errors.New("memory store is closed")

var _ store.Store = (*Store)(nil)

// Stored values are never mutated in place. Writes replace the map entry
// with a fresh copy, which makes a shallow map copy a valid snapshot.
type tables struct {
	patients      map[uuid.UUID]*patient.Patient
	doctors       map[uuid.UUID]*doctor.Doctor
	rooms         map[uuid.UUID]*room.Room
	appointments  map[uuid.UUID]*appointment.Appointment
	visits        map[uuid.UUID]*visit.Visit
	medications   map[uuid.UUID]*medication.Medication
	prescriptions map[uuid.UUID]*prescription.Prescription
	invoices      map[uuid.UUID]*invoice.Invoice
	payments      map[uuid.UUID]*invoice.Payment
	users         map[uuid.UUID]*domain.User
	auditLogs     []*domain.AuditLog

	lastStamp time.Time
}

func newTables() *tables {
	return &tables{
		patients:      map[uuid.UUID]*patient.Patient{},
		doctors:       map[uuid.UUID]*doctor.Doctor{},
		rooms:         map[uuid.UUID]*room.Room{},
		appointments:  map[uuid.UUID]*appointment.Appointment{},
		visits:        map[uuid.UUID]*visit.Visit{},
		medications:   map[uuid.UUID]*medication.Medication{},
		prescriptions: map[uuid.UUID]*prescription.Prescription{},
		invoices:      map[uuid.UUID]*invoice.Invoice{},
		payments:      map[uuid.UUID]*invoice.Payment{},
		users:         map[uuid.UUID]*domain.User{},
	}
}

func (t *tables) snapshot() *tables {
	return &tables{
		patients:      cloneMap(t.patients),
		doctors:       cloneMap(t.doctors),
		rooms:         cloneMap(t.rooms),
		appointments:  cloneMap(t.appointments),
		visits:        cloneMap(t.visits),
		medications:   cloneMap(t.medications),
		prescriptions: cloneMap(t.prescriptions),
		invoices:      cloneMap(t.invoices),
		payments:      cloneMap(t.payments),
		users:         cloneMap(t.users),
		auditLogs:     t.auditLogs[:len(t.auditLogs):len(t.auditLogs)],
		lastStamp:     t.lastStamp,
	}
}

// stamp returns a strictly increasing timestamp so that newest-first
// listings stay stable for records created within one clock tick.
func (t *tables) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(t.lastStamp) {
		now = t.lastStamp.Add(time.Nanosecond)
	}
	t.lastStamp = now
	return now
}

type Store struct {
	mu     sync.Mutex
	data   *tables
	closed bool
}

func New() *Store {
	return &Store{data: newTables()}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	saved := s.data.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.data = saved
			panic(r)
		}
		if err != nil {
			s.data = saved
		}
	}()

	return fn(ctx, &tx{t: s.data})
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type tx struct {
	t *tables
}

func (x *tx) Patients() patient.Repository { return patientRepo{x.t} }
func (x *tx) Doctors() doctor.Repository { return doctorRepo{x.t} }
func (x *tx) Rooms() room.Repository { return roomRepo{x.t} }
func (x *tx) Appointments() appointment.Repository { return appointmentRepo{x.t} }
func (x *tx) Visits() visit.Repository { return visitRepo{x.t} }
func (x *tx) Medications() medication.Repository { return medicationRepo{x.t} }
func (x *tx) Prescriptions() prescription.Repository { return prescriptionRepo{x.t} }
func (x *tx) Invoices() invoice.Repository { return invoiceRepo{x.t} }
func (x *tx) Payments() invoice.PaymentRepository { return paymentRepo{x.t} }
func (x *tx) Users() domain.UserRepository { return userRepo{x.t} }
func (x *tx) AuditLogs() domain.AuditRepository { return auditRepo{x.t} }

func cloneMap[V any](m map[uuid.UUID]*V) map[uuid.UUID]*V {
	out := make(map[uuid.UUID]*V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyOf[V any](v *V) *V {
	c := *v
	return &c
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// get returns a copy of m[id] or a NotFoundError naming resource.
func get[V any](m map[uuid.UUID]*V, resource string, id uuid.UUID) (*V, error) {
	v, ok := m[id]
	if !ok {
		return nil, domain.NewNotFound(resource, id)
	}
	return copyOf(v), nil
}

// paginate returns the requested page of items and the total count.
func paginate[V any](items []*V, page, pageSize int) ([]*V, int64) {
	total := int64(len(items))
	start := store.Offset(page, pageSize)
	if start >= len(items) {
		return []*V{}, total
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out := make([]*V, 0, end-start)
	for _, v := range items[start:end] {
		out = append(out, copyOf(v))
	}
	return out, total
}

func copies[V any](items []*V) []*V {
	out := make([]*V, 0, len(items))
	for _, v := range items {
		out = append(out, copyOf(v))
	}
	return out
}
