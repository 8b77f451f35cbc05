package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/repository"
)

// MockAuthorizer is a mock implementation of Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, token string, role domain.Role) bool {
	args := m.Called(ctx, token, role)
	return args.Bool(0)
}

func (m *MockAuthorizer) ExtractSubject(token string) (string, bool) {
	args := m.Called(token)
	return args.String(0), args.Bool(1)
}

func (m *MockAuthorizer) ExtractEntityID(ctx context.Context, token string, role domain.Role) (int64, bool) {
	args := m.Called(ctx, token, role)
	return args.Get(0).(int64), args.Bool(1)
}

// recordingStore keeps committed state and the order writes happened in.
type recordingStore struct {
	prescriptions map[int64]*domain.Prescription
	appointments  map[int64]*domain.Appointment
	ops           []string
	nextID        int64
	createErr     error
	txCalls       int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		prescriptions: map[int64]*domain.Prescription{},
		appointments:  map[int64]*domain.Appointment{},
	}
}

type stagedWrites struct {
	store         *recordingStore
	prescriptions []*domain.Prescription
	statuses      map[int64]domain.AppointmentStatus
}

func (s *stagedWrites) Create(_ context.Context, p *domain.Prescription) error {
	if s.store.createErr != nil {
		return s.store.createErr
	}
	if _, ok := s.store.appointments[p.AppointmentID]; !ok {
		return &pgconn.PgError{
			Code:           "23503",
			Message:        `insert or update on table "prescriptions" violates foreign key constraint`,
			ConstraintName: "prescriptions_appointment_id_fkey",
		}
	}
	s.store.nextID++
	p.ID = s.store.nextID
	s.prescriptions = append(s.prescriptions, p)
	s.store.ops = append(s.store.ops, "prescription.create")
	return nil
}

func (s *stagedWrites) GetByAppointmentID(_ context.Context, appointmentID int64) (*domain.Prescription, error) {
	if p, ok := s.store.prescriptions[appointmentID]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

type stagedAppointments struct{ *stagedWrites }

func (a stagedAppointments) GetByIDForUpdate(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := a.store.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a.store.ops = append(a.store.ops, "appointment.lock")
	return appt, nil
}

func (a stagedAppointments) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	if _, ok := a.store.appointments[id]; !ok {
		return pgx.ErrNoRows
	}
	a.statuses[id] = status
	a.store.ops = append(a.store.ops, "appointment.update_status")
	return nil
}

// WithinTx applies staged writes only when fn succeeds.
func (s *recordingStore) WithinTx(_ context.Context, fn func(repository.TxRepositories) error) error {
	s.txCalls++
	staged := &stagedWrites{store: s, statuses: map[int64]domain.AppointmentStatus{}}
	if err := fn(repository.TxRepositories{
		Prescriptions: staged,
		Appointments:  stagedAppointments{staged},
	}); err != nil {
		s.ops = append(s.ops, "rollback")
		return err
	}
	for _, p := range staged.prescriptions {
		s.prescriptions[p.AppointmentID] = p
	}
	for id, status := range staged.statuses {
		s.appointments[id].Status = status
	}
	s.ops = append(s.ops, "commit")
	return nil
}

func validInput() PrescriptionInput {
	return PrescriptionInput{
		AppointmentID: 42,
		PatientName:   "Jane Roe",
		Medication:    "Amoxicillin",
		Dosage:        "500mg twice daily",
		DoctorNotes:   "Take with food",
	}
}

func newTestPrescriptionService(gate Authorizer, store *recordingStore, dispatcher events.Dispatcher) *PrescriptionService {
	return NewPrescriptionService(PrescriptionDependencies{
		Gate:             gate,
		Transactor:       store,
		PrescriptionRepo: &stagedWrites{store: store},
		Dispatcher:       dispatcher,
	})
}

func TestPrescriptionService_Save_Unauthorized(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "bad-token", domain.RoleDoctor).Return(false)

	store := newRecordingStore()
	store.appointments[42] = &domain.Appointment{ID: 42, Status: domain.AppointmentStatusScheduled}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.EventType
	for _, et := range []events.EventType{events.EventPrescriptionSaved, events.EventAppointmentCompleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}
	svc := newTestPrescriptionService(gate, store, dispatcher)

	_, err := svc.Save(context.Background(), "bad-token", validInput())
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Zero(t, store.txCalls)
	assert.Empty(t, store.ops)
	assert.Empty(t, store.prescriptions)
	assert.Equal(t, domain.AppointmentStatusScheduled, store.appointments[42].Status)
	assert.Empty(t, published)
	gate.AssertNotCalled(t, "ExtractEntityID", mock.Anything, mock.Anything, mock.Anything)
	gate.AssertExpectations(t)
}

func TestPrescriptionService_Save_CompletesAppointment(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)
	gate.On("ExtractEntityID", mock.Anything, "doctor-token", domain.RoleDoctor).Return(int64(7), true)
	gate.On("ExtractSubject", "doctor-token").Return("doc@example.com", true)

	store := newRecordingStore()
	store.appointments[42] = &domain.Appointment{ID: 42, DoctorID: 7, Status: domain.AppointmentStatusScheduled}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	for _, et := range []events.EventType{events.EventPrescriptionSaved, events.EventAppointmentCompleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})
	}
	svc := newTestPrescriptionService(gate, store, dispatcher)

	saved, err := svc.Save(context.Background(), "doctor-token", validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"appointment.lock", "prescription.create", "appointment.update_status", "commit"}, store.ops)
	assert.Equal(t, domain.AppointmentStatusCompleted, store.appointments[42].Status)
	require.Contains(t, store.prescriptions, int64(42))
	assert.Equal(t, saved, store.prescriptions[42])
	require.NotNil(t, saved.DoctorID)
	assert.Equal(t, int64(7), *saved.DoctorID)
	assert.Equal(t, "Amoxicillin", saved.Medication)

	require.Len(t, published, 2)
	assert.Equal(t, events.EventPrescriptionSaved, published[0].Type)
	assert.Equal(t, events.EventAppointmentCompleted, published[1].Type)
	assert.Equal(t, "doc@example.com", published[0].Actor.Subject)
	assert.NotEmpty(t, published[0].ID)
	gate.AssertExpectations(t)
}

func TestPrescriptionService_Save_MissingAppointmentRollsBack(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)
	gate.On("ExtractEntityID", mock.Anything, "doctor-token", domain.RoleDoctor).Return(int64(0), false)

	store := newRecordingStore()
	svc := newTestPrescriptionService(gate, store, nil)

	_, err := svc.Save(context.Background(), "doctor-token", validInput())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Empty(t, store.prescriptions)
	assert.Equal(t, []string{"rollback"}, store.ops)
}

func TestPrescriptionService_Save_ForeignKeyViolationIsAppointmentNotFound(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)
	gate.On("ExtractEntityID", mock.Anything, "doctor-token", domain.RoleDoctor).Return(int64(7), true)

	store := newRecordingStore()
	store.appointments[42] = &domain.Appointment{ID: 42, Status: domain.AppointmentStatusScheduled}
	store.createErr = &pgconn.PgError{Code: "23503", ConstraintName: "prescriptions_appointment_id_fkey"}
	svc := newTestPrescriptionService(gate, store, nil)

	_, err := svc.Save(context.Background(), "doctor-token", validInput())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.Equal(t, []string{"appointment.lock", "rollback"}, store.ops)
	assert.Empty(t, store.prescriptions)
	assert.Equal(t, domain.AppointmentStatusScheduled, store.appointments[42].Status)
}

func TestAppointmentError(t *testing.T) {
	boom := errors.New("conn reset")
	unique := &pgconn.PgError{Code: "23505"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: ErrAppointmentNotFound},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: ErrAppointmentNotFound},
		{name: "wrapped foreign key", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), want: ErrAppointmentNotFound},
		{name: "unique violation", err: unique, want: unique},
		{name: "other", err: boom, want: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, appointmentError(tt.err), tt.want)
		})
	}
}

func TestPrescriptionService_Save_PersistFailureSkipsTransition(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)
	gate.On("ExtractEntityID", mock.Anything, "doctor-token", domain.RoleDoctor).Return(int64(7), true)

	store := newRecordingStore()
	store.appointments[42] = &domain.Appointment{ID: 42, Status: domain.AppointmentStatusScheduled}
	store.createErr = errors.New("disk full")
	svc := newTestPrescriptionService(gate, store, nil)

	_, err := svc.Save(context.Background(), "doctor-token", validInput())
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, []string{"appointment.lock", "rollback"}, store.ops)
	assert.Equal(t, domain.AppointmentStatusScheduled, store.appointments[42].Status)
}

func TestPrescriptionService_Save_Validation(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)

	store := newRecordingStore()
	svc := newTestPrescriptionService(gate, store, nil)

	input := PrescriptionInput{
		AppointmentID: 0,
		PatientName:   "Jo",
		Medication:    "",
		Dosage:        "1",
		DoctorNotes:   strings.Repeat("x", 201),
	}
	_, err := svc.Save(context.Background(), "doctor-token", input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "appointmentId")
	assert.Contains(t, validationErr.Fields, "patientName")
	assert.Equal(t, "is required", validationErr.Fields["medication"])
	assert.NotContains(t, validationErr.Fields, "dosage")
	assert.Contains(t, validationErr.Fields, "doctorNotes")
	assert.Zero(t, store.txCalls)
}

func TestPrescriptionService_GetByAppointment(t *testing.T) {
	gate := new(MockAuthorizer)
	gate.On("Authorize", mock.Anything, "doctor-token", domain.RoleDoctor).Return(true)
	gate.On("Authorize", mock.Anything, "patient-token", domain.RoleDoctor).Return(false)

	store := newRecordingStore()
	store.prescriptions[42] = &domain.Prescription{ID: 1, AppointmentID: 42, Medication: "Ibuprofen"}
	svc := newTestPrescriptionService(gate, store, nil)
	ctx := context.Background()

	got, err := svc.GetByAppointment(ctx, "doctor-token", 42)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", got.Medication)

	_, err = svc.GetByAppointment(ctx, "doctor-token", 99)
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)

	_, err = svc.GetByAppointment(ctx, "patient-token", 42)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
