package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/apperr"
	"github.com/hackgods/clinic-appointments/internal/doctor"
	"github.com/hackgods/clinic-appointments/internal/metrics"
	"github.com/hackgods/clinic-appointments/internal/patient"
	"github.com/hackgods/clinic-appointments/internal/validation"
)

// PatientFinder resolves the patient an appointment references.
type PatientFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorFinder resolves the doctor an appointment references.
type DoctorFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

type Options struct {
	// StrictReferences rejects creates whose patient or doctor does not
	// exist. Off by default: references are stored as given.
	StrictReferences bool
	// StrictTransitions forbids moving out of Completed or Cancelled. Off by
	// default: any recognized status may be set from any other.
	StrictTransitions bool

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

type Service struct {
	repo     Repository
	patients PatientFinder
	doctors  DoctorFinder
	opts     Options
	log      zerolog.Logger
}

func NewService(repo Repository, patients PatientFinder, doctors DoctorFinder, opts Options) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "appointment").Logger(),
	}
}

// CreateAppointment validates the request and stores a Scheduled appointment.
// Only the new id is returned.
func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (uuid.UUID, error) {
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}

	if s.opts.StrictReferences {
		if _, err := s.findPatient(ctx, in.PatientID); err != nil {
			return uuid.Nil, fmt.Errorf("load patient: %w", err)
		}
		if _, err := s.findDoctor(ctx, in.DoctorID); err != nil {
			return uuid.Nil, fmt.Errorf("load doctor: %w", err)
		}
	}

	appt := &Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		ApptTime:  in.ApptTime,
		Reason:    in.Reason,
		Status:    StatusScheduled,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return uuid.Nil, fmt.Errorf("create appointment: %w", err)
	}

	s.opts.Metrics.AppointmentCreated()
	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("patient_id", in.PatientID).
		Str("doctor_id", in.DoctorID).
		Msg("appointment created")

	return appt.ID, nil
}

// ListAppointments returns every appointment with its patient and doctor
// names. Each row costs one lookup per reference; a failed lookup leaves the
// name empty and never drops the row.
func (s *Service) ListAppointments(ctx context.Context) ([]View, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	views := make([]View, 0, len(appts))
	for _, a := range appts {
		views = append(views, View{
			ID:          a.ID,
			ApptTime:    a.ApptTime,
			PatientID:   a.PatientID,
			DoctorID:    a.DoctorID,
			PatientName: s.patientName(ctx, a),
			DoctorName:  s.doctorName(ctx, a),
			Status:      a.Status,
			Reason:      a.Reason,
		})
	}
	return views, nil
}

// UpdateStatus sets the appointment status. Without strict transitions any
// recognized status is accepted regardless of the current one.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	to := Status(in.Status)

	if s.opts.StrictTransitions {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
		if !CanTransition(current.Status, to) {
			return fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, current.Status, to)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	s.opts.Metrics.StatusUpdated(string(to))
	s.log.Info().Str("appointment_id", id.String()).Str("status", string(to)).Msg("appointment status updated")
	return nil
}

// DeleteAppointment removes the appointment. Unknown ids are not an error.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// findPatient resolves an opaque reference. A reference that is not a
// patient id cannot name any patient.
func (s *Service) findPatient(ctx context.Context, ref string) (*patient.Patient, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, patient.ErrPatientNotFound
	}
	return s.patients.FindByID(ctx, id)
}

func (s *Service) findDoctor(ctx context.Context, ref string) (*doctor.Doctor, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, doctor.ErrDoctorNotFound
	}
	return s.doctors.FindByID(ctx, id)
}

func (s *Service) patientName(ctx context.Context, a Appointment) *string {
	p, err := s.findPatient(ctx, a.PatientID)
	if err != nil {
		s.lookupMissed(err, "patient", a)
		return nil
	}
	name := p.Name
	return &name
}

func (s *Service) doctorName(ctx context.Context, a Appointment) *string {
	d, err := s.findDoctor(ctx, a.DoctorID)
	if err != nil {
		s.lookupMissed(err, "doctor", a)
		return nil
	}
	name := d.Name
	return &name
}

func (s *Service) lookupMissed(err error, kind string, a Appointment) {
	s.opts.Metrics.LookupMissed(kind)

	ev := s.log.Warn()
	if errors.Is(err, apperr.ErrNotFound) {
		ev = s.log.Debug()
	}
	ev.Err(err).
		Str("appointment_id", a.ID.String()).
		Str("kind", kind).
		Msg("reference lookup did not resolve")
}
