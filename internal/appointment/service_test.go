package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hackgods/clinic-appointments/internal/apperr"
	"github.com/hackgods/clinic-appointments/internal/doctor"
	"github.com/hackgods/clinic-appointments/internal/metrics"
	"github.com/hackgods/clinic-appointments/internal/patient"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *MemoryRepository
	patients *patient.MemoryStore
	doctors  *doctor.MemoryStore
	metrics  *metrics.Metrics
	svc      *Service

	patientID uuid.UUID
	doctorID  uuid.UUID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = NewMemoryRepository()
	s.patients = patient.NewMemoryStore()
	s.doctors = doctor.NewMemoryStore()
	s.metrics = metrics.New()
	s.svc = s.newService(Options{})

	p := &patient.Patient{Name: "Ann Patient", DOB: "1990-05-05", Gender: patient.GenderFemale}
	s.Require().NoError(s.patients.Create(s.ctx, p))
	d := &doctor.Doctor{Name: "Dr. Bob", Specialty: "Cardiology"}
	s.Require().NoError(s.doctors.Create(s.ctx, d))
	s.patientID, s.doctorID = p.ID, d.ID
}

func (s *ServiceSuite) newService(opts Options) *Service {
	opts.Logger = zerolog.Nop()
	opts.Metrics = s.metrics
	return NewService(s.repo, s.patients, s.doctors, opts)
}

func (s *ServiceSuite) input(apptTime string) CreateInput {
	return CreateInput{
		PatientID: s.patientID.String(),
		DoctorID:  s.doctorID.String(),
		ApptTime:  apptTime,
	}
}

func (s *ServiceSuite) statusOf(id uuid.UUID) Status {
	a, err := s.repo.GetByID(s.ctx, id)
	s.Require().NoError(err)
	return a.Status
}

func (s *ServiceSuite) TestCreateAppointment() {
	s.Run("returns an id that lists as Scheduled", func() {
		reason := "checkup"
		in := s.input("2024-03-01T09:00")
		in.Reason = &reason

		id, err := s.svc.CreateAppointment(s.ctx, in)
		s.Require().NoError(err)

		views, err := s.svc.ListAppointments(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(views, 1)

		v := views[0]
		s.Equal(id, v.ID)
		s.Equal(StatusScheduled, v.Status)
		s.Equal("checkup", *v.Reason)
		s.Equal("2024-03-01T09:00", v.ApptTime)
		s.Equal("Ann Patient", *v.PatientName)
		s.Equal("Dr. Bob", *v.DoctorName)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.AppointmentsCreated))
	})

	s.Run("reason is optional", func() {
		id, err := s.svc.CreateAppointment(s.ctx, s.input("2024-03-02T09:00"))
		s.Require().NoError(err)

		a, err := s.repo.GetByID(s.ctx, id)
		s.Require().NoError(err)
		s.Nil(a.Reason)
	})
}

func (s *ServiceSuite) TestCreateAppointmentRequiresFields() {
	cases := map[string]func(*CreateInput){
		"patient_id": func(in *CreateInput) { in.PatientID = "" },
		"doctor_id":  func(in *CreateInput) { in.DoctorID = "" },
		"appt_time":  func(in *CreateInput) { in.ApptTime = "" },
	}

	for field, mutate := range cases {
		s.Run(field, func() {
			in := s.input("2024-03-01T09:00")
			mutate(&in)

			_, err := s.svc.CreateAppointment(s.ctx, in)
			s.Require().ErrorIs(err, apperr.ErrValidation)

			var ve *apperr.ValidationError
			s.Require().True(errors.As(err, &ve))
			s.Contains(ve.Fields, field)

			list, err := s.repo.List(s.ctx)
			s.Require().NoError(err)
			s.Empty(list)
		})
	}
}

func (s *ServiceSuite) TestCreateAppointmentAcceptsOpaqueReferences() {
	reason := "checkup"
	id, err := s.svc.CreateAppointment(s.ctx, CreateInput{
		PatientID: "p1",
		DoctorID:  "d1",
		ApptTime:  "2024-03-01T09:00",
		Reason:    &reason,
	})
	s.Require().NoError(err)

	views, err := s.svc.ListAppointments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 1)

	v := views[0]
	s.Equal(id, v.ID)
	s.Equal("p1", v.PatientID)
	s.Equal("d1", v.DoctorID)
	s.Equal(StatusScheduled, v.Status)
	s.Equal("checkup", *v.Reason)
	s.Nil(v.PatientName)
	s.Nil(v.DoctorName)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LookupMisses.WithLabelValues("patient")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LookupMisses.WithLabelValues("doctor")))
}

func (s *ServiceSuite) TestCreateAppointmentTrustsReferencesByDefault() {
	in := CreateInput{
		PatientID: uuid.NewString(),
		DoctorID:  uuid.NewString(),
		ApptTime:  gofakeit.Date().Format("2006-01-02T15:04"),
	}

	id, err := s.svc.CreateAppointment(s.ctx, in)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, id)
}

func (s *ServiceSuite) TestCreateAppointmentStrictReferences() {
	svc := s.newService(Options{StrictReferences: true})

	s.Run("unknown patient", func() {
		in := s.input("2024-03-01T09:00")
		in.PatientID = uuid.NewString()

		_, err := svc.CreateAppointment(s.ctx, in)
		s.Require().ErrorIs(err, patient.ErrPatientNotFound)
	})

	s.Run("unknown doctor", func() {
		in := s.input("2024-03-01T09:00")
		in.DoctorID = uuid.NewString()

		_, err := svc.CreateAppointment(s.ctx, in)
		s.Require().ErrorIs(err, doctor.ErrDoctorNotFound)
	})

	s.Run("patient reference that is not an id", func() {
		in := s.input("2024-03-01T09:00")
		in.PatientID = "p1"

		_, err := svc.CreateAppointment(s.ctx, in)
		s.Require().ErrorIs(err, patient.ErrPatientNotFound)
		s.ErrorIs(err, apperr.ErrNotFound)
	})

	s.Run("doctor reference that is not an id", func() {
		in := s.input("2024-03-01T09:00")
		in.DoctorID = "d1"

		_, err := svc.CreateAppointment(s.ctx, in)
		s.Require().ErrorIs(err, doctor.ErrDoctorNotFound)
	})

	s.Run("known references", func() {
		_, err := svc.CreateAppointment(s.ctx, s.input("2024-03-01T09:00"))
		s.Require().NoError(err)
	})

	list, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *ServiceSuite) TestListOrdersMostRecentFirst() {
	a, err := s.svc.CreateAppointment(s.ctx, s.input("2024-01-01T10:00"))
	s.Require().NoError(err)
	b, err := s.svc.CreateAppointment(s.ctx, s.input("2024-06-01T09:00"))
	s.Require().NoError(err)

	views, err := s.svc.ListAppointments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(b, views[0].ID)
	s.Equal(a, views[1].ID)
}

func (s *ServiceSuite) TestListToleratesDanglingReferences() {
	id, err := s.svc.CreateAppointment(s.ctx, s.input("2024-03-01T09:00"))
	s.Require().NoError(err)
	s.Require().NoError(s.patients.Delete(s.ctx, s.patientID))

	views, err := s.svc.ListAppointments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 1)

	s.Equal(id, views[0].ID)
	s.Equal(s.patientID.String(), views[0].PatientID)
	s.Nil(views[0].PatientName)
	s.Equal("Dr. Bob", *views[0].DoctorName)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LookupMisses.WithLabelValues("patient")))
}

func (s *ServiceSuite) TestListEmpty() {
	views, err := s.svc.ListAppointments(s.ctx)
	s.Require().NoError(err)
	s.NotNil(views)
	s.Empty(views)
}

func (s *ServiceSuite) TestUpdateStatus() {
	id, err := s.svc.CreateAppointment(s.ctx, s.input("2024-03-01T09:00"))
	s.Require().NoError(err)

	s.Run("applies a recognized status", func() {
		s.Require().NoError(s.svc.UpdateStatus(s.ctx, id, StatusInput{Status: "Completed"}))
		s.Equal(StatusCompleted, s.statusOf(id))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.StatusUpdates.WithLabelValues("Completed")))
	})

	s.Run("allows leaving a terminal status by default", func() {
		s.Require().NoError(s.svc.UpdateStatus(s.ctx, id, StatusInput{Status: "Scheduled"}))
		s.Equal(StatusScheduled, s.statusOf(id))
	})

	s.Run("rejects unknown values and keeps the stored status", func() {
		for _, bad := range []string{"Bogus", "", "completed"} {
			err := s.svc.UpdateStatus(s.ctx, id, StatusInput{Status: bad})
			s.Require().ErrorIs(err, apperr.ErrValidation, bad)
		}
		s.Equal(StatusScheduled, s.statusOf(id))
	})

	s.Run("unknown id is not found and persists nothing", func() {
		missing := uuid.New()
		err := s.svc.UpdateStatus(s.ctx, missing, StatusInput{Status: "Cancelled"})
		s.Require().ErrorIs(err, ErrAppointmentNotFound)

		_, err = s.repo.GetByID(s.ctx, missing)
		s.ErrorIs(err, ErrAppointmentNotFound)
	})
}

func (s *ServiceSuite) TestUpdateStatusStrictTransitions() {
	svc := s.newService(Options{StrictTransitions: true})
	id, err := svc.CreateAppointment(s.ctx, s.input("2024-03-01T09:00"))
	s.Require().NoError(err)

	s.Require().NoError(svc.UpdateStatus(s.ctx, id, StatusInput{Status: "Cancelled"}))

	err = svc.UpdateStatus(s.ctx, id, StatusInput{Status: "Scheduled"})
	s.Require().ErrorIs(err, ErrInvalidStatusTransition)
	s.ErrorIs(err, apperr.ErrConflict)
	s.Equal(StatusCancelled, s.statusOf(id))

	err = svc.UpdateStatus(s.ctx, uuid.New(), StatusInput{Status: "Completed"})
	s.ErrorIs(err, ErrAppointmentNotFound)
}

func (s *ServiceSuite) TestDeleteIsIdempotent() {
	id, err := s.svc.CreateAppointment(s.ctx, s.input("2024-03-01T09:00"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteAppointment(s.ctx, id))
	s.Require().NoError(s.svc.DeleteAppointment(s.ctx, id))
	s.Require().NoError(s.svc.DeleteAppointment(s.ctx, uuid.New()))

	views, err := s.svc.ListAppointments(s.ctx)
	s.Require().NoError(err)
	s.Empty(views)
}

type mockPatientFinder struct{ mock.Mock }

func (m *mockPatientFinder) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*patient.Patient)
	return p, args.Error(1)
}

type mockDoctorFinder struct{ mock.Mock }

func (m *mockDoctorFinder) FindByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*doctor.Doctor)
	return d, args.Error(1)
}

func TestListAppointments_OneLookupPerRowAndErrorsDegrade(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	patients := new(mockPatientFinder)
	doctors := new(mockDoctorFinder)
	svc := NewService(repo, patients, doctors, Options{Logger: zerolog.Nop()})

	okPatient, brokenPatient, doctorID := uuid.New(), uuid.New(), uuid.New()
	for _, pid := range []uuid.UUID{okPatient, brokenPatient} {
		_, err := svc.CreateAppointment(ctx, CreateInput{
			PatientID: pid.String(),
			DoctorID:  doctorID.String(),
			ApptTime:  "2024-03-01T09:00",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	patients.On("FindByID", mock.Anything, okPatient).Return(&patient.Patient{ID: okPatient, Name: "Ok"}, nil).Once()
	patients.On("FindByID", mock.Anything, brokenPatient).
		Return(nil, apperr.Storage("select patient", errors.New("connection reset"))).Once()
	doctors.On("FindByID", mock.Anything, doctorID).Return(&doctor.Doctor{ID: doctorID, Name: "Doc"}, nil).Twice()

	views, err := svc.ListAppointments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(views))
	}

	names := map[string]*string{}
	for _, v := range views {
		names[v.PatientID] = v.PatientName
		if v.DoctorName == nil || *v.DoctorName != "Doc" {
			t.Errorf("expected doctor name on every row, got %v", v.DoctorName)
		}
	}
	if got := names[okPatient.String()]; got == nil || *got != "Ok" {
		t.Errorf("expected resolved patient name, got %v", got)
	}
	if got := names[brokenPatient.String()]; got != nil {
		t.Errorf("expected absent patient name, got %q", *got)
	}

	patients.AssertExpectations(t)
	doctors.AssertExpectations(t)
}
