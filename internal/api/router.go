package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/doctor"
	"github.com/hackgods/clinic-appointments/internal/metrics"
	"github.com/hackgods/clinic-appointments/internal/patient"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Patients     *patient.Service
	Doctors      *doctor.Service

	// Optional; nil reports the dependency as disabled.
	PgPool *pgxpool.Pool
	Redis  *redis.Client

	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	Env         string
	Version     string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware(cfg.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/", health.Root)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", listAppointmentsHandler(cfg.Appointments))
			r.Post("/", createAppointmentHandler(cfg.Appointments))
			r.Put("/{id}/status", updateAppointmentStatusHandler(cfg.Appointments))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Appointments))
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", listPatientsHandler(cfg.Patients))
			r.Post("/", createPatientHandler(cfg.Patients))
			r.Get("/{id}", getPatientHandler(cfg.Patients))
			r.Put("/{id}", updatePatientHandler(cfg.Patients))
			r.Delete("/{id}", deletePatientHandler(cfg.Patients))
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", listDoctorsHandler(cfg.Doctors))
			r.Post("/", createDoctorHandler(cfg.Doctors))
			r.Get("/{id}", getDoctorHandler(cfg.Doctors))
		})
	})

	return r
}
