package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/api"
	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	"github.com/hackgods/clinic-appointments/internal/doctor"
	"github.com/hackgods/clinic-appointments/internal/logger"
	"github.com/hackgods/clinic-appointments/internal/metrics"
	"github.com/hackgods/clinic-appointments/internal/patient"
	redisclient "github.com/hackgods/clinic-appointments/internal/redis"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type stores struct {
	appointments appointment.Repository
	patients     patient.Store
	doctors      doctor.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load error")
	}

	log := logger.New(cfg.IsDev(), cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("store", cfg.StoreDriver).
		Bool("strict_references", cfg.StrictReferences).
		Bool("strict_transitions", cfg.StrictTransitions).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		st     stores
		pgPool *pgxpool.Pool
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN,
			db.WithMaxConns(cfg.PostgresMaxConns),
			db.WithSlowQueryLog(log, cfg.SlowQuery),
		)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()

		if err := db.EnsureSchema(rootCtx, pgPool); err != nil {
			log.Fatal().Err(err).Msg("apply schema")
		}
		log.Info().Msg("connected to Postgres")

		st = stores{
			appointments: appointment.NewPgRepository(pgPool),
			patients:     patient.NewPgStore(pgPool),
			doctors:      doctor.NewPgStore(pgPool),
		}
	default:
		ev := log.Info()
		if !cfg.IsDev() {
			ev = log.Warn()
		}
		ev.Msg("using in-memory stores; data is lost on exit")
		st = stores{
			appointments: appointment.NewMemoryRepository(),
			patients:     patient.NewMemoryStore(),
			doctors:      doctor.NewMemoryStore(),
		}
	}

	var (
		patientFinder appointment.PatientFinder = st.patients
		doctorFinder  appointment.DoctorFinder  = st.doctors
		invalidator   patient.Invalidator
		rdb           *redis.Client
	)
	if cfg.CacheEnabled() {
		rdb, err = redisclient.NewRedisClient(rootCtx, redisclient.ClientConfig{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("error closing redis")
			}
		}()
		log.Info().Dur("ttl", cfg.LookupCacheTTL).Msg("connected to Redis, lookup cache enabled")

		patientCache := redisclient.NewCachedFinder[patient.Patient](rdb, st.patients, "patient", cfg.LookupCacheTTL, log)
		patientFinder = patientCache
		invalidator = patientCache
		doctorFinder = redisclient.NewCachedFinder[doctor.Doctor](rdb, st.doctors, "doctor", cfg.LookupCacheTTL, log)
	}

	m := metrics.New()

	router := api.NewRouter(api.RouterConfig{
		Appointments: appointment.NewService(st.appointments, patientFinder, doctorFinder, appointment.Options{
			StrictReferences:  cfg.StrictReferences,
			StrictTransitions: cfg.StrictTransitions,
			Logger:            log,
			Metrics:           m,
		}),
		Patients:    patient.NewService(st.patients, invalidator, log),
		Doctors:     doctor.NewService(st.doctors),
		PgPool:      pgPool,
		Redis:       rdb,
		Metrics:     m,
		Logger:      log,
		Env:         cfg.Env,
		Version:     version,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
