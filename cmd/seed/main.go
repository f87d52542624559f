package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	"github.com/hackgods/clinic-appointments/internal/logger"
	"github.com/hackgods/clinic-appointments/internal/patient"
)

const batchSize = 500

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var genders = []patient.Gender{patient.GenderMale, patient.GenderFemale, patient.GenderOther}

var reasons = []string{
	"checkup",
	"follow-up",
	"vaccination",
	"lab results review",
	"prescription renewal",
	"chest pain",
	"skin rash",
}

var statuses = []appointment.Status{
	appointment.StatusScheduled,
	appointment.StatusScheduled,
	appointment.StatusCompleted,
	appointment.StatusCancelled,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load error")
	}
	log := logger.New(cfg.IsDev(), cfg.LogLevel)

	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatal().Str("store", cfg.StoreDriver).Msg("seed requires STORE_DRIVER=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.WithMaxConns(cfg.PostgresMaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}

	nDoctors := getInt("SEED_DOCTORS", 100)
	nPatients := getInt("SEED_PATIENTS", 9000)
	nAppointments := getInt("SEED_APPOINTMENTS", 20000)

	doctorIDs, err := seedDoctors(context.Background(), log, pool, nDoctors)
	if err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	patientIDs, err := seedPatients(context.Background(), log, pool, nPatients)
	if err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(context.Background(), log, pool, patientIDs, doctorIDs, nAppointments); err != nil {
		log.Fatal().Err(err).Msg("seed appointments")
	}

	log.Info().Msg("seed complete")
}

func seedDoctors(ctx context.Context, log zerolog.Logger, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding doctors")

	ids := make([]uuid.UUID, count)
	err := inBatches(ctx, pool, count, func(tx pgx.Tx, i int) error {
		ids[i] = uuid.New()
		phone := gofakeit.Phone()
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, ids[i], "Dr. "+gofakeit.Name(), specialties[gofakeit.Number(0, len(specialties)-1)], phone)
		return err
	}, func(done int) {
		log.Info().Msgf("doctors seeded: %d/%d", done, count)
	})
	return ids, err
}

func seedPatients(ctx context.Context, log zerolog.Logger, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding patients")

	ids := make([]uuid.UUID, count)
	err := inBatches(ctx, pool, count, func(tx pgx.Tx, i int) error {
		ids[i] = uuid.New()
		dob := gofakeit.DateRange(time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().AddDate(-1, 0, 0))
		phone := gofakeit.Phone()
		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, dob, gender, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, ids[i], gofakeit.Name(), dob.Format(patient.DOBLayout), genders[gofakeit.Number(0, len(genders)-1)], phone)
		return err
	}, func(done int) {
		log.Info().Msgf("patients seeded: %d/%d", done, count)
	})
	return ids, err
}

func seedAppointments(ctx context.Context, log zerolog.Logger, pool *pgxpool.Pool, patients, doctors []uuid.UUID, count int) error {
	if len(patients) == 0 || len(doctors) == 0 {
		log.Warn().Msg("no patients or doctors, skipping appointments")
		return nil
	}
	log.Info().Int("count", count).Msg("seeding appointments")

	start := time.Now().AddDate(0, -6, 0)
	end := time.Now().AddDate(0, 6, 0)

	return inBatches(ctx, pool, count, func(tx pgx.Tx, i int) error {
		at := gofakeit.DateRange(start, end).Truncate(15 * time.Minute)
		var reason *string
		if gofakeit.Bool() {
			r := reasons[gofakeit.Number(0, len(reasons)-1)]
			reason = &r
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, patient_id, doctor_id, appt_time, reason, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, uuid.New(),
			patients[gofakeit.Number(0, len(patients)-1)].String(),
			doctors[gofakeit.Number(0, len(doctors)-1)].String(),
			at.Format("2006-01-02T15:04"),
			reason,
			statuses[gofakeit.Number(0, len(statuses)-1)],
		)
		return err
	}, func(done int) {
		log.Info().Msgf("appointments seeded: %d/%d", done, count)
	})
}

// inBatches runs insert for every index in [0, count), committing every
// batchSize rows.
func inBatches(ctx context.Context, pool *pgxpool.Pool, count int, insert func(tx pgx.Tx, i int) error, progress func(done int)) error {
	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			if err := insert(tx, i); err != nil {
				_ = tx.Rollback(ctx)
				return fmt.Errorf("row %d: %w", i, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		progress(end)
	}
	return nil
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
