package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

const appointmentCols = `id, patient_id, doctor_id, appt_time, reason, status, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.ApptTime,
		&a.Reason,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appt_time, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'Scheduled', now(), now())
		RETURNING status, created_at, updated_at
	`, a.ID, a.PatientID, a.DoctorID, a.ApptTime, a.Reason).Scan(&a.Status, &a.CreatedAt, &a.UpdatedAt)

	return apperr.Storage("insert appointment", err)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, apperr.Storage("select appointment", err)
	}
	return a, nil
}

// List sorts with the "C" collation so appt_time compares byte-wise no
// matter what locale the database was created with.
func (r *PgRepository) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		ORDER BY appt_time COLLATE "C" DESC, created_at DESC
	`)
	if err != nil {
		return nil, apperr.Storage("list appointments", err)
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperr.Storage("scan appointment", err)
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list appointments", err)
	}

	return result, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return apperr.Storage("update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return apperr.Storage("delete appointment", err)
}
