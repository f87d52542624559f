package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

const patientCols = `id, name, dob, gender, phone, created_at, updated_at`

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.DOB, &p.Gender, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, dob, gender, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.DOB, p.Gender, p.Phone).Scan(&p.CreatedAt, &p.UpdatedAt)
	return apperr.Storage("insert patient", err)
}

func (s *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, apperr.Storage("select patient", err)
	}
	return p, nil
}

func (s *PgStore) List(ctx context.Context) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Storage("list patients", err)
	}
	defer rows.Close()

	result := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, apperr.Storage("scan patient", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list patients", err)
	}
	return result, nil
}

func (s *PgStore) Update(ctx context.Context, id uuid.UUID, ch Changes) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE patients
		SET name = COALESCE($2, name),
		    dob = COALESCE($3, dob),
		    gender = COALESCE($4, gender),
		    phone = COALESCE($5, phone),
		    updated_at = now()
		WHERE id = $1
	`, id, ch.Name, ch.DOB, ch.Gender, ch.Phone)
	if err != nil {
		return apperr.Storage("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (s *PgStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return apperr.Storage("delete patient", err)
}
