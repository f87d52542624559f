package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

const doctorCols = `id, name, specialty, phone, created_at, updated_at`

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Phone, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *PgStore) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, specialty, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at
	`, d.ID, d.Name, d.Specialty, d.Phone).Scan(&d.CreatedAt, &d.UpdatedAt)
	return apperr.Storage("insert doctor", err)
}

func (s *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(s.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	if err != nil {
		return nil, apperr.Storage("select doctor", err)
	}
	return d, nil
}

func (s *PgStore) List(ctx context.Context) ([]Doctor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Storage("list doctors", err)
	}
	defer rows.Close()

	result := []Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, apperr.Storage("scan doctor", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list doctors", err)
	}
	return result, nil
}
