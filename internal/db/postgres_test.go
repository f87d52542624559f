package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/clinic")
	require.NoError(t, err)

	WithMaxConns(25)(cfg)
	assert.EqualValues(t, 25, cfg.MaxConns)

	WithMaxConns(0)(cfg)
	assert.EqualValues(t, 25, cfg.MaxConns)

	WithSlowQueryLog(zerolog.Nop(), 0)(cfg)
	assert.Nil(t, cfg.ConnConfig.Tracer)

	WithSlowQueryLog(zerolog.Nop(), time.Second)(cfg)
	assert.IsType(t, &slowQueryTracer{}, cfg.ConnConfig.Tracer)
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	tr := &slowQueryTracer{log: zerolog.New(&buf), threshold: 100 * time.Millisecond}

	ctx := tr.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT fast"})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Empty(t, buf.String())

	ctx = context.WithValue(context.Background(), queryStartKey{}, queryStart{sql: "SELECT slow", at: time.Now().Add(-time.Second)})
	tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "SELECT slow")
	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "boom")
}
