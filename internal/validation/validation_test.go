package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

type sample struct {
	Name   string `json:"name" validate:"notblank"`
	Kind   string `json:"kind" validate:"required,oneof=A B"`
	Born   string `json:"born" validate:"required,datetime=2006-01-02"`
	Phone  string `json:"phone,omitempty" validate:"max=5"`
	Hidden string `json:"-" validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Name: "x", Kind: "A", Born: "1990-02-03", Hidden: "h"})
	assert.NoError(t, err)
}

func TestStruct_FieldMessages(t *testing.T) {
	err := Struct(sample{Name: "   ", Kind: "C", Born: "03/02/1990", Phone: "0123456"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name is required", ve.Fields["name"])
	assert.Equal(t, "kind must be one of [A B]", ve.Fields["kind"])
	assert.Equal(t, "born must be a date in 2006-01-02 layout", ve.Fields["born"])
	assert.Equal(t, "phone must be at most 5 characters", ve.Fields["phone"])
	assert.Equal(t, "Hidden is required", ve.Fields["Hidden"])
}

func TestStruct_RequiredEmpty(t *testing.T) {
	err := Struct(sample{Name: "x", Born: "2000-01-01", Hidden: "h"})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{"kind": "kind is required"}, ve.Fields)
}
