package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"doctor_id":  "doctor_id is required",
		"appt_time":  "appt_time is required",
		"patient_id": "patient_id is required",
	}}

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "appt_time is required; doctor_id is required; patient_id is required", err.Error())

	wrapped := fmt.Errorf("create appointment: %w", err)
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Len(t, ve.Fields, 3)
}

func TestStorage(t *testing.T) {
	driverErr := errors.New("connection reset")

	err := Storage("insert appointment", driverErr)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, driverErr)
	assert.Equal(t, "insert appointment: connection reset", err.Error())

	assert.NoError(t, Storage("noop", nil))

	notFound := fmt.Errorf("appointment %w", ErrNotFound)
	assert.Same(t, notFound, Storage("lookup", notFound))
	assert.Same(t, err, Storage("again", err))
}
