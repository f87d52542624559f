package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/apperr"
	"github.com/hackgods/clinic-appointments/internal/doctor"
	"github.com/hackgods/clinic-appointments/internal/patient"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func writeCreated(w http.ResponseWriter, id uuid.UUID) {
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Storage failures are reported without their cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Details: ve.Error(),
			Fields:  ve.Fields,
		})
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, doctor.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, apperr.ErrStorage):
		logFrom(r).Error().Err(err).Msg("storage failure")
		writeError(w, http.StatusInternalServerError, "storage_error", "storage unavailable")
	default:
		logFrom(r).Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
