package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListAppointments(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.CreateInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		id, err := svc.CreateAppointment(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeCreated(w, id)
	}
}

func updateAppointmentStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.StatusInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		// An id that cannot exist is reported the same way as an unknown one.
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			id = uuid.Nil
		}

		if err := svc.UpdateStatus(r.Context(), id, req); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w)
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeOK(w)
			return
		}

		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w)
	}
}
