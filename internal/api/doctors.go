package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/doctor"
)

func listDoctorsHandler(svc *doctor.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ds)
	}
}

func getDoctorHandler(svc *doctor.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, doctor.ErrDoctorNotFound)
			return
		}

		d, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func createDoctorHandler(svc *doctor.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req doctor.CreateInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		id, err := svc.Create(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeCreated(w, id)
	}
}
