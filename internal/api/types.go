package api

import "github.com/google/uuid"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type StatusResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Version     string `json:"version,omitempty"`
}
