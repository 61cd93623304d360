package http

import (
	"errors"
	"net/http"

	"rhel-assessment-service/internal/domain"
)

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrSessionNotFound, "session_not_found", http.StatusNotFound},
	{domain.ErrInvalidTransition, "invalid_transition", http.StatusConflict},
	{domain.ErrNotCompleted, "not_completed", http.StatusConflict},
	{domain.ErrInvalidRegistration, "invalid_registration", http.StatusUnprocessableEntity},
	{domain.ErrOutOfRange, "out_of_range", http.StatusUnprocessableEntity},
	{domain.ErrSourceUnavailable, "source_unavailable", http.StatusBadGateway},
	{domain.ErrMalformedResponse, "malformed_response", http.StatusBadGateway},
}

func classify(err error) (string, int) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	return "internal", http.StatusInternalServerError
}

func toErrorPayload(err error) errorPayload {
	code, _ := classify(err)
	return errorPayload{Code: code, Message: err.Error()}
}
